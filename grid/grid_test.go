package grid

import (
	"strings"
	"testing"

	"github.com/raventerminal/core/cell"
)

func rowText(g *Grid, row int) string {
	var sb strings.Builder
	for c := 0; c < g.Cols(); c++ {
		cl, ok := g.GetCell(c, row)
		if !ok {
			continue
		}
		sb.WriteRune(cl.Glyph)
	}
	return sb.String()
}

func TestPrintAndWrap(t *testing.T) {
	g := NewGrid(5, 3)
	for _, r := range "ABCDEFGH" {
		g.PrintChar(r)
	}
	if got := rowText(g, 0); got != "ABCDE" {
		t.Errorf("row0 = %q, want ABCDE", got)
	}
	if got := rowText(g, 1); got != "FGH  " {
		t.Errorf("row1 = %q, want %q", got, "FGH  ")
	}
}

func TestReflowNarrower(t *testing.T) {
	g := NewGrid(5, 3)
	for _, r := range "ABCDEFGH" {
		g.PrintChar(r)
	}
	g.Resize(3, 3)
	want := []string{"ABC", "DEF", "GH "}
	for i, w := range want {
		if got := rowText(g, i); got != w {
			t.Errorf("row%d = %q, want %q", i, got, w)
		}
	}
}

func TestScrollbackAndScrollUp(t *testing.T) {
	g := NewGrid(3, 2)
	g.maxScrollback = 5
	for i := 1; i <= 10; i++ {
		line := "L" + itoa(i)
		for _, r := range line {
			g.PrintChar(r)
		}
		g.ExecuteControl('\r')
		g.ExecuteControl('\n')
	}
	g.ScrollUp(3)
	if off := g.ViewportOffset(); off != 3 {
		t.Fatalf("viewport offset = %d, want 3", off)
	}
	// max_scrollback=5 keeps L5..L9 in scrollback behind the live L10/blank
	// viewport; scrolling up 3 from the bottom lands on L7/L8.
	top := strings.TrimRight(rowText(g, 0), " ")
	if top != "L7" {
		t.Errorf("top row after scroll_up(3) = %q, want L7", top)
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func TestSGRAppliedAtPrint(t *testing.T) {
	g := NewGrid(10, 2)
	red := cell.RGB(255, 0, 0)
	g.ApplySGR(red, cell.DefaultBg(), cell.Bold)
	g.PrintChar('X')
	c, _ := g.GetCell(0, 0)
	if c.Fg != red || !c.Attrs.Has(cell.Bold) {
		t.Errorf("printed cell = %+v, want fg=%v bold", c, red)
	}
}

func TestSelectionNormalizes(t *testing.T) {
	a := Position{Col: 5, Row: 2}
	b := Position{Col: 1, Row: 1}
	sel := NewSelection(a, b)
	if sel.Start != b || sel.End != a {
		t.Errorf("selection not normalized: %+v", sel)
	}
	if !sel.MultiRow() {
		t.Error("expected MultiRow true")
	}
}

func TestCursorClampedOnMove(t *testing.T) {
	g := NewGrid(4, 4)
	g.MoveCursor(-10, -10)
	col, row := g.GetCursor()
	if col != 0 || row != 0 {
		t.Errorf("cursor = (%d,%d), want (0,0)", col, row)
	}
	g.MoveCursor(100, 100)
	col, row = g.GetCursor()
	if col != 3 || row != 3 {
		t.Errorf("cursor = (%d,%d), want (3,3)", col, row)
	}
}

func TestEveryRowHasCorrectWidth(t *testing.T) {
	g := NewGrid(7, 3)
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			if _, ok := g.GetCell(c, r); !ok {
				t.Fatalf("missing cell at (%d,%d)", c, r)
			}
		}
		if _, ok := g.GetCell(g.Cols(), r); ok {
			t.Errorf("row %d has a cell beyond its width", r)
		}
	}
}
