package grid

import (
	"testing"

	"github.com/raventerminal/core/vtparser"
)

func TestApplyParsedSGRAndCursorMotion(t *testing.T) {
	g := NewGrid(10, 4)
	p := vtparser.NewParser()
	actions := p.Parse([]byte("\x1b[1;31mHi\x1b[0m"))
	for _, a := range actions {
		g.Apply(a)
	}
	c, _ := g.GetCell(0, 0)
	if c.Glyph != 'H' || c.Fg.R != 128 {
		t.Fatalf("unexpected cell after apply: %+v", c)
	}
	c2, _ := g.GetCell(1, 0)
	if c2.Glyph != 'i' {
		t.Fatalf("unexpected second cell: %+v", c2)
	}
}

func TestApplyCursorPositioning(t *testing.T) {
	g := NewGrid(10, 4)
	p := vtparser.NewParser()
	actions := p.Parse([]byte("\x1b[3;5HX"))
	for _, a := range actions {
		g.Apply(a)
	}
	cell, _ := g.GetCell(4, 2)
	if cell.Glyph != 'X' {
		t.Fatalf("expected X at (4,2), got %+v", cell)
	}
}

func TestApplyEraseDisplay(t *testing.T) {
	g := NewGrid(5, 2)
	for _, r := range "ABCDE" {
		g.PrintChar(r)
	}
	p := vtparser.NewParser()
	actions := p.Parse([]byte("\x1b[2J"))
	for _, a := range actions {
		g.Apply(a)
	}
	c, _ := g.GetCell(0, 0)
	if c.Glyph != ' ' {
		t.Errorf("expected cleared cell, got %+v", c)
	}
}
