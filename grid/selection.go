package grid

import (
	"strings"

	"github.com/raventerminal/core/cell"
)

// StartSelection begins a new single-point selection at (col, row).
func (g *Grid) StartSelection(col, row int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := Position{Col: col, Row: row}
	s := NewSelection(p, p)
	g.selection = &s
}

// ExtendSelection grows the in-progress selection to include (col, row).
// It is a no-op if no selection has been started.
func (g *Grid) ExtendSelection(col, row int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.selection == nil {
		return
	}
	anchor := g.selection.Start
	if g.selection.Start.Row > row || (g.selection.Start.Row == row && g.selection.Start.Col > col) {
		anchor = g.selection.End
	}
	s := NewSelection(anchor, Position{Col: col, Row: row})
	g.selection = &s
}

// SelectAll selects the entire viewport.
func (g *Grid) SelectAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	s := NewSelection(Position{Col: 0, Row: 0}, Position{Col: g.cols - 1, Row: g.rows - 1})
	g.selection = &s
}

// SelectWordAt selects the contiguous run of non-space glyphs touching
// (col, row).
func (g *Grid) SelectWordAt(col, row int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	idx, ok := g.viewportRowToScrollbackIndex(row)
	if !ok {
		return
	}
	line := g.rowsDeque[idx]
	if col < 0 || col >= len(line) || line[col].Glyph == ' ' {
		return
	}
	start, end := col, col
	for start > 0 && line[start-1].Glyph != ' ' {
		start--
	}
	for end < len(line)-1 && line[end+1].Glyph != ' ' {
		end++
	}
	s := NewSelection(Position{Col: start, Row: row}, Position{Col: end, Row: row})
	g.selection = &s
}

// ClearSelection discards any active selection.
func (g *Grid) ClearSelection() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.selection = nil
}

// HasSelection reports whether a selection is active.
func (g *Grid) HasSelection() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.selection != nil
}

// IsSelected reports whether (col, row) falls inside the active
// selection, for per-cell highlight rendering.
func (g *Grid) IsSelected(col, row int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.selection == nil {
		return false
	}
	sel := *g.selection
	if row < sel.Start.Row || row > sel.End.Row {
		return false
	}
	from, to := 0, g.cols-1
	if row == sel.Start.Row {
		from = sel.Start.Col
	}
	if row == sel.End.Row {
		to = sel.End.Col
	}
	return col >= from && col <= to
}

// GetSelectedText returns the text spanned by the active selection, or ""
// if there is none.
func (g *Grid) GetSelectedText() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.selection == nil {
		return ""
	}
	sel := *g.selection
	var sb strings.Builder
	for r := sel.Start.Row; r <= sel.End.Row; r++ {
		idx, ok := g.viewportRowToScrollbackIndex(r)
		if !ok {
			continue
		}
		from, to := 0, g.cols
		if r == sel.Start.Row {
			from = sel.Start.Col
		}
		if r == sel.End.Row {
			to = sel.End.Col + 1
		}
		sb.WriteString(strings.TrimRight(cellsToString(clampRow(g.rowsDeque[idx], from, to)), " "))
		if r < sel.End.Row {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func clampRow(row []cell.Cell, from, to int) []cell.Cell {
	if from < 0 {
		from = 0
	}
	if to > len(row) {
		to = len(row)
	}
	if from > to {
		from = to
	}
	return row[from:to]
}
