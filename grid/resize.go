package grid

import "github.com/raventerminal/core/cell"

// Resize changes the viewport dimensions, rewrapping scrollback+viewport
// content to the new column width (reflow) and adjusting the row count.
// Logical lines (runs of rows joined by soft-wrap) are reconstructed, their
// trailing blank cells trimmed, then rewrapped at the new width; hard line
// breaks are preserved. Rows added by rewrapping are absorbed by dropping
// blank lines below the cursor's line, where there are any. The cursor is
// placed on the first row of the logical line it was on, at its column
// within that line clamped to the new width.
func (g *Grid) Resize(cols, rows int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if cols == g.cols && rows == g.rows {
		return
	}

	cursorIdx, cursorCol := g.cursorLogicalOffsetLocked()

	if cols != g.cols {
		before := g.totalRows()
		lines := g.logicalLinesLocked()
		g.rowsDeque, g.wrapped = rewrap(lines, cols)
		g.cols = cols
		// Each empty logical line is exactly one row, so trailing empty
		// lines can be dropped row by row until the growth is absorbed.
		for last := len(lines) - 1; last > cursorIdx && len(lines[last].cells) == 0 && g.totalRows() > before; last-- {
			g.rowsDeque = g.rowsDeque[:len(g.rowsDeque)-1]
			g.wrapped = g.wrapped[:len(g.wrapped)-1]
		}
	}

	g.rows = rows
	if rows > g.scrollBottom || g.scrollBottom == 0 {
		g.scrollBottom = rows
	}
	if g.scrollTop < 1 {
		g.scrollTop = 1
	}

	for g.totalRows() < rows {
		g.rowsDeque = append(g.rowsDeque, newRow(g.cols))
		g.wrapped = append(g.wrapped, false)
	}
	g.enforceScrollbackCapLocked()

	g.restoreCursorFromLogicalOffsetLocked(cursorIdx, cursorCol)
	max := g.totalRows() - g.rows
	if max < 0 {
		max = 0
	}
	if g.viewportOffset > max {
		g.viewportOffset = max
	}
}

// logicalLine is a hard-wrapped line reconstructed from one or more
// physical rows joined by soft wraps.
type logicalLine struct {
	cells []cell.Cell
}

// logicalLinesLocked walks rowsDeque front to back, joining soft-wrap runs
// into logical lines and trimming each line's trailing empty cells.
func (g *Grid) logicalLinesLocked() []logicalLine {
	var lines []logicalLine
	var cur []cell.Cell
	for i, row := range g.rowsDeque {
		if i > 0 && g.wrapped[i] {
			cur = append(cur, row...)
		} else {
			if i > 0 {
				lines = append(lines, logicalLine{cells: trimTrailingEmpty(cur)})
			}
			cur = append([]cell.Cell{}, row...)
		}
	}
	lines = append(lines, logicalLine{cells: trimTrailingEmpty(cur)})
	return lines
}

func trimTrailingEmpty(cells []cell.Cell) []cell.Cell {
	end := len(cells)
	for end > 0 && cells[end-1].IsEmpty() {
		end--
	}
	return cells[:end]
}

// rewrap lays logical lines out at the given column width, splitting any
// line longer than cols into soft-wrapped continuation rows and padding
// every row's remainder with empty cells.
func rewrap(lines []logicalLine, cols int) ([][]cell.Cell, []bool) {
	var rows [][]cell.Cell
	var wrapped []bool
	for _, line := range lines {
		cells := line.cells
		if len(cells) == 0 {
			rows = append(rows, newRow(cols))
			wrapped = append(wrapped, false)
			continue
		}
		first := true
		for len(cells) > 0 {
			n := cols
			if n > len(cells) {
				n = len(cells)
			}
			row := newRow(cols)
			copy(row, cells[:n])
			rows = append(rows, row)
			wrapped = append(wrapped, !first)
			first = false
			cells = cells[n:]
		}
	}
	if len(rows) == 0 {
		rows = append(rows, newRow(cols))
		wrapped = append(wrapped, false)
	}
	return rows, wrapped
}

// cursorLogicalOffsetLocked returns the cursor's position as a (logical
// line index, column-within-line) pair, computed before a column-width
// change takes effect.
func (g *Grid) cursorLogicalOffsetLocked() (int, int) {
	rowIdx := g.liveRowIndex(g.cursorRow)
	lineIdx, col := 0, 0
	for i := 1; i <= rowIdx && i < len(g.rowsDeque); i++ {
		if g.wrapped[i] {
			col += g.cols
		} else {
			lineIdx++
			col = 0
		}
	}
	return lineIdx, col + g.cursorCol
}

// restoreCursorFromLogicalOffsetLocked is a best-effort placement of the
// cursor after reflow; exact fidelity is not guaranteed across a column
// change, only that it lands within bounds.
func (g *Grid) restoreCursorFromLogicalOffsetLocked(lineIdx, col int) {
	row := 0
	seen := 0
	for i, w := range g.wrapped {
		if i > 0 && !w {
			seen++
		}
		if seen == lineIdx {
			row = i
			break
		}
		row = i
	}
	viewportRow := row - (g.totalRows() - g.rows)
	g.cursorRow = clamp(viewportRow, 0, g.rows-1)
	g.cursorCol = clamp(col, 0, g.cols-1)
}
