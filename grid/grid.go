// Package grid implements the Terminal Grid (spec component C3): a
// viewport backed by a scrollback deque of rows, with cursor, selection
// and resize-with-reflow semantics.
package grid

import (
	"strings"
	"sync"

	"github.com/raventerminal/core/cell"
)

// DefaultMaxScrollback is the scrollback cap used unless overridden.
const DefaultMaxScrollback = 10000

// Grid owns the viewport + scrollback deque, cursor, current formatting
// triple and selection for one terminal session.
type Grid struct {
	mu sync.Mutex

	cols, rows int
	// rowsDeque holds scrollback rows followed by the live viewport rows;
	// the last `rows` entries are always the viewport.
	rowsDeque     [][]cell.Cell
	// wrapped[i] reports whether rowsDeque[i] is a soft-wrap continuation
	// of rowsDeque[i-1] (as opposed to starting after a hard newline).
	wrapped        []bool
	viewportOffset int
	maxScrollback  int

	cursorCol, cursorRow int

	fg    cell.Color
	bg    cell.Color
	attrs cell.Attrs

	scrollTop, scrollBottom int // 1-based DECSTBM region, inclusive

	savedCursorCol, savedCursorRow int

	lastChar  rune
	lastFg    cell.Color
	lastBg    cell.Color
	lastAttrs cell.Attrs

	selection *Selection

	altScreen     bool
	savedRows     [][]cell.Cell
	savedWrapped  []bool
	savedOffset   int
	savedCursorAS [2]int
}

// NewGrid allocates a grid with `rows` empty viewport rows and the default
// scrollback cap.
func NewGrid(cols, rows int) *Grid {
	g := &Grid{
		cols:          cols,
		rows:          rows,
		maxScrollback: DefaultMaxScrollback,
		fg:            cell.DefaultFg(),
		bg:            cell.DefaultBg(),
		scrollTop:     1,
		scrollBottom:  rows,
		lastChar:      ' ',
	}
	g.rowsDeque = make([][]cell.Cell, rows)
	g.wrapped = make([]bool, rows)
	for i := range g.rowsDeque {
		g.rowsDeque[i] = newRow(cols)
	}
	return g
}

func newRow(cols int) []cell.Cell {
	row := make([]cell.Cell, cols)
	for i := range row {
		row[i] = cell.Empty()
	}
	return row
}

// Cols returns the viewport column count.
func (g *Grid) Cols() int { g.mu.Lock(); defer g.mu.Unlock(); return g.cols }

// Rows returns the viewport row count.
func (g *Grid) Rows() int { g.mu.Lock(); defer g.mu.Unlock(); return g.rows }

func (g *Grid) totalRows() int { return len(g.rowsDeque) }

// viewportRowToScrollbackIndex maps a 0-based display row to an index into
// rowsDeque, per §4.2.
func (g *Grid) viewportRowToScrollbackIndex(r int) (int, bool) {
	total := g.totalRows()
	var idx int
	if total < g.rows {
		idx = r
	} else {
		idx = (total - g.rows - g.viewportOffset) + r
	}
	if idx < 0 || idx >= total {
		return 0, false
	}
	return idx, true
}

// GetCell returns the cell at the given display position, or false if out
// of range.
func (g *Grid) GetCell(col, row int) (cell.Cell, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.getCellLocked(col, row)
}

func (g *Grid) getCellLocked(col, row int) (cell.Cell, bool) {
	if col < 0 || col >= g.cols {
		return cell.Cell{}, false
	}
	idx, ok := g.viewportRowToScrollbackIndex(row)
	if !ok {
		return cell.Cell{}, false
	}
	return g.rowsDeque[idx][col], true
}

func (g *Grid) setCellLocked(col, row int, c cell.Cell) bool {
	if col < 0 || col >= g.cols {
		return false
	}
	idx, ok := g.viewportRowToScrollbackIndex(row)
	if !ok {
		return false
	}
	g.rowsDeque[idx][col] = c
	return true
}

// liveRowIndex returns the rowsDeque index of the viewportRow-th row
// counting from the live viewport's top (0..rows-1), independent of
// viewportOffset.
func (g *Grid) liveRowIndex(viewportRow int) int {
	return g.totalRows() - g.rows + viewportRow
}

// GetCursor returns the 0-based cursor column and row.
func (g *Grid) GetCursor() (int, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cursorCol, g.cursorRow
}

// ApplySGR mirrors the parser's resolved SGR state into the grid's current
// formatting triple, per §4.2.
func (g *Grid) ApplySGR(fg, bg cell.Color, attrs cell.Attrs) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fg, g.bg, g.attrs = fg, bg, attrs
}

// PrintChar writes a cell at the cursor using the current formatting
// triple, then advances the cursor, wrapping via newline on overflow.
func (g *Grid) PrintChar(c rune) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cursorCol >= g.cols {
		g.wrapLineLocked()
	}
	g.setCellLocked(g.cursorCol, g.cursorRow, cell.Cell{Glyph: c, Fg: g.fg, Bg: g.bg, Attrs: g.attrs})
	g.lastChar, g.lastFg, g.lastBg, g.lastAttrs = c, g.fg, g.bg, g.attrs
	g.cursorCol++
}

// wrapLineLocked advances to the next row as a soft-wrap continuation of
// the current one (column overflow, not an explicit newline).
func (g *Grid) wrapLineLocked() {
	g.cursorCol = 0
	g.cursorRow++
	if g.cursorRow > g.scrollBottom-1 {
		g.scrollUpRegionLocked()
		g.cursorRow = g.scrollBottom - 1
		g.setWrappedLocked(g.liveRowIndex(g.cursorRow), true)
		return
	}
	g.setWrappedLocked(g.liveRowIndex(g.cursorRow), true)
}

func (g *Grid) setWrappedLocked(idx int, v bool) {
	if idx >= 0 && idx < len(g.wrapped) {
		g.wrapped[idx] = v
	}
}

// ExecuteControl dispatches a C0 control byte: LF/VT/FF newline, CR
// carriage return, HT tab, BS backspace. Other control bytes are ignored.
func (g *Grid) ExecuteControl(b byte) {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch b {
	case 0x0a, 0x0b, 0x0c:
		g.newlineLocked()
		g.viewportOffset = 0
	case 0x0d:
		g.cursorCol = 0
	case 0x09:
		next := ((g.cursorCol / 8) + 1) * 8
		if next > g.cols-1 {
			next = g.cols - 1
		}
		g.cursorCol = next
	case 0x08:
		if g.cursorCol > 0 {
			g.cursorCol--
		}
	}
}

func (g *Grid) newlineLocked() {
	g.cursorCol = 0
	g.cursorRow++
	if g.cursorRow > g.scrollBottom-1 {
		g.scrollUpRegionLocked()
		g.cursorRow = g.scrollBottom - 1
		g.setWrappedLocked(g.liveRowIndex(g.cursorRow), false)
		return
	}
	g.setWrappedLocked(g.liveRowIndex(g.cursorRow), false)
}

// scrollUpRegionLocked scrolls the active DECSTBM region up by one line,
// pushing the departing top line into scrollback only when the region is
// the full viewport.
func (g *Grid) scrollUpRegionLocked() {
	if g.scrollTop == 1 && g.scrollBottom == g.rows {
		g.rowsDeque = append(g.rowsDeque, newRow(g.cols))
		g.wrapped = append(g.wrapped, false)
		g.enforceScrollbackCapLocked()
		return
	}
	top := g.liveRowIndex(g.scrollTop - 1)
	bottom := g.liveRowIndex(g.scrollBottom - 1)
	for i := top; i < bottom; i++ {
		g.rowsDeque[i] = g.rowsDeque[i+1]
		g.wrapped[i] = g.wrapped[i+1]
	}
	g.rowsDeque[bottom] = newRow(g.cols)
	g.wrapped[bottom] = false
}

func (g *Grid) enforceScrollbackCapLocked() {
	max := g.maxScrollback + g.rows
	for g.totalRows() > max {
		g.rowsDeque = g.rowsDeque[1:]
		g.wrapped = g.wrapped[1:]
	}
}

// ScrollUp scrolls the viewport up (toward scrollback) by n lines.
func (g *Grid) ScrollUp(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	max := g.totalRows() - g.rows
	if max < 0 {
		max = 0
	}
	g.viewportOffset += n
	if g.viewportOffset > max {
		g.viewportOffset = max
	}
}

// ScrollDown scrolls the viewport down (toward the live tail) by n lines.
func (g *Grid) ScrollDown(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.viewportOffset -= n
	if g.viewportOffset < 0 {
		g.viewportOffset = 0
	}
}

// ScrollToTop scrolls all the way up into scrollback.
func (g *Grid) ScrollToTop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	max := g.totalRows() - g.rows
	if max < 0 {
		max = 0
	}
	g.viewportOffset = max
}

// ResetViewport scrolls back to the live tail.
func (g *Grid) ResetViewport() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.viewportOffset = 0
}

// ViewportOffset returns the current scroll offset.
func (g *Grid) ViewportOffset() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.viewportOffset
}

// SetScrollRegion sets the DECSTBM scrolling region (1-based, inclusive).
func (g *Grid) SetScrollRegion(top, bottom int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if top < 1 {
		top = 1
	}
	if bottom > g.rows {
		bottom = g.rows
	}
	if top >= bottom {
		top, bottom = 1, g.rows
	}
	g.scrollTop, g.scrollBottom = top, bottom
}

// GetScrollRegion returns the active DECSTBM region.
func (g *Grid) GetScrollRegion() (int, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scrollTop, g.scrollBottom
}

// MoveCursor moves the cursor by (dCol, dRow), clamped into bounds.
func (g *Grid) MoveCursor(dCol, dRow int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cursorCol = clamp(g.cursorCol+dCol, 0, g.cols-1)
	g.cursorRow = clamp(g.cursorRow+dRow, 0, g.rows-1)
}

// SetCursorPos sets the cursor to a 1-based (col, row) position, clamped.
func (g *Grid) SetCursorPos(col, row int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cursorCol = clamp(col-1, 0, g.cols-1)
	g.cursorRow = clamp(row-1, 0, g.rows-1)
}

// SaveCursor stores the cursor position for a later RestoreCursor.
func (g *Grid) SaveCursor() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.savedCursorCol, g.savedCursorRow = g.cursorCol, g.cursorRow
}

// RestoreCursor restores the cursor position saved by SaveCursor.
func (g *Grid) RestoreCursor() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cursorCol, g.cursorRow = g.savedCursorCol, g.savedCursorRow
}

// RepeatChar repeats the last printed character n times (REP).
func (g *Grid) RepeatChar(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fg, bg, attrs, ch := g.fg, g.bg, g.attrs, g.lastChar
	g.fg, g.bg, g.attrs = g.lastFg, g.lastBg, g.lastAttrs
	for i := 0; i < n; i++ {
		if g.cursorCol >= g.cols {
			g.wrapLineLocked()
		}
		g.setCellLocked(g.cursorCol, g.cursorRow, cell.Cell{Glyph: ch, Fg: g.fg, Bg: g.bg, Attrs: g.attrs})
		g.cursorCol++
	}
	g.fg, g.bg, g.attrs = fg, bg, attrs
}

// EnterAltScreen swaps in a fresh blank viewport, stashing the current
// rows for a matching ExitAltScreen.
func (g *Grid) EnterAltScreen() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.altScreen {
		return
	}
	g.savedRows = g.rowsDeque
	g.savedWrapped = g.wrapped
	g.savedOffset = g.viewportOffset
	g.savedCursorAS = [2]int{g.cursorCol, g.cursorRow}
	g.rowsDeque = make([][]cell.Cell, g.rows)
	g.wrapped = make([]bool, g.rows)
	for i := range g.rowsDeque {
		g.rowsDeque[i] = newRow(g.cols)
	}
	g.viewportOffset = 0
	g.cursorCol, g.cursorRow = 0, 0
	g.altScreen = true
}

// ExitAltScreen restores the rows stashed by EnterAltScreen.
func (g *Grid) ExitAltScreen() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.altScreen || g.savedRows == nil {
		return
	}
	g.rowsDeque = g.savedRows
	g.wrapped = g.savedWrapped
	g.viewportOffset = g.savedOffset
	g.cursorCol, g.cursorRow = g.savedCursorAS[0], g.savedCursorAS[1]
	g.savedRows = nil
	g.savedWrapped = nil
	g.altScreen = false
}

// InAltScreen reports whether the alternate screen buffer is active.
func (g *Grid) InAltScreen() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.altScreen
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// VisibleText renders the current viewport as newline-joined text,
// trimming trailing whitespace per row.
func (g *Grid) VisibleText() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var sb strings.Builder
	for r := 0; r < g.rows; r++ {
		idx, ok := g.viewportRowToScrollbackIndex(r)
		if !ok {
			continue
		}
		line := cellsToString(g.rowsDeque[idx])
		sb.WriteString(strings.TrimRight(line, " "))
		if r < g.rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func cellsToString(row []cell.Cell) string {
	var sb strings.Builder
	for _, c := range row {
		if c.Glyph == 0 {
			sb.WriteByte(' ')
			continue
		}
		sb.WriteRune(c.Glyph)
	}
	return sb.String()
}
