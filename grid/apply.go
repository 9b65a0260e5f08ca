package grid

import "github.com/raventerminal/core/vtparser"

// Apply interprets one parser action against the grid: printing advances
// the cursor using the grid's current formatting triple, SGR dispatches
// update that triple, and all other CSI/Esc/control dispatches are routed
// to the matching cursor-oriented primitive.
func (g *Grid) Apply(a vtparser.ParseAction) {
	switch a.Kind {
	case vtparser.ActionPrint:
		g.PrintChar(a.Print)
	case vtparser.ActionExecute:
		g.ExecuteControl(a.Execute)
	case vtparser.ActionCsiDispatch:
		if a.CsiKind == vtparser.CsiSgr {
			g.ApplySGR(a.SgrState.Fg, a.SgrState.Bg, a.SgrState.Attrs)
			return
		}
		g.HandleCSIAction(a.CsiCommand, a.CsiParams, a.CsiPrivate)
	case vtparser.ActionEscDispatch:
		g.HandleEscAction(a.EscByte, a.EscKind == vtparser.EscReset)
	case vtparser.ActionOscDispatch:
		// OSC sequences (window title, hyperlinks, working directory) do
		// not change the grid and are ignored here.
	}
}

func param(params []int, i, def int) int {
	if i >= len(params) || params[i] == 0 {
		return def
	}
	return params[i]
}

// HandleCSIAction dispatches the cursor-oriented CSI final bytes the grid
// understands; unrecognized commands are ignored.
func (g *Grid) HandleCSIAction(cmd byte, params []int, private bool) {
	n := param(params, 0, 1)
	switch cmd {
	case 'A':
		g.MoveCursor(0, -n)
	case 'B':
		g.MoveCursor(0, n)
	case 'C':
		g.MoveCursor(n, 0)
	case 'D':
		g.MoveCursor(-n, 0)
	case 'E':
		col, row := g.GetCursor()
		_ = col
		g.SetCursorPos(1, row+1+n)
	case 'F':
		col, row := g.GetCursor()
		_ = col
		g.SetCursorPos(1, row+1-n)
	case 'G':
		_, row := g.GetCursor()
		g.SetCursorPos(param(params, 0, 1), row+1)
	case 'H', 'f':
		row := param(params, 0, 1)
		col := param(params, 1, 1)
		g.SetCursorPos(col, row)
	case 'J':
		switch param(params, 0, 0) {
		case 0:
			g.ClearToEnd()
		case 1:
			g.ClearToStart()
		case 2, 3:
			g.ClearAll()
		}
	case 'K':
		switch param(params, 0, 0) {
		case 0:
			g.ClearLineToEnd()
		case 1:
			g.ClearLineToStart()
		case 2:
			g.ClearLine()
		}
	case 'L':
		g.InsertLines(n)
	case 'M':
		g.DeleteLines(n)
	case 'P':
		g.DeleteChars(n)
	case '@':
		g.InsertChars(n)
	case 'X':
		g.EraseChars(n)
	case 'b':
		g.RepeatChar(n)
	case 'r':
		top := param(params, 0, 1)
		bottom := param(params, 1, g.Rows())
		g.SetScrollRegion(top, bottom)
	case 's':
		g.SaveCursor()
	case 'u':
		g.RestoreCursor()
	case 'h':
		if private {
			g.setPrivateMode(params, true)
		}
	case 'l':
		if private {
			g.setPrivateMode(params, false)
		}
	}
}

// setPrivateMode handles DEC private modes relevant to the grid: the
// alternate screen buffer (1047/1049) and cursor-save pairing (1048/1049).
func (g *Grid) setPrivateMode(params []int, enable bool) {
	for _, p := range params {
		switch p {
		case 1047, 1049:
			if enable {
				if p == 1049 {
					g.SaveCursor()
				}
				g.EnterAltScreen()
			} else {
				g.ExitAltScreen()
				if p == 1049 {
					g.RestoreCursor()
				}
			}
		case 1048:
			if enable {
				g.SaveCursor()
			} else {
				g.RestoreCursor()
			}
		}
	}
}

// HandleEscAction dispatches the two-byte escape sequences the grid
// understands: DECSC/DECRC, IND, RI, NEL. isReset indicates RIS (ESC c),
// which the parser already reflects in its own state; the grid responds
// by clearing the screen and homing the cursor.
func (g *Grid) HandleEscAction(b byte, isReset bool) {
	if isReset {
		g.ClearAll()
		g.SetCursorPos(1, 1)
		return
	}
	switch b {
	case '7':
		g.SaveCursor()
	case '8':
		g.RestoreCursor()
	case 'D':
		g.mu.Lock()
		if g.cursorRow == g.scrollBottom-1 {
			g.shiftRowsUpLocked(g.scrollTop-1, g.scrollBottom-1)
		} else {
			g.cursorRow++
		}
		g.mu.Unlock()
	case 'M':
		g.mu.Lock()
		if g.cursorRow == g.scrollTop-1 {
			g.shiftRowsDownLocked(g.scrollTop-1, g.scrollBottom-1)
		} else {
			g.cursorRow--
		}
		g.mu.Unlock()
	case 'E':
		_, row := g.GetCursor()
		g.SetCursorPos(1, row+2)
	}
}
