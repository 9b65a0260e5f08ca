// Command raventerm is the terminal's entry point: it wires the GLFW
// window, the GL renderer, the tab manager and the keybinding table
// together and runs the main event/render loop.
package main

import (
	"log"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/raventerminal/core/actions"
	"github.com/raventerminal/core/commands"
	"github.com/raventerminal/core/config"
	"github.com/raventerminal/core/grid"
	"github.com/raventerminal/core/keybindings"
	"github.com/raventerminal/core/renderer"
	"github.com/raventerminal/core/tab"
	"github.com/raventerminal/core/window"
)

// lineBuffer tracks the line currently being typed, so that a full line
// can be checked against the command registry before it reaches the
// shell.
type lineBuffer struct {
	buffer strings.Builder
}

func (lb *lineBuffer) addChar(c rune) { lb.buffer.WriteRune(c) }

func (lb *lineBuffer) backspace() {
	s := lb.buffer.String()
	if len(s) == 0 {
		return
	}
	runes := []rune(s)
	lb.buffer.Reset()
	lb.buffer.WriteString(string(runes[:len(runes)-1]))
}

func (lb *lineBuffer) clear()          { lb.buffer.Reset() }
func (lb *lineBuffer) getLine() string { return lb.buffer.String() }

type mouseSelection struct {
	active   bool
	grid     *grid.Grid
	startCol int
	startRow int
}

type toastState struct {
	message   string
	expiresAt time.Time
}

func main() {
	winConfig := window.DefaultConfig()
	win, err := window.NewWindow(winConfig)
	if err != nil {
		log.Fatalf("raventerm: create window: %v", err)
	}
	defer win.Destroy()

	rend, err := renderer.New()
	if err != nil {
		log.Fatalf("raventerm: create renderer: %v", err)
	}
	defer rend.Destroy()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("raventerm: load config: %v", err)
	}
	rend.SetThemeByName(cfg.Theme)
	if cfg.FontSize > 0 {
		if err := rend.SetDefaultFontSize(float32(cfg.FontSize)); err != nil {
			log.Printf("raventerm: apply configured font size: %v", err)
		}
	}

	width, height := win.GetFramebufferSize()
	cols, rows := rend.CalculateGridSize(width, height)

	tabManager, err := tab.NewManager(uint16(cols), uint16(rows), cfg.ShellConfig())
	if err != nil {
		log.Fatalf("raventerm: create tab manager: %v", err)
	}

	cmdRegistry := commands.NewRegistry(actions.NewRegistry())

	var currentMods glfw.ModifierKey
	cursorVisible := true
	lastBlink := time.Now()
	blinkInterval := 500 * time.Millisecond
	lineBuf := &lineBuffer{}
	showHelp := false
	selection := &mouseSelection{}
	toast := &toastState{}

	showToast := func(message string) {
		if strings.TrimSpace(message) == "" {
			return
		}
		toast.message = message
		toast.expiresAt = time.Now().Add(900 * time.Millisecond)
	}

	rescaleGrid := func() {
		w, h := win.GetFramebufferSize()
		c, r := rend.CalculateGridSize(w, h)
		tabManager.ResizeAll(uint16(c), uint16(r))
	}

	win.GLFW().SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action == glfw.Release {
			return
		}
		currentMods = mods

		activeTab := tabManager.ActiveTab()
		if activeTab == nil {
			return
		}

		if showHelp {
			if key == glfw.KeyEscape || key == glfw.KeySlash {
				showHelp = false
			}
			return
		}

		const appCursorMode = false // DECCKM (app cursor keys) is not tracked by grid
		result := keybindings.TranslateKey(key, mods, appCursorMode)

		switch result.Action {
		case keybindings.ActionExit:
			win.SetShouldClose(true)
		case keybindings.ActionInput:
			if len(result.Data) == 1 && result.Data[0] == '\r' {
				line := lineBuf.getLine()
				res := cmdRegistry.HandleCommand(line, rend)
				if res.Handled {
					activeTab.Write([]byte("\r\n"))
					lineBuf.clear()
					showToast(res.Output)
					return
				}
				lineBuf.clear()
			}
			if len(result.Data) == 1 && result.Data[0] == 0x7f {
				lineBuf.backspace()
			}
			if len(result.Data) == 1 && (result.Data[0] == 0x03 || result.Data[0] == 0x15) {
				lineBuf.clear()
			}
			activeTab.Write(result.Data)
			activeTab.Grid.ResetViewport()
		case keybindings.ActionScrollUp:
			activeTab.Grid.ScrollUp(5)
		case keybindings.ActionScrollDown:
			activeTab.Grid.ScrollDown(5)
		case keybindings.ActionScrollUpLine:
			activeTab.Grid.ScrollUp(1)
		case keybindings.ActionScrollDownLine:
			activeTab.Grid.ScrollDown(1)
		case keybindings.ActionToggleFullscreen:
			win.ToggleFullscreen()
		case keybindings.ActionCopy:
			g := activeTab.Grid
			text := g.GetSelectedText()
			if text == "" {
				text = g.VisibleText()
			}
			if text != "" {
				glfw.SetClipboardString(text)
				showToast("Copied to clipboard")
			}
		case keybindings.ActionPaste:
			if clip := glfw.GetClipboardString(); clip != "" {
				clip = strings.ReplaceAll(clip, "\r\n", "\n")
				clip = strings.ReplaceAll(clip, "\n", "\r")
				activeTab.Write([]byte(clip))
				activeTab.Grid.ResetViewport()
				showToast("Pasted from clipboard")
			}
		case keybindings.ActionNewTab:
			lineBuf.clear()
			if err := tabManager.NewTab(); err != nil {
				log.Printf("raventerm: new tab: %v", err)
			}
		case keybindings.ActionCloseTab:
			tabManager.CloseCurrentTab()
		case keybindings.ActionNextTab:
			lineBuf.clear()
			tabManager.NextTab()
		case keybindings.ActionPrevTab:
			lineBuf.clear()
			tabManager.PrevTab()
		case keybindings.ActionShowHelp:
			showHelp = !showHelp
		case keybindings.ActionZoomIn:
			if err := rend.ZoomIn(); err == nil {
				rescaleGrid()
			}
		case keybindings.ActionZoomOut:
			if err := rend.ZoomOut(); err == nil {
				rescaleGrid()
			}
		case keybindings.ActionZoomReset:
			if err := rend.ZoomReset(); err == nil {
				rescaleGrid()
			}
		}
	})

	win.GLFW().SetCharCallback(func(w *glfw.Window, char rune) {
		if showHelp {
			return
		}
		activeTab := tabManager.ActiveTab()
		if activeTab == nil {
			return
		}
		lineBuf.addChar(char)
		activeTab.Write(keybindings.TranslateChar(char, currentMods))
		activeTab.Grid.ResetViewport()
	})

	win.GLFW().SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		win.SetViewport(width, height)
		cols, rows := rend.CalculateGridSize(width, height)
		tabManager.ResizeAll(uint16(cols), uint16(rows))
	})

	win.GLFW().SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		activeTab := tabManager.ActiveTab()
		if activeTab == nil {
			return
		}
		if yoff > 0 {
			activeTab.Grid.ScrollUp(3)
		} else if yoff < 0 {
			activeTab.Grid.ScrollDown(3)
		}
	})

	win.GLFW().SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if showHelp {
			return
		}
		activeTab := tabManager.ActiveTab()
		if activeTab == nil {
			return
		}
		g := activeTab.Grid
		x, y := w.GetCursorPos()

		switch button {
		case glfw.MouseButtonLeft:
			switch action {
			case glfw.Press:
				col, row, ok := rend.HitTest(x, y, g)
				if !ok {
					g.ClearSelection()
					selection.active = false
					return
				}
				if mods&glfw.ModControl != 0 {
					if urlText, _, _ := urlAtCellRange(g, col, row); urlText != "" {
						if err := openURL(urlText); err != nil {
							log.Printf("raventerm: open url %q: %v", urlText, err)
						}
						return
					}
				}
				selection.active = true
				selection.grid = g
				selection.startCol = col
				selection.startRow = row
				g.StartSelection(col, row)
			case glfw.Release:
				if !selection.active {
					return
				}
				selection.active = false
				if text := g.GetSelectedText(); text != "" {
					glfw.SetClipboardString(text)
					showToast("Copied to clipboard")
				}
			}
		case glfw.MouseButtonRight:
			if action != glfw.Press {
				return
			}
			col, row, ok := rend.HitTest(x, y, g)
			if !ok {
				return
			}
			if mods&glfw.ModControl != 0 {
				if urlText, _, _ := urlAtCellRange(g, col, row); urlText != "" {
					if err := openURL(urlText); err != nil {
						log.Printf("raventerm: open url %q: %v", urlText, err)
					}
					return
				}
			}
			if g.HasSelection() {
				if text := g.GetSelectedText(); text != "" {
					glfw.SetClipboardString(text)
					showToast("Copied to clipboard")
				}
				return
			}
			if clip := glfw.GetClipboardString(); clip != "" {
				clip = strings.ReplaceAll(clip, "\r\n", "\n")
				clip = strings.ReplaceAll(clip, "\n", "\r")
				activeTab.Write([]byte(clip))
				g.ResetViewport()
				showToast("Pasted from clipboard")
			}
		}
	})

	win.GLFW().SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		if showHelp {
			rend.ClearHoverURL()
			return
		}
		activeTab := tabManager.ActiveTab()
		if activeTab == nil {
			rend.ClearHoverURL()
			return
		}
		g := activeTab.Grid

		if selection.active && selection.grid == g {
			col, row, ok := rend.HitTest(xpos, ypos, g)
			if ok {
				g.ExtendSelection(col, row)
			}
			rend.ClearHoverURL()
			return
		}

		col, row, ok := rend.HitTest(xpos, ypos, g)
		if !ok {
			rend.ClearHoverURL()
			return
		}
		if _, startCol, endCol := urlAtCellRange(g, col, row); startCol <= endCol {
			rend.SetHoverURL(g, row, startCol, endCol)
			return
		}
		rend.ClearHoverURL()
	})

	for !win.ShouldClose() {
		tabManager.CleanupExited()
		if tabManager.AllExited() {
			break
		}

		now := time.Now()
		if now.Sub(lastBlink) >= blinkInterval {
			cursorVisible = !cursorVisible
			lastBlink = now
		}

		width, height := win.GetFramebufferSize()
		win.SetViewport(width, height)
		rend.RenderWithHelp(tabManager, width, height, cursorVisible, showHelp)
		if now.Before(toast.expiresAt) {
			rend.DrawToast(toast.message, width, height)
		}

		win.SwapBuffers()
		window.PollEvents()

		time.Sleep(time.Millisecond * 16) // ~60 FPS
	}
}

func urlAtCellRange(g *grid.Grid, col, row int) (string, int, int) {
	cols, rows := g.Cols(), g.Rows()
	if g == nil || row < 0 || row >= rows || col < 0 || col >= cols {
		return "", -1, -1
	}

	line := make([]rune, cols)
	for c := 0; c < cols; c++ {
		ch := rune(' ')
		if cl, ok := g.GetCell(c, row); ok && cl.Glyph != 0 {
			ch = cl.Glyph
		}
		line[c] = ch
	}

	if line[col] == ' ' {
		return "", -1, -1
	}

	start, end := col, col
	for start > 0 && line[start-1] != ' ' {
		start--
	}
	for end+1 < len(line) && line[end+1] != ' ' {
		end++
	}

	const trimLeft = "<>\"'()[]{}"
	const trimRight = "<>\"'()[]{}.,;:!?"
	for start <= end && strings.ContainsRune(trimLeft, line[start]) {
		start++
	}
	for end >= start && strings.ContainsRune(trimRight, line[end]) {
		end--
	}
	if start > end {
		return "", -1, -1
	}

	display := string(line[start : end+1])
	target := display
	if strings.HasPrefix(target, "www.") {
		target = "http://" + target
	}
	if !strings.Contains(target, "://") {
		return "", -1, -1
	}

	parsed, err := url.Parse(target)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", -1, -1
	}

	return target, start, end
}

func openURL(target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		cmd = exec.Command("xdg-open", target)
	}
	return cmd.Start()
}
