// Package tab owns the terminal session glue: one Tab pairs a PTY-backed
// shell (pty.Session) with the Grid it feeds, consuming the session's
// event stream and applying parsed VT actions to the grid as they arrive.
package tab

import (
	"sync"

	"github.com/raventerminal/core/grid"
	"github.com/raventerminal/core/pty"
)

const MaxTabs = 10

// Tab represents a single terminal tab.
type Tab struct {
	Grid *grid.Grid

	session  *pty.Session
	id       int
	exited   bool
	exitedMu sync.Mutex
}

// NewTab creates a new terminal tab running the default shell.
func NewTab(id int, cols, rows uint16) (*Tab, error) {
	return NewTabWithShell(id, cols, rows, pty.DefaultShellConfig())
}

// NewTabWithShell creates a new terminal tab running the given shell
// configuration.
func NewTabWithShell(id int, cols, rows uint16, cfg pty.ShellConfig) (*Tab, error) {
	session, err := pty.StartShell(cfg, cols, rows)
	if err != nil {
		return nil, err
	}

	t := &Tab{
		Grid:    grid.NewGrid(int(cols), int(rows)),
		session: session,
		id:      id,
	}

	go t.eventLoop()

	return t, nil
}

// eventLoop drains the session's event channel, applying every parsed VT
// action to the grid and tracking process exit.
func (t *Tab) eventLoop() {
	for ev := range t.session.Events() {
		switch ev.Kind {
		case pty.EventParsedActions:
			for _, a := range ev.Actions {
				t.Grid.Apply(a)
			}
		case pty.EventProcessExit, pty.EventError:
			t.exitedMu.Lock()
			t.exited = true
			t.exitedMu.Unlock()
		}
	}
	t.exitedMu.Lock()
	t.exited = true
	t.exitedMu.Unlock()
}

// Write sends data to the PTY (e.g. keyboard input).
func (t *Tab) Write(data []byte) {
	t.session.WriteData(data)
}

// HasExited returns true if the shell has exited.
func (t *Tab) HasExited() bool {
	t.exitedMu.Lock()
	defer t.exitedMu.Unlock()
	return t.exited
}

// Resize resizes the tab's PTY and reflows its grid.
func (t *Tab) Resize(cols, rows uint16) {
	t.Grid.Resize(int(cols), int(rows))
	t.session.Resize(cols, rows)
}

// Close shuts down the tab's PTY session.
func (t *Tab) Close() {
	t.session.Shutdown()
}

// ID returns the tab ID.
func (t *Tab) ID() int {
	return t.id
}

// Manager manages multiple terminal tabs.
type Manager struct {
	tabs        []*Tab
	activeIndex int
	nextID      int
	cols        uint16
	rows        uint16
	shellCfg    pty.ShellConfig
	mu          sync.RWMutex
}

// NewManager creates a new tab manager with one initial tab.
func NewManager(cols, rows uint16, shellCfg pty.ShellConfig) (*Manager, error) {
	tm := &Manager{
		tabs:        make([]*Tab, 0, MaxTabs),
		activeIndex: 0,
		nextID:      1,
		cols:        cols,
		rows:        rows,
		shellCfg:    shellCfg,
	}

	if err := tm.NewTab(); err != nil {
		return nil, err
	}

	return tm, nil
}

// NewTab creates and activates a new tab, unless MaxTabs is already reached.
func (tm *Manager) NewTab() error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if len(tm.tabs) >= MaxTabs {
		return nil
	}

	tab, err := NewTabWithShell(tm.nextID, tm.cols, tm.rows, tm.shellCfg)
	if err != nil {
		return err
	}

	tm.nextID++
	tm.tabs = append(tm.tabs, tab)
	tm.activeIndex = len(tm.tabs) - 1

	return nil
}

// CloseCurrentTab closes the active tab, keeping at least one tab open.
func (tm *Manager) CloseCurrentTab() {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if len(tm.tabs) <= 1 {
		return
	}

	tm.tabs[tm.activeIndex].Close()
	tm.tabs = append(tm.tabs[:tm.activeIndex], tm.tabs[tm.activeIndex+1:]...)

	if tm.activeIndex >= len(tm.tabs) {
		tm.activeIndex = len(tm.tabs) - 1
	}
}

// NextTab switches to the next tab.
func (tm *Manager) NextTab() {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if len(tm.tabs) > 1 {
		tm.activeIndex = (tm.activeIndex + 1) % len(tm.tabs)
	}
}

// PrevTab switches to the previous tab.
func (tm *Manager) PrevTab() {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if len(tm.tabs) > 1 {
		tm.activeIndex = (tm.activeIndex - 1 + len(tm.tabs)) % len(tm.tabs)
	}
}

// ActiveTab returns the currently active tab, or nil if there are none.
func (tm *Manager) ActiveTab() *Tab {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	if len(tm.tabs) == 0 {
		return nil
	}
	return tm.tabs[tm.activeIndex]
}

// ResizeAll resizes every tab.
func (tm *Manager) ResizeAll(cols, rows uint16) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	tm.cols = cols
	tm.rows = rows

	for _, tab := range tm.tabs {
		tab.Resize(cols, rows)
	}
}

// CleanupExited closes every tab whose shell has exited and removes it from
// the list. When every tab has exited, they are closed but left in the
// list.
func (tm *Manager) CleanupExited() {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	var active []*Tab
	for _, tab := range tm.tabs {
		if !tab.HasExited() {
			active = append(active, tab)
		} else {
			tab.Close()
		}
	}

	if len(active) > 0 {
		tm.tabs = active
		if tm.activeIndex >= len(tm.tabs) {
			tm.activeIndex = len(tm.tabs) - 1
		}
	}
}

// AllExited reports whether every tab's shell has exited.
func (tm *Manager) AllExited() bool {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	if len(tm.tabs) == 0 {
		return true
	}
	for _, tab := range tm.tabs {
		if !tab.HasExited() {
			return false
		}
	}
	return true
}

// TabCount returns the number of open tabs.
func (tm *Manager) TabCount() int {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return len(tm.tabs)
}

// ActiveIndex returns the index of the active tab.
func (tm *Manager) ActiveIndex() int {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.activeIndex
}

// GetTabs returns a snapshot of every open tab, in display order.
func (tm *Manager) GetTabs() []*Tab {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	result := make([]*Tab, len(tm.tabs))
	copy(result, tm.tabs)
	return result
}
