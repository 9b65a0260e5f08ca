package actions

import "testing"

func newAction(id, pluginID string) Action {
	return Action{ID: id, Name: id, Description: "test", Category: "general", PluginID: pluginID}
}

func TestRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(newAction("git.status", "git")); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, ok := r.Get("git.status"); !ok {
		t.Fatal("expected action to be registered")
	}
	if err := r.Register(newAction("git.status", "git")); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestInvalidActionID(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{"", "noDot", "a.b.c", ".nopluginname", "plugin."} {
		if err := r.Register(newAction(id, "x")); err == nil {
			t.Errorf("expected %q to be rejected", id)
		}
	}
}

func TestUnregisterPluginActionsDropsAll(t *testing.T) {
	r := NewRegistry()
	r.Register(newAction("x.one", "x"))
	r.Register(newAction("x.two", "x"))
	r.Register(newAction("y.one", "y"))

	r.UnregisterPluginActions("x")
	if r.Count() != 1 {
		t.Fatalf("action_count = %d, want 1", r.Count())
	}
	if _, ok := r.Get("y.one"); !ok {
		t.Fatal("y.one should survive unregistering plugin x")
	}
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	r := NewRegistry()
	r.Register(Action{ID: "x.open", Name: "Open File", Description: "opens a file", Category: "file", PluginID: "x"})
	results := r.Search("OPEN")
	if len(results) != 1 {
		t.Fatalf("expected 1 match, got %d", len(results))
	}
}

func TestDisplayStringWithShortcut(t *testing.T) {
	a := newAction("x.y", "x").WithShortcut("Ctrl+K")
	if got := a.DisplayString(); got != "x.y (Ctrl+K)" {
		t.Errorf("display string = %q", got)
	}
}
