package manifest

import "testing"

const validManifest = `
name = "git-status"
version = "1.0.0"
description = "Shows git status in the status bar"
entry_point = "plugin.wasm"
capabilities = ["block.read", "fs.read"]
raventerm_version = "0.1.0"
`

func TestLoadStringValid(t *testing.T) {
	l := NewLoader("0.1.0")
	m, err := l.LoadString(validManifest)
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	if m.Name != "git-status" || m.EntryPoint != "plugin.wasm" {
		t.Errorf("unexpected manifest: %+v", m)
	}
}

func TestRejectsMissingName(t *testing.T) {
	l := NewLoader("0.1.0")
	_, err := l.LoadString(`
version = "1.0.0"
entry_point = "plugin.wasm"
raventerm_version = "0.1.0"
`)
	if err == nil {
		t.Fatal("expected missing-name error")
	}
}

func TestRejectsNonWasmEntryPoint(t *testing.T) {
	l := NewLoader("0.1.0")
	m := Minimal("x", "plugin.exe")
	if err := l.Validate(&m); err == nil {
		t.Fatal("expected invalid entry point error")
	}
}

func TestRejectsUnknownCapability(t *testing.T) {
	l := NewLoader("0.1.0")
	m := Minimal("x", "plugin.wasm")
	m.Capabilities = []string{"not.a.real.capability"}
	if err := l.Validate(&m); err == nil {
		t.Fatal("expected unknown capability error")
	}
}

func TestCapabilityWithSuffixIsAllowed(t *testing.T) {
	l := NewLoader("0.1.0")
	m := Minimal("x", "plugin.wasm")
	m.Capabilities = []string{"fs.read:/home/user/project"}
	if err := l.Validate(&m); err != nil {
		t.Errorf("expected scoped capability to be allowed: %v", err)
	}
}
