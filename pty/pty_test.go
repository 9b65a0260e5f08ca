package pty

import (
	"testing"
	"time"
)

func TestStartShellEchoRoundTrip(t *testing.T) {
	s, err := StartShell(ShellConfig{Path: "/bin/sh", SourceRC: false}, 80, 24)
	if err != nil {
		t.Fatalf("StartShell: %v", err)
	}
	s.WriteData([]byte("echo hello\n"))

	deadline := time.After(3 * time.Second)
	var sawHello bool
	for !sawHello {
		select {
		case e, ok := <-s.Events():
			if !ok {
				t.Fatal("event channel closed before seeing output")
			}
			if e.Kind == EventData && containsHello(e.Data) {
				sawHello = true
			}
		case <-deadline:
			t.Fatal("timed out waiting for echoed output")
		}
	}
	s.Shutdown()
}

func containsHello(data []byte) bool {
	s := string(data)
	for i := 0; i+5 <= len(s); i++ {
		if s[i:i+5] == "hello" {
			return true
		}
	}
	return false
}

func TestDefaultShellConfigRespectsEnv(t *testing.T) {
	t.Setenv("SHELL", "/bin/custom-shell")
	if cfg := DefaultShellConfig(); cfg.Path != "/bin/custom-shell" {
		t.Errorf("DefaultShellConfig().Path = %q, want $SHELL (/bin/custom-shell)", cfg.Path)
	}
	t.Setenv("SHELL", "")
	cfg := DefaultShellConfig()
	if cfg.Path == "" {
		t.Error("expected a non-empty default shell path")
	}
}
