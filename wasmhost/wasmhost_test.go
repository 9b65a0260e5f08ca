package wasmhost

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/raventerminal/core/resource"
)

func TestRuntimeCreation(t *testing.T) {
	r, err := NewRuntime(context.Background(), "0.1.0")
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	defer r.Close()
	if len(r.LoadedPlugins()) != 0 {
		t.Error("expected no plugins loaded initially")
	}
}

func TestRuntimeWithCustomLimits(t *testing.T) {
	r, err := NewRuntimeWithLimits(context.Background(), "0.1.0", resource.DevelopmentLimits())
	if err != nil {
		t.Fatalf("NewRuntimeWithLimits: %v", err)
	}
	defer r.Close()
	if len(r.LoadedPlugins()) != 0 {
		t.Error("expected no plugins loaded initially")
	}
}

func TestPluginLifecycleRejectsNonexistentDir(t *testing.T) {
	r, err := NewRuntime(context.Background(), "0.1.0")
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	defer r.Close()

	if len(r.LoadedPlugins()) != 0 {
		t.Error("expected no plugins loaded initially")
	}
	if _, err := r.LoadPlugin("/nonexistent"); err == nil {
		t.Error("expected loading a nonexistent plugin directory to fail")
	}
}

func TestActionResultConstructors(t *testing.T) {
	success := SuccessResult("Test success")
	if !success.Success || success.Message != "Test success" || success.Data != nil {
		t.Errorf("unexpected success result: %+v", success)
	}

	errResult := ErrorResult("Test error")
	if errResult.Success || errResult.Message != "Test error" {
		t.Errorf("unexpected error result: %+v", errResult)
	}

	withData := SuccessResultWithData("With data", json.RawMessage(`{"key":"value"}`))
	if !withData.Success || withData.Data == nil {
		t.Errorf("unexpected success-with-data result: %+v", withData)
	}
}

func TestUnloadNonexistentPlugin(t *testing.T) {
	r, err := NewRuntime(context.Background(), "0.1.0")
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	defer r.Close()

	if err := r.UnloadPlugin("nonexistent"); err == nil {
		t.Error("expected unloading a nonexistent plugin to fail")
	}
}

func TestExecuteFunctionOnNonexistentPlugin(t *testing.T) {
	r, err := NewRuntime(context.Background(), "0.1.0")
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	defer r.Close()

	if _, err := r.ExecutePluginFunction("nonexistent", "test"); err == nil {
		t.Error("expected executing a function on a nonexistent plugin to fail")
	}
}

func TestActionContextJSONRoundTrip(t *testing.T) {
	ctx := ActionContext{
		ActionID: "test.action",
		Args:     []json.RawMessage{json.RawMessage(`"arg1"`), json.RawMessage("42")},
		UserData: json.RawMessage(`{"key":"value"}`),
	}

	data, err := json.Marshal(ctx)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var parsed ActionContext
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if parsed.ActionID != ctx.ActionID {
		t.Errorf("action id mismatch: got %q want %q", parsed.ActionID, ctx.ActionID)
	}
	if len(parsed.Args) != len(ctx.Args) {
		t.Errorf("args length mismatch: got %d want %d", len(parsed.Args), len(ctx.Args))
	}
	if string(parsed.UserData) != string(ctx.UserData) {
		t.Errorf("user data mismatch: got %s want %s", parsed.UserData, ctx.UserData)
	}
}
