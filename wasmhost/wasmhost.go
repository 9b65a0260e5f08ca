// Package wasmhost implements the WASM plugin runtime (spec component
// C13): it compiles and instantiates plugin modules with wazero, enforces
// capability and resource limits through host functions, and drives the
// execute_action call convention used to invoke a plugin's contributed
// actions.
package wasmhost

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/raventerminal/core/actions"
	"github.com/raventerminal/core/capability"
	"github.com/raventerminal/core/logging"
	"github.com/raventerminal/core/manifest"
	"github.com/raventerminal/core/resource"
)

var log = logging.New("wasmhost")

// Error is a sentinel-style error for runtime operations.
type Error struct {
	Kind string
	Arg  string
}

func (e *Error) Error() string {
	if e.Arg == "" {
		return e.Kind
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Arg)
}

func errPluginNotFound(id string) error { return &Error{"plugin not found", id} }

// ActionResult is the outcome of one execute_action call, exchanged with a
// plugin as JSON across the module boundary.
type ActionResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// SuccessResult builds a successful ActionResult with no payload.
func SuccessResult(message string) ActionResult {
	return ActionResult{Success: true, Message: message}
}

// SuccessResultWithData builds a successful ActionResult carrying data.
func SuccessResultWithData(message string, data json.RawMessage) ActionResult {
	return ActionResult{Success: true, Message: message, Data: data}
}

// ErrorResult builds a failed ActionResult.
func ErrorResult(message string) ActionResult {
	return ActionResult{Success: false, Message: message}
}

// ActionContext is passed to a plugin's execute_action export as JSON.
type ActionContext struct {
	ActionID string          `json:"action_id"`
	Args     []json.RawMessage `json:"args,omitempty"`
	UserData json.RawMessage `json:"user_data,omitempty"`
}

// LoadedPlugin wraps one instantiated plugin module together with its
// manifest, capability grants and live resource monitor.
type LoadedPlugin struct {
	mod        api.Module
	manifest   manifest.PluginManifest
	caps       *capability.Set
	monitor    *resource.Monitor
	allocate   api.Function
	deallocate api.Function
}

// WasmRuntime hosts every loaded plugin module for one RavenTerm process.
type WasmRuntime struct {
	mu             sync.Mutex
	rt             wazero.Runtime
	instances      map[string]*LoadedPlugin
	limits         resource.ExecutionLimits
	manifestLoader *manifest.Loader
	ctx            context.Context
}

// NewRuntime builds a WasmRuntime with the default resource limits.
func NewRuntime(ctx context.Context, currentVersion string) (*WasmRuntime, error) {
	return NewRuntimeWithLimits(ctx, currentVersion, resource.DefaultLimits())
}

// NewRuntimeWithLimits builds a WasmRuntime with a caller-supplied limit
// set, applied to every plugin instance it loads.
func NewRuntimeWithLimits(ctx context.Context, currentVersion string, limits resource.ExecutionLimits) (*WasmRuntime, error) {
	r := &WasmRuntime{
		rt:             wazero.NewRuntime(ctx),
		instances:      make(map[string]*LoadedPlugin),
		limits:         limits,
		manifestLoader: manifest.NewLoader(currentVersion),
		ctx:            ctx,
	}
	if err := r.addHostFunctions(ctx); err != nil {
		r.rt.Close(ctx)
		return nil, err
	}
	return r, nil
}

// addHostFunctions registers the env.host_log and env.host_check_capability
// imports every plugin module links against.
func (r *WasmRuntime) addHostFunctions(ctx context.Context) error {
	_, err := r.rt.NewHostModuleBuilder("env").
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(r.hostLog),
			[]api.ValueType{api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32}, nil).
		Export("host_log").
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(r.hostCheckCapability),
			[]api.ValueType{api.ValueTypeI32, api.ValueTypeI32}, []api.ValueType{api.ValueTypeI32}).
		Export("host_check_capability").
		Instantiate(ctx)
	if err != nil {
		return fmt.Errorf("wasmhost: instantiate env module: %w", err)
	}
	return nil
}

// hostLog backs env.host_log(level, ptr, len): a plugin writes a UTF-8
// message into its own memory and asks the host to log it.
func (r *WasmRuntime) hostLog(_ context.Context, mod api.Module, stack []uint64) {
	level := api.DecodeI32(stack[0])
	ptr := api.DecodeU32(stack[1])
	length := api.DecodeU32(stack[2])
	buf, ok := mod.Memory().Read(ptr, length)
	if !ok {
		return
	}
	msg := string(buf)
	switch level {
	case 0:
		log.Debug().Msg(msg)
	case 1:
		log.Info().Msg(msg)
	case 2:
		log.Warn().Msg(msg)
	case 3:
		log.Error().Msg(msg)
	default:
		log.Debug().Msg(msg)
	}
}

// hostCheckCapability backs env.host_check_capability(cap_ptr, cap_len),
// reading the capability string out of the calling plugin's own memory and
// checking it against that plugin's granted capability.Set. Unlike the
// reference implementation this does not hardcode a success return: an
// unrecognized module (no matching LoadedPlugin) or an unparsable
// capability string both deny the request.
func (r *WasmRuntime) hostCheckCapability(_ context.Context, mod api.Module, stack []uint64) {
	ptr := api.DecodeU32(stack[0])
	length := api.DecodeU32(stack[1])
	buf, ok := mod.Memory().Read(ptr, length)
	if !ok {
		stack[0] = 0
		return
	}
	capStr := string(buf)

	r.mu.Lock()
	plugin := r.findByModuleLocked(mod)
	r.mu.Unlock()
	if plugin == nil {
		stack[0] = 0
		return
	}

	c, ok := capability.ParseCapabilityString(capStr)
	if !ok || !plugin.caps.Has(c) {
		stack[0] = 0
		return
	}
	stack[0] = 1
}

func (r *WasmRuntime) findByModuleLocked(mod api.Module) *LoadedPlugin {
	for _, p := range r.instances {
		if p.mod == mod {
			return p
		}
	}
	return nil
}

// LoadPluginModule compiles and instantiates a single plugin module given
// its already-loaded manifest.
func (r *WasmRuntime) LoadPluginModule(path string, m manifest.PluginManifest) (string, error) {
	pluginID := m.Name
	log.Info().Str("plugin", pluginID).Str("path", path).Msg("loading plugin")

	wasmBytes, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("wasmhost: read plugin file: %w", err)
	}

	compiled, err := r.rt.CompileModule(r.ctx, wasmBytes)
	if err != nil {
		return "", fmt.Errorf("wasmhost: compile module: %w", err)
	}

	mod, err := r.rt.InstantiateModule(r.ctx, compiled, wazero.NewModuleConfig().WithName(pluginID))
	if err != nil {
		return "", fmt.Errorf("wasmhost: instantiate module: %w", err)
	}

	loaded := &LoadedPlugin{
		mod:        mod,
		manifest:   m,
		caps:       capability.FromManifest(&m),
		monitor:    resource.NewMonitor(r.limits),
		allocate:   mod.ExportedFunction("allocate"),
		deallocate: mod.ExportedFunction("deallocate"),
	}

	r.mu.Lock()
	r.instances[pluginID] = loaded
	r.mu.Unlock()

	log.Info().Str("plugin", pluginID).Msg("plugin loaded")
	return pluginID, nil
}

// LoadPlugin loads a plugin from a directory containing plugin.toml and
// its entry-point .wasm file.
func (r *WasmRuntime) LoadPlugin(pluginDir string) (string, error) {
	manifestPath := filepath.Join(pluginDir, "plugin.toml")
	m, err := r.manifestLoader.LoadFile(manifestPath)
	if err != nil {
		return "", err
	}
	wasmPath := filepath.Join(pluginDir, m.EntryPoint)
	if _, err := os.Stat(wasmPath); err != nil {
		return "", &Error{"wasm file not found", wasmPath}
	}
	return r.LoadPluginModule(wasmPath, m)
}

// ExecutePluginFunction invokes a named export on a loaded plugin,
// enforcing resource limits before and after the call.
func (r *WasmRuntime) ExecutePluginFunction(pluginID, functionName string, args ...uint64) ([]uint64, error) {
	r.mu.Lock()
	plugin, ok := r.instances[pluginID]
	r.mu.Unlock()
	if !ok {
		return nil, errPluginNotFound(pluginID)
	}

	if err := plugin.monitor.CheckLimits(); err != nil {
		return nil, err
	}

	fn := plugin.mod.ExportedFunction(functionName)
	if fn == nil {
		return nil, &Error{"function not found in plugin", fmt.Sprintf("%s/%s", pluginID, functionName)}
	}

	results, err := fn.Call(r.ctx, args...)
	if err != nil {
		return nil, &Error{"wasm trap", err.Error()}
	}

	if mem := plugin.mod.Memory(); mem != nil {
		plugin.monitor.UpdateMemoryUsage(uint64(mem.Size()))
	}
	if err := plugin.monitor.CheckLimits(); err != nil {
		return nil, err
	}

	return results, nil
}

// ExecuteAction round-trips an ActionContext to a plugin's execute_action
// export and parses back the ActionResult it writes to its own memory.
//
// The call convention: the plugin exports allocate(size) -> ptr and
// deallocate(ptr, size), matching wasm32-unknown-unknown's usual bump
// allocator shape. The host writes the serialized ActionContext JSON into
// plugin memory obtained from allocate, calls
// execute_action(ctx_ptr, ctx_len) -> result_ptr, where the plugin writes
// its JSON ActionResult starting at result_ptr and prefixes it with a
// little-endian uint32 length (so the host does not need a second export
// just to learn how many bytes to read back). The host frees both buffers
// via deallocate once it has read the result.
func (r *WasmRuntime) ExecuteAction(pluginID string, actionCtx ActionContext) (ActionResult, error) {
	r.mu.Lock()
	plugin, ok := r.instances[pluginID]
	r.mu.Unlock()
	if !ok {
		return ActionResult{}, errPluginNotFound(pluginID)
	}
	if plugin.allocate == nil || plugin.deallocate == nil {
		return ActionResult{}, &Error{"plugin missing allocate/deallocate exports", pluginID}
	}

	contextJSON, err := json.Marshal(actionCtx)
	if err != nil {
		return ActionResult{}, &Error{"failed to serialize action context", err.Error()}
	}

	ctxPtr, err := r.writeBytesToPluginMemory(plugin, contextJSON)
	if err != nil {
		return ActionResult{}, err
	}
	defer plugin.deallocate.Call(r.ctx, uint64(ctxPtr), uint64(len(contextJSON)))

	results, err := r.ExecutePluginFunction(pluginID, "execute_action", uint64(ctxPtr), uint64(len(contextJSON)))
	if err != nil {
		return ActionResult{}, err
	}
	if len(results) == 0 {
		return ActionResult{}, &Error{"execute_action returned no result pointer", pluginID}
	}
	resultPtr := uint32(results[0])

	resultJSON, resultLen, err := r.readLengthPrefixedFromPluginMemory(plugin, resultPtr)
	if err != nil {
		return ActionResult{}, err
	}
	defer plugin.deallocate.Call(r.ctx, uint64(resultPtr), uint64(4+resultLen))

	var result ActionResult
	if err := json.Unmarshal(resultJSON, &result); err != nil {
		return ActionResult{}, &Error{"failed to parse action result", err.Error()}
	}
	return result, nil
}

// writeBytesToPluginMemory allocates data's length inside the plugin's own
// linear memory (via its allocate export) and copies data into it.
func (r *WasmRuntime) writeBytesToPluginMemory(plugin *LoadedPlugin, data []byte) (uint32, error) {
	mem := plugin.mod.Memory()
	if mem == nil {
		return 0, &Error{"plugin has no memory export", ""}
	}
	results, err := plugin.allocate.Call(r.ctx, uint64(len(data)))
	if err != nil {
		return 0, &Error{"allocate call failed", err.Error()}
	}
	ptr := uint32(results[0])
	if ptr == 0 {
		return 0, &Error{"allocate returned null pointer", ""}
	}
	if !mem.Write(ptr, data) {
		return 0, &Error{"writing to plugin memory failed", ""}
	}
	return ptr, nil
}

// readLengthPrefixedFromPluginMemory reads a uint32 little-endian length
// prefix at ptr followed by that many bytes of payload.
func (r *WasmRuntime) readLengthPrefixedFromPluginMemory(plugin *LoadedPlugin, ptr uint32) ([]byte, uint32, error) {
	mem := plugin.mod.Memory()
	if mem == nil {
		return nil, 0, &Error{"plugin has no memory export", ""}
	}
	lenBytes, ok := mem.Read(ptr, 4)
	if !ok {
		return nil, 0, &Error{"reading result length failed", ""}
	}
	length := uint32(lenBytes[0]) | uint32(lenBytes[1])<<8 | uint32(lenBytes[2])<<16 | uint32(lenBytes[3])<<24
	payload, ok := mem.Read(ptr+4, length)
	if !ok {
		return nil, 0, &Error{"reading result payload failed", ""}
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return out, length, nil
}

// UnloadPlugin closes a loaded plugin's module instance and drops it.
func (r *WasmRuntime) UnloadPlugin(pluginID string) error {
	r.mu.Lock()
	plugin, ok := r.instances[pluginID]
	if ok {
		delete(r.instances, pluginID)
	}
	r.mu.Unlock()
	if !ok {
		return errPluginNotFound(pluginID)
	}
	if err := plugin.mod.Close(r.ctx); err != nil {
		return &Error{"failed to close plugin module", err.Error()}
	}
	log.Info().Str("plugin", pluginID).Msg("unloaded plugin")
	return nil
}

// LoadedPlugins returns the IDs of every currently-loaded plugin.
func (r *WasmRuntime) LoadedPlugins() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.instances))
	for id := range r.instances {
		out = append(out, id)
	}
	return out
}

// GetPluginManifest returns the manifest a loaded plugin was loaded with.
func (r *WasmRuntime) GetPluginManifest(pluginID string) (manifest.PluginManifest, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.instances[pluginID]
	if !ok {
		return manifest.PluginManifest{}, false
	}
	return p.manifest, true
}

// Close tears down the runtime and every plugin module it hosts.
func (r *WasmRuntime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.instances {
		p.mod.Close(r.ctx)
		delete(r.instances, id)
	}
	return r.rt.Close(r.ctx)
}

// pluginAction is the wire shape a plugin's get_actions export writes,
// decoded into actions.Action once the plugin ID is known host-side.
type pluginAction struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Shortcut    string `json:"shortcut,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// GetPluginActions calls a plugin's get_actions export, which takes no
// arguments and returns a pointer to a length-prefixed JSON array of
// pluginAction (the same convention ExecuteAction uses for its result),
// and converts the decoded entries into actions.Action scoped to
// pluginID.
func (r *WasmRuntime) GetPluginActions(pluginID string) ([]actions.Action, error) {
	r.mu.Lock()
	plugin, ok := r.instances[pluginID]
	r.mu.Unlock()
	if !ok {
		return nil, errPluginNotFound(pluginID)
	}

	results, err := r.ExecutePluginFunction(pluginID, "get_actions")
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, &Error{"get_actions returned no result pointer", pluginID}
	}
	ptr := uint32(results[0])
	if ptr == 0 {
		return nil, nil
	}

	payload, length, err := r.readLengthPrefixedFromPluginMemory(plugin, ptr)
	if err != nil {
		return nil, err
	}
	defer plugin.deallocate.Call(r.ctx, uint64(ptr), uint64(4+length))

	var raw []pluginAction
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, &Error{"failed to parse plugin actions", err.Error()}
	}

	out := make([]actions.Action, 0, len(raw))
	for _, a := range raw {
		out = append(out, actions.Action{
			ID:          pluginID + "." + a.Name,
			Name:        a.Name,
			Description: a.Description,
			Category:    a.Category,
			Shortcut:    a.Shortcut,
			Icon:        a.Icon,
			PluginID:    pluginID,
		})
	}
	return out, nil
}
