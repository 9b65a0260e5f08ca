// Package actions implements the plugin Action Registry (spec component
// C9): the catalog of command-palette entries plugins contribute.
package actions

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Action is a single command-palette entry contributed by a plugin.
type Action struct {
	ID          string
	Name        string
	Description string
	Category    string
	Shortcut    string // empty means none
	Icon        string // empty means none
	PluginID    string
}

// WithShortcut returns a copy of a with Shortcut set.
func (a Action) WithShortcut(shortcut string) Action { a.Shortcut = shortcut; return a }

// WithIcon returns a copy of a with Icon set.
func (a Action) WithIcon(icon string) Action { a.Icon = icon; return a }

// DisplayString renders the action for palette display, appending its
// shortcut in parentheses when set.
func (a Action) DisplayString() string {
	if a.Shortcut == "" {
		return a.Name
	}
	return fmt.Sprintf("%s (%s)", a.Name, a.Shortcut)
}

// Error is a sentinel-style error category for registry operations.
type Error struct {
	Kind string
	Arg  string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Arg) }

func errExists(id string) error   { return &Error{"action already exists", id} }
func errNotFound(id string) error { return &Error{"action not found", id} }
func errInvalidID(id string) error { return &Error{"invalid action id", id} }

// Registry holds the set of currently-registered actions, indexed both by
// ID and by owning plugin.
type Registry struct {
	mu            sync.RWMutex
	actions       map[string]Action
	pluginActions map[string][]string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		actions:       make(map[string]Action),
		pluginActions: make(map[string][]string),
	}
}

// Register adds an action to the registry. The ID must be of the form
// "plugin.action_name" with only alphanumeric/underscore/hyphen segments.
func (r *Registry) Register(a Action) error {
	if !isValidActionID(a.ID) {
		return errInvalidID(a.ID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.actions[a.ID]; exists {
		return errExists(a.ID)
	}
	r.actions[a.ID] = a
	r.pluginActions[a.PluginID] = append(r.pluginActions[a.PluginID], a.ID)
	return nil
}

// Unregister removes a single action by ID.
func (r *Registry) Unregister(actionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.actions[actionID]
	if !ok {
		return errNotFound(actionID)
	}
	delete(r.actions, actionID)
	ids := r.pluginActions[a.PluginID]
	for i, id := range ids {
		if id == actionID {
			ids = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(r.pluginActions, a.PluginID)
	} else {
		r.pluginActions[a.PluginID] = ids
	}
	return nil
}

// UnregisterPluginActions removes every action owned by pluginID.
func (r *Registry) UnregisterPluginActions(pluginID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.pluginActions[pluginID]
	delete(r.pluginActions, pluginID)
	for _, id := range ids {
		delete(r.actions, id)
	}
	return nil
}

// List returns every registered action, sorted by ID for determinism.
func (r *Registry) List() []Action {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Action, 0, len(r.actions))
	for _, a := range r.actions {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Search returns actions whose name, description or category contains
// query, case-insensitively.
func (r *Registry) Search(query string) []Action {
	q := strings.ToLower(query)
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Action
	for _, a := range r.actions {
		if strings.Contains(strings.ToLower(a.Name), q) ||
			strings.Contains(strings.ToLower(a.Description), q) ||
			strings.Contains(strings.ToLower(a.Category), q) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PluginActions returns the actions owned by pluginID.
func (r *Registry) PluginActions(pluginID string) []Action {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Action
	for _, id := range r.pluginActions[pluginID] {
		if a, ok := r.actions[id]; ok {
			out = append(out, a)
		}
	}
	return out
}

// Get returns a single action by ID.
func (r *Registry) Get(actionID string) (Action, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.actions[actionID]
	return a, ok
}

// ByCategory groups every registered action by its Category field.
func (r *Registry) ByCategory() map[string][]Action {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make(map[string][]Action)
	for _, a := range r.actions {
		result[a.Category] = append(result[a.Category], a)
	}
	return result
}

// Count returns the total number of registered actions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.actions)
}

// PluginCount returns the number of plugins with at least one action.
func (r *Registry) PluginCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pluginActions)
}

// isValidActionID requires the "plugin.action_name" shape: exactly one
// dot, both segments non-empty and alphanumeric/underscore/hyphen only.
func isValidActionID(id string) bool {
	parts := strings.Split(id, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return false
	}
	for _, part := range parts {
		for _, c := range part {
			if !isIDRune(c) {
				return false
			}
		}
	}
	return true
}

func isIDRune(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c == '-'
}
