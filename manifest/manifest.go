// Package manifest loads and validates plugin.toml files (spec component
// C10).
package manifest

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// PluginManifest is the decoded contents of a plugin.toml file.
type PluginManifest struct {
	Name              string            `toml:"name"`
	Version           string            `toml:"version"`
	Description       string            `toml:"description"`
	EntryPoint        string            `toml:"entry_point"`
	Capabilities      []string          `toml:"capabilities"`
	RaventermVersion  string            `toml:"raventerm_version"`
	Author            string            `toml:"author,omitempty"`
	License           string            `toml:"license,omitempty"`
	Homepage          string            `toml:"homepage,omitempty"`
	Repository        string            `toml:"repository,omitempty"`
	Keywords          []string          `toml:"keywords,omitempty"`
	ConfigSchema      map[string]string `toml:"config_schema,omitempty"`
}

// Minimal returns a valid manifest suitable for tests and examples.
func Minimal(name, entryPoint string) PluginManifest {
	return PluginManifest{
		Name:             name,
		Version:          "1.0.0",
		Description:      "Test plugin",
		EntryPoint:       entryPoint,
		RaventermVersion: "0.1.0",
	}
}

// Error is a sentinel-style error for manifest loading/validation.
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

// Loader loads and validates plugin manifests against the running
// application's version and capability allow-list.
type Loader struct {
	CurrentVersion      string
	AllowedCapabilities []string
}

// NewLoader returns a Loader pinned to currentVersion with the default
// capability allow-list.
func NewLoader(currentVersion string) *Loader {
	return &Loader{CurrentVersion: currentVersion, AllowedCapabilities: DefaultCapabilities()}
}

// DefaultCapabilities is the built-in capability allow-list.
func DefaultCapabilities() []string {
	return []string{
		"block.read", "block.write",
		"palette.add_action",
		"config.read", "config.write",
		"ai.access",
		"fs.read", "fs.write",
		"net.fetch",
	}
}

// LoadFile reads, parses and validates a manifest from disk.
func (l *Loader) LoadFile(path string) (PluginManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PluginManifest{}, &Error{"failed to read manifest file", err.Error()}
	}
	return l.LoadString(string(data))
}

// LoadString parses and validates a manifest from a TOML string.
func (l *Loader) LoadString(content string) (PluginManifest, error) {
	var m PluginManifest
	if _, err := toml.Decode(content, &m); err != nil {
		return PluginManifest{}, &Error{"failed to parse manifest toml", err.Error()}
	}
	if err := l.Validate(&m); err != nil {
		return PluginManifest{}, err
	}
	return m, nil
}

// Validate checks every field of m against the loader's rules.
func (l *Loader) Validate(m *PluginManifest) error {
	if m.Name == "" {
		return &Error{"missing required field", "name"}
	}
	if !isValidPluginName(m.Name) {
		return &Error{"invalid plugin name", m.Name}
	}
	if m.Version == "" {
		return &Error{"missing required field", "version"}
	}
	if !isValidVersion(m.Version) {
		return &Error{"invalid version format", m.Version}
	}
	if m.EntryPoint == "" {
		return &Error{"missing required field", "entry_point"}
	}
	if !strings.HasSuffix(m.EntryPoint, ".wasm") {
		return &Error{"invalid entry point", m.EntryPoint}
	}
	for _, cap := range m.Capabilities {
		if !l.isCapabilityAllowed(cap) {
			return &Error{"unknown capability", cap}
		}
	}
	if !isVersionCompatible(m.RaventermVersion, l.CurrentVersion) {
		return &Error{"incompatible raventerm version", fmt.Sprintf("requires %s, current %s", m.RaventermVersion, l.CurrentVersion)}
	}
	return nil
}

func isValidPluginName(name string) bool {
	if name == "" || len(name) > 64 {
		return false
	}
	if strings.HasPrefix(name, "-") || strings.HasSuffix(name, "-") {
		return false
	}
	for _, c := range name {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '_') {
			return false
		}
	}
	return true
}

func isValidVersion(v string) bool {
	parts := strings.Split(v, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return false
	}
	for _, p := range parts {
		if _, err := strconv.ParseUint(p, 10, 32); err != nil {
			return false
		}
	}
	return true
}

// isVersionCompatible is a basic parseability check, matching the
// original implementation's placeholder semver comparison.
func isVersionCompatible(required, current string) bool {
	return isValidVersion(required) && isValidVersion(current)
}

func (l *Loader) isCapabilityAllowed(capability string) bool {
	for _, allowed := range l.AllowedCapabilities {
		if allowed == capability || strings.HasPrefix(capability, allowed+":") {
			return true
		}
	}
	return false
}
