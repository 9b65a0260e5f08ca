// Package capability implements the plugin capability model (spec
// component C11): parsed grants from plugin.toml and the checks a plugin
// host performs before letting a plugin touch the filesystem or network.
package capability

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/raventerminal/core/manifest"
)

// Kind discriminates Capability variants.
type Kind int

const (
	FileSystemRead Kind = iota
	FileSystemWrite
	NetworkFetch
	BlockRead
	BlockWrite
	PaletteAddAction
	ConfigRead
	ConfigWrite
	AIAccess
)

// PathPattern scopes a filesystem capability to a base directory.
type PathPattern struct {
	Base       string
	Recursive  bool
	Extensions []string
}

// URLPattern scopes a network capability to a host. Scheme, Port and
// PathPrefix are carried along but CheckNetworkAccess compares Host only.
type URLPattern struct {
	Scheme     string
	Host       string
	Port       int
	PathPrefix string
}

// Capability is a single granted permission. Only the field matching Kind
// is populated.
type Capability struct {
	Kind Kind
	Path PathPattern
	URL  URLPattern
}

func (c Capability) key() string {
	switch c.Kind {
	case FileSystemRead:
		return fmt.Sprintf("fsr:%s", c.Path.Base)
	case FileSystemWrite:
		return fmt.Sprintf("fsw:%s", c.Path.Base)
	case NetworkFetch:
		return fmt.Sprintf("net:%s", c.URL.Host)
	default:
		return fmt.Sprintf("k:%d", c.Kind)
	}
}

// Set is the collection of capabilities granted to one plugin instance.
type Set struct {
	pluginID string
	byKey    map[string]Capability
}

// NewSet returns an empty capability set for pluginID.
func NewSet(pluginID string) *Set {
	return &Set{pluginID: pluginID, byKey: make(map[string]Capability)}
}

// FromManifest builds a Set from a manifest's capability strings, skipping
// (and the caller may choose to log) any it doesn't recognize.
func FromManifest(m *manifest.PluginManifest) *Set {
	s := NewSet(m.Name)
	for _, raw := range m.Capabilities {
		if c, ok := ParseCapabilityString(raw); ok {
			s.Add(c)
		}
	}
	return s
}

// ParseCapabilityString decodes one capability string from a manifest,
// e.g. "block.read" or "fs.read:/home/user/project".
func ParseCapabilityString(s string) (Capability, bool) {
	switch s {
	case "block.read":
		return Capability{Kind: BlockRead}, true
	case "block.write":
		return Capability{Kind: BlockWrite}, true
	case "palette.add_action":
		return Capability{Kind: PaletteAddAction}, true
	case "config.read":
		return Capability{Kind: ConfigRead}, true
	case "config.write":
		return Capability{Kind: ConfigWrite}, true
	case "ai.access":
		return Capability{Kind: AIAccess}, true
	}
	if path, ok := strings.CutPrefix(s, "fs.read:"); ok {
		return Capability{Kind: FileSystemRead, Path: PathPattern{Base: path, Recursive: true}}, true
	}
	if path, ok := strings.CutPrefix(s, "fs.write:"); ok {
		return Capability{Kind: FileSystemWrite, Path: PathPattern{Base: path, Recursive: true}}, true
	}
	if host, ok := strings.CutPrefix(s, "net.fetch:"); ok {
		return Capability{Kind: NetworkFetch, URL: URLPattern{Host: host}}, true
	}
	return Capability{}, false
}

// Add grants a capability.
func (s *Set) Add(c Capability) { s.byKey[c.key()] = c }

// Remove revokes a capability.
func (s *Set) Remove(c Capability) { delete(s.byKey, c.key()) }

// Has reports whether c (or an equivalent grant) is present.
func (s *Set) Has(c Capability) bool {
	_, ok := s.byKey[c.key()]
	return ok
}

// List returns every granted capability.
func (s *Set) List() []Capability {
	out := make([]Capability, 0, len(s.byKey))
	for _, c := range s.byKey {
		out = append(out, c)
	}
	return out
}

// CheckFileAccess reports whether the set grants read (or write) access to
// path, returning a descriptive error if not.
func (s *Set) CheckFileAccess(path string, write bool) error {
	for _, c := range s.byKey {
		if write && c.Kind == FileSystemWrite && pathMatchesPattern(path, c.Path) {
			return nil
		}
		if !write && c.Kind == FileSystemRead && pathMatchesPattern(path, c.Path) {
			return nil
		}
	}
	mode := "read"
	if write {
		mode = "write"
	}
	return fmt.Errorf("plugin %s does not have %s access to path: %s", s.pluginID, mode, path)
}

// CheckNetworkAccess reports whether the set grants fetch access to host.
func (s *Set) CheckNetworkAccess(host string) error {
	for _, c := range s.byKey {
		if c.Kind == NetworkFetch && (c.URL.Host == host || c.URL.Host == "*") {
			return nil
		}
	}
	return fmt.Errorf("plugin %s does not have network access to host: %s", s.pluginID, host)
}

func pathMatchesPattern(path string, pattern PathPattern) bool {
	if pattern.Recursive {
		return strings.HasPrefix(path, pattern.Base)
	}
	return filepath.Dir(path) == pattern.Base
}
