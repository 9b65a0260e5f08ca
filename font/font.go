// Package font implements the Font System (spec component C5): resolving a
// family name (or a codepoint that needs a fallback) to a loaded,
// size-bound font face, backed first by the terminal's embedded Nerd Font
// set and falling back to a recursive search of the host's font
// directories.
package font

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"

	assetfonts "github.com/raventerminal/core/assets/fonts"
)

// Style distinguishes upright from slanted glyph forms.
type Style int

const (
	StyleNormal Style = iota
	StyleItalic
	StyleOblique
)

// Weight distinguishes glyph stroke weight.
type Weight int

const (
	WeightNormal Weight = iota
	WeightBold
	WeightLight
	WeightExtraBold
)

// Info describes one resolvable font family. Path is empty for fonts
// served out of the embedded set.
type Info struct {
	Family string
	Style  Style
	Weight Weight
	Path   string
}

// Key identifies a cached, size-bound face. SizePx is the point size in
// 26.6 fixed-point, mirroring how the original renderer keys its font
// cache so that two requests for the same family at the same size always
// hit.
type Key struct {
	Family string
	SizePx uint32
	Style  Style
	Weight Weight
}

func newKey(family string, size float64, style Style, weight Weight) Key {
	return Key{
		Family: strings.ToLower(strings.TrimSpace(family)),
		SizePx: uint32(math.Round(size * 64)),
		Style:  style,
		Weight: weight,
	}
}

// Face bundles a parsed sfnt font with the rasterization face built for
// one Key's point size, plus the metadata describing where it came from.
// ID is a process-local identity for the underlying font, distinct from
// the rasterization size — callers that need to key a cache on "which
// font" (the atlas's GlyphKey) use ID rather than reaching into SFNT,
// since opentype.Font doesn't expose anything else stable to hash on.
type Face struct {
	SFNT *opentype.Font
	Face font.Face
	Info Info
	ID   uint64
}

var nextFaceID uint64

func newFaceID() uint64 {
	return atomic.AddUint64(&nextFaceID, 1)
}

// GlyphAdvance returns the horizontal advance of r in this face, and
// whether r has a glyph at all (used by fallback-chain resolution).
func (f *Face) GlyphAdvance(r rune) (float64, bool) {
	adv, ok := f.Face.GlyphAdvance(r)
	if !ok {
		return 0, false
	}
	return float64(adv) / 64, true
}

// Close releases the underlying rasterization face.
func (f *Face) Close() error {
	if f.Face == nil {
		return nil
	}
	return f.Face.Close()
}

// loader resolves a font family to raw font bytes and can enumerate what
// it knows about. Embedded and filesystem-backed sources both implement
// it; System layers them, embedded first.
type loader interface {
	load(family string) ([]byte, Info, bool)
	list() []Info
}

// embeddedLoader serves the terminal's own bundled Nerd Font set.
type embeddedLoader struct{}

func (embeddedLoader) load(family string) ([]byte, Info, bool) {
	family = strings.ToLower(strings.TrimSpace(family))
	for _, f := range assetfonts.AvailableFonts() {
		if f.Name == family || strings.EqualFold(f.DisplayName, family) {
			return f.Data, Info{Family: f.Name}, true
		}
		if strings.Contains(strings.ToLower(f.DisplayName), family) {
			return f.Data, Info{Family: f.Name}, true
		}
	}
	return nil, Info{}, false
}

func (embeddedLoader) list() []Info {
	fonts := assetfonts.AvailableFonts()
	out := make([]Info, len(fonts))
	for i, f := range fonts {
		out[i] = Info{Family: f.Name}
	}
	return out
}

// directoryLoader recursively searches the host's standard font
// directories for a .ttf/.otf whose file name contains the requested
// family, mirroring original_source's SystemFontLoader Linux backend
// (fontconfig-free, plain directory walk).
type directoryLoader struct {
	mu    sync.Mutex
	dirs  []string
	cache map[string]string // lowercased filename -> path, built lazily
	built bool
}

func newDirectoryLoader() *directoryLoader {
	home, _ := os.UserHomeDir()
	dirs := []string{
		"/usr/share/fonts",
		"/usr/local/share/fonts",
	}
	if home != "" {
		dirs = append(dirs, filepath.Join(home, ".local", "share", "fonts"), filepath.Join(home, ".fonts"))
	}
	return &directoryLoader{dirs: dirs}
}

func (d *directoryLoader) ensureBuilt() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.built {
		return
	}
	d.built = true
	d.cache = make(map[string]string)
	for _, root := range d.dirs {
		filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
			if err != nil || entry.IsDir() {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(path))
			if ext != ".ttf" && ext != ".otf" {
				return nil
			}
			d.cache[strings.ToLower(filepath.Base(path))] = path
			return nil
		})
	}
}

func (d *directoryLoader) load(family string) ([]byte, Info, bool) {
	d.ensureBuilt()
	family = strings.ToLower(strings.TrimSpace(strings.ReplaceAll(family, " ", "")))
	d.mu.Lock()
	defer d.mu.Unlock()
	for name, path := range d.cache {
		if strings.Contains(strings.ReplaceAll(name, " ", ""), family) {
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			return data, Info{Family: family, Path: path}, true
		}
	}
	return nil, Info{}, false
}

func (d *directoryLoader) list() []Info {
	d.ensureBuilt()
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Info, 0, len(d.cache))
	for name, path := range d.cache {
		out = append(out, Info{Family: strings.TrimSuffix(name, filepath.Ext(name)), Path: path})
	}
	return out
}

// fallbackChain lists the monospace families tried, in order, when a
// requested family isn't found directly or a codepoint falls outside a
// font's coverage. Ported from original_source's FontSystem::build_
// fallback_chain, which keeps the same literal list across platforms.
var fallbackChain = []string{
	"jetbrains mono", "fira code", "source code pro", "consolas", "monaco",
	"dejavu sans mono", "liberation mono", "noto sans mono",
	"noto sans mono cjk sc", "noto sans mono cjk jp", "noto sans mono cjk kr",
	"noto sans arabic", "noto sans hebrew", "noto sans devanagari",
	"noto color emoji", "apple color emoji", "segoe ui emoji", "courier new",
	"monospace",
}

// System resolves font families (and codepoints needing a fallback) to
// cached, size-bound Faces.
type System struct {
	mu       sync.Mutex
	loaders  []loader
	cache    map[Key]*Face
	fallback []string
}

// NewSystem builds a System with the embedded set as the primary loader
// and a directory search as the fallback tier.
func NewSystem() *System {
	return &System{
		loaders:  []loader{embeddedLoader{}, newDirectoryLoader()},
		cache:    make(map[Key]*Face),
		fallback: append([]string(nil), fallbackChain...),
	}
}

func buildFace(data []byte, info Info, size float64) (*Face, error) {
	sfnt, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("font: parse %q: %w", info.Family, err)
	}
	face, err := opentype.NewFace(sfnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     96,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("font: build face %q: %w", info.Family, err)
	}
	return &Face{SFNT: sfnt, Face: face, Info: info, ID: newFaceID()}, nil
}

// LoadFont resolves family at the given point size, trying every loader
// tier for the requested family (loaders also accept a family that is a
// substring of a font's name) before walking the fallback chain.
func (s *System) LoadFont(family string, size float64) (*Face, error) {
	key := newKey(family, size, StyleNormal, WeightNormal)

	s.mu.Lock()
	if cached, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	if data, info, ok := s.tryLoaders(family); ok {
		face, err := buildFace(data, info, size)
		if err == nil {
			s.mu.Lock()
			s.cache[key] = face
			s.mu.Unlock()
			return face, nil
		}
	}

	for _, candidate := range s.fallback {
		if strings.EqualFold(candidate, family) {
			continue
		}
		if data, info, ok := s.tryLoaders(candidate); ok {
			face, err := buildFace(data, info, size)
			if err != nil {
				continue
			}
			s.mu.Lock()
			s.cache[key] = face
			s.mu.Unlock()
			return face, nil
		}
	}

	return nil, fmt.Errorf("font: no font found for family %q or its fallbacks", family)
}

func (s *System) tryLoaders(family string) ([]byte, Info, bool) {
	for _, l := range s.loaders {
		if data, info, ok := l.load(family); ok {
			return data, info, true
		}
	}
	return nil, Info{}, false
}

// FindFontForCodepoint walks the fallback chain looking for the first
// font whose face actually has a glyph for r, falling back to the
// generic "monospace" family if none claim it.
func (s *System) FindFontForCodepoint(r rune, size float64) (*Face, error) {
	for _, candidate := range s.fallback {
		face, err := s.LoadFont(candidate, size)
		if err != nil {
			continue
		}
		if _, ok := face.GlyphAdvance(r); ok {
			return face, nil
		}
	}
	return s.LoadFont("monospace", size)
}

// SystemFonts enumerates every font known to any loader tier.
func (s *System) SystemFonts() []Info {
	var out []Info
	for _, l := range s.loaders {
		out = append(out, l.list()...)
	}
	return out
}

// FallbackChain returns the ordered list of families tried as fallbacks.
func (s *System) FallbackChain() []string {
	return append([]string(nil), s.fallback...)
}

// AddFallbackFont appends a family to the end of the fallback chain.
func (s *System) AddFallbackFont(family string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallback = append(s.fallback, family)
}

// ClearCache drops every cached face.
func (s *System) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[Key]*Face)
}

// CacheStats returns the number of cached faces.
func (s *System) CacheStats() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cache)
}
