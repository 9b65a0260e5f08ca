// Package shaper implements the Glyph Shaper (spec component C6): turning
// a run of text into positioned glyphs ready for the atlas, including NFC
// normalization and a small programming-ligature substitution table.
package shaper

import (
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"

	"github.com/raventerminal/core/font"
)

// GlyphInfo is one shaped glyph: which glyph to draw, how far it advances
// the pen, and the byte offset in the normalized text of the rune it came
// from (Cluster), so a caller can map back to the source cell.
type GlyphInfo struct {
	GlyphID  uint32
	XAdvance float32
	YAdvance float32
	XOffset  float32
	YOffset  float32
	Cluster  int
}

// ligatures mirrors original_source's process_ligatures table: a plain
// substring substitution, not grapheme-cluster aware, same as the
// reference shaper it's grounded on.
var ligatures = []struct{ from, to string }{
	{"->", "→"},
	{"=>", "⇒"},
	{"<=", "≤"},
	{">=", "≥"},
	{"!=", "≠"},
	{"==", "≡"},
}

// Shaper shapes runs of text against one font face at one size, caching
// results by normalized text (and, for ShapeWithFeatures, by
// text+feature-set).
type Shaper struct {
	mu      sync.Mutex
	face    *font.Face
	size    float64
	cache   map[string][]GlyphInfo
	hits    int
	misses  int
}

// New returns a Shaper bound to face at the given point size.
func New(face *font.Face, size float64) *Shaper {
	return &Shaper{
		face:  face,
		size:  size,
		cache: make(map[string][]GlyphInfo),
	}
}

// FontSize returns the point size this shaper was built for.
func (s *Shaper) FontSize() float64 { return s.size }

// Shape shapes text with no ligature/feature processing, purely
// per-rune horizontal advances — the same basic model
// original_source/font/shaper.rs implements, supplemented with NFC
// normalization so combining sequences shape consistently regardless of
// how the PTY stream composed them.
func (s *Shaper) Shape(text string) []GlyphInfo {
	normalized := norm.NFC.String(text)

	s.mu.Lock()
	if cached, ok := s.cache[normalized]; ok {
		s.hits++
		s.mu.Unlock()
		return cloneGlyphs(cached)
	}
	s.misses++
	s.mu.Unlock()

	glyphs := s.shapeRunes(normalized)

	s.mu.Lock()
	s.cache[normalized] = glyphs
	s.mu.Unlock()

	return cloneGlyphs(glyphs)
}

// ShapeWithFeatures shapes text, first applying ligature substitution
// when "liga" or "calt" is requested, matching original_source's feature
// handling.
func (s *Shaper) ShapeWithFeatures(text string, features []string) []GlyphInfo {
	normalized := norm.NFC.String(text)
	key := normalized + "|" + strings.Join(features, ",")

	s.mu.Lock()
	if cached, ok := s.cache[key]; ok {
		s.hits++
		s.mu.Unlock()
		return cloneGlyphs(cached)
	}
	s.misses++
	s.mu.Unlock()

	processed := normalized
	if hasFeature(features, "liga") || hasFeature(features, "calt") {
		processed = processLigatures(normalized)
	}
	glyphs := s.shapeRunes(processed)

	s.mu.Lock()
	s.cache[key] = glyphs
	s.mu.Unlock()

	return cloneGlyphs(glyphs)
}

func hasFeature(features []string, want string) bool {
	for _, f := range features {
		if f == want {
			return true
		}
	}
	return false
}

func processLigatures(text string) string {
	for _, l := range ligatures {
		text = strings.ReplaceAll(text, l.from, l.to)
	}
	return text
}

func (s *Shaper) shapeRunes(text string) []GlyphInfo {
	glyphs := make([]GlyphInfo, 0, len(text))
	for i, r := range text {
		adv, ok := s.face.GlyphAdvance(r)
		if !ok {
			adv = 0
		}
		glyphs = append(glyphs, GlyphInfo{
			GlyphID:  uint32(r),
			XAdvance: float32(adv),
			Cluster:  i,
		})
	}
	return glyphs
}

func cloneGlyphs(in []GlyphInfo) []GlyphInfo {
	out := make([]GlyphInfo, len(in))
	copy(out, in)
	return out
}

// GlyphMetrics returns the horizontal advance ch would shape to, without
// populating or touching the cache.
func (s *Shaper) GlyphMetrics(ch rune) (float32, bool) {
	adv, ok := s.face.GlyphAdvance(ch)
	return float32(adv), ok
}

// ClearCache drops every cached shape result.
func (s *Shaper) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string][]GlyphInfo)
	s.hits, s.misses = 0, 0
}

// CacheStats returns (hits, misses) since the shaper was created or last
// cleared.
func (s *Shaper) CacheStats() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits, s.misses
}

// CacheHitRatio is hits/(hits+misses), or 0 if nothing has been shaped
// yet.
func (s *Shaper) CacheHitRatio() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := s.hits + s.misses
	if total == 0 {
		return 0
	}
	return float64(s.hits) / float64(total)
}
