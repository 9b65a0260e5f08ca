package shaper

import (
	"testing"

	"github.com/raventerminal/core/font"
)

func testFace(t *testing.T) *font.Face {
	t.Helper()
	sys := font.NewSystem()
	face, err := sys.LoadFont("jetbrains", 14)
	if err != nil {
		t.Fatalf("LoadFont: %v", err)
	}
	return face
}

func TestShapeASCII(t *testing.T) {
	s := New(testFace(t), 14)
	glyphs := s.Shape("Hello World")
	if len(glyphs) != len("Hello World") {
		t.Errorf("len(glyphs) = %d, want %d", len(glyphs), len("Hello World"))
	}
}

func TestShapeEmptyString(t *testing.T) {
	s := New(testFace(t), 14)
	if glyphs := s.Shape(""); len(glyphs) != 0 {
		t.Errorf("expected no glyphs for empty string, got %d", len(glyphs))
	}
}

func TestShapeSingleChar(t *testing.T) {
	s := New(testFace(t), 14)
	glyphs := s.Shape("A")
	if len(glyphs) != 1 {
		t.Fatalf("len(glyphs) = %d, want 1", len(glyphs))
	}
	if glyphs[0].Cluster != 0 {
		t.Errorf("Cluster = %d, want 0", glyphs[0].Cluster)
	}
}

func TestShapeCachesRepeatedText(t *testing.T) {
	s := New(testFace(t), 14)
	s.Shape("repeat me")
	s.Shape("repeat me")
	hits, misses := s.CacheStats()
	if hits != 1 || misses != 1 {
		t.Errorf("CacheStats() = (%d,%d), want (1,1)", hits, misses)
	}
}

func TestProgrammingLigatures(t *testing.T) {
	s := New(testFace(t), 14)
	withLiga := s.ShapeWithFeatures("->", []string{"liga"})
	if len(withLiga) != 1 {
		t.Errorf("ligature-substituted arrow should shape to 1 glyph, got %d", len(withLiga))
	}
	withoutLiga := s.Shape("->")
	if len(withoutLiga) != 2 {
		t.Errorf("plain \"->\" should shape to 2 glyphs, got %d", len(withoutLiga))
	}
}

func TestUnicodeCharacters(t *testing.T) {
	s := New(testFace(t), 14)
	glyphs := s.Shape("café")
	if len(glyphs) != 4 {
		t.Errorf("len(glyphs) = %d, want 4", len(glyphs))
	}
}

func TestCacheHitRatioImprovesWithRepetition(t *testing.T) {
	s := New(testFace(t), 14)
	texts := []string{"alpha", "beta", "gamma"}
	for round := 0; round < 3; round++ {
		for _, text := range texts {
			s.Shape(text)
		}
	}
	if ratio := s.CacheHitRatio(); ratio < 0.6 {
		t.Errorf("CacheHitRatio() = %v, want >= 0.6 after repeated shaping", ratio)
	}
}

func TestClearCacheResetsStats(t *testing.T) {
	s := New(testFace(t), 14)
	s.Shape("text")
	s.Shape("text")
	s.ClearCache()
	hits, misses := s.CacheStats()
	if hits != 0 || misses != 0 {
		t.Errorf("CacheStats() after ClearCache() = (%d,%d), want (0,0)", hits, misses)
	}
}
