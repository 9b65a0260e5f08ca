package font

import "testing"

func TestSystemLoadsEmbeddedFont(t *testing.T) {
	s := NewSystem()
	face, err := s.LoadFont("jetbrains", 14)
	if err != nil {
		t.Fatalf("LoadFont: %v", err)
	}
	if face.Face == nil {
		t.Fatal("expected a rasterization face")
	}
	if _, ok := face.GlyphAdvance('M'); !ok {
		t.Error("expected glyph coverage for 'M'")
	}
}

func TestSystemCachesBySizeAndFamily(t *testing.T) {
	s := NewSystem()
	if _, err := s.LoadFont("jetbrains", 14); err != nil {
		t.Fatalf("LoadFont: %v", err)
	}
	if _, err := s.LoadFont("jetbrains", 14); err != nil {
		t.Fatalf("LoadFont (cached): %v", err)
	}
	if got := s.CacheStats(); got != 1 {
		t.Errorf("CacheStats() = %d, want 1 (same family+size should hit cache)", got)
	}
	if _, err := s.LoadFont("jetbrains", 20); err != nil {
		t.Fatalf("LoadFont (different size): %v", err)
	}
	if got := s.CacheStats(); got != 2 {
		t.Errorf("CacheStats() = %d, want 2 after a different size", got)
	}
}

func TestUnknownFamilyFallsBackToEmbedded(t *testing.T) {
	s := NewSystem()
	face, err := s.LoadFont("some-font-nobody-has", 14)
	if err != nil {
		t.Fatalf("expected fallback chain to resolve, got error: %v", err)
	}
	if face == nil {
		t.Fatal("expected a fallback face")
	}
}

func TestFindFontForCodepoint(t *testing.T) {
	s := NewSystem()
	face, err := s.FindFontForCodepoint('A', 14)
	if err != nil {
		t.Fatalf("FindFontForCodepoint: %v", err)
	}
	if _, ok := face.GlyphAdvance('A'); !ok {
		t.Error("resolved face should cover 'A'")
	}
}

func TestFallbackChainAccess(t *testing.T) {
	s := NewSystem()
	chain := s.FallbackChain()
	if len(chain) < 5 {
		t.Errorf("fallback chain too short: %d entries", len(chain))
	}
	found := false
	for _, f := range chain {
		if f == "courier new" {
			found = true
		}
	}
	if !found {
		t.Error("expected \"courier new\" in fallback chain")
	}
}

func TestAddFallbackFont(t *testing.T) {
	s := NewSystem()
	before := len(s.FallbackChain())
	s.AddFallbackFont("custom-family")
	after := len(s.FallbackChain())
	if after != before+1 {
		t.Errorf("AddFallbackFont did not grow the chain: before=%d after=%d", before, after)
	}
}

func TestClearCache(t *testing.T) {
	s := NewSystem()
	if _, err := s.LoadFont("jetbrains", 14); err != nil {
		t.Fatalf("LoadFont: %v", err)
	}
	s.ClearCache()
	if got := s.CacheStats(); got != 0 {
		t.Errorf("CacheStats() after ClearCache() = %d, want 0", got)
	}
}

func TestSystemFontsListsEmbedded(t *testing.T) {
	s := NewSystem()
	infos := s.SystemFonts()
	if len(infos) == 0 {
		t.Fatal("expected at least the embedded fonts to be listed")
	}
}
