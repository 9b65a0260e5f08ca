package atlas

import (
	"testing"

	"github.com/raventerminal/core/font"
)

func testFace(t *testing.T) *font.Face {
	t.Helper()
	sys := font.NewSystem()
	face, err := sys.LoadFont("jetbrains", 16)
	if err != nil {
		t.Fatalf("LoadFont: %v", err)
	}
	return face
}

func TestGlyphKeyCreation(t *testing.T) {
	face := testFace(t)
	k1 := newGlyphKey(face, 'A', 16)
	k2 := newGlyphKey(face, 'A', 16)
	if k1 != k2 {
		t.Errorf("identical (face, rune, size) should produce equal keys: %+v != %+v", k1, k2)
	}
	k3 := newGlyphKey(face, 'B', 16)
	if k1 == k3 {
		t.Error("different runes should produce different keys")
	}
}

func TestAtlasCaching(t *testing.T) {
	a := New(1024, 1024)
	face := testFace(t)

	if _, err := a.GetOrRasterize(face, 'A', 16); err != nil {
		t.Fatalf("GetOrRasterize: %v", err)
	}
	m := a.Metrics()
	if m.CacheMisses != 1 || m.CacheHits != 0 || m.Rasterizations != 1 {
		t.Errorf("after first request: %+v, want 1 miss, 0 hits, 1 rasterization", m)
	}

	if _, err := a.GetOrRasterize(face, 'A', 16); err != nil {
		t.Fatalf("GetOrRasterize (repeat): %v", err)
	}
	m = a.Metrics()
	if m.CacheMisses != 1 || m.CacheHits != 1 || m.Rasterizations != 1 {
		t.Errorf("after repeated request: %+v, want 1 miss, 1 hit, 1 rasterization (no re-rasterize)", m)
	}
}

func TestAtlasMetricsHitRatio(t *testing.T) {
	a := New(1024, 1024)
	face := testFace(t)
	a.GetOrRasterize(face, 'A', 16)
	a.GetOrRasterize(face, 'A', 16)
	a.GetOrRasterize(face, 'B', 16)

	m := a.Metrics()
	if m.TotalAllocations != 2 {
		t.Errorf("TotalAllocations = %d, want 2", m.TotalAllocations)
	}
	if ratio := m.HitRatio(); ratio <= 0 || ratio >= 1 {
		t.Errorf("HitRatio() = %v, want strictly between 0 and 1", ratio)
	}
}

func TestAtlasClear(t *testing.T) {
	a := New(1024, 1024)
	face := testFace(t)
	a.GetOrRasterize(face, 'A', 16)
	a.Clear()

	m := a.Metrics()
	if m.TotalAllocations != 0 || m.CacheHits != 0 || m.CacheMisses != 0 || m.Rasterizations != 0 {
		t.Errorf("Metrics() after Clear() = %+v, want all zero", m)
	}
	if _, ok := a.index[newGlyphKey(face, 'A', 16)]; ok {
		t.Error("expected cache to be empty after Clear()")
	}
}

func TestMultipleGlyphPackingDoesNotOverlap(t *testing.T) {
	a := New(1024, 1024)
	face := testFace(t)

	seen := map[[2]uint32]bool{}
	for _, r := range "ABCDEFGHIJabcdefghij0123456789" {
		region, err := a.GetOrRasterize(face, r, 16)
		if err != nil {
			t.Fatalf("GetOrRasterize(%q): %v", r, err)
		}
		key := [2]uint32{region.X, region.Y}
		if seen[key] {
			t.Errorf("glyph %q packed at an already-used origin (%d,%d)", r, region.X, region.Y)
		}
		seen[key] = true
	}
}

func TestAtlasEvictionBoundsCacheSize(t *testing.T) {
	a := NewWithCapacity(2048, 2048, 4)
	face := testFace(t)

	for _, r := range "ABCDEFGH" {
		if _, err := a.GetOrRasterize(face, r, 16); err != nil {
			t.Fatalf("GetOrRasterize(%q): %v", r, err)
		}
	}
	m := a.Metrics()
	if m.TotalAllocations != 4 {
		t.Errorf("TotalAllocations = %d, want 4 (capacity-bounded)", m.TotalAllocations)
	}
	if m.Evictions != 4 {
		t.Errorf("Evictions = %d, want 4", m.Evictions)
	}
}

func TestAtlasOutOfSpaceReturnsError(t *testing.T) {
	a := New(8, 8)
	face := testFace(t)
	if _, err := a.GetOrRasterize(face, 'A', 48); err == nil {
		t.Error("expected an error packing a large glyph into a tiny atlas")
	}
}
