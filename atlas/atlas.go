// Package atlas implements the Glyph Atlas (spec component C7): a single
// GPU-uploadable texture that shelf-packs rasterized glyph bitmaps, with
// an LRU-bounded cache so a long-running terminal doesn't grow the atlas
// without bound.
package atlas

import (
	"container/list"
	"fmt"
	"image"
	"image/draw"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	rfont "github.com/raventerminal/core/font"
)

// Tuning constants ported from original_source/renderer/font/atlas.rs.
const (
	DefaultPadding  = 2
	DefaultMaxMemory = 32 * 1024 * 1024
	DefaultCapacity  = 1000
)

// shelf is one horizontal strip of the atlas that glyphs are packed into
// left to right until it runs out of width.
type shelf struct {
	x, y, width, height uint32
	usedWidth           uint32
}

// GlyphKey identifies one rasterized glyph: which font, which rune, at
// what pixel size (26.6 fixed point, matching the font package's cache
// key convention). Playing the role of original_source's GlyphKey, which
// keys on a shaped glyph ID — this atlas keys on the rune directly since
// the shaper never remaps glyph IDs away from their Unicode codepoint.
type GlyphKey struct {
	FontID uint64
	Glyph  rune
	SizePx uint32
}

// computeFontID plays the role of original_source's GlyphKey::compute_
// font_id: a stable identifier for "which font" so two Face values for
// the same underlying font hash the same. The font package hands out a
// process-local ID per loaded Face for exactly this purpose.
func computeFontID(f *rfont.Face) uint64 {
	if f == nil {
		return 0
	}
	return f.ID
}

func newGlyphKey(f *rfont.Face, r rune, sizePx float64) GlyphKey {
	return GlyphKey{
		FontID: computeFontID(f),
		Glyph:  r,
		SizePx: uint32(math.Round(sizePx * 64)),
	}
}

// Region describes where one glyph's bitmap lives in the atlas texture
// and how to position it relative to the pen.
type Region struct {
	X, Y, Width, Height uint32
	TexCoords           [4]float32 // u_min, v_min, u_max, v_max
	BearingX, BearingY  float32
	Advance             float32
}

// Metrics tracks the atlas's cache/allocation/eviction counters, mirroring
// original_source's AtlasMetrics.
type Metrics struct {
	TotalAllocations int
	CacheHits        int
	CacheMisses      int
	Evictions        int
	Rasterizations   int
	MemoryUsed       int
	AtlasUtilization float32
}

// HitRatio is CacheHits/(CacheHits+CacheMisses), or 0 before anything has
// been requested.
func (m Metrics) HitRatio() float64 {
	total := m.CacheHits + m.CacheMisses
	if total == 0 {
		return 0
	}
	return float64(m.CacheHits) / float64(total)
}

type lruEntry struct {
	key    GlyphKey
	region Region
}

// Atlas packs rasterized glyph bitmaps into one RGBA texture via shelf
// packing, evicting the least-recently-used glyph once the cache exceeds
// its capacity.
type Atlas struct {
	mu sync.Mutex

	width, height uint32
	padding       uint32

	shelves  []shelf
	currentY uint32

	texture []byte // RGBA, width*height*4; glyphs are stored as white RGB with alpha coverage

	capacity int
	lru      *list.List
	index    map[GlyphKey]*list.Element

	maxMemory int
	metrics   Metrics
}

// New returns an Atlas of the given pixel dimensions with the default
// 1000-glyph LRU capacity.
func New(width, height uint32) *Atlas {
	return NewWithCapacity(width, height, DefaultCapacity)
}

// NewWithCapacity is New with an explicit LRU capacity.
func NewWithCapacity(width, height uint32, capacity int) *Atlas {
	return &Atlas{
		width:     width,
		height:    height,
		padding:   DefaultPadding,
		texture:   make([]byte, int(width)*int(height)*4),
		capacity:  capacity,
		lru:       list.New(),
		index:     make(map[GlyphKey]*list.Element),
		maxMemory: DefaultMaxMemory,
	}
}

// GetOrRasterize returns the atlas region for (face, r), rasterizing and
// packing it on a cache miss. sizePx is part of the cache key only; the
// glyph is rasterized at the size face was built for. A full cache evicts
// its least-recently-used glyph to make room for the new one.
func (a *Atlas) GetOrRasterize(face *rfont.Face, r rune, sizePx float64) (Region, error) {
	key := newGlyphKey(face, r, sizePx)

	a.mu.Lock()
	if elem, ok := a.index[key]; ok {
		a.lru.MoveToFront(elem)
		a.metrics.CacheHits++
		region := elem.Value.(*lruEntry).region
		a.mu.Unlock()
		return region, nil
	}
	a.metrics.CacheMisses++
	a.mu.Unlock()

	region, err := a.rasterizeAndPack(face, r)
	if err != nil {
		return Region{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.metrics.Rasterizations++
	elem := a.lru.PushFront(&lruEntry{key: key, region: region})
	a.index[key] = elem

	if a.lru.Len() > a.capacity {
		oldest := a.lru.Back()
		if oldest != nil {
			a.lru.Remove(oldest)
			delete(a.index, oldest.Value.(*lruEntry).key)
			a.metrics.Evictions++
			// handle_evicted_glyph is an intentional no-op in
			// original_source: the vacated region isn't reclaimed, it's
			// just left to be overwritten by a future pack.
		}
	}
	a.updateMetricsLocked()
	return region, nil
}

// rasterizeAndPack renders r with face into a fixed-size cell bitmap
// (monospace fonts make every glyph's cell the same size, the same
// simplification the teacher's own loadFontData makes) and packs it into
// the shelf layout. Caller must not hold a.mu.
func (a *Atlas) rasterizeAndPack(face *rfont.Face, r rune) (Region, error) {
	metrics := face.Face.Metrics()
	cellHeight := (metrics.Ascent + metrics.Descent).Ceil()
	advance, ok := face.Face.GlyphAdvance(r)
	if !ok {
		advance, _ = face.Face.GlyphAdvance('?')
	}
	cellWidth := advance.Ceil()
	if cellWidth <= 0 {
		cellWidth = 1
	}
	if cellHeight <= 0 {
		cellHeight = 1
	}

	a.mu.Lock()
	paddedW := uint32(cellWidth) + a.padding*2
	paddedH := uint32(cellHeight) + a.padding*2
	x, y, err := a.findSpaceLocked(paddedW, paddedH)
	if err != nil {
		a.mu.Unlock()
		return Region{}, err
	}
	a.mu.Unlock()

	img := image.NewRGBA(image.Rect(0, 0, cellWidth, cellHeight))
	draw.Draw(img, img.Bounds(), image.Transparent, image.Point{}, draw.Src)
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: face.Face,
		Dot:  fixed.P(0, metrics.Ascent.Ceil()),
	}
	drawer.DrawString(string(r))

	destX := int(x) + int(a.padding)
	destY := int(y) + int(a.padding)

	a.mu.Lock()
	a.blitLocked(img, destX, destY)
	a.mu.Unlock()

	return Region{
		X:      x + a.padding,
		Y:      y + a.padding,
		Width:  uint32(cellWidth),
		Height: uint32(cellHeight),
		TexCoords: [4]float32{
			float32(destX) / float32(a.width),
			float32(destY) / float32(a.height),
			float32(destX+cellWidth) / float32(a.width),
			float32(destY+cellHeight) / float32(a.height),
		},
		BearingX: 0,
		BearingY: float32(metrics.Ascent.Ceil()),
		Advance:  float32(advance) / 64,
	}, nil
}

// findSpaceLocked implements the shelf-packing search from
// original_source's find_space: reuse an existing shelf with enough
// remaining width, else open a new shelf below the lowest one so far.
func (a *Atlas) findSpaceLocked(width, height uint32) (uint32, uint32, error) {
	for i := range a.shelves {
		sh := &a.shelves[i]
		if sh.usedWidth+width <= sh.width && height <= sh.height {
			x := sh.x + sh.usedWidth
			sh.usedWidth += width
			return x, sh.y, nil
		}
	}
	if a.currentY+height <= a.height {
		y := a.currentY
		a.shelves = append(a.shelves, shelf{x: 0, y: y, width: a.width, height: height, usedWidth: width})
		a.currentY += height
		return 0, y, nil
	}
	return 0, 0, fmt.Errorf("atlas: out of space for a %dx%d glyph in a %dx%d atlas", width, height, a.width, a.height)
}

// blitLocked copies img's alpha channel into the atlas texture at
// (destX, destY), storing white RGB with the glyph's coverage as alpha —
// the same single-channel-in-RGBA convention the teacher's renderer
// uploads as a GL_RED texture.
func (a *Atlas) blitLocked(img *image.RGBA, destX, destY int) {
	bounds := img.Bounds()
	for py := bounds.Min.Y; py < bounds.Max.Y; py++ {
		ty := destY + py
		if ty < 0 || ty >= int(a.height) {
			continue
		}
		for px := bounds.Min.X; px < bounds.Max.X; px++ {
			tx := destX + px
			if tx < 0 || tx >= int(a.width) {
				continue
			}
			_, _, _, alpha := img.At(px, py).RGBA()
			idx := (ty*int(a.width) + tx) * 4
			a.texture[idx] = 255
			a.texture[idx+1] = 255
			a.texture[idx+2] = 255
			a.texture[idx+3] = byte(alpha >> 8)
		}
	}
}

func (a *Atlas) updateMetricsLocked() {
	a.metrics.TotalAllocations = len(a.index)
	// 24 bytes/entry approximates GlyphKey+Region's footprint; this is an
	// estimate, same as original_source's own size_of-based approximation.
	a.metrics.MemoryUsed = len(a.texture) + len(a.index)*24
	if a.width > 0 && a.height > 0 {
		a.metrics.AtlasUtilization = float32(a.currentY) * float32(a.width) / (float32(a.width) * float32(a.height))
	}
}

// Metrics returns a snapshot of the atlas's counters.
func (a *Atlas) Metrics() Metrics {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.metrics
}

// TextureData returns the packed RGBA texture, ready for gl.TexImage2D.
func (a *Atlas) TextureData() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.texture
}

// Dimensions returns the atlas's pixel size.
func (a *Atlas) Dimensions() (uint32, uint32) {
	return a.width, a.height
}

// Clear resets the atlas to empty: no shelves, no cached glyphs, zeroed
// texture and metrics.
func (a *Atlas) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.shelves = nil
	a.currentY = 0
	a.texture = make([]byte, int(a.width)*int(a.height)*4)
	a.lru = list.New()
	a.index = make(map[GlyphKey]*list.Element)
	a.metrics = Metrics{}
}
