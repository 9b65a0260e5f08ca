// Package cell defines the value types that make up a single styled grid
// cell: Color, Attrs and Cell itself (spec component C1).
package cell

// Color is an RGBA byte quadruple. The zero value is fully transparent
// black; callers needing terminal defaults should use DefaultFg/DefaultBg.
type Color struct {
	R, G, B, A uint8
}

// DefaultFg is the default foreground color: opaque white.
func DefaultFg() Color { return Color{R: 255, G: 255, B: 255, A: 255} }

// DefaultBg is the default background color: opaque black.
func DefaultBg() Color { return Color{R: 0, G: 0, B: 0, A: 255} }

// RGB builds an opaque color from red/green/blue components.
func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b, A: 255} }

// standardPalette holds the 16 ANSI base colors (0-7 normal, 8-15 bright).
var standardPalette = [16]Color{
	RGB(0, 0, 0), RGB(128, 0, 0), RGB(0, 128, 0), RGB(128, 128, 0),
	RGB(0, 0, 128), RGB(128, 0, 128), RGB(0, 128, 128), RGB(192, 192, 192),
	RGB(128, 128, 128), RGB(255, 0, 0), RGB(0, 255, 0), RGB(255, 255, 0),
	RGB(0, 0, 255), RGB(255, 0, 255), RGB(0, 255, 255), RGB(255, 255, 255),
}

// Indexed256 resolves a 0-255 palette index to a concrete RGBA color: 0-15
// are the standard/bright ANSI colors, 16-231 are a 6x6x6 RGB cube with
// step 51, and 232-255 are a 24-step grayscale ramp starting at 8 with
// step 10.
func Indexed256(index uint8) Color {
	switch {
	case index < 16:
		return standardPalette[index]
	case index <= 231:
		n := int(index) - 16
		r := n / 36
		g := (n % 36) / 6
		b := n % 6
		step := func(v int) uint8 { return uint8(v * 51) }
		return RGB(step(r), step(g), step(b))
	default:
		level := uint8(8 + (int(index)-232)*10)
		return RGB(level, level, level)
	}
}

// Attrs is a bit-set of text attributes over {bold, italic, underline,
// strikethrough, blink, reverse, hidden}.
type Attrs uint8

const (
	Bold Attrs = 1 << iota
	Italic
	Underline
	Strikethrough
	Blink
	Reverse
	Hidden
)

// Has reports whether all bits in want are set.
func (a Attrs) Has(want Attrs) bool { return a&want == want }

// ShapingInfo carries the glyph-shaping result attached to a cell once the
// Glyph Shaper has processed the run it belongs to.
type ShapingInfo struct {
	GlyphID  uint32
	XAdvance float32
	YAdvance float32
	XOffset  float32
	YOffset  float32
	Cluster  int
}

// Cell is a single column x row grid position: a glyph plus its style.
// A cell is empty iff Glyph is a space and Fg/Bg/Attrs are defaults.
type Cell struct {
	Glyph   rune
	Fg      Color
	Bg      Color
	Attrs   Attrs
	Shaping *ShapingInfo
}

// Empty returns a cleared cell using the default foreground/background.
func Empty() Cell {
	return Cell{Glyph: ' ', Fg: DefaultFg(), Bg: DefaultBg()}
}

// IsEmpty reports whether c matches the default empty-cell value.
func (c Cell) IsEmpty() bool {
	return c.Glyph == ' ' && c.Fg == DefaultFg() && c.Bg == DefaultBg() && c.Attrs == 0
}
