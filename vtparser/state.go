package vtparser

import "github.com/raventerminal/core/cell"

// ParserState is the SGR state the VT Parser owns: the formatting triple
// applied to subsequently printed characters.
type ParserState struct {
	Fg    cell.Color
	Bg    cell.Color
	Attrs cell.Attrs
}

// DefaultParserState returns the construction-time default: default
// foreground/background, no attributes.
func DefaultParserState() ParserState {
	return ParserState{Fg: cell.DefaultFg(), Bg: cell.DefaultBg()}
}

// applySGR mutates the state per ECMA-48, matching the table in §4.1:
// resets, bold/italic/underline/blink/reverse/strikethrough toggles,
// standard/bright 16-color selection, the 256-color cube/grayscale ramp,
// and 24-bit direct color with channel clamping.
func (s *ParserState) applySGR(params []int) {
	if len(params) == 0 {
		params = []int{0}
	}

	i := 0
	for i < len(params) {
		p := params[i]
		switch {
		case p == 0:
			*s = DefaultParserState()
		case p == 1:
			s.Attrs |= cell.Bold
		case p == 3:
			s.Attrs |= cell.Italic
		case p == 4:
			s.Attrs |= cell.Underline
		case p == 5:
			s.Attrs |= cell.Blink
		case p == 7:
			s.Attrs |= cell.Reverse
		case p == 9:
			s.Attrs |= cell.Strikethrough
		case p == 22:
			s.Attrs &^= cell.Bold
		case p == 23:
			s.Attrs &^= cell.Italic
		case p == 24:
			s.Attrs &^= cell.Underline
		case p == 25:
			s.Attrs &^= cell.Blink
		case p == 27:
			s.Attrs &^= cell.Reverse
		case p == 29:
			s.Attrs &^= cell.Strikethrough
		case p >= 30 && p <= 37:
			s.Fg = cell.Indexed256(uint8(p - 30))
		case p == 38:
			if n, consumed := extendedColor(params, i); consumed > 0 {
				s.Fg = n
				i += consumed
			}
		case p == 39:
			s.Fg = cell.DefaultFg()
		case p >= 40 && p <= 47:
			s.Bg = cell.Indexed256(uint8(p - 40))
		case p == 48:
			if n, consumed := extendedColor(params, i); consumed > 0 {
				s.Bg = n
				i += consumed
			}
		case p == 49:
			s.Bg = cell.DefaultBg()
		case p >= 90 && p <= 97:
			s.Fg = cell.Indexed256(uint8(p - 90 + 8))
		case p >= 100 && p <= 107:
			s.Bg = cell.Indexed256(uint8(p - 100 + 8))
		}
		i++
	}
}

// extendedColor parses a 38/48 extended-color sub-sequence starting at
// params[i], returning the resolved color and the number of extra params
// consumed (0 if the sequence is malformed/truncated).
func extendedColor(params []int, i int) (cell.Color, int) {
	if i+1 >= len(params) {
		return cell.Color{}, 0
	}
	switch params[i+1] {
	case 5:
		if i+2 < len(params) {
			return cell.Indexed256(clampByte(params[i+2])), 2
		}
	case 2:
		if i+4 < len(params) {
			r := clampByte(params[i+2])
			g := clampByte(params[i+3])
			b := clampByte(params[i+4])
			return cell.RGB(r, g, b), 4
		}
	}
	return cell.Color{}, 0
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
