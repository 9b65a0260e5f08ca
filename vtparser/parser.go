// Package vtparser implements the VT-style escape sequence state machine
// (spec component C2). It is purely functional beyond its own ParserState:
// it never touches a grid or any other mutable terminal model, only ever
// emitting an ordered ParseAction stream for a consumer to apply.
package vtparser

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/raventerminal/core/logging"
)

type substate int

const (
	subGround substate = iota
	subEscape
	subCSI
	subOSC
	subCharset
	subHash
)

// Parser is a byte-driven VT500-style state machine. It is not safe for
// concurrent use; callers serialize access (one Parser per PTY session).
type Parser struct {
	state ParserState
	sub   substate

	csiParams string
	oscParams string

	utf8Buf       []byte
	utf8Remaining int

	log zerolog.Logger
}

// NewParser returns a Parser with its SGR state at construction defaults.
func NewParser() *Parser {
	return &Parser{state: DefaultParserState(), log: logging.New("vtparser")}
}

// State returns the parser's current SGR formatting triple.
func (p *Parser) State() ParserState { return p.state }

// Parse consumes data and returns the ordered ParseAction stream it
// produces. Malformed sequences never abort parsing: the state machine
// resets to ground and the byte is logged at trace level.
func (p *Parser) Parse(data []byte) []ParseAction {
	var actions []ParseAction
	for _, b := range data {
		actions = append(actions, p.processByte(b)...)
	}
	return actions
}

func (p *Parser) processByte(b byte) []ParseAction {
	switch p.sub {
	case subGround:
		return p.processGround(b)
	case subEscape:
		return p.processEscape(b)
	case subCSI:
		return p.processCSI(b)
	case subOSC:
		return p.processOSC(b)
	case subCharset:
		p.sub = subGround
		return nil
	case subHash:
		p.sub = subGround
		return nil
	}
	return nil
}

func (p *Parser) processGround(b byte) []ParseAction {
	if p.utf8Remaining > 0 {
		if b&0xC0 == 0x80 {
			p.utf8Buf = append(p.utf8Buf, b)
			p.utf8Remaining--
			if p.utf8Remaining == 0 {
				r := decodeUTF8(p.utf8Buf)
				p.utf8Buf = nil
				return []ParseAction{{Kind: ActionPrint, Print: r}}
			}
			return nil
		}
		p.utf8Buf = nil
		p.utf8Remaining = 0
		return p.processGround(b)
	}

	switch {
	case b == 0x1b:
		p.sub = subEscape
		return nil
	case b == 0x07, b == 0x08, b == 0x09, b == 0x0a, b == 0x0b, b == 0x0c, b == 0x0d:
		return []ParseAction{{Kind: ActionExecute, Execute: b}}
	case b >= 0x20 && b < 0x7f:
		return []ParseAction{{Kind: ActionPrint, Print: rune(b)}}
	case b >= 0xC0 && b < 0xE0:
		p.utf8Buf = []byte{b}
		p.utf8Remaining = 1
	case b >= 0xE0 && b < 0xF0:
		p.utf8Buf = []byte{b}
		p.utf8Remaining = 2
	case b >= 0xF0 && b < 0xF8:
		p.utf8Buf = []byte{b}
		p.utf8Remaining = 3
	default:
		p.log.Trace().Msg("ignored control byte in ground state")
	}
	return nil
}

func decodeUTF8(buf []byte) rune {
	if len(buf) == 0 {
		return 0xFFFD
	}
	switch len(buf) {
	case 2:
		if buf[0]&0xE0 == 0xC0 {
			return rune(buf[0]&0x1F)<<6 | rune(buf[1]&0x3F)
		}
	case 3:
		if buf[0]&0xF0 == 0xE0 {
			return rune(buf[0]&0x0F)<<12 | rune(buf[1]&0x3F)<<6 | rune(buf[2]&0x3F)
		}
	case 4:
		if buf[0]&0xF8 == 0xF0 {
			return rune(buf[0]&0x07)<<18 | rune(buf[1]&0x3F)<<12 | rune(buf[2]&0x3F)<<6 | rune(buf[3]&0x3F)
		}
	}
	return 0xFFFD
}

func (p *Parser) processEscape(b byte) []ParseAction {
	switch b {
	case '[':
		p.sub = subCSI
		p.csiParams = ""
		return nil
	case ']':
		p.sub = subOSC
		p.oscParams = ""
		return nil
	case 'c':
		p.state = DefaultParserState()
		p.sub = subGround
		return []ParseAction{{Kind: ActionEscDispatch, EscKind: EscReset}}
	case '(', ')', '*', '+':
		p.sub = subCharset
		return nil
	case '#':
		p.sub = subHash
		return nil
	case '=', '>':
		p.sub = subGround
		return nil
	default:
		p.sub = subGround
		return []ParseAction{{Kind: ActionEscDispatch, EscKind: EscOther, EscByte: b}}
	}
}

func (p *Parser) processCSI(b byte) []ParseAction {
	switch {
	case b >= 0x30 && b <= 0x3f:
		p.csiParams += string(b)
		return nil
	case b >= 0x20 && b <= 0x2f:
		p.csiParams += string(b)
		return nil
	case b >= 0x40 && b <= 0x7e:
		action := p.dispatchCSI(b)
		p.sub = subGround
		return []ParseAction{action}
	default:
		p.sub = subGround
		p.log.Trace().Msg("illegal CSI transition, reset to ground")
		return nil
	}
}

func (p *Parser) dispatchCSI(final byte) ParseAction {
	private := strings.HasPrefix(p.csiParams, "?")
	params := parseCSIParams(p.csiParams)

	if final == 'm' {
		p.state.applySGR(params)
		return ParseAction{Kind: ActionCsiDispatch, CsiKind: CsiSgr, SgrState: p.state, CsiParams: params, CsiPrivate: private}
	}
	return ParseAction{Kind: ActionCsiDispatch, CsiKind: CsiOther, CsiCommand: final, CsiParams: params, CsiPrivate: private}
}

func parseCSIParams(s string) []int {
	s = strings.TrimPrefix(s, "?")
	s = strings.TrimPrefix(s, ">")
	s = strings.TrimPrefix(s, "!")
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	params := make([]int, len(parts))
	for i, part := range parts {
		if idx := strings.IndexByte(part, ':'); idx >= 0 {
			part = part[:idx]
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			params[i] = 0
			continue
		}
		params[i] = n
	}
	return params
}

func (p *Parser) processOSC(b byte) []ParseAction {
	if b == 0x07 || b == 0x1b {
		raw := p.oscParams
		p.oscParams = ""
		p.sub = subGround
		return []ParseAction{{Kind: ActionOscDispatch, OscParams: strings.Split(raw, ";")}}
	}
	p.oscParams += string(b)
	return nil
}
