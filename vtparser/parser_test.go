package vtparser

import (
	"testing"

	"github.com/raventerminal/core/cell"
)

func TestPrintASCII(t *testing.T) {
	p := NewParser()
	actions := p.Parse([]byte("Hi"))
	if len(actions) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(actions))
	}
	if actions[0].Kind != ActionPrint || actions[0].Print != 'H' {
		t.Fatalf("unexpected first action: %+v", actions[0])
	}
	if actions[1].Print != 'i' {
		t.Fatalf("unexpected second action: %+v", actions[1])
	}
}

func TestUTF8Decode(t *testing.T) {
	p := NewParser()
	actions := p.Parse([]byte("é"))
	if len(actions) != 1 || actions[0].Kind != ActionPrint {
		t.Fatalf("expected single print action, got %+v", actions)
	}
	if actions[0].Print != 'é' {
		t.Fatalf("expected 'é', got %q", actions[0].Print)
	}
}

func TestSGRBoldRed(t *testing.T) {
	p := NewParser()
	actions := p.Parse([]byte("\x1b[1;31mRed\x1b[0m X"))

	var sawBoldRed, sawReset bool
	for _, a := range actions {
		if a.Kind == ActionCsiDispatch && a.CsiKind == CsiSgr {
			if a.SgrState.Attrs.Has(cell.Bold) {
				sawBoldRed = a.SgrState.Fg.R == 128 && a.SgrState.Fg.G == 0 && a.SgrState.Fg.B == 0
			}
			if a.SgrState == DefaultParserState() {
				sawReset = true
			}
		}
	}
	if !sawBoldRed {
		t.Error("expected a bold-red SGR state after \\x1b[1;31m")
	}
	if !sawReset {
		t.Error("expected SGR reset action after \\x1b[0m")
	}
}

func Test256ColorCube(t *testing.T) {
	p := NewParser()
	actions := p.Parse([]byte("\x1b[38;5;196mA"))
	found := false
	for _, a := range actions {
		if a.Kind == ActionCsiDispatch && a.CsiKind == CsiSgr {
			if a.SgrState.Fg.R == 255 && a.SgrState.Fg.G == 0 && a.SgrState.Fg.B == 0 {
				found = true
			}
		}
	}
	if !found {
		t.Error("expected 38;5;196 to resolve to (255,0,0)")
	}
}

func TestDirectColorClamping(t *testing.T) {
	p := NewParser()
	actions := p.Parse([]byte("\x1b[38;2;300;-1;500m"))
	var got ParseAction
	for _, a := range actions {
		if a.Kind == ActionCsiDispatch && a.CsiKind == CsiSgr {
			got = a
		}
	}
	if got.SgrState.Fg.R != 255 || got.SgrState.Fg.G != 0 || got.SgrState.Fg.B != 255 {
		t.Errorf("expected clamped (255,0,255), got %+v", got.SgrState.Fg)
	}
}

func TestCursorCSIOther(t *testing.T) {
	p := NewParser()
	actions := p.Parse([]byte("\x1b[5A"))
	if len(actions) != 1 || actions[0].Kind != ActionCsiDispatch || actions[0].CsiKind != CsiOther {
		t.Fatalf("unexpected actions: %+v", actions)
	}
	if actions[0].CsiCommand != 'A' || len(actions[0].CsiParams) != 1 || actions[0].CsiParams[0] != 5 {
		t.Errorf("unexpected CSI dispatch: %+v", actions[0])
	}
}

func TestOSCDispatch(t *testing.T) {
	p := NewParser()
	actions := p.Parse([]byte("\x1b]7;file:///home/foo\x07"))
	if len(actions) != 1 || actions[0].Kind != ActionOscDispatch {
		t.Fatalf("unexpected actions: %+v", actions)
	}
	if len(actions[0].OscParams) != 2 || actions[0].OscParams[0] != "7" {
		t.Errorf("unexpected OSC params: %+v", actions[0].OscParams)
	}
}

func TestMalformedCSIResetsToGround(t *testing.T) {
	p := NewParser()
	// A CSI param byte followed immediately by another ESC introduces an
	// illegal transition; the parser must reset instead of getting stuck.
	actions := p.Parse([]byte("\x1b[1\x1bH"))
	// Back in ground state, the trailing 'H' prints as ordinary text.
	if len(actions) != 1 || actions[0].Kind != ActionPrint || actions[0].Print != 'H' {
		t.Errorf("expected a single Print('H') after recovery, got %+v", actions)
	}
}
