package brc

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ausocean/aec/aec"
	"github.com/ausocean/aec/brc/config"
)

func testSessionParams() config.Params {
	return config.Params{
		CodecID: aec.AVC, RateControlMode: config.CBR,
		TargetKbps: 2000, MaxKbps: 2000, FrameRate: 30,
		GopPicSize:  32,
		CpbSizeBits: 4_000_000, InitDelayBits: 2_000_000,
		WindowSize: 30, MaxRecodes: 2, MaxRecodesPanic: 4,
	}
}

func TestBRCRejectsBadParams(t *testing.T) {
	p := testSessionParams()
	p.TargetKbps = 0
	if _, err := New(p); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestBRCRejectsOutOfOrderPOC(t *testing.T) {
	p := testSessionParams()
	b, err := New(p)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := b.GetFrameCtrl(FrameParam{POC: 5, Type: aec.P}); err != nil {
		t.Fatalf("GetFrameCtrl(5): %v", err)
	}
	if _, err := b.GetFrameCtrl(FrameParam{POC: 3, Type: aec.P}); !errors.Is(err, ErrOutOfOrder) {
		t.Fatalf("expected ErrOutOfOrder, got %v", err)
	}
}

func TestBRCUpdateUnknownPOC(t *testing.T) {
	p := testSessionParams()
	b, err := New(p)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, _, err := b.Update(42, 1000, 26); !errors.Is(err, ErrUnknownFrame) {
		t.Fatalf("expected ErrUnknownFrame, got %v", err)
	}
}

// TestBRCRepeatedOverflowEscalatesToPanic feeds frames far larger than the
// HRD allows and checks the session escalates from BIG_FRAME recodes to
// PANIC_BIG_FRAME within the configured recode budget, never exceeding it.
func TestBRCRepeatedOverflowEscalatesToPanic(t *testing.T) {
	p := testSessionParams()
	b, err := New(p)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	poc := aec.POC(0)
	ctrl, err := b.GetFrameCtrl(FrameParam{POC: poc, Type: aec.IDR})
	if err != nil {
		t.Fatalf("GetFrameCtrl: %v", err)
	}

	hugeBits := ctrl.MaxFrameSizeBits*10 + 1_000_000
	var sawBig, sawPanic bool
	qp := ctrl.QP
	for recode := 0; recode < 6; recode++ {
		status, newQP, err := b.Update(poc, hugeBits, qp)
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		switch status {
		case BigFrame:
			sawBig = true
			qp = newQP
		case PanicBigFrame:
			sawPanic = true
		case OK:
			t.Fatalf("recode %d: got OK while still feeding an oversized frame", recode)
		default:
			t.Fatalf("recode %d: unexpected status %v", recode, status)
		}
		if sawPanic {
			break
		}
	}
	if !sawBig || !sawPanic {
		t.Fatalf("expected BIG_FRAME recode(s) then PANIC_BIG_FRAME, sawBig=%v sawPanic=%v", sawBig, sawPanic)
	}
}

// TestBRCGetFrameCtrlDeterministic checks that two fresh sessions fed the
// same frame parameters in the same order propose identical controls,
// the property a caller relies on when comparing encodes across runs.
func TestBRCGetFrameCtrlDeterministic(t *testing.T) {
	p := testSessionParams()
	run := func() []FrameCtrl {
		b, err := New(p)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		var out []FrameCtrl
		types := []aec.FrameType{aec.IDR, aec.P, aec.B, aec.P, aec.B}
		for poc, typ := range types {
			ctrl, err := b.GetFrameCtrl(FrameParam{POC: aec.POC(poc), Type: typ, PyramidLayer: uint32(poc % 3)})
			if err != nil {
				t.Fatalf("GetFrameCtrl(%d): %v", poc, err)
			}
			out = append(out, ctrl)
		}
		return out
	}
	a, b := run(), run()
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("two identical sessions diverged (-got +want):\n%s", diff)
	}
}

func TestBRCQpMapSkippedWhenPersistenceEmpty(t *testing.T) {
	p := testSessionParams()
	b, err := New(p)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := b.GetFrameCtrl(FrameParam{POC: 0, Type: aec.IDR}); err != nil {
		t.Fatalf("GetFrameCtrl: %v", err)
	}
	if _, ok := b.QpMap(0, [128]byte{}, 16, 8); ok {
		t.Fatalf("expected no QP map for an all-zero persistence snapshot")
	}
}

func TestBRCQpMapBuiltWhenPersistent(t *testing.T) {
	p := testSessionParams()
	b, err := New(p)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := b.GetFrameCtrl(FrameParam{POC: 0, Type: aec.IDR}); err != nil {
		t.Fatalf("GetFrameCtrl: %v", err)
	}
	var persist [128]byte
	persist[0] = 9
	m, ok := b.QpMap(0, persist, 16, 8)
	if !ok {
		t.Fatalf("expected a QP map for a non-empty persistence snapshot")
	}
	if len(m.QP) != 16*8 {
		t.Fatalf("QpMap size = %d, want %d", len(m.QP), 16*8)
	}
	for _, qp := range m.QP {
		if qp < 1 || qp > 51 {
			t.Fatalf("QP %d out of [1,51]", qp)
		}
	}
}
