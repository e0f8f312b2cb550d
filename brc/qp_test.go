package brc

import (
	"testing"

	"github.com/ausocean/aec/aec"
	"github.com/ausocean/aec/brc/config"
)

func TestQstepRoundTripMonotonic(t *testing.T) {
	prev := -1.0
	for qp := int32(0); qp <= 51; qp++ {
		s := qp2Qstep(qp, 0)
		if s <= prev {
			t.Fatalf("qp2Qstep not increasing at qp=%d: %v <= %v", qp, s, prev)
		}
		prev = s
		if got := qstep2QP(s, 0); got != qp {
			t.Fatalf("qstep2QP(qp2Qstep(%d)) = %d, want %d", qp, got, qp)
		}
	}
}

func TestRequantizeOverflowRaisesQP(t *testing.T) {
	qpNew := requantize(200000, 100000, 1, 51, 26, 0, 1.0, false, true)
	if qpNew <= 26 {
		t.Fatalf("overflow (too many bits) should raise QP, got %d", qpNew)
	}
}

func TestRequantizeUnderflowLowersQP(t *testing.T) {
	qpNew := requantize(50000, 100000, 1, 51, 26, 0, 1.0, false, true)
	if qpNew >= 26 {
		t.Fatalf("underflow (too few bits) should lower QP, got %d", qpNew)
	}
}

func TestComplexityQPFloorNeedsHistory(t *testing.T) {
	p := config.Params{CodecID: aec.AVC, RateControlMode: config.CBR, TargetKbps: 4000, MaxKbps: 4000, FrameRate: 30, CpbSizeBits: 8_000_000, InitDelayBits: 4_000_000, WindowSize: 30}
	hrd := &H264HRD{}
	hrd.Init(p)
	c := NewQPController(p, hrd, nil)
	if _, ok := c.complexityQPFloor(); ok {
		t.Fatalf("expected no floor before any intra samples are recorded")
	}
	c.ctx.recordIntraSample(500000, 22)
	c.ctx.recordIntraSample(300000, 26)
	c.ctx.recordIntraSample(200000, 30)
	if _, ok := c.complexityQPFloor(); !ok {
		t.Fatalf("expected a floor once 3 samples are recorded")
	}
}

func TestQPControllerGopPeaksAtB(t *testing.T) {
	p := config.Params{
		CodecID: aec.AVC, RateControlMode: config.CBR,
		TargetKbps: 4000, MaxKbps: 4000, FrameRate: 30,
		CpbSizeBits: 8_000_000, InitDelayBits: 4_000_000, WindowSize: 30,
	}
	hrd := &H264HRD{}
	hrd.Init(p)
	c := NewQPController(p, hrd, nil)

	idr := c.GetFrameCtrl(FrameParam{Type: aec.IDR})
	b := c.GetFrameCtrl(FrameParam{Type: aec.B, PyramidLayer: 2})
	if b.QP < idr.QP {
		t.Fatalf("B-frame QP %d should be >= IDR QP %d", b.QP, idr.QP)
	}
}
