package brc

import (
	"testing"

	"github.com/ausocean/aec/brc/config"
)

func testHRDParams() config.Params {
	return config.Params{
		RateControlMode: config.CBR,
		TargetKbps:      4000,
		MaxKbps:         4000,
		FrameRate:       30,
		CpbSizeBits:     8_000_000,
		InitDelayBits:   4_000_000,
		WindowSize:      30,
	}
}

func TestH264HRDDelayStaysInRange(t *testing.T) {
	p := testHRDParams()
	h := &H264HRD{}
	h.Init(p)

	bitsPerFrame := uint32(float64(p.TargetKbps) * 1000 / p.FrameRate)
	for eo := uint32(0); eo < 100; eo++ {
		h.Update(bitsPerFrame, eo, eo == 0)
		delay := h.InitCPBRemovalDelay(eo + 1)
		if delay < 1 {
			t.Fatalf("eo=%d: delay %d below floor", eo, delay)
		}
	}
}

func TestHEVCHRDDelayStaysInRange(t *testing.T) {
	p := testHRDParams()
	h := &HEVCHRD{}
	h.Init(p)

	bitsPerFrame := uint32(float64(p.TargetKbps) * 1000 / p.FrameRate)
	for eo := uint32(0); eo < 100; eo++ {
		h.Update(bitsPerFrame, eo, eo == 0)
		delay := h.InitCPBRemovalDelay(eo + 1)
		if delay == 0 {
			t.Fatalf("eo=%d: delay must stay positive", eo)
		}
	}
}

func TestGetTargetDelayCBRvsVBR(t *testing.T) {
	cpb, init := 1000.0, 600.0
	cbr := getTargetDelay(cpb, init, false)
	vbr := getTargetDelay(cpb, init, true)
	if cbr != 500.0 {
		t.Fatalf("CBR target delay = %v, want min(cpb/2, init) = 500", cbr)
	}
	if vbr != 600.0 {
		t.Fatalf("VBR target delay = %v, want max(min(3cpb/4,init), cpb/2) = 600", vbr)
	}
}
