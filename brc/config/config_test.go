package config

import (
	"errors"
	"testing"

	"github.com/ausocean/aec/aec"
)

func validParams() Params {
	return Params{
		CodecID:         aec.AVC,
		RateControlMode: CBR,
		TargetKbps:      5000,
		MaxKbps:         5000,
		FrameRate:       30,
		GopPicSize:      32,
		CpbSizeBits:     8_000_000,
		InitDelayBits:   4_000_000,
		WindowSize:      30,
		MaxRecodes:      2,
		MaxRecodesPanic: 4,
	}
}

func TestValidateAccepts(t *testing.T) {
	p := validParams()
	if err := p.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsZeroTarget(t *testing.T) {
	p := validParams()
	p.TargetKbps = 0
	if err := p.Validate(); !errors.Is(err, ErrInvalidParam) {
		t.Fatalf("expected ErrInvalidParam, got %v", err)
	}
}

func TestValidateRejectsMaxBelowTarget(t *testing.T) {
	p := validParams()
	p.MaxKbps = p.TargetKbps - 1
	if err := p.Validate(); !errors.Is(err, ErrInvalidParam) {
		t.Fatalf("expected ErrInvalidParam, got %v", err)
	}
}

func TestValidateRejectsInitDelayAboveCpb(t *testing.T) {
	p := validParams()
	p.InitDelayBits = p.CpbSizeBits + 1
	if err := p.Validate(); !errors.Is(err, ErrInvalidParam) {
		t.Fatalf("expected ErrInvalidParam, got %v", err)
	}
}

func TestValidateRejectsBadRateControlMode(t *testing.T) {
	p := validParams()
	p.RateControlMode = RateControlMode(99)
	if err := p.Validate(); !errors.Is(err, ErrInvalidParam) {
		t.Fatalf("expected ErrInvalidParam, got %v", err)
	}
}
