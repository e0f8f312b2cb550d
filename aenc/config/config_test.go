package config

import (
	"errors"
	"testing"

	"github.com/ausocean/aec/aec"
)

func validParams() Params {
	return Params{
		FrameWidth: 1920, FrameHeight: 1080,
		ColorFormat:    aec.NV12,
		GopPicSize:     32,
		MinGopSize:     16,
		MaxGopSize:     32,
		MaxIDRDist:     256,
		MaxMiniGopSize: 8,
		CodecID:        aec.AVC,
		NumRefP:        2,
	}
}

func TestValidateAccepts(t *testing.T) {
	p := validParams()
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateSmallestLegalRange(t *testing.T) {
	p := validParams()
	p.MaxGopSize = 32
	p.MaxMiniGopSize = 8
	p.MinGopSize = p.MaxGopSize - p.MaxMiniGopSize
	if err := p.Validate(); err != nil {
		t.Fatalf("smallest legal range: %v", err)
	}
}

func TestValidateRejectsBadMiniGopSize(t *testing.T) {
	p := validParams()
	p.MaxMiniGopSize = 3
	if err := p.Validate(); !errors.Is(err, ErrInvalidParam) {
		t.Fatalf("MaxMiniGopSize=3: got %v, want ErrInvalidParam", err)
	}
}

func TestValidateRejectsNonMultipleIDRDist(t *testing.T) {
	p := validParams()
	p.MaxIDRDist = 100
	if err := p.Validate(); !errors.Is(err, ErrInvalidParam) {
		t.Fatalf("non-multiple MaxIDRDist: got %v, want ErrInvalidParam", err)
	}
}

func TestValidateRejectsBadColorFormat(t *testing.T) {
	p := validParams()
	p.ColorFormat = aec.ColorFormat(99)
	if err := p.Validate(); !errors.Is(err, ErrInvalidParam) {
		t.Fatalf("bad color format: got %v, want ErrInvalidParam", err)
	}
}

func TestValidateRejectsGopOrdering(t *testing.T) {
	p := validParams()
	p.MinGopSize = 40
	if err := p.Validate(); !errors.Is(err, ErrInvalidParam) {
		t.Fatalf("MinGopSize > MaxGopSize: got %v, want ErrInvalidParam", err)
	}
}
