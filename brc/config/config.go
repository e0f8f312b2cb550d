// Package config defines the bitrate controller's parameter set, in
// the style of aenc/config and revid/config: named Key constants and a
// Validate entry point.
package config

import (
	"fmt"

	"github.com/ausocean/aec/aec"
)

// RateControlMode selects the HRD conformance class.
type RateControlMode int

const (
	CBR RateControlMode = iota
	VBR
)

func (m RateControlMode) String() string {
	if m == VBR {
		return "VBR"
	}
	return "CBR"
}

// Config map keys, matching the Params field they validate.
const (
	KeyCodecID         = "CodecId"
	KeyRateControlMode = "RateControlMode"
	KeyTargetKbps      = "TargetKbps"
	KeyMaxKbps         = "MaxKbps"
	KeyFrameRate       = "FrameRate"
	KeyGopPicSize      = "GopPicSize"
	KeyCpbSizeBits     = "CpbSizeBits"
	KeyInitDelayBits   = "InitDelayBits"
	KeyWindowSize      = "WindowSize"
	KeyMaxRecodes      = "MaxRecodes"
	KeyMaxRecodesPanic = "MaxRecodesPanic"
)

// Params is the bitrate controller's configuration (spec.md §4.4).
type Params struct {
	CodecID         aec.Codec
	RateControlMode RateControlMode

	TargetKbps uint32
	MaxKbps    uint32
	FrameRate  float64

	GopPicSize  uint32
	CpbSizeBits uint32
	InitDelayBits uint32

	WindowSize      uint32
	MaxRecodes      uint32
	MaxRecodesPanic uint32
}

// Validate checks the parameter set against init-time invariants.
func (p *Params) Validate() error {
	if p.TargetKbps == 0 {
		return fmt.Errorf("%w: %s must be > 0", ErrInvalidParam, KeyTargetKbps)
	}
	if p.MaxKbps < p.TargetKbps {
		return fmt.Errorf("%w: %s (%d) must be >= %s (%d)", ErrInvalidParam, KeyMaxKbps, p.MaxKbps, KeyTargetKbps, p.TargetKbps)
	}
	if p.FrameRate <= 0 {
		return fmt.Errorf("%w: %s must be > 0", ErrInvalidParam, KeyFrameRate)
	}
	if p.CpbSizeBits == 0 {
		return fmt.Errorf("%w: %s must be > 0", ErrInvalidParam, KeyCpbSizeBits)
	}
	if p.InitDelayBits > p.CpbSizeBits {
		return fmt.Errorf("%w: %s (%d) must be <= %s (%d)", ErrInvalidParam, KeyInitDelayBits, p.InitDelayBits, KeyCpbSizeBits, p.CpbSizeBits)
	}
	if p.WindowSize == 0 {
		return fmt.Errorf("%w: %s must be > 0", ErrInvalidParam, KeyWindowSize)
	}
	if p.RateControlMode != CBR && p.RateControlMode != VBR {
		return fmt.Errorf("%w: %s=%v not in {CBR,VBR}", ErrInvalidParam, KeyRateControlMode, p.RateControlMode)
	}
	return nil
}
