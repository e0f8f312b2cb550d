// Package config defines the adaptive encode controller's parameter set
// and validation, in the style of revid/config: named Key constants and
// a Validate entry point, adapted here to the numeric GOP/codec knobs
// the controller needs rather than revid's camera/codec knobs.
package config

import (
	"fmt"

	"github.com/ausocean/aec/aec"
)

// Config map keys, matching the Params field they validate.
const (
	KeyFrameWidth     = "FrameWidth"
	KeyFrameHeight    = "FrameHeight"
	KeySrcFrameWidth  = "SrcFrameWidth"
	KeySrcFrameHeight = "SrcFrameHeight"
	KeyPitch          = "Pitch"
	KeyColorFormat    = "ColorFormat"
	KeyStrictIFrame   = "StrictIFrame"
	KeyGopPicSize     = "GopPicSize"
	KeyMinGopSize     = "MinGopSize"
	KeyMaxGopSize     = "MaxGopSize"
	KeyMaxIDRDist     = "MaxIDRDist"
	KeyMaxMiniGopSize = "MaxMiniGopSize"
	KeyCodecID        = "CodecId"
	KeyNumRefP        = "NumRefP"
	KeyAGOP           = "AGOP"
	KeyALTR           = "ALTR"
	KeyAREF           = "AREF"
	KeyAPQ            = "APQ"
)

// Params is the adaptive encode controller's configuration (spec.md §6
// "AEncParams").
type Params struct {
	FrameWidth, FrameHeight       uint32
	SrcFrameWidth, SrcFrameHeight uint32
	Pitch                         uint32
	ColorFormat                   aec.ColorFormat

	StrictIFrame bool
	GopPicSize   uint32
	MinGopSize   uint32
	MaxGopSize   uint32
	MaxIDRDist   uint32

	MaxMiniGopSize uint32
	CodecID        aec.Codec
	NumRefP        uint32

	AGOP, ALTR, AREF, APQ bool
}

// validMiniGopSizes is the legal domain for MaxMiniGopSize.
var validMiniGopSizes = map[uint32]bool{1: true, 2: true, 4: true, 8: true, 16: true}

// Validate checks the parameter set against every init-time invariant
// from spec.md §4.3.1, returning the first violation found wrapped in
// ErrInvalidParam.
func (p *Params) Validate() error {
	if !validMiniGopSizes[p.MaxMiniGopSize] {
		return fmt.Errorf("%w: %s=%d not in {1,2,4,8,16}", ErrInvalidParam, KeyMaxMiniGopSize, p.MaxMiniGopSize)
	}
	if !(p.MinGopSize < p.MaxGopSize && p.MaxGopSize <= p.MaxIDRDist) {
		return fmt.Errorf("%w: require %s < %s <= %s (got %d, %d, %d)", ErrInvalidParam, KeyMinGopSize, KeyMaxGopSize, KeyMaxIDRDist, p.MinGopSize, p.MaxGopSize, p.MaxIDRDist)
	}
	if p.MaxGopSize == 0 || p.MaxIDRDist%p.MaxGopSize != 0 {
		return fmt.Errorf("%w: %s=%d must be a multiple of %s=%d", ErrInvalidParam, KeyMaxIDRDist, p.MaxIDRDist, KeyMaxGopSize, p.MaxGopSize)
	}
	if p.MinGopSize > p.MaxGopSize-p.MaxMiniGopSize {
		return fmt.Errorf("%w: %s=%d must be <= %s-%s (%d)", ErrInvalidParam, KeyMinGopSize, p.MinGopSize, KeyMaxGopSize, KeyMaxMiniGopSize, p.MaxGopSize-p.MaxMiniGopSize)
	}
	if p.ColorFormat != aec.NV12 && p.ColorFormat != aec.RGB4 {
		return fmt.Errorf("%w: %s=%v not in {NV12,RGB4}", ErrInvalidParam, KeyColorFormat, p.ColorFormat)
	}
	return nil
}
