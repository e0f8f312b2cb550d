// Package aenc implements the adaptive encode controller (component C):
// an ordered single-threaded pipeline that ingests SCD-analyzed frames,
// makes IDR/I decisions, assembles mini-GOPs, assigns pyramid layers,
// manages the DPB with LTR and key-reference frames, and emits per-frame
// QP deltas.
package aenc

import (
	"github.com/ausocean/aec/aec"
	"github.com/ausocean/aec/scd"
)

// InternalFrame is the controller's working copy of a frame as it moves
// through frame_buffer, the DPB and output_buffer (spec.md §3).
type InternalFrame struct {
	scd.FrameAnalysis

	Type         aec.FrameType
	PyramidLayer uint32

	MiniGopSize uint32
	MiniGopType uint32
	MiniGopIdx  uint32

	PPyramidLayer uint32
	PPyramidIdx   uint32
	PrevType      aec.FrameType

	LTR               aec.LtrKind
	UseLTRAsReference bool
	KeepInDPB         bool

	RemoveFromDPB   []aec.POC
	RefList         []aec.POC
	LongTermRefList []aec.POC

	DeltaQP                  int32
	ClassAPQ                 uint32
	QPDeltaExplicitModulation int8
	FeaturesAPQ              [4]uint32

	// Late feedback, propagated by UpdateFrame.
	EncodedBits uint32
	QPY         int32
	QPSet       bool
}

// ExternalFrame is the per-frame decision emitted to the caller
// (spec.md §6).
type ExternalFrame struct {
	POC             aec.POC
	QPY             int32
	SceneChanged    bool
	RepeatedFrame   bool
	TSC, SC         uint32
	LTR             bool
	MiniGopSize     uint32
	PyramidLayer    uint32
	Type            aec.FrameType
	DeltaQP         int32
	ClassAPQ        uint32
	QPDeltaExplicitModulation int8
	FeaturesAPQ     [4]uint32
	KeepInDPB       bool
	RemoveFromDPB   []aec.POC
	RefList         []aec.POC
	LongTermRefList []aec.POC
	PersistenceMap  scd.PersistenceMap
}

// maxListLen bounds the ref-list style fields per spec.md §6.
const maxListLen = 32

// ToExternal converts an InternalFrame's decision into the frame emitted
// to the caller; list fields are truncated to maxListLen, mirroring the
// reference engine's overflow-tolerant ExternalFrame conversion.
func (f *InternalFrame) ToExternal() ExternalFrame {
	return ExternalFrame{
		POC:                       f.POC,
		QPY:                       f.QPY,
		SceneChanged:              f.SceneChanged,
		RepeatedFrame:             f.RepeatedFrame,
		TSC:                       f.TSC,
		SC:                        f.SC,
		LTR:                       f.LTR != aec.LtrNone,
		MiniGopSize:               f.MiniGopSize,
		PyramidLayer:              f.PyramidLayer,
		Type:                      f.Type,
		DeltaQP:                   f.DeltaQP,
		ClassAPQ:                  f.ClassAPQ,
		QPDeltaExplicitModulation: f.QPDeltaExplicitModulation,
		FeaturesAPQ:               f.FeaturesAPQ,
		KeepInDPB:                 f.KeepInDPB,
		RemoveFromDPB:             truncatePOCs(f.RemoveFromDPB),
		RefList:                   truncatePOCs(f.RefList),
		LongTermRefList:           truncatePOCs(f.LongTermRefList),
		PersistenceMap:            f.Persistence,
	}
}

func truncatePOCs(pocs []aec.POC) []aec.POC {
	if len(pocs) <= maxListLen {
		return pocs
	}
	return pocs[:maxListLen]
}
