// Package scd implements the scene-change / content-analysis engine
// (component B): sub-sampled motion estimation, Rs/Cs spatial statistics,
// histogram-based change detection, the LTR-friendliness hint and the
// adaptive-GOP-size hint.
package scd

import "github.com/ausocean/aec/aec"

// PersistenceMap is the per-8x8-block "how many consecutive frames this
// block has been stable" counter, saturating at 255 and reset to zero on
// scene change.
type PersistenceMap [128]byte

// FrameAnalysis is the per-frame record SCD produces (spec.md §3 "Frame
// Analysis Record").
type FrameAnalysis struct {
	POC           aec.POC
	SceneChanged  bool
	RepeatedFrame bool

	TSCIndex uint32
	SCIndex  uint32

	SC, TSC       uint32
	MVSize        uint32
	Contrast      uint32
	AbsMVH, AbsMVV uint32

	MV0Avg            float32
	RecentHighMVCount int32
	McTcor            int16

	LtrHint  bool
	AgopHint uint32

	Persistence PersistenceMap
}
