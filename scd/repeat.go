package scd

// repeatFeatures carries the per-frame values the repeated-frame check
// evaluates (spec.md §4.2 step 7).
type repeatFeatures struct {
	AFD        uint32
	RsCsDiff   uint32
	TSCIndex   uint32
	NegBalance uint32
	PosBalance uint32
	DiffAFD    int32
	DiffTSC    int32
}

// isRepeatedFrame reports whether every one of the seven repeated-frame
// conditions holds.
func isRepeatedFrame(f repeatFeatures) bool {
	return f.AFD == 0 &&
		f.RsCsDiff == 0 &&
		f.TSCIndex == 0 &&
		f.NegBalance <= 3 &&
		f.PosBalance <= 20 &&
		(f.DiffAFD <= 0 && f.DiffTSC <= 0) &&
		f.DiffAFD <= f.DiffTSC
}
