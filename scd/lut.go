package scd

// lmtSC and lmtTSC are the fixed ascending-threshold tables used to
// quantise the raw SC (Rs+Cs) and TSC statistics into indices in [0,9],
// copied verbatim from the reference content-analysis engine.
var (
	lmtSC  = [10]uint32{112, 255, 512, 1536, 4096, 6144, 10752, 16384, 23040, ^uint32(0)}
	lmtTSC = [10]uint32{24, 48, 72, 96, 128, 160, 192, 224, 256, ^uint32(0)}
)

// tableLookup returns the first index whose table entry exceeds value, or
// len(table) if none does.
func tableLookup(table [10]uint32, value uint32) uint32 {
	for i, limit := range table {
		if value < limit {
			return uint32(i)
		}
	}
	return uint32(len(table))
}

// mvTH is CorrectScdMiniGopDecision's asymmetric motion-vector threshold
// table, kept verbatim per the documented source quirk.
var mvTH = [10]int{2, 4, 4, 4, 4, 4, 4, 4, 4, 6}
