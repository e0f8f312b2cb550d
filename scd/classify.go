package scd

// shotFeatures carries the diff-frame feature set a shot-change decision
// is scored from, mirroring the inputs to the reference classifier
// (diffMVdiffVal, RsCsDiff, diffTSC, TSCindex, SCindex, posBalance,
// negBalance, diffAFD).
type shotFeatures struct {
	DiffMVdiffVal int32
	RsCsDiff      uint32
	DiffTSC       int32
	TSCIndex      uint32
	SCIndex       uint32
	PosBalance    uint32
	NegBalance    uint32
	DiffAFD       int32
}

// detectShotChange scores the diff-frame feature set into {0,1}. The
// reference engine evaluates a classifier trained offline over these same
// features and output domain; this is a deterministic weighted-threshold
// substitute producing the same {0,1} domain rather than a byte-exact
// port of that classifier.
func detectShotChange(f shotFeatures) bool {
	var score int32
	if f.RsCsDiff > 1<<16 {
		score += 3
	}
	if f.DiffMVdiffVal > 512 {
		score++
	}
	if f.DiffTSC > 0 {
		score++
	}
	if f.TSCIndex >= 6 {
		score++
	}
	if f.SCIndex >= 6 {
		score++
	}
	if f.PosBalance > 20 {
		score++
	}
	if f.NegBalance > 20 {
		score++
	}
	if f.DiffAFD > 0 {
		score++
	}
	return score >= 4
}

// agopFeatures carries the per-frame features the mini-GOP-size hint is
// scored from.
type agopFeatures struct {
	TSCIndex uint32
	SCIndex  uint32
	McTcor   int16
	MVSize   uint32
}

// agopSizes is the domain {1,2,4,8,16} an AGOP hint may take.
var agopSizes = [5]uint32{1, 2, 4, 8, 16}

// selectGopSize scores the feature set into one of {1,2,4,8,16}, a
// deterministic weighted-threshold substitute for the codec-dependent
// trained classifier the reference engine uses, over the same feature
// and output domain.
func selectGopSize(f agopFeatures) uint32 {
	activity := f.TSCIndex + f.SCIndex
	if f.McTcor > 0 {
		activity += uint32(f.McTcor) / 200
	}
	if f.MVSize > 1500 {
		activity += 4
	} else if f.MVSize > 400 {
		activity += 2
	}

	switch {
	case activity >= 16:
		return agopSizes[0]
	case activity >= 10:
		return agopSizes[1]
	case activity >= 6:
		return agopSizes[2]
	case activity >= 3:
		return agopSizes[3]
	default:
		return agopSizes[4]
	}
}

// hintLTROpOn is Hint_LTR_op_on: content is LTR-friendly when
// TSC^2*12 < max(SC,64).
func hintLTROpOn(sc, tsc uint32) bool {
	mx := sc
	if mx < 64 {
		mx = 64
	}
	return tsc*tsc*12 < mx
}

// correctScdMiniGopDecision is CorrectScdMiniGopDecision: derives a
// 1-or-2 mini-GOP size correction from quantised SC/MV, using the
// asymmetric MV_TH table verbatim.
func correctScdMiniGopDecision(sc, mv int32) uint32 {
	qsc := int32(0)
	if sc < 2048 {
		qsc = sc >> 9
	} else {
		qsc = 4 + ((sc - 2048) >> 10)
	}
	qsc = clampI32(qsc, 0, 9)

	var qmv int32
	switch {
	case mv < 256:
		qmv = 0
	case mv < 512:
		qmv = 1
	case mv < 1024:
		qmv = 2
	default:
		qmv = 3 + ((mv - 1024) >> 10)
		qmv = clampI32(qmv, 0, 9)
	}

	if int(qmv) < mvTH[qsc] {
		return 2
	}
	return 1
}

func clampI32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
