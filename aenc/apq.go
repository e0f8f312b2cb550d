package aenc

import "github.com/ausocean/aec/aec"

// apqLookupAVC is APQ_Lookup_AVC[qsc][qcon][qmv][qtsc], copied verbatim.
var apqLookupAVC = [4][3][3][6]uint16{
	{{{3, 3, 3, 3, 3, 2}, {1, 1, 2, 2, 2, 1}, {3, 2, 2, 2, 2, 1}},
		{{2, 3, 3, 3, 3, 2}, {1, 1, 2, 2, 2, 2}, {3, 2, 2, 2, 2, 1}},
		{{2, 2, 3, 3, 2, 2}, {1, 1, 2, 2, 2, 2}, {2, 1, 2, 2, 2, 2}}},
	{{{2, 2, 2, 3, 3, 2}, {2, 2, 2, 1, 1, 1}, {2, 2, 1, 1, 1, 1}},
		{{2, 2, 2, 2, 1, 1}, {2, 2, 2, 2, 1, 1}, {3, 2, 2, 1, 1, 1}},
		{{2, 2, 2, 2, 2, 2}, {3, 2, 2, 1, 1, 1}, {2, 2, 2, 2, 1, 1}}},
	{{{2, 2, 2, 2, 2, 2}, {2, 2, 2, 2, 2, 2}, {2, 2, 2, 2, 1, 1}},
		{{2, 2, 2, 2, 2, 2}, {2, 2, 2, 2, 2, 2}, {2, 2, 2, 2, 2, 1}},
		{{2, 2, 2, 2, 2, 2}, {2, 2, 2, 2, 2, 2}, {1, 1, 2, 2, 1, 1}}},
	{{{3, 2, 2, 2, 2, 2}, {3, 2, 2, 2, 2, 2}, {2, 2, 2, 2, 2, 1}},
		{{2, 3, 3, 3, 2, 2}, {2, 2, 2, 2, 2, 2}, {2, 2, 2, 2, 2, 1}},
		{{2, 2, 2, 2, 2, 2}, {2, 2, 2, 2, 2, 2}, {2, 2, 2, 2, 2, 2}}},
}

// apqLookupHEVC is APQ_Lookup_HEVC[qsc][qcon][qmv][qtsc], copied verbatim.
var apqLookupHEVC = [4][3][3][6]uint16{
	{{{3, 3, 3, 3, 3, 2}, {1, 1, 0, 0, 1, 1}, {3, 2, 2, 2, 2, 2}},
		{{3, 3, 3, 3, 3, 2}, {3, 0, 0, 0, 1, 2}, {1, 1, 2, 2, 2, 2}},
		{{0, 0, 3, 3, 2, 2}, {1, 1, 0, 0, 1, 1}, {0, 1, 1, 1, 1, 1}}},
	{{{2, 2, 2, 3, 3, 2}, {2, 2, 1, 2, 2, 2}, {2, 2, 1, 2, 2, 2}},
		{{3, 2, 2, 2, 2, 1}, {3, 3, 1, 1, 2, 2}, {1, 1, 1, 1, 2, 2}},
		{{3, 3, 2, 2, 2, 1}, {3, 3, 1, 1, 2, 2}, {1, 1, 1, 1, 2, 2}}},
	{{{2, 2, 2, 2, 2, 2}, {2, 2, 2, 2, 2, 2}, {0, 0, 0, 2, 2, 2}},
		{{2, 2, 2, 2, 2, 1}, {2, 2, 2, 2, 2, 2}, {2, 2, 2, 2, 2, 2}},
		{{2, 1, 1, 2, 2, 2}, {2, 2, 2, 2, 2, 2}, {1, 2, 2, 2, 2, 2}}},
	{{{3, 2, 2, 2, 2, 2}, {3, 2, 2, 2, 2, 2}, {2, 2, 0, 0, 0, 0}},
		{{2, 3, 3, 3, 2, 2}, {2, 2, 2, 2, 2, 2}, {2, 2, 2, 2, 2, 2}},
		{{2, 2, 2, 2, 2, 2}, {2, 2, 2, 2, 2, 2}, {2, 2, 2, 2, 2, 2}}},
}

// movingAverage implements moving_average: avg += (val-avg)/N, returning
// val unchanged while the average is not yet seeded.
func movingAverage(val, avg int32, n int32) int32 {
	if avg <= 0 || n == 0 {
		return val
	}
	return avg + (val-avg)/n
}

func quantSC(val int32) int32 {
	if val < 3500 {
		if val < 2000 {
			return 0
		}
		return 1
	}
	if val < 7500 {
		return 2
	}
	return 3
}

func quantContrast(val int32) int32 {
	switch {
	case val < 35:
		return 0
	case val < 65:
		return 1
	default:
		return 2
	}
}

func quantTSC(val int32) int32 {
	val >>= 10
	if val < 300 {
		switch {
		case val < 60:
			return 0
		case val < 200:
			return 1
		default:
			return 2
		}
	}
	switch {
	case val < 500:
		return 3
	case val < 900:
		return 4
	default:
		return 5
	}
}

func quantMV(val int32) int32 {
	switch {
	case val < 400:
		return 0
	case val < 1500:
		return 1
	default:
		return 2
	}
}

func clampI(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// apqState carries the running 8-tap moving averages APQ is computed
// from.
type apqState struct {
	avgSC, avgTSC, avgMV int32
}

const apqMovingAverageTaps = 8

// update folds one frame's raw statistics into the moving averages.
func (s *apqState) update(sc, tsc, mv uint32) {
	s.avgSC = movingAverage(int32(sc), s.avgSC, apqMovingAverageTaps)
	s.avgTSC = movingAverage(int32(tsc), s.avgTSC, apqMovingAverageTaps)
	s.avgMV = movingAverage(int32(mv), s.avgMV, apqMovingAverageTaps)
}

// APQPredict is apq_predict: a direct table lookup over the quantised
// (sc, tsc, mv, contrast) feature tuple, returning the content class in
// [0,3] (spec.md §4.3.1, §8 S6). pyrLayer and baseQp are accepted to
// match the public signature but do not affect the table index.
func APQPredict(codec aec.Codec, sc, tsc, mvSize, contrast uint32, pyrLayer uint32, baseQp int32) int8 {
	qsc := quantSC(int32(sc))
	qtsc := quantTSC(int32(tsc))
	qmv := quantMV(int32(mvSize))
	qcon := quantContrast(int32(contrast))

	var table *[4][3][3][6]uint16
	if codec == aec.HEVC {
		table = &apqLookupHEVC
	} else {
		table = &apqLookupAVC
	}
	return int8(table[qsc][qcon][qmv][qtsc])
}

// computeStatApq folds the frame's raw statistics into the running
// averages and sets ClassAPQ from the table lookup.
func computeStatApq(codec aec.Codec, s *apqState, f *InternalFrame) {
	s.update(f.SC, f.TSC, f.MVSize)
	qsc := quantSC(s.avgSC)
	qtsc := quantTSC(s.avgTSC)
	qmv := quantMV(s.avgMV)
	qcon := quantContrast(int32(f.Contrast))
	f.FeaturesAPQ = [4]uint32{uint32(qsc), uint32(qcon), uint32(qmv), uint32(qtsc)}

	var table *[4][3][3][6]uint16
	if codec == aec.HEVC {
		table = &apqLookupHEVC
	} else {
		table = &apqLookupAVC
	}
	f.ClassAPQ = uint32(clampI(int32(table[clampI(qsc, 0, 3)][clampI(qcon, 0, 2)][clampI(qmv, 0, 2)][clampI(qtsc, 0, 5)]), 0, 3))
}
