package brc

import "math"

// qstepTable is the quantiser-step lookup the rate controller uses to move
// between QP and Qstep domains, copied verbatim from the reference encoder.
var qstepTable = [88]float64{
	0.630, 0.707, 0.794, 0.891, 1.000, 1.122, 1.260, 1.414, 1.587, 1.782, 2.000, 2.245, 2.520,
	2.828, 3.175, 3.564, 4.000, 4.490, 5.040, 5.657, 6.350, 7.127, 8.000, 8.980, 10.079, 11.314,
	12.699, 14.254, 16.000, 17.959, 20.159, 22.627, 25.398, 28.509, 32.000, 35.919, 40.317, 45.255, 50.797,
	57.018, 64.000, 71.838, 80.635, 90.510, 101.594, 114.035, 128.000, 143.675, 161.270, 181.019, 203.187, 228.070,
	256.000, 287.350, 322.540, 362.039, 406.375, 456.140, 512.000, 574.701, 645.080, 724.077, 812.749, 912.280,
	1024.000, 1149.401, 1290.159, 1448.155, 1625.499, 1824.561, 2048.000, 2298.802, 2580.318, 2896.309, 3250.997, 3649.121,
	4096.000, 4597.605, 5160.637, 5792.619, 6501.995, 7298.242, 8192.000, 9195.209, 10321.273, 11585.238, 13003.989, 14596.485,
}

func qstep2QPFloor(qstep float64, qpOffset int32) int32 {
	hi := 51 + int(qpOffset)
	if hi > len(qstepTable) {
		hi = len(qstepTable)
	}
	idx := hi
	for i := 0; i < hi; i++ {
		if qstepTable[i] > qstep {
			idx = i
			break
		}
	}
	if idx > 0 {
		return int32(idx - 1)
	}
	return 0
}

func qstep2QP(qstep float64, qpOffset int32) int32 {
	qp := qstep2QPFloor(qstep, qpOffset)
	if int(qp) >= len(qstepTable)-1 {
		return 0
	}
	if int(qp) == 51+int(qpOffset) || qstep < (qstepTable[qp]+qstepTable[qp+1])/2 {
		return qp
	}
	return qp + 1
}

func qp2Qstep(qp int32, qpOffset int32) float64 {
	idx := 51 + int(qpOffset)
	if int(qp) < idx {
		idx = int(qp)
	}
	if idx < 0 {
		idx = 0
	}
	return qstepTable[idx]
}

// requantize is the inverse Q-step/size power law used to propose a new QP
// once an encoded frame's size has violated an HRD or max-size bound.
func requantize(totalFrameBits, targetFrameBits float64, minQP, maxQP, qp, qpOffset int32, pow float64, strict, limited bool) int32 {
	qstepCur := qp2Qstep(qp, qpOffset)
	qstepNew := qstepCur * math.Pow(totalFrameBits/targetFrameBits, pow)
	qpNew := qstep2QP(qstepNew, qpOffset)

	if totalFrameBits < targetFrameBits {
		if qp <= minQP {
			return qp
		}
		if limited {
			qpNew = maxI32(qpNew, (minQP+qp+1)>>1)
		}
		if strict {
			qpNew = minI32(qpNew, qp-1)
		}
	} else {
		if qp >= maxQP {
			return qp
		}
		if limited {
			qpNew = minI32(qpNew, (maxQP+qp+1)>>1)
		}
		if strict {
			qpNew = maxI32(qpNew, qp+1)
		}
	}
	return clampQP32(qpNew, minQP, maxQP)
}

func clampQP32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minI32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func maxI32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
