package stats

// RsCsResult holds per-block vertical/horizontal gradient energies and the
// derived combined energy and contrast measure (spec.md §4.1).
type RsCsResult struct {
	Rs, Cs, RsCs []uint32 // Per-block, row-major, wblocks*hblocks entries.
	WBlocks      int
	HBlocks      int
	RsVal, CsVal uint32 // Frame-level sums.
	Contrast     float64
}

// RsCs computes the 4x4-block row/column gradient energies over the fixed
// 128x64 plane. skipFirst selects the "bound" variant that skips the first
// block row/column, matching the reference engine's RsCsCalc_bound vs RsCsCalc_4x4
// split (asc.cpp ASC::RsCsCalc).
func RsCs(p *Plane, skipFirst bool) (RsCsResult, error) {
	if err := checkSubsampled(p); err != nil {
		return RsCsResult{}, err
	}
	rs, cs, wb, hb := active.rsCs4x4(p, skipFirst)

	rscs := make([]uint32, len(rs))
	var rsSum, csSum uint32
	for i := range rs {
		rscs[i] = (rs[i] + cs[i]) >> 1
		rsSum += rs[i]
		csSum += cs[i]
	}

	return RsCsResult{
		Rs: rs, Cs: cs, RsCs: rscs,
		WBlocks: wb, HBlocks: hb,
		RsVal: rsSum, CsVal: csSum,
		Contrast: quadrantContrast(rscs, wb, hb),
	}, nil
}

func rsCs4x4Scalar(p *Plane, skipFirst bool) (rs, cs []uint32, wblocks, hblocks int) {
	wblocks = p.Width / BlockSize
	hblocks = p.Height / BlockSize
	rs = make([]uint32, wblocks*hblocks)
	cs = make([]uint32, wblocks*hblocks)

	startY, startX := 0, 0
	if skipFirst {
		startY, startX = 1, 1
	}

	for by := startY; by < hblocks; by++ {
		for bx := startX; bx < wblocks; bx++ {
			var rAcc, cAcc uint32
			for dy := 0; dy < BlockSize; dy++ {
				y := by*BlockSize + dy
				for dx := 0; dx < BlockSize; dx++ {
					x := bx*BlockSize + dx
					if y > 0 {
						dv := absDiff(p.At(x, y), p.At(x, y-1))
						g := uint32(dv >> 2)
						rAcc += g * g
					}
					if x > 0 {
						dh := absDiff(p.At(x, y), p.At(x-1, y))
						g := uint32(dh >> 2)
						cAcc += g * g
					}
				}
			}
			rs[by*wblocks+bx] = rAcc
			cs[by*wblocks+bx] = cAcc
		}
	}
	return rs, cs, wblocks, hblocks
}

// quadrantContrast computes (max-min)/(max+min) over the four quadrant
// sums of the per-block RsCs map, the 4-quadrant contrast measure from
// spec.md §4.1.
func quadrantContrast(rscs []uint32, wb, hb int) float64 {
	if wb < 2 || hb < 2 {
		return 0
	}
	halfW, halfH := wb/2, hb/2
	var q [4]uint64
	for by := 0; by < hb; by++ {
		for bx := 0; bx < wb; bx++ {
			idx := 0
			if bx >= halfW {
				idx |= 1
			}
			if by >= halfH {
				idx |= 2
			}
			q[idx] += uint64(rscs[by*wb+bx])
		}
	}
	max, min := q[0], q[0]
	for _, v := range q[1:] {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	if max+min == 0 {
		return 0
	}
	return float64(max-min) / float64(max+min)
}

// RsCsDiff computes the absolute difference between two RsCs maps (current
// vs reference), summed over all blocks, used as a scene-change feature
// (ASC::ShotDetect's RsCsCalc_diff).
func RsCsDiff(curRs, curCs, refRs, refCs []uint32) (rsDiff, csDiff uint32) {
	n := len(curRs)
	for _, l := range []int{len(curCs), len(refRs), len(refCs)} {
		if l < n {
			n = l
		}
	}
	for i := 0; i < n; i++ {
		rsDiff += absDiffU32(curRs[i], refRs[i])
		csDiff += absDiffU32(curCs[i], refCs[i])
	}
	return rsDiff, csDiff
}

func absDiff(a, b byte) byte {
	if a > b {
		return a - b
	}
	return b - a
}

func absDiffU32(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
