package stats

import "math"

// MEBlockResult is the per-block outcome of ME_simple: best match found,
// and the bookkeeping values needed to roll up into the frame-level
// temporal-correlation statistics.
type MEBlockResult struct {
	SAD uint32
	MV  MV
}

// MEGrid holds one plane's worth of per-8x8-block motion estimates plus
// the frame-level temporal-correlation values derived from them.
type MEGrid struct {
	Blocks  []MEBlockResult // Row-major, WBlocks*HBlocks entries.
	WBlocks int
	HBlocks int

	SumAbsMVX, SumAbsMVY int64

	// SumSAD is the sum of every block's best-match SAD across the frame
	// (the original engine's "valb"), the raw input TSC is derived from.
	SumSAD uint64

	Var     float64 // Pixel-domain variance of cur against its frame mean.
	JtVar   float64 // Pixel-domain covariance of cur against zero-MV ref.
	McJtVar float64 // Pixel-domain covariance of cur against motion-compensated ref.
	Tcor    float64 // 100*JtVar/Var, or fallback.
	McTcor  float64 // 100*McJtVar/Var, or fallback.
}

// neighbourPredictor averages the already-searched top-left, top and left
// MVs of block (bx, by) in grid, clamped so the predicted block stays
// inside the plane. ok is false when no neighbour is available (first
// row/column).
func neighbourPredictor(grid []MEBlockResult, wblocks, bx, by, x0, y0 int, p *Plane) (mv MV, ok bool) {
	var sumX, sumY, n int
	consider := func(nbx, nby int) {
		if nbx < 0 || nby < 0 {
			return
		}
		nb := grid[nby*wblocks+nbx]
		sumX += nb.MV.X
		sumY += nb.MV.Y
		n++
	}
	consider(bx-1, by-1) // top-left
	consider(bx, by-1)   // top
	consider(bx-1, by)   // left
	if n == 0 {
		return MV{}, false
	}
	mv = MV{X: sumX / n, Y: sumY / n}
	if !inBounds(p, x0, y0, mv.X, mv.Y) {
		return MV{}, false
	}
	return mv, true
}

// MESimple runs ME_simple for a single 8x8 block at (x0, y0): zero-MV
// check, neighbour-predictor adoption, a wide step-2 search over ±8 and a
// ±1 full-search refinement, per spec.md §4.1.
func MESimple(cur *Plane, x0, y0 int, ref *Plane, grid []MEBlockResult, wblocks, bx, by int) MEBlockResult {
	zero := blockSAD(cur, x0, y0, ref, MV{})
	best := SADResult{SAD: zero, MV: MV{}}
	if zero == 0 {
		return MEBlockResult{SAD: 0, MV: MV{}}
	}

	if pmv, ok := neighbourPredictor(grid, wblocks, bx, by, x0, y0, cur); ok {
		sad := blockSAD(cur, x0, y0, ref, pmv)
		if best.better(sad, pmv) {
			best = SADResult{SAD: sad, MV: pmv}
		}
	}

	wide := SADSearch(cur, x0, y0, ref, 8, 8)
	if best.better(wide.SAD, wide.MV) {
		best = wide
	}

	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			mv := MV{X: best.MV.X + dx, Y: best.MV.Y + dy}
			if !inBounds(cur, x0, y0, mv.X, mv.Y) {
				continue
			}
			sad := blockSAD(cur, x0, y0, ref, mv)
			if best.better(sad, mv) {
				best = SADResult{SAD: sad, MV: mv}
			}
		}
	}

	return MEBlockResult{SAD: best.SAD, MV: best.MV}
}

// MotionAnalysis runs ME_simple over every 8x8 block of the fixed
// 128x64 plane and rolls up the frame-level SumAbsMV and tcor/mcTcor
// statistics (spec.md §4.1).
func MotionAnalysis(cur, ref *Plane) (MEGrid, error) {
	if err := checkSubsampled(cur); err != nil {
		return MEGrid{}, err
	}
	if err := checkSubsampled(ref); err != nil {
		return MEGrid{}, err
	}

	wb := cur.Width / MBSize
	hb := cur.Height / MBSize
	grid := MEGrid{Blocks: make([]MEBlockResult, wb*hb), WBlocks: wb, HBlocks: hb}

	curAvg := planeMean(cur)
	refAvg := planeMean(ref)

	var varAcc, jtVarAcc, mcJtVarAcc int64
	var sumSAD uint64

	for by := 0; by < hb; by++ {
		for bx := 0; bx < wb; bx++ {
			x0, y0 := bx*MBSize, by*MBSize
			r := MESimple(cur, x0, y0, ref, grid.Blocks, wb, bx, by)
			grid.Blocks[by*wb+bx] = r

			grid.SumAbsMVX += int64(absInt(r.MV.X))
			grid.SumAbsMVY += int64(absInt(r.MV.Y))
			sumSAD += uint64(r.SAD)

			v, jt, mcjt := blockVar(cur, x0, y0, ref, r.MV, curAvg, refAvg)
			varAcc += v
			jtVarAcc += jt
			mcJtVarAcc += mcjt
		}
	}

	const totalPixels = PlaneWidth * PlaneHeight
	grid.Var = float64(varAcc) * 10 / totalPixels
	grid.JtVar = float64(jtVarAcc) * 10 / totalPixels
	grid.McJtVar = float64(mcJtVarAcc) * 10 / totalPixels
	grid.SumSAD = sumSAD

	grid.Tcor = tcorValue(grid.JtVar, grid.Var)
	grid.McTcor = tcorValue(grid.McJtVar, grid.Var)

	return grid, nil
}

// planeMean returns the plane's average pixel value truncated to an
// integer, matching the reference engine's own sumAll>>13 frame average
// (the 128x64 plane holds exactly 2^13 pixels) — the frame-level "avgval"
// every block's pixel-domain covariance is measured against.
func planeMean(p *Plane) int64 {
	var sum int64
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			sum += int64(p.At(x, y))
		}
	}
	return sum / int64(p.Width*p.Height)
}

// blockVar accumulates one 8x8 block's pixel-domain variance/covariance
// terms against the frame-level means curAvg/refAvg, per ME_VAR_8x8_Block:
// v is cur's variance at (x0,y0); jt is cur's covariance with ref at the
// same (zero-MV) position; mcjt is cur's covariance with ref at the
// block's motion-compensated position mv.
func blockVar(cur *Plane, x0, y0 int, ref *Plane, mv MV, curAvg, refAvg int64) (v, jt, mcjt int64) {
	rx0, ry0 := x0+mv.X, y0+mv.Y
	for dy := 0; dy < MBSize; dy++ {
		for dx := 0; dx < MBSize; dx++ {
			diffSrc := int64(cur.At(x0+dx, y0+dy)) - curAvg
			v += diffSrc * diffSrc

			diffRef := int64(ref.At(x0+dx, y0+dy)) - refAvg
			jt += diffSrc * diffRef

			diffMC := int64(ref.At(rx0+dx, ry0+dy)) - refAvg
			mcjt += diffSrc * diffMC
		}
	}
	return v, jt, mcjt
}

// tcorValue derives a temporal-correlation percentage from a joint
// variance and its baseline variance, falling back to fixed values when
// the baseline is degenerate (spec.md §4.1): no baseline variance at all
// reads as fully correlated (100); some joint variance with no baseline
// variance reads as a scaled, capped joint variance instead of an
// undefined ratio.
func tcorValue(jtvar, varv float64) float64 {
	if varv == 0 {
		if jtvar == 0 {
			return 100
		}
		return math.Min(1000*jtvar, 2000)
	}
	return 100 * jtvar / varv
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
