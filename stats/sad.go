package stats

// SADResult is the outcome of an 8x8 block SAD search: the best match
// found and its integer-pel displacement relative to the block origin.
type SADResult struct {
	SAD uint32
	MV  MV
}

// better reports whether candidate (sad, mv) should replace cur under the
// spec's tie-break rule: strictly lower SAD wins; on equal SAD, lower
// squared MV magnitude wins.
func (cur SADResult) better(sad uint32, mv MV) bool {
	if sad != cur.SAD {
		return sad < cur.SAD
	}
	return mv.SqMag() < cur.MV.SqMag()
}

// blockSAD computes the sum of absolute differences between the 8x8 block
// of cur at (x0, y0) and the 8x8 block of ref at (x0+mv.X, y0+mv.Y). The
// caller guarantees the reference block stays within ref's bounds.
func blockSAD(cur *Plane, x0, y0 int, ref *Plane, mv MV) uint32 {
	var sad uint32
	rx0, ry0 := x0+mv.X, y0+mv.Y
	for dy := 0; dy < MBSize; dy++ {
		for dx := 0; dx < MBSize; dx++ {
			sad += uint32(absDiff(cur.At(x0+dx, y0+dy), ref.At(rx0+dx, ry0+dy)))
		}
	}
	return sad
}

// SADSearch performs an 8x8 block SAD search over the integer-pel window
// [-xr,+xr]x[-yr,+yr] around the block at (x0, y0) in cur, stepping 2
// pixels in both directions (quarter-density FHS), per spec.md §4.1.
func SADSearch(cur *Plane, x0, y0 int, ref *Plane, xr, yr int) SADResult {
	best := SADResult{SAD: blockSAD(cur, x0, y0, ref, MV{}), MV: MV{}}

	for dy := -yr; dy <= yr; dy += 2 {
		for dx := -xr; dx <= xr; dx += 2 {
			if dx == 0 && dy == 0 {
				continue
			}
			if !inBounds(cur, x0, y0, dx, dy) {
				continue
			}
			mv := MV{X: dx, Y: dy}
			sad := blockSAD(cur, x0, y0, ref, mv)
			if best.better(sad, mv) {
				best = SADResult{SAD: sad, MV: mv}
			}
		}
	}
	return best
}

// inBounds reports whether the MBSize block at (x0+dx, y0+dy) lies fully
// within ref's plane.
func inBounds(p *Plane, x0, y0, dx, dy int) bool {
	x, y := x0+dx, y0+dy
	return x >= 0 && y >= 0 && x+MBSize <= p.Width && y+MBSize <= p.Height
}
