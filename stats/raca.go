package stats

import "math"

// RaCa computes the full-resolution row/column absolute-difference
// complexity measure over an arbitrarily sized plane (not the fixed
// 128x64 SCD working plane): per 4x4 block, accumulate |p-p_right| and
// |p-p_down|, and return sqrt((Rs/N)^2 + (Cs/N)^2), an I-frame complexity
// feature (spec.md §4.1).
func RaCa(p *Plane) (float64, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return 0, ErrInvalidDims
	}
	if len(p.Pix) < p.Stride*p.Height {
		return 0, ErrInvalidDims
	}

	var rs, cs uint64
	var n uint64
	for by := 0; by < p.Height; by += BlockSize {
		for bx := 0; bx < p.Width; bx += BlockSize {
			h := min(BlockSize, p.Height-by)
			w := min(BlockSize, p.Width-bx)
			for dy := 0; dy < h; dy++ {
				y := by + dy
				for dx := 0; dx < w; dx++ {
					x := bx + dx
					n++
					if x+1 < p.Width {
						rs += uint64(absDiff(p.At(x, y), p.At(x+1, y)))
					}
					if y+1 < p.Height {
						cs += uint64(absDiff(p.At(x, y), p.At(x, y+1)))
					}
				}
			}
		}
	}
	if n == 0 {
		return 0, nil
	}
	r := float64(rs) / float64(n)
	c := float64(cs) / float64(n)
	return math.Sqrt(r*r + c*c), nil
}
