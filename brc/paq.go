package brc

import "github.com/ausocean/aec/scd"

// paqBlockWidth/Height is the 8x16 grid the persistence map is defined
// over (spec.md §4.4.4); QpMap upsamples this nearest-neighbour to the
// encoder's actual block grid.
const (
	paqBlockWidth  = 16
	paqBlockHeight = 8
)

// depthByQP buckets the frame QP into a per-block delta-QP ceiling: a
// coarser (higher-QP) frame can absorb a bigger persistence-driven cut
// before the block looks undercooked.
func depthByQP(frameQP int32) int32 {
	switch {
	case frameQP <= 15:
		return 2
	case frameQP <= 20:
		return 3
	case frameQP <= 25:
		return 4
	case frameQP <= 30:
		return 5
	default:
		return 6
	}
}

// QpMap is a per-block absolute QP map, upsampled nearest-neighbour from
// the 8x16 persistence grid to dstWidth x dstHeight blocks.
type QpMap struct {
	Width, Height int
	QP            []int32
}

// FillQpMap builds a per-block QP map from a persistence snapshot and the
// frame-level seed QP, subtracting a frame-level bias so the map's average
// does not shift the overall rate.
func FillQpMap(p scd.PersistenceMap, frameQP int32, dstWidth, dstHeight int) QpMap {
	depth := depthByQP(frameQP)

	delta := make([]int32, paqBlockWidth*paqBlockHeight)
	var sum int32
	for i, persist := range p {
		d := -minI32(depth, (int32(persist)+1)/3)
		delta[i] = d
		sum += d
	}
	bias := sum / int32(len(delta))

	out := QpMap{Width: dstWidth, Height: dstHeight, QP: make([]int32, dstWidth*dstHeight)}
	for y := 0; y < dstHeight; y++ {
		sy := y * paqBlockHeight / dstHeight
		for x := 0; x < dstWidth; x++ {
			sx := x * paqBlockWidth / dstWidth
			d := delta[sy*paqBlockWidth+sx] - bias
			out.QP[y*dstWidth+x] = clampQP32(frameQP+d, qpMin, qpMax)
		}
	}
	return out
}

// HasActivity reports whether a persistence snapshot carries any non-zero
// entry, the gate the controller uses before bothering to build a map.
func HasActivity(p scd.PersistenceMap) bool {
	for _, v := range p {
		if v != 0 {
			return true
		}
	}
	return false
}
