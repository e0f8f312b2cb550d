package stats

// HistogramResult holds the 5-bin signed difference histogram and the
// per-plane DC sums used to derive posBalance/negBalance (spec.md §4.1,
// asc.cpp ASC::ShotDetect's use of ImageDiffHistogram).
type HistogramResult struct {
	Bins  [5]uint32 // Bucketed src-ref pixel difference counts.
	SrcDC int64     // Sum of src plane pixel values.
	RefDC int64     // Sum of ref plane pixel values.
}

// histThresholds are the 4 signed bucket boundaries splitting src-ref
// differences into 5 bins.
var histThresholds = [4]int{-12, -4, 4, 12}

// Histogram computes the exact (non-approximated) 5-bin difference
// histogram between src and ref over the full 128x64 plane, plus each
// plane's DC sum.
func Histogram(src, ref *Plane) (HistogramResult, error) {
	if err := checkSubsampled(src); err != nil {
		return HistogramResult{}, err
	}
	if err := checkSubsampled(ref); err != nil {
		return HistogramResult{}, err
	}

	var r HistogramResult
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			s := int(src.At(x, y))
			v := int(ref.At(x, y))
			r.SrcDC += int64(s)
			r.RefDC += int64(v)
			r.Bins[histBucket(s-v)]++
		}
	}
	return r, nil
}

func histBucket(diff int) int {
	for i, th := range histThresholds {
		if diff < th {
			return i
		}
	}
	return len(histThresholds)
}

// PosBalance and NegBalance derive the coarse positive/negative change
// balance from a histogram, exactly as ASC::ShotDetect does:
// posBalance = (bins[3]+bins[4])>>6, negBalance = (bins[0]+bins[1])>>6.
func (r HistogramResult) PosBalance() uint32 { return (r.Bins[3] + r.Bins[4]) >> 6 }
func (r HistogramResult) NegBalance() uint32 { return (r.Bins[0] + r.Bins[1]) >> 6 }
