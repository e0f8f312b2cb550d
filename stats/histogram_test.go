package stats

import "testing"

func TestHistogramIdenticalPlanesAllMidBin(t *testing.T) {
	p := rampPlane(PlaneWidth, PlaneHeight)
	r, err := Histogram(p, p)
	if err != nil {
		t.Fatalf("Histogram: %v", err)
	}
	if r.Bins[2] != uint32(PlaneWidth*PlaneHeight) {
		t.Errorf("identical planes: bins = %v, want all mass in bin 2", r.Bins)
	}
	if r.SrcDC != r.RefDC {
		t.Errorf("identical planes: SrcDC=%d != RefDC=%d", r.SrcDC, r.RefDC)
	}
}

func TestHistogramBucketBoundaries(t *testing.T) {
	tests := []struct {
		diff int
		bin  int
	}{
		{-100, 0},
		{-13, 0},
		{-12, 1},
		{-5, 1},
		{-4, 2},
		{0, 2},
		{3, 2},
		{4, 3},
		{11, 3},
		{12, 4},
		{100, 4},
	}
	for _, tt := range tests {
		if got := histBucket(tt.diff); got != tt.bin {
			t.Errorf("histBucket(%d) = %d, want %d", tt.diff, got, tt.bin)
		}
	}
}

func TestBalanceDerivation(t *testing.T) {
	r := HistogramResult{Bins: [5]uint32{640, 640, 0, 640, 640}}
	if got := r.NegBalance(); got != 20 {
		t.Errorf("NegBalance = %d, want 20", got)
	}
	if got := r.PosBalance(); got != 20 {
		t.Errorf("PosBalance = %d, want 20", got)
	}
}
