package aenc

import (
	"testing"

	"github.com/ausocean/aec/aec"
)

func TestAPQPredictTableLookup(t *testing.T) {
	// sc=1800 -> qsc=0; contrast=50 -> qcon=1; mv=800 -> qmv=1;
	// tsc=300000 -> (300000>>10)=292 -> qtsc=2 (see quantTSC).
	got := APQPredict(aec.HEVC, 1800, 300000, 800, 50, 2, 28)
	want := int8(apqLookupHEVC[0][1][1][2])
	if got != want {
		t.Fatalf("APQPredict() = %d, want %d", got, want)
	}
}

func TestAPQPredictAVCvsHEVCDiffer(t *testing.T) {
	avc := APQPredict(aec.AVC, 1800, 300000, 800, 50, 2, 28)
	hevc := APQPredict(aec.HEVC, 1800, 300000, 800, 50, 2, 28)
	if avc == hevc && apqLookupAVC[0][1][1][2] != apqLookupHEVC[0][1][1][2] {
		t.Fatalf("expected distinct codec tables to diverge at this cell")
	}
}

func TestQuantThresholds(t *testing.T) {
	cases := []struct {
		name string
		fn   func(int32) int32
		val  int32
		want int32
	}{
		{"sc-low", quantSC, 1999, 0},
		{"sc-mid", quantSC, 2000, 1},
		{"sc-high", quantSC, 7500, 3},
		{"contrast-low", quantContrast, 34, 0},
		{"contrast-mid", quantContrast, 35, 1},
		{"contrast-high", quantContrast, 65, 2},
		{"mv-low", quantMV, 399, 0},
		{"mv-mid", quantMV, 400, 1},
		{"mv-high", quantMV, 1500, 2},
	}
	for _, c := range cases {
		if got := c.fn(c.val); got != c.want {
			t.Errorf("%s: got %d, want %d", c.name, got, c.want)
		}
	}
}

func TestMovingAverageSeeding(t *testing.T) {
	if got := movingAverage(100, 0, 8); got != 100 {
		t.Fatalf("unseeded average should pass through val, got %d", got)
	}
	if got := movingAverage(108, 100, 8); got != 101 {
		t.Fatalf("seeded average step: got %d, want 101", got)
	}
}

func TestComputeStatApqPopulatesFeatures(t *testing.T) {
	s := &apqState{}
	f := &InternalFrame{}
	f.SC, f.TSC, f.MVSize, f.Contrast = 1800, 300000, 800, 50
	computeStatApq(aec.HEVC, s, f)
	if f.ClassAPQ > 3 {
		t.Fatalf("ClassAPQ out of range: %d", f.ClassAPQ)
	}
	if f.FeaturesAPQ[0] != 0 {
		t.Fatalf("expected qsc=0 on first frame (avg seeded from val), got %d", f.FeaturesAPQ[0])
	}
}
