package stats

import "testing"

func flatPlane(w, h int, val byte) *Plane {
	pix := make([]byte, w*h)
	for i := range pix {
		pix[i] = val
	}
	return &Plane{Pix: pix, Width: w, Height: h, Stride: w}
}

func rampPlane(w, h int) *Plane {
	pix := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pix[y*w+x] = byte((x + y) % 256)
		}
	}
	return &Plane{Pix: pix, Width: w, Height: h, Stride: w}
}

func TestRsCsFlatPlaneIsZero(t *testing.T) {
	p := flatPlane(PlaneWidth, PlaneHeight, 128)
	res, err := RsCs(p, false)
	if err != nil {
		t.Fatalf("RsCs: %v", err)
	}
	if res.RsVal != 0 || res.CsVal != 0 {
		t.Errorf("flat plane: RsVal=%d CsVal=%d, want 0,0", res.RsVal, res.CsVal)
	}
	if res.Contrast != 0 {
		t.Errorf("flat plane contrast = %v, want 0", res.Contrast)
	}
}

func TestRsCsRejectsBadDims(t *testing.T) {
	p := flatPlane(64, 32, 0)
	if _, err := RsCs(p, false); err == nil {
		t.Fatal("RsCs with wrong dims: want error, got nil")
	}
}

func TestRsCsSkipFirstZeroesFirstRowCol(t *testing.T) {
	p := rampPlane(PlaneWidth, PlaneHeight)
	res, err := RsCs(p, true)
	if err != nil {
		t.Fatalf("RsCs: %v", err)
	}
	for bx := 0; bx < res.WBlocks; bx++ {
		if res.Rs[bx] != 0 || res.Cs[bx] != 0 {
			t.Errorf("skipFirst: row 0 block %d not zeroed: rs=%d cs=%d", bx, res.Rs[bx], res.Cs[bx])
		}
	}
}

func TestQuadrantContrastUniformIsZero(t *testing.T) {
	rscs := make([]uint32, 8*8)
	for i := range rscs {
		rscs[i] = 10
	}
	if c := quadrantContrast(rscs, 8, 8); c != 0 {
		t.Errorf("uniform map contrast = %v, want 0", c)
	}
}

func TestQuadrantContrastSkewed(t *testing.T) {
	wb, hb := 4, 4
	rscs := make([]uint32, wb*hb)
	// Top-left quadrant all zero, rest all 10: max=40 (assuming 4 blocks/quadrant), min=0.
	for by := 0; by < hb; by++ {
		for bx := 0; bx < wb; bx++ {
			if bx < wb/2 && by < hb/2 {
				continue
			}
			rscs[by*wb+bx] = 10
		}
	}
	c := quadrantContrast(rscs, wb, hb)
	if c != 1 {
		t.Errorf("skewed contrast = %v, want 1 (one quadrant is zero)", c)
	}
}

func TestRsCsDiffSymmetric(t *testing.T) {
	a := []uint32{1, 5, 9}
	b := []uint32{4, 2, 9}
	rs1, cs1 := RsCsDiff(a, a, b, b)
	rs2, cs2 := RsCsDiff(b, b, a, a)
	if rs1 != rs2 || cs1 != cs2 {
		t.Errorf("RsCsDiff not symmetric: (%d,%d) vs (%d,%d)", rs1, cs1, rs2, cs2)
	}
	if rs1 != 6 {
		t.Errorf("RsCsDiff rs = %d, want 6", rs1)
	}
}
