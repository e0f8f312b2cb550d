package stats

import "testing"

func TestSADSearchZeroMVOnIdenticalPlanes(t *testing.T) {
	p := rampPlane(PlaneWidth, PlaneHeight)
	res := SADSearch(p, 16, 16, p, 8, 8)
	if res.SAD != 0 || res.MV != (MV{}) {
		t.Errorf("identical planes: got SAD=%d MV=%v, want 0,{0 0}", res.SAD, res.MV)
	}
}

func TestSADSearchFindsShiftedBlock(t *testing.T) {
	cur := rampPlane(PlaneWidth, PlaneHeight)
	ref := flatPlane(PlaneWidth, PlaneHeight, 0)
	// Copy cur's block at (16,16) into ref shifted by (+4,+2) so the true
	// match is at MV{4,2} from cur's perspective.
	for dy := 0; dy < MBSize; dy++ {
		for dx := 0; dx < MBSize; dx++ {
			ref.Pix[(16+2+dy)*PlaneWidth+(16+4+dx)] = cur.At(16+dx, 16+dy)
		}
	}
	res := SADSearch(cur, 16, 16, ref, 8, 8)
	if res.SAD != 0 {
		t.Fatalf("SADSearch SAD = %d, want 0", res.SAD)
	}
	if res.MV != (MV{X: 4, Y: 2}) {
		t.Errorf("SADSearch MV = %v, want {4 2}", res.MV)
	}
}

func TestSADTieBreakPrefersSmallerMagnitude(t *testing.T) {
	best := SADResult{SAD: 10, MV: MV{X: 3, Y: 0}}
	if !best.better(10, MV{X: 1, Y: 1}) {
		t.Error("equal SAD, smaller |MV|^2: want replace")
	}
	if best.better(10, MV{X: 4, Y: 0}) {
		t.Error("equal SAD, larger |MV|^2: want no replace")
	}
}
