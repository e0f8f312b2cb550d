package scd

import (
	"testing"

	"github.com/ausocean/aec/aec"
	"github.com/ausocean/aec/stats"
)

func flatPlane(val byte) *stats.Plane {
	pix := make([]byte, stats.PlaneWidth*stats.PlaneHeight)
	for i := range pix {
		pix[i] = val
	}
	return &stats.Plane{Pix: pix, Width: stats.PlaneWidth, Height: stats.PlaneHeight, Stride: stats.PlaneWidth}
}

// texturedPlane produces a plane with nonzero local gradient energy so
// motion-compensated SAD can meaningfully fall below a block's own
// spatial-energy magnitude.
func texturedPlane() *stats.Plane {
	pix := make([]byte, stats.PlaneWidth*stats.PlaneHeight)
	for y := 0; y < stats.PlaneHeight; y++ {
		for x := 0; x < stats.PlaneWidth; x++ {
			pix[y*stats.PlaneWidth+x] = byte((x*7 + y*13) % 256)
		}
	}
	return &stats.Plane{Pix: pix, Width: stats.PlaneWidth, Height: stats.PlaneHeight, Stride: stats.PlaneWidth}
}

func TestProcessFrameFirstFrameIsBaseline(t *testing.T) {
	e := New(aec.AVC, nil)
	fa, err := e.ProcessFrame(0, flatPlane(128), nil)
	if err != nil {
		t.Fatalf("ProcessFrame: %v", err)
	}
	if fa.POC != 0 {
		t.Errorf("POC = %d, want 0", fa.POC)
	}
}

func TestProcessFrameRejectsBadDims(t *testing.T) {
	e := New(aec.AVC, nil)
	bad := &stats.Plane{Pix: make([]byte, 64), Width: 8, Height: 8, Stride: 8}
	if _, err := e.ProcessFrame(0, bad, nil); err == nil {
		t.Fatal("bad dims: want error, got nil")
	}
}

func TestProcessFrameIdenticalFramesNoSceneChange(t *testing.T) {
	e := New(aec.AVC, nil)
	p := flatPlane(100)
	if _, err := e.ProcessFrame(0, p, nil); err != nil {
		t.Fatalf("ProcessFrame(0): %v", err)
	}
	fa, err := e.ProcessFrame(1, p, p)
	if err != nil {
		t.Fatalf("ProcessFrame(1): %v", err)
	}
	if fa.SceneChanged {
		t.Error("identical flat frames: want no scene change")
	}
}

func TestProcessFramePersistenceSaturates(t *testing.T) {
	e := New(aec.AVC, nil)
	p := texturedPlane()
	if _, err := e.ProcessFrame(0, p, nil); err != nil {
		t.Fatalf("ProcessFrame(0): %v", err)
	}
	var fa FrameAnalysis
	var err error
	for i := aec.POC(1); i < 300; i++ {
		fa, err = e.ProcessFrame(i, p, p)
		if err != nil {
			t.Fatalf("ProcessFrame(%d): %v", i, err)
		}
	}
	for i, v := range fa.Persistence {
		if v != 255 {
			t.Fatalf("persistence[%d] = %d, want 255 after saturation", i, v)
		}
	}
}
