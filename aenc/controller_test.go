package aenc

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ausocean/aec/aec"
	"github.com/ausocean/aec/aenc/config"
	"github.com/ausocean/aec/stats"
)

func testParams() config.Params {
	return config.Params{
		FrameWidth: 1920, FrameHeight: 1080,
		SrcFrameWidth: 1920, SrcFrameHeight: 1080,
		ColorFormat:    aec.NV12,
		GopPicSize:     32,
		MinGopSize:     1,
		MaxGopSize:     32,
		MaxIDRDist:     32,
		MaxMiniGopSize: 1,
		CodecID:        aec.AVC,
		NumRefP:        2,
	}
}

func flatPlane(val byte) *stats.Plane {
	p := &stats.Plane{Pix: make([]byte, stats.PlaneWidth*stats.PlaneHeight), Width: stats.PlaneWidth, Height: stats.PlaneHeight, Stride: stats.PlaneWidth}
	for i := range p.Pix {
		p.Pix[i] = val
	}
	return p
}

func TestControllerAllPFramesWithMiniGopSizeOne(t *testing.T) {
	p := testParams()
	c, err := NewController(p, nil)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}

	prev := flatPlane(100)
	for poc := aec.POC(0); poc < 32; poc++ {
		cur := flatPlane(100)
		d, ok, err := c.ProcessFrame(poc, cur, prev)
		if err != nil {
			t.Fatalf("ProcessFrame(%d): %v", poc, err)
		}
		if !ok {
			t.Fatalf("ProcessFrame(%d): expected a ready decision", poc)
		}
		if poc == 0 {
			if d.Type != aec.IDR {
				t.Fatalf("frame 0: got type %v, want IDR", d.Type)
			}
		} else if d.Type != aec.P {
			t.Fatalf("frame %d: got type %v, want P (MaxMiniGopSize=1, no scene change)", poc, d.Type)
		}
		prev = cur
	}
}

func TestControllerRejectsBadParams(t *testing.T) {
	p := testParams()
	p.MaxMiniGopSize = 3
	if _, err := NewController(p, nil); err == nil {
		t.Fatalf("expected validation error for MaxMiniGopSize=3")
	}
}

func TestControllerCloseRejectsPendingFrames(t *testing.T) {
	p := testParams()
	c, err := NewController(p, nil)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	if _, _, err := c.ProcessFrame(0, flatPlane(100), flatPlane(100)); err != nil {
		t.Fatalf("ProcessFrame: %v", err)
	}
	c.frameBuffer = append(c.frameBuffer, &InternalFrame{})
	if err := c.Close(); err == nil {
		t.Fatalf("expected Close to reject a non-empty frame_buffer")
	}
}

func TestControllerCloseCleanAfterFlush(t *testing.T) {
	p := testParams()
	c, err := NewController(p, nil)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	prev := flatPlane(100)
	for poc := aec.POC(0); poc < 4; poc++ {
		if _, _, err := c.ProcessFrame(poc, flatPlane(100), prev); err != nil {
			t.Fatalf("ProcessFrame(%d): %v", poc, err)
		}
	}
	if _, err := c.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close after Flush: %v", err)
	}
}

// runSequence drives a fresh controller over a fixed flat-plane sequence
// and returns every Decision it emits, including Flush's tail.
func runSequence(t *testing.T, p config.Params, n int) []Decision {
	t.Helper()
	c, err := NewController(p, nil)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	var out []Decision
	prev := flatPlane(100)
	for poc := aec.POC(0); int(poc) < n; poc++ {
		cur := flatPlane(100)
		if d, ok, err := c.ProcessFrame(poc, cur, prev); err != nil {
			t.Fatalf("ProcessFrame(%d): %v", poc, err)
		} else if ok {
			out = append(out, d)
		}
		prev = cur
	}
	tail, err := c.Flush()
	if err != nil {
		t.Fatalf("Flush: %v", err)
	}
	return append(out, tail...)
}

// TestControllerDeterministic checks that two controllers fed the exact
// same flat-plane sequence emit byte-for-byte identical decisions, the
// property the caller relies on to treat a session as reproducible.
func TestControllerDeterministic(t *testing.T) {
	p := testParams()
	p.MaxMiniGopSize = 4
	a := runSequence(t, p, 40)
	b := runSequence(t, p, 40)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("two identical runs diverged (-got +want):\n%s", diff)
	}
}

func TestControllerUpdateFrameToleratesMissingPOC(t *testing.T) {
	p := testParams()
	c, err := NewController(p, nil)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	c.UpdateFrame(999, 1000, 28, aec.P) // must not panic
}
