// Package stats implements the pure, deterministic statistics kernels that
// the scene-change engine runs over sub-sampled luma planes: RsCs texture
// energy, histogram-difference, block-level SAD search, simple motion
// estimation and full-resolution RaCa complexity.
//
// Every kernel has a scalar reference implementation, which is also the
// implementation used here; the package exposes a dispatch seam
// (kernelSet) so a SIMD-accelerated variant could be substituted without
// touching callers, but none is wired in.
package stats

import "github.com/pkg/errors"

// Fixed dimensions of the sub-sampled plane that SCD operates on.
const (
	PlaneWidth  = 128
	PlaneHeight = 64
	BlockSize   = 4 // RsCs block size.
	MBSize      = 8 // Motion-estimation macroblock size.
)

// ErrInvalidDims is returned by any kernel fed a plane whose dimensions
// don't match its contract.
var ErrInvalidDims = errors.New("stats: invalid plane dimensions")

// Plane is a bounds-checked view over an 8-bit luma plane. Stride may exceed
// Width to accommodate padding; Pix is addressed as Pix[y*Stride+x].
type Plane struct {
	Pix    []byte
	Width  int
	Height int
	Stride int
}

// At returns the pixel at (x, y).
func (p *Plane) At(x, y int) byte {
	return p.Pix[y*p.Stride+x]
}

func (p *Plane) checkDims(w, h int) error {
	if p.Width != w || p.Height != h {
		return errors.Wrapf(ErrInvalidDims, "got %dx%d, want %dx%d", p.Width, p.Height, w, h)
	}
	if len(p.Pix) < p.Stride*p.Height {
		return errors.Wrap(ErrInvalidDims, "plane buffer shorter than stride*height")
	}
	return nil
}

// checkSubsampled validates the fixed 128x64 SCD working-plane contract.
func checkSubsampled(p *Plane) error {
	return p.checkDims(PlaneWidth, PlaneHeight)
}

// MV is an integer motion vector in quarter-pixel-free, integer-pel units.
type MV struct {
	X, Y int
}

// SqMag returns x^2+y^2, the tie-break magnitude used throughout SCD.
func (m MV) SqMag() int { return m.X*m.X + m.Y*m.Y }

// kernelSet is the compile-time-selected table of kernel implementations.
// Only the scalar reference is registered today; a CPU-feature probe at
// init time would swap in SIMD variants here without touching callers.
type kernelSet struct {
	rsCs4x4 func(p *Plane, skipFirst bool) (rs, cs []uint32, wblocks, hblocks int)
}

var active = kernelSet{
	rsCs4x4: rsCs4x4Scalar,
}
