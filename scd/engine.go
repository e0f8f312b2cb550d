package scd

import (
	"fmt"

	"github.com/ausocean/aec/aec"
	"github.com/ausocean/aec/stats"
	"github.com/ausocean/utils/logging"
)

// gainDiffThreshold is the minimum |avg_luma diff| that triggers a
// gain-corrected copy of the reference plane before stat kernels run.
const gainDiffThreshold = 20

// frameStat is the per-frame statistics slot kept in the 3-slot ring.
type frameStat struct {
	valid    bool
	avgLuma  int32
	afd      uint32
	tsc      uint32
	mvDiff   uint32
	sc       uint32
	schg     bool
	rsCsDiff uint32
	posBal   uint32
	negBal   uint32
	tscIndex uint32
	scIndex  uint32
}

// Engine is the scene-change / content-analysis engine: a 3-slot statistics
// ring, the LTR-friendliness history and the per-block persistence map. It
// holds no image planes; the caller passes the current and reference planes
// on each call.
type Engine struct {
	codec  aec.Codec
	logger logging.Logger

	stat    [3]frameStat // [prevPrev, prev, current]
	history ltrHistory
	persist    PersistenceMap
	firstFrame bool
}

// New constructs an Engine for the given codec (the AGOP classifier is
// codec-dependent). A nil logger disables logging.
func New(codec aec.Codec, logger logging.Logger) *Engine {
	return &Engine{codec: codec, logger: logger, firstFrame: true}
}

// ProcessFrame runs the per-frame pipeline (spec.md §4.2 steps 1-10) over
// a pre-subsampled 128x64 luma plane, using ref as the held reference
// plane from the previous (non-repeated) frame.
func (e *Engine) ProcessFrame(poc aec.POC, cur *stats.Plane, ref *stats.Plane) (FrameAnalysis, error) {
	if cur.Width != stats.PlaneWidth || cur.Height != stats.PlaneHeight {
		return FrameAnalysis{}, fmt.Errorf("%w: current plane is %dx%d, want %dx%d", ErrConfig, cur.Width, cur.Height, stats.PlaneWidth, stats.PlaneHeight)
	}

	avgLuma := planeAvg(cur)

	if e.firstFrame {
		e.firstFrame = false
		e.rotate(frameStat{valid: true, avgLuma: avgLuma})
		fa := FrameAnalysis{POC: poc}
		e.persist = PersistenceMap{}
		return fa, nil
	}

	refAvg := planeAvg(ref)
	effRef := ref
	if absI32(avgLuma-refAvg) >= gainDiffThreshold {
		effRef = gainOffset(ref, avgLuma-refAvg)
	}

	rscs, err := stats.RsCs(cur, false)
	if err != nil {
		return FrameAnalysis{}, fmt.Errorf("scd: rscs: %w", err)
	}
	refRscs, err := stats.RsCs(effRef, false)
	if err != nil {
		return FrameAnalysis{}, fmt.Errorf("scd: ref rscs: %w", err)
	}

	me, err := stats.MotionAnalysis(cur, effRef)
	if err != nil {
		return FrameAnalysis{}, fmt.Errorf("scd: motion analysis: %w", err)
	}

	hist, err := stats.Histogram(cur, effRef)
	if err != nil {
		return FrameAnalysis{}, fmt.Errorf("scd: histogram: %w", err)
	}

	sc := rscs.RsVal + rscs.CsVal

	// The reference engine derives three different-scale views of the same
	// per-frame SAD sum ("valb"): the raw sum is TSC0, exposed to AEnc's
	// APQ classifier and its ALTR-reference-suppression check (spec.md §8
	// uses tsc=300_000, TSC0's scale); TSC0>>8 is used only to bucket
	// TSCindex against lmtTSC; a further >>5 (TSC0>>13 total) is the
	// small-scale statistic used for frame-to-frame diffTSC and the
	// LTR-friendliness hint, whose formulas assume single/double-digit
	// magnitudes.
	rawTSC := uint32(me.SumSAD)
	tscForIndex := rawTSC >> 8
	tsc := tscForIndex >> 5

	afd := sumAbsDiff(cur, effRef) >> 3

	rsDiff, csDiff := stats.RsCsDiff(rscs.Rs, rscs.Cs, refRscs.Rs, refRscs.Cs)
	rsDiff >>= 9
	csDiff >>= 9
	rsCsDiff := rsDiff*rsDiff + csDiff*csDiff

	prev := e.stat[2]
	diffAFD := int32(afd) - int32(prev.afd)
	diffTSC := int32(tsc) - int32(prev.tsc)
	diffMVDiff := int32(me.SumAbsMVX+me.SumAbsMVY) - int32(prev.mvDiff)

	tscIndex := tableLookup(lmtTSC, tscForIndex)
	scIndex := tableLookup(lmtSC, sc)

	schg := detectShotChange(shotFeatures{
		DiffMVdiffVal: diffMVDiff,
		RsCsDiff:      rsCsDiff,
		DiffTSC:       diffTSC,
		TSCIndex:      tscIndex,
		SCIndex:       scIndex,
		PosBalance:    hist.PosBalance(),
		NegBalance:    hist.NegBalance(),
		DiffAFD:       diffAFD,
	})

	ltrHint := hintLTROpOn(sc, tsc)

	repeated := isRepeatedFrame(repeatFeatures{
		AFD:        afd,
		RsCsDiff:   rsCsDiff,
		TSCIndex:   tscIndex,
		NegBalance: hist.NegBalance(),
		PosBalance: hist.PosBalance(),
		DiffAFD:    diffAFD,
		DiffTSC:    diffTSC,
	})
	if repeated {
		schg = false
	}

	agop := selectGopSize(agopFeatures{
		TSCIndex: tscIndex,
		SCIndex:  scIndex,
		McTcor:   int16(me.McTcor),
		MVSize:   uint32(me.SumAbsMVX + me.SumAbsMVY),
	})

	e.history.put(uint32(poc), ltrHint)
	if schg {
		e.history.reset()
	}
	e.updatePersistence(me, rscs, schg)

	fa := FrameAnalysis{
		POC:           poc,
		SceneChanged:  schg,
		RepeatedFrame: repeated,
		TSCIndex:      tscIndex,
		SCIndex:       scIndex,
		SC:            sc,
		TSC:           rawTSC,
		MVSize:        uint32(me.SumAbsMVX + me.SumAbsMVY),
		Contrast:      uint32(rscs.Contrast * 1000),
		AbsMVH:        uint32(me.SumAbsMVX),
		AbsMVV:        uint32(me.SumAbsMVY),
		McTcor:        int16(me.McTcor),
		LtrHint:       ltrHint,
		AgopHint:      agop,
		Persistence:   e.persist,
	}

	if e.logger != nil && schg {
		e.logger.Debug("scene change detected", "poc", poc, "sc", sc, "tsc", tsc)
	}

	if !repeated {
		e.rotate(frameStat{
			valid: true, avgLuma: avgLuma,
			afd: afd, tsc: tsc, mvDiff: uint32(me.SumAbsMVX + me.SumAbsMVY),
			sc: sc, schg: schg, rsCsDiff: rsCsDiff,
			posBal: hist.PosBalance(), negBal: hist.NegBalance(),
			tscIndex: tscIndex, scIndex: scIndex,
		})
	} else {
		e.stat[2].schg = false
	}

	return fa, nil
}

// rotate shifts the 3-slot statistics ring forward, discarding the
// oldest slot.
func (e *Engine) rotate(next frameStat) {
	e.stat[0] = e.stat[1]
	e.stat[1] = e.stat[2]
	e.stat[2] = next
}

// HeldStat is a snapshot of the engine's most recently committed frame
// statistics, carried so ALTR decisions in the controller can re-run SCD
// reasoning against a held reference without re-deriving it (the "opaque
// SCD state snapshot" in the frame analysis record).
type HeldStat struct {
	SC, TSC            uint32
	MVSize             uint32
	RsCsDiff           uint32
	PosBalance         uint32
	NegBalance         uint32
	TSCIndex, SCIndex  uint32
	SceneChanged       bool
}

// Held returns the statistics of the most recently committed (non-repeated)
// frame.
func (e *Engine) Held() HeldStat {
	s := e.stat[2]
	return HeldStat{
		SC: s.sc, TSC: s.tsc, MVSize: s.mvDiff,
		RsCsDiff: s.rsCsDiff, PosBalance: s.posBal, NegBalance: s.negBal,
		TSCIndex: s.tscIndex, SCIndex: s.scIndex, SceneChanged: s.schg,
	}
}

// ContinueLTRMode reports whether the engine's content history favours
// continuing, starting or forcibly entering LTR coding.
func (e *Engine) ContinueLTRMode(goodLimit, badLimit uint16) LtrDecision {
	return e.history.continueLTRMode(goodLimit, badLimit)
}

// CorrectMiniGopDecision applies CorrectScdMiniGopDecision over the
// current frame's SC/MV statistics.
func (e *Engine) CorrectMiniGopDecision() uint32 {
	cur := e.stat[2]
	return correctScdMiniGopDecision(int32(cur.sc), int32(cur.mvDiff))
}

func planeAvg(p *stats.Plane) int32 {
	var sum int64
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			sum += int64(p.At(x, y))
		}
	}
	return int32(sum / int64(p.Width*p.Height))
}

// gainOffset produces a copy of ref with every pixel shifted by diff and
// clamped to [0,255], the scalar reference for the reference engine's
// GainOffset dispatch seam.
func gainOffset(ref *stats.Plane, diff int32) *stats.Plane {
	out := &stats.Plane{
		Pix:    make([]byte, len(ref.Pix)),
		Width:  ref.Width,
		Height: ref.Height,
		Stride: ref.Stride,
	}
	for i, v := range ref.Pix {
		nv := int32(v) + diff
		switch {
		case nv < 0:
			nv = 0
		case nv > 255:
			nv = 255
		}
		out.Pix[i] = byte(nv)
	}
	return out
}

func sumAbsDiff(a, b *stats.Plane) uint32 {
	var sum uint32
	for y := 0; y < a.Height; y++ {
		for x := 0; x < a.Width; x++ {
			av, bv := a.At(x, y), b.At(x, y)
			if av > bv {
				sum += uint32(av - bv)
			} else {
				sum += uint32(bv - av)
			}
		}
	}
	return sum
}

func absI32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// updatePersistence applies the per-block PAQ rule: a block is "stable"
// (PAQ=1) when its motion-compensated SAD is below its own local
// spatial-energy magnitude; stable blocks' counters increment (saturating
// at 255), unstable blocks reset to zero, and a scene change zeroes the
// whole map.
func (e *Engine) updatePersistence(me stats.MEGrid, rscs stats.RsCsResult, sceneChanged bool) {
	if sceneChanged {
		e.persist = PersistenceMap{}
		return
	}
	for i, blk := range me.Blocks {
		by, bx := i/me.WBlocks, i%me.WBlocks
		localSC := localRsCsMagnitude(rscs, bx, by)
		if blk.SAD < localSC {
			if e.persist[i] < 255 {
				e.persist[i]++
			}
		} else {
			e.persist[i] = 0
		}
	}
}

// localRsCsMagnitude sums the RsCs 4x4-block energies that fall under
// the 8x8 motion-estimation block at (mbx, mby).
func localRsCsMagnitude(r stats.RsCsResult, mbx, mby int) uint32 {
	var sum uint32
	for dy := 0; dy < 2; dy++ {
		for dx := 0; dx < 2; dx++ {
			bx, by := mbx*2+dx, mby*2+dy
			if bx >= r.WBlocks || by >= r.HBlocks {
				continue
			}
			sum += r.RsCs[by*r.WBlocks+bx]
		}
	}
	return sum
}
