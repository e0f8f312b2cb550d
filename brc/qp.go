package brc

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ausocean/aec/aec"
	"github.com/ausocean/aec/brc/config"
)

// Status mirrors the two-phase protocol's post-encode verdict
// (spec.md §4.4, §6).
type Status int

const (
	OK Status = iota
	BigFrame
	SmallFrame
	PanicBigFrame
	PanicSmallFrame
)

func (s Status) String() string {
	switch s {
	case BigFrame:
		return "BIG_FRAME"
	case SmallFrame:
		return "SMALL_FRAME"
	case PanicBigFrame:
		return "PANIC_BIG_FRAME"
	case PanicSmallFrame:
		return "PANIC_SMALL_FRAME"
	default:
		return "OK"
	}
}

// LookAhead carries the optional look-ahead hints a caller may supply
// alongside per-frame metadata.
type LookAhead struct {
	CurBits      uint32
	AvgBits      uint32
	DistToNextI  uint32
	FrameCmplx   float64
}

// FrameParam is the per-frame metadata phase 1 consumes.
type FrameParam struct {
	POC           aec.POC
	Type          aec.FrameType
	PyramidLayer  uint32
	SceneChanged  bool
	LongTerm      bool
	LookAhead     *LookAhead
}

// FrameCtrl is phase 1's output: the QP to encode with and the largest
// size the frame is permitted to take.
type FrameCtrl struct {
	QP              int32
	MaxFrameSizeBits uint32
	MinFrameSizeBits uint32
}

// qpOffset is the codec-specific QSTEP table offset (AVC/AV1 use 0..51,
// HEVC extends the usable QP range).
func qpOffset(codec aec.Codec) int32 {
	if codec == aec.HEVC {
		return 12
	}
	return 0
}

// qpContext is the running state the QP control loop carries across frames,
// grounded on BRC_Ctx in the reference controller.
type qpContext struct {
	quantIDR, quantI, quantP, quantB int32

	fAbLong, fAbShort, fAbLA float64
	dQuantAb                 float64
	totalDeviation           float64

	lastIQp    int32
	lastICmplx float64

	encOrder     uint32
	lastIEncOrder uint32

	bPanic      bool
	recodeCount uint32

	// cmplxLogBits/cmplxQP hold the last few intra frames' (log bits, qp)
	// samples, fitted by complexityQPFloor into a QP-vs-complexity line.
	cmplxLogBits []float64
	cmplxQP      []float64
}

const cmplxHistoryCap = 8

// recordIntraSample feeds one more (log bits, qp) pair into the
// complexity-model history, keeping only the most recent cmplxHistoryCap.
func (c *qpContext) recordIntraSample(bits float64, qp int32) {
	if bits <= 0 {
		return
	}
	c.cmplxLogBits = append(c.cmplxLogBits, math.Log(bits))
	c.cmplxQP = append(c.cmplxQP, float64(qp))
	if n := len(c.cmplxLogBits); n > cmplxHistoryCap {
		c.cmplxLogBits = c.cmplxLogBits[n-cmplxHistoryCap:]
		c.cmplxQP = c.cmplxQP[n-cmplxHistoryCap:]
	}
}

// QPController runs the pre/post-encode QP decisions for one BRC session.
type QPController struct {
	params config.Params
	hrd    HRDCodecSpec
	win    *slidingWindow
	ctx    qpContext
}

// initialQP approximates the reference encoder's complexity-model seed QP
// from the target bitrate alone (this controller has no access to frame
// dimensions, unlike the reference model which folds in RaCa complexity).
func initialQP(p config.Params) int32 {
	bitsPerFrame := float64(p.TargetKbps) * 1000 / p.FrameRate
	const refBitsPerFrame = 2_000_000.0 / 30.0
	qp := 26.0 - 6.0*math.Log2(bitsPerFrame/refBitsPerFrame)
	return clampQP32(int32(qp+0.5), qpMin, qpMax)
}

// NewQPController seeds per-type QPs from the target bitrate, spacing I/P/B
// a few steps apart the way a fixed GOP structure typically spends its bits.
func NewQPController(p config.Params, hrd HRDCodecSpec, win *slidingWindow) *QPController {
	base := initialQP(p)
	c := &QPController{params: p, hrd: hrd, win: win}
	c.ctx.quantIDR = clampQP32(base-2, qpMin, qpMax)
	c.ctx.quantI = c.ctx.quantIDR
	c.ctx.quantP = clampQP32(base, qpMin, qpMax)
	c.ctx.quantB = clampQP32(base+1, qpMin, qpMax)
	bitsPerFrame := float64(p.TargetKbps) * 1000 / p.FrameRate
	c.ctx.fAbLong = bitsPerFrame
	c.ctx.fAbShort = bitsPerFrame
	c.ctx.fAbLA = bitsPerFrame
	c.ctx.dQuantAb = 1.0 / float64(c.ctx.quantP)
	return c
}

func (c *QPController) candidateQP(f FrameParam) int32 {
	switch f.Type {
	case aec.IDR:
		return c.ctx.quantIDR
	case aec.I:
		return c.ctx.quantI
	case aec.P:
		return c.ctx.quantP
	default:
		// Deeper pyramid layers spend progressively fewer bits.
		return clampQP32(c.ctx.quantB+int32(f.PyramidLayer), qpMin, qpMax)
	}
}

// intraQPFloor derives a QP floor for intra frames from whichever model has
// data, in order: the look-ahead current/average bits ratio applied as a
// log2 offset from the P QP, the intra (log bits, QP) regression once it
// has three samples, the previous I frame's QP, and finally qpMin.
func (c *QPController) intraQPFloor(f FrameParam) int32 {
	if f.LookAhead != nil && f.LookAhead.AvgBits > 0 {
		scale := float64(f.LookAhead.CurBits) / float64(f.LookAhead.AvgBits)
		if scale <= 0 {
			scale = 1
		}
		shift := 6.0 * math.Log2(scale)
		return clampQP32(c.ctx.quantP-int32(shift/2+0.5), qpMin, qpMax)
	}
	if qp, ok := c.complexityQPFloor(); ok {
		return qp
	}
	if c.ctx.lastICmplx > 0 {
		return clampQP32(c.ctx.lastIQp, qpMin, qpMax)
	}
	return qpMin
}

// complexityQPFloor fits a line through recent (log bits, qp) intra samples
// and reads off the QP a nominal per-frame bit budget would need, standing
// in for the reference encoder's logistic RaCa-complexity model.
func (c *QPController) complexityQPFloor() (int32, bool) {
	n := len(c.ctx.cmplxLogBits)
	if n < 3 {
		return 0, false
	}
	alpha, beta := stat.LinearRegression(c.ctx.cmplxLogBits, c.ctx.cmplxQP, nil, false)
	bitsPerFrame := float64(c.params.TargetKbps) * 1000 / c.params.FrameRate
	qp := alpha + beta*math.Log(bitsPerFrame)
	return clampQP32(int32(qp+0.5), qpMin, qpMax), true
}

func (c *QPController) targetDelay() float64 {
	cpb90k := 90000.0 * float64(c.params.CpbSizeBits) / (float64(c.params.MaxKbps) * 1000)
	initDelay90k := 90000.0 * float64(c.params.InitDelayBits) / (float64(c.params.MaxKbps) * 1000)
	return getTargetDelay(cpb90k, initDelay90k, c.params.RateControlMode == config.VBR)
}

// GetFrameCtrl is phase 1: pick a candidate QP, apply the intra floor, bump
// or drop it against the running HRD/bitrate deviation, and clamp.
func (c *QPController) GetFrameCtrl(f FrameParam) FrameCtrl {
	qp := c.candidateQP(f)
	if f.Type == aec.IDR || f.Type == aec.I {
		if floor := c.intraQPFloor(f); floor > qp {
			qp = floor
		}
	}

	dev := c.hrd.BufferDeviation(c.ctx.encOrder)
	bitsPerFrame := float64(c.params.TargetKbps) * 1000 / c.params.FrameRate
	longDev := (c.ctx.fAbLong - bitsPerFrame) / bitsPerFrame

	offset := 0
	if dev < 0 || longDev > 0.1 {
		offset++
	} else if dev > 0 && longDev < -0.1 {
		offset--
	}
	qp = clampQP32(qp+int32(offset), c.hrd.GetMinQP(), c.hrd.GetMaxQP())

	maxSize := c.hrd.MaxFrameSizeBits(c.ctx.encOrder, f.Type == aec.IDR || f.Type == aec.I)
	if c.win != nil {
		if lim := c.win.maxFrameSize(c.ctx.bPanic, f.SceneChanged, c.ctx.recodeCount); lim < maxSize {
			maxSize = lim
		}
	}

	return FrameCtrl{
		QP:               qp,
		MaxFrameSizeBits: maxSize,
		MinFrameSizeBits: c.hrd.MinFrameSizeBits(c.ctx.encOrder, f.Type == aec.IDR || f.Type == aec.I),
	}
}

// Update is phase 2: fold the encoded size/QP into the running state, check
// HRD and sliding-window bounds, and report the verdict plus a recommended
// requantization QP.
func (c *QPController) Update(f FrameParam, ctrl FrameCtrl, codedSizeBits uint32, actualQP int32) (Status, int32) {
	isIntra := f.Type == aec.IDR || f.Type == aec.I
	c.hrd.Update(codedSizeBits, c.ctx.encOrder, isIntra)

	bitsPerFrame := float64(c.params.TargetKbps) * 1000 / c.params.FrameRate
	const tapsLong, tapsShort = 16.0, 4.0
	c.ctx.fAbLong += (float64(codedSizeBits) - c.ctx.fAbLong) / tapsLong
	c.ctx.fAbShort += (float64(codedSizeBits) - c.ctx.fAbShort) / tapsShort
	c.ctx.totalDeviation += float64(codedSizeBits) - bitsPerFrame
	if actualQP > 0 {
		c.ctx.dQuantAb += (1.0/float64(actualQP) - c.ctx.dQuantAb) / tapsLong
	}
	if isIntra {
		c.ctx.lastIQp = actualQP
		c.ctx.lastICmplx = float64(codedSizeBits)
		c.ctx.lastIEncOrder = c.ctx.encOrder
		c.ctx.recordIntraSample(float64(codedSizeBits), actualQP)
	}

	status, newQP := OK, actualQP
	offset := qpOffset(c.params.CodecID)
	qpOf := offset

	maxBits := ctrl.MaxFrameSizeBits
	minBits := ctrl.MinFrameSizeBits
	switch {
	case maxBits > 0 && float64(codedSizeBits) > float64(maxBits):
		target := float64(maxBits) * 3 / 4
		newQP = requantize(float64(codedSizeBits), target, c.hrd.GetMinQP(), c.hrd.GetMaxQP(), actualQP, qpOf, 1.0, false, true)
		status = c.applyRecode(BigFrame, actualQP, newQP)
	case minBits > 0 && float64(codedSizeBits) < float64(minBits):
		target := float64(minBits) * 5 / 4
		newQP = requantize(float64(codedSizeBits), target, c.hrd.GetMinQP(), c.hrd.GetMaxQP(), actualQP, qpOf, 0.78, false, true)
		status = c.applyRecode(SmallFrame, actualQP, newQP)
	default:
		c.ctx.recodeCount = 0
		c.ctx.bPanic = false
	}
	switch status {
	case PanicBigFrame:
		newQP = c.hrd.GetMaxQP()
	case PanicSmallFrame:
		newQP = c.hrd.GetMinQP()
	}

	if c.win != nil {
		c.win.update(codedSizeBits, c.ctx.encOrder, c.ctx.bPanic, f.SceneChanged, c.ctx.recodeCount)
	}
	c.ctx.encOrder++
	return status, newQP
}

const maxRecodesNormal = 2

// applyRecode mirrors SetRecodeParams: escalate to a panic verdict once the
// normal recode budget (Params.MaxRecodes, or maxRecodesNormal when unset)
// is spent; Update then returns the QP bound that guarantees compliance
// (max QP for a big frame, min QP for a small one).
func (c *QPController) applyRecode(kind Status, qp, qpNew int32) Status {
	c.ctx.recodeCount++
	budget := c.params.MaxRecodes
	if budget == 0 {
		budget = maxRecodesNormal
	}
	if c.ctx.recodeCount <= budget {
		return kind
	}
	c.ctx.bPanic = true
	if kind == BigFrame {
		return PanicBigFrame
	}
	return PanicSmallFrame
}

func (c *QPController) GetMinQP() int32 { return c.hrd.GetMinQP() }
func (c *QPController) GetMaxQP() int32 { return c.hrd.GetMaxQP() }
