package brc

import (
	"math"

	"github.com/ausocean/aec/brc/config"
)

// HRDCodecSpec is the shared capability both HRD variants expose
// (spec.md §4.4.1).
type HRDCodecSpec interface {
	Init(p config.Params)
	Reset(p config.Params)
	Update(sizeBits uint32, encOrder uint32, isSEI bool)
	InitCPBRemovalDelay(eo uint32) uint32
	MaxFrameSizeBits(eo uint32, isSEI bool) uint32
	MinFrameSizeBits(eo uint32, isSEI bool) uint32
	BufferDeviation(eo uint32) float64
	BufferDeviationFactor(eo uint32) float64
	GetMinQP() int32
	GetMaxQP() int32
}

// hrdInput is the common, derived-from-Params state both variants
// consult, grounded on sHrdInput.
type hrdInput struct {
	cbr              bool
	bitrate          float64 // bits/sec
	maxCpbRemoval    uint32
	clockTick        float64 // 90 kHz ticks/frame
	cpbSize90k       float64
	initCpbRemoval   float64
}

func (h *hrdInput) init(p config.Params) {
	h.cbr = p.RateControlMode == config.CBR
	h.bitrate = float64(p.MaxKbps) * 1000
	h.maxCpbRemoval = 1 << 24
	h.clockTick = 90000.0 / p.FrameRate
	h.cpbSize90k = 90000.0 * float64(p.CpbSizeBits) / h.bitrate
	h.initCpbRemoval = 90000.0 * float64(p.InitDelayBits) / h.bitrate
}

// getTargetDelay is the shared target-delay formula both HRD variants
// use to judge buffer deviation, per GetTargetDelay in the reference
// controller.
func getTargetDelay(cpbSize90k, initCpbRemoval float64, vbr bool) float64 {
	if vbr {
		return math.Max(math.Min(3.0*cpbSize90k/4.0, initCpbRemoval), cpbSize90k/2.0)
	}
	return math.Min(cpbSize90k/2.0, initCpbRemoval)
}

const qpMin, qpMax = 1, 51

func clampQP(v int32) int32 {
	if v < qpMin {
		return qpMin
	}
	if v > qpMax {
		return qpMax
	}
	return v
}

// H264HRD tracks trn_cur (nominal removal time) and taf_prv (final
// arrival time of the previous AU), both in seconds, per AVC Annex C.
type H264HRD struct {
	in     hrdInput
	trnCur float64
	tafPrv float64
}

func (h *H264HRD) Init(p config.Params) {
	h.in.init(p)
	h.in.clockTick /= 90000.0
	h.tafPrv = 0
	h.trnCur = float64(h.InitCPBRemovalDelay(0)) / 90000.0
}

func (h *H264HRD) Reset(p config.Params) {
	var in hrdInput
	in.init(p)
	h.in.bitrate = in.bitrate
	h.in.cpbSize90k = in.cpbSize90k
}

func (h *H264HRD) Update(sizeBits uint32, eo uint32, isSEI bool) {
	initDelay := float64(h.InitCPBRemovalDelay(eo))

	var taiEarliest float64
	if isSEI {
		taiEarliest = h.trnCur - initDelay/90000.0
	} else {
		taiEarliest = h.trnCur - h.in.cpbSize90k/90000.0
	}

	taiCur := h.tafPrv
	if !h.in.cbr {
		taiCur = math.Max(h.tafPrv, taiEarliest)
	}

	h.tafPrv = taiCur + float64(sizeBits)/h.in.bitrate
	h.trnCur += h.in.clockTick
}

func (h *H264HRD) InitCPBRemovalDelay(uint32) uint32 {
	delay := math.Max(0, h.trnCur-h.tafPrv)
	d := uint32(90000*delay + 0.5)
	switch {
	case d == 0:
		return 1
	case float64(d) > h.in.cpbSize90k && !h.in.cbr:
		return uint32(h.in.cpbSize90k)
	default:
		return d
	}
}

func (h *H264HRD) BufferDeviation(eo uint32) float64 {
	delay := float64(h.InitCPBRemovalDelay(eo))
	target := getTargetDelay(h.in.cpbSize90k, h.in.initCpbRemoval, !h.in.cbr)
	return (target - delay) / 90000.0 * h.in.bitrate
}

func (h *H264HRD) BufferDeviationFactor(eo uint32) float64 {
	delay := float64(h.InitCPBRemovalDelay(eo))
	target := getTargetDelay(h.in.cpbSize90k, h.in.initCpbRemoval, !h.in.cbr)
	return math.Abs((target - delay) / target)
}

func (h *H264HRD) MinFrameSizeBits(eo uint32, _ bool) uint32 {
	delay := float64(h.InitCPBRemovalDelay(eo))
	if !h.in.cbr || delay+h.in.clockTick*90000 < h.in.cpbSize90k {
		return 0
	}
	return uint32((delay+h.in.clockTick*90000-h.in.cpbSize90k)/90000.0*h.in.bitrate) + 16
}

func (h *H264HRD) MaxFrameSizeBits(eo uint32, isSEI bool) uint32 {
	initDelay := float64(h.InitCPBRemovalDelay(eo))
	var taiEarliest float64
	if isSEI {
		taiEarliest = h.trnCur - initDelay/90000.0
	} else {
		taiEarliest = h.trnCur - h.in.cpbSize90k/90000.0
	}
	taiCur := h.tafPrv
	if !h.in.cbr {
		taiCur = math.Max(h.tafPrv, taiEarliest)
	}
	return uint32((h.trnCur - taiCur) * h.in.bitrate)
}

func (h *H264HRD) GetMinQP() int32 { return qpMin }
func (h *H264HRD) GetMaxQP() int32 { return qpMax }

// HEVCHRD tracks CPB-removal-delay MSB/LSB and the previous buffering
// period's anchors, per H.265 Annex C equations C-3/C-4/C-8/C-10/
// C-11/C-17/C-19.
type HEVCHRD struct {
	in hrdInput

	prevDelayMinus1 int32
	prevDelayMsb    uint32
	prevFinalArrival  float64
	prevBpNominal     float64
	prevBpEncOrder    uint32
}

func (h *HEVCHRD) Init(p config.Params) {
	h.in.init(p)
	h.prevDelayMinus1 = -1
	h.prevDelayMsb = 0
	h.prevFinalArrival = 0
	h.prevBpNominal = h.in.initCpbRemoval
	h.prevBpEncOrder = 0
}

func (h *HEVCHRD) Reset(p config.Params) {
	var in hrdInput
	in.init(p)
	h.in.bitrate = in.bitrate
	h.in.cpbSize90k = in.cpbSize90k
}

func (h *HEVCHRD) nominalRemovalTime(eo uint32) float64 {
	if eo == 0 {
		return 0
	}
	delayMinus1 := int32(eo-h.prevBpEncOrder) - 1
	var msb uint32
	if delayMinus1 <= h.prevDelayMinus1 {
		msb = h.prevDelayMsb + h.in.maxCpbRemoval
	} else {
		msb = h.prevDelayMsb
	}
	valMinus1 := float64(msb) + float64(delayMinus1)
	return h.prevBpNominal + h.in.clockTick*(valMinus1+1)
}

func (h *HEVCHRD) InitCPBRemovalDelay(eo uint32) uint32 {
	if eo == 0 {
		return uint32(h.in.initCpbRemoval)
	}
	nominal := h.nominalRemovalTime(eo)
	deltaTime90k := nominal - h.prevFinalArrival/h.in.bitrate
	if h.in.cbr {
		return uint32(math.Max(0, deltaTime90k))
	}
	if deltaTime90k > h.in.cpbSize90k {
		return uint32(h.in.cpbSize90k)
	}
	return uint32(math.Max(0, deltaTime90k))
}

func (h *HEVCHRD) Update(sizeBits uint32, eo uint32, isSEI bool) {
	if eo > 0 {
		delayMinus1 := int32(eo-h.prevBpEncOrder) - 1
		var msb uint32
		if !isSEI && (eo-h.prevBpEncOrder) != 1 {
			if delayMinus1 <= h.prevDelayMinus1 {
				msb = h.prevDelayMsb + h.in.maxCpbRemoval
			} else {
				msb = h.prevDelayMsb
			}
		}
		h.prevDelayMsb = msb
		h.prevDelayMinus1 = delayMinus1
		h.prevBpNominal = h.nominalRemovalTime(eo)
		h.prevBpEncOrder = eo
	}
	h.prevFinalArrival += float64(sizeBits)
}

func (h *HEVCHRD) BufferDeviation(eo uint32) float64 {
	delay := float64(h.InitCPBRemovalDelay(eo))
	target := getTargetDelay(h.in.cpbSize90k, h.in.initCpbRemoval, !h.in.cbr)
	return (target - delay) / 90000.0 * h.in.bitrate
}

func (h *HEVCHRD) BufferDeviationFactor(eo uint32) float64 {
	delay := float64(h.InitCPBRemovalDelay(eo))
	target := getTargetDelay(h.in.cpbSize90k, h.in.initCpbRemoval, !h.in.cbr)
	return math.Abs((target - delay) / target)
}

func (h *HEVCHRD) MaxFrameSizeBits(eo uint32, _ bool) uint32 {
	return uint32(float64(h.InitCPBRemovalDelay(eo)) / 90000.0 * h.in.bitrate)
}

func (h *HEVCHRD) MinFrameSizeBits(eo uint32, _ bool) uint32 {
	delay := float64(h.InitCPBRemovalDelay(eo))
	if !h.in.cbr || delay+h.in.clockTick+16.0 < h.in.cpbSize90k {
		return 0
	}
	return uint32((delay+h.in.clockTick+16.0-h.in.cpbSize90k)/90000.0*h.in.bitrate + 0.99999)
}

func (h *HEVCHRD) GetMinQP() int32 { return qpMin }
func (h *HEVCHRD) GetMaxQP() int32 { return qpMax }
