// Package brc implements the bitrate controller (spec.md §4.4): an HRD
// state machine, a QP control loop and a sliding-window frame-size cap,
// wired together behind a stateful two-phase session (spec.md §6).
package brc

import (
	"fmt"

	"github.com/ausocean/aec/aec"
	"github.com/ausocean/aec/brc/config"
	"github.com/ausocean/aec/scd"
)

type pendingFrame struct {
	param FrameParam
	ctrl  FrameCtrl
}

// BRC is one bitrate-controller session. All methods must be called from
// a single goroutine (spec.md §5): POCs strictly increasing through
// GetFrameCtrl, each later closed out by Update (a BIG_FRAME or SMALL_FRAME
// verdict keeps the frame pending so the recode can be reported by another
// Update for the same POC).
type BRC struct {
	params config.Params
	hrd    HRDCodecSpec
	win    *slidingWindow
	qp     *QPController

	pending map[aec.POC]pendingFrame
	lastPOC aec.POC
	havePOC bool
}

// New builds a session from validated parameters, picking the HRD variant
// that matches the target codec.
func New(p config.Params) (*BRC, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var hrd HRDCodecSpec
	if p.CodecID == aec.HEVC {
		hrd = &HEVCHRD{}
	} else {
		hrd = &H264HRD{}
	}
	hrd.Init(p)

	bitsPerFrame := float64(p.TargetKbps) * 1000 / p.FrameRate
	maxBitsPerFrame := float64(p.MaxKbps) * 1000 / p.FrameRate
	win := newSlidingWindow(p.WindowSize, uint32(maxBitsPerFrame), uint32(bitsPerFrame), false)

	return &BRC{
		params:  p,
		hrd:     hrd,
		win:     win,
		qp:      NewQPController(p, hrd, win),
		pending: make(map[aec.POC]pendingFrame),
	}, nil
}

// GetFrameCtrl is phase 1 of the protocol: derive a target QP and a max
// frame size for f, and remember it until the matching Update arrives.
func (b *BRC) GetFrameCtrl(f FrameParam) (FrameCtrl, error) {
	if b.havePOC && f.POC <= b.lastPOC && f.POC != 0 {
		return FrameCtrl{}, fmt.Errorf("%w: got %d after %d", ErrOutOfOrder, f.POC, b.lastPOC)
	}
	b.lastPOC, b.havePOC = f.POC, true

	ctrl := b.qp.GetFrameCtrl(f)
	b.pending[f.POC] = pendingFrame{param: f, ctrl: ctrl}
	return ctrl, nil
}

// Update is phase 2: fold the encoder's reported size and QP into the
// running state and report whether a recode is required.
func (b *BRC) Update(poc aec.POC, codedSizeBits uint32, actualQP int32) (Status, int32, error) {
	pf, ok := b.pending[poc]
	if !ok {
		return OK, actualQP, fmt.Errorf("%w: poc %d", ErrUnknownFrame, poc)
	}
	status, newQP := b.qp.Update(pf.param, pf.ctrl, codedSizeBits, actualQP)
	if newQP < b.qp.GetMinQP() || newQP > b.qp.GetMaxQP() {
		return status, newQP, fmt.Errorf("%w: requantized qp %d outside [%d,%d]", ErrInternal, newQP, b.qp.GetMinQP(), b.qp.GetMaxQP())
	}
	if status == OK || status == PanicBigFrame || status == PanicSmallFrame {
		delete(b.pending, poc)
	} else {
		// A BIG_FRAME/SMALL_FRAME verdict asks the caller to recode with
		// newQP; keep the pending entry so a later Update for the same
		// POC still resolves.
		pf.ctrl.QP = newQP
		b.pending[poc] = pf
	}
	return status, newQP, nil
}

// QpMap builds a per-block delta-QP map for poc from a persistence
// snapshot, or reports false if the snapshot has no activity worth acting
// on (spec.md §4.4.4).
func (b *BRC) QpMap(poc aec.POC, persist scd.PersistenceMap, dstWidth, dstHeight int) (QpMap, bool) {
	if !HasActivity(persist) {
		return QpMap{}, false
	}
	pf, ok := b.pending[poc]
	frameQP := b.qp.ctx.quantP
	if ok {
		frameQP = pf.ctrl.QP
	}
	return FillQpMap(persist, frameQP, dstWidth, dstHeight), true
}

func (b *BRC) GetMinQP() int32 { return b.qp.GetMinQP() }
func (b *BRC) GetMaxQP() int32 { return b.qp.GetMaxQP() }
