// Package aenc implements the adaptive encode controller: per-frame
// IDR/I decisions, mini-GOP assembly, ALTR/AREF/APQ/AGOP QP steering
// and DPB management, driven by the SCD engine's frame analysis.
package aenc

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/ausocean/aec/aec"
	"github.com/ausocean/aec/aenc/config"
	"github.com/ausocean/aec/scd"
	"github.com/ausocean/aec/stats"
	"github.com/ausocean/utils/logging"
)

// Decision is the controller's per-frame output, handed to the caller
// once its mini-GOP has closed and any preceding frames have been
// emitted.
type Decision = ExternalFrame

// Controller is the AEnc single-threaded pipeline: frame_buffer holds
// frames whose mini-GOP has not yet closed, output_buffer holds
// finalised decisions awaiting emission, and dpb is the reference
// picture buffer.
type Controller struct {
	params config.Params
	logger logging.Logger

	scd *scd.Engine
	dpb *DPB

	frameBuffer  []*InternalFrame
	outputBuffer []*ExternalFrame

	idr     idrState
	altr    altrState
	aref    arefState
	apq     apqState
	removeDelayed []aec.POC

	nextPOC aec.POC
}

// NewController validates params and constructs a fresh controller.
func NewController(params config.Params, logger logging.Logger) (*Controller, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Controller{
		params: params,
		logger: logger,
		scd:    scd.New(params.CodecID, logger),
		dpb:    NewDPB(params.NumRefP),
	}, nil
}

func (c *Controller) paramsView() paramsView {
	return paramsView{
		StrictIFrame: c.params.StrictIFrame,
		GopPicSize:   c.params.GopPicSize,
		MinGopSize:   c.params.MinGopSize,
		MaxGopSize:   c.params.MaxGopSize,
		MaxIDRDist:   c.params.MaxIDRDist,
		CodecID:      c.params.CodecID,
	}
}

// ProcessFrame feeds one frame's sub-sampled planes through SCD and
// the controller pipeline. cur is the current frame's sub-sampled
// plane, ref the previous frame's (nil for the very first frame,
// since SCD treats poc==0 as a baseline). It returns the next ready
// Decision, or ok==false if none has been finalised yet.
func (c *Controller) ProcessFrame(poc aec.POC, cur, ref *stats.Plane) (Decision, bool, error) {
	analysis, err := c.scd.ProcessFrame(poc, cur, ref)
	if err != nil {
		return Decision{}, false, fmt.Errorf("aenc: scd: %w", err)
	}

	f := &InternalFrame{FrameAnalysis: analysis}
	f.Type = decideIntra(&c.idr, c.paramsView(), poc, analysis.SceneChanged)
	switch f.Type {
	case aec.I:
		c.idr.pocOfLastI = poc
	case aec.IDR:
		c.idr.pocOfLastI = poc
		c.idr.pocOfLastIDR = poc
		c.aref.pocOfLastArefKeyFrame = poc
		c.altr.onIDR(poc)
	}
	c.idr.haveSeenAny = true

	c.frameBuffer = append(c.frameBuffer, f)
	if err := c.closeMiniGOPs(); err != nil {
		return Decision{}, false, err
	}

	return c.popOutput()
}

// Flush closes every frame left in frame_buffer into mini-GOPs (sized by
// the common mini-GOP rule, capped at what remains) and drains
// output_buffer, per process_frame(None).
func (c *Controller) Flush() ([]Decision, error) {
	for len(c.frameBuffer) > 0 {
		size := commonMiniGopSize(c.frameBuffer, c.params.MaxMiniGopSize, c.params.StrictIFrame)
		if size == 0 || int(size) > len(c.frameBuffer) {
			size = uint32(len(c.frameBuffer))
		}
		if err := c.closeMiniGOP(size); err != nil {
			return nil, err
		}
	}
	var out []Decision
	for {
		d, ok, err := c.popOutput()
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, d)
	}
}

// closeMiniGOPs repeatedly closes mini-GOPs while frame_buffer holds
// enough frames and the leading frame is not a DUMMY placeholder.
func (c *Controller) closeMiniGOPs() error {
	for len(c.frameBuffer) >= int(c.params.MaxMiniGopSize) && c.frameBuffer[0].Type != aec.Dummy {
		common := commonMiniGopSize(c.frameBuffer, c.params.MaxMiniGopSize, c.params.StrictIFrame)
		agop := agopMiniGopSize(c.frameBuffer, c.params.MaxMiniGopSize, c.params.AGOP)
		size := common
		if agop < size {
			size = agop
		}
		if size == 0 {
			size = 1
		}
		if err := c.closeMiniGOP(size); err != nil {
			return err
		}
	}
	return nil
}

// closeMiniGOP finalises the first size frames of frame_buffer: mini-
// GOP template assignment, sub-decisions in spec order, then moves
// them to output_buffer.
func (c *Controller) closeMiniGOP(size uint32) error {
	if int(size) > len(c.frameBuffer) {
		size = uint32(len(c.frameBuffer))
	}
	batch := c.frameBuffer[:size]
	c.frameBuffer = c.frameBuffer[size:]

	for idx, f := range batch {
		if err := markFrameInMiniGOP(f, size, uint32(idx)); err != nil {
			return err
		}
	}

	for _, f := range batch {
		c.runSubDecisions(f)
		c.outputBuffer = append(c.outputBuffer, extFramePtr(f))
	}
	return nil
}

// runSubDecisions applies §4.3.4 (a)-(f) to one closed-mini-GOP frame,
// in order.
func (c *Controller) runSubDecisions(f *InternalFrame) {
	c.altr.updateAltrMv(f)
	if c.params.ALTR {
		makeAltrDecision(&c.altr, c.dpb, true, f)
	}
	c.aref.updateArefActivity(f)
	if c.params.AREF {
		makeArefDecision(&c.aref, c.params.ALTR, c.altr.ltrOn, true, f)
	}
	if c.params.APQ {
		computeStatApq(c.params.CodecID, &c.apq, f)
	}

	if f.Type != aec.B && f.LTR == aec.LtrNone {
		if evicted, did := c.dpb.AddRegular(f); did {
			f.RemoveFromDPB = append(f.RemoveFromDPB, evicted)
		}
	}
	if f.LTR == aec.Altr || f.LTR == aec.Aref {
		if evicted, did := c.dpb.PromoteLTR(f); did {
			f.RemoveFromDPB = append(f.RemoveFromDPB, evicted)
		}
	}

	if c.params.ALTR {
		buildRefListLtr(c.dpb, f)
	}
	if c.params.AREF {
		buildRefListAref(c.dpb, f)
	}

	f.DeltaQP = 0
	if c.params.ALTR {
		adjustQpLtr(&c.altr, c.params.APQ, f)
	}
	if c.params.AREF {
		adjustQpAref(&c.aref, c.params.APQ, f)
	}
	if c.params.APQ {
		adjustQpApq(f)
	}
	if c.params.AGOP && !c.params.ALTR && !c.params.AREF && !c.params.APQ {
		adjustQpAgop(f)
	}
}

// popOutput pops the front of output_buffer, if any, per
// AEnc::OutputDecision's delayed-removal protocol: a B frame's
// remove_from_dpb entries are held back until the next non-B frame is
// emitted.
func (c *Controller) popOutput() (Decision, bool, error) {
	if len(c.outputBuffer) == 0 {
		return Decision{}, false, nil
	}
	out := *c.outputBuffer[0]
	c.outputBuffer = c.outputBuffer[1:]

	if out.Type == aec.B {
		c.removeDelayed = append(c.removeDelayed, out.RemoveFromDPB...)
		out.RemoveFromDPB = nil
	} else {
		out.RemoveFromDPB = append(out.RemoveFromDPB, c.removeDelayed...)
		c.removeDelayed = nil
	}

	if out.Type == aec.Undef {
		return Decision{}, false, fmt.Errorf("%w: unknown frame type at emit", ErrInternal)
	}

	return out, true, nil
}

func extFramePtr(f *InternalFrame) *ExternalFrame {
	e := f.ToExternal()
	return &e
}

// UpdateFrame propagates late encoder feedback — the actual QP and
// coded type — to the matching frame wherever it currently lives.
// Lookups tolerate "not found" silently (the frame may already have
// been consumed), per spec.md §4.3.6.
func (c *Controller) UpdateFrame(poc aec.POC, encodedBits uint32, qpY int32, frameType aec.FrameType) {
	for _, e := range c.outputBuffer {
		if e.POC == poc {
			e.QPY = qpY
			if frameType != aec.Undef {
				e.Type = frameType
			}
		}
	}
	f := c.findInternal(poc)
	if f == nil {
		return
	}
	f.EncodedBits = encodedBits
	f.QPY = qpY
	f.QPSet = true
	if frameType != aec.Undef {
		f.Type = frameType
	}
	if f.Type == aec.P {
		c.altr.onPFrameFeedback(poc, qpY)
	}
}

func (c *Controller) findInternal(poc aec.POC) *InternalFrame {
	for _, f := range c.frameBuffer {
		if f.POC == poc {
			return f
		}
	}
	if f := c.dpb.Find(poc); f != nil {
		return f
	}
	return nil
}

// GetIntraDecision reports the I/IDR decision for a frame still
// tracked by the controller, if any.
func (c *Controller) GetIntraDecision(poc aec.POC) (aec.FrameType, bool) {
	f := c.findInternal(poc)
	if f == nil || (f.Type != aec.I && f.Type != aec.IDR) {
		return aec.Undef, false
	}
	return f.Type, true
}

// GetPersistenceMap reports the SCD persistence map held against a
// frame still tracked by the controller, if any.
func (c *Controller) GetPersistenceMap(poc aec.POC) (scd.PersistenceMap, bool) {
	f := c.findInternal(poc)
	if f == nil {
		return scd.PersistenceMap{}, false
	}
	return f.Persistence, true
}

// Close reports whether the controller was torn down cleanly: frame_buffer
// must be empty (the caller should have called Flush) and the DPB must
// hold no LTR/AREF reference still marked keep-in-DPB. Both checks run
// regardless of each other's outcome and their errors are combined,
// mirroring AEnc::Close folding together the shutdown of its two SCD
// instances into a single status.
func (c *Controller) Close() error {
	var err error
	if n := len(c.frameBuffer); n > 0 {
		err = multierr.Append(err, fmt.Errorf("%w: %d frame(s) still pending in frame_buffer, call Flush first", ErrInternal, n))
	}
	if f := c.dpb.LTR(); f != nil {
		err = multierr.Append(err, fmt.Errorf("%w: LTR frame poc=%d still held in DPB at close", ErrInternal, f.POC))
	}
	return err
}

// APQPredict exposes the standalone APQ table lookup (spec.md §4.3.1).
func (c *Controller) APQPredict(sc, tsc, mvSize, contrast, pyrLayer uint32, baseQP int32) int8 {
	return APQPredict(c.params.CodecID, sc, tsc, mvSize, contrast, pyrLayer, baseQP)
}
