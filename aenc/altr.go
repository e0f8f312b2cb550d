package aenc

import "github.com/ausocean/aec/aec"

// altrState tracks the running bookkeeping make_altr_decision needs
// across frames: the previous/current LTR POC, the short-window MV
// average, and the last P frame's QP/POC for retroactive promotion.
type altrState struct {
	ltrPoc, lastLtrPoc   aec.POC
	ltrOn                bool
	avgMV0               int32
	lastPFrameQP         int32
	lastPFramePOC        aec.POC
	havePFrame           bool
	pocOfLastIDR         aec.POC
}

// markFrameAsLTR installs f as the ALTR holder and resets the running
// MV average, per AEnc::MarkFrameAsLTR.
func (s *altrState) markFrameAsLTR(f *InternalFrame) {
	f.LTR = aec.Altr
	f.UseLTRAsReference = true
	s.avgMV0 = 0
	s.lastLtrPoc = s.ltrPoc
	s.ltrPoc = f.POC
	s.ltrOn = true
}

// makeAltrDecision is AEnc::MakeAltrDecision: decides whether f becomes
// the new ALTR frame, possibly retroactively promoting a buffered P
// frame instead, and whether f itself may reference the current LTR.
func makeAltrDecision(s *altrState, dpb *DPB, enabled bool, f *InternalFrame) {
	if !enabled {
		return
	}

	if f.POC == 0 {
		s.markFrameAsLTR(f)
		return
	}

	if f.Type == aec.IDR && (s.ltrOn || f.LtrHint) {
		s.markFrameAsLTR(f)
		return
	}

	if f.Type != aec.B && f.SceneChanged && f.POC > s.ltrPoc+16 {
		s.markFrameAsLTR(f)
		return
	}

	if f.Type != aec.B && s.havePFrame {
		if ltr := dpb.LTR(); ltr != nil {
			if s.lastPFramePOC > ltr.POC && s.lastPFramePOC > s.pocOfLastIDR &&
				s.lastPFrameQP < ltr.QPY && f.LtrHint {
				if ref := dpb.Find(s.lastPFramePOC); ref != nil {
					s.markFrameAsLTR(ref)
					f.LongTermRefList = append(f.LongTermRefList, ref.POC)
					dpb.Remove(ltr.POC)
					return
				}
			}
		}
	}

	iMV := f.MVSize
	if (iMV > 2300 || f.TSC > 1024 || (iMV > 1024 && f.RecentHighMVCount > 6)) && f.SC > 4 {
		f.UseLTRAsReference = false
	} else {
		f.UseLTRAsReference = true
	}
}

// updateAltrMv folds one non-intra, non-LTR frame's MV into the
// 4-tap short-window average consulted by the ΔQP ALTR contribution.
func (s *altrState) updateAltrMv(f *InternalFrame) {
	if f.Type == aec.I || f.Type == aec.IDR || f.LTR != aec.LtrNone {
		return
	}
	iMV := int32(f.MVSize)
	if iMV > 4000 {
		iMV = 4000
	}
	if s.avgMV0 > 8 {
		s.avgMV0 += (iMV - s.avgMV0) / 4
	} else {
		s.avgMV0 = iMV
	}
}

// onPFrameFeedback records the most recently fed-back P frame's QP and
// POC, consulted by makeAltrDecision for retroactive promotion.
func (s *altrState) onPFrameFeedback(poc aec.POC, qp int32) {
	s.lastPFramePOC = poc
	s.lastPFrameQP = qp
	s.havePFrame = true
}

// onIDR records that poc is the most recent IDR, used to gate
// retroactive promotion above.
func (s *altrState) onIDR(poc aec.POC) {
	s.pocOfLastIDR = poc
}

// buildRefListLtr appends the ALTR POC to a P frame's ref_list when
// that LTR is both present and usable, per AEnc::BuildRefListLtr.
func buildRefListLtr(dpb *DPB, f *InternalFrame) {
	if f.Type != aec.P || !f.UseLTRAsReference {
		return
	}
	if ltr := dpb.LTR(); ltr != nil && ltr.LTR == aec.Altr {
		f.RefList = append(f.RefList, ltr.POC)
	}
}
