package aenc

import "github.com/ausocean/aec/aec"

// arefKeyFrameInterval is the minimum POC spacing between AREF
// promotions of P frames, per AEnc::MakeArefDecision.
const arefKeyFrameInterval = 32

// arefState tracks the running bookkeeping make_aref_decision needs.
type arefState struct {
	pocOfLastArefKeyFrame aec.POC
	hasLowActivity        bool
	recentTemporalActs    [8]bool
}

// makeArefDecision is AEnc::MakeArefDecision.
func makeArefDecision(s *arefState, altrEnabled, altrOn bool, arefEnabled bool, f *InternalFrame) {
	if !arefEnabled || f.LTR != aec.LtrNone {
		return
	}

	if !altrEnabled && ((f.SceneChanged && f.Type != aec.B) || f.Type == aec.IDR) {
		f.LTR = aec.Aref
		s.pocOfLastArefKeyFrame = f.POC
		return
	}

	if f.Type == aec.P && (!altrOn || !altrEnabled) {
		minPoc := s.pocOfLastArefKeyFrame + arefKeyFrameInterval
		if f.POC >= minPoc {
			f.LTR = aec.Aref
			s.pocOfLastArefKeyFrame = f.POC
		}
	}
}

// updateArefActivity folds one non-intra frame's MV into the 8-slot
// low-activity window consulted by the ΔQP AREF contribution, per
// AEnc::ComputeStatAref.
func (s *arefState) updateArefActivity(f *InternalFrame) {
	if f.Type == aec.I || f.Type == aec.IDR {
		return
	}
	s.recentTemporalActs[f.MiniGopIdx%8] = f.MVSize > 1000
	cnt := 0
	for _, v := range s.recentTemporalActs {
		if v {
			cnt++
		}
	}
	s.hasLowActivity = cnt < 3
}

// buildRefListAref appends the most recent AREF key-frame POC to a P
// frame's ref_list, per AEnc::BuildRefListAref.
func buildRefListAref(dpb *DPB, f *InternalFrame) {
	if f.Type != aec.P {
		return
	}
	if keyF := dpb.LTR(); keyF != nil && keyF.LTR == aec.Aref {
		f.RefList = append(f.RefList, keyF.POC)
	}
}
