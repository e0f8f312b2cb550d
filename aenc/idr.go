package aenc

import "github.com/ausocean/aec/aec"

// idrState is the running state the IDR/I decision consults: last-I and
// last-IDR POCs, rolled forward by the caller after each decision.
type idrState struct {
	pocOfLastI   aec.POC
	pocOfLastIDR aec.POC
	haveSeenAny  bool
}

// decideIntra runs the IDR/I decision rules in order (spec.md §4.3.2).
// It is called before any mini-GOP logic for every incoming frame.
func decideIntra(s *idrState, p paramsView, poc aec.POC, sceneChanged bool) aec.FrameType {
	if poc == 0 {
		return aec.IDR
	}

	if p.StrictIFrame {
		if poc%p.GopPicSize == 0 {
			if poc%p.MaxIDRDist == 0 {
				return aec.IDR
			}
			return aec.I
		}
		return aec.P
	}

	gopAge := poc - s.pocOfLastI
	if gopAge < p.MinGopSize {
		return aec.P
	}

	if poc-s.pocOfLastIDR >= p.MaxIDRDist {
		return aec.IDR
	}

	if sceneChanged {
		switch p.CodecID {
		case aec.AVC, aec.AV1:
			return aec.IDR
		case aec.HEVC:
			return aec.I
		}
	}

	if sceneChanged || gopAge >= p.MaxGopSize {
		return aec.I
	}

	return aec.P
}

// paramsView is the subset of config.Params the IDR decision needs,
// kept separate so this file does not import the config package
// directly.
type paramsView struct {
	StrictIFrame bool
	GopPicSize   uint32
	MinGopSize   uint32
	MaxGopSize   uint32
	MaxIDRDist   uint32
	CodecID      aec.Codec
}
