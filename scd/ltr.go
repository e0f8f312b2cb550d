package scd

// LtrDecision is the result of walking the LTR-friendliness history.
type LtrDecision int

const (
	NoLTR LtrDecision = iota
	YesLTR
	ForceLTR
)

// maxLTRHistory bounds the LTR-friendliness history ring.
const maxLTRHistory = 120

// ltrHistEntry pairs a frame number with its LTR-friendliness hint.
type ltrHistEntry struct {
	frameNum uint32
	hint     bool
}

// ltrHistory is the bounded, append-only-with-eviction LTR-friendliness
// history (spec.md §4.2 step 9).
type ltrHistory struct {
	entries []ltrHistEntry
}

// put appends (frameNum, hint), evicting from the front once the ring
// exceeds maxLTRHistory entries.
func (h *ltrHistory) put(frameNum uint32, hint bool) {
	h.entries = append(h.entries, ltrHistEntry{frameNum, hint})
	if over := len(h.entries) - maxLTRHistory; over > 0 {
		h.entries = h.entries[over:]
	}
}

// reset discards all history; called on scene change.
func (h *ltrHistory) reset() {
	h.entries = h.entries[:0]
}

// continueLTRMode walks the history backwards, counting trues and
// consecutive-false runs, per Continue_LTR_Mode: badLimit consecutive
// falses before goodLimit trues accumulate → NoLTR; goodLimit trues
// accumulate first → ForceLTR; otherwise YesLTR (including when there
// isn't yet badLimit entries of history).
func (h *ltrHistory) continueLTRMode(goodLimit, badLimit uint16) LtrDecision {
	if goodLimit > maxLTRHistory {
		goodLimit = maxLTRHistory
	}
	n := len(h.entries)
	if n < int(badLimit) {
		return YesLTR
	}

	var good, goodRelative, bad uint16
	for i := n - 1; i >= 0 && good < goodLimit; i-- {
		if !h.entries[i].hint {
			bad++
			goodRelative = 0
		}
		if bad >= badLimit {
			return NoLTR
		}
		if h.entries[i].hint {
			good++
			goodRelative++
		}
		if goodRelative >= badLimit {
			bad = 0
		}
	}

	if good >= goodLimit {
		return ForceLTR
	}
	lim := badLimit
	if uint16(n-1) < lim {
		lim = uint16(n - 1)
	}
	if goodRelative >= lim && bad < goodRelative {
		return YesLTR
	}
	return NoLTR
}
