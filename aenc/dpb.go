package aenc

import "github.com/ausocean/aec/aec"

// DPB is the decoded picture buffer: an ordered collection of
// InternalFrames whose capacity is numRefP plus at most one LTR/AREF
// slot. No two entries share a POC; at most one entry has LTR != None;
// regular-ref eviction takes the lowest-POC non-LTR entry.
type DPB struct {
	numRefP uint32
	frames  []*InternalFrame
}

// NewDPB constructs an empty DPB with the given regular-reference
// capacity.
func NewDPB(numRefP uint32) *DPB {
	return &DPB{numRefP: numRefP}
}

// Find returns the frame with the given POC, or nil if absent. Lookups
// that fail are tolerated silently by callers (spec.md §4.3.6).
func (d *DPB) Find(poc aec.POC) *InternalFrame {
	for _, f := range d.frames {
		if f.POC == poc {
			return f
		}
	}
	return nil
}

// LTR returns the current LTR/AREF-holding entry, or nil.
func (d *DPB) LTR() *InternalFrame {
	for _, f := range d.frames {
		if f.LTR != aec.LtrNone {
			return f
		}
	}
	return nil
}

// Remove deletes the entry with the given POC, if present.
func (d *DPB) Remove(poc aec.POC) {
	for i, f := range d.frames {
		if f.POC == poc {
			d.frames = append(d.frames[:i], d.frames[i+1:]...)
			return
		}
	}
}

// nonLTRCount counts entries that are not the LTR/AREF holder.
func (d *DPB) nonLTRCount() int {
	n := 0
	for _, f := range d.frames {
		if f.LTR == aec.LtrNone {
			n++
		}
	}
	return n
}

// lowestPOCNonLTR finds the non-LTR entry with the smallest POC.
func (d *DPB) lowestPOCNonLTR() *InternalFrame {
	var lowest *InternalFrame
	for _, f := range d.frames {
		if f.LTR != aec.LtrNone {
			continue
		}
		if lowest == nil || f.POC < lowest.POC {
			lowest = f
		}
	}
	return lowest
}

// AddRegular appends a non-B, non-LTR frame, evicting the lowest-POC
// non-LTR entry first if the regular-reference capacity is full. It
// returns the evicted POC, if any.
func (d *DPB) AddRegular(f *InternalFrame) (evicted aec.POC, didEvict bool) {
	if uint32(d.nonLTRCount()) >= d.numRefP {
		if victim := d.lowestPOCNonLTR(); victim != nil {
			d.Remove(victim.POC)
			evicted, didEvict = victim.POC, true
		}
	}
	d.frames = append(d.frames, f)
	return evicted, didEvict
}

// PromoteLTR evicts any existing LTR/AREF entry and installs f as the
// new one with KeepInDPB set. It returns the evicted POC, if any.
func (d *DPB) PromoteLTR(f *InternalFrame) (evicted aec.POC, didEvict bool) {
	if old := d.LTR(); old != nil {
		d.Remove(old.POC)
		evicted, didEvict = old.POC, true
	}
	f.KeepInDPB = true
	d.frames = append(d.frames, f)
	return evicted, didEvict
}

// Contains reports whether poc currently has a DPB entry.
func (d *DPB) Contains(poc aec.POC) bool {
	return d.Find(poc) != nil
}
