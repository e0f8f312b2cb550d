package brc

// slidingWindow is a circular buffer of recent frame sizes bounding the
// next frame's allowed size, grounded on AVGBitrate in the reference
// bitrate controller (spec.md §4.4.3).
type slidingWindow struct {
	maxWinBits    uint32
	maxWinBitsLim uint32
	avgBitPerFrame uint32

	currPos       uint32
	lastFrameOrder uint32
	haveFrame      bool
	bLA            bool

	buf []uint32
}

func newSlidingWindow(windowSize, maxBitPerFrame, avgBitPerFrame uint32, bLA bool) *slidingWindow {
	if windowSize == 0 {
		windowSize = 1
	}
	if avgBitPerFrame > maxBitPerFrame {
		avgBitPerFrame = maxBitPerFrame
	}
	s := &slidingWindow{
		maxWinBits:     maxBitPerFrame * windowSize,
		avgBitPerFrame: avgBitPerFrame,
		currPos:        windowSize - 1,
		bLA:            bLA,
		buf:            make([]uint32, windowSize),
	}
	seed := maxBitPerFrame / 3
	for i := range s.buf {
		s.buf[i] = seed
	}
	s.maxWinBitsLim = s.maxWinBitsLimFloor()
	return s
}

func (s *slidingWindow) windowSize() uint32 { return uint32(len(s.buf)) }

// step is the per-adjustment unit both the widen and contract paths use.
func (s *slidingWindow) step() uint32 {
	div := uint32(2)
	if s.bLA {
		div = 4
	}
	return (s.maxWinBits/s.windowSize() - s.avgBitPerFrame) / div
}

// maxWinBitsLimFloor is the lowest the limit is ever allowed to contract to.
func (s *slidingWindow) maxWinBitsLimFloor() uint32 {
	return s.maxWinBits - s.step()*s.windowSize()
}

// lastFrameBits sums the most recent numFrames slots, most-recent first,
// optionally flooring each at a third of the average (skip-frame guard).
func (s *slidingWindow) lastFrameBits(numFrames uint32, checkSkip bool) uint32 {
	n := s.windowSize()
	if numFrames < n {
		n = numFrames
	}
	var size uint32
	for i := uint32(0); i < n; i++ {
		frameSize := s.buf[(s.currPos+s.windowSize()-i)%s.windowSize()]
		if checkSkip && frameSize < s.avgBitPerFrame/3 {
			frameSize = s.avgBitPerFrame / 3
		}
		size += frameSize
	}
	return size
}

func clampU32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// update records sizeInBits for encOrder and re-tunes maxWinBitsLim:
// widens toward the hard maximum on panic/scene-change, otherwise
// contracts by step() once a recode-free success allows it.
func (s *slidingWindow) update(sizeInBits, encOrder uint32, bPanic, bSH bool, recode uint32) {
	nextFrame := !s.haveFrame || encOrder != s.lastFrameOrder
	if nextFrame {
		s.haveFrame = true
		s.lastFrameOrder = encOrder
		s.currPos = (s.currPos + 1) % s.windowSize()
	}
	s.buf[s.currPos] = sizeInBits

	if !nextFrame {
		return
	}

	switch {
	case bPanic || bSH:
		s.maxWinBitsLim = clampU32((s.lastFrameBits(s.windowSize(), false)+s.maxWinBits)/2, s.maxWinBitsLimFloor(), s.maxWinBits)
	case recode > 0:
		s.maxWinBitsLim = clampU32(s.lastFrameBits(s.windowSize(), false)+s.step()/2, s.maxWinBitsLim, s.maxWinBits)
	default:
		step := s.step()
		if s.maxWinBitsLim > s.maxWinBitsLimFloor()+step &&
			s.maxWinBitsLim-step > s.lastFrameBits(s.windowSize()-1, false)+sizeInBits {
			s.maxWinBitsLim -= step
		}
	}
}

// maxFrameSize is the largest size the next frame may take under the
// current window occupancy and controller state.
func (s *slidingWindow) maxFrameSize(bPanic, bSH bool, recode uint32) uint32 {
	winBits := s.lastFrameBits(s.windowSize()-1, !bPanic)

	limit := s.maxWinBitsLim
	if bSH {
		limit = (s.maxWinBits + s.maxWinBitsLim) / 2
	}
	if bPanic {
		limit = s.maxWinBits
	}
	if v := limit + recode*s.step()/2; v < s.maxWinBits {
		limit = v
	} else {
		limit = s.maxWinBits
	}

	if winBits >= s.maxWinBitsLim {
		if s.maxWinBits > winBits {
			if d := s.maxWinBits - winBits; d > 1 {
				return d
			}
		}
		return 1
	}
	return limit - winBits
}

// budget is the remaining bit allowance over the trailing numFrames slots.
func (s *slidingWindow) budget(numFrames uint32) int32 {
	if numFrames > s.windowSize() {
		numFrames = s.windowSize()
	}
	return int32(s.maxWinBitsLim) - int32(s.lastFrameBits(s.windowSize()-numFrames, true))
}
