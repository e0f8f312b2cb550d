package aenc

import (
	"fmt"

	"github.com/ausocean/aec/aec"
)

// gopTableIdx maps a mini-GOP size (1..16) to its pyramid-template row,
// copied verbatim from the reference controller.
var gopTableIdx = [17]uint32{0, 0, 1, 2, 2, 3, 3, 3, 3, 4, 4, 4, 4, 4, 4, 4, 4}

// pyramidLayer is the fixed B-pyramid template per mini-GOP-type row,
// copied verbatim.
var pyramidLayer = [5][16]uint32{
	{0},
	{1, 0},
	{2, 1, 2, 0},
	{3, 2, 3, 1, 3, 2, 3, 0},
	{4, 3, 4, 2, 4, 3, 4, 1, 4, 3, 4, 2, 4, 3, 4, 0},
}

// miniGopType is the nominal power-of-two mini-GOP type per template row.
var miniGopType = [5]uint32{1, 2, 4, 8, 16}

// pPyramid is the P-pyramid layer template, copied verbatim.
var pPyramid = [8]uint32{5, 4, 3, 2, 4, 3, 2, 1}

// markFrameInMiniGOP assigns mini-GOP size/index, pyramid layer, type
// (if undecided) and P-pyramid bookkeeping to f, per
// AEnc::MarkFrameInMiniGOP.
func markFrameInMiniGOP(f *InternalFrame, miniGopSize, miniGopIdx uint32) error {
	if miniGopSize == 0 || int(miniGopSize) >= len(gopTableIdx) {
		return fmt.Errorf("%w: wrong mini-GOP size %d", ErrInternal, miniGopSize)
	}
	if miniGopIdx >= miniGopSize {
		return fmt.Errorf("%w: wrong mini-GOP index %d (size %d)", ErrInternal, miniGopIdx, miniGopSize)
	}

	f.MiniGopSize = miniGopSize
	f.MiniGopIdx = miniGopIdx
	tblIdx := gopTableIdx[miniGopSize]
	f.MiniGopType = miniGopType[tblIdx]

	if miniGopIdx == miniGopSize-1 {
		f.PyramidLayer = 0
	} else {
		f.PyramidLayer = pyramidLayer[tblIdx][miniGopIdx]
	}

	if f.Type == aec.Undef {
		if f.PyramidLayer == 0 {
			f.Type = aec.P
		} else {
			f.Type = aec.B
		}
	}

	switch {
	case f.Type == aec.I || f.Type == aec.IDR:
		f.PPyramidLayer = 0
		f.PPyramidIdx = 0
	case f.PrevType != aec.B && f.Type == aec.P:
		if f.PPyramidIdx > 6 {
			f.PPyramidIdx = 0
		} else {
			f.PPyramidIdx++
		}
		f.PPyramidLayer = pPyramid[f.PPyramidIdx]
	}

	return nil
}

// commonMiniGopSize scans frame_buffer from index 1 to find where the
// "common" mini-GOP boundary falls, per spec.md §4.3.3: stop at the
// first IDR/DUMMY/scene-change-not-StrictI frame (truncate before it) or
// at the first I frame (include it), capped at maxSize.
func commonMiniGopSize(buf []*InternalFrame, maxSize uint32, strictIFrame bool) uint32 {
	limit := int(maxSize)
	if limit > len(buf) {
		limit = len(buf)
	}
	for i := 1; i < limit; i++ {
		f := buf[i]
		switch {
		case f.Type == aec.IDR || f.Type == aec.Dummy:
			return uint32(i)
		case f.Type == aec.I:
			if strictIFrame {
				return uint32(i + 1)
			}
			return uint32(i + 1)
		case f.SceneChanged && !strictIFrame:
			return uint32(i)
		}
	}
	return uint32(limit)
}

// agopMiniGopSize evaluates the AGOP classifier over frame_buffer,
// per spec.md §4.3.3: for each candidate size s from maxSize down to 2
// (halving), count frames in the next s slots whose agop_hint >= s
// ("full") vs == s/2 ("half"); accept s when full+half strictly exceeds
// s/2, and (for s<=8) when full>half. Falls back to 1.
func agopMiniGopSize(buf []*InternalFrame, maxSize uint32, enabled bool) uint32 {
	if !enabled {
		return maxSize
	}
	for s := maxSize; s >= 2; s /= 2 {
		if int(s) > len(buf) {
			continue
		}
		var full, half int
		for i := 0; i < int(s); i++ {
			switch {
			case buf[i].AgopHint >= s:
				full++
			case buf[i].AgopHint == s/2:
				half++
			}
		}
		if full+half <= int(s)/2 {
			continue
		}
		if s <= 8 && full <= half {
			continue
		}
		return s
	}
	return 1
}
