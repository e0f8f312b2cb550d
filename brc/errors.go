package brc

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
)

// ErrOutOfOrder marks a call made with a POC not greater than the last one
// processed (POC 0 is always accepted), violating the strictly-increasing-POC contract (spec.md §5).
var ErrOutOfOrder = errors.New("brc: frame out of POC order")

// ErrUnknownFrame marks an Update call for a POC GetFrameCtrl never saw.
var ErrUnknownFrame = errors.New("brc: update for unknown frame")

// ErrInternal marks a broken controller invariant (a requantized QP
// outside the codec's own [min,max] range) — unrecoverable, carrying a
// stack trace via pkg/errors since it indicates a programming error
// rather than an encoder-side condition, mirroring aenc.ErrInternal.
var ErrInternal = pkgerrors.New("brc: internal invariant violated")
