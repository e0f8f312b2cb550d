package aenc

import "github.com/pkg/errors"

// ErrInternal marks a broken controller invariant (malformed mini-GOP
// size or index, unknown frame type at emit, frames still pending or an
// LTR still held in the DPB at Close) —
// unrecoverable, per spec.md §7. Carries a stack trace via pkg/errors
// since these indicate a programming error, not a runtime condition.
var ErrInternal = errors.New("aenc: internal invariant violated")
