package scd

import "errors"

// ErrConfig is returned when SCD is asked to operate over mismatched
// plane dimensions or with no codec configured; SCD is otherwise
// infallible on well-formed input and never retries.
var ErrConfig = errors.New("scd: config error")
