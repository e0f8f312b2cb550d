package config

import "errors"

// ErrInvalidParam is returned by Validate when the configuration is
// rejected (spec.md §7 AEncError::InvalidParam).
var ErrInvalidParam = errors.New("aenc/config: invalid parameter")
