package config

import "errors"

// ErrInvalidParam marks a rejected BRC configuration.
var ErrInvalidParam = errors.New("brc/config: invalid parameter")
