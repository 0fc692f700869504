package services

import "errors"

// ErrInvalidInput reports arguments rejected before any request is sent.
var ErrInvalidInput = errors.New("invalid input")
