package project

import "errors"

var (
	ErrInvalidDescriptor = errors.New("invalid project descriptor")
	ErrUnknownBackend    = errors.New("unknown backend")
)
