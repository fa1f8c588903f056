package services

import "errors"

var (
	// ErrNotFound is wrapped with the missing entity, e.g. "mapping 7: not found".
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput covers request values the services reject before any
	// store call, such as an unsupported dialect.
	ErrInvalidInput = errors.New("invalid input")
)
