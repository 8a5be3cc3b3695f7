package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted    = errors.New("service not started")
	ErrNoBandLookup  = errors.New("no salary band lookup configured")
	ErrBatchTooLarge = errors.New("batch too large")
)
