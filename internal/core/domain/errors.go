package domain

import "errors"

// Error kinds surfaced by the positioning core. Algorithm-internal
// failures (singularities, non-convergence) never cross the port as
// errors; they are collected as per-algorithm failure reasons.
var (
	// ErrInvalidInput covers null/empty scans and inputs below an
	// algorithm's minimum. Reported as 4xx, never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoMatchingAPs means no scan matched an ACTIVE database record.
	ErrNoMatchingAPs = errors.New("no scans matched a known access point")

	// ErrNoPosition means the selector returned no algorithm or every
	// finalist failed to produce a valid position.
	ErrNoPosition = errors.New("no position could be determined")
)
