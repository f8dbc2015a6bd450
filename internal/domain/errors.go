package domain

import "errors"

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError carries a caller-facing message for invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Is allows errors.Is() to match against ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// UpstreamReason classifies why a completion call failed.
type UpstreamReason string

const (
	UpstreamTimeout   UpstreamReason = "timeout"
	UpstreamNetwork   UpstreamReason = "network"
	UpstreamStatus    UpstreamReason = "status"
	UpstreamMalformed UpstreamReason = "malformed"
)

// UpstreamError represents a failed call to the completion API. The whole
// request fails with it; no partial result is ever carried alongside.
// Reason distinguishes timeouts from rejected requests and malformed payloads
// so callers and operators can tell retry-worthy failures apart.
type UpstreamError struct {
	Reason  UpstreamReason
	Message string
}

func (e *UpstreamError) Error() string { return e.Message }
