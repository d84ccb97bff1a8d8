package fares

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned for bad or missing input.
	ErrValidation = errors.New("invalid input")
	// ErrUpstream is returned when the fare-matrix API is unreachable or fails.
	ErrUpstream = errors.New("upstream request failed")
	// ErrNotFound is returned when the upstream has no fares for the route.
	ErrNotFound = errors.New("no flights found")
	// ErrData is returned when the upstream payload is unusable.
	ErrData = errors.New("malformed fare data")
)

// ValidationError describes a rejected request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// maxErrorBody caps how much of an upstream body Error includes.
const maxErrorBody = 512

// UpstreamError carries the diagnostics of a failed upstream call.
// Either StatusCode/Body or Err is set.
type UpstreamError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream request failed: %v", e.Err)
	}
	body := e.Body
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "...(truncated)"
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, body)
}

// Is reports whether target is ErrUpstream.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Details returns the text worth echoing to a client. Body is not truncated.
func (e *UpstreamError) Details() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Body
}
