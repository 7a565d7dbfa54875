package prospect

import (
	"errors"
	"fmt"

	"prospect-engine/internal/domain"
)

var (
	ErrLaunchFailed     = errors.New("prospect: launch failed")
	ErrPollFailed       = errors.New("prospect: poll failed")
	ErrMalformedPayload = errors.New("prospect: malformed payload")
)

// APIError is a request that could not be completed: a non-2xx response or a
// transport failure (StatusCode 0).
type APIError struct {
	Op         string
	Domain     domain.Domain
	Handle     domain.JobHandle
	StatusCode int
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	target := string(e.Domain)
	if e.Handle != "" {
		target = string(e.Handle)
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("prospect %s %s: %v", e.Op, target, e.Err)
	}
	return fmt.Sprintf("prospect %s %s: http status %d: %s", e.Op, target, e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() []error {
	sentinel := ErrPollFailed
	if e.Op == opLaunch {
		sentinel = ErrLaunchFailed
	}
	if e.Err != nil {
		return []error{sentinel, e.Err}
	}
	return []error{sentinel}
}

// PayloadError is a 2xx response whose body does not have the expected shape.
type PayloadError struct {
	Op     string
	Handle domain.JobHandle
	Reason string
	Err    error
}

func (e *PayloadError) Error() string {
	msg := fmt.Sprintf("prospect %s: malformed payload", e.Op)
	if e.Handle != "" {
		msg += " for job " + string(e.Handle)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PayloadError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformedPayload, e.Err}
	}
	return []error{ErrMalformedPayload}
}
