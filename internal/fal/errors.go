package fal

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("fal: api key is required")

// SubmitError reports that the provider rejected a queue submission. It
// carries the provider's HTTP status and raw error body so callers can
// translate common cases into actionable messages.
type SubmitError struct {
	StatusCode int
	Body       string
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("fal: submit rejected with status %d: %s", e.StatusCode, e.Body)
}

// UserMessage translates the rejection into something an end user can act
// on. The raw 422 body talks about tensor shapes and is useless to them.
func (e *SubmitError) UserMessage() string {
	if e.StatusCode == 422 {
		return "Image validation failed. Please ensure your image is under 6000px width and in a supported format (JPEG, PNG, WebP)."
	}
	return "Submission failed"
}

// ExecutionError reports that a synchronous job ran and failed on the
// provider side. This is a terminal state for the request, not retried.
type ExecutionError struct {
	StatusCode int
	Body       string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("fal: execution failed with status %d: %s", e.StatusCode, e.Body)
}

// StatusError reports a failure while checking job status. Callers treat it
// as "unknown, retry later" rather than fatal: the job may still be running.
type StatusError struct {
	Err error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fal: status check failed: %v", e.Err)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}
