package ai

import (
	"context"
	"errors"
	"fmt"
)

// Completer sends one prompt to a chat completion endpoint.
type Completer interface {
	// Complete returns the first choice's content verbatim.
	// Errors are *UpstreamError or *TransportError.
	Complete(ctx context.Context, credential, prompt string) (string, error)
}

// ErrNoChoices is the upstream failure for a 2xx reply without choices.
var ErrNoChoices = errors.New("no completion returned")

// UpstreamError is a failure reported by the endpoint itself: a non-2xx
// status, an error object, no choices, or an unreadable body.
type UpstreamError struct {
	Status  int
	Message string // upstream error.message; empty when none was given
}

// Error implements error.
func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream status %d", e.Status)
	}
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Message)
}

// TransportError is a failure to reach the endpoint or read its reply.
type TransportError struct {
	Err error
}

// Error implements error.
func (e *TransportError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying network error.
func (e *TransportError) Unwrap() error {
	return e.Err
}
