package errx

import (
	"fmt"
)

// maxBodySnippet bounds how much of an upstream body is kept for diagnostics.
const maxBodySnippet = 2048

// UpstreamError describes a failed call to the reasoning API. StatusCode and
// Body are populated when a response was received.
type UpstreamError struct {
	StatusCode int
	Body       string
	Err        error
}

// NewUpstreamError builds an UpstreamError, truncating the body snippet.
func NewUpstreamError(status int, body []byte, err error) *UpstreamError {
	snippet := string(body)
	if len(snippet) > maxBodySnippet {
		snippet = snippet[:maxBodySnippet]
	}
	return &UpstreamError{StatusCode: status, Body: snippet, Err: err}
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%s: status %d: %v", ErrUpstreamCallFailed, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d: %s", ErrUpstreamCallFailed, e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", ErrUpstreamCallFailed, e.Err)
	default:
		return ErrUpstreamCallFailed.Error()
	}
}

// Unwrap exposes the transport error, e.g. context.Canceled.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Is makes every UpstreamError match ErrUpstreamCallFailed.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamCallFailed
}
