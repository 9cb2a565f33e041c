package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "redis key not found"
	// AnalysisErrorMessage is returned to clients when the reasoning call fails.
	AnalysisErrorMessage = "An error occurred during analysis."
	// MissingImageMessage is returned when an analyze request carries no image.
	MissingImageMessage = "No image URL provided."
	// NoSessionMessage is returned when a request needs a session that does not exist.
	NoSessionMessage = "No user session found"
)

var (
	// ErrMissingImageReference rejects analyze input without an image reference.
	ErrMissingImageReference = errors.New("missing image reference")
	// ErrEmptyUpstreamResponse reports a reasoning response that carried no choices.
	ErrEmptyUpstreamResponse = errors.New("empty upstream response")
	// ErrUpstreamCallFailed reports a transport, status or decoding failure
	// talking to the reasoning API.
	ErrUpstreamCallFailed = errors.New("upstream call failed")
	// ErrSessionNotFound reports an unknown or expired session.
	ErrSessionNotFound = errors.New("session not found")
)

// AppError wraps an underlying error with an HTTP status and safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// ToAppError maps any error onto the AppError a client is allowed to see.
// AppErrors already in the chain are returned as is.
func ToAppError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrMissingImageReference):
		return New(err, http.StatusBadRequest, MissingImageMessage)
	case errors.Is(err, ErrSessionNotFound):
		return New(err, http.StatusUnauthorized, NoSessionMessage)
	case errors.Is(err, ErrEmptyUpstreamResponse), errors.Is(err, ErrUpstreamCallFailed):
		return New(err, http.StatusBadGateway, AnalysisErrorMessage)
	default:
		return New(err, http.StatusInternalServerError, SystemErrorMessage)
	}
}
