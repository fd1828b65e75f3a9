package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a requested attachment, folder or mapping is absent
	NotFoundError struct {
		Message string
	}

	// InvalidInputError indicates missing taxonomy identifiers, an empty
	// query, or otherwise malformed input
	InvalidInputError struct {
		Message string
	}

	// RemoteUnavailableError indicates a remote-provider call failed or
	// credentials are missing
	RemoteUnavailableError struct {
		Message string
	}
)

// Error implementations
func (e *NotFoundError) Error() string          { return e.Message }
func (e *InvalidInputError) Error() string      { return e.Message }
func (e *RemoteUnavailableError) Error() string { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int          { return http.StatusNotFound }
func (e *InvalidInputError) StatusCode() int      { return http.StatusBadRequest }
func (e *RemoteUnavailableError) StatusCode() int { return http.StatusBadGateway }

// Is implementations so typed errors match their sentinels with errors.Is()
func (e *NotFoundError) Is(target error) bool          { return target == ErrNotFound }
func (e *InvalidInputError) Is(target error) bool      { return target == ErrInvalidInput }
func (e *RemoteUnavailableError) Is(target error) bool { return target == ErrRemoteUnavailable }

// Sentinel errors - use with errors.Is()
var (
	// ErrNotFound: requested attachment/folder/mapping absent.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput: missing required taxonomy identifiers or empty query.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRemoteUnavailable: remote provider call failed or credentials missing.
	ErrRemoteUnavailable = errors.New("remote storage unavailable")

	// ErrConflict: a row the caller tried to create already exists.
	ErrConflict = errors.New("already exists")

	// ErrStorageInconsistent: physical write succeeded but the metadata
	// insert failed (or vice versa). Triggers compensating cleanup in the
	// attachment store; never shown to API clients beyond a generic
	// failure status.
	ErrStorageInconsistent = errors.New("storage inconsistent")
)
