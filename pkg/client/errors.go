package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrShutdownTimeout is returned by Shutdown when the queue did not drain in time.
	ErrShutdownTimeout = errors.New("shutdown timed out before queue drained")

	// ErrClientClosed is the cause attached to tasks enqueued after shutdown began.
	ErrClientClosed = errors.New("client is shut down")

	// ErrNoCredential is the cause attached to tasks when no token is configured.
	ErrNoCredential = errors.New("no API credential available")
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 or exhausted-quota responses. These
	// are retried internally and only surface in metrics and logs.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents transport failures (DNS, connect, timeout).
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassDecode represents a 2xx body that did not match the expected shape.
	ErrorClassDecode ErrorClass = "decode"

	// ErrorClassShutdown represents tasks rejected because the client is closing.
	ErrorClassShutdown ErrorClass = "shutdown"

	// ErrorClassInternal represents a panic recovered while running a task.
	ErrorClassInternal ErrorClass = "internal"
)

// APIError is the error form of a Failure.
type APIError struct {
	Status Status
	Class  ErrorClass
	Detail string
	Err    error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("idlemmo %s error (status %d): %s: %v",
			e.Class, int(e.Status), e.Detail, e.Err)
	}
	return fmt.Sprintf("idlemmo %s error (status %d): %s",
		e.Class, int(e.Status), e.Detail)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == StatusNotFound
}
