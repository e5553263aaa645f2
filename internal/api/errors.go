package api

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ValidationError is a local pre-flight failure: the request was never sent.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ServerError carries a non-success response. Message is the backend's error
// string and is surfaced to the user verbatim.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string { return e.Message }

// NetworkError means the request could not complete at all: offline, DNS
// failure, connection refused. Distinct from a server-reported error.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("%s: network error: %v", e.Op, e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// TimeoutError is the NetworkError subtype for requests that exceeded their
// deadline, notably large-file uploads hitting the configured upload timeout.
type TimeoutError struct {
	Op  string
	Err error
}

func (e *TimeoutError) Error() string { return fmt.Sprintf("%s: timed out: %v", e.Op, e.Err) }
func (e *TimeoutError) Unwrap() error { return e.Err }

// classify converts a transport error into the taxonomy. Timeouts and
// context deadlines become TimeoutError, everything else NetworkError.
func classify(op string, err error) error {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return &TimeoutError{Op: op, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Op: op, Err: err}
	}
	return &NetworkError{Op: op, Err: err}
}
