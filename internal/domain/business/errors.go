package business

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork indicates the request could not complete.
	ErrNetwork = errors.New("remote api unreachable")
	// ErrServer indicates the API answered with a non-success status.
	ErrServer = errors.New("remote api returned an error status")
	// ErrShape indicates the response body was not in the expected form.
	ErrShape = errors.New("unexpected response shape")
)

// StatusError carries the HTTP status of a failed call. It matches ErrServer.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Code)
}

func (e *StatusError) Is(target error) bool { return target == ErrServer }
