package domain

import (
	"errors"
	"fmt"
)

// Client-observable failure taxonomy. The request pipeline maps HTTP
// statuses onto these sentinels; store actions branch with [errors.Is].
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrServer       = errors.New("server error")
	ErrNetwork      = errors.New("network error")
	ErrValidation   = errors.New("validation error")
)

// ErrTimeout is a client-side deadline expiry, a special case of ErrNetwork.
var ErrTimeout = fmt.Errorf("%w: request timed out", ErrNetwork)

// ErrRequestSuperseded settles a call that was cancelled because an
// identical request was issued while it was still in flight.
var ErrRequestSuperseded = errors.New("request superseded by duplicate")

// APIError carries the server error envelope for statuses the pipeline
// does not classify onto a sentinel.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d", e.Status)
}
