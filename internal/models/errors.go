package models

import (
	"errors"
	"fmt"
)

// ErrEmptyTrace is returned when a raw trace contains no spans. A trace
// without spans cannot be rendered; callers show it as "failed to load"
// without crashing the wider view.
var ErrEmptyTrace = errors.New("trace has no spans")

// MalformedPayloadError reports a structurally invalid backend payload.
// Missing fields are defaulted, not errored; this fires only when the
// payload shape itself is wrong (e.g. spans is not a list).
type MalformedPayloadError struct {
	Endpoint string
	Err      error
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("malformed payload from %s: %v", e.Endpoint, e.Err)
}

func (e *MalformedPayloadError) Unwrap() error { return e.Err }

// StatusError reports a non-2xx response from a backend read API.
type StatusError struct {
	Endpoint string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.Code, e.Endpoint)
}
