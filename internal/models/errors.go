package models

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration      = errors.New("configuration error")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrFieldAbsent        = errors.New("field not present in snapshot")
)

// ConfigurationError reports an endpoint configuration that cannot produce a
// request URL. It matches ErrConfiguration with errors.Is.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// TransportError is a non-2xx response or a failed round trip. Status is 0
// when no response was received.
type TransportError struct {
	Status     int
	StatusText string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("transport error: %s", e.StatusText)
	}
	return fmt.Sprintf("transport error (status %d): %s", e.Status, e.StatusText)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MalformedResponseError is an unparsable body or a payload lacking the
// section an operation needs.
type MalformedResponseError struct {
	Section string
	Err     error
}

func (e *MalformedResponseError) Error() string {
	if e.Section != "" && e.Err == nil {
		return fmt.Sprintf("malformed response: missing %s", e.Section)
	}
	if e.Section != "" {
		return fmt.Sprintf("malformed response (%s): %v", e.Section, e.Err)
	}
	return fmt.Sprintf("malformed response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}
