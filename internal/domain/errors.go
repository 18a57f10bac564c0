package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrNoHotels      = errors.New("at least one hotel is required")
	ErrNotConfigured = errors.New("llm: api key not configured")
	ErrTransport     = errors.New("llm: transport failure")
)

// TransportError reports a failed LLM call (network, auth, quota, bad request).
// errors.Is(err, ErrTransport) holds for every TransportError.
type TransportError struct {
	Provider string
	Status   int // 0 when no HTTP response was received
	Err      error
}

func (e *TransportError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: request failed with status %d: %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: request failed: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }
