// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"errors"
	"fmt"
)

// StatusError is returned when the final response has a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// TransportError is returned when no response was received at all: DNS
// failure, refused connection, timeout, or a broken body read.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsFetchError reports whether err means "no usable network result", as
// opposed to a page that was fetched but lacks the expected content.
func IsFetchError(err error) bool {
	var se *StatusError
	var te *TransportError
	return errors.As(err, &se) || errors.As(err, &te)
}
