// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package fetcher

import (
	"errors"
	"fmt"
	"net/http"
)

// Action tags the operation a request was made for. It is carried on every
// APIError so callers can tell which call failed.
type Action string

// DefaultErrorMessage is used when an error response has no error field.
const DefaultErrorMessage = "Server Error"

var (
	// ErrNetwork wraps transport failures; there is no status code.
	ErrNetwork = errors.New("network error")
	// ErrInvalidSession is returned for a session value that is not a cookie
	// header.
	ErrInvalidSession = errors.New("invalid session cookie")
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Message    string
	Action     Action
	StatusCode int
}

func (e *APIError) Error() string {
	if e.Action == "" {
		return fmt.Sprintf("%s (%d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s (%d)", e.Action, e.Message, e.StatusCode)
}

// IsUnauthorized reports whether err is a 401 APIError.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// StatusCode returns the status of an APIError in err's chain, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
