// Copyright 2026 The Airlock Authors
// SPDX-License-Identifier: Apache-2.0

package airlock

import (
	"errors"
	"fmt"
)

// ErrFailedLogin indicates the ship rejected the +code at /~/login, or
// the response carried no usable session cookie.
var ErrFailedLogin = errors.New("airlock: login failed")

// ErrNoSubscription indicates a lookup for an (app, path) pair with no
// matching subscription on the channel. Distinct from a transport
// failure: the channel state was inspected and nothing matched.
var ErrNoSubscription = errors.New("airlock: no such subscription")

// ErrChannelClosed indicates an operation on a channel after Delete.
var ErrChannelClosed = errors.New("airlock: channel is closed")

// TransportError represents a non-2xx HTTP response from the ship.
// Callers can use errors.As to extract the status:
//
//	var transportErr *airlock.TransportError
//	if errors.As(err, &transportErr) {
//	    if transportErr.StatusCode == http.StatusForbidden { ... }
//	}
//
// Connection-level failures (refused, reset, DNS) are returned as
// wrapped net errors rather than TransportError — there is no status
// code to report.
type TransportError struct {
	// Method and Path identify the request that failed.
	Method string
	Path   string
	// StatusCode is the HTTP status of the response.
	StatusCode int
	// Body is the response body, for diagnostics. Ships report channel
	// errors as plain text, not structured JSON.
	Body string
}

func (e *TransportError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("airlock: %s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("airlock: %s %s: unexpected status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// StreamError represents abnormal termination of the channel's event
// stream: a lost connection, a non-200 stream response, or broken SSE
// framing. Normal closure (ship shut the channel, caller cancelled) is
// not a StreamError.
type StreamError struct {
	// Op describes what the worker was doing ("open", "read").
	Op  string
	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("airlock: event stream %s: %v", e.Op, e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }
