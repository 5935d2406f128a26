// Copyright 2026 The Airlock Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
)

// IsExpectedCloseError reports whether err is a normal termination of a
// long-lived connection: EOF, closed connection, cancelled context,
// broken pipe, or connection reset. The channel event stream ends this
// way when the ship closes the channel (after a delete directive) or
// when the caller cancels the stream's context — neither is a failure.
//
// Servers that tear the socket down without a clean shutdown produce
// ECONNRESET and EPIPE instead of EOF. All of these are expected and
// should not be reported as stream errors.
func IsExpectedCloseError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.EPIPE || errno == syscall.ECONNRESET
	}
	return false
}
