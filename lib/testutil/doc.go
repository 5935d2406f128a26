// Copyright 2026 The Airlock Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for airlock packages.
//
// [RequireReceive] and [RequireClosed] encapsulate the timeout safety
// valve pattern (select with time.After fallback) so that individual
// tests do not need direct time.After calls. Stream tests use these to
// bound waits on the event worker's done channel.
//
// [UniqueID] generates monotonically increasing identifiers for test
// disambiguation. Use it instead of time.Now() when tests need unique
// payloads or subscription paths.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no airlock-internal dependencies.
package testutil
