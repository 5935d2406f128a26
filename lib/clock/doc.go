// Copyright 2026 The Airlock Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time for testability.
//
// Production code injects [Real]; tests inject [Fake] and drive time
// with [FakeClock.Advance] or [FakeClock.SetTime]. Code that needs the
// current time or a timer should accept a [Clock] parameter (or be a
// method on a struct with a Clock field) instead of calling the time
// package directly.
//
// This package has no airlock-internal dependencies.
package clock
