// Copyright 2026 The Airlock Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"time"
)

// FakeClock is a Clock with manually controlled time. Create with
// Fake(), advance with Advance or SetTime. Timers created by After fire
// when the fake time passes their deadline — never from wall-clock
// progression.
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	waiters []*fakeWaiter
}

type fakeWaiter struct {
	deadline time.Time
	ch       chan time.Time
}

// Fake returns a FakeClock starting at a fixed, arbitrary epoch.
// The epoch is deliberately not time.Now() so that tests relying on
// wall-clock time fail immediately rather than intermittently.
func Fake() *FakeClock {
	return &FakeClock{
		now: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// After returns a channel that receives the fake time once it passes
// the deadline now+d. If d <= 0, the channel receives immediately.
func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- c.now
		return ch
	}
	c.waiters = append(c.waiters, &fakeWaiter{deadline: c.now.Add(d), ch: ch})
	return ch
}

// Sleep blocks until the fake time advances past now+d.
func (c *FakeClock) Sleep(d time.Duration) {
	<-c.After(d)
}

// Advance moves the fake time forward by d, firing any timers whose
// deadlines are reached.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.setTimeLocked(c.now.Add(d))
	c.mu.Unlock()
}

// SetTime moves the fake time to t, firing any timers whose deadlines
// are reached. Moving time backwards is allowed; no timers fire.
func (c *FakeClock) SetTime(t time.Time) {
	c.mu.Lock()
	c.setTimeLocked(t)
	c.mu.Unlock()
}

// setTimeLocked is the Advance/SetTime core; callers hold c.mu.
func (c *FakeClock) setTimeLocked(t time.Time) {
	c.now = t
	remaining := c.waiters[:0]
	for _, waiter := range c.waiters {
		if !waiter.deadline.After(t) {
			waiter.ch <- t
			continue
		}
		remaining = append(remaining, waiter)
	}
	c.waiters = remaining
}

var _ Clock = (*FakeClock)(nil)
