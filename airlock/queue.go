// Copyright 2026 The Airlock Authors
// SPDX-License-Identifier: Apache-2.0

package airlock

import "sync"

// eventQueue is the handoff point between the ingestion worker and the
// channel owner: unbounded, strictly FIFO, safe for one producer (the
// worker's push) and one consumer (Dispatch's drain) without further
// coordination.
//
// No capacity bound and no backpressure: an owner that never calls
// Dispatch accumulates events without limit. That is the accepted
// trade-off for a client-scale workload — bounding the queue would
// force a drop-or-block policy onto the worker, which has no good
// answer for either.
type eventQueue struct {
	mu     sync.Mutex
	events []Event
}

// push appends an event at the tail.
func (q *eventQueue) push(event Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, event)
}

// drain removes and returns every queued event, in arrival order.
// Non-blocking: returns exactly what was queued at call time, which
// may be nothing.
func (q *eventQueue) drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	drained := q.events
	q.events = nil
	return drained
}
