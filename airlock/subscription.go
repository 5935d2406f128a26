// Copyright 2026 The Airlock Authors
// SPDX-License-Identifier: Apache-2.0

package airlock

import "github.com/urbit-foundation/airlock/lib/ref"

// Subscription is one standing (app, path) registration on a channel.
// It owns a FIFO buffer of delivered diff payloads awaiting
// consumption: Dispatch appends at the tail, PopMessage removes from
// the head. Each Subscription belongs to exactly one Channel and is
// touched only by that Channel's owning goroutine.
type Subscription struct {
	app  ref.App
	path ref.SubscriptionPath

	// id is the message id the subscribe command was sent with; diff
	// frames carry it to correlate back here.
	id uint64

	messages []string
}

// App returns the agent this subscription listens to.
func (s *Subscription) App() ref.App { return s.app }

// Path returns the subscription path.
func (s *Subscription) Path() ref.SubscriptionPath { return s.path }

// ID returns the message id the subscription was created with.
func (s *Subscription) ID() uint64 { return s.id }

// Pending returns the number of buffered payloads awaiting PopMessage.
func (s *Subscription) Pending() int { return len(s.messages) }

// PopMessage removes and returns the oldest buffered payload. The
// second return is false when the buffer is empty — empty now, not
// permanently exhausted: future Dispatch passes may append more.
func (s *Subscription) PopMessage() (string, bool) {
	if len(s.messages) == 0 {
		return "", false
	}
	head := s.messages[0]
	s.messages = s.messages[1:]
	return head, true
}

// deliver appends a payload at the tail of the buffer. Called only by
// Dispatch, in stream-arrival order.
func (s *Subscription) deliver(payload string) {
	s.messages = append(s.messages, payload)
}
