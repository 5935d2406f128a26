// Copyright 2026 The Airlock Authors
// SPDX-License-Identifier: Apache-2.0

package airlock

import "encoding/json"

// Response kinds carried in event frames.
const (
	responsePoke      = "poke"
	responseSubscribe = "subscribe"
	responseDiff      = "diff"
	responseQuit      = "quit"
)

// Event is one decoded frame from the channel's event stream. Events
// are ephemeral: the worker decodes them, Dispatch routes them, and
// nothing retains them afterwards.
type Event struct {
	// StreamSeq is the server-assigned sequence number from the SSE
	// id field, increasing per stream.
	StreamSeq uint64 `json:"-"`

	// ID correlates the event back to the message id of the outbound
	// command it responds to. For diff events this is the id the
	// subscribe command was sent with.
	ID uint64 `json:"id"`

	// Response discriminates the frame kind: "poke" and "subscribe"
	// are command acks, "diff" carries subscription data, "quit" tells
	// the client a subscription ended server-side.
	Response string `json:"response"`

	// JSON is the diff payload, preserved verbatim.
	JSON json.RawMessage `json:"json,omitempty"`

	// OK is set on positive acks.
	OK string `json:"ok,omitempty"`

	// Err carries the ship's error text on negative acks.
	Err string `json:"err,omitempty"`
}

// Outbound channel commands. Every command PUT to the channel endpoint
// is a JSON array of these objects, each with a channel-unique id.

type pokeAction struct {
	ID     uint64 `json:"id"`
	Action string `json:"action"` // "poke"
	Ship   string `json:"ship"`
	App    string `json:"app"`
	Mark   string `json:"mark"`
	JSON   any    `json:"json"`
}

type subscribeAction struct {
	ID     uint64 `json:"id"`
	Action string `json:"action"` // "subscribe"
	Ship   string `json:"ship"`
	App    string `json:"app"`
	Path   string `json:"path"`
}

type unsubscribeAction struct {
	ID     uint64 `json:"id"`
	Action string `json:"action"` // "unsubscribe"
	// Subscription is the message id the subscription was created
	// with, telling the ship which flow to tear down.
	Subscription uint64 `json:"subscription"`
}

type deleteAction struct {
	ID     uint64 `json:"id"`
	Action string `json:"action"` // "delete"
}
