// Copyright 2026 The Airlock Authors
// SPDX-License-Identifier: Apache-2.0

// Package airlock implements the client side of Urbit's HTTP interface:
// authenticated request/response calls plus a long-lived, server-push
// event stream multiplexing pokes and subscriptions over one channel.
//
// The package provides three core types. [Client] is an unauthenticated
// ship client holding the ship URL and HTTP transport; [Client.Login]
// exchanges the ship's +code for a session cookie and returns a
// [Session]. Sessions are lightweight (a pointer to the parent Client
// plus the cookie in mmap-backed secret.Buffer memory) and are shared
// read-only by every Channel opened from them; callers must call
// Session.Close to release the protected memory.
//
// [Session.OpenChannel] establishes a [Channel]: a server-assigned
// session identified by a generated UID, over which outbound commands
// travel as JSON command arrays PUT to /~/channel/<uid>, each carrying
// a strictly increasing message id. A background worker goroutine holds
// the channel's server-sent event stream open, decodes each frame, and
// hands it to an unbounded FIFO queue. Delivery is pull-based: the
// caller invokes [Channel.Dispatch] to drain the queue and route diff
// events into the buffers of the [Subscription] values that requested
// them, then reads them back with [Subscription.PopMessage].
//
// A Channel is owned by a single caller goroutine. Poke, Subscribe,
// Unsubscribe, Dispatch, and Delete must not be called concurrently;
// only the ingestion worker runs in the background, and it shares
// nothing with the caller but the handoff queue. Events for
// subscriptions that no longer exist are silently dropped — an
// unsubscribe can always race with frames already in flight, so an
// unmatched event is a fact of the protocol, not an error.
//
// Transport failures surface synchronously from the operation that hit
// them, as [*TransportError] for non-2xx responses or a wrapped
// connection error otherwise. The event stream has no caller to report
// to, so its terminal condition is exposed through
// [Channel.StreamDone] and [Channel.StreamErr] instead of being
// swallowed: a nil StreamErr after StreamDone means the ship closed the
// stream normally.
package airlock
