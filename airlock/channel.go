// Copyright 2026 The Airlock Authors
// SPDX-License-Identifier: Apache-2.0

package airlock

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/urbit-foundation/airlock/lib/ref"
)

// Channel is one logical session with a ship, multiplexing pokes and
// subscriptions over a single server-assigned endpoint. Outbound
// commands are PUT to /~/channel/<uid> as JSON command arrays; inbound
// events arrive on the channel's event stream, ingested by a background
// worker and routed by Dispatch.
//
// Every outbound command consumes exactly one message id, strictly
// increasing for the channel's lifetime (id 1 is consumed by the
// opening poke). Ids are allocated before the network call, so a
// failed request still consumes its id — the ship treats ids as
// idempotency keys and must never see one reused.
//
// A Channel is not safe for concurrent use by multiple goroutines. The
// subscription list and message buffers are touched only by the owning
// goroutine, during Subscribe, Unsubscribe, and Dispatch; the ingestion
// worker shares nothing with the owner but the handoff queue.
type Channel struct {
	session *Session
	uid     string
	logger  *slog.Logger

	// messageCounter allocates outbound message ids. Add(1) yields 1
	// for the opening poke and counts up from there.
	messageCounter atomic.Uint64

	// subscriptions in creation order. Not keyed: duplicate (app,
	// path) pairs are permitted and lookups take the first match.
	subscriptions []*Subscription

	queue  *eventQueue
	stream *streamWorker
	closed bool
}

// UID returns the channel's identifier, as used in its endpoint path.
func (c *Channel) UID() string {
	return c.uid
}

// path returns the channel's endpoint path on the ship.
func (c *Channel) path() string {
	return "/~/channel/" + c.uid
}

// nextMessageID allocates the next outbound message id. Ids are
// consumed by allocation, not by request success.
func (c *Channel) nextMessageID() uint64 {
	return c.messageCounter.Add(1)
}

// Poke sends a one-way command to an agent: the payload is delivered
// with the given mark, and the only feedback is an ack frame on the
// event stream (consumed by Dispatch). Does not retry. Returns a
// *TransportError or wrapped connection error on failure.
func (c *Channel) Poke(ctx context.Context, app ref.App, mark string, payload any) error {
	if c.closed {
		return ErrChannelClosed
	}

	action := pokeAction{
		ID:     c.nextMessageID(),
		Action: "poke",
		Ship:   c.session.ship.String(),
		App:    app.String(),
		Mark:   mark,
		JSON:   payload,
	}
	if err := c.sendActions(ctx, action); err != nil {
		return fmt.Errorf("airlock: poke %s failed: %w", app, err)
	}

	c.logger.Debug("poked agent", "uid", c.uid, "id", action.ID, "app", app, "mark", mark)
	return nil
}

// Subscribe registers for events from an agent at the given path and
// returns the message id the subscription was created with — the id
// that diff frames will carry to correlate back to it. On failure the
// channel's subscription list is left unchanged.
func (c *Channel) Subscribe(ctx context.Context, app ref.App, path ref.SubscriptionPath) (uint64, error) {
	if c.closed {
		return 0, ErrChannelClosed
	}

	action := subscribeAction{
		ID:     c.nextMessageID(),
		Action: "subscribe",
		Ship:   c.session.ship.String(),
		App:    app.String(),
		Path:   path.String(),
	}
	if err := c.sendActions(ctx, action); err != nil {
		return 0, fmt.Errorf("airlock: subscribe %s%s failed: %w", app, path, err)
	}

	c.subscriptions = append(c.subscriptions, &Subscription{
		app:  app,
		path: path,
		id:   action.ID,
	})

	c.logger.Info("subscribed", "uid", c.uid, "id", action.ID, "app", app, "path", path)
	return action.ID, nil
}

// FindSubscription returns the first subscription matching (app, path),
// or nil if none exists. The returned handle stays valid after
// Unsubscribe removes it from the channel — it simply stops receiving
// deliveries — so holding one across mutations is safe.
func (c *Channel) FindSubscription(app ref.App, path ref.SubscriptionPath) *Subscription {
	for _, subscription := range c.subscriptions {
		if subscription.app == app && subscription.path == path {
			return subscription
		}
	}
	return nil
}

// Unsubscribe removes the first subscription matching (app, path) and
// tells the ship to tear down the flow. Returns ErrNoSubscription when
// nothing matches. When a match exists it is removed from the channel
// unconditionally; a transport failure on the teardown request is
// returned but does not restore the subscription — frames for it may
// still be in flight and will be dropped by Dispatch.
func (c *Channel) Unsubscribe(ctx context.Context, app ref.App, path ref.SubscriptionPath) error {
	if c.closed {
		return ErrChannelClosed
	}

	index := -1
	for i, subscription := range c.subscriptions {
		if subscription.app == app && subscription.path == path {
			index = i
			break
		}
	}
	if index < 0 {
		return ErrNoSubscription
	}

	subscription := c.subscriptions[index]
	c.subscriptions = append(c.subscriptions[:index], c.subscriptions[index+1:]...)

	action := unsubscribeAction{
		ID:           c.nextMessageID(),
		Action:       "unsubscribe",
		Subscription: subscription.id,
	}
	if err := c.sendActions(ctx, action); err != nil {
		return fmt.Errorf("airlock: unsubscribe %s%s failed: %w", app, path, err)
	}

	c.logger.Info("unsubscribed", "uid", c.uid, "subscription", subscription.id, "app", app, "path", path)
	return nil
}

// Dispatch drains the ingestion queue and routes every event queued at
// the moment of the call. Diff frames are appended, in stream-arrival
// order, to the buffer of the subscription whose creation id they
// carry; diffs for unknown ids are dropped silently (an unsubscribe
// can always race with frames in flight). Ack frames are consumed —
// negative acks are logged, since an err on a multiplexed stream is
// not attributable to any caller's pending call. Dispatch never blocks
// and never fails; callers poll it.
func (c *Channel) Dispatch() {
	for _, event := range c.queue.drain() {
		switch event.Response {
		case responseDiff:
			subscription := c.findByID(event.ID)
			if subscription == nil {
				c.logger.Debug("dropping diff for unknown subscription",
					"uid", c.uid, "id", event.ID, "seq", event.StreamSeq)
				continue
			}
			subscription.deliver(string(event.JSON))
		case responsePoke, responseSubscribe:
			if event.Err != "" {
				c.logger.Warn("ship rejected action",
					"uid", c.uid, "id", event.ID, "kind", event.Response, "err", event.Err)
			}
		case responseQuit:
			c.logger.Info("subscription quit by ship", "uid", c.uid, "id", event.ID)
		default:
			c.logger.Warn("unknown response kind",
				"uid", c.uid, "id", event.ID, "kind", event.Response)
		}
	}
}

// findByID returns the subscription created with the given message id.
func (c *Channel) findByID(id uint64) *Subscription {
	for _, subscription := range c.subscriptions {
		if subscription.id == id {
			return subscription
		}
	}
	return nil
}

// Delete sends the channel-delete directive and marks the channel
// closed; every subsequent operation returns ErrChannelClosed. The
// ingestion worker is cancelled but not waited for — it exits when its
// stream request unwinds, observable via StreamDone. Errors from the
// delete request are surfaced, but the channel is closed regardless:
// delete is best-effort cleanup, not a transaction.
func (c *Channel) Delete(ctx context.Context) error {
	if c.closed {
		return ErrChannelClosed
	}
	c.closed = true

	action := deleteAction{
		ID:     c.nextMessageID(),
		Action: "delete",
	}
	err := c.sendActions(ctx, action)

	if c.stream != nil {
		c.stream.cancel()
	}

	c.logger.Info("deleted channel", "uid", c.uid)
	if err != nil {
		return fmt.Errorf("airlock: delete channel %s failed: %w", c.uid, err)
	}
	return nil
}

// StreamDone returns a channel closed when the event-ingestion worker
// exits. The worker exits when the ship closes the stream, when the
// stream connection fails, or after Delete.
func (c *Channel) StreamDone() <-chan struct{} {
	return c.stream.done
}

// StreamErr returns the worker's terminal condition, valid after
// StreamDone is closed. Nil means the stream ended normally; a
// *StreamError means it was lost.
func (c *Channel) StreamErr() error {
	return c.stream.terminalErr()
}

// sendActions PUTs one or more command objects to the channel endpoint
// as a JSON array.
func (c *Channel) sendActions(ctx context.Context, actions ...any) error {
	encoded, err := json.Marshal(actions)
	if err != nil {
		return fmt.Errorf("failed to encode actions: %w", err)
	}

	_, err = c.session.client.doRequest(ctx, http.MethodPut, c.path(),
		c.session.cookie, "application/json", bytes.NewReader(encoded))
	return err
}

// startStream spawns the event-ingestion worker for this channel. The
// worker's lifetime is bounded by the stream itself, not by any one
// request context, so it runs under its own cancellable context.
func (c *Channel) startStream() {
	streamCtx, cancel := context.WithCancel(context.Background())
	c.stream = newStreamWorker(cancel, c.queue, c.logger.With("uid", c.uid))
	go c.stream.run(streamCtx, c.session.client, c.session.cookie, c.path())
}
