// Copyright 2026 The Airlock Authors
// SPDX-License-Identifier: Apache-2.0

package airlock

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/urbit-foundation/airlock/lib/clock"
	"github.com/urbit-foundation/airlock/lib/ref"
	"github.com/urbit-foundation/airlock/lib/secret"
)

// Session is an authenticated connection to one ship. It wraps a Client
// with the session cookie obtained at login. Sessions are immutable
// after creation and shared read-only by every Channel opened from
// them — a Channel holds a back-reference, never ownership.
//
// The cookie is stored in a secret.Buffer (mmap-backed, locked against
// swap, excluded from core dumps). The caller must call Close when the
// Session is no longer needed; Channels opened from it stop working at
// that point.
type Session struct {
	client *Client
	cookie *secret.Buffer
	ship   ref.ShipName
}

// Ship returns the name of the ship this session is authenticated with.
func (s *Session) Ship() ref.ShipName {
	return s.ship
}

// CloseIdleConnections closes idle HTTP connections in the underlying
// transport's connection pool.
func (s *Session) CloseIdleConnections() {
	s.client.CloseIdleConnections()
}

// Close releases the session cookie memory (zeros, unlocks, unmaps).
// Idempotent — safe to call multiple times.
func (s *Session) Close() error {
	if s.cookie != nil {
		return s.cookie.Close()
	}
	return nil
}

// OpenChannel establishes a new channel on the ship and starts its
// event-ingestion worker. The channel is created by sending an opening
// poke to the hood agent — the ship materializes a channel the first
// time a command arrives at its endpoint — which consumes message id 1.
//
// The returned Channel is owned by the calling goroutine; see the
// Channel documentation for the concurrency contract.
func (s *Session) OpenChannel(ctx context.Context) (*Channel, error) {
	channel := &Channel{
		session: s,
		uid:     newChannelUID(s.client.clock),
		logger:  s.client.logger,
		queue:   &eventQueue{},
	}

	opening := pokeAction{
		ID:     channel.nextMessageID(),
		Action: "poke",
		Ship:   s.ship.String(),
		App:    "hood",
		Mark:   "helm-hi",
		JSON:   "Opening API channel",
	}
	if err := channel.sendActions(ctx, opening); err != nil {
		return nil, fmt.Errorf("airlock: opening channel %s: %w", channel.uid, err)
	}

	channel.startStream()

	s.client.logger.Info("opened channel", "ship", s.ship, "uid", channel.uid)
	return channel, nil
}

// Scry reads a value from an agent's scry namespace:
// GET /~/scry/<app><path>.<mark>. The result is returned verbatim.
func (s *Session) Scry(ctx context.Context, app ref.App, path ref.SubscriptionPath, mark string) (json.RawMessage, error) {
	if mark == "" {
		mark = "json"
	}
	requestPath := "/~/scry/" + app.String() + path.String() + "." + mark
	body, err := s.client.doRequest(ctx, http.MethodGet, requestPath, s.cookie, "", nil)
	if err != nil {
		return nil, fmt.Errorf("airlock: scry %s%s failed: %w", app, path, err)
	}
	return json.RawMessage(body), nil
}

// Spider runs a thread on the ship and returns its output:
// POST /spider/<inputMark>/<thread>/<outputMark>.json with the JSON
// input as the request body.
func (s *Session) Spider(ctx context.Context, inputMark, thread, outputMark string, input any) ([]byte, error) {
	encoded, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("airlock: failed to encode spider input: %w", err)
	}

	requestPath := "/spider/" + inputMark + "/" + thread + "/" + outputMark + ".json"
	body, err := s.client.doRequest(ctx, http.MethodPost, requestPath, s.cookie, "application/json", bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("airlock: spider %s failed: %w", thread, err)
	}
	return body, nil
}

// newChannelUID generates a channel identifier: millisecond timestamp
// plus a six-character random hex suffix, matching the convention of
// the reference clients so that ship-side logs stay greppable across
// client implementations.
func newChannelUID(clk clock.Clock) string {
	suffix := make([]byte, 3)
	rand.Read(suffix)
	return fmt.Sprintf("%d-%s", clk.Now().UnixMilli(), hex.EncodeToString(suffix))
}
