// Copyright 2026 The Airlock Authors
// SPDX-License-Identifier: Apache-2.0

package airlock

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/urbit-foundation/airlock/lib/clock"
	"github.com/urbit-foundation/airlock/lib/secret"
)

func TestScry(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /~/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Set-Cookie", testCookie)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /~/scry/graph-store/keys.json", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Cookie"); got != testCookie {
			t.Errorf("scry carried cookie %q, want %q", got, testCookie)
		}
		fmt.Fprint(w, `{"graph-update":{"keys":[]}}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	session := loginTo(t, server.URL)

	result, err := session.Scry(t.Context(), mustApp(t, "graph-store"), mustPath(t, "/keys"), "")
	if err != nil {
		t.Fatalf("Scry failed: %v", err)
	}
	if string(result) != `{"graph-update":{"keys":[]}}` {
		t.Errorf("Scry result = %s", result)
	}
}

func TestScryMissingPath(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /~/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Set-Cookie", testCookie)
		w.WriteHeader(http.StatusNoContent)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	session := loginTo(t, server.URL)

	_, err := session.Scry(t.Context(), mustApp(t, "graph-store"), mustPath(t, "/nope"), "json")
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("Scry error = %v, want *TransportError", err)
	}
	if transportErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", transportErr.StatusCode)
	}
}

func TestSpider(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /~/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Set-Cookie", testCookie)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /spider/graph-view-action/graph-create/json.json", func(w http.ResponseWriter, r *http.Request) {
		var input map[string]any
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			t.Errorf("spider input did not decode: %v", err)
		}
		if input["create"] == nil {
			t.Errorf("spider input = %v, want create action", input)
		}
		fmt.Fprint(w, `null`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	session := loginTo(t, server.URL)

	output, err := session.Spider(t.Context(), "graph-view-action", "graph-create", "json",
		map[string]any{"create": map[string]string{"name": "chat"}})
	if err != nil {
		t.Fatalf("Spider failed: %v", err)
	}
	if string(output) != "null" {
		t.Errorf("Spider output = %s, want null", output)
	}
}

func TestChannelUIDFormat(t *testing.T) {
	fake := clock.Fake()
	uid := newChannelUID(fake)

	// Millisecond timestamp, hyphen, six hex characters.
	pattern := regexp.MustCompile(`^\d+-[0-9a-f]{6}$`)
	if !pattern.MatchString(uid) {
		t.Errorf("channel UID %q does not match timestamp-hex convention", uid)
	}

	if other := newChannelUID(fake); other == uid {
		t.Errorf("consecutive UIDs collided: %q", uid)
	}
}

// loginTo logs in against an arbitrary test server that answers
// /~/login with the standard test cookie.
func loginTo(t *testing.T, url string) *Session {
	t.Helper()

	client, err := NewClient(ClientConfig{ShipURL: url, Logger: slog.New(slog.DiscardHandler)})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	code, err := secret.NewFromBytes([]byte(testCode))
	if err != nil {
		t.Fatalf("protecting code failed: %v", err)
	}
	t.Cleanup(func() { code.Close() })

	session, err := client.Login(t.Context(), code)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}
