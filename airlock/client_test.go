// Copyright 2026 The Airlock Authors
// SPDX-License-Identifier: Apache-2.0

package airlock

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/urbit-foundation/airlock/lib/secret"
)

func mustCode(t *testing.T) *secret.Buffer {
	t.Helper()
	code, err := secret.NewFromBytes([]byte(testCode))
	if err != nil {
		t.Fatalf("protecting code failed: %v", err)
	}
	t.Cleanup(func() { code.Close() })
	return code
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantBase string
		wantErr  bool
	}{
		{name: "http", url: "http://localhost:8080", wantBase: "http://localhost:8080"},
		{name: "https", url: "https://zod.arvo.network", wantBase: "https://zod.arvo.network"},
		{name: "trailing slash stripped", url: "http://localhost:8080/", wantBase: "http://localhost:8080"},
		{name: "empty", url: "", wantErr: true},
		{name: "bad scheme", url: "ftp://localhost", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			client, err := NewClient(ClientConfig{ShipURL: test.url})
			if test.wantErr {
				if err == nil {
					t.Fatalf("NewClient(%q) succeeded, want error", test.url)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewClient(%q) failed: %v", test.url, err)
			}
			if client.baseURL != test.wantBase {
				t.Errorf("baseURL = %q, want %q", client.baseURL, test.wantBase)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	ship := newFakeShip(t)
	session := newTestSession(t, ship)

	if got := session.Ship().String(); got != testShip {
		t.Errorf("session ship = %q, want %q", got, testShip)
	}
	if got := session.Ship().Sigged(); got != "~"+testShip {
		t.Errorf("sigged ship = %q, want ~%s", got, testShip)
	}
}

func TestLoginRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad code", http.StatusBadRequest)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{ShipURL: server.URL, Logger: slog.New(slog.DiscardHandler)})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	_, err = client.Login(t.Context(), mustCode(t))
	if !errors.Is(err, ErrFailedLogin) {
		t.Errorf("Login against rejecting ship = %v, want ErrFailedLogin", err)
	}
}

func TestLoginMissingCookie(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{ShipURL: server.URL, Logger: slog.New(slog.DiscardHandler)})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	_, err = client.Login(t.Context(), mustCode(t))
	if !errors.Is(err, ErrFailedLogin) {
		t.Errorf("Login without Set-Cookie = %v, want ErrFailedLogin", err)
	}
}

func TestLoginNilCode(t *testing.T) {
	client, err := NewClient(ClientConfig{ShipURL: "http://localhost:1", Logger: slog.New(slog.DiscardHandler)})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if _, err := client.Login(t.Context(), nil); !errors.Is(err, ErrFailedLogin) {
		t.Errorf("Login(nil) = %v, want ErrFailedLogin", err)
	}
}

func TestParseAuthCookie(t *testing.T) {
	tests := []struct {
		name      string
		setCookie string
		wantShip  string
		wantPair  string
		wantErr   bool
	}{
		{
			name:      "galaxy with attributes",
			setCookie: "urbauth-~zod=0v3.q0p7v.nel2b; Path=/; Max-Age=604800",
			wantShip:  "zod",
			wantPair:  "urbauth-~zod=0v3.q0p7v.nel2b",
		},
		{
			name:      "planet bare pair",
			setCookie: "urbauth-~sampel-palnet=0vtoken",
			wantShip:  "sampel-palnet",
			wantPair:  "urbauth-~sampel-palnet=0vtoken",
		},
		{
			name:      "no equals",
			setCookie: "urbauth-~zod; Path=/",
			wantErr:   true,
		},
		{
			name:      "wrong cookie name",
			setCookie: "session=abc; Path=/",
			wantErr:   true,
		},
		{
			name:      "invalid ship in name",
			setCookie: "urbauth-~ZOD!=abc",
			wantErr:   true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ship, pair, err := parseAuthCookie(test.setCookie)
			if test.wantErr {
				if err == nil {
					t.Fatalf("parseAuthCookie(%q) succeeded, want error", test.setCookie)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseAuthCookie(%q) failed: %v", test.setCookie, err)
			}
			if ship.String() != test.wantShip {
				t.Errorf("ship = %q, want %q", ship, test.wantShip)
			}
			if pair != test.wantPair {
				t.Errorf("pair = %q, want %q", pair, test.wantPair)
			}
		})
	}
}

func TestTransportErrorStatusExtractable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "channel: bad request", http.StatusBadRequest)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{ShipURL: server.URL, Logger: slog.New(slog.DiscardHandler)})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	_, err = client.doRequest(t.Context(), http.MethodGet, "/~/scry/hood/kiln/vats.json", nil, "", nil)
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("doRequest error = %v, want *TransportError", err)
	}
	if transportErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want 400", transportErr.StatusCode)
	}
	if transportErr.Body != "channel: bad request" {
		t.Errorf("Body = %q, want diagnostic text", transportErr.Body)
	}
}
