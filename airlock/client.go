// Copyright 2026 The Airlock Authors
// SPDX-License-Identifier: Apache-2.0

package airlock

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/urbit-foundation/airlock/lib/clock"
	"github.com/urbit-foundation/airlock/lib/netutil"
	"github.com/urbit-foundation/airlock/lib/ref"
	"github.com/urbit-foundation/airlock/lib/secret"
)

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// ShipURL is the base URL of the ship (e.g., "http://localhost:8080").
	ShipURL string
	// HTTPClient is used for all requests, including the long-lived
	// event stream. If nil, http.DefaultClient is used. Do not set
	// http.Client.Timeout on a client passed here — it would cut the
	// event stream off mid-flight; use per-request contexts instead.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
	// Clock is used for channel UID generation. If nil, the real clock
	// is used.
	Clock clock.Clock
}

// Client is an unauthenticated ship client. It holds the ship URL and
// HTTP transport, shared across Sessions created by Login.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	clock      clock.Clock
}

// NewClient creates a new unauthenticated ship client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.ShipURL == "" {
		return nil, fmt.Errorf("airlock: ShipURL is required")
	}

	// Validate the URL structure. We store the string form (with
	// trailing slash stripped) and build request URLs by direct
	// concatenation — channel UIDs and scry paths never need escaping,
	// and concatenation avoids url.URL re-encoding surprises.
	parsed, err := url.Parse(config.ShipURL)
	if err != nil {
		return nil, fmt.Errorf("airlock: invalid ShipURL %q: %w", config.ShipURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("airlock: ShipURL %q must be http or https", config.ShipURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}

	return &Client{
		baseURL:    strings.TrimRight(config.ShipURL, "/"),
		httpClient: httpClient,
		logger:     logger,
		clock:      clk,
	}, nil
}

// CloseIdleConnections closes idle HTTP connections in the underlying
// transport's connection pool. Call this after a network disruption to
// force subsequent requests to establish fresh TCP connections instead
// of reusing a poisoned pooled connection.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// Login exchanges the ship's +code for an authenticated Session. The
// code Buffer is read but not closed — the caller retains ownership and
// should close it once login has succeeded.
//
// The ship answers POST /~/login with 204 and a Set-Cookie header whose
// cookie name embeds the ship's identity ("urbauth-~zod"). The cookie
// value is moved into mmap-protected memory; the caller must call
// Session.Close when done.
func (c *Client) Login(ctx context.Context, code *secret.Buffer) (*Session, error) {
	if code == nil {
		return nil, fmt.Errorf("%w: code is required", ErrFailedLogin)
	}

	// The code is form-encoded at the request boundary. The heap copy
	// is scrubbed as soon as the request body has been built.
	form := []byte("password=" + code.String())
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/~/login", strings.NewReader(string(form)))
	secret.Zero(form)
	if err != nil {
		return nil, fmt.Errorf("airlock: failed to create login request: %w", err)
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedLogin, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusNoContent && response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrFailedLogin,
			response.StatusCode, netutil.ErrorBody(response.Body))
	}

	setCookie := response.Header.Get("Set-Cookie")
	if setCookie == "" {
		return nil, fmt.Errorf("%w: response carried no session cookie", ErrFailedLogin)
	}

	ship, cookiePair, err := parseAuthCookie(setCookie)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedLogin, err)
	}

	cookieBuffer, err := secret.NewFromBytes([]byte(cookiePair))
	if err != nil {
		return nil, fmt.Errorf("airlock: protecting session cookie: %w", err)
	}

	c.logger.Info("logged in to ship", "ship", ship, "url", c.baseURL)

	return &Session{
		client: c,
		cookie: cookieBuffer,
		ship:   ship,
	}, nil
}

// parseAuthCookie extracts the ship name and the bare name=value pair
// from a Set-Cookie header of the form
// "urbauth-~zod=0v3.q0p7v...; Path=/; Max-Age=604800". Only the pair is
// replayed on subsequent requests; the attributes are directives to us,
// not state to echo back.
func parseAuthCookie(setCookie string) (ref.ShipName, string, error) {
	pair, _, _ := strings.Cut(setCookie, ";")
	pair = strings.TrimSpace(pair)

	name, _, found := strings.Cut(pair, "=")
	if !found {
		return ref.ShipName{}, "", fmt.Errorf("malformed session cookie %q", setCookie)
	}

	const prefix = "urbauth-~"
	if !strings.HasPrefix(name, prefix) {
		return ref.ShipName{}, "", fmt.Errorf("unexpected session cookie name %q", name)
	}

	ship, err := ref.ParseShipName(strings.TrimPrefix(name, prefix))
	if err != nil {
		return ref.ShipName{}, "", fmt.Errorf("session cookie names invalid ship: %w", err)
	}
	return ship, pair, nil
}

// doRequest performs an HTTP request to the ship and returns the
// response body. On 2xx, returns the body. On 4xx/5xx, returns a
// *TransportError carrying the status and body. cookie may be nil for
// unauthenticated endpoints.
func (c *Client) doRequest(ctx context.Context, method, path string, cookie *secret.Buffer, contentType string, body io.Reader) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("airlock: failed to create request: %w", err)
	}

	if contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}
	if cookie != nil {
		request.Header.Set("Cookie", cookie.String())
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("airlock: request to %s %s failed: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("airlock: failed to read response body: %w", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}

	return nil, &TransportError{
		Method:     method,
		Path:       path,
		StatusCode: response.StatusCode,
		Body:       strings.TrimSpace(string(responseBody)),
	}
}
