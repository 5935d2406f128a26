// Copyright 2026 The Airlock Authors
// SPDX-License-Identifier: Apache-2.0

package airlock

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/urbit-foundation/airlock/lib/netutil"
	"github.com/urbit-foundation/airlock/lib/secret"
)

// streamWorker owns a channel's server-sent event stream. It opens the
// stream, decodes each frame into an Event, and pushes it onto the
// handoff queue. The worker knows nothing about subscriptions — it
// frames, decodes, and enqueues, and the channel owner routes.
//
// One bad frame never terminates the worker: malformed framing or JSON
// is logged and skipped, because the stream multiplexes every
// subscription on the channel and all of them would pay for the kill.
// Only the stream itself ending stops the worker.
type streamWorker struct {
	queue  *eventQueue
	logger *slog.Logger
	cancel context.CancelFunc

	done chan struct{}

	mu  sync.Mutex
	err error
}

func newStreamWorker(cancel context.CancelFunc, queue *eventQueue, logger *slog.Logger) *streamWorker {
	return &streamWorker{
		queue:  queue,
		logger: logger,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// terminalErr returns the worker's exit condition; nil until done is
// closed, and nil afterwards if the stream ended normally.
func (w *streamWorker) terminalErr() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// run opens the event stream and ingests frames until it ends. Runs on
// its own goroutine for the lifetime of the channel so that stream
// reads never block the owner's calls.
func (w *streamWorker) run(ctx context.Context, client *Client, cookie *secret.Buffer, path string) {
	defer close(w.done)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, client.baseURL+path, nil)
	if err != nil {
		w.exit(&StreamError{Op: "open", Err: err})
		return
	}
	request.Header.Set("Accept", "text/event-stream")
	request.Header.Set("Cache-Control", "no-cache")
	request.Header.Set("Cookie", cookie.String())

	response, err := client.httpClient.Do(request)
	if err != nil {
		if ctx.Err() != nil {
			w.exit(nil)
			return
		}
		w.exit(&StreamError{Op: "open", Err: err})
		return
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		w.exit(&StreamError{Op: "open", Err: &TransportError{
			Method:     http.MethodGet,
			Path:       path,
			StatusCode: response.StatusCode,
			Body:       strings.TrimSpace(netutil.ErrorBody(response.Body)),
		}})
		return
	}

	w.logger.Debug("event stream open")
	w.exit(w.ingest(ctx, bufio.NewReader(response.Body)))
}

// ingest reads SSE frames until the stream ends. Returns nil for
// normal termination, a *StreamError otherwise.
func (w *streamWorker) ingest(ctx context.Context, reader *bufio.Reader) error {
	var (
		dataLines []string
		seq       uint64
		haveSeq   bool
	)

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if ctx.Err() != nil || netutil.IsExpectedCloseError(err) {
				w.logger.Debug("event stream closed")
				return nil
			}
			return &StreamError{Op: "read", Err: err}
		}

		line = strings.TrimRight(line, "\r\n")

		// Blank line terminates a frame.
		if line == "" {
			if len(dataLines) > 0 {
				w.decodeFrame(strings.Join(dataLines, "\n"), seq, haveSeq)
			}
			dataLines = nil
			seq = 0
			haveSeq = false
			continue
		}

		// Comment lines are keepalives.
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")

		switch field {
		case "id":
			parsed, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				w.logger.Warn("event frame has malformed sequence id", "value", value)
				continue
			}
			seq = parsed
			haveSeq = true
		case "data":
			dataLines = append(dataLines, value)
		case "event", "retry":
			// Ships do not use named events; retry hints are
			// irrelevant because the channel does not reconnect.
		default:
			w.logger.Warn("event frame has unknown field", "field", field)
		}
	}
}

// decodeFrame parses one frame body and enqueues the resulting Event.
// Malformed frames are dropped with a warning.
func (w *streamWorker) decodeFrame(data string, seq uint64, haveSeq bool) {
	var event Event
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		w.logger.Warn("skipping malformed event frame", "seq", seq, "error", err)
		return
	}
	if !haveSeq {
		w.logger.Warn("event frame missing sequence id", "id", event.ID, "kind", event.Response)
	}
	event.StreamSeq = seq

	w.queue.push(event)
	w.logger.Debug("ingested event", "seq", seq, "id", event.ID, "kind", event.Response)
}

// exit records the terminal condition. done is closed by run's defer.
func (w *streamWorker) exit(err error) {
	w.mu.Lock()
	w.err = err
	w.mu.Unlock()

	if err != nil {
		w.logger.Warn("event stream lost", "error", err)
	}
}
