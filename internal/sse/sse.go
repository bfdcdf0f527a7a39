// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package sse writes Server-Sent Events to an HTTP response.
package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/elyriond/llmmail/internal/campaign"
)

// DefaultPingInterval is how often an idle-keeping comment is sent.
const DefaultPingInterval = 15 * time.Second

// ErrStreamingUnsupported is returned when the writer cannot flush.
var ErrStreamingUnsupported = errors.New("sse: streaming not supported")

// Stream is an open event stream. It is safe for concurrent use and
// implements campaign.Sink.
type Stream struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	broken  bool
	closed  bool

	stop chan struct{}
	wg   sync.WaitGroup
}

// Start writes the event-stream headers and returns the stream. A positive
// pingInterval sends ": ping" comments until Close.
func Start(w http.ResponseWriter, pingInterval time.Duration) (*Stream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	s := &Stream{w: w, flusher: flusher, stop: make(chan struct{})}
	if pingInterval > 0 {
		s.wg.Add(1)
		go s.ping(pingInterval)
	}
	return s, nil
}

// Send writes one event with v encoded as JSON.
func (s *Stream) Send(event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("sse encode %s: %w", event, err)
	}
	return s.write(fmt.Sprintf("event: %s\ndata: %s\n\n", event, data))
}

// Emit sends a pipeline event named after its stage.
func (s *Stream) Emit(e campaign.Event) {
	if err := s.Send(string(e.Stage), e); err != nil {
		slog.Debug("sse emit failed", "stage", e.Stage, "error", err)
	}
}

// Close stops the ping loop. Later sends are dropped.
func (s *Stream) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.stop)
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Stream) ping(interval time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if err := s.write(": ping\n\n"); err != nil {
				return
			}
		}
	}
}

func (s *Stream) write(frame string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("sse: stream closed")
	}
	if s.broken {
		return errors.New("sse: client gone")
	}
	if _, err := fmt.Fprint(s.w, frame); err != nil {
		s.broken = true
		return fmt.Errorf("sse write: %w", err)
	}
	s.flusher.Flush()
	return nil
}
