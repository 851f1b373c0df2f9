// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Skymount Contributors

// Package monitor is a read-only observability surface over the link
// engine's events. It cannot issue commands — it only relays what the
// mount already reported — so it doesn't reintroduce multi-client
// coordination or network mount discovery.
package monitor

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/skymount/skymount/internal/linkproto"
)

// Event is the JSON shape broadcast to subscribers, regardless of which
// underlying link-engine event produced it.
type Event struct {
	Kind      string    `json:"kind"` // "position", "status", "reference_lost"
	Timestamp time.Time `json:"timestamp"`
	Position  *linkproto.PositionEvent `json:"position,omitempty"`
	Status    *linkproto.StatusEvent   `json:"status,omitempty"`
}

// Sink receives every Event the Hub produces. Both the TUI program and
// the websocket broadcaster implement this.
type Sink interface {
	Publish(Event)
}

// Hub subscribes to an engine's events once and fans them out to any
// number of registered sinks.
type Hub struct {
	mu    sync.Mutex
	sinks []Sink
	log   *logrus.Entry
}

// NewHub returns a Hub with no sinks registered yet.
func NewHub() *Hub {
	return &Hub{log: logrus.StandardLogger().WithField("component", "monitor")}
}

// Attach registers sink to receive every subsequent Event.
func (h *Hub) Attach(sink Sink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sinks = append(h.sinks, sink)
}

// Wire subscribes the hub to eng's position, status, and
// reference-lost events.
func (h *Hub) Wire(eng *linkproto.Engine) {
	eng.OnPosition(func(p linkproto.PositionEvent) {
		h.broadcast(Event{Kind: "position", Timestamp: time.Now(), Position: &p})
	})
	eng.OnStatus(func(s linkproto.StatusEvent) {
		h.broadcast(Event{Kind: "status", Timestamp: time.Now(), Status: &s})
	})
	eng.OnReferenceLost(func(linkproto.ReferenceLostEvent) {
		h.broadcast(Event{Kind: "reference_lost", Timestamp: time.Now()})
	})
}

func (h *Hub) broadcast(evt Event) {
	h.mu.Lock()
	sinks := make([]Sink, len(h.sinks))
	copy(sinks, h.sinks)
	h.mu.Unlock()

	for _, s := range sinks {
		s.Publish(evt)
	}
}

// marshal is used by the websocket sink; kept here so the wire
// shape has a single definition.
func (e Event) marshal() ([]byte, error) {
	return json.Marshal(e)
}
