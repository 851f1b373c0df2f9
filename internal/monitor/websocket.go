// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Skymount Contributors

package monitor

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// WebSocketSink broadcasts every Event as JSON to all currently
// connected browser clients. It binds to loopback only — this is a
// local live view, not a network service for coordinating multiple
// mount operators.
type WebSocketSink struct {
	upgrader websocket.Upgrader
	log      *logrus.Entry

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewWebSocketSink returns a sink with no connected clients yet.
func NewWebSocketSink() *WebSocketSink {
	return &WebSocketSink{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log:     logrus.StandardLogger().WithField("component", "monitor-ws"),
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// ServeHTTP upgrades the request to a WebSocket and keeps the
// connection registered until it closes or errors.
func (w *WebSocketSink) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	conn, err := w.upgrader.Upgrade(resp, req, nil)
	if err != nil {
		w.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	w.mu.Lock()
	w.clients[conn] = struct{}{}
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		delete(w.clients, conn)
		w.mu.Unlock()
		conn.Close()
	}()

	// Clients are read-only consumers; drain incoming control frames
	// until the connection drops.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Publish implements Sink by writing evt to every connected client.
func (w *WebSocketSink) Publish(evt Event) {
	data, err := evt.marshal()
	if err != nil {
		w.log.WithError(err).Warn("failed to marshal monitor event")
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for conn := range w.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			w.log.WithError(err).Warn("dropping monitor websocket client")
			conn.Close()
			delete(w.clients, conn)
		}
	}
}

// ListenAndServe starts a loopback-bound HTTP server exposing this sink
// at /events, blocking until ctx is canceled.
func (w *WebSocketSink) ListenAndServe(ctx context.Context, port int) error {
	mux := http.NewServeMux()
	mux.Handle("/events", w)

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("monitor: listen %s: %w", addr, err)
	}

	srv := &http.Server{Handler: mux}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		srv.Close()
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}
