// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Skymount Contributors

package linkproto

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Transport is the minimal byte-stream contract Engine needs from
// whatever carries the link — a serial port in production, an in-memory
// pipe in tests. internal/transport.SerialTransport implements it.
type Transport interface {
	io.Reader
	io.Writer
	io.Closer
}

// pendingCall tracks one in-flight Send awaiting its ACK. done fires
// once; it carries no payload because an ACK frame's only meaningful
// content is the ID it's acknowledging, already consumed to find this
// call in Engine.pending.
type pendingCall struct {
	done chan struct{}
}

// EventCallback receives every decoded frame that isn't an ACK reply to
// a pending Send — i.e. an unsolicited event from the mount.
type EventCallback func(Packet)

// Engine owns a Transport and implements message-ID allocation, ACK
// correlation, retry, and event fan-out on top of it. One Engine serves
// one connection; callers issue commands concurrently through Send.
type Engine struct {
	tr      Transport
	log     *logrus.Entry
	idGen   *idGenerator
	dec     *Decoder
	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[byte]*pendingCall

	eventMu   sync.Mutex
	callbacks []EventCallback

	attemptTimeout time.Duration
	maxAttempts    int

	closeOnce sync.Once
	closed    chan struct{}
	readDone  chan struct{}

	stats Statistics
}

// Stats returns a snapshot of the engine's link-level counters.
func (e *Engine) Stats() Statistics {
	return e.stats.Snapshot()
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithAttemptTimeout overrides DefaultAttemptTimeout.
func WithAttemptTimeout(d time.Duration) Option {
	return func(e *Engine) { e.attemptTimeout = d }
}

// WithMaxAttempts overrides DefaultMaxAttempts.
func WithMaxAttempts(n int) Option {
	return func(e *Engine) { e.maxAttempts = n }
}

// WithLogger attaches a logrus logger; defaults to logrus.StandardLogger().
func WithLogger(l *logrus.Logger) Option {
	return func(e *Engine) { e.log = l.WithField("component", "linkproto") }
}

// NewEngine wraps tr and starts its background receiver goroutine.
func NewEngine(tr Transport, opts ...Option) *Engine {
	e := &Engine{
		tr:             tr,
		idGen:          newIDGenerator(),
		dec:            NewDecoder(),
		pending:        make(map[byte]*pendingCall),
		attemptTimeout: DefaultAttemptTimeout,
		maxAttempts:    DefaultMaxAttempts,
		closed:         make(chan struct{}),
		readDone:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logrus.StandardLogger().WithField("component", "linkproto")
	}
	go e.readLoop()
	return e
}

// Subscribe registers cb to receive every unsolicited event the mount
// sends. It is never called while Engine's write lock is held.
func (e *Engine) Subscribe(cb EventCallback) {
	e.eventMu.Lock()
	defer e.eventMu.Unlock()
	e.callbacks = append(e.callbacks, cb)
}

func (e *Engine) dispatch(pkt Packet) {
	e.eventMu.Lock()
	cbs := make([]EventCallback, len(e.callbacks))
	copy(cbs, e.callbacks)
	e.eventMu.Unlock()
	for _, cb := range cbs {
		cb(pkt)
	}
}

// Send transmits cmd/payload up to maxAttempts times in total, on a
// fixed message ID, until a matching ACK arrives or ctx is cancelled.
// Success means only that the mount acknowledged receipt — any reply
// data (e.g. positions after CmdGetPositions) arrives separately as an
// event, not as this call's return value.
func (e *Engine) Send(ctx context.Context, cmd byte, payload []byte) error {
	select {
	case <-e.closed:
		return ErrEngineClosed
	default:
	}

	id := e.idGen.next()
	frame, err := buildFrame(cmd, id, payload)
	if err != nil {
		return err
	}
	encoded, err := Encode(frame)
	if err != nil {
		return err
	}
	wire := append(encoded, Delimiter)

	call := &pendingCall{done: make(chan struct{}, 1)}
	e.pendingMu.Lock()
	e.pending[id] = call
	e.pendingMu.Unlock()
	defer func() {
		e.pendingMu.Lock()
		delete(e.pending, id)
		e.pendingMu.Unlock()
	}()

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		if err := e.write(wire); err != nil {
			return fmt.Errorf("linkproto: write: %w", err)
		}

		timer := time.NewTimer(e.attemptTimeout)
		select {
		case <-call.done:
			timer.Stop()
			return nil
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-e.closed:
			timer.Stop()
			return ErrEngineClosed
		case <-timer.C:
			e.stats.incTimeout()
			e.log.WithFields(logrus.Fields{"cmd": cmd, "id": id, "attempt": attempt}).
				Warn("no ack before attempt timeout")
			if attempt < e.maxAttempts {
				time.Sleep(retryBackoff)
			}
		}
	}
	e.stats.incExhausted()
	return fmt.Errorf("%w: cmd=0x%02x id=%d", ErrRetriesExhausted, cmd, id)
}

// SendNoWait transmits cmd/payload without registering for a reply —
// the fire-and-forget path used for Ping, CmdAck, and EmergencyStop.
// None of these may recurse into Send: an ACK awaiting its own ACK
// would never settle.
func (e *Engine) SendNoWait(cmd, id byte, payload []byte) error {
	frame, err := buildFrame(cmd, id, payload)
	if err != nil {
		return err
	}
	encoded, err := Encode(frame)
	if err != nil {
		return err
	}
	return e.write(append(encoded, Delimiter))
}

func (e *Engine) write(wire []byte) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	_, err := e.tr.Write(wire)
	return err
}

// readLoop is the engine's single reader goroutine. Reads block on the
// transport for up to its configured read timeout (internal/transport
// sets this); a timeout is not an error here, it's just a chance to
// check for shutdown before blocking again.
func (e *Engine) readLoop() {
	defer close(e.readDone)
	buf := make([]byte, 1)
	for {
		select {
		case <-e.closed:
			return
		default:
		}

		n, err := e.tr.Read(buf)
		if err != nil {
			if isTimeout(err) {
				continue
			}
			e.log.WithError(err).Debug("transport read ended")
			return
		}
		if n == 0 {
			continue
		}

		pkt, err := e.dec.DecodeByte(buf[0], time.Now())
		if err != nil {
			if errors.Is(err, ErrFrameTooShort) {
				continue // drop silently, per the receiver dispatch rules
			}
			e.stats.incDropped()
			e.log.WithError(err).Warn("dropping frame")
			continue
		}
		if pkt == nil {
			continue
		}

		if pkt.LengthMismatch {
			e.log.WithFields(logrus.Fields{"cmd": pkt.Cmd, "id": pkt.ID}).
				Warn("frame length disagreed with block size; re-derived from observed length")
		}

		e.stats.incReceived()
		e.handlePacket(*pkt)
	}
}

func (e *Engine) handlePacket(pkt Packet) {
	if pkt.Cmd == CmdAck {
		if len(pkt.Payload) < 1 {
			e.log.Warn("ack frame carried no payload")
			return
		}
		ackedID := pkt.Payload[0]
		e.pendingMu.Lock()
		call, ok := e.pending[ackedID]
		e.pendingMu.Unlock()
		if !ok {
			e.log.WithField("id", ackedID).Warn("ack for unknown or expired message id")
			return
		}
		select {
		case call.done <- struct{}{}:
		default:
		}
		return
	}

	// Unsolicited event from the mount: fan out, then fire an
	// unretried ACK back whose payload names the ID being acknowledged.
	e.stats.incDispatched()
	e.dispatch(pkt)
	if err := e.SendNoWait(CmdAck, e.idGen.next(), []byte{pkt.ID}); err != nil {
		e.log.WithError(err).Debug("failed to send ack for event")
	}
}

// Close stops the receiver goroutine and releases any Send calls
// blocked waiting on a reply. It waits up to one second for the
// receiver to exit, then closes the transport.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		close(e.closed)
	})
	select {
	case <-e.readDone:
	case <-time.After(time.Second):
	}
	return e.tr.Close()
}

type timeoutError interface {
	Timeout() bool
}

func isTimeout(err error) bool {
	te, ok := err.(timeoutError)
	return ok && te.Timeout()
}
