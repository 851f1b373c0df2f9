// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Skymount Contributors

package linkproto

import (
	"fmt"
	"sync/atomic"
)

// Statistics accumulates link-level counters for diagnostics, in the
// same spirit as helios_protocol's packet statistics but scoped to what
// this protocol can actually observe: frames in, frames dropped for
// integrity or framing reasons, retries spent, and attempts that ran out
// of retries entirely.
type Statistics struct {
	FramesReceived   uint64
	FramesDropped    uint64
	AckTimeouts      uint64
	RetriesExhausted uint64
	EventsDispatched uint64
}

func (s *Statistics) incReceived()   { atomic.AddUint64(&s.FramesReceived, 1) }
func (s *Statistics) incDropped()    { atomic.AddUint64(&s.FramesDropped, 1) }
func (s *Statistics) incTimeout()    { atomic.AddUint64(&s.AckTimeouts, 1) }
func (s *Statistics) incExhausted()  { atomic.AddUint64(&s.RetriesExhausted, 1) }
func (s *Statistics) incDispatched() { atomic.AddUint64(&s.EventsDispatched, 1) }

// Snapshot returns a copy of the current counters, safe to read
// concurrently with updates.
func (s *Statistics) Snapshot() Statistics {
	return Statistics{
		FramesReceived:   atomic.LoadUint64(&s.FramesReceived),
		FramesDropped:    atomic.LoadUint64(&s.FramesDropped),
		AckTimeouts:      atomic.LoadUint64(&s.AckTimeouts),
		RetriesExhausted: atomic.LoadUint64(&s.RetriesExhausted),
		EventsDispatched: atomic.LoadUint64(&s.EventsDispatched),
	}
}

func (s Statistics) String() string {
	return fmt.Sprintf(
		"frames=%d dropped=%d ack_timeouts=%d retries_exhausted=%d events=%d",
		s.FramesReceived, s.FramesDropped, s.AckTimeouts, s.RetriesExhausted, s.EventsDispatched,
	)
}
