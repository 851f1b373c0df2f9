// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Skymount Contributors

package linkproto

// PositionEvent reports the mount's axis positions in encoder
// arcseconds. It arrives unsolicited, either spontaneously or as the
// mount's response to GetPositions.
type PositionEvent struct {
	X, Y, Z int32
}

// StatusEvent mirrors the mount's full telemetry frame.
type StatusEvent struct {
	TempC             float32
	X, Y, Z           int32
	Enabled           bool
	Paused            bool
	CelestialTracking bool
	FanPct            uint8
}

// ReferenceLostEvent signals the mount detected a loss of positional
// reference (e.g. an encoder fault). Subscribers are notified; no
// automatic re-alignment is triggered by this package — whether
// EVT_REFLOST should re-enter alignment mode is left to the caller.
type ReferenceLostEvent struct{}

// OnPosition registers cb to run whenever the mount emits an
// EvtPosition frame with at least 12 payload bytes. Shorter payloads
// are logged and dropped rather than delivered.
func (e *Engine) OnPosition(cb func(PositionEvent)) {
	e.Subscribe(func(pkt Packet) {
		if pkt.Cmd != EvtPosition {
			return
		}
		if len(pkt.Payload) < 12 {
			e.log.WithField("len", len(pkt.Payload)).Warn("short EvtPosition payload")
			return
		}
		cb(PositionEvent{
			X: getInt32(pkt.Payload[0:4]),
			Y: getInt32(pkt.Payload[4:8]),
			Z: getInt32(pkt.Payload[8:12]),
		})
	})
}

// OnStatus registers cb to run whenever the mount emits an EvtStatus
// frame with at least 20 payload bytes.
func (e *Engine) OnStatus(cb func(StatusEvent)) {
	e.Subscribe(func(pkt Packet) {
		if pkt.Cmd != EvtStatus {
			return
		}
		if len(pkt.Payload) < 20 {
			e.log.WithField("len", len(pkt.Payload)).Warn("short EvtStatus payload")
			return
		}
		p := pkt.Payload
		cb(StatusEvent{
			TempC:             getFloat32(p[0:4]),
			X:                 getInt32(p[4:8]),
			Y:                 getInt32(p[8:12]),
			Z:                 getInt32(p[12:16]),
			Enabled:           p[16] != 0,
			Paused:            p[17] != 0,
			CelestialTracking: p[18] != 0,
			FanPct:            p[19],
		})
	})
}

// OnReferenceLost registers cb to run whenever the mount emits an
// EvtReference frame.
func (e *Engine) OnReferenceLost(cb func(ReferenceLostEvent)) {
	e.Subscribe(func(pkt Packet) {
		if pkt.Cmd != EvtReference {
			return
		}
		cb(ReferenceLostEvent{})
	})
}
