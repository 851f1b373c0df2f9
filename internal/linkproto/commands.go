// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Skymount Contributors

package linkproto

import (
	"context"
	"encoding/binary"
	"math"
)

// The command façade encodes each outbound call's payload and drives it
// through Engine.Send (or SendNoWait for fire-and-forget commands), so
// callers outside this package never touch raw frame bytes. All
// multi-byte fields are little-endian, per the wire format.

func putFloat32(b []byte, v float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
}

func getFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func putInt32(b []byte, v int32) {
	binary.LittleEndian.PutUint32(b, uint32(v))
}

func getInt32(b []byte) int32 {
	return int32(binary.LittleEndian.Uint32(b))
}

// Ping is fire-and-forget: the wire format explicitly forbids it from
// awaiting its own ACK.
func (e *Engine) Ping() error {
	return e.SendNoWait(CmdPing, e.idGen.next(), nil)
}

// MoveStatic commands the mount to drive axis to a fixed position,
// expressed in arcseconds from the axis's zero reference.
func (e *Engine) MoveStatic(ctx context.Context, axis byte, arcsec int32) error {
	payload := make([]byte, 5)
	payload[0] = axis
	putInt32(payload[1:], arcsec)
	return e.Send(ctx, CmdMoveStatic, payload)
}

// MoveRelative commands the mount to move axis by a signed delta in
// arcseconds from its current position.
func (e *Engine) MoveRelative(ctx context.Context, axis byte, deltaArcsec int32) error {
	payload := make([]byte, 5)
	payload[0] = axis
	putInt32(payload[1:], deltaArcsec)
	return e.Send(ctx, CmdMoveRelative, payload)
}

// MoveLinear commands all three axes to move at constant angular rates,
// in arcseconds per second, until stopped or commanded otherwise.
func (e *Engine) MoveLinear(ctx context.Context, xRate, yRate, zRate float32) error {
	payload := make([]byte, 12)
	putFloat32(payload[0:4], xRate)
	putFloat32(payload[4:8], yRate)
	putFloat32(payload[8:12], zRate)
	return e.Send(ctx, CmdMoveLinear, payload)
}

// TrackCelestial commands the mount to slew to and track the given
// RA/Dec using rotation matrix r (row-major) anchored at refTimeUnixS,
// at the given observer latitude. r must have exactly 9 elements.
func (e *Engine) TrackCelestial(ctx context.Context, raHours, decDeg float32, r [9]float32, refTimeUnixS uint64, latitudeDeg float32) error {
	payload := make([]byte, 56)
	putFloat32(payload[0:4], raHours)
	putFloat32(payload[4:8], decDeg)
	for i, v := range r {
		putFloat32(payload[8+4*i:12+4*i], v)
	}
	binary.LittleEndian.PutUint64(payload[44:52], refTimeUnixS)
	putFloat32(payload[52:56], latitudeDeg)
	return e.Send(ctx, CmdTrackCelestial, payload)
}

// Stop halts all axis motion immediately.
func (e *Engine) Stop(ctx context.Context) error {
	return e.Send(ctx, CmdStop, nil)
}

// Pause suspends the current motion without clearing it; Resume
// continues it.
func (e *Engine) Pause(ctx context.Context) error {
	return e.Send(ctx, CmdPause, nil)
}

// Resume continues motion previously suspended by Pause.
func (e *Engine) Resume(ctx context.Context) error {
	return e.Send(ctx, CmdResume, nil)
}

// GetPositions asks the mount to report its current axis positions. The
// positions themselves arrive asynchronously as an EvtPosition frame,
// delivered to any callback registered with OnPosition — this call only
// reports whether the request was acknowledged.
func (e *Engine) GetPositions(ctx context.Context) error {
	return e.Send(ctx, CmdGetPositions, nil)
}

// EmergencyStop sends an immediate, unretried stop command. It is
// restored from the field tool's interactive "e - Emergency stop"
// operation, which the current command table otherwise has no byte
// for: a stop the caller must wait to retry is the wrong shape for an
// e-stop, so it rides the same fire-and-forget path as the ACK itself.
func (e *Engine) EmergencyStop() error {
	return e.SendNoWait(CmdEmergencyStop, e.idGen.next(), nil)
}
