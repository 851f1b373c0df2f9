// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Skymount Contributors

// Package linkproto implements the host side of the mount's serial link
// protocol: COBS framing, CRC8 integrity, message-ID/ACK correlation,
// retry, and event fan-out. It knows nothing about sky coordinates or
// rotation matrices — those live in internal/celestial and
// internal/alignment and simply hand this package already-serialized
// payloads.
package linkproto

import "time"

// Frame delimiter. COBS guarantees this byte never appears inside an
// encoded block, so it can terminate packets unambiguously on the wire.
const Delimiter = 0x00

// Raw frame layout limits.
const (
	minFrameLen   = 4   // CMD + ID + LEN + CRC8, zero payload
	maxPayloadLen = 60  // keeps total frame length at or under 64
	maxBlockLen   = 256 // safety bound on an unterminated receive buffer
)

// Command bytes, host -> mount. Current firmware contract per the
// protocol's active revision.
const (
	CmdPing          = 0x01
	CmdMoveStatic    = 0x10
	CmdMoveRelative  = 0x11
	CmdMoveLinear    = 0x12
	CmdTrackCelestial = 0x13
	CmdStop          = 0x20
	CmdPause         = 0x21
	CmdResume        = 0x22
	// CmdEmergencyStop takes the role of the legacy table's
	// CMD_ESTOPTRIG, whose byte (0x30) collides with this table's
	// CmdGetPositions. 0x23 is the next free slot in the Stop/Pause/
	// Resume run, keeping the e-stop adjacent to the command it
	// overrides rather than off on its own.
	CmdEmergencyStop = 0x23
	CmdGetPositions  = 0x30
	// CmdAck is not listed in spec.md's §4.4 table (it names every other
	// command but leaves the ACK byte itself implicit). 0x02 is chosen
	// because it sits next to CmdPing (0x01) without colliding with any
	// byte spec.md §4.4 does assign. Recorded as an Open Question
	// resolution in DESIGN.md.
	CmdAck = 0x02
)

// Event bytes, mount -> host.
const (
	EvtPosition  = 0x40
	EvtStatus    = 0x41
	EvtReference = 0x42
)

// Axis codes used by MoveStatic/MoveRelative/MoveLinear payloads.
const (
	AxisX = 0
	AxisY = 1
	AxisZ = 2
)

// Retry policy defaults (spec §4.3, §5).
const (
	DefaultAttemptTimeout = 2000 * time.Millisecond
	DefaultMaxAttempts    = 3
	retryBackoff          = 50 * time.Millisecond
)

// legacyCommandTableNote documents the superseded CMD byte assignments found
// in the field tool this protocol was distilled from. It is never wired
// into the engine — §4.4's table is the current firmware contract — but
// is kept as a comment so a reader chasing the "two conflicting command
// tables" ambiguity can find both sides without digging through history.
//
//	CMD_ACK          = 0x01
//	CMD_MOVE_STATIC  = 0x10
//	CMD_MOVE_TRACKING = 0x11
//	CMD_PAUSE        = 0x12
//	CMD_RESUME       = 0x13
//	CMD_STOP         = 0x14
//	CMD_GETPOS       = 0x20
//	CMD_POSITION     = 0x21 (EVT_POSITION in the current table)
//	CMD_STATUS       = 0x22 (EVT_STATUS in the current table)
//	CMD_ESTOPTRIG    = 0x30
const legacyCommandTableNote = "see DESIGN.md: command table ambiguity"
