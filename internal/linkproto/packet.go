// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Skymount Contributors

package linkproto

import (
	"errors"
	"fmt"
	"time"
)

// ErrFrameTooShort is returned when a decoded block is shorter than the
// minimum CMD+ID+LEN+CRC8 layout. The receiver drops these silently —
// no log — since a block this short can't even carry a length field.
var ErrFrameTooShort = errors.New("linkproto: frame shorter than header")

// ErrFrameTooLong is returned when an outbound payload is longer than
// maxPayloadLen.
var ErrFrameTooLong = errors.New("linkproto: frame payload too long")

// ErrCRCMismatch is returned when a frame's trailing CRC8 byte doesn't
// match the CRC8 computed over CMD|ID|LEN|PAYLOAD.
var ErrCRCMismatch = errors.New("linkproto: crc8 mismatch")

// ErrZeroID is returned when a received frame's ID field is 0, which is
// reserved and never valid on the wire.
var ErrZeroID = errors.New("linkproto: received frame with id 0")

// Packet is a single CMD|ID|LEN|PAYLOAD|CRC8 frame, after COBS decoding,
// delimiter stripping, and CRC verification.
type Packet struct {
	Cmd       byte
	ID        byte
	Payload   []byte
	CRC       byte
	Timestamp time.Time

	// LengthMismatch is set when the frame's declared LEN byte disagreed
	// with the payload size actually present in the block. The firmware
	// occasionally appends unadvertised trailing bytes; LEN is
	// re-derived from the observed block size rather than trusted, and
	// the caller is expected to log this loudly rather than fail the
	// frame outright.
	LengthMismatch bool
}

// buildFrame assembles the raw CMD|ID|LEN|PAYLOAD|CRC8 byte sequence for
// an outbound packet, ready for COBS encoding.
func buildFrame(cmd, id byte, payload []byte) ([]byte, error) {
	if len(payload) > maxPayloadLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLong, len(payload))
	}
	frame := make([]byte, 0, minFrameLen+len(payload))
	frame = append(frame, cmd, id, byte(len(payload)))
	frame = append(frame, payload...)
	frame = append(frame, crc8(frame))
	return frame, nil
}

// parseFrame validates a raw, de-stuffed block and splits it into a
// Packet. CRC is verified over the whole block regardless of what LEN
// declares, so a LEN/size disagreement never defeats integrity checking
// — it only affects how loudly the caller should log the frame.
func parseFrame(block []byte, now time.Time) (Packet, error) {
	if len(block) < minFrameLen {
		return Packet{}, fmt.Errorf("%w: %d bytes", ErrFrameTooShort, len(block))
	}

	body := block[:len(block)-1]
	gotCRC := block[len(block)-1]
	wantCRC := crc8(body)
	if gotCRC != wantCRC {
		return Packet{}, fmt.Errorf("%w: got 0x%02x want 0x%02x", ErrCRCMismatch, gotCRC, wantCRC)
	}

	cmd, id, declaredLen := body[0], body[1], body[2]
	if id == 0 {
		return Packet{}, ErrZeroID
	}
	payload := body[3:]

	return Packet{
		Cmd:            cmd,
		ID:             id,
		Payload:        payload,
		CRC:            gotCRC,
		Timestamp:      now,
		LengthMismatch: int(declaredLen) != len(payload),
	}, nil
}

func (p Packet) String() string {
	return fmt.Sprintf("Packet{cmd=0x%02x id=%d len=%d}", p.Cmd, p.ID, len(p.Payload))
}
