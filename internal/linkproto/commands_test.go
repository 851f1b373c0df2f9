// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Skymount Contributors

package linkproto

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// captureEngine returns an Engine whose writes are captured verbatim
// (post-COBS-decode) so a test can assert on exact payload bytes, plus
// a channel of every frame the mount side observed.
func captureEngine(t *testing.T) (*Engine, chan Packet) {
	t.Helper()
	hostSide, mountSide := net.Pipe()
	frames := make(chan Packet, 8)
	go func() {
		dec := NewDecoder()
		buf := make([]byte, 1)
		for {
			n, err := mountSide.Read(buf)
			if err != nil || n == 0 {
				if err != nil {
					return
				}
				continue
			}
			pkt, err := dec.DecodeByte(buf[0], time.Now())
			if err != nil || pkt == nil {
				continue
			}
			if pkt.Cmd == CmdAck {
				continue
			}
			frames <- *pkt
			ackFrame, _ := buildFrame(CmdAck, 1, []byte{pkt.ID})
			encoded, _ := Encode(ackFrame)
			mountSide.Write(append(encoded, Delimiter))
		}
	}()
	e := NewEngine(hostSide, WithAttemptTimeout(time.Second), WithMaxAttempts(1))
	t.Cleanup(func() { e.Close() })
	return e, frames
}

func TestMoveStaticPayloadLayout(t *testing.T) {
	e, frames := captureEngine(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, e.MoveStatic(ctx, AxisY, -4500))

	pkt := <-frames
	require.Equal(t, byte(CmdMoveStatic), pkt.Cmd)
	require.Len(t, pkt.Payload, 5)
	require.Equal(t, byte(AxisY), pkt.Payload[0])
	require.Equal(t, int32(-4500), int32(binary.LittleEndian.Uint32(pkt.Payload[1:])))
}

func TestTrackCelestialPayloadLayout(t *testing.T) {
	e, frames := captureEngine(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	r := [9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1}
	require.NoError(t, e.TrackCelestial(ctx, 6, 30, r, 1_700_000_000, 51.5))

	pkt := <-frames
	require.Equal(t, byte(CmdTrackCelestial), pkt.Cmd)
	require.Len(t, pkt.Payload, 56)
	require.Equal(t, float32(6), getFloat32(pkt.Payload[0:4]))
	require.Equal(t, float32(30), getFloat32(pkt.Payload[4:8]))
	for i, want := range r {
		require.Equal(t, want, getFloat32(pkt.Payload[8+4*i:12+4*i]))
	}
	require.Equal(t, uint64(1_700_000_000), binary.LittleEndian.Uint64(pkt.Payload[44:52]))
	require.Equal(t, float32(51.5), getFloat32(pkt.Payload[52:56]))
}

func TestPingDoesNotAwaitAck(t *testing.T) {
	hostSide, mountSide := net.Pipe()
	defer mountSide.Close()
	go io.Copy(io.Discard, mountSide) // reads but never acknowledges
	e := NewEngine(hostSide)
	defer e.Close()

	done := make(chan struct{})
	go func() {
		require.NoError(t, e.Ping())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Ping blocked waiting for an ack it should never expect")
	}
}
