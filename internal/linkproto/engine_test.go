// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Skymount Contributors

package linkproto

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// mockMount reads frames off one end of a net.Pipe and replies with a
// CmdAck whose payload names the received frame's ID, simulating
// firmware that acknowledges every command it receives.
func mockMount(t *testing.T, conn net.Conn) {
	t.Helper()
	dec := NewDecoder()
	buf := make([]byte, 1)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		pkt, err := dec.DecodeByte(buf[0], time.Now())
		if err != nil || pkt == nil {
			continue
		}
		if pkt.Cmd == CmdAck {
			continue
		}
		ackFrame, err := buildFrame(CmdAck, 1, []byte{pkt.ID})
		if err != nil {
			return
		}
		encoded, err := Encode(ackFrame)
		if err != nil {
			return
		}
		if _, err := conn.Write(append(encoded, Delimiter)); err != nil {
			return
		}
	}
}

func newTestEngine(t *testing.T) (*Engine, net.Conn) {
	t.Helper()
	hostSide, mountSide := net.Pipe()
	go mockMount(t, mountSide)
	e := NewEngine(hostSide, WithAttemptTimeout(200*time.Millisecond), WithMaxAttempts(2))
	t.Cleanup(func() { e.Close() })
	return e, mountSide
}

func TestSendReceivesAck(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, e.Send(ctx, CmdStop, nil))
}

func TestSendRetriesThenExhausts(t *testing.T) {
	hostSide, mountSide := net.Pipe()
	go io.Copy(io.Discard, mountSide) // reads but never replies: simulates a silent mount
	e := NewEngine(hostSide, WithAttemptTimeout(30*time.Millisecond), WithMaxAttempts(3))
	defer e.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := e.Send(ctx, CmdStop, nil)
	require.ErrorIs(t, err, ErrRetriesExhausted)
}

func TestSendHonorsContextCancellation(t *testing.T) {
	hostSide, mountSide := net.Pipe()
	go io.Copy(io.Discard, mountSide) // reads but never replies
	e := NewEngine(hostSide, WithAttemptTimeout(5*time.Second), WithMaxAttempts(5))
	defer e.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := e.Send(ctx, CmdStop, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestLossyFirstAttemptRetriesWithSameID(t *testing.T) {
	hostSide, mountSide := net.Pipe()
	dropFirst := true
	var seenIDs []byte

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
			seenIDs = append(seenIDs, pkt.ID)
			if dropFirst {
				dropFirst = false
				continue
			}
			ackFrame, _ := buildFrame(CmdAck, 1, []byte{pkt.ID})
			encoded, _ := Encode(ackFrame)
			mountSide.Write(append(encoded, Delimiter))
		}
	}()

	e := NewEngine(hostSide, WithAttemptTimeout(100*time.Millisecond), WithMaxAttempts(3))
	defer e.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, e.Send(ctx, CmdStop, nil))
	require.Len(t, seenIDs, 2)
	require.Equal(t, seenIDs[0], seenIDs[1])
}

func TestEventDispatchToPositionSubscriber(t *testing.T) {
	e, mountSide := newTestEngine(t)

	received := make(chan PositionEvent, 1)
	e.OnPosition(func(ev PositionEvent) { received <- ev })

	payload := make([]byte, 12)
	putInt32(payload[0:4], 100)
	putInt32(payload[4:8], 200)
	putInt32(payload[8:12], 300)
	evtFrame, err := buildFrame(EvtPosition, 55, payload)
	require.NoError(t, err)
	encoded, err := Encode(evtFrame)
	require.NoError(t, err)
	_, err = mountSide.Write(append(encoded, Delimiter))
	require.NoError(t, err)

	select {
	case ev := <-received:
		require.Equal(t, PositionEvent{X: 100, Y: 200, Z: 300}, ev)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for position event")
	}
}

func TestBadCRCDropsFrameWithoutEvent(t *testing.T) {
	e, mountSide := newTestEngine(t)

	received := make(chan PositionEvent, 2)
	e.OnPosition(func(ev PositionEvent) { received <- ev })

	payload := make([]byte, 12)
	putInt32(payload[0:4], 1)
	putInt32(payload[4:8], 2)
	putInt32(payload[8:12], 3)
	badFrame, err := buildFrame(EvtPosition, 9, payload)
	require.NoError(t, err)
	badFrame[len(badFrame)-1] ^= 0xFF // flip CRC
	encoded, err := Encode(badFrame)
	require.NoError(t, err)
	_, err = mountSide.Write(append(encoded, Delimiter))
	require.NoError(t, err)

	goodFrame, err := buildFrame(EvtPosition, 10, payload)
	require.NoError(t, err)
	encoded, err = Encode(goodFrame)
	require.NoError(t, err)
	_, err = mountSide.Write(append(encoded, Delimiter))
	require.NoError(t, err)

	select {
	case ev := <-received:
		require.Equal(t, PositionEvent{X: 1, Y: 2, Z: 3}, ev)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for position event after bad-CRC frame")
	}
	require.Len(t, received, 0)
}
