// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Skymount Contributors

package linkproto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func encodeWire(t *testing.T, cmd, id byte, payload []byte) []byte {
	t.Helper()
	frame, err := buildFrame(cmd, id, payload)
	require.NoError(t, err)
	encoded, err := Encode(frame)
	require.NoError(t, err)
	return append(encoded, Delimiter)
}

func TestDecoderFeedsWholeFrame(t *testing.T) {
	d := NewDecoder()
	wire := encodeWire(t, CmdGetPositions, 7, nil)

	var got *Packet
	for _, b := range wire {
		pkt, err := d.DecodeByte(b, time.Now())
		require.NoError(t, err)
		if pkt != nil {
			got = pkt
		}
	}
	require.NotNil(t, got)
	require.Equal(t, byte(CmdGetPositions), got.Cmd)
	require.Equal(t, byte(7), got.ID)
}

func TestDecoderIgnoresRepeatedDelimiters(t *testing.T) {
	d := NewDecoder()
	pkt, err := d.DecodeByte(Delimiter, time.Now())
	require.NoError(t, err)
	require.Nil(t, pkt)

	pkt, err = d.DecodeByte(Delimiter, time.Now())
	require.NoError(t, err)
	require.Nil(t, pkt)
}

func TestDecoderRecoversAfterOverflow(t *testing.T) {
	d := NewDecoder()
	for i := 0; i < maxBlockLen+1; i++ {
		_, err := d.DecodeByte(0x01, time.Now())
		if err != nil {
			require.ErrorIs(t, err, ErrBlockOverflow)
			break
		}
	}

	wire := encodeWire(t, CmdPing, 9, nil)
	var got *Packet
	for _, b := range wire {
		pkt, err := d.DecodeByte(b, time.Now())
		require.NoError(t, err)
		if pkt != nil {
			got = pkt
		}
	}
	require.NotNil(t, got)
	require.Equal(t, byte(9), got.ID)
}

func TestDecoderRecoversFromGarbageBlock(t *testing.T) {
	d := NewDecoder()
	for _, b := range []byte{0x11, 0x22, 0x33} {
		_, err := d.DecodeByte(b, time.Now())
		require.NoError(t, err)
	}
	_, err := d.DecodeByte(Delimiter, time.Now())
	require.Error(t, err)

	wire := encodeWire(t, CmdStop, 3, nil)
	var got *Packet
	for _, b := range wire {
		pkt, derr := d.DecodeByte(b, time.Now())
		require.NoError(t, derr)
		if pkt != nil {
			got = pkt
		}
	}
	require.NotNil(t, got)
}
