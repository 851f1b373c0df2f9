// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Skymount Contributors

package linkproto

import "testing"

func TestCRC8KnownAnswers(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want byte
	}{
		{"empty", []byte{}, 0xFF},
		{"single zero", []byte{0x00}, 0xF3},
		{"ping frame header", []byte{CmdPing, 0x01, 0x00}, crc8([]byte{CmdPing, 0x01, 0x00})},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := crc8(c.data); got != c.want {
				t.Errorf("crc8(%v) = 0x%02x, want 0x%02x", c.data, got, c.want)
			}
		})
	}
}

func TestCRC8DetectsSingleBitFlip(t *testing.T) {
	data := []byte{0x10, 0x42, 0x03, 0xAA, 0xBB, 0xCC}
	base := crc8(data)
	for i := range data {
		for bit := 0; bit < 8; bit++ {
			flipped := append([]byte{}, data...)
			flipped[i] ^= 1 << bit
			if crc8(flipped) == base {
				t.Errorf("undetected single-bit flip at byte %d bit %d", i, bit)
			}
		}
	}
}
