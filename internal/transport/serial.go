// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Skymount Contributors

// Package transport owns the byte-level connection to the mount: opening
// the serial port, probing for it when the caller doesn't name one, and
// performing the reset handshake the firmware expects on connect.
package transport

import (
	"fmt"
	"path/filepath"
	"time"

	"go.bug.st/serial"
)

// DefaultBaudRate matches the mount firmware's default UART
// configuration: 9600 8N1.
const DefaultBaudRate = 9600

// readTimeout bounds a single blocking Read call on the serial port so
// the engine's receiver goroutine can periodically check for shutdown
// instead of blocking forever.
const readTimeout = time.Second

// fixedPaths are probed in order before falling back to a USB glob.
var fixedPaths = []string{
	"/dev/ttyS0",
	"/dev/serial0",
	"/dev/ttyAMA0",
	"/dev/ttyUSB0",
}

// SerialTransport wraps a go.bug.st/serial port so it satisfies
// linkproto.Transport.
type SerialTransport struct {
	port serial.Port
}

func (s *SerialTransport) Read(p []byte) (int, error)  { return s.port.Read(p) }
func (s *SerialTransport) Write(p []byte) (int, error) { return s.port.Write(p) }
func (s *SerialTransport) Close() error                { return s.port.Close() }

// Open opens path at baud, configures an 8N1 frame (the firmware's UART
// default), sets the receiver's read timeout, and runs the reset
// handshake before returning.
func Open(path string, baud int) (*SerialTransport, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("transport: open %s: %w", path, err)
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("transport: set read timeout: %w", err)
	}

	t := &SerialTransport{port: port}
	if err := t.resetHandshake(); err != nil {
		port.Close()
		return nil, err
	}
	return t, nil
}

// resetHandshake writes three delimiter bytes to flush any partial frame
// the firmware might be mid-way through assembling, waits for it to
// settle, then drains whatever it has buffered to send back before the
// caller starts issuing real commands.
func (t *SerialTransport) resetHandshake() error {
	if _, err := t.port.Write([]byte{0x00, 0x00, 0x00}); err != nil {
		return fmt.Errorf("transport: reset handshake write: %w", err)
	}
	time.Sleep(100 * time.Millisecond)

	if err := t.port.SetReadTimeout(50 * time.Millisecond); err != nil {
		return fmt.Errorf("transport: reset handshake drain timeout: %w", err)
	}
	buf := make([]byte, 64)
	for {
		n, err := t.port.Read(buf)
		if err != nil || n == 0 {
			break
		}
	}
	return t.port.SetReadTimeout(readTimeout)
}

// Discover probes the fixed device paths spec.md §6 names, in order,
// falling back to a glob over /dev/ttyUSB* (the USB-serial fallback
// the field tool's find_serial_port used, and that the fixed four-path
// list on its own doesn't cover) when none of them exist.
func Discover() (string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return "", fmt.Errorf("transport: list ports: %w", err)
	}

	for _, p := range fixedPaths {
		for _, found := range ports {
			if found == p {
				return p, nil
			}
		}
	}

	for _, p := range ports {
		matched, err := filepath.Match("/dev/ttyUSB*", p)
		if err == nil && matched {
			return p, nil
		}
	}
	return "", fmt.Errorf("transport: no mount found among %v or /dev/ttyUSB*", fixedPaths)
}
