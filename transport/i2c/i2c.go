// hid-bootloader
// Copyright (c) 2025 R. Dunbar Poor <rdpoor@gmail.com>
// SPDX-License-Identifier: MIT
//
// This file is part of hid-bootloader, a host-side driver for the
// Microchip USB HID bootloader protocol.

// Package i2c provides an I2C transport for the bootloader protocol, for
// targets whose bootloader exposes the framed stream through an I2C slave
// port. An idle slave clocks out 0x00 filler bytes; Read strips the filler
// and hands back only real frame bytes.
package i2c

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	blhost "github.com/rdpoor/hid-bootloader"
)

const (
	// DefaultAddr is the bootloader firmware's default I2C slave address.
	DefaultAddr = 0x60

	// idleByte is what the slave shifts out when it has nothing to say.
	idleByte = 0x00

	// maxClockFreq is the fastest bus speed the bootloader supports (400 kHz).
	maxClockFreq = 400 * physic.KiloHertz

	// pollInterval paces the read loop so a silent device does not peg the bus.
	pollInterval = time.Millisecond
)

// Transport implements the blhost.Transport interface for I2C communication.
type Transport struct {
	dev     *i2c.Dev
	busName string
	timeout time.Duration
}

// New opens the named I2C bus (e.g. "/dev/i2c-1" or "1") and targets the
// default slave address.
func New(busName string) (*Transport, error) {
	return NewWithAddr(busName, DefaultAddr)
}

// NewWithAddr opens the named I2C bus and targets a specific slave address.
func NewWithAddr(busName string, addr uint16) (*Transport, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus %s: %w", busName, err)
	}

	// Ignore error, continue with the default speed.
	_ = bus.SetSpeed(maxClockFreq)

	return &Transport{
		dev:     &i2c.Dev{Addr: addr, Bus: bus},
		busName: busName,
		timeout: 5 * time.Second,
	}, nil
}

// Write sends one framed request to the slave.
func (t *Transport) Write(p []byte) error {
	if t.dev == nil {
		return blhost.ErrTransportClosed
	}
	if err := t.dev.Tx(p, nil); err != nil {
		return fmt.Errorf("writing %s: %w", t.busName, err)
	}
	return nil
}

// Read polls the slave for response bytes until the timeout. Leading idle
// filler is discarded; an empty result means the device produced nothing
// but filler before the deadline.
func (t *Transport) Read(max int) ([]byte, error) {
	if t.dev == nil {
		return nil, blhost.ErrTransportClosed
	}

	deadline := time.Now().Add(t.timeout)
	buf := make([]byte, max)
	for {
		if err := t.dev.Tx(nil, buf); err != nil {
			return nil, fmt.Errorf("reading %s: %w", t.busName, err)
		}
		if data := trimIdle(buf); len(data) > 0 {
			out := make([]byte, len(data))
			copy(out, data)
			return out, nil
		}
		if !time.Now().Before(deadline) {
			return nil, nil // timeout
		}
		time.Sleep(pollInterval)
	}
}

// trimIdle strips the 0x00 filler an idle slave pads reads with. Filler
// can never be confused with frame content: the frame codec escapes any
// in-frame control bytes and a frame always begins with a start marker.
func trimIdle(buf []byte) []byte {
	start := 0
	for start < len(buf) && buf[start] == idleByte {
		start++
	}
	end := len(buf)
	for end > start && buf[end-1] == idleByte {
		end--
	}
	return buf[start:end]
}

// Close releases the bus handle.
func (t *Transport) Close() error {
	if t.dev == nil {
		return nil
	}
	dev := t.dev
	t.dev = nil
	if closer, ok := dev.Bus.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("closing %s: %w", t.busName, err)
		}
	}
	return nil
}

// SetTimeout sets the read timeout.
func (t *Transport) SetTimeout(timeout time.Duration) error {
	t.timeout = timeout
	return nil
}

// IsConnected returns true while the bus is open.
func (t *Transport) IsConnected() bool {
	return t.dev != nil
}

// Type returns blhost.TransportI2C.
func (*Transport) Type() blhost.TransportType {
	return blhost.TransportI2C
}

// Ensure Transport implements blhost.Transport.
var _ blhost.Transport = (*Transport)(nil)
