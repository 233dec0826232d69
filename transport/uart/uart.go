// hid-bootloader
// Copyright (c) 2025 R. Dunbar Poor <rdpoor@gmail.com>
// SPDX-License-Identifier: MIT
//
// This file is part of hid-bootloader, a host-side driver for the
// Microchip USB HID bootloader protocol.

// Package uart provides a serial-port transport for the bootloader
// protocol, for targets whose bootloader speaks the same framed stream
// over a UART (directly or through a USB-to-serial adapter). Unlike HID,
// a serial port may deliver a frame in several pieces; the session above
// accumulates reads until the frame terminates.
package uart

import (
	"fmt"
	"time"

	"go.bug.st/serial"

	blhost "github.com/rdpoor/hid-bootloader"
)

// DefaultBaudRate matches the bootloader firmware's UART configuration.
const DefaultBaudRate = 115200

// Transport implements the blhost.Transport interface for serial ports.
type Transport struct {
	port     serial.Port
	portName string
	timeout  time.Duration
}

// New opens the named serial port (e.g. "/dev/ttyUSB0" or "COM3") at the
// default baud rate.
func New(portName string) (*Transport, error) {
	return NewWithBaudRate(portName, DefaultBaudRate)
}

// NewWithBaudRate opens the named serial port at a specific baud rate.
func NewWithBaudRate(portName string, baudRate int) (*Transport, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}

	transport := &Transport{
		port:     port,
		portName: portName,
		timeout:  5 * time.Second,
	}
	if err := transport.SetTimeout(transport.timeout); err != nil {
		_ = port.Close()
		return nil, err
	}
	return transport, nil
}

// Write sends one framed request down the wire.
func (t *Transport) Write(p []byte) error {
	if t.port == nil {
		return blhost.ErrTransportClosed
	}
	n, err := t.port.Write(p)
	if err != nil {
		return fmt.Errorf("writing %s: %w", t.portName, err)
	}
	if n != len(p) {
		return fmt.Errorf("%w: short write to %s (%d of %d bytes)",
			blhost.ErrTransportWrite, t.portName, n, len(p))
	}
	return nil
}

// Read returns whatever response bytes arrive before the timeout; an
// empty result means the device stayed silent.
func (t *Transport) Read(max int) ([]byte, error) {
	if t.port == nil {
		return nil, blhost.ErrTransportClosed
	}
	buf := make([]byte, max)
	n, err := t.port.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", t.portName, err)
	}
	return buf[:n], nil
}

// Close closes the serial port.
func (t *Transport) Close() error {
	if t.port == nil {
		return nil
	}
	port := t.port
	t.port = nil
	if err := port.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", t.portName, err)
	}
	return nil
}

// SetTimeout sets the read timeout.
func (t *Transport) SetTimeout(timeout time.Duration) error {
	t.timeout = timeout
	if t.port != nil {
		if err := t.port.SetReadTimeout(timeout); err != nil {
			return fmt.Errorf("setting timeout on %s: %w", t.portName, err)
		}
	}
	return nil
}

// IsConnected returns true while the port is open.
func (t *Transport) IsConnected() bool {
	return t.port != nil
}

// Type returns blhost.TransportUART.
func (*Transport) Type() blhost.TransportType {
	return blhost.TransportUART
}
