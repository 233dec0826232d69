// hid-bootloader
// Copyright (c) 2025 R. Dunbar Poor <rdpoor@gmail.com>
// SPDX-License-Identifier: MIT
//
// This file is part of hid-bootloader, a host-side driver for the
// Microchip USB HID bootloader protocol.

//go:build !linux

package hid

import (
	"time"

	blhost "github.com/rdpoor/hid-bootloader"
)

// Transport is a stub on platforms without hidraw support. Use the UART
// transport with a USB-to-serial adapter instead.
type Transport struct{}

// Open is unsupported on this platform.
func Open(_, _ uint16) (*Transport, error) {
	return nil, ErrUnsupportedPlatform
}

// OpenPath is unsupported on this platform.
func OpenPath(_ string) (*Transport, error) {
	return nil, ErrUnsupportedPlatform
}

// Write is unsupported on this platform.
func (*Transport) Write(_ []byte) error {
	return ErrUnsupportedPlatform
}

// Read is unsupported on this platform.
func (*Transport) Read(_ int) ([]byte, error) {
	return nil, ErrUnsupportedPlatform
}

// Close is a no-op on this platform.
func (*Transport) Close() error {
	return nil
}

// SetTimeout is a no-op on this platform.
func (*Transport) SetTimeout(_ time.Duration) error {
	return nil
}

// IsConnected always returns false on this platform.
func (*Transport) IsConnected() bool {
	return false
}

// Type returns blhost.TransportHID.
func (*Transport) Type() blhost.TransportType {
	return blhost.TransportHID
}
