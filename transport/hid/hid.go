// hid-bootloader
// Copyright (c) 2025 R. Dunbar Poor <rdpoor@gmail.com>
// SPDX-License-Identifier: MIT
//
// This file is part of hid-bootloader, a host-side driver for the
// Microchip USB HID bootloader protocol.

// Package hid provides the USB HID transport for the bootloader protocol,
// implemented over the Linux hidraw interface. This is the protocol's
// native transport: each framed request travels as one 64-byte output
// report, and each response arrives as one input report.
package hid

import "errors"

// Default USB IDs for the Microchip HID bootloader.
const (
	// DefaultVendorID is Microchip Technology Inc.
	DefaultVendorID = 0x04D8
	// DefaultProductID is the HID bootloader demo PID.
	DefaultProductID = 0x003F
)

// ErrUnsupportedPlatform indicates hidraw is not available on this OS.
var ErrUnsupportedPlatform = errors.New("hidraw transport requires linux")
