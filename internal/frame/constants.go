// hid-bootloader
// Copyright (c) 2025 R. Dunbar Poor <rdpoor@gmail.com>
// SPDX-License-Identifier: MIT
//
// This file is part of hid-bootloader, a host-side driver for the
// Microchip USB HID bootloader protocol.

// Package frame implements the byte-stuffed framing the HID bootloader
// speaks on the wire: [SOH payload... EOT], where any SOH, EOT or DLE
// inside the payload is preceded by a DLE escape byte.
package frame

// Frame markers and control bytes
const (
	SOH = 0x01 // start of frame
	EOT = 0x04 // end of frame
	DLE = 0x10 // escape for SOH/EOT/DLE inside the payload
)

// MaxMessage is the largest physical read the transport performs per call,
// set by the 64-byte HID report size of the target devices.
const MaxMessage = 64
