// hid-bootloader
// Copyright (c) 2025 R. Dunbar Poor <rdpoor@gmail.com>
// SPDX-License-Identifier: MIT
//
// This file is part of hid-bootloader, a host-side driver for the
// Microchip USB HID bootloader protocol.

// Package crc16 implements the 16-bit CRC used by the HID bootloader
// firmware, both for wire-message integrity and for fingerprinting ranges
// of program memory.
//
// The algorithm is polynomial 0x1021 with initial value 0, computed four
// bits at a time from a 16-entry nibble table (high nibble first). The
// check value for "123456789" is 0x31C3. Note that despite what some of
// the bootloader sources call it, this is not CCITT-FALSE (which starts
// from 0xFFFF) - the firmware starts from 0, and the host must match it
// byte for byte or the device rejects every frame.
package crc16

// crcTable holds the 16 nibble entries for polynomial 0x1021.
var crcTable = [16]uint16{
	0x0000, 0x1021, 0x2042, 0x3063, 0x4084, 0x50A5, 0x60C6, 0x70E7,
	0x8108, 0x9129, 0xA14A, 0xB16B, 0xC18C, 0xD1AD, 0xE1CE, 0xF1EF,
}

// Update folds a single byte into crc and returns the new CRC state.
func Update(crc uint16, b byte) uint16 {
	i := (crc >> 12) ^ uint16(b>>4)
	crc = crcTable[i&0x0F] ^ (crc << 4)
	i = (crc >> 12) ^ uint16(b)
	crc = crcTable[i&0x0F] ^ (crc << 4)
	return crc
}

// Checksum computes the CRC of data starting from the zero initial state.
func Checksum(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc = Update(crc, b)
	}
	return crc
}
