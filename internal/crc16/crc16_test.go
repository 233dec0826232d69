// hid-bootloader
// Copyright (c) 2025 R. Dunbar Poor <rdpoor@gmail.com>
// SPDX-License-Identifier: MIT
//
// This file is part of hid-bootloader, a host-side driver for the
// Microchip USB HID bootloader protocol.

package crc16

import "testing"

func TestChecksum(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		data []byte
		want uint16
	}{
		{
			name: "empty buffer",
			data: []byte{},
			want: 0x0000,
		},
		{
			name: "nil buffer",
			data: nil,
			want: 0x0000,
		},
		{
			name: "standard check value",
			data: []byte("123456789"),
			want: 0x31C3, // CRC-16/XMODEM reference value (poly 0x1021, init 0)
		},
		{
			name: "single zero byte",
			data: []byte{0x00},
			want: 0x0000,
		},
		{
			name: "single 0xFF byte",
			data: []byte{0xFF},
			want: 0x1EF0,
		},
		{
			name: "read boot info request body",
			data: []byte{0x01},
			want: 0x1021,
		},
	}

	for _, tt := range tests {
		tt := tt // capture loop variable
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Checksum(tt.data); got != tt.want {
				t.Errorf("Checksum() = %04X, want %04X", got, tt.want)
			}
		})
	}
}

func TestUpdateIncremental(t *testing.T) {
	t.Parallel()
	data := []byte("firmware image bytes")
	want := Checksum(data)

	var crc uint16
	for _, b := range data {
		crc = Update(crc, b)
	}

	if crc != want {
		t.Errorf("incremental CRC = %04X, want %04X", crc, want)
	}
}

func TestChecksumDeterministic(t *testing.T) {
	t.Parallel()
	data := []byte{0x04, 0x00, 0x10, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00}
	first := Checksum(data)
	for i := 0; i < 8; i++ {
		if got := Checksum(data); got != first {
			t.Fatalf("Checksum() not deterministic: %04X then %04X", first, got)
		}
	}
}
