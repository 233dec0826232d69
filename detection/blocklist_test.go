// hid-bootloader
// Copyright (c) 2025 R. Dunbar Poor <rdpoor@gmail.com>
// SPDX-License-Identifier: MIT
//
// This file is part of hid-bootloader, a host-side driver for the
// Microchip USB HID bootloader protocol.

package detection

import (
	"testing"
)

func TestParseVIDPID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		descriptor string
		expected   string
	}{
		{"bare pair", "04D8:003F", "04D8:003F"},
		{"bare pair lowercase", "04d8:003f", "04D8:003F"},
		{"labelled", "VID:04D8 PID:003F", "04D8:003F"},
		{"key value", "vendor=04d8 product=003f", "04D8:003F"},
		{"equals form", "VID=0403 PID=6001", "0403:6001"},
		{"missing pid", "VID:04D8", ""},
		{"garbage", "not a descriptor", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := ParseVIDPID(tt.descriptor)
			if result != tt.expected {
				t.Errorf("ParseVIDPID(%q) = %q, want %q",
					tt.descriptor, result, tt.expected)
			}
		})
	}
}

func TestFormatVIDPID(t *testing.T) {
	t.Parallel()
	got := FormatVIDPID(0x04D8, 0x003F)
	if got != "04D8:003F" {
		t.Errorf("FormatVIDPID(0x04D8, 0x003F) = %q, want %q", got, "04D8:003F")
	}
}

func TestIsBlocked(t *testing.T) {
	t.Parallel()

	blocklist := []string{"046d:c52b", " 1234:5678 "}

	tests := []struct {
		name     string
		vidpid   string
		expected bool
	}{
		{"case-insensitive match", "046D:C52B", true},
		{"whitespace-tolerant match", "1234:5678", true},
		{"no match", "04D8:003F", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := IsBlocked(tt.vidpid, blocklist)
			if result != tt.expected {
				t.Errorf("IsBlocked(%q) = %v, want %v", tt.vidpid, result, tt.expected)
			}
		})
	}
}

func TestIsPathIgnored(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		devicePath  string
		ignorePaths []string
		expected    bool
	}{
		{"empty ignore list", "/dev/hidraw0", nil, false},
		{"empty device path", "", []string{"/dev/hidraw0"}, false},
		{"exact match", "/dev/hidraw0", []string{"/dev/hidraw0"}, true},
		{"case-insensitive match", "/dev/HIDRAW0", []string{"/dev/hidraw0"}, true},
		{"normalized match", "/dev/../dev/hidraw0", []string{"/dev/hidraw0"}, true},
		{"no match", "/dev/hidraw1", []string{"/dev/hidraw0"}, false},
		{"blank entries skipped", "/dev/hidraw0", []string{"", "/dev/hidraw0"}, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := IsPathIgnored(tt.devicePath, tt.ignorePaths)
			if result != tt.expected {
				t.Errorf("IsPathIgnored(%q, %v) = %v, want %v",
					tt.devicePath, tt.ignorePaths, result, tt.expected)
			}
		})
	}
}
