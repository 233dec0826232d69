// hid-bootloader
// Copyright (c) 2025 R. Dunbar Poor <rdpoor@gmail.com>
// SPDX-License-Identifier: MIT
//
// This file is part of hid-bootloader, a host-side driver for the
// Microchip USB HID bootloader protocol.

package detection

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultBlocklist returns VID:PID pairs of USB devices that must never
// be probed during detection. Probing an arbitrary HID device with
// bootloader commands can confuse it; anything known to misbehave goes
// here.
// Format: VID:PID in hexadecimal (case-insensitive).
func DefaultBlocklist() []string {
	return []string{
		"046D:C52B", // Logitech Unifying receiver, stalls on output reports
	}
}

// FormatVIDPID renders numeric USB IDs in the canonical VID:PID form
// used by blocklists and metadata.
func FormatVIDPID(vid, pid uint16) string {
	return fmt.Sprintf("%04X:%04X", vid, pid)
}

// IsBlocked reports whether a VID:PID pair appears in the blocklist.
func IsBlocked(vidpid string, blocklist []string) bool {
	vidpid = strings.ToUpper(strings.TrimSpace(vidpid))
	for _, blocked := range blocklist {
		if vidpid == strings.ToUpper(strings.TrimSpace(blocked)) {
			return true
		}
	}
	return false
}

// ParseVIDPID extracts a canonical VID:PID pair from a USB descriptor
// string. Accepted forms include "04D8:003F", "VID:04D8 PID:003F" and
// "vendor=04d8 product=003f". Returns "" if no pair can be found.
func ParseVIDPID(descriptor string) string {
	descriptor = strings.ToUpper(descriptor)

	var vid, pid string
	for _, key := range []string{"VID:", "VID=", "VENDOR="} {
		if idx := strings.Index(descriptor, key); idx >= 0 {
			vid = extractHex(descriptor[idx+len(key):])
			break
		}
	}
	for _, key := range []string{"PID:", "PID=", "PRODUCT="} {
		if idx := strings.Index(descriptor, key); idx >= 0 {
			pid = extractHex(descriptor[idx+len(key):])
			break
		}
	}
	if vid != "" && pid != "" {
		return vid + ":" + pid
	}

	// Bare VID:PID form.
	if parts := strings.Split(descriptor, ":"); len(parts) == 2 &&
		isHex(parts[0]) && isHex(parts[1]) {
		return descriptor
	}
	return ""
}

// extractHex returns the leading run of hex digits in s.
func extractHex(s string) string {
	var result strings.Builder
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'A' || r > 'F') {
			break
		}
		_, _ = result.WriteRune(r)
	}
	return result.String()
}

// isHex reports whether s is non-empty and entirely hex digits.
func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'A' || r > 'F') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

// IsPathIgnored reports whether a device path appears in the ignore
// list, comparing cleaned, case-folded paths.
func IsPathIgnored(devicePath string, ignorePaths []string) bool {
	if devicePath == "" || len(ignorePaths) == 0 {
		return false
	}
	normalized := normalizedPath(devicePath)
	for _, ignore := range ignorePaths {
		if ignore == "" {
			continue
		}
		if normalized == normalizedPath(ignore) || devicePath == ignore {
			return true
		}
	}
	return false
}

func normalizedPath(path string) string {
	// Lowercase for case-insensitive filesystems.
	return strings.ToLower(filepath.Clean(path))
}
