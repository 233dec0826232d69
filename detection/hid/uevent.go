// hid-bootloader
// Copyright (c) 2025 R. Dunbar Poor <rdpoor@gmail.com>
// SPDX-License-Identifier: MIT
//
// This file is part of hid-bootloader, a host-side driver for the
// Microchip USB HID bootloader protocol.

package hid

import (
	"strconv"
	"strings"
)

// hidInfo holds the fields of interest from a HID device's sysfs uevent.
type hidInfo struct {
	name    string
	vendor  uint16
	product uint16
	ok      bool
}

// parseUevent extracts the USB IDs and product name from the contents of
// /sys/class/hidraw/hidrawN/device/uevent. The HID_ID line has the form
// "HID_ID=0003:000004D8:0000003F" (bus, vendor, product).
func parseUevent(contents string) hidInfo {
	var info hidInfo
	for _, line := range strings.Split(contents, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "HID_ID="):
			parts := strings.Split(strings.TrimPrefix(line, "HID_ID="), ":")
			if len(parts) != 3 {
				continue
			}
			vendor, errV := strconv.ParseUint(parts[1], 16, 32)
			product, errP := strconv.ParseUint(parts[2], 16, 32)
			if errV != nil || errP != nil {
				continue
			}
			info.vendor = uint16(vendor)
			info.product = uint16(product)
			info.ok = true
		case strings.HasPrefix(line, "HID_NAME="):
			info.name = strings.TrimPrefix(line, "HID_NAME=")
		}
	}
	return info
}
