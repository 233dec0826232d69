// hid-bootloader
// Copyright (c) 2025 R. Dunbar Poor <rdpoor@gmail.com>
// SPDX-License-Identifier: MIT
//
// This file is part of hid-bootloader, a host-side driver for the
// Microchip USB HID bootloader protocol.

//go:build !linux

package hid

import (
	"context"

	"github.com/rdpoor/hid-bootloader/detection"
)

// detectLinux is only available on Linux; elsewhere the detector reports
// the platform as unsupported.
func detectLinux(_ context.Context, _ *detection.Options) ([]detection.DeviceInfo, error) {
	return nil, detection.ErrUnsupportedPlatform
}
