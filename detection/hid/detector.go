// hid-bootloader
// Copyright (c) 2025 R. Dunbar Poor <rdpoor@gmail.com>
// SPDX-License-Identifier: MIT
//
// This file is part of hid-bootloader, a host-side driver for the
// Microchip USB HID bootloader protocol.

// Package hid detects bootloader devices on the USB HID transport by
// scanning the hidraw class in sysfs for matching USB IDs.
package hid

import (
	"context"
	"runtime"

	"github.com/rdpoor/hid-bootloader/detection"
)

// detector implements the detection.Detector interface for HID devices.
type detector struct{}

// New creates a new HID detector.
func New() detection.Detector {
	return &detector{}
}

// init registers the detector on package import.
func init() {
	detection.RegisterDetector(New())
}

// Transport returns the transport type.
func (*detector) Transport() string {
	return "hid"
}

// Detect searches for bootloader devices on the HID transport.
func (*detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	if runtime.GOOS != "linux" {
		return nil, detection.ErrUnsupportedPlatform
	}
	return detectLinux(ctx, opts)
}
