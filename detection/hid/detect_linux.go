// hid-bootloader
// Copyright (c) 2025 R. Dunbar Poor <rdpoor@gmail.com>
// SPDX-License-Identifier: MIT
//
// This file is part of hid-bootloader, a host-side driver for the
// Microchip USB HID bootloader protocol.

//go:build linux

package hid

import (
	"context"
	"os"
	"path/filepath"
	"time"

	blhost "github.com/rdpoor/hid-bootloader"
	"github.com/rdpoor/hid-bootloader/detection"
	hidtransport "github.com/rdpoor/hid-bootloader/transport/hid"
)

// probeTimeout bounds the version query sent in Probe mode. The
// bootloader answers READ_BOOT_INFO immediately, so a silent candidate
// is not one of ours.
const probeTimeout = 500 * time.Millisecond

// detectLinux scans /sys/class/hidraw for nodes whose USB IDs match the
// bootloader's.
func detectLinux(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	entries, err := filepath.Glob("/sys/class/hidraw/hidraw*")
	if err != nil || len(entries) == 0 {
		return nil, detection.ErrNoDevicesFound
	}

	want := detection.FormatVIDPID(hidtransport.DefaultVendorID, hidtransport.DefaultProductID)

	var found []detection.DeviceInfo
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return found, ctx.Err()
		default:
		}

		contents, err := os.ReadFile(filepath.Join(entry, "device", "uevent"))
		if err != nil {
			continue
		}
		info := parseUevent(string(contents))
		if !info.ok {
			continue
		}

		vidpid := detection.FormatVIDPID(info.vendor, info.product)
		if vidpid != want {
			continue
		}

		devPath := "/dev/" + filepath.Base(entry)
		if detection.IsBlocked(vidpid, opts.Blocklist) ||
			detection.IsPathIgnored(devPath, opts.IgnorePaths) {
			continue
		}

		if opts.Mode == detection.Probe && !probeDevice(devPath) {
			continue
		}

		found = append(found, detection.DeviceInfo{
			Transport: "hid",
			Path:      devPath,
			Name:      info.name,
			Metadata:  map[string]string{"vidpid": vidpid},
		})
	}

	if len(found) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return found, nil
}

// probeDevice confirms the bootloader is listening by asking for its
// version.
func probeDevice(path string) bool {
	transport, err := hidtransport.OpenPath(path)
	if err != nil {
		return false
	}
	defer func() { _ = transport.Close() }()

	device, err := blhost.New(transport, blhost.WithTimeout(probeTimeout))
	if err != nil {
		return false
	}
	_, err = device.ReadBootInfo()
	return err == nil
}
