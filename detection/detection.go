// hid-bootloader
// Copyright (c) 2025 R. Dunbar Poor <rdpoor@gmail.com>
// SPDX-License-Identifier: MIT
//
// This file is part of hid-bootloader, a host-side driver for the
// Microchip USB HID bootloader protocol.

// Package detection discovers devices running the bootloader firmware.
// Transport-specific detectors register themselves on import; callers use
// DetectAll to enumerate every candidate the registered detectors find.
package detection

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Detection errors.
var (
	// ErrNoDevicesFound indicates no bootloader devices were detected.
	ErrNoDevicesFound = errors.New("no bootloader devices found")
	// ErrUnsupportedPlatform indicates detection is not available on this OS.
	ErrUnsupportedPlatform = errors.New("detection not supported on this platform")
	// ErrDetectionTimeout indicates detection exceeded the configured timeout.
	ErrDetectionTimeout = errors.New("detection timed out")
)

// Mode controls how intrusive detection may be.
type Mode int

const (
	// Safe enumerates device nodes and matches USB descriptors without
	// sending any bootloader commands. A device mid-flash is never
	// disturbed.
	Safe Mode = iota
	// Probe additionally opens candidates and issues a version query to
	// confirm the bootloader is listening.
	Probe
)

// DeviceInfo describes a detected bootloader device.
type DeviceInfo struct {
	Metadata  map[string]string
	Transport string
	Path      string
	Name      string
}

// Options configures a detection pass.
type Options struct {
	// Blocklist holds VID:PID pairs that must never be probed.
	Blocklist []string
	// IgnorePaths holds device paths to skip.
	IgnorePaths []string
	// Timeout bounds the whole detection pass.
	Timeout time.Duration
	// Mode selects Safe or Probe detection.
	Mode Mode
}

// DefaultOptions returns the options most callers want: a safe,
// descriptor-only scan with a short timeout.
func DefaultOptions() Options {
	return Options{
		Timeout:   2 * time.Second,
		Mode:      Safe,
		Blocklist: DefaultBlocklist(),
	}
}

// Detector finds bootloader devices reachable over one transport.
type Detector interface {
	// Transport returns the transport name ("hid", "uart", "i2c").
	Transport() string
	// Detect returns every candidate device found within opts.Timeout.
	Detect(ctx context.Context, opts *Options) ([]DeviceInfo, error)
}

var (
	detectorsMu sync.RWMutex
	detectors   []Detector
)

// RegisterDetector adds a detector to the registry. Transport packages
// call this from init; applications can add their own.
func RegisterDetector(d Detector) {
	detectorsMu.Lock()
	defer detectorsMu.Unlock()
	detectors = append(detectors, d)
}

// registeredDetectors returns a snapshot of the registry.
func registeredDetectors() []Detector {
	detectorsMu.RLock()
	defer detectorsMu.RUnlock()
	snapshot := make([]Detector, len(detectors))
	copy(snapshot, detectors)
	return snapshot
}

// DetectAll runs every registered detector and merges the results.
func DetectAll(opts *Options) ([]DeviceInfo, error) {
	return DetectAllContext(context.Background(), opts)
}

// DetectAllContext runs every registered detector with context support.
// Detectors that report ErrUnsupportedPlatform or find nothing are
// skipped; ErrNoDevicesFound is returned only when no detector produced
// a device.
func DetectAllContext(ctx context.Context, opts *Options) ([]DeviceInfo, error) {
	if opts == nil {
		defaults := DefaultOptions()
		opts = &defaults
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var found []DeviceInfo
	for _, detector := range registeredDetectors() {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return found, ErrDetectionTimeout
			}
			return found, ctx.Err()
		default:
		}

		devices, err := detector.Detect(ctx, opts)
		if err != nil {
			if errors.Is(err, ErrUnsupportedPlatform) || errors.Is(err, ErrNoDevicesFound) {
				continue
			}
			return found, err
		}
		found = append(found, devices...)
	}

	if len(found) == 0 {
		return nil, ErrNoDevicesFound
	}
	return found, nil
}
