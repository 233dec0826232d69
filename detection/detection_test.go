// hid-bootloader
// Copyright (c) 2025 R. Dunbar Poor <rdpoor@gmail.com>
// SPDX-License-Identifier: MIT
//
// This file is part of hid-bootloader, a host-side driver for the
// Microchip USB HID bootloader protocol.

package detection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDetector scripts a Detect result for registry tests.
type fakeDetector struct {
	err     error
	devices []DeviceInfo
	name    string
}

func (f *fakeDetector) Transport() string { return f.name }

func (f *fakeDetector) Detect(_ context.Context, _ *Options) ([]DeviceInfo, error) {
	return f.devices, f.err
}

func TestDetectAllMergesDetectorResults(t *testing.T) {
	RegisterDetector(&fakeDetector{
		name:    "fake-hid",
		devices: []DeviceInfo{{Transport: "hid", Path: "/dev/hidraw9"}},
	})
	RegisterDetector(&fakeDetector{
		name: "fake-unsupported",
		err:  ErrUnsupportedPlatform,
	})
	RegisterDetector(&fakeDetector{
		name: "fake-empty",
		err:  ErrNoDevicesFound,
	})

	opts := DefaultOptions()
	devices, err := DetectAll(&opts)
	require.NoError(t, err)

	found := false
	for _, device := range devices {
		if device.Path == "/dev/hidraw9" {
			found = true
		}
	}
	assert.True(t, found, "fake detector's device should be reported")
}

func TestDetectAllPropagatesDetectorFailure(t *testing.T) {
	boom := errors.New("bus on fire")
	RegisterDetector(&fakeDetector{name: "fake-broken", err: boom})

	opts := DefaultOptions()
	_, err := DetectAll(&opts)
	assert.ErrorIs(t, err, boom)
}

func TestDetectAllContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := DefaultOptions()
	opts.Timeout = 0 // rely on the caller's context only
	_, err := DetectAllContext(ctx, &opts)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefaultOptions(t *testing.T) {
	t.Parallel()
	opts := DefaultOptions()
	assert.Equal(t, Safe, opts.Mode)
	assert.Equal(t, 2*time.Second, opts.Timeout)
	assert.NotNil(t, opts.Blocklist)
}

func TestDetectAllContextNilOptions(t *testing.T) {
	// nil options fall back to defaults rather than panicking.
	_, err := DetectAllContext(context.Background(), nil)
	if err != nil {
		assert.NotErrorIs(t, err, context.Canceled)
	}
}
