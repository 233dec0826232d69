// hid-bootloader
// Copyright (c) 2025 R. Dunbar Poor <rdpoor@gmail.com>
// SPDX-License-Identifier: MIT
//
// This file is part of hid-bootloader, a host-side driver for the
// Microchip USB HID bootloader protocol.

package hid

import (
	"testing"

	"github.com/stretchr/testify/assert"

	blhost "github.com/rdpoor/hid-bootloader"
)

func TestDefaultUSBIDs(t *testing.T) {
	t.Parallel()
	// Microchip's published IDs for the HID bootloader demo firmware.
	assert.Equal(t, uint16(0x04D8), uint16(DefaultVendorID))
	assert.Equal(t, uint16(0x003F), uint16(DefaultProductID))
}

func TestTransportType(t *testing.T) {
	t.Parallel()
	transport := &Transport{}
	assert.Equal(t, blhost.TransportHID, transport.Type())
}

func TestOpenPathMissingNode(t *testing.T) {
	t.Parallel()
	_, err := OpenPath("/dev/hidraw-does-not-exist")
	assert.Error(t, err)
}
