// hid-bootloader
// Copyright (c) 2025 R. Dunbar Poor <rdpoor@gmail.com>
// SPDX-License-Identifier: MIT
//
// This file is part of hid-bootloader, a host-side driver for the
// Microchip USB HID bootloader protocol.

package hexfile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdpoor/hid-bootloader/internal/crc16"
)

func TestRangeCRCPadsTailWithFF(t *testing.T) {
	t.Parallel()
	// Two bytes at 0x0000; the window extends past the image, so the
	// result must equal the CRC of 00 01 FF FF.
	file := ":020000000001FD\n:00000001FF\n"

	got, err := RangeCRC(strings.NewReader(file), 0x0000, 0x0004)
	require.NoError(t, err)
	assert.Equal(t, crc16.Checksum([]byte{0x00, 0x01, 0xFF, 0xFF}), got)
}

func TestRangeCRCPadsGapsWithFF(t *testing.T) {
	t.Parallel()
	// 0x11 at address 0, 0x22 at address 4; the gap reads as erased flash.
	file := strings.Join([]string{
		":0100000011EE",
		":0100040022D9",
		":00000001FF",
	}, "\n")

	got, err := RangeCRC(strings.NewReader(file), 0x0000, 0x0005)
	require.NoError(t, err)
	assert.Equal(t, crc16.Checksum([]byte{0x11, 0xFF, 0xFF, 0xFF, 0x22}), got)
}

func TestRangeCRCSkipsBytesBelowWindow(t *testing.T) {
	t.Parallel()
	file := strings.Join([]string{
		":0100000011EE",
		":0100040022D9",
		":00000001FF",
	}, "\n")

	// Window starts at 0x0004: only the 0x22 byte counts.
	got, err := RangeCRC(strings.NewReader(file), 0x0004, 0x0005)
	require.NoError(t, err)
	assert.Equal(t, crc16.Checksum([]byte{0x22}), got)
}

func TestRangeCRCStopsAtWindowEnd(t *testing.T) {
	t.Parallel()
	// Second record lies past the window and must not affect the result.
	file := strings.Join([]string{
		":020000000001FD",
		":0100040022D9",
		":00000001FF",
	}, "\n")

	got, err := RangeCRC(strings.NewReader(file), 0x0000, 0x0002)
	require.NoError(t, err)
	assert.Equal(t, crc16.Checksum([]byte{0x00, 0x01}), got)
}

func TestRangeCRCWindowBeyondImage(t *testing.T) {
	t.Parallel()
	// The file never touches the window: all padding.
	file := ":020000000001FD\n:00000001FF\n"

	got, err := RangeCRC(strings.NewReader(file), 0x1000, 0x1004)
	require.NoError(t, err)
	assert.Equal(t, crc16.Checksum([]byte{0xFF, 0xFF, 0xFF, 0xFF}), got)
}

func TestRangeCRCPropagatesFormatErrors(t *testing.T) {
	t.Parallel()
	_, err := RangeCRC(strings.NewReader(":020000000001FE\n"), 0, 4)
	assert.ErrorIs(t, err, ErrChecksum)
}
