// hid-bootloader
// Copyright (c) 2025 R. Dunbar Poor <rdpoor@gmail.com>
// SPDX-License-Identifier: MIT
//
// This file is part of hid-bootloader, a host-side driver for the
// Microchip USB HID bootloader protocol.

package hexfile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecord(t *testing.T) {
	t.Parallel()

	// A real record from a PIC32 build: 3 data bytes at 0x0030.
	rec, err := ParseRecord(":0300300002337A1E")
	require.NoError(t, err)

	assert.Equal(t, uint16(0x0030), rec.Address)
	assert.Equal(t, RecordData, rec.Type)
	assert.Equal(t, []byte{0x02, 0x33, 0x7A}, rec.Data)
	assert.Equal(t, byte(0x1E), rec.Checksum)
	assert.Equal(t, []byte{0x03, 0x00, 0x30, 0x00, 0x02, 0x33, 0x7A, 0x1E}, rec.Raw)
}

func TestParseRecordEndOfFile(t *testing.T) {
	t.Parallel()

	rec, err := ParseRecord(":00000001FF")
	require.NoError(t, err)

	assert.Equal(t, RecordEndOfFile, rec.Type)
	assert.Empty(t, rec.Data)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x01, 0xFF}, rec.Raw)
}

func TestParseRecordErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		line string
		want error
	}{
		{
			name: "empty line",
			line: "",
			want: ErrMissingColon,
		},
		{
			name: "missing colon",
			line: "0300300002337A1E",
			want: ErrMissingColon,
		},
		{
			name: "too short",
			line: ":00000001",
			want: ErrLineTooShort,
		},
		{
			name: "byte count exceeds line",
			line: ":040030000102A5",
			want: ErrLineTooShort,
		},
		{
			name: "non-hex digits",
			line: ":02000000ZZ01FD",
			want: ErrInvalidHex,
		},
		{
			name: "odd digit count",
			line: ":0300300002337A1",
			want: ErrInvalidHex,
		},
		{
			name: "altered checksum",
			line: ":0300300002337A1F",
			want: ErrChecksum,
		},
		{
			name: "altered data byte",
			line: ":0300300002347A1E",
			want: ErrChecksum,
		},
	}

	for _, tt := range tests {
		tt := tt // capture loop variable
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseRecord(tt.line)
			assert.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)
		})
	}
}
