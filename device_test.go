// hid-bootloader
// Copyright (c) 2025 R. Dunbar Poor <rdpoor@gmail.com>
// SPDX-License-Identifier: MIT
//
// This file is part of hid-bootloader, a host-side driver for the
// Microchip USB HID bootloader protocol.

package blhost

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdpoor/hid-bootloader/internal/crc16"
	"github.com/rdpoor/hid-bootloader/internal/frame"
)

// deviceReply builds the raw wire bytes a device would send for the given
// response body: CRC16 trailer appended, then framed.
func deviceReply(body []byte) []byte {
	crc := crc16.Checksum(body)
	msg := append(append([]byte(nil), body...), byte(crc), byte(crc>>8))
	return frame.Encode(msg)
}

func TestReadBootInfo(t *testing.T) {
	t.Parallel()
	mock := NewMockTransportWithResponse(deviceReply([]byte{0x01, 0x23, 0x01}))
	device, err := New(mock)
	require.NoError(t, err)

	version, err := device.ReadBootInfo()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0123), version)

	// Request body is the bare opcode plus its CRC, framed.
	assert.Equal(t, deviceReply([]byte{0x01}), mock.LastWrite())
}

func TestReadCRCRequestSerialization(t *testing.T) {
	t.Parallel()
	var captured []byte
	mock := NewMockTransportWithFunc(func(request []byte) ([]byte, error) {
		captured = request
		return deviceReply([]byte{0x04, 0x5A, 0xA5}), nil
	})
	device, err := New(mock)
	require.NoError(t, err)

	crc, err := device.ReadCRC(0x1000, 0x100)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xA55A), crc)

	// [op, address:u32-LE, length:u32-LE] + CRC16-LE, framed.
	body := []byte{0x04, 0x00, 0x10, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00}
	assert.Equal(t, deviceReply(body), captured)
}

func TestEraseFlash(t *testing.T) {
	t.Parallel()
	mock := NewMockTransportWithResponse(deviceReply([]byte{0x02}))
	device, err := New(mock)
	require.NoError(t, err)

	require.NoError(t, device.EraseFlash())
}

func TestProgramFlash(t *testing.T) {
	t.Parallel()
	record := []byte{0x02, 0x00, 0x00, 0x00, 0x00, 0x01, 0xFD}
	mock := NewMockTransportWithResponse(deviceReply([]byte{0x03}))
	device, err := New(mock)
	require.NoError(t, err)

	require.NoError(t, device.ProgramFlash(record))

	want := append([]byte{0x03}, record...)
	assert.Equal(t, deviceReply(want), mock.LastWrite())
}

func TestProgramFlashSilenceIsFailure(t *testing.T) {
	t.Parallel()
	// The bootloader signals an unwritable record by not answering at all.
	mock := NewMockTransport()
	device, err := New(mock)
	require.NoError(t, err)

	err = device.ProgramFlash([]byte{0x00, 0x00, 0x00, 0x01, 0xFF})
	assert.ErrorIs(t, err, ErrNoResponse)
}

func TestProgramFlashEmptyRecord(t *testing.T) {
	t.Parallel()
	device, err := New(NewMockTransport())
	require.NoError(t, err)

	err = device.ProgramFlash(nil)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestJumpToAppSendsWithoutReading(t *testing.T) {
	t.Parallel()
	// No scripted response: JumpToApp must not wait for one.
	mock := NewMockTransport()
	device, err := New(mock)
	require.NoError(t, err)

	require.NoError(t, device.JumpToApp())
	assert.Equal(t, deviceReply([]byte{0x05}), mock.LastWrite())
}

func TestResponseCRCMismatch(t *testing.T) {
	t.Parallel()
	// Valid frame, corrupted CRC trailer.
	body := []byte{0x01, 0x23, 0x01}
	crc := crc16.Checksum(body) ^ 0x0101
	msg := append(append([]byte(nil), body...), byte(crc), byte(crc>>8))
	mock := NewMockTransportWithResponse(frame.Encode(msg))
	device, err := New(mock)
	require.NoError(t, err)

	_, err = device.ReadBootInfo()
	assert.ErrorIs(t, err, ErrCRCMismatch)
}

func TestResponseUnknownOpcode(t *testing.T) {
	t.Parallel()
	mock := NewMockTransportWithResponse(deviceReply([]byte{0x77, 0x00, 0x00}))
	device, err := New(mock)
	require.NoError(t, err)

	_, err = device.ReadBootInfo()
	assert.ErrorIs(t, err, ErrUnknownOpcode)
}

func TestResponseBadFraming(t *testing.T) {
	t.Parallel()
	// Response does not start with SOH.
	mock := NewMockTransportWithResponse([]byte{0xFF, 0x01, 0x02, 0x03})
	device, err := New(mock)
	require.NoError(t, err)

	_, err = device.ReadBootInfo()
	assert.ErrorIs(t, err, ErrFraming)
}

func TestResponseTruncatedFrame(t *testing.T) {
	t.Parallel()
	// Frame starts but the device goes silent before EOT.
	full := deviceReply([]byte{0x01, 0x23, 0x01})
	mock := NewMockTransportWithResponse(full[:len(full)-1])
	device, err := New(mock)
	require.NoError(t, err)

	_, err = device.ReadBootInfo()
	assert.ErrorIs(t, err, ErrFraming)
}

func TestResponseArrivesInChunks(t *testing.T) {
	t.Parallel()
	// A serial transport may deliver the frame one byte at a time.
	mock := NewMockTransportWithResponse(deviceReply([]byte{0x04, 0x34, 0x12}))
	mock.ChunkSize = 1
	device, err := New(mock)
	require.NoError(t, err)

	crc, err := device.ReadCRC(0, 16)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), crc)
}

func TestResponseShortPayload(t *testing.T) {
	t.Parallel()
	// READ_BOOT_INFO echo without the version word.
	mock := NewMockTransportWithResponse(deviceReply([]byte{0x01}))
	device, err := New(mock)
	require.NoError(t, err)

	_, err = device.ReadBootInfo()
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestExchangeTransportErrors(t *testing.T) {
	t.Parallel()

	t.Run("write failure", func(t *testing.T) {
		t.Parallel()
		mock := NewMockTransport()
		mock.SetWriteError(ErrCommunicationFailed)
		device, err := New(mock)
		require.NoError(t, err)

		_, err = device.ReadBootInfo()
		assert.ErrorIs(t, err, ErrTransportWrite)
	})

	t.Run("read failure", func(t *testing.T) {
		t.Parallel()
		mock := NewMockTransportWithFunc(func([]byte) ([]byte, error) {
			return nil, ErrCommunicationFailed
		})
		device, err := New(mock)
		require.NoError(t, err)

		_, err = device.ReadBootInfo()
		assert.ErrorIs(t, err, ErrTransportRead)
	})
}

func TestExchangeContextCancelled(t *testing.T) {
	t.Parallel()
	mock := NewMockTransportWithResponse(deviceReply([]byte{0x01, 0x00, 0x01}))
	device, err := New(mock)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = device.ReadBootInfoContext(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, mock.Writes(), "cancelled exchange must not reach the wire")
}

func TestDeviceOptions(t *testing.T) {
	t.Parallel()

	t.Run("invalid timeout rejected", func(t *testing.T) {
		t.Parallel()
		_, err := New(NewMockTransport(), WithTimeout(0))
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})

	t.Run("max retries applied", func(t *testing.T) {
		t.Parallel()
		device, err := New(NewMockTransport(), WithMaxRetries(7))
		require.NoError(t, err)
		assert.Equal(t, 7, device.config.RetryConfig.MaxAttempts)
	})
}
