// hid-bootloader
// Copyright (c) 2025 R. Dunbar Poor <rdpoor@gmail.com>
// SPDX-License-Identifier: MIT
//
// This file is part of hid-bootloader, a host-side driver for the
// Microchip USB HID bootloader protocol.

package blhost

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/rdpoor/hid-bootloader/internal/crc16"
	"github.com/rdpoor/hid-bootloader/internal/frame"
)

// DeviceConfig contains configuration options for the Device.
type DeviceConfig struct {
	// RetryConfig configures retry behavior for transport operations.
	RetryConfig *RetryConfig
	// Timeout bounds each response read.
	Timeout time.Duration
}

// DefaultDeviceConfig returns default device configuration. The 5 second
// timeout matches the bootloader firmware's worst-case flash row write.
func DefaultDeviceConfig() *DeviceConfig {
	return &DeviceConfig{
		RetryConfig: DefaultRetryConfig(),
		Timeout:     5 * time.Second,
	}
}

// Device drives one target processor in bootloader mode over a Transport.
// Every method is an independent request/response exchange; the session
// keeps no state between calls beyond the transport handle itself.
//
// Thread Safety: Device is NOT thread-safe. All methods must be called
// from a single goroutine or protected with external synchronization -
// the bootloader firmware only handles one command at a time anyway.
type Device struct {
	transport Transport
	config    *DeviceConfig
}

// New creates a new bootloader session over the given transport.
func New(transport Transport, opts ...Option) (*Device, error) {
	device := &Device{
		transport: transport,
		config:    DefaultDeviceConfig(),
	}

	for _, opt := range opts {
		if err := opt(device); err != nil {
			return nil, err
		}
	}

	if err := transport.SetTimeout(device.config.Timeout); err != nil {
		return nil, fmt.Errorf("failed to set timeout on transport: %w", err)
	}

	return device, nil
}

// Transport returns the underlying transport.
func (d *Device) Transport() Transport {
	return d.transport
}

// SetTimeout sets the response timeout for subsequent exchanges.
func (d *Device) SetTimeout(timeout time.Duration) error {
	d.config.Timeout = timeout
	if err := d.transport.SetTimeout(timeout); err != nil {
		return fmt.Errorf("failed to set timeout on transport: %w", err)
	}
	return nil
}

// SetRetryConfig updates the retry configuration.
func (d *Device) SetRetryConfig(config *RetryConfig) {
	d.config.RetryConfig = config
	if tr, ok := d.transport.(*TransportWithRetry); ok {
		tr.SetRetryConfig(config)
	}
}

// Close closes the device connection.
func (d *Device) Close() error {
	if d.transport != nil {
		if err := d.transport.Close(); err != nil {
			return fmt.Errorf("failed to close transport: %w", err)
		}
	}
	return nil
}

// ReadBootInfo requests the bootloader version number.
func (d *Device) ReadBootInfo() (uint16, error) {
	return d.ReadBootInfoContext(context.Background())
}

// ReadBootInfoContext requests the bootloader version number.
// Response: [op, version:u16-LE].
func (d *Device) ReadBootInfoContext(ctx context.Context) (uint16, error) {
	return d.exchange(ctx, []byte{opReadBootInfo})
}

// EraseFlash erases application program memory. The erased range is fixed
// at firmware compile time; it cannot be chosen from the host.
func (d *Device) EraseFlash() error {
	return d.EraseFlashContext(context.Background())
}

// EraseFlashContext erases application program memory.
func (d *Device) EraseFlashContext(ctx context.Context) error {
	_, err := d.exchange(ctx, []byte{opEraseFlash})
	return err
}

// ProgramFlash writes one hex record (binary form, without the leading
// colon) into program memory. EraseFlash must have been called first, and
// record addresses must increase monotonically across calls.
//
// An unwritable record produces no response at all: the resulting
// ErrNoResponse is the device's failure verdict, not a transport fault.
func (d *Device) ProgramFlash(record []byte) error {
	return d.ProgramFlashContext(context.Background(), record)
}

// ProgramFlashContext writes one hex record into program memory.
func (d *Device) ProgramFlashContext(ctx context.Context, record []byte) error {
	if len(record) == 0 {
		return fmt.Errorf("%w: empty hex record", ErrInvalidParameter)
	}
	body := make([]byte, 0, 1+len(record))
	body = append(body, opProgramFlash)
	body = append(body, record...)
	_, err := d.exchange(ctx, body)
	return err
}

// ReadCRC asks the device to CRC the [address, address+length) range of
// program memory. The result is comparable against hexfile.RangeCRC over
// the same window - that comparison is the whole point of the command.
func (d *Device) ReadCRC(address, length uint32) (uint16, error) {
	return d.ReadCRCContext(context.Background(), address, length)
}

// ReadCRCContext asks the device to CRC a range of program memory.
// Request: [op, address:u32-LE, length:u32-LE]; response: [op, crc:u16-LE].
func (d *Device) ReadCRCContext(ctx context.Context, address, length uint32) (uint16, error) {
	body := make([]byte, 9)
	body[0] = opReadCRC
	binary.LittleEndian.PutUint32(body[1:5], address)
	binary.LittleEndian.PutUint32(body[5:9], length)
	return d.exchange(ctx, body)
}

// JumpToApp resets the target into its application. No response is sent;
// unless the bootloader trigger condition holds, the device is gone after
// this call.
func (d *Device) JumpToApp() error {
	return d.JumpToAppContext(context.Background())
}

// JumpToAppContext resets the target into its application.
func (d *Device) JumpToAppContext(ctx context.Context) error {
	_, err := d.exchange(ctx, []byte{opJumpToApp})
	return err
}

// exchange performs one request/response wire exchange: append the CRC16
// trailer, frame, write, and - when the operation expects a response -
// read, unframe, verify the CRC, and dispatch on the echoed opcode.
func (d *Device) exchange(ctx context.Context, body []byte) (uint16, error) {
	info, ok := opTable[body[0]]
	if !ok {
		return 0, fmt.Errorf("%w: %02X", ErrUnknownOpcode, body[0])
	}

	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%s: %w", info.name, err)
	}

	crc := crc16.Checksum(body)
	msg := make([]byte, 0, len(body)+2)
	msg = append(msg, body...)
	msg = append(msg, byte(crc), byte(crc>>8))

	framed := frame.Encode(msg)
	debugf(">>> rqst %s", hexDump(framed))
	if err := d.transport.Write(framed); err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrTransportWrite, info.name, err)
	}

	if !info.expectsResponse {
		return 0, nil
	}

	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%s: %w", info.name, err)
	}

	payload, err := d.readResponse(info.name)
	if err != nil {
		return 0, err
	}
	return d.decodeResponse(payload)
}

// readResponse accumulates transport reads until a complete frame decodes.
// HID delivers the whole frame in a single report; UART may split it, so
// keep reading while the decoder reports a missing terminator and data is
// still arriving. An empty first read is the device staying silent.
func (d *Device) readResponse(opName string) ([]byte, error) {
	var buf []byte
	for {
		chunk, err := d.transport.Read(frame.MaxMessage)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrTransportRead, opName, err)
		}
		if len(chunk) == 0 {
			if len(buf) == 0 {
				return nil, fmt.Errorf("%w: %s", ErrNoResponse, opName)
			}
			// Partial frame then silence: surface the framing failure.
			_, decodeErr := frame.Decode(buf)
			return nil, fmt.Errorf("%w: %s: %v", ErrFraming, opName, decodeErr)
		}
		debugf("<<< resp %s", hexDump(chunk))
		buf = append(buf, chunk...)

		payload, decodeErr := frame.Decode(buf)
		if decodeErr == nil {
			return payload, nil
		}
		if !errors.Is(decodeErr, frame.ErrMissingEnd) {
			return nil, fmt.Errorf("%w: %s: %v", ErrFraming, opName, decodeErr)
		}
	}
}

// decodeResponse strips and verifies the CRC trailer, then dispatches on
// the echoed opcode.
func (d *Device) decodeResponse(payload []byte) (uint16, error) {
	if len(payload) < 3 { // opcode + 16-bit CRC
		return 0, fmt.Errorf("%w: %d bytes", ErrInvalidResponse, len(payload))
	}

	body := payload[:len(payload)-2]
	received := binary.LittleEndian.Uint16(payload[len(payload)-2:])
	computed := crc16.Checksum(body)
	if computed != received {
		return 0, fmt.Errorf("%w: computed %04X, received %04X",
			ErrCRCMismatch, computed, received)
	}

	info, ok := opTable[body[0]]
	if !ok {
		return 0, fmt.Errorf("%w: %02X", ErrUnknownOpcode, body[0])
	}
	return info.decode(body)
}
