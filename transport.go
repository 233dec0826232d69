// hid-bootloader
// Copyright (c) 2025 R. Dunbar Poor <rdpoor@gmail.com>
// SPDX-License-Identifier: MIT
//
// This file is part of hid-bootloader, a host-side driver for the
// Microchip USB HID bootloader protocol.

package blhost

import (
	"context"
	"fmt"
	"time"
)

// Transport is the raw byte pipe to a device in bootloader mode. It can be
// implemented by USB HID, UART or I2C backends; framing and CRC handling
// live above it in Device.
//
// A transport is exclusively owned by one Device at a time. The bootloader
// enforces one-command-at-a-time semantics, so transports are not required
// to support concurrent calls.
type Transport interface {
	// Write sends one framed request to the device.
	Write(p []byte) error

	// Read returns up to max bytes of response data. A read that times out
	// returns a nil error and fewer bytes - possibly none; the caller
	// decides whether silence is a protocol verdict or a fault.
	Read(max int) ([]byte, error)

	// Close closes the transport connection.
	Close() error

	// SetTimeout sets the read timeout for the transport.
	SetTimeout(timeout time.Duration) error

	// IsConnected returns true if the transport is connected.
	IsConnected() bool

	// Type returns the transport type.
	Type() TransportType
}

// TransportType represents the type of transport.
type TransportType string

const (
	// TransportHID represents USB HID (hidraw) transport.
	TransportHID TransportType = "hid"
	// TransportUART represents UART/serial transport.
	TransportUART TransportType = "uart"
	// TransportI2C represents I2C bus transport.
	TransportI2C TransportType = "i2c"
	// TransportMock represents a mock transport for testing.
	TransportMock TransportType = "mock"
)

// TransportWithRetry wraps a Transport, retrying transient I/O faults.
// Empty reads pass through untouched: a silent device is a protocol
// verdict (see ErrNoResponse), never something to retry down here.
type TransportWithRetry struct {
	transport Transport
	config    *RetryConfig
}

// NewTransportWithRetry creates a new transport wrapper with retry logic.
func NewTransportWithRetry(transport Transport, config *RetryConfig) *TransportWithRetry {
	if config == nil {
		config = DefaultRetryConfig()
	}
	return &TransportWithRetry{
		transport: transport,
		config:    config,
	}
}

// Write sends a frame, retrying transient failures.
func (t *TransportWithRetry) Write(p []byte) error {
	return RetryWithConfig(context.Background(), t.config, func() error {
		if err := t.transport.Write(p); err != nil {
			return &TransportError{
				Op:        "Write",
				Port:      string(t.transport.Type()),
				Err:       err,
				Type:      GetErrorType(err),
				Retryable: IsRetryable(err),
			}
		}
		return nil
	})
}

// Read reads response bytes, retrying transient failures.
func (t *TransportWithRetry) Read(max int) ([]byte, error) {
	var result []byte
	err := RetryWithConfig(context.Background(), t.config, func() error {
		var err error
		result, err = t.transport.Read(max)
		if err != nil {
			return &TransportError{
				Op:        "Read",
				Port:      string(t.transport.Type()),
				Err:       err,
				Type:      GetErrorType(err),
				Retryable: IsRetryable(err),
			}
		}
		return nil
	})
	return result, err
}

// Close closes the underlying transport.
func (t *TransportWithRetry) Close() error {
	if err := t.transport.Close(); err != nil {
		return fmt.Errorf("failed to close underlying transport: %w", err)
	}
	return nil
}

// SetTimeout sets the read timeout on the underlying transport.
func (t *TransportWithRetry) SetTimeout(timeout time.Duration) error {
	if err := t.transport.SetTimeout(timeout); err != nil {
		return fmt.Errorf("failed to set timeout on underlying transport: %w", err)
	}
	return nil
}

// IsConnected returns true if the underlying transport is connected.
func (t *TransportWithRetry) IsConnected() bool {
	return t.transport.IsConnected()
}

// Type returns the underlying transport type.
func (t *TransportWithRetry) Type() TransportType {
	return t.transport.Type()
}

// SetRetryConfig updates the retry configuration.
func (t *TransportWithRetry) SetRetryConfig(config *RetryConfig) {
	t.config = config
}
