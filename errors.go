// hid-bootloader
// Copyright (c) 2025 R. Dunbar Poor <rdpoor@gmail.com>
// SPDX-License-Identifier: MIT
//
// This file is part of hid-bootloader, a host-side driver for the
// Microchip USB HID bootloader protocol.

package blhost

import (
	"errors"
	"fmt"
)

// Protocol errors
var (
	// ErrFraming indicates a malformed or unterminated response frame.
	ErrFraming = errors.New("framing error")
	// ErrCRCMismatch indicates a response whose CRC trailer does not match
	// the CRC computed over its body.
	ErrCRCMismatch = errors.New("response CRC mismatch")
	// ErrUnknownOpcode indicates a response opcode outside the known set.
	ErrUnknownOpcode = errors.New("unrecognized response opcode")
	// ErrNoResponse indicates a read timeout where a response was expected.
	// For ProgramFlash this is the device's documented failure signal for an
	// unwritable record, not a transport fault.
	ErrNoResponse = errors.New("no response from device")
	// ErrInvalidResponse indicates a response too short to decode.
	ErrInvalidResponse = errors.New("response too short")
	// ErrInvalidParameter indicates a request with out-of-range arguments.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Transport errors
var (
	// ErrTransportRead indicates a failed read from the transport.
	ErrTransportRead = errors.New("transport read failed")
	// ErrTransportWrite indicates a failed write to the transport.
	ErrTransportWrite = errors.New("transport write failed")
	// ErrTransportTimeout indicates the transport timed out.
	ErrTransportTimeout = errors.New("transport timeout")
	// ErrTransportClosed indicates an operation on a closed transport.
	ErrTransportClosed = errors.New("transport closed")
	// ErrCommunicationFailed indicates a generic communication failure.
	ErrCommunicationFailed = errors.New("communication failed")
	// ErrDeviceNotFound indicates no bootloader device could be located.
	ErrDeviceNotFound = errors.New("bootloader device not found")
)

// ErrorType classifies errors for retry decisions.
type ErrorType int

// Error classifications
const (
	// ErrorTypePermanent indicates an error that will not resolve on retry.
	ErrorTypePermanent ErrorType = iota
	// ErrorTypeTransient indicates an error that may resolve on retry.
	ErrorTypeTransient
	// ErrorTypeTimeout indicates a timeout.
	ErrorTypeTimeout
)

// String returns the classification name.
func (t ErrorType) String() string {
	switch t {
	case ErrorTypeTransient:
		return "transient"
	case ErrorTypeTimeout:
		return "timeout"
	case ErrorTypePermanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// TransportError wraps a transport failure with the operation and port it
// occurred on, plus a classification used by the retry layer.
type TransportError struct {
	Err       error
	Op        string
	Port      string
	Type      ErrorType
	Retryable bool
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("%s (%s): %v", e.Op, e.Port, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a classified transport error.
func NewTransportError(op, port string, err error, errType ErrorType) *TransportError {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       err,
		Type:      errType,
		Retryable: errType != ErrorTypePermanent,
	}
}

// NewTimeoutError creates a timeout transport error.
func NewTimeoutError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrTransportTimeout, ErrorTypeTimeout)
}

// retryableSentinels are the errors worth re-issuing a command over: wire
// corruption and transport hiccups. Protocol verdicts (ErrNoResponse,
// ErrUnknownOpcode) are answers, not faults, and are never retried.
var retryableSentinels = []error{
	ErrTransportRead,
	ErrTransportWrite,
	ErrTransportTimeout,
	ErrCommunicationFailed,
	ErrFraming,
	ErrCRCMismatch,
}

// IsRetryable reports whether err may resolve if the operation is retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}
	for _, sentinel := range retryableSentinels {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// GetErrorType classifies an arbitrary error.
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ErrorTypePermanent
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te.Type
	}
	if errors.Is(err, ErrTransportTimeout) || errors.Is(err, ErrNoResponse) {
		return ErrorTypeTimeout
	}
	if IsRetryable(err) {
		return ErrorTypeTransient
	}
	return ErrorTypePermanent
}
