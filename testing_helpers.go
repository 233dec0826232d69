// hid-bootloader
// Copyright (c) 2025 R. Dunbar Poor <rdpoor@gmail.com>
// SPDX-License-Identifier: MIT
//
// This file is part of hid-bootloader, a host-side driver for the
// Microchip USB HID bootloader protocol.

package blhost

import (
	"sync"
	"time"
)

// MockTransport is an in-memory Transport for tests. Each Write is
// recorded and handed to ResponseFunc (when set) to produce the bytes the
// next Reads will return; a nil response models a silent device, which is
// how ProgramFlash failures look on the wire.
type MockTransport struct {
	// ResponseFunc maps a written frame to the raw bytes the device sends
	// back. Takes precedence over Response.
	ResponseFunc func(request []byte) ([]byte, error)
	// Response is a fixed reply queued after every Write.
	Response []byte

	mu       sync.Mutex
	writes   [][]byte
	pending  []byte
	readErr  error
	writeErr error
	// ChunkSize splits reads to simulate a streaming transport; 0 means
	// return everything available up to the caller's max.
	ChunkSize int
	timeout   time.Duration
	closed    bool
}

// NewMockTransport creates an empty mock transport.
func NewMockTransport() *MockTransport {
	return &MockTransport{timeout: 5 * time.Second}
}

// NewMockTransportWithResponse creates a mock that answers every request
// with the given raw bytes.
func NewMockTransportWithResponse(response []byte) *MockTransport {
	m := NewMockTransport()
	m.Response = response
	return m
}

// NewMockTransportWithFunc creates a mock with a dynamic response function.
func NewMockTransportWithFunc(fn func(request []byte) ([]byte, error)) *MockTransport {
	m := NewMockTransport()
	m.ResponseFunc = fn
	return m
}

// Write records the frame and queues the scripted response.
func (m *MockTransport) Write(p []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrTransportClosed
	}
	if m.writeErr != nil {
		return m.writeErr
	}

	request := append([]byte(nil), p...)
	m.writes = append(m.writes, request)

	switch {
	case m.ResponseFunc != nil:
		resp, err := m.ResponseFunc(request)
		if err != nil {
			m.readErr = err
			return nil
		}
		m.pending = append(m.pending, resp...)
	case m.Response != nil:
		m.pending = append(m.pending, m.Response...)
	}
	return nil
}

// Read returns queued response bytes; an empty result models a timeout.
func (m *MockTransport) Read(max int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrTransportClosed
	}
	if m.readErr != nil {
		err := m.readErr
		m.readErr = nil
		return nil, err
	}

	n := len(m.pending)
	if n == 0 {
		return nil, nil
	}
	if m.ChunkSize > 0 && n > m.ChunkSize {
		n = m.ChunkSize
	}
	if n > max {
		n = max
	}
	out := append([]byte(nil), m.pending[:n]...)
	m.pending = m.pending[n:]
	return out, nil
}

// Writes returns every frame written so far.
func (m *MockTransport) Writes() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.writes))
	copy(out, m.writes)
	return out
}

// LastWrite returns the most recent frame written, or nil.
func (m *MockTransport) LastWrite() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.writes) == 0 {
		return nil
	}
	return append([]byte(nil), m.writes[len(m.writes)-1]...)
}

// SetWriteError makes subsequent Writes fail with err.
func (m *MockTransport) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// SetReadError makes the next Read fail with err.
func (m *MockTransport) SetReadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
}

// Close marks the transport closed.
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// SetTimeout records the timeout; the mock never actually blocks.
func (m *MockTransport) SetTimeout(timeout time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeout = timeout
	return nil
}

// IsConnected returns true until the mock is closed.
func (m *MockTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

// Type returns TransportMock.
func (*MockTransport) Type() TransportType {
	return TransportMock
}
