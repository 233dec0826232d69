// hid-bootloader
// Copyright (c) 2025 R. Dunbar Poor <rdpoor@gmail.com>
// SPDX-License-Identifier: MIT
//
// This file is part of hid-bootloader, a host-side driver for the
// Microchip USB HID bootloader protocol.

package frame

import "errors"

// Framing errors
var (
	// ErrMissingStart indicates the buffer does not begin with SOH.
	ErrMissingStart = errors.New("frame must start with SOH")
	// ErrMissingEnd indicates the buffer ran out before an unescaped EOT.
	ErrMissingEnd = errors.New("frame must end with EOT")
)

// Encode wraps payload in a frame: SOH, then the payload with every SOH,
// EOT and DLE preceded by a DLE, then EOT. The result is
// len(payload) + 2 + (number of escaped bytes) long.
func Encode(payload []byte) []byte {
	encoded := make([]byte, 0, len(payload)+2)
	encoded = append(encoded, SOH)
	for _, b := range payload {
		if b == SOH || b == EOT || b == DLE {
			encoded = append(encoded, DLE)
		}
		encoded = append(encoded, b)
	}
	return append(encoded, EOT)
}

// Decode extracts the payload from a framed buffer. Decoding stops at the
// first unescaped EOT; any bytes after it belong to the caller's I/O layer
// and are ignored here. Returns ErrMissingStart if the buffer does not
// begin with SOH, and ErrMissingEnd if it runs out (or ends on a dangling
// DLE) before an unescaped EOT is seen.
func Decode(buf []byte) ([]byte, error) {
	if len(buf) == 0 || buf[0] != SOH {
		return nil, ErrMissingStart
	}

	decoded := make([]byte, 0, len(buf))
	escaping := false
	for _, b := range buf[1:] {
		switch {
		case escaping:
			decoded = append(decoded, b)
			escaping = false
		case b == DLE:
			escaping = true
		case b == EOT:
			return decoded, nil
		default:
			decoded = append(decoded, b)
		}
	}
	return nil, ErrMissingEnd
}
