// hid-bootloader
// Copyright (c) 2025 R. Dunbar Poor <rdpoor@gmail.com>
// SPDX-License-Identifier: MIT
//
// This file is part of hid-bootloader, a host-side driver for the
// Microchip USB HID bootloader protocol.

// Package hexfile parses the Intel-HEX firmware image format used to feed
// the HID bootloader, and computes range CRCs over an image so a flashed
// device can be verified against its source file.
package hexfile

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// Record format errors
var (
	// ErrMissingColon indicates a record line that does not begin with ':'.
	ErrMissingColon = errors.New("hex record must start with ':'")
	// ErrLineTooShort indicates a line shorter than the fixed record header.
	ErrLineTooShort = errors.New("hex record too short")
	// ErrInvalidHex indicates non-hex characters in a record line.
	ErrInvalidHex = errors.New("hex record contains invalid hex digits")
	// ErrChecksum indicates a per-record checksum mismatch.
	ErrChecksum = errors.New("hex record checksum mismatch")
	// ErrUnknownRecordType indicates a record type outside the Intel-HEX set.
	ErrUnknownRecordType = errors.New("unrecognized hex record type")
	// ErrExtendedAddress indicates a malformed extended linear address record.
	ErrExtendedAddress = errors.New("extended linear address record must carry two data bytes")
	// ErrDataAfterEOF indicates a data record following an end-of-file record.
	ErrDataAfterEOF = errors.New("data record after end-of-file record")
)

// RecordType identifies an Intel-HEX record kind.
type RecordType byte

// Intel-HEX record types
const (
	RecordData             RecordType = 0x00
	RecordEndOfFile        RecordType = 0x01
	RecordExtSegmentAddr   RecordType = 0x02
	RecordStartSegmentAddr RecordType = 0x03
	RecordExtLinearAddr    RecordType = 0x04
	RecordStartLinearAddr  RecordType = 0x05
)

// Record is one parsed Intel-HEX line:
//
//	:BBAAAATTDD...DDCC
//
// where BB is the byte count, AAAA the 16-bit record address (before any
// extended-address offset), TT the record type, DD the data and CC the
// checksum. Raw holds the binary form of the whole record without the
// leading colon - exactly the bytes a ProgramFlash request carries.
type Record struct {
	Data     []byte
	Raw      []byte
	Address  uint16
	Type     RecordType
	Checksum byte
}

// minRecordChars is the shortest legal line: colon plus a zero-data record
// (count, address, type, checksum) in hex ASCII.
const minRecordChars = 11

// ParseRecord parses a single Intel-HEX line into a Record, verifying its
// checksum. The line must begin with ':'; blank-line and comment skipping
// is the stream parser's concern.
func ParseRecord(line string) (*Record, error) {
	if len(line) == 0 || line[0] != ':' {
		return nil, ErrMissingColon
	}
	if len(line) < minRecordChars {
		return nil, fmt.Errorf("%w: %q", ErrLineTooShort, line)
	}

	raw, err := hex.DecodeString(line[1:])
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHex, line)
	}

	count := int(raw[0])
	if len(raw) < 5+count {
		return nil, fmt.Errorf("%w: %q", ErrLineTooShort, line)
	}
	raw = raw[:5+count]

	var sum byte
	for _, b := range raw {
		sum += b
	}
	if sum != 0 {
		return nil, fmt.Errorf("%w in %q", ErrChecksum, line)
	}

	return &Record{
		Address:  uint16(raw[1])<<8 | uint16(raw[2]),
		Type:     RecordType(raw[3]),
		Data:     raw[4 : 4+count],
		Checksum: raw[4+count],
		Raw:      raw,
	}, nil
}
