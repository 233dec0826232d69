// hid-bootloader
// Copyright (c) 2025 R. Dunbar Poor <rdpoor@gmail.com>
// SPDX-License-Identifier: MIT
//
// This file is part of hid-bootloader, a host-side driver for the
// Microchip USB HID bootloader protocol.

package hexfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Action is an emitter's verdict on whether the parse pass should continue.
type Action int

// Emitter actions
const (
	// Continue keeps the parse pass running.
	Continue Action = iota
	// Stop abandons the rest of the file without error.
	Stop
)

// EmitFunc receives one image byte at its absolute address. Returning Stop
// ends the pass early; the remaining file content is not read.
type EmitFunc func(addr uint32, b byte) Action

// AddressRange is the [Start, End) window covered by a file's data records.
// End is one past the last byte of the highest data record seen.
type AddressRange struct {
	Start uint32
	End   uint32
}

// parser holds the per-pass stream state: the extended linear address
// offset and whether an end-of-file record has been seen. A parser is
// created fresh for every pass and discarded afterwards.
type parser struct {
	emit     EmitFunc
	xaddr    uint32
	bounds   AddressRange
	seenData bool
	eofSeen  bool
}

// Parse reads Intel-HEX records from r, calling emit (when non-nil) once
// per data byte at its absolute address. Blank lines and lines beginning
// with '#' are skipped. Returns the address range covered by the file's
// data records, or nil if the file holds no data records. Errors are
// reported with the 1-based line number of the offending record.
func Parse(r io.Reader, emit EmitFunc) (*AddressRange, error) {
	p := &parser{emit: emit}

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		stop, err := p.processLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if stop {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading hex stream: %w", err)
	}

	if !p.seenData {
		return nil, nil
	}
	bounds := p.bounds
	return &bounds, nil
}

// Bounds makes a discovery pass over r and returns the address range
// covered by its data records (nil if there are none).
func Bounds(r io.Reader) (*AddressRange, error) {
	return Parse(r, nil)
}

// BoundsFile is Bounds over the named file.
func BoundsFile(path string) (*AddressRange, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening hex file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Bounds(f)
}

// EachRecord reads every record from r in order (blank and comment lines
// skipped, checksums verified) and hands each to fn. This is what the
// bootload flow uses: the device is fed every record verbatim, including
// extended-address and end-of-file records.
func EachRecord(r io.Reader, fn func(rec *Record) error) error {
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rec, err := ParseRecord(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading hex stream: %w", err)
	}
	return nil
}

// processLine dispatches one record by type. The returned bool reports
// whether the emitter asked to stop the pass.
func (p *parser) processLine(line string) (bool, error) {
	rec, err := ParseRecord(line)
	if err != nil {
		return false, err
	}

	switch rec.Type {
	case RecordData:
		return p.processData(rec)
	case RecordEndOfFile:
		p.eofSeen = true
		return false, nil
	case RecordExtLinearAddr:
		if len(rec.Data) != 2 {
			return false, ErrExtendedAddress
		}
		// Big-endian 16-bit word, shifted into the upper half of the
		// 32-bit address space per the Intel-HEX convention.
		p.xaddr = uint32(rec.Data[0])<<24 | uint32(rec.Data[1])<<16
		return false, nil
	case RecordExtSegmentAddr, RecordStartSegmentAddr, RecordStartLinearAddr:
		// Recognized but unused by the target devices.
		return false, nil
	default:
		return false, fmt.Errorf("%w 0x%02X", ErrUnknownRecordType, byte(rec.Type))
	}
}

func (p *parser) processData(rec *Record) (bool, error) {
	if p.eofSeen {
		return false, ErrDataAfterEOF
	}

	addr := p.xaddr + uint32(rec.Address)
	if !p.seenData {
		p.bounds.Start = addr
		p.seenData = true
	}
	// End advances unconditionally, even across non-contiguous records.
	p.bounds.End = addr + uint32(len(rec.Data))

	if p.emit == nil {
		return false, nil
	}
	for i, b := range rec.Data {
		if p.emit(addr+uint32(i), b) == Stop {
			return true, nil
		}
	}
	return false, nil
}
