// hid-bootloader
// Copyright (c) 2025 R. Dunbar Poor <rdpoor@gmail.com>
// SPDX-License-Identifier: MIT
//
// This file is part of hid-bootloader, a host-side driver for the
// Microchip USB HID bootloader protocol.

package hexfile

import (
	"fmt"
	"io"
	"os"

	"github.com/rdpoor/hid-bootloader/internal/crc16"
)

// rangeCRC accumulates a CRC over the [start, end) address window of one
// parse pass, treating unwritten bytes as 0xFF (unprogrammed flash).
type rangeCRC struct {
	start   uint32
	end     uint32
	addr    uint32
	crc     uint16
	started bool
}

// RangeCRC computes the CRC-16 fingerprint of the [start, end) window of
// the Intel-HEX image read from r. Bytes below start are skipped, gaps
// between data records and the span between the last image byte and end
// are padded with 0xFF, and parsing stops as soon as the window is
// covered. The result is directly comparable against the device-reported
// CRC for the same window (Device.ReadCRC).
func RangeCRC(r io.Reader, start, end uint32) (uint16, error) {
	c := &rangeCRC{start: start, end: end}
	if _, err := Parse(r, c.emit); err != nil {
		return 0, err
	}

	// The file may end short of the window, or never touch it at all.
	if !c.started {
		c.addr = c.start
	}
	for c.addr < c.end {
		c.step(0xFF)
	}
	return c.crc, nil
}

// RangeCRCFile is RangeCRC over the named file.
func RangeCRCFile(path string, start, end uint32) (uint16, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening hex file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return RangeCRC(f, start, end)
}

func (c *rangeCRC) emit(addr uint32, b byte) Action {
	if addr < c.start {
		return Continue
	}
	if addr >= c.end {
		return Stop
	}

	if !c.started {
		// First in-window byte anchors the cursor; no backfill below it.
		c.addr = addr
		c.started = true
	} else {
		for c.addr < addr {
			c.step(0xFF)
		}
	}

	c.step(b)
	return Continue
}

func (c *rangeCRC) step(b byte) {
	c.crc = crc16.Update(c.crc, b)
	c.addr++
}
