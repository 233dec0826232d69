// hid-bootloader
// Copyright (c) 2025 R. Dunbar Poor <rdpoor@gmail.com>
// SPDX-License-Identifier: MIT
//
// This file is part of hid-bootloader, a host-side driver for the
// Microchip USB HID bootloader protocol.

package blhost

import (
	"encoding/binary"
	"fmt"
)

// Bootloader operation codes. The values must match the BOOTLOADER_COMMANDS
// enum in the device firmware.
const (
	opReadBootInfo byte = 0x01
	opEraseFlash   byte = 0x02
	opProgramFlash byte = 0x03
	opReadCRC      byte = 0x04
	opJumpToApp    byte = 0x05
)

// opInfo describes one operation: its wire name, whether the device sends
// a response, and how to decode that response into a 16-bit result.
type opInfo struct {
	decode          func(resp []byte) (uint16, error)
	name            string
	expectsResponse bool
}

// opTable is the closed operation set. The response decoders receive the
// CRC-stripped payload beginning with the echoed opcode.
var opTable map[byte]opInfo

func init() {
	opTable = map[byte]opInfo{
		opReadBootInfo: {
			name:            "READ_BOOT_INFO",
			expectsResponse: true,
			decode:          decodeVersionResponse,
		},
		opEraseFlash: {
			name:            "ERASE_FLASH",
			expectsResponse: true,
			decode:          decodeEmptyResponse,
		},
		opProgramFlash: {
			name:            "PROGRAM_FLASH",
			expectsResponse: true,
			decode:          decodeEmptyResponse,
		},
		opReadCRC: {
			name:            "READ_CRC",
			expectsResponse: true,
			decode:          decodeCRCResponse,
		},
		opJumpToApp: {
			name: "JMP_TO_APP",
			// The device resets instead of answering.
			expectsResponse: false,
			decode:          decodeEmptyResponse,
		},
	}
}

// decodeVersionResponse decodes [op, version_lo, version_hi].
func decodeVersionResponse(resp []byte) (uint16, error) {
	if len(resp) < 3 {
		return 0, fmt.Errorf("%w: %s needs 3 bytes, got %d",
			ErrInvalidResponse, opTable[resp[0]].name, len(resp))
	}
	version := binary.LittleEndian.Uint16(resp[1:3])
	debugf("cmd %02X %s version=%04X", resp[0], opTable[resp[0]].name, version)
	return version, nil
}

// decodeCRCResponse decodes [op, crc_lo, crc_hi].
func decodeCRCResponse(resp []byte) (uint16, error) {
	if len(resp) < 3 {
		return 0, fmt.Errorf("%w: %s needs 3 bytes, got %d",
			ErrInvalidResponse, opTable[resp[0]].name, len(resp))
	}
	crc := binary.LittleEndian.Uint16(resp[1:3])
	debugf("cmd %02X %s crc=%04X", resp[0], opTable[resp[0]].name, crc)
	return crc, nil
}

// decodeEmptyResponse decodes a bare [op] acknowledgement.
func decodeEmptyResponse(resp []byte) (uint16, error) {
	debugf("cmd %02X %s", resp[0], opTable[resp[0]].name)
	return 0, nil
}
