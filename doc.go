// hid-bootloader
// Copyright (c) 2025 R. Dunbar Poor <rdpoor@gmail.com>
// SPDX-License-Identifier: MIT
//
// This file is part of hid-bootloader, a host-side driver for the
// Microchip USB HID bootloader protocol.

/*
Package blhost drives a target processor running the Microchip USB HID
bootloader: it frames requests, appends and verifies CRC16 trailers, and
decodes the fixed command set the bootloader firmware understands.

When the target is in bootloader mode it accepts five commands:

	READ_BOOT_INFO  - Device.ReadBootInfo, returns the bootloader version
	ERASE_FLASH     - Device.EraseFlash
	PROGRAM_FLASH   - Device.ProgramFlash, one hex record per call
	READ_CRC        - Device.ReadCRC, CRC16 over a program memory range
	JMP_TO_APP      - Device.JumpToApp, resets into the application

Every request is [opcode, fields...] with a little-endian CRC16 appended,
byte-stuffed into a [SOH ... EOT] frame and written to the transport. A
response, where one is expected, is unframed, CRC-checked and dispatched
on its echoed opcode.

Basic usage:

	import (
	    blhost "github.com/rdpoor/hid-bootloader"
	    "github.com/rdpoor/hid-bootloader/transport/hid"
	)

	transport, err := hid.Open(0x04D8, 0x003F)
	if err != nil {
	    log.Fatal(err)
	}
	defer transport.Close()

	device, err := blhost.New(transport, blhost.WithTimeout(5*time.Second))
	if err != nil {
	    log.Fatal(err)
	}

	version, err := device.ReadBootInfo()
	if err != nil {
	    log.Fatal(err)
	}
	fmt.Printf("bootloader version %04x\n", version)

Transport Selection:

The library supports multiple transport layers:

  - HID: USB HID via Linux hidraw, the protocol's native transport
  - UART: the same framed stream over a serial port
  - I2C: for targets wired to an embedded host's I2C bus

Verifying an image:

The hexfile package parses Intel-HEX firmware images and computes the CRC
of an address window the same way the device firmware does, so a flashed
part can be checked against its source file:

	want, _ := hexfile.RangeCRCFile("app.hex", start, end)
	got, _ := device.ReadCRC(start, end-start)
	if want != got {
	    log.Fatal("flash contents do not match image")
	}

Error Handling:

All operations return inspectable errors:

	if errors.Is(err, blhost.ErrNoResponse) {
	    // ProgramFlash: the device refused the record
	}

Note that ErrNoResponse from ProgramFlash is the bootloader's documented
failure signal - the device stays silent rather than sending an error
response - so callers must treat it as an expected failure path.

Thread Safety:

Device operations are not thread-safe. The bootloader firmware processes
one command at a time; issue commands from a single goroutine.
*/
package blhost
