// hid-bootloader
// Copyright (c) 2025 R. Dunbar Poor <rdpoor@gmail.com>
// SPDX-License-Identifier: MIT
//
// This file is part of hid-bootloader, a host-side driver for the
// Microchip USB HID bootloader protocol.

//go:build linux

package hid

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	blhost "github.com/rdpoor/hid-bootloader"
)

// hidIocGRawInfo is HIDIOCGRAWINFO: _IOR('H', 0x03, struct hidraw_devinfo).
const hidIocGRawInfo = 0x80084803

// rawInfo mirrors struct hidraw_devinfo from <linux/hidraw.h>.
type rawInfo struct {
	Bustype uint32
	Vendor  int16
	Product int16
}

// Transport implements the blhost.Transport interface over a Linux hidraw
// device node.
type Transport struct {
	path      string
	fd        int
	timeout   time.Duration
	connected bool
}

// Open enumerates /dev/hidraw* and opens the first node whose USB vendor
// and product IDs match. Returns blhost.ErrDeviceNotFound if no node
// matches.
func Open(vid, pid uint16) (*Transport, error) {
	paths, err := filepath.Glob("/dev/hidraw*")
	if err != nil {
		return nil, fmt.Errorf("enumerating hidraw nodes: %w", err)
	}

	for _, path := range paths {
		transport, err := OpenPath(path)
		if err != nil {
			continue // no permission, device yanked, etc.
		}
		info, err := transport.devInfo()
		if err == nil && uint16(info.Vendor) == vid && uint16(info.Product) == pid {
			return transport, nil
		}
		_ = transport.Close()
	}
	return nil, fmt.Errorf("%w: no hidraw node with VID:PID %04X:%04X",
		blhost.ErrDeviceNotFound, vid, pid)
}

// OpenPath opens a specific hidraw node, e.g. "/dev/hidraw2".
func OpenPath(path string) (*Transport, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return &Transport{
		path:      path,
		fd:        fd,
		timeout:   5 * time.Second,
		connected: true,
	}, nil
}

// devInfo queries the node's bus type and vendor/product IDs.
func (t *Transport) devInfo() (*rawInfo, error) {
	var info rawInfo
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(t.fd),
		uintptr(hidIocGRawInfo), uintptr(unsafe.Pointer(&info)))
	if errno != 0 {
		return nil, fmt.Errorf("HIDIOCGRAWINFO on %s: %w", t.path, errno)
	}
	return &info, nil
}

// Write sends one framed request as a single HID output report. The
// leading 0x00 is the report number, required by the HID stack (and,
// historically, the Windows driver the original host tool catered to).
func (t *Transport) Write(p []byte) error {
	if !t.connected {
		return blhost.ErrTransportClosed
	}
	buf := make([]byte, 0, len(p)+1)
	buf = append(buf, 0x00)
	buf = append(buf, p...)

	n, err := unix.Write(t.fd, buf)
	if err != nil {
		return fmt.Errorf("writing %s: %w", t.path, err)
	}
	if n != len(buf) {
		return fmt.Errorf("%w: short write to %s (%d of %d bytes)",
			blhost.ErrTransportWrite, t.path, n, len(buf))
	}
	return nil
}

// Read returns the next input report, waiting up to the configured
// timeout. A timeout yields an empty result and no error - silence is a
// protocol-level signal the session interprets.
func (t *Transport) Read(max int) ([]byte, error) {
	if !t.connected {
		return nil, blhost.ErrTransportClosed
	}

	fds := []unix.PollFd{{Fd: int32(t.fd), Events: unix.POLLIN}}
	for {
		n, err := unix.Poll(fds, int(t.timeout.Milliseconds()))
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return nil, fmt.Errorf("polling %s: %w", t.path, err)
		}
		if n == 0 {
			return nil, nil // timeout
		}
		break
	}

	buf := make([]byte, max)
	n, err := unix.Read(t.fd, buf)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", t.path, err)
	}
	return buf[:n], nil
}

// Close releases the hidraw node.
func (t *Transport) Close() error {
	if !t.connected {
		return nil
	}
	t.connected = false
	if err := unix.Close(t.fd); err != nil {
		return fmt.Errorf("closing %s: %w", t.path, err)
	}
	return nil
}

// SetTimeout sets the read timeout.
func (t *Transport) SetTimeout(timeout time.Duration) error {
	t.timeout = timeout
	return nil
}

// IsConnected returns true while the node is open.
func (t *Transport) IsConnected() bool {
	return t.connected
}

// Type returns blhost.TransportHID.
func (*Transport) Type() blhost.TransportType {
	return blhost.TransportHID
}
