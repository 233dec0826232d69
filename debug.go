// hid-bootloader
// Copyright (c) 2025 R. Dunbar Poor <rdpoor@gmail.com>
// SPDX-License-Identifier: MIT
//
// This file is part of hid-bootloader, a host-side driver for the
// Microchip USB HID bootloader protocol.

package blhost

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"
)

var debugEnabled atomic.Bool

// SetDebugEnabled turns low-level trace logging on or off. When enabled,
// every wire frame is dumped to the standard logger.
func SetDebugEnabled(enabled bool) {
	debugEnabled.Store(enabled)
}

// DebugEnabled reports whether trace logging is on.
func DebugEnabled() bool {
	return debugEnabled.Load()
}

func debugf(format string, args ...any) {
	if debugEnabled.Load() {
		log.Printf("[blhost] "+format, args...)
	}
}

func debugln(args ...any) {
	if debugEnabled.Load() {
		log.Println(append([]any{"[blhost]"}, args...)...)
	}
}

// hexDump renders bytes the way the bootloader docs do: lowercase pairs
// separated by spaces.
func hexDump(data []byte) string {
	var sb strings.Builder
	for i, b := range data {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02x", b)
	}
	return sb.String()
}
