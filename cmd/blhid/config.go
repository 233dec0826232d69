// hid-bootloader
// Copyright (c) 2025 R. Dunbar Poor <rdpoor@gmail.com>
// SPDX-License-Identifier: MIT
//
// This file is part of hid-bootloader, a host-side driver for the
// Microchip USB HID bootloader protocol.

package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rdpoor/hid-bootloader/transport/hid"
)

// Config holds the blhid tool configuration. Values come from the YAML
// file (if present), then environment variables, then command-line
// flags, each layer overriding the last.
type Config struct {
	Transport string        `yaml:"transport"` // "hid", "uart" or "i2c"
	Device    string        `yaml:"device"`    // path/bus; empty means auto-detect (hid only)
	VendorID  uint16        `yaml:"vendor_id"`
	ProductID uint16        `yaml:"product_id"`
	BaudRate  int           `yaml:"baud_rate"` // uart only
	Timeout   time.Duration `yaml:"timeout"`
	Verbose   bool          `yaml:"verbose"`
}

// DefaultConfig returns the configuration for a stock Microchip HID
// bootloader on USB.
func DefaultConfig() *Config {
	return &Config{
		Transport: "hid",
		VendorID:  hid.DefaultVendorID,
		ProductID: hid.DefaultProductID,
		BaudRate:  115200,
		Timeout:   5 * time.Second,
	}
}

// LoadConfig reads the YAML config file, then applies environment
// variable overrides. A missing file is not an error; defaults apply.
func LoadConfig(path string) *Config {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			log.Printf("[config] error parsing %s: %v, using defaults", path, err)
			cfg = DefaultConfig()
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// applyEnvOverrides reads environment variables and overrides config
// values. Supported: BLHID_TRANSPORT, BLHID_DEVICE, BLHID_VID,
// BLHID_PID, BLHID_BAUD, BLHID_TIMEOUT.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("BLHID_TRANSPORT"); v != "" {
		c.Transport = v
	}
	if v := os.Getenv("BLHID_DEVICE"); v != "" {
		c.Device = v
	}
	if v := os.Getenv("BLHID_VID"); v != "" {
		if n, err := strconv.ParseUint(v, 16, 16); err == nil {
			c.VendorID = uint16(n)
		}
	}
	if v := os.Getenv("BLHID_PID"); v != "" {
		if n, err := strconv.ParseUint(v, 16, 16); err == nil {
			c.ProductID = uint16(n)
		}
	}
	if v := os.Getenv("BLHID_BAUD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.BaudRate = n
		}
	}
	if v := os.Getenv("BLHID_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		}
	}
}
