// hid-bootloader
// Copyright (c) 2025 R. Dunbar Poor <rdpoor@gmail.com>
// SPDX-License-Identifier: MIT
//
// This file is part of hid-bootloader, a host-side driver for the
// Microchip USB HID bootloader protocol.

// blhid talks to a device running the Microchip HID bootloader: it can
// flash an Intel-HEX image, verify flash contents by CRC, and start the
// application.
//
// Usage:
//
//	blhid [flags] <action>
//
// Actions:
//
//	info         read the bootloader version
//	bootload     erase, program and verify a hex file, then jump
//	crc-memory   ask the device for the CRC of an address window
//	crc-hexfile  compute the same CRC locally from a hex file
//	crc-compare  do both and compare
//	run          jump to the application
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	blhost "github.com/rdpoor/hid-bootloader"
	"github.com/rdpoor/hid-bootloader/detection"
	// Import detectors to register them.
	_ "github.com/rdpoor/hid-bootloader/detection/hid"
	"github.com/rdpoor/hid-bootloader/hexfile"
	"github.com/rdpoor/hid-bootloader/transport/hid"
	"github.com/rdpoor/hid-bootloader/transport/i2c"
	"github.com/rdpoor/hid-bootloader/transport/uart"
)

type options struct {
	config    *Config
	hexPath   string
	start     uint32
	end       uint32
	haveStart bool
	haveEnd   bool
	trace     bool
}

func parseFlags() (*options, string, error) {
	configPath := flag.String("config", "", "YAML config file (optional)")
	transportName := flag.String("transport", "", "Transport: hid, uart or i2c")
	device := flag.String("device", "", "Device path or bus (e.g. /dev/hidraw2, /dev/ttyUSB0, 1). Leave empty for auto-detection.")
	vid := flag.String("vid", "", "USB vendor ID in hex (default 04D8)")
	pid := flag.String("pid", "", "USB product ID in hex (default 003F)")
	timeout := flag.Duration("timeout", 0, "Response timeout (default 5s)")
	hexPath := flag.String("hexfile", "", "Intel-HEX image to flash or checksum")
	flag.StringVar(hexPath, "x", "", "Shorthand for -hexfile")
	start := flag.String("start", "", "Window start address in hex (default: from hex file)")
	flag.StringVar(start, "s", "", "Shorthand for -start")
	end := flag.String("end", "", "Window end address in hex, exclusive (default: from hex file)")
	flag.StringVar(end, "e", "", "Shorthand for -end")
	verbose := flag.Bool("verbose", false, "Print progress detail")
	flag.BoolVar(verbose, "v", false, "Shorthand for -verbose")
	trace := flag.Bool("trace", false, "Dump wire traffic")
	flag.BoolVar(trace, "t", false, "Shorthand for -trace")
	flag.Parse()

	cfg := DefaultConfig()
	if *configPath != "" {
		cfg = LoadConfig(*configPath)
	} else {
		cfg.applyEnvOverrides()
	}
	if *transportName != "" {
		cfg.Transport = *transportName
	}
	if *device != "" {
		cfg.Device = *device
	}
	if *timeout > 0 {
		cfg.Timeout = *timeout
	}
	if *verbose {
		cfg.Verbose = true
	}

	opts := &options{config: cfg, hexPath: *hexPath, trace: *trace}
	var err error
	if cfg.VendorID, err = parseID(*vid, cfg.VendorID); err != nil {
		return nil, "", fmt.Errorf("invalid -vid: %w", err)
	}
	if cfg.ProductID, err = parseID(*pid, cfg.ProductID); err != nil {
		return nil, "", fmt.Errorf("invalid -pid: %w", err)
	}
	if *start != "" {
		if opts.start, err = parseAddr(*start); err != nil {
			return nil, "", fmt.Errorf("invalid -start: %w", err)
		}
		opts.haveStart = true
	}
	if *end != "" {
		if opts.end, err = parseAddr(*end); err != nil {
			return nil, "", fmt.Errorf("invalid -end: %w", err)
		}
		opts.haveEnd = true
	}

	if flag.NArg() != 1 {
		return nil, "", errors.New("expected exactly one action (info, bootload, crc-memory, crc-hexfile, crc-compare, run)")
	}
	return opts, flag.Arg(0), nil
}

func parseID(s string, fallback uint16) (uint16, error) {
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, err
	}
	return uint16(n), nil
}

func parseAddr(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, err
	}
	return uint32(n), nil
}

// newTransport opens the configured transport, auto-detecting a HID
// device when no path is given.
func newTransport(cfg *Config) (blhost.Transport, error) {
	switch cfg.Transport {
	case "hid", "":
		if cfg.Device != "" {
			return hid.OpenPath(cfg.Device)
		}
		if devices, err := detectDevices(); err == nil && len(devices) > 0 {
			fmt.Printf("Found %s (%s)\n", devices[0].Path, devices[0].Name)
			return hid.OpenPath(devices[0].Path)
		}
		return hid.Open(cfg.VendorID, cfg.ProductID)
	case "uart":
		if cfg.Device == "" {
			return nil, errors.New("uart transport requires -device")
		}
		return uart.NewWithBaudRate(cfg.Device, cfg.BaudRate)
	case "i2c":
		if cfg.Device == "" {
			return nil, errors.New("i2c transport requires -device")
		}
		return i2c.New(cfg.Device)
	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
	}
}

func detectDevices() ([]detection.DeviceInfo, error) {
	opts := detection.DefaultOptions()
	opts.Mode = detection.Safe
	return detection.DetectAll(&opts)
}

// resolveWindow fills in missing window bounds from the hex file.
func resolveWindow(opts *options) (start, end uint32, err error) {
	start, end = opts.start, opts.end
	if opts.haveStart && opts.haveEnd {
		return start, end, nil
	}
	if opts.hexPath == "" {
		return 0, 0, errors.New("need -start and -end, or -hexfile to derive them")
	}
	bounds, err := hexfile.BoundsFile(opts.hexPath)
	if err != nil {
		return 0, 0, fmt.Errorf("reading %s: %w", opts.hexPath, err)
	}
	if bounds == nil {
		return 0, 0, fmt.Errorf("%s contains no data records", opts.hexPath)
	}
	if !opts.haveStart {
		start = bounds.Start
	}
	if !opts.haveEnd {
		end = bounds.End
	}
	return start, end, nil
}

func runInfo(device *blhost.Device) error {
	version, err := device.ReadBootInfo()
	if err != nil {
		return err
	}
	fmt.Printf("Bootloader version %d.%d\n", version>>8, version&0xFF)
	return nil
}

func runBootload(ctx context.Context, device *blhost.Device, opts *options) error {
	if opts.hexPath == "" {
		return errors.New("bootload requires -hexfile")
	}

	fmt.Println("Erasing flash...")
	if err := device.EraseFlashContext(ctx); err != nil {
		return fmt.Errorf("erase failed: %w", err)
	}

	fmt.Printf("Programming %s...\n", opts.hexPath)
	f, err := os.Open(opts.hexPath)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	records := 0
	err = hexfile.EachRecord(f, func(rec *hexfile.Record) error {
		if err := device.ProgramFlashContext(ctx, rec.Raw); err != nil {
			return fmt.Errorf("record %d: %w", records+1, err)
		}
		records++
		return nil
	})
	if err != nil {
		return fmt.Errorf("programming failed: %w", err)
	}
	fmt.Printf("Programmed %d records\n", records)

	start, end, err := resolveWindow(opts)
	if err != nil {
		return err
	}
	if err := verifyCRC(ctx, device, opts.hexPath, start, end); err != nil {
		return err
	}

	fmt.Println("Starting application...")
	return device.JumpToAppContext(ctx)
}

func verifyCRC(ctx context.Context, device *blhost.Device, hexPath string, start, end uint32) error {
	want, err := hexfile.RangeCRCFile(hexPath, start, end)
	if err != nil {
		return fmt.Errorf("local CRC failed: %w", err)
	}
	got, err := device.ReadCRCContext(ctx, start, end-start)
	if err != nil {
		return fmt.Errorf("device CRC failed: %w", err)
	}
	if got != want {
		return fmt.Errorf("verify failed over [%08X, %08X): device %04X, hex file %04X",
			start, end, got, want)
	}
	fmt.Printf("Verified [%08X, %08X): CRC %04X\n", start, end, got)
	return nil
}

func runAction(ctx context.Context, device *blhost.Device, action string, opts *options) error {
	switch action {
	case "info":
		return runInfo(device)
	case "bootload":
		return runBootload(ctx, device, opts)
	case "crc-memory":
		start, end, err := resolveWindow(opts)
		if err != nil {
			return err
		}
		crc, err := device.ReadCRCContext(ctx, start, end-start)
		if err != nil {
			return err
		}
		fmt.Printf("Device CRC over [%08X, %08X): %04X\n", start, end, crc)
		return nil
	case "crc-hexfile":
		if opts.hexPath == "" {
			return errors.New("crc-hexfile requires -hexfile")
		}
		start, end, err := resolveWindow(opts)
		if err != nil {
			return err
		}
		crc, err := hexfile.RangeCRCFile(opts.hexPath, start, end)
		if err != nil {
			return err
		}
		fmt.Printf("Hex file CRC over [%08X, %08X): %04X\n", start, end, crc)
		return nil
	case "crc-compare":
		if opts.hexPath == "" {
			return errors.New("crc-compare requires -hexfile")
		}
		start, end, err := resolveWindow(opts)
		if err != nil {
			return err
		}
		return verifyCRC(ctx, device, opts.hexPath, start, end)
	case "run":
		return device.JumpToApp()
	default:
		return fmt.Errorf("unknown action %q", action)
	}
}

// localOnly reports whether an action never touches the device.
func localOnly(action string) bool {
	return action == "crc-hexfile"
}

func main() {
	opts, action, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "blhid: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	if opts.trace || opts.config.Verbose {
		blhost.SetDebugEnabled(true)
	}

	ctx := context.Background()

	if localOnly(action) {
		if err := runAction(ctx, nil, action, opts); err != nil {
			fmt.Fprintf(os.Stderr, "blhid: %v\n", err)
			os.Exit(1)
		}
		return
	}

	transport, err := newTransport(opts.config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "blhid: %v\n", err)
		os.Exit(1)
	}

	device, err := blhost.New(transport, blhost.WithTimeout(opts.config.Timeout))
	if err != nil {
		_ = transport.Close()
		fmt.Fprintf(os.Stderr, "blhid: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = device.Close() }()

	startTime := time.Now()
	if err := runAction(ctx, device, action, opts); err != nil {
		fmt.Fprintf(os.Stderr, "blhid: %v\n", err)
		os.Exit(1)
	}
	if action == "bootload" {
		fmt.Printf("Done in %s\n", time.Since(startTime).Round(time.Millisecond))
	}
}
