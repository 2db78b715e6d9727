// Package main - main.go
//
// Entry point for the crafting bot.
//
// Startup sequence:
//   1. Initialize the logger (Debug.log, truncated per session)
//   2. Load and normalize the YAML configuration
//   3. Construct the input device per the configured driver: native
//      (robotgo + screenshot) or browser (chromedp)
//   4. Verify a local Tesseract install with a trial recognition; without
//      one the bot still runs on templates alone
//   5. Wire the perception/action components and start the production loop
//   6. Hand the foreground thread to the system tray (blocking)
//
// Shutdown always goes through the tray's quit path: stop signal, device
// teardown, logger close.
package main

import (
	"flag"
	"fmt"
	"os"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	if err := InitLogger(); err != nil {
		fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
		os.Exit(1)
	}
	defer CloseLogger()

	if err := run(*configPath); err != nil {
		LogError("Fatal: %v", err)
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}
	LogInfo("Loaded %d item profile(s), driver %q", len(cfg.Items), cfg.Driver)

	var (
		device  Device
		browser *BrowserDevice
	)
	switch cfg.Driver {
	case "browser":
		browser = NewBrowserDevice()
		if err := browser.Start(cfg.GameURL); err != nil {
			return fmt.Errorf("start browser driver: %w", err)
		}
		device = browser
	case "", "native":
		device = NewRobotDevice()
	default:
		return fmt.Errorf("unknown driver %q", cfg.Driver)
	}

	var reader TextReader
	if tr, err := NewTesseractReader(cfg.OCRLanguage); err != nil {
		LogWarn("OCR unavailable, running on templates alone: %v", err)
		reader = UnavailableReader{}
	} else {
		reader = tr
	}

	signal := NewControlSignal()
	gateway := NewGateway(device, signal)
	analyzer := NewAnalyzer()
	locator := NewStationLocator(gateway, reader)
	inventory := NewInventoryManager(gateway, analyzer, locator, cfg)
	orchestrator := NewOrchestrator(gateway, analyzer, reader, locator, inventory, cfg, signal)

	go func() {
		if err := orchestrator.Run(); err != nil {
			LogError("Production loop failed: %v", err)
		} else {
			LogInfo("Production loop finished")
		}
	}()

	tray := NewTrayApp(signal, cfg, configPath, func() {
		if err := reader.Close(); err != nil {
			LogWarn("OCR close: %v", err)
		}
		if browser != nil {
			browser.Close()
		}
	})
	tray.Run()
	return nil
}
