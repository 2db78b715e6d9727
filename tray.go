// Package main - tray.go
//
// This file implements the system tray UI that provides the run-time control
// surface. Uses getlantern/systray library for cross-platform tray menu
// support.
//
// Menu Structure:
//   Craft Bot
//   ├─ Status: Running | Paused | Stopped (read-only)
//   ├─ Pause / Resume (toggles the control signal)
//   ├─ Stop (one-way, ends the production loop)
//   ├─ Professions (checkboxes, persisted to the config file)
//   └─ Quit (graceful shutdown)
//
// Concurrency Model:
// One goroutine per profession checkbox plus the main event select loop.
// Pause and Stop act purely on the shared ControlSignal; the production
// goroutine observes them at its next guarded action.
package main

import (
	"fmt"
	"os"

	"github.com/getlantern/systray"
)

// TrayApp manages the system tray application and user interface.
type TrayApp struct {
	signal *ControlSignal
	cfg    *Config
	// cfgPath is where profession toggles are persisted
	cfgPath string
	// onQuit runs before the process exits (device teardown)
	onQuit func()

	statusItem *systray.MenuItem
	pauseItem  *systray.MenuItem
	stopItem   *systray.MenuItem

	professionItems map[string]*systray.MenuItem
}

// NewTrayApp creates a new tray application
func NewTrayApp(signal *ControlSignal, cfg *Config, cfgPath string, onQuit func()) *TrayApp {
	return &TrayApp{
		signal:          signal,
		cfg:             cfg,
		cfgPath:         cfgPath,
		onQuit:          onQuit,
		professionItems: make(map[string]*systray.MenuItem),
	}
}

// Run starts the tray application
func (t *TrayApp) Run() {
	LogInfo("Starting system tray application")
	systray.Run(t.onReady, func() {
		LogInfo("System tray onExit callback triggered")
		t.signal.Stop()
		if t.onQuit != nil {
			t.onQuit()
		}
		LogInfo("System tray exit complete")
	})
}

// onReady is called when the tray is ready
func (t *TrayApp) onReady() {
	systray.SetTitle("Craft Bot")
	systray.SetTooltip("Crafting automation")

	// Status (read-only)
	t.statusItem = systray.AddMenuItem("Status: Running", "Current bot status")
	t.statusItem.Disable()

	systray.AddSeparator()

	t.pauseItem = systray.AddMenuItem("Pause", "Pause after the current action")
	t.stopItem = systray.AddMenuItem("Stop", "Stop the production loop")

	systray.AddSeparator()

	// Profession toggles
	profMenu := systray.AddMenuItem("Professions", "Enable or disable professions")
	for _, profession := range t.cfg.Order {
		item := profMenu.AddSubMenuItemCheckbox(profession, "", t.cfg.Professions[profession])
		t.professionItems[profession] = item
		go t.handleProfessionClick(profession, item)
	}

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit the application")

	go t.handleEvents(quitItem)

	LogInfo("System tray initialized")
}

// handleEvents handles tray menu events
func (t *TrayApp) handleEvents(quitItem *systray.MenuItem) {
	for {
		select {
		case <-t.pauseItem.ClickedCh:
			if t.signal.TogglePause() {
				LogInfo("Paused by user")
				t.pauseItem.SetTitle("Resume")
				t.updateStatus("Paused")
			} else {
				LogInfo("Resumed by user")
				t.pauseItem.SetTitle("Pause")
				t.updateStatus("Running")
			}
		case <-t.stopItem.ClickedCh:
			LogInfo("Stop requested by user")
			t.signal.Stop()
			t.stopItem.Disable()
			t.pauseItem.Disable()
			t.updateStatus("Stopped")
		case <-quitItem.ClickedCh:
			LogInfo("Quit requested by user")
			t.signal.Stop()
			if t.onQuit != nil {
				t.onQuit()
			}
			CloseLogger()
			systray.Quit()
			os.Exit(0)
		}
	}
}

// handleProfessionClick toggles one profession and persists the change
func (t *TrayApp) handleProfessionClick(profession string, item *systray.MenuItem) {
	for {
		<-item.ClickedCh

		enabled := !t.cfg.Professions[profession]
		t.cfg.Professions[profession] = enabled
		if enabled {
			item.Check()
		} else {
			item.Uncheck()
		}

		if err := SaveConfig(t.cfg, t.cfgPath); err != nil {
			LogWarn("Could not persist profession toggle: %v", err)
		}
		LogInfo("Profession %q enabled=%v", profession, enabled)
	}
}

// updateStatus updates the status display
func (t *TrayApp) updateStatus(status string) {
	t.statusItem.SetTitle(fmt.Sprintf("Status: %s", status))
}
