// Package main - device.go
//
// This file defines the Device abstraction over the host's pointer, keyboard
// and screen, plus the native implementation backed by robotgo and the
// kbinani/screenshot capture library.
//
// There is exactly one physical pointer/keyboard and one screen, so only one
// worker may ever drive a Device. All calls must go through the Gateway
// (gateway.go), which enforces the pause/stop contract; nothing else in the
// bot touches a Device directly.
//
// A second implementation, BrowserDevice, lives in browser.go and drives a
// web-hosted game client through chromedp instead of the native input stack.
// The config's "driver" field selects between them.
package main

import (
	"fmt"
	"image"

	"github.com/go-vgo/robotgo"
	"github.com/kbinani/screenshot"
)

// Device is the set of primitive operations the bot needs from the host.
// Implementations perform the raw action; they do not check pause/stop.
type Device interface {
	// MoveTo moves the pointer to absolute screen coordinates
	MoveTo(x, y int) error
	// Click clicks the given button ("left" or "right") at the coordinates
	Click(x, y int, button string) error
	// KeyPress taps a single key ("e", "esc", "enter", ...)
	KeyPress(key string) error
	// Scroll scrolls the wheel at the coordinates; negative amount is down
	Scroll(x, y, amount int) error
	// DragRelative presses the left button at the current position and drags
	// by (dx, dy)
	DragRelative(dx, dy int) error
	// Capture grabs the screen, or only region when non-nil
	Capture(region *Bounds) (image.Image, error)
	// ScreenSize reports the screen dimensions in pixels
	ScreenSize() (w, h int)
}

// RobotDevice drives the real host pointer and keyboard through robotgo and
// captures frames with the screenshot library.
type RobotDevice struct{}

// NewRobotDevice creates the native device
func NewRobotDevice() *RobotDevice {
	return &RobotDevice{}
}

// MoveTo moves the pointer to absolute screen coordinates
func (d *RobotDevice) MoveTo(x, y int) error {
	robotgo.Move(x, y)
	return nil
}

// Click moves to the coordinates and clicks the given button
func (d *RobotDevice) Click(x, y int, button string) error {
	if button != "left" && button != "right" {
		return fmt.Errorf("unsupported mouse button %q", button)
	}
	robotgo.Move(x, y)
	robotgo.Click(button)
	return nil
}

// KeyPress taps a single key
func (d *RobotDevice) KeyPress(key string) error {
	if err := robotgo.KeyTap(key); err != nil {
		return fmt.Errorf("key tap %q: %w", key, err)
	}
	return nil
}

// Scroll scrolls the wheel at the given position. Positive amount scrolls
// up, negative down, matching the wheel convention of the game client.
func (d *RobotDevice) Scroll(x, y, amount int) error {
	robotgo.Move(x, y)
	if amount >= 0 {
		robotgo.ScrollDir(amount, "up")
	} else {
		robotgo.ScrollDir(-amount, "down")
	}
	return nil
}

// DragRelative holds the left button and drags the pointer by (dx, dy).
// Used for camera rotation: the game rotates the view when the pointer is
// dragged across the scene.
func (d *RobotDevice) DragRelative(dx, dy int) error {
	x, y := robotgo.Location()
	if err := robotgo.Toggle("left"); err != nil {
		return fmt.Errorf("press left button: %w", err)
	}
	robotgo.MoveSmooth(x+dx, y+dy)
	if err := robotgo.Toggle("left", "up"); err != nil {
		return fmt.Errorf("release left button: %w", err)
	}
	return nil
}

// Capture grabs the whole primary display, or only region when non-nil
func (d *RobotDevice) Capture(region *Bounds) (image.Image, error) {
	var (
		img *image.RGBA
		err error
	)
	if region != nil {
		img, err = screenshot.CaptureRect(region.Rect())
	} else {
		img, err = screenshot.CaptureDisplay(0)
	}
	if err != nil {
		return nil, fmt.Errorf("screen capture: %w", err)
	}
	return img, nil
}

// ScreenSize reports the primary display dimensions
func (d *RobotDevice) ScreenSize() (w, h int) {
	return robotgo.GetScreenSize()
}
