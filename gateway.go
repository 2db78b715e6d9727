// Package main - gateway.go
//
// Gateway wraps the Device primitives with the pause/stop contract. It is
// the single point where cooperative cancellation is enforced: every
// primitive first calls guard(), which fails with ErrCancelled once Stop is
// set and blocks while Pause is set. No other component re-implements this
// check.
//
// These operations move the real pointer/keyboard state of the host, which
// is why only one worker may ever issue them concurrently.
package main

import (
	"fmt"
	"image"
	"time"
)

// stopPollInterval bounds how long a guarded sleep can overrun after Stop
const stopPollInterval = 50 * time.Millisecond

// Gateway is the guarded wrapper over primitive input operations.
type Gateway struct {
	device Device
	signal *ControlSignal
}

// NewGateway creates a gateway over the given device and control signal
func NewGateway(device Device, signal *ControlSignal) *Gateway {
	return &Gateway{device: device, signal: signal}
}

// guard enforces the pause/stop contract before a primitive runs
func (g *Gateway) guard() error {
	return g.signal.Wait()
}

// MoveTo moves the pointer to absolute screen coordinates
func (g *Gateway) MoveTo(x, y int) error {
	if err := g.guard(); err != nil {
		return err
	}
	return g.device.MoveTo(x, y)
}

// Click clicks the given button at the coordinates
func (g *Gateway) Click(x, y int, button string) error {
	if err := g.guard(); err != nil {
		return err
	}
	LogDebug("Click %s at (%d, %d)", button, x, y)
	return g.device.Click(x, y, button)
}

// KeyPress taps a single key
func (g *Gateway) KeyPress(key string) error {
	if err := g.guard(); err != nil {
		return err
	}
	LogDebug("Key press: %s", key)
	return g.device.KeyPress(key)
}

// Scroll scrolls the wheel at the coordinates; negative amount is down
func (g *Gateway) Scroll(x, y, amount int) error {
	if err := g.guard(); err != nil {
		return err
	}
	LogDebug("Scroll %d at (%d, %d)", amount, x, y)
	return g.device.Scroll(x, y, amount)
}

// DragRelative drags the pointer by (dx, dy) with the left button held
func (g *Gateway) DragRelative(dx, dy int) error {
	if err := g.guard(); err != nil {
		return err
	}
	return g.device.DragRelative(dx, dy)
}

// Capture grabs the screen, or only region when non-nil
func (g *Gateway) Capture(region *Bounds) (image.Image, error) {
	if err := g.guard(); err != nil {
		return nil, err
	}
	img, err := g.device.Capture(region)
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}
	return img, nil
}

// ScreenSize reports the screen dimensions in pixels
func (g *Gateway) ScreenSize() (w, h int) {
	return g.device.ScreenSize()
}

// Sleep waits for d while honoring the pause/stop contract. The sleep is
// sliced so a Stop set mid-wait aborts within stopPollInterval.
func (g *Gateway) Sleep(d time.Duration) error {
	if err := g.guard(); err != nil {
		return err
	}
	deadline := time.Now().Add(d)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil
		}
		if remaining > stopPollInterval {
			remaining = stopPollInterval
		}
		time.Sleep(remaining)
		if err := g.guard(); err != nil {
			return err
		}
	}
}
