// Package main - browser.go
//
// This file implements BrowserDevice, a Device backed by chromedp for game
// clients that run in the browser. Input events are dispatched to the game
// canvas by injected JavaScript and frames come from CDP screenshots.
//
// Advantages of JavaScript injection over native input:
//   1. Events go directly to the canvas element
//   2. No native input dependencies
//   3. Works while the browser window is in the background
//
// Timeout Strategy:
//   - Navigation: 60 seconds (slow network tolerance)
//   - Screenshot: 5 seconds (prevent hanging)
//   - Input injection: 2 seconds per operation
//
// Browser Architecture:
// Nested contexts for proper resource management: an allocator context for
// the browser process and a browser context for page operations. Both carry
// cancel functions for graceful cleanup.
package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserDevice drives a browser-hosted game client through chromedp.
type BrowserDevice struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCtx    context.Context
	allocCancel context.CancelFunc

	// pointer position tracked locally so DragRelative has an origin
	pointerX int
	pointerY int

	width  int
	height int
}

// NewBrowserDevice creates an unstarted browser device
func NewBrowserDevice() *BrowserDevice {
	return &BrowserDevice{width: 1920, height: 1080}
}

// Start launches the browser and navigates to the game URL
func (b *BrowserDevice) Start(url string) error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", false),
		chromedp.WindowSize(b.width, b.height),
	)
	b.allocCtx, b.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	b.ctx, b.cancel = chromedp.NewContext(b.allocCtx)

	ctx, cancel := context.WithTimeout(b.ctx, 60*time.Second)
	defer cancel()

	if err := chromedp.Run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	LogInfo("Browser started at %s", url)
	return nil
}

// Close tears down the browser contexts
func (b *BrowserDevice) Close() {
	if b.cancel != nil {
		b.cancel()
	}
	if b.allocCancel != nil {
		b.allocCancel()
	}
}

// eval runs a JavaScript snippet with the standard 2-second injection timeout
func (b *BrowserDevice) eval(js string) error {
	if b.ctx == nil || b.ctx.Err() != nil {
		return fmt.Errorf("browser context is invalid")
	}
	ctx, cancel := context.WithTimeout(b.ctx, 2*time.Second)
	defer cancel()
	return chromedp.Run(ctx, chromedp.Evaluate(js, nil))
}

// mouseEventJS builds a MouseEvent dispatch against the game canvas
func mouseEventJS(kind string, x, y int, button int) string {
	return fmt.Sprintf(`(function() {
		const c = document.getElementById('canvas') || document.querySelector('canvas');
		if (!c) { return; }
		const r = c.getBoundingClientRect();
		c.dispatchEvent(new MouseEvent('%s', {
			clientX: r.left + %d, clientY: r.top + %d,
			button: %d, bubbles: true, cancelable: true,
		}));
	})();`, kind, x, y, button)
}

// MoveTo dispatches a mousemove at canvas coordinates
func (b *BrowserDevice) MoveTo(x, y int) error {
	if err := b.eval(mouseEventJS("mousemove", x, y, 0)); err != nil {
		return err
	}
	b.pointerX, b.pointerY = x, y
	return nil
}

// Click dispatches mousedown/mouseup/click (or contextmenu for right clicks)
func (b *BrowserDevice) Click(x, y int, button string) error {
	btn := 0
	if button == "right" {
		btn = 2
	}
	if err := b.MoveTo(x, y); err != nil {
		return err
	}
	if err := b.eval(mouseEventJS("mousedown", x, y, btn)); err != nil {
		return err
	}
	if err := b.eval(mouseEventJS("mouseup", x, y, btn)); err != nil {
		return err
	}
	if button == "right" {
		return b.eval(mouseEventJS("contextmenu", x, y, btn))
	}
	return b.eval(mouseEventJS("click", x, y, btn))
}

// KeyPress dispatches a keydown/keyup pair to the canvas
func (b *BrowserDevice) KeyPress(key string) error {
	js := fmt.Sprintf(`(function() {
		const c = document.getElementById('canvas') || document.querySelector('canvas');
		if (!c) { return; }
		for (const t of ['keydown', 'keyup']) {
			c.dispatchEvent(new KeyboardEvent(t, {key: '%s', bubbles: true, cancelable: true}));
		}
	})();`, key)
	return b.eval(js)
}

// Scroll dispatches a wheel event; negative amount scrolls down
func (b *BrowserDevice) Scroll(x, y, amount int) error {
	js := fmt.Sprintf(`(function() {
		const c = document.getElementById('canvas') || document.querySelector('canvas');
		if (!c) { return; }
		const r = c.getBoundingClientRect();
		c.dispatchEvent(new WheelEvent('wheel', {
			clientX: r.left + %d, clientY: r.top + %d,
			deltaY: %d, bubbles: true, cancelable: true,
		}));
	})();`, x, y, -amount)
	return b.eval(js)
}

// DragRelative presses the left button at the tracked pointer position and
// drags by (dx, dy) in small steps so the client registers the motion
func (b *BrowserDevice) DragRelative(dx, dy int) error {
	x, y := b.pointerX, b.pointerY
	if err := b.eval(mouseEventJS("mousedown", x, y, 0)); err != nil {
		return err
	}
	const steps = 5
	for i := 1; i <= steps; i++ {
		nx := x + dx*i/steps
		ny := y + dy*i/steps
		if err := b.eval(mouseEventJS("mousemove", nx, ny, 0)); err != nil {
			return err
		}
	}
	b.pointerX, b.pointerY = x+dx, y+dy
	return b.eval(mouseEventJS("mouseup", b.pointerX, b.pointerY, 0))
}

// Capture takes a CDP screenshot and decodes it. Region cropping is done
// locally since CDP always returns the full viewport.
func (b *BrowserDevice) Capture(region *Bounds) (image.Image, error) {
	if b.ctx == nil || b.ctx.Err() != nil {
		return nil, fmt.Errorf("browser context is invalid")
	}

	ctx, cancel := context.WithTimeout(b.ctx, 5*time.Second)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}

	img, err := png.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}
	b.width = img.Bounds().Dx()
	b.height = img.Bounds().Dy()

	if region == nil {
		return img, nil
	}
	return cropImage(img, *region), nil
}

// ScreenSize reports the last observed viewport dimensions
func (b *BrowserDevice) ScreenSize() (w, h int) {
	return b.width, b.height
}

// cropImage copies the region of img described by b into a new RGBA image
// whose bounds start at (0, 0)
func cropImage(img image.Image, b Bounds) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, b.W, b.H))
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			out.Set(x, y, img.At(b.X+x, b.Y+y))
		}
	}
	return out
}
