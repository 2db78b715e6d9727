package main

import (
	"image"
	"image/color"
	"sync"
)

// deviceOp records one primitive issued against the fake device.
type deviceOp struct {
	kind   string
	x, y   int
	button string
	key    string
	dx, dy int
	amount int
}

// fakeDevice records every primitive and serves captures from a frame queue.
// When the queue is drained the base frame is returned.
type fakeDevice struct {
	mu     sync.Mutex
	ops    []deviceOp
	frames []image.Image
	base   image.Image
	w, h   int
}

func newFakeDevice(base image.Image) *fakeDevice {
	b := base.Bounds()
	return &fakeDevice{base: base, w: b.Dx(), h: b.Dy()}
}

func (d *fakeDevice) record(op deviceOp) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ops = append(d.ops, op)
}

func (d *fakeDevice) MoveTo(x, y int) error {
	d.record(deviceOp{kind: "move", x: x, y: y})
	return nil
}

func (d *fakeDevice) Click(x, y int, button string) error {
	d.record(deviceOp{kind: "click", x: x, y: y, button: button})
	return nil
}

func (d *fakeDevice) KeyPress(key string) error {
	d.record(deviceOp{kind: "key", key: key})
	return nil
}

func (d *fakeDevice) Scroll(x, y, amount int) error {
	d.record(deviceOp{kind: "scroll", x: x, y: y, amount: amount})
	return nil
}

func (d *fakeDevice) DragRelative(dx, dy int) error {
	d.record(deviceOp{kind: "drag", dx: dx, dy: dy})
	return nil
}

func (d *fakeDevice) Capture(region *Bounds) (image.Image, error) {
	d.mu.Lock()
	frame := d.base
	if len(d.frames) > 0 {
		frame = d.frames[0]
		d.frames = d.frames[1:]
	}
	d.mu.Unlock()

	if region != nil {
		return cropImage(frame, *region), nil
	}
	return frame, nil
}

func (d *fakeDevice) ScreenSize() (w, h int) {
	return d.w, d.h
}

// opsOf returns the recorded ops of one kind
func (d *fakeDevice) opsOf(kind string) []deviceOp {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []deviceOp
	for _, op := range d.ops {
		if op.kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// clicksOf returns the recorded clicks with the given button
func (d *fakeDevice) clicksOf(button string) []deviceOp {
	var out []deviceOp
	for _, op := range d.opsOf("click") {
		if op.button == button {
			out = append(out, op)
		}
	}
	return out
}

// keysPressed returns the key taps in order
func (d *fakeDevice) keysPressed() []string {
	var out []string
	for _, op := range d.opsOf("key") {
		out = append(out, op.key)
	}
	return out
}

// fakeReader serves scripted text hits. A target present in hits is located
// after misses initial misses; everything else is never found.
type fakeReader struct {
	mu     sync.Mutex
	hits   map[string]Bounds
	misses int
	calls  int
}

func (r *fakeReader) LocateText(_ image.Image, target, _ string) (*Bounds, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.calls <= r.misses {
		return nil, nil
	}
	if b, ok := r.hits[target]; ok {
		box := b
		return &box, nil
	}
	return nil, nil
}

func (r *fakeReader) Close() error { return nil }

// solidImage returns a w*h image filled with a single gray level
func solidImage(w, h int, gray uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	c := color.RGBA{R: gray, G: gray, B: gray, A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// patternImage returns a deterministic high-variance gray pattern, so an
// exact copy correlates perfectly and shifted windows do not
func patternImage(w, h int, seed uint32) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	state := seed
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			state = state*1664525 + 1013904223
			g := uint8(state >> 24)
			img.SetRGBA(x, y, color.RGBA{R: g, G: g, B: g, A: 255})
		}
	}
	return img
}

// pasteImage copies src into dst with its top-left corner at (x, y)
func pasteImage(dst *image.RGBA, src image.Image, x, y int) {
	b := src.Bounds()
	for j := 0; j < b.Dy(); j++ {
		for i := 0; i < b.Dx(); i++ {
			dst.Set(x+i, y+j, src.At(b.Min.X+i, b.Min.Y+j))
		}
	}
}
