// Package main - ocr.go
//
// Text location over captured frames, backed by Tesseract via gosseract.
//
// The bot locates UI elements by their textual labels (station names,
// recipe entries, the craft button caption) when template matching is
// unavailable or insufficient. OCR is a capability, not a hard dependency:
// construction can fail on hosts without Tesseract, in which case the
// unavailable variant is injected and every lookup reports
// ErrPerceptionUnavailable, which callers treat as "no match".
package main

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract"
)

// TextReader locates text inside a captured frame.
type TextReader interface {
	// LocateText finds the first occurrence of target in the frame,
	// case-insensitive substring over recognized text in scan order.
	// Returns nil when the text is not visible and
	// ErrPerceptionUnavailable when no OCR backend is present.
	LocateText(frame image.Image, target, lang string) (*Bounds, error)
	// Close releases the backend
	Close() error
}

// TesseractReader is the live OCR backend.
type TesseractReader struct {
	client *gosseract.Client
}

// NewTesseractReader creates a reader bound to a local Tesseract install and
// runs a trial recognition over a blank image, so a missing binary or missing
// traineddata for lang surfaces at startup instead of mid-cycle.
func NewTesseractReader(lang string) (*TesseractReader, error) {
	client := gosseract.NewClient()
	if lang == "" {
		lang = "rus+eng"
	}
	if err := client.SetLanguage(strings.Split(lang, "+")...); err != nil {
		client.Close()
		return nil, fmt.Errorf("set ocr language %q: %w", lang, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))); err != nil {
		client.Close()
		return nil, fmt.Errorf("encode trial image: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		client.Close()
		return nil, fmt.Errorf("set trial image: %w", err)
	}
	if _, err := client.Text(); err != nil {
		client.Close()
		return nil, fmt.Errorf("tesseract unavailable: %w", err)
	}
	return &TesseractReader{client: client}, nil
}

// Close releases the Tesseract client
func (r *TesseractReader) Close() error {
	return r.client.Close()
}

// LocateText runs OCR over the frame and returns the bounding box of the
// first recognized fragment containing target.
//
// Single-word targets are matched against word boxes; targets with spaces
// (station labels like «кузнечное горнило») against text-line boxes, since
// word-level segmentation never yields multi-word fragments.
func (r *TesseractReader) LocateText(frame image.Image, target, lang string) (*Bounds, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, frame); err != nil {
		return nil, fmt.Errorf("encode frame for ocr: %w", err)
	}
	if err := r.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("set ocr image: %w", err)
	}
	if lang == "" {
		lang = "rus+eng"
	}
	if err := r.client.SetLanguage(strings.Split(lang, "+")...); err != nil {
		return nil, fmt.Errorf("set ocr language %q: %w", lang, err)
	}

	level := gosseract.RIL_WORD
	if strings.ContainsRune(target, ' ') {
		level = gosseract.RIL_TEXTLINE
	}
	boxes, err := r.client.GetBoundingBoxes(level)
	if err != nil {
		LogWarn("OCR failed: %v", err)
		return nil, nil
	}

	want := strings.ToLower(strings.TrimSpace(target))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		if strings.Contains(strings.ToLower(box.Word), want) {
			b := Bounds{
				X: box.Box.Min.X,
				Y: box.Box.Min.Y,
				W: box.Box.Dx(),
				H: box.Box.Dy(),
			}
			LogDebug("Located text %q at (%d, %d, %d, %d)", box.Word, b.X, b.Y, b.W, b.H)
			return &b, nil
		}
	}
	return nil, nil
}

// UnavailableReader is injected when no OCR backend is present on the host.
type UnavailableReader struct{}

// LocateText always reports the missing capability
func (UnavailableReader) LocateText(image.Image, string, string) (*Bounds, error) {
	return nil, ErrPerceptionUnavailable
}

// Close is a no-op
func (UnavailableReader) Close() error { return nil }
