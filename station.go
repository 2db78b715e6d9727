// Package main - station.go
//
// Station acquisition: align the camera with a crafting station purely from
// visual feedback. The locator rotates the view in fixed steps and checks
// each captured frame for the station's text label; there is no positional
// model of the world at all.
//
// A station counts as acquired only once its keyword is confirmed visible,
// never merely after navigating to a coordinate.
//
// No adaptive backoff: rotation amplitude and poll interval are fixed
// constants, which bounds worst-case work per acquisition attempt to
// timeout / stationPollInterval iterations.
package main

import (
	"errors"
	"time"
)

// ErrStationNotFound reports an acquisition timeout. Item-level failure:
// the current item's cycle is skipped, other items are unaffected.
var ErrStationNotFound = errors.New("station not found within timeout")

const (
	// stationPollInterval is the wait between rotation attempts
	stationPollInterval = 500 * time.Millisecond
	// rotationDragX is the fixed horizontal drag amplitude per rotation step
	rotationDragX = -200
)

// StationLocator rotates the view until a station label is detected.
type StationLocator struct {
	gateway *Gateway
	reader  TextReader
}

// NewStationLocator creates a locator over the given gateway and text reader
func NewStationLocator(gateway *Gateway, reader TextReader) *StationLocator {
	return &StationLocator{gateway: gateway, reader: reader}
}

// Acquire rotates the camera until target's keyword appears on screen or
// timeout elapses. Returns true on detection, false on timeout. The only
// errors returned are cancellation and device failures; a missing OCR
// backend degrades to a miss.
func (sl *StationLocator) Acquire(target StationTarget, timeout time.Duration) (bool, error) {
	LogInfo("Rotating camera to find %q", target.Keyword)
	w, h := sl.gateway.ScreenSize()
	start := time.Now()

	for time.Since(start) < timeout {
		// Rotate by dragging from the screen center.
		if err := sl.gateway.MoveTo(w/2, h/2); err != nil {
			return false, err
		}
		if err := sl.gateway.DragRelative(rotationDragX, 0); err != nil {
			return false, err
		}

		frame, err := sl.gateway.Capture(nil)
		if err != nil {
			if errors.Is(err, ErrCancelled) {
				return false, err
			}
			LogWarn("Capture failed during rotation: %v", err)
		} else {
			box, err := sl.reader.LocateText(frame, target.Keyword, "rus+eng")
			if err != nil && !errors.Is(err, ErrPerceptionUnavailable) {
				LogWarn("Text lookup failed for %q: %v", target.Keyword, err)
			}
			if box != nil {
				LogInfo("Station %q acquired after %v", target.Name, time.Since(start).Round(time.Millisecond))
				return true, nil
			}
		}

		// A configured fallback coordinate is a navigation aid on a miss:
		// click toward it and keep rotating. It never counts as acquisition,
		// only the keyword confirmation above does.
		if target.Fallback != nil {
			if err := sl.gateway.Click(target.Fallback.X, target.Fallback.Y, "left"); err != nil {
				return false, err
			}
		}

		if err := sl.gateway.Sleep(stationPollInterval); err != nil {
			return false, err
		}
	}

	LogInfo("Failed to find %q within %v", target.Keyword, timeout)
	return false, nil
}
