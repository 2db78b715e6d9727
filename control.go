// Package main - control.go
//
// Cooperative cancellation and pausing for the whole bot.
//
// A single ControlSignal is shared by every component. The write side (tray
// menu, hotkeys) flips the Pause flag or sets the one-way Stop flag; the read
// side is the input gateway, which consults the signal before every primitive
// operation, and the wait loops in station acquisition and dismantling.
//
// Blocking is done on a condition variable rather than a poll loop: a paused
// worker parks on the cond and is woken by Broadcast when the flags change,
// so resume latency is bounded only by the scheduler, well inside the 50ms
// the old poll loop allowed.
//
// Stop is terminal: once set it is never cleared for the lifetime of a run.
package main

import (
	"errors"
	"sync"
)

// ErrCancelled is returned by guarded operations once Stop has been observed.
// It unwinds uncaught through every component to the orchestrator, which ends
// the run.
var ErrCancelled = errors.New("cancelled by stop signal")

// ControlSignal holds the process-wide Stop and Pause flags.
type ControlSignal struct {
	mu      sync.Mutex
	cond    *sync.Cond
	stopped bool
	paused  bool
}

// NewControlSignal creates a control signal in the running state
func NewControlSignal() *ControlSignal {
	cs := &ControlSignal{}
	cs.cond = sync.NewCond(&cs.mu)
	return cs
}

// Stop sets the terminal stop flag and wakes any paused worker
func (cs *ControlSignal) Stop() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.stopped {
		return
	}
	cs.stopped = true
	cs.cond.Broadcast()
}

// Pause sets the pause flag
func (cs *ControlSignal) Pause() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.paused = true
}

// Resume clears the pause flag and wakes the parked worker
func (cs *ControlSignal) Resume() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.paused = false
	cs.cond.Broadcast()
}

// TogglePause flips the pause flag and reports the new value
func (cs *ControlSignal) TogglePause() bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.paused = !cs.paused
	if !cs.paused {
		cs.cond.Broadcast()
	}
	return cs.paused
}

// Stopped reports whether Stop has been set
func (cs *ControlSignal) Stopped() bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.stopped
}

// Paused reports whether the bot is currently paused
func (cs *ControlSignal) Paused() bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.paused
}

// Wait is the single guard point for cooperative cancellation.
//
// It returns ErrCancelled immediately if Stop is set. If Pause is set it
// blocks the calling goroutine until Pause clears or Stop is set; a stop
// observed while paused also returns ErrCancelled. Unbounded: a paused
// worker stays parked until explicitly resumed or stopped.
func (cs *ControlSignal) Wait() error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	for cs.paused && !cs.stopped {
		cs.cond.Wait()
	}
	if cs.stopped {
		return ErrCancelled
	}
	return nil
}
