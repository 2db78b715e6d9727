package main

import (
	"errors"
	"testing"
	"time"
)

func TestWaitPassesWhenRunning(t *testing.T) {
	cs := NewControlSignal()
	if err := cs.Wait(); err != nil {
		t.Fatalf("Wait on a fresh signal: %v", err)
	}
}

func TestStopCancelsWait(t *testing.T) {
	cs := NewControlSignal()
	cs.Stop()
	if err := cs.Wait(); !errors.Is(err, ErrCancelled) {
		t.Fatalf("Wait after Stop = %v, want ErrCancelled", err)
	}
	if !cs.Stopped() {
		t.Error("Stopped() = false after Stop")
	}
}

func TestPauseBlocksUntilResume(t *testing.T) {
	cs := NewControlSignal()
	cs.Pause()

	done := make(chan error, 1)
	go func() { done <- cs.Wait() }()

	select {
	case err := <-done:
		t.Fatalf("Wait returned %v while paused", err)
	case <-time.After(50 * time.Millisecond):
	}

	cs.Resume()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Wait after Resume = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Wait did not unblock after Resume")
	}
}

func TestStopWhilePaused(t *testing.T) {
	cs := NewControlSignal()
	cs.Pause()

	done := make(chan error, 1)
	go func() { done <- cs.Wait() }()

	time.Sleep(20 * time.Millisecond)
	cs.Stop()

	select {
	case err := <-done:
		if !errors.Is(err, ErrCancelled) {
			t.Fatalf("Wait after Stop-while-paused = %v, want ErrCancelled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Wait did not unblock after Stop")
	}
}

func TestTogglePause(t *testing.T) {
	cs := NewControlSignal()
	if !cs.TogglePause() {
		t.Error("first toggle should pause")
	}
	if !cs.Paused() {
		t.Error("Paused() = false after toggle")
	}
	if cs.TogglePause() {
		t.Error("second toggle should resume")
	}
}

func TestStopIsTerminal(t *testing.T) {
	cs := NewControlSignal()
	cs.Stop()
	cs.Resume()
	if err := cs.Wait(); !errors.Is(err, ErrCancelled) {
		t.Fatalf("Wait = %v after Stop then Resume, want ErrCancelled", err)
	}
}
