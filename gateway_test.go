package main

import (
	"errors"
	"testing"
	"time"
)

func TestGatewayForwardsPrimitives(t *testing.T) {
	dev := newFakeDevice(solidImage(100, 100, 60))
	g := NewGateway(dev, NewControlSignal())

	if err := g.Click(10, 20, "right"); err != nil {
		t.Fatalf("Click: %v", err)
	}
	if err := g.KeyPress("e"); err != nil {
		t.Fatalf("KeyPress: %v", err)
	}

	clicks := dev.clicksOf("right")
	if len(clicks) != 1 || clicks[0].x != 10 || clicks[0].y != 20 {
		t.Errorf("recorded clicks = %+v, want one right click at (10, 20)", clicks)
	}
	if keys := dev.keysPressed(); len(keys) != 1 || keys[0] != "e" {
		t.Errorf("recorded keys = %v, want [e]", keys)
	}
}

func TestGatewayStopsPrimitives(t *testing.T) {
	dev := newFakeDevice(solidImage(100, 100, 60))
	signal := NewControlSignal()
	g := NewGateway(dev, signal)
	signal.Stop()

	if err := g.Click(1, 1, "left"); !errors.Is(err, ErrCancelled) {
		t.Fatalf("Click after Stop = %v, want ErrCancelled", err)
	}
	if _, err := g.Capture(nil); !errors.Is(err, ErrCancelled) {
		t.Fatalf("Capture after Stop = %v, want ErrCancelled", err)
	}
	if len(dev.ops) != 0 {
		t.Errorf("device saw %d ops after Stop, want 0", len(dev.ops))
	}
}

func TestGatewaySleepAbortsOnStop(t *testing.T) {
	signal := NewControlSignal()
	g := NewGateway(newFakeDevice(solidImage(10, 10, 60)), signal)

	go func() {
		time.Sleep(20 * time.Millisecond)
		signal.Stop()
	}()

	start := time.Now()
	err := g.Sleep(2 * time.Second)
	elapsed := time.Since(start)

	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("Sleep = %v, want ErrCancelled", err)
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("Sleep took %v to observe Stop, want well under the full duration", elapsed)
	}
}

func TestGatewaySleepCompletes(t *testing.T) {
	g := NewGateway(newFakeDevice(solidImage(10, 10, 60)), NewControlSignal())

	start := time.Now()
	if err := g.Sleep(30 * time.Millisecond); err != nil {
		t.Fatalf("Sleep: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("Sleep returned after %v, want at least 30ms", elapsed)
	}
}
