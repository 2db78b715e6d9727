// Package main - orchestrator.go
//
// Top-level production loop. The orchestrator walks the configured
// profession order, runs one craft cycle per matching item, and keeps
// looping until stopped. One item's failure never takes the run down: a
// failed cycle is logged and the walk continues with the next item.
package main

import (
	"errors"
)

// Orchestrator drives craft cycles across professions and items.
type Orchestrator struct {
	gateway   *Gateway
	analyzer  *Analyzer
	reader    TextReader
	locator   *StationLocator
	inventory *InventoryManager
	cfg       *Config
	signal    *ControlSignal
}

// NewOrchestrator wires the shared components into a runnable loop
func NewOrchestrator(gateway *Gateway, analyzer *Analyzer, reader TextReader,
	locator *StationLocator, inventory *InventoryManager, cfg *Config, signal *ControlSignal) *Orchestrator {
	return &Orchestrator{
		gateway:   gateway,
		analyzer:  analyzer,
		reader:    reader,
		locator:   locator,
		inventory: inventory,
		cfg:       cfg,
		signal:    signal,
	}
}

// Run loops over the enabled professions until stopped. Returns nil on a
// clean stop.
func (o *Orchestrator) Run() error {
	LogInfo("Orchestrator started: %d item(s), order %v", len(o.cfg.Items), o.cfg.Order)

	for {
		if err := o.signal.Wait(); err != nil {
			return o.finish(err)
		}
		ran := 0
		for _, profession := range o.cfg.Order {
			if !o.cfg.Professions[profession] {
				continue
			}
			ran++
			if err := o.runProfession(profession); err != nil {
				return o.finish(err)
			}
			if err := o.gateway.Sleep(o.cfg.ProfessionDelay()); err != nil {
				return o.finish(err)
			}
		}
		// Everything disabled: idle at the same cadence instead of spinning.
		if ran == 0 {
			if err := o.gateway.Sleep(o.cfg.ProfessionDelay()); err != nil {
				return o.finish(err)
			}
		}
	}
}

// runProfession runs one cycle per item belonging to the profession
func (o *Orchestrator) runProfession(profession string) error {
	for _, item := range o.cfg.Items {
		if item.Profession != profession {
			continue
		}
		if err := o.runItem(item); err != nil {
			return err
		}
	}
	return nil
}

// runItem runs a single item's cycle behind a failure barrier: panics and
// errors alike are item-level, logged and absorbed so the run continues with
// the next item. Only cancellation propagates.
func (o *Orchestrator) runItem(item ItemProfile) (err error) {
	defer func() {
		if r := recover(); r != nil {
			LogError("Craft cycle for %q panicked: %v", item.Name, r)
			err = nil
		}
	}()

	cycle := NewCraftCycle(o.gateway, o.analyzer, o.reader, o.locator, o.inventory, o.cfg, item)
	if err := cycle.Run(); err != nil {
		if errors.Is(err, ErrCancelled) {
			return err
		}
		LogError("Craft cycle for %q failed: %v", item.Name, err)
		return nil
	}
	LogInfo("Cycle for %q ended in state %s", item.Name, cycle.State())
	return nil
}

// finish folds the stop signal into a clean exit
func (o *Orchestrator) finish(err error) error {
	if errors.Is(err, ErrCancelled) {
		LogInfo("Orchestrator stopped")
		return nil
	}
	return err
}
