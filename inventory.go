// Package main - inventory.go
//
// Dismantling: when the output slots stop emptying, the bot walks the
// crafted surplus to the crusher. The inventory region is scanned for item
// icons per grade and every icon of a crusher-bound grade is fed in by
// right-click. Grades marked keep (preference false) are never scanned, so
// they cannot be destroyed even by a false-positive match.
//
// The sub-cycle always hands control back in a craftable position: whatever
// happened at the crusher, the original station is re-acquired and its
// interface reopened before returning.
package main

import (
	"errors"
	"time"
)

const (
	// dismantleScrollAttempts bounds the scan-scroll loop per grade
	dismantleScrollAttempts = 3
	// dismantleClickDelay paces the feed clicks so the client keeps up
	dismantleClickDelay = 400 * time.Millisecond
)

// InventoryManager runs the dismantling sub-cycle.
type InventoryManager struct {
	gateway  *Gateway
	analyzer *Analyzer
	locator  *StationLocator
	cfg      *Config
}

// NewInventoryManager creates a manager over the shared perception and
// action components
func NewInventoryManager(gateway *Gateway, analyzer *Analyzer, locator *StationLocator, cfg *Config) *InventoryManager {
	return &InventoryManager{gateway: gateway, analyzer: analyzer, locator: locator, cfg: cfg}
}

// Dismantle feeds the crusher every inventory item of a crusher-bound grade,
// then returns to returnTo and reopens its interface. A crusher acquisition
// timeout is logged and skipped, not failed: production resumes with a full
// inventory and will land here again. Only cancellation and device failures
// propagate.
func (im *InventoryManager) Dismantle(item ItemProfile, returnTo StationTarget) error {
	LogInfo("Dismantling surplus for %q", item.Name)

	if err := im.gateway.KeyPress(closeKey); err != nil {
		return err
	}

	found, err := im.locator.Acquire(stations["crusher"], im.cfg.StationTimeout())
	if err != nil {
		return err
	}
	if !found {
		LogWarn("Crusher not found, skipping dismantle for %q", item.Name)
	} else {
		if err := im.feedCrusher(item); err != nil {
			return err
		}
	}

	return im.returnToStation(returnTo)
}

// feedCrusher opens the inventory and feeds in every icon of each
// crusher-bound grade
func (im *InventoryManager) feedCrusher(item ItemProfile) error {
	if err := im.gateway.KeyPress(inventoryKey); err != nil {
		return err
	}
	if err := im.gateway.Sleep(500 * time.Millisecond); err != nil {
		return err
	}

	region := im.cfg.Inventory.Bounds()
	for _, grade := range gradeOrder {
		if !item.GradePrefs[grade] {
			continue
		}
		tpl := item.GradeTemplates[grade]
		if tpl == nil {
			LogWarn("No icon template for grade %q, cannot scan it", grade)
			continue
		}
		if err := im.feedGrade(tpl, region); err != nil {
			return err
		}
	}

	return im.gateway.KeyPress(closeKey)
}

// feedGrade scans the inventory region for one grade's icons and right-clicks
// each hit. When a scan finds nothing the list is scrolled and rescanned, up
// to the attempt bound; a scan that stays empty after scrolling ends the
// grade.
func (im *InventoryManager) feedGrade(tpl *Template, region Bounds) error {
	tb := tpl.Image.Bounds()

	for attempt := 0; attempt < dismantleScrollAttempts; attempt++ {
		frame, err := im.gateway.Capture(nil)
		if err != nil {
			if errors.Is(err, ErrCancelled) {
				return err
			}
			LogWarn("Capture failed during inventory scan: %v", err)
			return nil
		}

		matches, err := im.analyzer.FindAll(frame, tpl, region)
		if err != nil {
			if errors.Is(err, ErrPerceptionUnavailable) {
				return nil
			}
			return err
		}
		if len(matches) == 0 {
			rc := region.Center()
			if err := im.gateway.Scroll(rc.X, rc.Y, -3); err != nil {
				return err
			}
			if err := im.gateway.Sleep(300 * time.Millisecond); err != nil {
				return err
			}
			continue
		}

		LogInfo("Feeding %d item(s) of grade %q to the crusher", len(matches), tpl.Name)
		for _, m := range matches {
			if err := im.gateway.Click(m.Point.X+tb.Dx()/2, m.Point.Y+tb.Dy()/2, "right"); err != nil {
				return err
			}
			if err := im.gateway.Sleep(dismantleClickDelay); err != nil {
				return err
			}
		}
		// Next attempt rescans and picks up icons revealed by the removals.
	}
	return nil
}

// returnToStation re-acquires the production station and reopens its
// interface so the caller resumes crafting where it left off
func (im *InventoryManager) returnToStation(target StationTarget) error {
	found, err := im.locator.Acquire(target, im.cfg.StationTimeout())
	if err != nil {
		return err
	}
	if !found {
		LogWarn("Could not return to %q after dismantling", target.Name)
		return nil
	}
	if err := im.gateway.KeyPress(interactKey); err != nil {
		return err
	}
	return im.gateway.Sleep(time.Second)
}
