// Package main - crafting.go
//
// This file implements the per-item crafting cycle as a state machine.
//
// State Machine States:
//   - Idle: not started
//   - AcquiringStation: rotating the camera onto the profession's station
//   - OpeningInterface: pressing the interaction key
//   - SelectingRecipe: locating the item's recipe in the crafting window
//   - Crafting: triggering a craft batch
//   - CollectingOutput: draining the output slot grid into the inventory
//   - InventoryFull: an output slot stayed occupied, inventory has no room
//   - Dismantling: crusher sub-cycle frees inventory space
//   - ItemDone / ItemFailed: terminal
//
// State Transitions:
//   Transitions are strictly forward except InventoryFull -> Dismantling ->
//   Crafting (production resumes after dismantling) and any state ->
//   ItemFailed on station-acquisition failure. Production is unbounded:
//   with no batch limit configured, ItemDone is reached only via an
//   external Stop.
//
// Failure policy per stage:
//   - Station acquisition timeout fails the item (skip, continue with next)
//   - Device failures while opening the interface are non-fatal: the UI may
//     already be open
//   - Recipe selection exhausting all strategies logs a warning and
//     proceeds; downstream steps no-op safely
//   - Cancellation unwinds through everything
package main

import (
	"errors"
	"fmt"
	"time"
)

// Interaction keys and crafting constants (Russian game client).
const (
	interactKey      = "e"
	inventoryKey     = "i"
	closeKey         = "esc"
	craftShortcutKey = "c"
	craftLabel       = "Создать"

	// maxRecipeScrolls bounds the OCR scan of the recipe list
	maxRecipeScrolls = 6
	// slotBrightnessMin is the emptiness heuristic: a slot capture with
	// mean luminance below this still holds an item
	slotBrightnessMin = 80.0
	// slotProbe is the half-size of the capture around a slot center
	slotProbe = 15
)

// CraftState enumerates the crafting cycle states
type CraftState int

const (
	StateIdle CraftState = iota
	StateAcquiringStation
	StateOpeningInterface
	StateSelectingRecipe
	StateCrafting
	StateCollectingOutput
	StateInventoryFull
	StateDismantling
	StateItemDone
	StateItemFailed
)

// String returns the state name
func (s CraftState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateAcquiringStation:
		return "AcquiringStation"
	case StateOpeningInterface:
		return "OpeningInterface"
	case StateSelectingRecipe:
		return "SelectingRecipe"
	case StateCrafting:
		return "Crafting"
	case StateCollectingOutput:
		return "CollectingOutput"
	case StateInventoryFull:
		return "InventoryFull"
	case StateDismantling:
		return "Dismantling"
	case StateItemDone:
		return "ItemDone"
	case StateItemFailed:
		return "ItemFailed"
	default:
		return "Unknown"
	}
}

// stationForProfession maps a profession to its crafting station
func stationForProfession(profession string) StationTarget {
	switch profession {
	case "jeweling":
		return stations["jewelry"]
	case "tailoring":
		return stations["tailor"]
	default:
		return stations["forge"]
	}
}

// CraftCycle runs the crafting state machine for a single item.
type CraftCycle struct {
	gateway   *Gateway
	analyzer  *Analyzer
	reader    TextReader
	locator   *StationLocator
	inventory *InventoryManager
	cfg       *Config

	item    ItemProfile
	station StationTarget
	state   CraftState
	batches int
}

// NewCraftCycle creates a cycle for one item. State starts at Idle and is
// discarded with the cycle once a terminal state is reached.
func NewCraftCycle(gateway *Gateway, analyzer *Analyzer, reader TextReader,
	locator *StationLocator, inventory *InventoryManager, cfg *Config, item ItemProfile) *CraftCycle {
	return &CraftCycle{
		gateway:   gateway,
		analyzer:  analyzer,
		reader:    reader,
		locator:   locator,
		inventory: inventory,
		cfg:       cfg,
		item:      item,
		station:   stationForProfession(item.Profession),
		state:     StateIdle,
	}
}

// State returns the current state
func (cc *CraftCycle) State() CraftState {
	return cc.state
}

// setState transitions and logs
func (cc *CraftCycle) setState(next CraftState) {
	LogState(cc.item.Name, cc.state, next)
	cc.state = next
}

// Run executes the state machine to a terminal state. The returned error is
// non-nil only for cancellation; an ItemFailed terminal state returns nil
// and is visible through State().
func (cc *CraftCycle) Run() error {
	LogInfo("Starting craft cycle for %q (%s)", cc.item.Name, cc.item.Profession)
	cc.setState(StateAcquiringStation)

	for {
		var (
			next CraftState
			err  error
		)
		switch cc.state {
		case StateAcquiringStation:
			next, err = cc.onAcquiringStation()
		case StateOpeningInterface:
			next, err = cc.onOpeningInterface()
		case StateSelectingRecipe:
			next, err = cc.onSelectingRecipe()
		case StateCrafting:
			next, err = cc.onCrafting()
		case StateCollectingOutput:
			next, err = cc.onCollectingOutput()
		case StateInventoryFull:
			next, err = cc.onInventoryFull()
		case StateItemDone, StateItemFailed:
			return nil
		default:
			return fmt.Errorf("craft cycle in unexpected state %s", cc.state)
		}
		if err != nil {
			return err
		}
		cc.setState(next)
	}
}

// onAcquiringStation rotates onto the profession's station
func (cc *CraftCycle) onAcquiringStation() (CraftState, error) {
	found, err := cc.locator.Acquire(cc.station, cc.cfg.StationTimeout())
	if err != nil {
		return cc.state, err
	}
	if !found {
		LogError("Station %q not acquired for %q: %v", cc.station.Name, cc.item.Name, ErrStationNotFound)
		return StateItemFailed, nil
	}
	return StateOpeningInterface, nil
}

// onOpeningInterface presses the interaction key. Device failure here is
// non-fatal: the interface may already be open.
func (cc *CraftCycle) onOpeningInterface() (CraftState, error) {
	if err := cc.gateway.KeyPress(interactKey); err != nil {
		if errors.Is(err, ErrCancelled) {
			return cc.state, err
		}
		LogWarn("Could not press %q to open interface: %v", interactKey, err)
	}
	if err := cc.gateway.Sleep(time.Second); err != nil {
		return cc.state, err
	}
	return StateSelectingRecipe, nil
}

// onSelectingRecipe tries, in order: the recipe icon template, then an OCR
// scan of the recipe list with bounded scrolling. Exhausting both logs a
// warning and proceeds; the remaining stages no-op safely.
func (cc *CraftCycle) onSelectingRecipe() (CraftState, error) {
	// Strategy 1: recipe icon template.
	clicked, err := cc.clickTemplate(cc.item.Trigger(TriggerRecipeIcon))
	if err != nil {
		return cc.state, err
	}
	if clicked {
		return StateCrafting, nil
	}

	// Strategy 2: OCR scan of the recipe list region, scrolling when the
	// entry is not initially visible.
	region := cc.cfg.RecipeList.Bounds()
	for attempt := 0; attempt <= maxRecipeScrolls; attempt++ {
		frame, err := cc.gateway.Capture(&region)
		if err != nil {
			if errors.Is(err, ErrCancelled) {
				return cc.state, err
			}
			LogWarn("Capture failed during recipe scan: %v", err)
			break
		}
		box, err := cc.reader.LocateText(frame, cc.item.Name, cc.cfg.OCRLanguage)
		if err != nil && !errors.Is(err, ErrPerceptionUnavailable) {
			return cc.state, err
		}
		if box != nil {
			c := box.Center()
			if err := cc.gateway.Click(region.X+c.X, region.Y+c.Y, "left"); err != nil {
				return cc.state, err
			}
			return StateCrafting, nil
		}
		if attempt == maxRecipeScrolls {
			break
		}
		rc := region.Center()
		if err := cc.gateway.Scroll(rc.X, rc.Y, -3); err != nil {
			return cc.state, err
		}
		if err := cc.gateway.Sleep(300 * time.Millisecond); err != nil {
			return cc.state, err
		}
	}

	LogWarn("Recipe %q not found by any strategy; proceeding unselected", cc.item.Name)
	return StateCrafting, nil
}

// onCrafting triggers one craft batch through the ordered fallback chain:
// create-button template, OCR of the craft label, configured fallback icon,
// hardcoded shortcut.
func (cc *CraftCycle) onCrafting() (CraftState, error) {
	triggered, err := cc.clickTemplate(cc.item.Trigger(TriggerCreateButton))
	if err != nil {
		return cc.state, err
	}

	if !triggered {
		frame, err := cc.gateway.Capture(nil)
		if err != nil {
			if errors.Is(err, ErrCancelled) {
				return cc.state, err
			}
			LogWarn("Capture failed before craft trigger: %v", err)
		} else {
			box, err := cc.reader.LocateText(frame, craftLabel, cc.cfg.OCRLanguage)
			if err != nil && !errors.Is(err, ErrPerceptionUnavailable) {
				return cc.state, err
			}
			if box != nil {
				c := box.Center()
				if err := cc.gateway.Click(c.X, c.Y, "left"); err != nil {
					return cc.state, err
				}
				triggered = true
			}
		}
	}

	if !triggered {
		triggered, err = cc.clickTemplate(cc.item.GradeTemplates[craftFallbackIcon])
		if err != nil {
			return cc.state, err
		}
	}

	if !triggered {
		LogDebug("No craft trigger located; falling back to %q shortcut", craftShortcutKey)
		if err := cc.gateway.KeyPress(craftShortcutKey); err != nil {
			if errors.Is(err, ErrCancelled) {
				return cc.state, err
			}
			LogWarn("Craft shortcut failed: %v", err)
		}
	}

	cc.batches++
	if err := cc.gateway.Sleep(1500 * time.Millisecond); err != nil {
		return cc.state, err
	}
	return StateCollectingOutput, nil
}

// onCollectingOutput right-clicks every output slot and verifies each one
// emptied. All slots are attempted before any decision: draining the
// remaining slots keeps the inventory-full transition to exactly once per
// batch.
func (cc *CraftCycle) onCollectingOutput() (CraftState, error) {
	occupied := 0
	for _, slot := range cc.cfg.OutputSlots {
		if err := cc.gateway.Click(slot.X, slot.Y, "right"); err != nil {
			return cc.state, err
		}
		if err := cc.gateway.Sleep(300 * time.Millisecond); err != nil {
			return cc.state, err
		}
		full, err := cc.slotOccupied(slot)
		if err != nil {
			return cc.state, err
		}
		if full {
			LogDebug("Slot at (%d, %d) still occupied after collection", slot.X, slot.Y)
			occupied++
		}
	}

	if occupied > 0 {
		LogInfo("%d output slot(s) remained occupied; inventory full", occupied)
		return StateInventoryFull, nil
	}
	if cc.cfg.MaxBatches > 0 && cc.batches >= cc.cfg.MaxBatches {
		LogInfo("Batch limit %d reached for %q", cc.cfg.MaxBatches, cc.item.Name)
		return StateItemDone, nil
	}
	return StateCrafting, nil
}

// slotOccupied verifies whether a slot still holds an item after the
// transfer click. With an empty-slot template configured a failed match
// means occupied; without one the brightness heuristic decides.
func (cc *CraftCycle) slotOccupied(slot SlotPos) (bool, error) {
	probe := Bounds{X: slot.X - slotProbe, Y: slot.Y - slotProbe, W: 2 * slotProbe, H: 2 * slotProbe}
	img, err := cc.gateway.Capture(&probe)
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			return false, err
		}
		LogWarn("Slot capture failed at (%d, %d): %v", slot.X, slot.Y, err)
		return false, nil
	}

	if tpl := cc.item.Trigger(TriggerEmptySlot); tpl != nil {
		m, err := cc.analyzer.Match(img, tpl)
		if err != nil && !errors.Is(err, ErrPerceptionUnavailable) {
			return false, err
		}
		// Match failure means the empty-slot look is absent: occupied.
		return m == nil, nil
	}

	return meanLuminance(img) < slotBrightnessMin, nil
}

// onInventoryFull runs the dismantling sub-cycle, then resumes crafting.
// A failed dismantle (crusher not found) is logged inside the manager and
// production still resumes; only cancellation propagates.
func (cc *CraftCycle) onInventoryFull() (CraftState, error) {
	cc.setState(StateDismantling)
	if err := cc.inventory.Dismantle(cc.item, cc.station); err != nil {
		return cc.state, err
	}
	return StateCrafting, nil
}

// clickTemplate matches tpl against a fresh frame and clicks the center of
// the best hit. Returns whether a click happened. A nil template or missing
// matcher capability is a miss, not an error.
func (cc *CraftCycle) clickTemplate(tpl *Template) (bool, error) {
	if tpl == nil {
		return false, nil
	}
	frame, err := cc.gateway.Capture(nil)
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			return false, err
		}
		LogWarn("Capture failed for template %q: %v", tpl.Name, err)
		return false, nil
	}
	m, err := cc.analyzer.Match(frame, tpl)
	if err != nil {
		if errors.Is(err, ErrPerceptionUnavailable) {
			return false, nil
		}
		return false, err
	}
	if m == nil {
		return false, nil
	}
	tb := tpl.Image.Bounds()
	if err := cc.gateway.Click(m.Point.X+tb.Dx()/2, m.Point.Y+tb.Dy()/2, "left"); err != nil {
		return false, err
	}
	return true, nil
}
