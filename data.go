// Package main - data.go
//
// This file defines core data structures used throughout the bot application.
// It provides geometric primitives, perception inputs and the per-item
// crafting profile produced by the configuration layer.
//
// Major Data Categories:
//
// 1. Geometric Types:
//    - Point: 2D screen coordinates with distance calculation
//    - Bounds: Rectangles with center/containment operations
//
// 2. Perception:
//    - Color: RGB color with tolerance matching
//    - Template: a named reference image plus a match threshold
//    - MatchResult: location and confidence of a template hit
//
// 3. Crafting:
//    - ItemProfile: one craftable item with its grade preferences and
//      interaction trigger templates
//    - StationTarget: a named crafting station identified by an on-screen
//      text keyword
//
// Lifecycle:
// Templates and ItemProfiles are built once at configuration load and are
// immutable for the whole run. Captured frames are transient: created per
// capture, discarded after the matching calls that consume them.
package main

import (
	"image"
	"math"
)

// Point represents a 2D coordinate in screen space.
type Point struct {
	X int
	Y int
}

// NewPoint creates a new Point
func NewPoint(x, y int) Point {
	return Point{X: x, Y: y}
}

// Distance calculates Euclidean distance to another point
func (p Point) Distance(other Point) float64 {
	dx := float64(p.X - other.X)
	dy := float64(p.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Bounds represents a rectangular area
type Bounds struct {
	X int // Top-left X coordinate
	Y int // Top-left Y coordinate
	W int // Width
	H int // Height
}

// NewBounds creates a new Bounds
func NewBounds(x, y, w, h int) Bounds {
	return Bounds{X: x, Y: y, W: w, H: h}
}

// Center returns the center point of the bounds
func (b Bounds) Center() Point {
	return Point{
		X: b.X + b.W/2,
		Y: b.Y + b.H/2,
	}
}

// Contains checks if a point is within the bounds
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.X && p.X <= b.X+b.W &&
		p.Y >= b.Y && p.Y <= b.Y+b.H
}

// Rect converts the bounds to an image.Rectangle
func (b Bounds) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.W, b.Y+b.H)
}

// Color represents an RGB color
type Color struct {
	R uint8
	G uint8
	B uint8
}

// NewColor creates a new Color
func NewColor(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// Matches checks if another color matches within tolerance
func (c Color) Matches(other Color, tolerance uint8) bool {
	return absDiff(c.R, other.R) <= tolerance &&
		absDiff(c.G, other.G) <= tolerance &&
		absDiff(c.B, other.B) <= tolerance
}

// DistanceTo returns the Euclidean distance between two colors in RGB space
func (c Color) DistanceTo(other Color) float64 {
	dr := float64(c.R) - float64(other.R)
	dg := float64(c.G) - float64(other.G)
	db := float64(c.B) - float64(other.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// absDiff returns absolute difference between two uint8 values
func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

// Template kinds. A template's kind tells the analyzer what role the
// reference image plays; matching itself is kind-agnostic.
const (
	KindGradeIcon    = "grade-icon"
	KindItemTrigger  = "item-trigger"
	KindCreateButton = "create-button"
	KindEmptySlot    = "empty-slot"
)

// Template is a named reference image plus the confidence threshold a match
// must reach. A nil *Template means "not configured", which is valid: every
// consumer falls back to its next strategy.
type Template struct {
	Name      string
	Kind      string
	Image     image.Image
	Threshold float64
}

// MatchResult is a single template hit: the top-left corner of the match and
// its correlation score.
type MatchResult struct {
	Point Point
	Score float64
}

// Trigger template keys on an ItemProfile.
const (
	TriggerRecipeIcon   = "recipe_icon"
	TriggerCreateButton = "create_button"
	TriggerEmptySlot    = "empty_slot"
)

// craftFallbackIcon is the grade_icons key holding the craft-button icon
// used as the third crafting trigger strategy. It sits in the icon map next
// to the grade icons but is not a grade itself.
const craftFallbackIcon = "создать"

// ItemProfile describes one craftable item: which grades go to the crusher
// after crafting and which reference images locate the item's UI elements.
//
// Invariant: every grade named in GradePrefs has an entry in GradeTemplates,
// possibly nil when no icon was configured. The config loader enforces this.
type ItemProfile struct {
	Name           string
	Profession     string
	GradePrefs     map[string]bool
	GradeTemplates map[string]*Template
	Triggers       map[string]*Template
}

// Trigger returns the trigger template for the given key, or nil
func (ip *ItemProfile) Trigger(key string) *Template {
	if ip.Triggers == nil {
		return nil
	}
	return ip.Triggers[key]
}

// StationTarget names an in-world crafting station. A station is acquired
// only after Keyword is confirmed visible on screen; Fallback is a screen
// coordinate kept for clients whose labels OCR poorly, never a substitute
// for the keyword confirmation.
type StationTarget struct {
	Name     string
	Keyword  string
	Fallback *Point
}

// Known stations and their on-screen labels (Russian game client).
var stations = map[string]StationTarget{
	"forge":   {Name: "forge", Keyword: "кузнечное горнило"},
	"crusher": {Name: "crusher", Keyword: "дробилка"},
	"jewelry": {Name: "jewelry", Keyword: "ювелирный станок"},
	"tailor":  {Name: "tailor", Keyword: "портняжное дело"},
}

// Reference border colors per grade. The set is finite and exhaustive, so
// grade classification always returns the closest label.
var gradeColors = map[string]Color{
	"серый":      NewColor(128, 128, 128),
	"зелёный":    NewColor(0, 255, 0),
	"синий":      NewColor(0, 128, 255),
	"фиолетовый": NewColor(128, 0, 128),
	"жёлтый":     NewColor(255, 255, 0),
}
