// Package main - config.go
//
// Configuration loading and persistence. The on-disk format is YAML and
// mirrors the bot's historical config file: item definitions with grade
// preferences and template paths, profession enable flags and order, screen
// regions and timing knobs.
//
// Everything shape-dependent is resolved here, at load time. A config may
// define a single `item:` or a list of `items:`; Load normalizes both forms
// into one []ItemProfile, loads every referenced template image exactly
// once, and guarantees the profile invariant that each grade named in the
// preferences has a (possibly nil) template entry. Runtime code never
// probes the config's shape.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/vcaesar/imgo"
	"gopkg.in/yaml.v3"
)

// Region is a rectangle in the config file
type Region struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

// Bounds converts a config region to the runtime type
func (r Region) Bounds() Bounds {
	return Bounds{X: r.X, Y: r.Y, W: r.W, H: r.H}
}

// SlotPos is an output slot center in the config file
type SlotPos struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// ItemConfig is the on-disk form of one craftable item
type ItemConfig struct {
	Name       string            `yaml:"name"`
	Profession string            `yaml:"profession"`
	Grades     map[string]bool   `yaml:"grades"`
	GradeIcons map[string]string `yaml:"grade_icons"`
	Triggers   map[string]string `yaml:"triggers"`
	Threshold  float64           `yaml:"threshold"`
}

// Config holds all configurable options for the bot.
type Config struct {
	Driver      string          `yaml:"driver"`
	GameURL     string          `yaml:"game_url"`
	CycleDelay  float64         `yaml:"cycle_delay"`     // seconds between professions
	StationWait float64         `yaml:"station_timeout"` // seconds per acquisition attempt
	MaxBatches  int             `yaml:"max_batches"`     // craft-collect rounds per item, 0 = unbounded
	OCRLanguage string          `yaml:"ocr_language"`
	Professions map[string]bool `yaml:"professions"`
	Order       []string        `yaml:"professions_order"`
	Inventory   Region          `yaml:"inventory_region"`
	RecipeList  Region          `yaml:"recipe_list_region"`
	OutputSlots []SlotPos       `yaml:"output_slots"`
	Item        *ItemConfig     `yaml:"item,omitempty"`
	ItemList    []ItemConfig    `yaml:"items,omitempty"`

	// Items is the normalized profile list built by Load; not serialized.
	Items []ItemProfile `yaml:"-"`
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() *Config {
	return &Config{
		Driver:      "native",
		CycleDelay:  3.0,
		StationWait: 8.0,
		MaxBatches:  0,
		OCRLanguage: "rus+eng",
		Professions: map[string]bool{
			"blacksmithing": true,
			"jeweling":      false,
			"tailoring":     false,
		},
		Order:      []string{"blacksmithing", "jeweling", "tailoring"},
		Inventory:  Region{X: 1000, Y: 200, W: 300, H: 400},
		RecipeList: Region{X: 100, Y: 150, W: 350, H: 500},
		OutputSlots: []SlotPos{
			{X: 800, Y: 350}, {X: 850, Y: 350}, {X: 900, Y: 350},
			{X: 800, Y: 400}, {X: 850, Y: 400}, {X: 900, Y: 400},
		},
		Item: &ItemConfig{
			Name:       "Простой топор",
			Profession: "blacksmithing",
			Grades: map[string]bool{
				"серый":      false,
				"зелёный":    true,
				"синий":      true,
				"фиолетовый": true,
				"жёлтый":     true,
			},
			Threshold: 0.8,
		},
	}
}

// LoadConfig reads path and normalizes it. A missing file yields the
// defaults; a malformed file is an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		LogInfo("Configuration file %s not found, using defaults", path)
	} else if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig persists the configuration to path
func SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	LogInfo("Configuration saved to %s", path)
	return nil
}

// StationTimeout returns the acquisition timeout as a duration
func (c *Config) StationTimeout() time.Duration {
	return time.Duration(c.StationWait * float64(time.Second))
}

// ProfessionDelay returns the inter-profession delay as a duration
func (c *Config) ProfessionDelay() time.Duration {
	return time.Duration(c.CycleDelay * float64(time.Second))
}

// normalize folds the single-item and multi-item forms into Items and loads
// every template image
func (c *Config) normalize() error {
	raw := c.ItemList
	if len(raw) == 0 && c.Item != nil {
		raw = []ItemConfig{*c.Item}
	}
	if len(raw) == 0 {
		return fmt.Errorf("config defines no items")
	}

	c.Items = make([]ItemProfile, 0, len(raw))
	for _, ic := range raw {
		profile, err := buildProfile(ic)
		if err != nil {
			return err
		}
		c.Items = append(c.Items, profile)
	}
	return nil
}

// buildProfile converts one ItemConfig into a runtime profile, loading its
// template images
func buildProfile(ic ItemConfig) (ItemProfile, error) {
	if ic.Name == "" {
		return ItemProfile{}, fmt.Errorf("item with empty name in config")
	}
	threshold := ic.Threshold
	if threshold <= 0 || threshold > 1 {
		threshold = 0.8
	}

	profile := ItemProfile{
		Name:           ic.Name,
		Profession:     ic.Profession,
		GradePrefs:     make(map[string]bool, len(ic.Grades)),
		GradeTemplates: make(map[string]*Template, len(ic.Grades)),
		Triggers:       make(map[string]*Template, len(ic.Triggers)),
	}

	for grade, toCrusher := range ic.Grades {
		profile.GradePrefs[grade] = toCrusher
		// Every preferred grade gets an entry, nil when no icon is set.
		profile.GradeTemplates[grade] = loadTemplate(ic.GradeIcons[grade], grade, KindGradeIcon, threshold)
	}
	// Non-grade entries in grade_icons (the craft-button icon) ride along in
	// the same map without becoming preferences.
	for key, path := range ic.GradeIcons {
		if _, isGrade := profile.GradePrefs[key]; isGrade {
			continue
		}
		profile.GradeTemplates[key] = loadTemplate(path, key, KindCreateButton, threshold)
	}
	for key, path := range ic.Triggers {
		kind := KindItemTrigger
		switch key {
		case TriggerCreateButton:
			kind = KindCreateButton
		case TriggerEmptySlot:
			kind = KindEmptySlot
		}
		profile.Triggers[key] = loadTemplate(path, ic.Name+"/"+key, kind, threshold)
	}
	return profile, nil
}

// loadTemplate reads a template image from disk. An empty path means the
// template is not configured; a load failure degrades to the same thing
// with a warning, since a missing template is a capability gap, not a
// fatal error.
func loadTemplate(path, name, kind string, threshold float64) *Template {
	if path == "" {
		return nil
	}
	img, err := imgo.Read(path)
	if err != nil {
		LogWarn("Failed to load template %q from %s: %v", name, path, err)
		return nil
	}
	return &Template{Name: name, Kind: kind, Image: img, Threshold: threshold}
}
