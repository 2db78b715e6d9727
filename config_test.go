package main

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(cfg.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(cfg.Items))
	}
	if cfg.Items[0].Name != "Простой топор" {
		t.Errorf("default item = %q, want Простой топор", cfg.Items[0].Name)
	}
	if cfg.Driver != "native" {
		t.Errorf("default driver = %q, want native", cfg.Driver)
	}
	if cfg.MaxBatches != 0 {
		t.Errorf("default max_batches = %d, want 0 (unbounded)", cfg.MaxBatches)
	}
}

func TestLoadConfigSingleItemForm(t *testing.T) {
	path := writeConfig(t, `
item:
  name: "Кольцо"
  profession: jeweling
  grades:
    серый: false
    зелёный: true
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(cfg.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(cfg.Items))
	}

	item := cfg.Items[0]
	if item.Name != "Кольцо" || item.Profession != "jeweling" {
		t.Errorf("item = %q/%q, want Кольцо/jeweling", item.Name, item.Profession)
	}
	want := map[string]bool{"серый": false, "зелёный": true}
	if diff := cmp.Diff(want, item.GradePrefs); diff != "" {
		t.Errorf("grade prefs mismatch (-want +got):\n%s", diff)
	}
	// Every preferred grade has a template entry, nil without an icon path.
	for grade := range item.GradePrefs {
		if _, ok := item.GradeTemplates[grade]; !ok {
			t.Errorf("grade %q missing from GradeTemplates", grade)
		}
	}
}

func TestLoadConfigMultiItemForm(t *testing.T) {
	path := writeConfig(t, `
items:
  - name: "Простой топор"
    profession: blacksmithing
    grades:
      зелёный: true
  - name: "Роба"
    profession: tailoring
    grades:
      синий: true
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	var names []string
	for _, item := range cfg.Items {
		names = append(names, item.Name)
	}
	want := []string{"Простой топор", "Роба"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("normalized items mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigListWinsOverSingle(t *testing.T) {
	path := writeConfig(t, `
item:
  name: "Старый"
  grades:
    зелёный: true
items:
  - name: "Новый"
    grades:
      зелёный: true
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(cfg.Items) != 1 || cfg.Items[0].Name != "Новый" {
		t.Errorf("items = %+v, want only Новый", cfg.Items)
	}
}

func TestNormalizeRejectsEmptyItems(t *testing.T) {
	cfg := &Config{CycleDelay: 2.0}
	if err := cfg.normalize(); err == nil {
		t.Fatal("expected an error for a config without items")
	}
}

func TestLoadConfigRejectsNamelessItem(t *testing.T) {
	path := writeConfig(t, `
items:
  - profession: blacksmithing
    grades:
      зелёный: true
`)
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected an error for an item without a name")
	}
}

func TestBuildProfileThresholdDefault(t *testing.T) {
	iconPath := filepath.Join(t.TempDir(), "icon.png")
	f, err := os.Create(iconPath)
	if err != nil {
		t.Fatalf("create icon: %v", err)
	}
	if err := png.Encode(f, patternImage(8, 8, 2)); err != nil {
		t.Fatalf("encode icon: %v", err)
	}
	f.Close()

	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0.8},
		{-1, 0.8},
		{1.5, 0.8},
		{0.9, 0.9},
	}
	for _, tt := range tests {
		p, err := buildProfile(ItemConfig{
			Name:       "x",
			Grades:     map[string]bool{"зелёный": true},
			GradeIcons: map[string]string{"зелёный": iconPath},
			Threshold:  tt.in,
		})
		if err != nil {
			t.Fatalf("buildProfile(threshold=%v): %v", tt.in, err)
		}
		tpl := p.GradeTemplates["зелёный"]
		if tpl == nil {
			t.Fatalf("threshold=%v: icon template not loaded", tt.in)
		}
		if tpl.Threshold != tt.want {
			t.Errorf("threshold in=%v loaded=%v, want %v", tt.in, tpl.Threshold, tt.want)
		}
	}
}

func TestBuildProfileCraftIconIsNotAGrade(t *testing.T) {
	p, err := buildProfile(ItemConfig{
		Name:       "x",
		Grades:     map[string]bool{"зелёный": true},
		GradeIcons: map[string]string{craftFallbackIcon: ""},
	})
	if err != nil {
		t.Fatalf("buildProfile: %v", err)
	}
	if _, isGrade := p.GradePrefs[craftFallbackIcon]; isGrade {
		t.Errorf("%q leaked into the grade preferences", craftFallbackIcon)
	}
}

func TestConfigDurations(t *testing.T) {
	cfg := &Config{CycleDelay: 2.5, StationWait: 8}
	if got := cfg.ProfessionDelay().Seconds(); got != 2.5 {
		t.Errorf("ProfessionDelay = %vs, want 2.5s", got)
	}
	if got := cfg.StationTimeout().Seconds(); got != 8 {
		t.Errorf("StationTimeout = %vs, want 8s", got)
	}
}
