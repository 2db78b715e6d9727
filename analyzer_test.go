package main

import (
	"errors"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func rgbaOf(c Color) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

func TestMatchFindsExactCopy(t *testing.T) {
	tpl := &Template{Name: "t", Image: patternImage(8, 8, 1), Threshold: 0.8}
	frame := solidImage(64, 48, 60)
	pasteImage(frame, tpl.Image, 20, 10)

	m, err := NewAnalyzer().Match(frame, tpl)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if m == nil {
		t.Fatal("expected a match, got none")
	}
	if m.Point != (Point{X: 20, Y: 10}) {
		t.Errorf("match at %+v, want (20, 10)", m.Point)
	}
	if m.Score < 0.99 {
		t.Errorf("score = %.3f, want near 1", m.Score)
	}
}

func TestMatchAbsentTemplate(t *testing.T) {
	tpl := &Template{Name: "t", Image: patternImage(8, 8, 1), Threshold: 0.8}
	frame := solidImage(64, 48, 60)

	m, err := NewAnalyzer().Match(frame, tpl)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if m != nil {
		t.Errorf("expected no match on a blank frame, got %+v", m)
	}
}

func TestMatchUnconfiguredTemplate(t *testing.T) {
	a := NewAnalyzer()
	frame := solidImage(16, 16, 60)

	for _, tpl := range []*Template{nil, {Name: "no-image", Threshold: 0.8}} {
		_, err := a.Match(frame, tpl)
		if !errors.Is(err, ErrPerceptionUnavailable) {
			t.Errorf("Match(%v) error = %v, want ErrPerceptionUnavailable", tpl, err)
		}
	}
}

func TestMatchTemplateLargerThanFrame(t *testing.T) {
	tpl := &Template{Name: "t", Image: patternImage(32, 32, 1), Threshold: 0.8}
	m, err := NewAnalyzer().Match(solidImage(16, 16, 60), tpl)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if m != nil {
		t.Errorf("expected no match, got %+v", m)
	}
}

func TestFindAllRowMajorAbsolute(t *testing.T) {
	tpl := &Template{Name: "t", Image: patternImage(8, 8, 7), Threshold: 0.8}
	frame := solidImage(120, 80, 60)
	region := Bounds{X: 10, Y: 10, W: 100, H: 60}

	// Three distinct occurrences inside the region.
	pasteImage(frame, tpl.Image, 20, 15)
	pasteImage(frame, tpl.Image, 50, 15)
	pasteImage(frame, tpl.Image, 20, 40)

	matches, err := NewAnalyzer().FindAll(frame, tpl, region)
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}

	var got []Point
	for _, m := range matches {
		got = append(got, m.Point)
	}
	want := []Point{{X: 20, Y: 15}, {X: 50, Y: 15}, {X: 20, Y: 40}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FindAll points mismatch (-want +got):\n%s", diff)
	}
}

func TestFindAllOutsideRegionIgnored(t *testing.T) {
	tpl := &Template{Name: "t", Image: patternImage(8, 8, 7), Threshold: 0.8}
	frame := solidImage(120, 80, 60)
	pasteImage(frame, tpl.Image, 2, 2) // outside the region

	matches, err := NewAnalyzer().FindAll(frame, tpl, Bounds{X: 20, Y: 20, W: 80, H: 50})
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected no matches, got %d", len(matches))
	}
}

func TestClassifyGrade(t *testing.T) {
	tests := []struct {
		name   string
		border Color
		want   string
	}{
		{"green border", NewColor(0, 255, 0), "зелёный"},
		{"gray border", NewColor(128, 128, 128), "серый"},
		{"blue border", NewColor(0, 128, 255), "синий"},
		{"yellowish border", NewColor(250, 245, 10), "жёлтый"},
	}
	a := NewAnalyzer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			icon := solidImage(12, 12, 40)
			b := icon.Bounds()
			for x := b.Min.X; x < b.Max.X; x++ {
				icon.Set(x, b.Min.Y, rgbaOf(tt.border))
				icon.Set(x, b.Max.Y-1, rgbaOf(tt.border))
			}
			for y := b.Min.Y; y < b.Max.Y; y++ {
				icon.Set(b.Min.X, y, rgbaOf(tt.border))
				icon.Set(b.Max.X-1, y, rgbaOf(tt.border))
			}
			if got := a.ClassifyGrade(icon); got != tt.want {
				t.Errorf("ClassifyGrade = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifyGradeWeighsBorderPixelsOnce(t *testing.T) {
	// 3x3 icon: four yellow corners, four green edge midpoints. With each
	// border pixel counted once the average sits closer to the green
	// reference; corners counted twice would tip it to yellow.
	icon := solidImage(3, 3, 0)
	yellow := rgbaOf(NewColor(255, 255, 0))
	green := rgbaOf(NewColor(0, 255, 0))
	for _, p := range []Point{{0, 0}, {2, 0}, {0, 2}, {2, 2}} {
		icon.Set(p.X, p.Y, yellow)
	}
	for _, p := range []Point{{1, 0}, {0, 1}, {2, 1}, {1, 2}} {
		icon.Set(p.X, p.Y, green)
	}

	if got := NewAnalyzer().ClassifyGrade(icon); got != "зелёный" {
		t.Errorf("ClassifyGrade = %q, want зелёный", got)
	}
}

func TestMeanLuminance(t *testing.T) {
	if got := meanLuminance(solidImage(10, 10, 255)); got < 250 {
		t.Errorf("white luminance = %.1f, want near 255", got)
	}
	if got := meanLuminance(solidImage(10, 10, 0)); got > 1 {
		t.Errorf("black luminance = %.1f, want near 0", got)
	}
	if got := meanLuminance(solidImage(10, 10, 100)); got < 95 || got > 105 {
		t.Errorf("gray luminance = %.1f, want near 100", got)
	}
}
