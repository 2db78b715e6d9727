// Package main - analyzer.go
//
// Image analysis for the crafting bot: template matching, grade
// classification and slot brightness.
//
// Key responsibilities:
//   - Normalized cross-correlation template matching (single best match and
//     exhaustive region scans)
//   - Item grade classification from icon border color
//   - Mean luminance heuristic for the output-slot emptiness check
//
// Matching is stateless per call and deterministic for identical inputs:
// the analyzer holds no state beyond nothing at all, frames are consumed
// read-only and discarded by the caller.
//
// Missing templates are a capability gap, not an error condition: Match and
// FindAll fail with ErrPerceptionUnavailable when no template image is
// present, and every caller treats that as "no match" and moves to its next
// strategy.
package main

import (
	"errors"
	"image"
	"math"
)

// ErrPerceptionUnavailable reports that a matching capability is not present
// (template not configured or its image failed to load, OCR backend
// missing). Always non-fatal: callers treat it as "no match".
var ErrPerceptionUnavailable = errors.New("perception capability unavailable")

// Deterministic grade ordering for classification ties and scan loops.
var gradeOrder = []string{"серый", "зелёный", "синий", "фиолетовый", "жёлтый"}

// Analyzer performs template matching over captured frames.
type Analyzer struct{}

// NewAnalyzer creates an analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// grayMat is a float grayscale copy of an image, the working format for
// correlation scoring.
type grayMat struct {
	w, h int
	pix  []float64
}

// toGray converts an image into a grayscale matrix using the Rec. 601 weights
func toGray(img image.Image) *grayMat {
	b := img.Bounds()
	m := &grayMat{w: b.Dx(), h: b.Dy(), pix: make([]float64, b.Dx()*b.Dy())}
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			m.pix[i] = 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(bl>>8)
			i++
		}
	}
	return m
}

// at returns the gray value at (x, y)
func (m *grayMat) at(x, y int) float64 {
	return m.pix[y*m.w+x]
}

// mean returns the average gray value of the w*h window at (x, y)
func (m *grayMat) mean(x, y, w, h int) float64 {
	sum := 0.0
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			sum += m.at(x+i, y+j)
		}
	}
	return sum / float64(w*h)
}

// scoreAt computes the zero-mean normalized cross-correlation between tpl
// and the window of frame at (x, y). Result is in [-1, 1]; 1 is an exact
// match up to brightness/contrast.
func scoreAt(frame, tpl *grayMat, x, y int, tplMean float64) float64 {
	frameMean := frame.mean(x, y, tpl.w, tpl.h)

	var num, denF, denT float64
	for j := 0; j < tpl.h; j++ {
		for i := 0; i < tpl.w; i++ {
			df := frame.at(x+i, y+j) - frameMean
			dt := tpl.at(i, j) - tplMean
			num += df * dt
			denF += df * df
			denT += dt * dt
		}
	}

	if denF == 0 || denT == 0 {
		// Flat patch: identical flat regions correlate perfectly,
		// anything else not at all.
		if denF == 0 && denT == 0 {
			return 1
		}
		return 0
	}
	return num / math.Sqrt(denF*denT)
}

// Match searches frame for the single best occurrence of tpl.
//
// Returns the best-scoring location when the score reaches tpl.Threshold,
// nil when the template is visible nowhere, and ErrPerceptionUnavailable
// when the template has no image.
func (a *Analyzer) Match(frame image.Image, tpl *Template) (*MatchResult, error) {
	if tpl == nil || tpl.Image == nil {
		return nil, ErrPerceptionUnavailable
	}

	f := toGray(frame)
	t := toGray(tpl.Image)
	if t.w > f.w || t.h > f.h {
		return nil, nil
	}
	tplMean := t.mean(0, 0, t.w, t.h)

	best := MatchResult{Score: -2}
	for y := 0; y <= f.h-t.h; y++ {
		for x := 0; x <= f.w-t.w; x++ {
			s := scoreAt(f, t, x, y, tplMean)
			if s > best.Score {
				best = MatchResult{Point: Point{X: x, Y: y}, Score: s}
			}
		}
	}

	LogDebug("Template %q best score %.3f at (%d, %d)", tpl.Name, best.Score, best.Point.X, best.Point.Y)
	if best.Score >= tpl.Threshold {
		return &best, nil
	}
	return nil, nil
}

// FindAll returns every non-overlapping occurrence of tpl inside region,
// ordered by scan position: top-to-bottom, then left-to-right. Overlapping
// candidates are suppressed greedily in scan order, so k distinct
// occurrences yield exactly k results.
func (a *Analyzer) FindAll(frame image.Image, tpl *Template, region Bounds) ([]MatchResult, error) {
	if tpl == nil || tpl.Image == nil {
		return nil, ErrPerceptionUnavailable
	}

	sub := cropImage(frame, region)
	f := toGray(sub)
	t := toGray(tpl.Image)
	if t.w > f.w || t.h > f.h {
		return nil, nil
	}
	tplMean := t.mean(0, 0, t.w, t.h)

	var results []MatchResult
	for y := 0; y <= f.h-t.h; y++ {
		for x := 0; x <= f.w-t.w; x++ {
			s := scoreAt(f, t, x, y, tplMean)
			if s < tpl.Threshold {
				continue
			}
			if overlapsAny(results, x, y, t.w, t.h, region) {
				continue
			}
			results = append(results, MatchResult{
				// Absolute screen coordinates, like the capture region.
				Point: Point{X: region.X + x, Y: region.Y + y},
				Score: s,
			})
		}
	}
	return results, nil
}

// overlapsAny reports whether the candidate box at region-relative (x, y)
// intersects a previously accepted result
func overlapsAny(accepted []MatchResult, x, y, w, h int, region Bounds) bool {
	ax, ay := region.X+x, region.Y+y
	for _, r := range accepted {
		if ax < r.Point.X+w && ax+w > r.Point.X &&
			ay < r.Point.Y+h && ay+h > r.Point.Y {
			return true
		}
	}
	return false
}

// ClassifyGrade determines an item's grade from its icon border color.
//
// The game draws a colored border around item icons to indicate rarity. The
// border pixels (outermost rows and columns) are averaged and compared to
// the reference palette; the closest reference wins. The palette is finite
// and exhaustive, so some label is always returned.
func (a *Analyzer) ClassifyGrade(icon image.Image) string {
	b := icon.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return gradeOrder[0]
	}

	var sumR, sumG, sumB, n float64
	sample := func(x, y int) {
		r, g, bl, _ := icon.At(x, y).RGBA()
		sumR += float64(r >> 8)
		sumG += float64(g >> 8)
		sumB += float64(bl >> 8)
		n++
	}
	for x := b.Min.X; x < b.Max.X; x++ {
		sample(x, b.Min.Y)
		sample(x, b.Max.Y-1)
	}
	// Corners already sampled by the row loop; each border pixel counts once.
	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		sample(b.Min.X, y)
		sample(b.Max.X-1, y)
	}

	avg := NewColor(uint8(sumR/n), uint8(sumG/n), uint8(sumB/n))
	LogDebug("Average border color: (%d, %d, %d)", avg.R, avg.G, avg.B)

	best := gradeOrder[0]
	bestDist := avg.DistanceTo(gradeColors[best])
	for _, grade := range gradeOrder[1:] {
		if d := avg.DistanceTo(gradeColors[grade]); d < bestDist {
			bestDist = d
			best = grade
		}
	}
	return best
}

// meanLuminance returns the average Rec. 601 luminance of an image. Used by
// the output-slot emptiness heuristic: a slot capture darker than the
// occupancy threshold still holds an item.
func meanLuminance(img image.Image) float64 {
	m := toGray(img)
	if len(m.pix) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range m.pix {
		sum += v
	}
	return sum / float64(len(m.pix))
}
