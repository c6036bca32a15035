package region

import (
	"image"
	"math"
	"reflect"
	"testing"

	"github.com/medview/lesionscan/internal/detection"
	medimaging "github.com/medview/lesionscan/internal/imaging"
)

// uniformGray creates a single-intensity grayscale image.
func uniformGray(width, height int, value uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = value
	}
	return img
}

// diskGray creates a light background with one filled dark disk.
func diskGray(width, height, cx, cy, radius int, background, disk uint8) *image.Gray {
	img := uniformGray(width, height, background)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= radius*radius {
				img.Pix[y*img.Stride+x] = disk
			}
		}
	}
	return img
}

func TestAnalyzeDegenerateCandidate(t *testing.T) {
	img := uniformGray(100, 100, 128)
	cand := detection.NewCandidate(detection.SourceBlob, detection.Bounds{X: 500, Y: 500, Width: 20, Height: 20}, 0.8)

	reg := Analyze(cand, img, medimaging.KindXRay, DefaultParams())

	if reg.Confidence != 0 {
		t.Errorf("degenerate region confidence = %v, want 0", reg.Confidence)
	}
	if reg.TumorType != "Unknown" || reg.TumorStage != "Unknown" || reg.Location != "Unknown" {
		t.Errorf("degenerate region labels = %q/%q/%q, want Unknown", reg.TumorType, reg.TumorStage, reg.Location)
	}
}

func TestAnalyzeLabelsNonEmpty(t *testing.T) {
	img := diskGray(128, 128, 64, 64, 30, 220, 40)
	cand := detection.NewCandidate(detection.SourceAdaptive, detection.Bounds{X: 34, Y: 34, Width: 61, Height: 61}, 0.5)

	kinds := []medimaging.ImageKind{
		medimaging.KindXRay, medimaging.KindCT, medimaging.KindMRI,
		medimaging.KindUltrasound, medimaging.KindHistology,
		medimaging.KindGrossPhoto, medimaging.KindOther,
	}
	for _, kind := range kinds {
		reg := Analyze(cand, img, kind, DefaultParams())
		if reg.TumorType == "" || reg.TumorStage == "" || reg.Location == "" {
			t.Errorf("kind %s: empty label in %q/%q/%q", kind, reg.TumorType, reg.TumorStage, reg.Location)
		}
		if reg.Confidence < cand.Confidence || reg.Confidence > 1 {
			t.Errorf("kind %s: confidence %v outside [base, 1]", kind, reg.Confidence)
		}
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	img := diskGray(128, 128, 64, 64, 30, 220, 40)
	cand := detection.NewCandidate(detection.SourceBlob, detection.Bounds{X: 34, Y: 34, Width: 61, Height: 61}, 0.5)

	a := Analyze(cand, img, medimaging.KindCT, DefaultParams())
	b := Analyze(cand, img, medimaging.KindCT, DefaultParams())
	if !reflect.DeepEqual(a, b) {
		t.Error("Analyze is not deterministic for identical inputs")
	}
}

func TestAnalyzeClampsToImage(t *testing.T) {
	img := diskGray(100, 100, 50, 50, 20, 220, 40)
	cand := detection.NewCandidate(detection.SourceWatershed, detection.Bounds{X: 80, Y: 80, Width: 50, Height: 50}, 0.4)

	reg := Analyze(cand, img, medimaging.KindOther, DefaultParams())
	if reg.Bounds.X+reg.Bounds.Width > 100 || reg.Bounds.Y+reg.Bounds.Height > 100 {
		t.Errorf("region bbox %+v exceeds image bounds", reg.Bounds)
	}
}

func TestStageLadder(t *testing.T) {
	bounds := DefaultParams().StageBounds
	cases := []struct {
		size float64
		want string
	}{
		{3, "T1a"},
		{7, "T1b"},
		{15, "T1c"},
		{25, "T2"},
		{40, "T3"},
		{60, "T4a"},
		{90, "T4b"},
	}
	for _, c := range cases {
		got := estimateStage(c.size, 0.8, 4.0, bounds)
		if got != c.want {
			t.Errorf("estimateStage(%v) = %q, want %q", c.size, got, c.want)
		}
	}
}

func TestStageDescriptors(t *testing.T) {
	bounds := DefaultParams().StageBounds

	got := estimateStage(7, 0.3, 6.0, bounds)
	if got != "T1b (irregular margins) (heterogeneous)" {
		t.Errorf("stage with both descriptors = %q", got)
	}
	if got := estimateStage(7, 0.8, 4.0, bounds); got != "T1b" {
		t.Errorf("stage without descriptors = %q", got)
	}
}

func TestLocateGrid(t *testing.T) {
	cases := []struct {
		x, y int
		want string
	}{
		{10, 10, "Upper Left"},
		{50, 10, "Upper Center"},
		{90, 10, "Upper Right"},
		{10, 50, "Middle Left"},
		{50, 50, "Middle Center"},
		{90, 90, "Lower Right"},
	}
	for _, c := range cases {
		got := locate(detection.Point{X: c.x, Y: c.y}, 100, 100)
		if got != c.want {
			t.Errorf("locate(%d, %d) = %q, want %q", c.x, c.y, got, c.want)
		}
	}
}

func TestClassifyTexture(t *testing.T) {
	cases := []struct {
		std  float64
		want string
	}{
		{5, "smooth"},
		{20, "moderate"},
		{50, "rough"},
	}
	for _, c := range cases {
		if got := classifyTexture(c.std); got != c.want {
			t.Errorf("classifyTexture(%v) = %q, want %q", c.std, got, c.want)
		}
	}
}

func TestTextureUniformRegion(t *testing.T) {
	feat := analyzeTexture(uniformGray(32, 32, 100))
	if feat.StdDev != 0 || feat.Entropy != 0 || feat.Contrast != 0 {
		t.Errorf("uniform region texture = %+v, want zero statistics", feat)
	}
	if feat.TextureType != "smooth" {
		t.Errorf("uniform region texture type = %q, want smooth", feat.TextureType)
	}
	if feat.Homogeneity != 1 {
		t.Errorf("uniform region homogeneity = %v, want 1", feat.Homogeneity)
	}
}

func TestConfidenceBoost(t *testing.T) {
	cases := []struct {
		entropy, contrast float64
		want              float64
	}{
		{6.0, 600, 0.15},
		{6.0, 100, 0.10},
		{4.0, 100, 0.05},
		{2.0, 100, 0.0},
		{2.0, 600, 0.05},
	}
	for _, c := range cases {
		got := confidenceBoost(TextureFeatures{Entropy: c.entropy, Contrast: c.contrast})
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("confidenceBoost(entropy=%v, contrast=%v) = %v, want %v", c.entropy, c.contrast, got, c.want)
		}
	}
}

func TestIndicatorsRange(t *testing.T) {
	img := diskGray(64, 64, 32, 32, 20, 220, 40)
	feat := analyzeTexture(img)
	ind := deriveIndicators(feat, img)

	if ind.HeterogeneityScore < 0 || ind.HeterogeneityScore > 1 {
		t.Errorf("heterogeneity score %v out of [0, 1]", ind.HeterogeneityScore)
	}
	if ind.StructuralComplexity == "" || ind.NuclearPleomorphism == "" || ind.MitoticActivity == "" {
		t.Error("indicator labels must be non-empty")
	}
	if len(ind.SuggestedTests) == 0 {
		t.Error("suggested tests must never be empty")
	}
}
