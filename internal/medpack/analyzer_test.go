package medpack

import (
	"image"
	"image/color"
	"testing"
)

func uniformRGBA(width, height int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestAnalyzeVisualOnly(t *testing.T) {
	// Empty path skips OCR regardless of the build; the result must still be
	// fully formed.
	img := uniformRGBA(64, 64, color.RGBA{R: 200, G: 40, B: 40, A: 255})
	result := Analyze("", img)

	if result.OCRAvailable {
		t.Error("OCR reported available without a file path")
	}
	if result.ExtractedText != "" {
		t.Errorf("unexpected text %q", result.ExtractedText)
	}
	if result.Info.PossibleNames == nil {
		t.Error("possible names must be an empty list, not nil")
	}
	if len(result.Visual.DominantColors) == 0 {
		t.Fatal("no dominant colors on a saturated image")
	}
	if result.Visual.DominantColors[0].Color != "red" {
		t.Errorf("dominant color = %q, want red", result.Visual.DominantColors[0].Color)
	}
}

func TestExtractInfo(t *testing.T) {
	text := "Amoxicillin 500mg Tablets\nBatch No: AB123\nExp: 05/2027\nWarning: keep away from children"
	info := extractInfo(text)

	if info.Dosage != "500mg" {
		t.Errorf("dosage = %q, want 500mg", info.Dosage)
	}
	if info.Form != "tablet" {
		t.Errorf("form = %q, want tablet", info.Form)
	}
	if info.BatchNumber != "AB123" {
		t.Errorf("batch = %q, want AB123", info.BatchNumber)
	}
	if info.Expiry != "05/2027" {
		t.Errorf("expiry = %q, want 05/2027", info.Expiry)
	}
	if !info.WarningsFound {
		t.Error("warnings not flagged")
	}

	foundName := false
	for _, n := range info.PossibleNames {
		if n == "Amoxicillin" {
			foundName = true
		}
	}
	if !foundName {
		t.Errorf("medicine name not extracted: %v", info.PossibleNames)
	}
}

func TestExtractInfoDecimalDosage(t *testing.T) {
	info := extractInfo("Take syrup 2.5ml twice daily")
	if info.Dosage != "2.5ml" {
		t.Errorf("dosage = %q, want 2.5ml", info.Dosage)
	}
	if info.Form != "syrup" {
		t.Errorf("form = %q, want syrup", info.Form)
	}
}

func TestExtractInfoEmptyText(t *testing.T) {
	info := extractInfo("")
	if info.Dosage != "" || info.Form != "" || info.WarningsFound {
		t.Errorf("empty text produced fields: %+v", info)
	}
	if len(info.PossibleNames) != 0 {
		t.Errorf("empty text produced names: %v", info.PossibleNames)
	}
}

func TestPossibleNamesExcludesCommonWords(t *testing.T) {
	names := possibleNames("Store The Medicine Keep Paracetamol Safe")
	for _, n := range names {
		if n == "Store" || n == "The" || n == "Keep" {
			t.Errorf("excluded word leaked into names: %v", names)
		}
	}
	found := false
	for _, n := range names {
		if n == "Paracetamol" {
			found = true
		}
	}
	if !found {
		t.Errorf("Paracetamol not in names: %v", names)
	}
}

func TestColorBuckets(t *testing.T) {
	cases := []struct {
		c    color.RGBA
		want string
	}{
		{color.RGBA{R: 230, G: 20, B: 20, A: 255}, "red"},
		{color.RGBA{R: 20, G: 200, B: 30, A: 255}, "green"},
		{color.RGBA{R: 30, G: 60, B: 220, A: 255}, "blue"},
		{color.RGBA{R: 250, G: 250, B: 250, A: 255}, "white"},
		{color.RGBA{R: 10, G: 10, B: 10, A: 255}, "black"},
	}
	for _, tc := range cases {
		img := uniformRGBA(16, 16, tc.c)
		shares := dominantColors(img)
		if len(shares) == 0 {
			t.Fatalf("no dominant color for %v", tc.c)
		}
		if shares[0].Color != tc.want {
			t.Errorf("dominant color of %v = %q, want %q", tc.c, shares[0].Color, tc.want)
		}
	}
}

func TestVisualFeaturesUniform(t *testing.T) {
	img := uniformRGBA(64, 64, color.RGBA{R: 128, G: 128, B: 128, A: 255})
	v := analyzeVisual(img)

	if v.Contrast != 0 {
		t.Errorf("uniform image contrast = %v, want 0", v.Contrast)
	}
	if v.EdgesDetected {
		t.Error("edges detected on a uniform image")
	}
	if v.RoundObjects != 0 {
		t.Errorf("round objects on a uniform image: %d", v.RoundObjects)
	}
}
