package annotate

import (
	"image"
	"strings"
	"testing"

	"github.com/medview/lesionscan/internal/detection"
)

func testImage(width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 180
	}
	return img
}

func TestRenderPreservesDimensions(t *testing.T) {
	cands := []detection.Candidate{
		detection.NewCandidate(detection.SourceBlob, detection.Bounds{X: 10, Y: 20, Width: 30, Height: 30}, 0.8),
	}

	frame := Render(testImage(100, 80), cands)
	if frame.Bounds().Dx() != 100 || frame.Bounds().Dy() != 80 {
		t.Errorf("annotated frame dimensions %v, want 100x80", frame.Bounds())
	}
}

func TestRenderDoesNotModifySource(t *testing.T) {
	src := testImage(64, 64)
	before := make([]uint8, len(src.Pix))
	copy(before, src.Pix)

	Render(src, []detection.Candidate{
		detection.NewCandidate(detection.SourceAdaptive, detection.Bounds{X: 5, Y: 5, Width: 20, Height: 20}, 0.5),
	})

	for i := range src.Pix {
		if src.Pix[i] != before[i] {
			t.Fatal("Render modified the source image")
		}
	}
}

func TestRenderEmptyCandidates(t *testing.T) {
	// Banner and no boxes; must not panic.
	frame := Render(testImage(40, 40), nil)
	if frame == nil {
		t.Fatal("Render returned nil")
	}
}

func TestRenderOutOfBoundsBox(t *testing.T) {
	// Boxes partially outside the frame are clipped pixel by pixel.
	cands := []detection.Candidate{
		detection.NewCandidate(detection.SourceWatershed, detection.Bounds{X: -10, Y: -10, Width: 200, Height: 200}, 0.6),
	}
	frame := Render(testImage(50, 50), cands)
	if frame.Bounds().Dx() != 50 {
		t.Errorf("frame resized unexpectedly: %v", frame.Bounds())
	}
}

func TestEncodeAndDataURI(t *testing.T) {
	frame := Render(testImage(32, 32), nil)
	encoded, err := EncodePNG(frame)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	if len(encoded) == 0 {
		t.Fatal("EncodePNG produced no bytes")
	}

	uri := DataURI(encoded)
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Errorf("data URI has wrong prefix: %.40s", uri)
	}
}

func TestSourceColorsDistinct(t *testing.T) {
	sources := []detection.Source{
		detection.SourceAdaptive, detection.SourceEdgeDensity, detection.SourceBlob,
		detection.SourceColorPattern, detection.SourceTextureAnomaly,
		detection.SourceWatershed, detection.SourceExternal,
	}
	seen := map[[3]uint8]detection.Source{}
	for _, src := range sources {
		c := sourceColor(src)
		key := [3]uint8{c.R, c.G, c.B}
		if prev, dup := seen[key]; dup {
			t.Errorf("sources %s and %s share a color", prev, src)
		}
		seen[key] = src
	}
}
