// Package annotate renders fused detection candidates onto a copy of the
// source image: per-source colored boxes, confidence labels, contours,
// center markers, a color key and a summary banner.
//
// Rendering is best-effort presentation. Nothing here may fail the analysis;
// callers treat an error as "no annotation" and carry on.
package annotate

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/medview/lesionscan/internal/detection"
)

const (
	boxThickness = 2
	crossArm     = 4
	bannerHeight = 16
	legendSwatch = 10
)

// sourceHues assigns each detection method a fixed hue so a reader can tell
// at a glance which method proposed a box. Values are HSV hue degrees.
var sourceHues = map[detection.Source]float64{
	detection.SourceAdaptive:       0,   // red
	detection.SourceEdgeDensity:    30,  // orange
	detection.SourceBlob:           120, // green
	detection.SourceColorPattern:   180, // cyan
	detection.SourceTextureAnomaly: 270, // violet
	detection.SourceWatershed:      210, // blue
	detection.SourceExternal:       300, // magenta
}

// sourceColor returns the draw color for a method. Unknown sources render
// white rather than being skipped.
func sourceColor(src detection.Source) color.NRGBA {
	hue, ok := sourceHues[src]
	if !ok {
		return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}
	r, g, b := colorful.Hsv(hue, 0.85, 0.95).RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// Render draws the candidates over a copy of img and returns the annotated
// frame. The input image is never modified.
func Render(img image.Image, cands []detection.Candidate) *image.NRGBA {
	canvas := imaging.Clone(img)

	for i, c := range cands {
		col := sourceColor(c.Source)

		drawRect(canvas, c.Bounds, col, boxThickness)
		for _, p := range c.Contour {
			setPixel(canvas, p.X, p.Y, col)
		}
		drawCross(canvas, c.Bounds.Center(), col)

		label := fmt.Sprintf("%d %.2f", i+1, c.Confidence)
		drawText(canvas, c.Bounds.X+2, c.Bounds.Y-3, label, col)
	}

	drawBanner(canvas, cands)
	drawLegend(canvas, cands)
	return canvas
}

// EncodePNG compresses the annotated frame.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode annotation: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURI wraps encoded PNG bytes as an embeddable data URI.
func DataURI(pngBytes []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
}

// SaveAlongside persists the encoded annotation next to the source image as
// <name>_annotated.png and returns the written path.
func SaveAlongside(srcPath string, pngBytes []byte) (string, error) {
	ext := filepath.Ext(srcPath)
	outPath := strings.TrimSuffix(srcPath, ext) + "_annotated.png"
	if err := os.WriteFile(outPath, pngBytes, 0o644); err != nil {
		return "", fmt.Errorf("failed to save annotation: %w", err)
	}
	return outPath, nil
}

// drawBanner paints the summary strip along the top edge.
func drawBanner(canvas *image.NRGBA, cands []detection.Candidate) {
	b := canvas.Bounds()
	strip := image.Rect(0, 0, b.Dx(), minInt(bannerHeight, b.Dy()))
	fillRect(canvas, strip, color.NRGBA{A: 200})

	mean := 0.0
	for _, c := range cands {
		mean += c.Confidence
	}
	if len(cands) > 0 {
		mean /= float64(len(cands))
	}

	text := fmt.Sprintf("Regions: %d  Mean confidence: %.2f", len(cands), mean)
	drawText(canvas, 4, 12, text, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
}

// drawLegend stacks one swatch+name row per distinct source, under the
// banner.
func drawLegend(canvas *image.NRGBA, cands []detection.Candidate) {
	seen := map[detection.Source]bool{}
	y := bannerHeight + 4
	for _, c := range cands {
		if seen[c.Source] {
			continue
		}
		seen[c.Source] = true

		col := sourceColor(c.Source)
		fillRect(canvas, image.Rect(4, y, 4+legendSwatch, y+legendSwatch), col)
		drawText(canvas, 4+legendSwatch+4, y+legendSwatch-1, string(c.Source), col)
		y += legendSwatch + 4
	}
}

// drawRect draws an axis-aligned rectangle outline of the given thickness.
func drawRect(canvas *image.NRGBA, r detection.Bounds, col color.NRGBA, thickness int) {
	x2 := r.X + r.Width - 1
	y2 := r.Y + r.Height - 1
	for t := 0; t < thickness; t++ {
		for x := r.X - t; x <= x2+t; x++ {
			setPixel(canvas, x, r.Y-t, col)
			setPixel(canvas, x, y2+t, col)
		}
		for y := r.Y - t; y <= y2+t; y++ {
			setPixel(canvas, r.X-t, y, col)
			setPixel(canvas, x2+t, y, col)
		}
	}
}

func drawCross(canvas *image.NRGBA, p detection.Point, col color.NRGBA) {
	for d := -crossArm; d <= crossArm; d++ {
		setPixel(canvas, p.X+d, p.Y, col)
		setPixel(canvas, p.X, p.Y+d, col)
	}
}

func fillRect(canvas *image.NRGBA, r image.Rectangle, col color.NRGBA) {
	r = r.Intersect(canvas.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			canvas.SetNRGBA(x, y, col)
		}
	}
}

func setPixel(canvas *image.NRGBA, x, y int, col color.NRGBA) {
	if (image.Point{X: x, Y: y}).In(canvas.Bounds()) {
		canvas.SetNRGBA(x, y, col)
	}
}

// drawText renders a short label with the fixed 7x13 face. (x, y) is the
// text baseline; labels that would start above the frame are nudged inside.
func drawText(canvas *image.NRGBA, x, y int, text string, col color.NRGBA) {
	if y < basicfont.Face7x13.Ascent {
		y = basicfont.Face7x13.Ascent
	}
	d := font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
