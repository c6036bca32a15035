package detection

import (
	"image"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/medview/lesionscan/internal/imaging"
)

const (
	colorMinArea     = 300
	colorMaxAreaFrac = 0.4
	colorAreaNorm    = 5000.0
	colorScale       = 0.65
)

// DetectColorPattern finds stain- or intensity-anomalous regions in color
// images. Monochrome inputs yield no candidates.
//
// For histology slides the mask selects hematoxylin/eosin-like hues (purple
// through pink) in HSV space; for every other kind it unions very-bright and
// very-dark luminance regions, which on photographic inputs mark reflective
// or necrotic-looking patches. The mask is morphologically cleaned and
// contours are filtered by area (300 px² .. 40% of the image); confidence is
// min(area/5000, 1) × 0.65.
func DetectColorPattern(img image.Image, kind imaging.ImageKind) ([]Candidate, error) {
	if !imaging.IsColor(img) {
		return nil, nil
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	maxArea := int(colorMaxAreaFrac * float64(w*h))

	mask := NewMask(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c, ok := colorful.MakeColor(img.At(b.Min.X+x, b.Min.Y+y))
			if !ok {
				continue
			}
			if kind == imaging.KindHistology {
				mask[y][x] = isStainHue(c)
			} else {
				_, _, v := c.Hsv()
				mask[y][x] = v > 0.85 || v < 0.15
			}
		}
	}

	mask = Open(Close(mask, 2), 1)

	comps, _ := FindComponents(mask, colorMinArea, false)
	var out []Candidate
	for i := range comps {
		c := &comps[i]
		if c.Area > maxArea {
			continue
		}
		cand := NewCandidate(SourceColorPattern, c.Bounds,
			math.Min(float64(c.Area)/colorAreaNorm, 1)*colorScale)
		cand.Contour = c.Contour
		out = append(out, cand)
	}
	return out, nil
}

// isStainHue matches the purple-to-pink hue band characteristic of H&E
// stained tissue, with enough saturation and value to exclude background.
func isStainHue(c colorful.Color) bool {
	hue, sat, val := c.Hsv()
	if sat < 0.15 || val < 0.2 {
		return false
	}
	return hue >= 250 && hue <= 345
}
