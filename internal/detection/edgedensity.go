package detection

import "math"

const (
	edgeDensityMinArea     = 500
	edgeDensityMaxAreaFrac = 0.4
	edgeDensityFloor       = 0.15
	edgeDensityScale       = 0.75
)

// DetectEdgeDensity finds regions whose interiors are rich in edge pixels.
//
// The binary edge map is dilated to connect nearby fragments, enclosed holes
// are filled so outlined structures become solid, and the resulting contours
// are filtered by area (500 px² .. 40% of the image). Each survivor is scored
// by its "edge density": the fraction of original edge pixels inside its
// bounding box. Regions below 0.15 density are rejected; confidence is
// min(density × 2, 1) × 0.75.
func DetectEdgeDensity(edges [][]bool) ([]Candidate, error) {
	h := len(edges)
	if h == 0 {
		return nil, nil
	}
	w := len(edges[0])
	maxArea := int(edgeDensityMaxAreaFrac * float64(w*h))

	mask := FillHoles(Dilate(edges, 2))

	comps, _ := FindComponents(mask, edgeDensityMinArea, false)
	var out []Candidate
	for i := range comps {
		c := &comps[i]
		if c.Area > maxArea {
			continue
		}

		density := edgeFraction(edges, c.Bounds)
		if density <= edgeDensityFloor {
			continue
		}

		cand := NewCandidate(SourceEdgeDensity, c.Bounds, math.Min(density*2, 1)*edgeDensityScale)
		cand.Contour = c.Contour
		cand.EdgeDensity = density
		out = append(out, cand)
	}
	return out, nil
}

// edgeFraction counts edge pixels inside a box relative to the box area.
func edgeFraction(edges [][]bool, b Bounds) float64 {
	if b.Area() == 0 {
		return 0
	}
	count := 0
	for y := b.Y; y < b.Y+b.Height; y++ {
		for x := b.X; x < b.X+b.Width; x++ {
			if edges[y][x] {
				count++
			}
		}
	}
	return float64(count) / float64(b.Area())
}
