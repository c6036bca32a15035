package detection

import (
	"image"
	"math"
)

// Adaptive-threshold detector parameters. Multi-scale windows catch masses of
// different granularity; the shape blend favors irregular, solid regions
// because ragged margins correlate with malignancy.
var adaptiveWindows = [4]int{11, 21, 31, 41}

const (
	adaptiveOffset      = 2
	adaptiveMinArea     = 200
	adaptiveMaxAreaFrac = 0.5
	adaptiveSizeNorm    = 20000.0
	adaptiveScale       = 0.85
	adaptiveMinConf     = 0.25
)

// DetectAdaptive runs local adaptive binarization at four window sizes over
// the enhanced plane and scores the surviving contours.
//
// Per window: pixels darker than their local mean (minus a fixed offset) are
// foreground; the mask is morphologically closed then opened; external
// contours are filtered by area (min 200 px², max 50% of the image). Each
// contour is scored by a blend of inverse circularity (40%), convex-hull
// solidity (30%) and a fixed shape bias (30%), combined with a normalized
// size score. Final confidence is the blend × 0.85, accepted at ≥ 0.25.
func DetectAdaptive(enhanced *image.Gray) ([]Candidate, error) {
	b := enhanced.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, nil
	}
	total := w * h
	maxArea := int(adaptiveMaxAreaFrac * float64(total))

	integral := buildIntegral(enhanced)

	var out []Candidate
	for _, win := range adaptiveWindows {
		mask := thresholdLocalMean(enhanced, integral, win, adaptiveOffset)
		mask = Open(Close(mask, 2), 1)

		comps, _ := FindComponents(mask, adaptiveMinArea, false)
		for i := range comps {
			c := &comps[i]
			if c.Area > maxArea {
				continue
			}

			circ := c.Circularity()
			shape := 0.4*(1-circ) + 0.3*c.Solidity() + 0.3
			size := math.Min(float64(c.Area)/adaptiveSizeNorm, 1.0)
			conf := (0.7*shape + 0.3*size) * adaptiveScale
			if conf < adaptiveMinConf {
				continue
			}

			cand := NewCandidate(SourceAdaptive, c.Bounds, conf)
			cand.Contour = c.Contour
			cand.Circularity = circ
			out = append(out, cand)
		}
	}
	return out, nil
}

// buildIntegral computes a summed-area table with one extra row/column of
// zeros, so window sums are four lookups.
func buildIntegral(gray *image.Gray) [][]int {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	integral := make([][]int, h+1)
	integral[0] = make([]int, w+1)
	for y := 1; y <= h; y++ {
		integral[y] = make([]int, w+1)
		rowSum := 0
		for x := 1; x <= w; x++ {
			rowSum += int(gray.Pix[(y-1)*gray.Stride+x-1])
			integral[y][x] = integral[y-1][x] + rowSum
		}
	}
	return integral
}

// thresholdLocalMean marks pixels darker than their window mean minus offset.
func thresholdLocalMean(gray *image.Gray, integral [][]int, window, offset int) [][]bool {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	half := window / 2

	mask := NewMask(w, h)
	for y := 0; y < h; y++ {
		y1 := maxInt(y-half, 0)
		y2 := minInt(y+half+1, h)
		for x := 0; x < w; x++ {
			x1 := maxInt(x-half, 0)
			x2 := minInt(x+half+1, w)

			sum := integral[y2][x2] - integral[y1][x2] - integral[y2][x1] + integral[y1][x1]
			n := (x2 - x1) * (y2 - y1)
			mean := sum / n

			if int(gray.Pix[y*gray.Stride+x]) < mean-offset {
				mask[y][x] = true
			}
		}
	}
	return mask
}
