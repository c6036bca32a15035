package detection

import (
	"image"
	"math"
)

// Texture-anomaly scan parameters: 32 px windows stepped by 16 px, so every
// pixel is covered by up to four windows.
const (
	textureWindow    = 32
	textureStride    = 16
	textureThreshold = 120
	textureMinArea   = 400
	textureNorm      = 200.0
	textureScale     = 0.6
	textureMinConf   = 0.2
)

// DetectTextureAnomaly finds regions whose local texture differs sharply from
// their surroundings.
//
// A sliding window computes the local variance of the Laplacian response (a
// focus/texture measure); the per-window map is normalized to 0–255 and
// thresholded at a fixed level, morphologically closed, and contour-filtered
// (area ≥ 400 px²). Each region's confidence is min(meanTexture/200, 1) × 0.6,
// accepted at ≥ 0.2.
func DetectTextureAnomaly(gray *image.Gray) ([]Candidate, error) {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < textureWindow || h < textureWindow {
		return nil, nil
	}

	lap := laplacianAbs(gray)

	gridW := (w-textureWindow)/textureStride + 1
	gridH := (h-textureWindow)/textureStride + 1

	varMap := make([][]float64, gridH)
	maxVar := 0.0
	for gy := 0; gy < gridH; gy++ {
		varMap[gy] = make([]float64, gridW)
		for gx := 0; gx < gridW; gx++ {
			v := windowVariance(lap, gx*textureStride, gy*textureStride, w)
			varMap[gy][gx] = v
			if v > maxVar {
				maxVar = v
			}
		}
	}
	if maxVar == 0 {
		return nil, nil
	}

	// Normalize to 0..255 and threshold; each accepted window stamps its
	// full footprint into the pixel mask.
	norm := make([][]float64, gridH)
	mask := NewMask(w, h)
	for gy := 0; gy < gridH; gy++ {
		norm[gy] = make([]float64, gridW)
		for gx := 0; gx < gridW; gx++ {
			n := varMap[gy][gx] / maxVar * 255
			norm[gy][gx] = n
			if n > textureThreshold {
				stampWindow(mask, gx*textureStride, gy*textureStride, w, h)
			}
		}
	}

	mask = Close(mask, 2)

	comps, _ := FindComponents(mask, textureMinArea, false)
	var out []Candidate
	for i := range comps {
		c := &comps[i]

		mean := meanNormTexture(norm, c.Bounds)
		conf := math.Min(mean/textureNorm, 1) * textureScale
		if conf < textureMinConf {
			continue
		}

		cand := NewCandidate(SourceTextureAnomaly, c.Bounds, conf)
		cand.Contour = c.Contour
		out = append(out, cand)
	}
	return out, nil
}

// laplacianAbs computes |∇²I| with the standard 4-neighbor kernel.
func laplacianAbs(gray *image.Gray) []float64 {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]float64, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			c := int(gray.Pix[y*gray.Stride+x])
			sum := 4*c -
				int(gray.Pix[y*gray.Stride+x-1]) - int(gray.Pix[y*gray.Stride+x+1]) -
				int(gray.Pix[(y-1)*gray.Stride+x]) - int(gray.Pix[(y+1)*gray.Stride+x])
			out[y*w+x] = math.Abs(float64(sum))
		}
	}
	return out
}

// windowVariance computes the variance of the Laplacian response inside one
// window anchored at (x0, y0).
func windowVariance(lap []float64, x0, y0, stride int) float64 {
	var sum, sumSq float64
	for dy := 0; dy < textureWindow; dy++ {
		row := (y0 + dy) * stride
		for dx := 0; dx < textureWindow; dx++ {
			v := lap[row+x0+dx]
			sum += v
			sumSq += v * v
		}
	}
	n := float64(textureWindow * textureWindow)
	mean := sum / n
	return sumSq/n - mean*mean
}

func stampWindow(mask [][]bool, x0, y0, w, h int) {
	x2 := minInt(x0+textureWindow, w)
	y2 := minInt(y0+textureWindow, h)
	for y := y0; y < y2; y++ {
		for x := x0; x < x2; x++ {
			mask[y][x] = true
		}
	}
}

// meanNormTexture averages the normalized texture map over the windows whose
// anchors fall inside the region's bounding box.
func meanNormTexture(norm [][]float64, b Bounds) float64 {
	gy1 := b.Y / textureStride
	gy2 := (b.Y + b.Height) / textureStride
	gx1 := b.X / textureStride
	gx2 := (b.X + b.Width) / textureStride

	var sum float64
	n := 0
	for gy := gy1; gy <= gy2 && gy < len(norm); gy++ {
		for gx := gx1; gx <= gx2 && gx < len(norm[gy]); gx++ {
			sum += norm[gy][gx]
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
