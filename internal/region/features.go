package region

import (
	"image"
	"math"
)

// TextureFeatures bundles the intensity statistics of one region of interest.
// All values are computed over the region's grayscale sub-image.
type TextureFeatures struct {
	// StdDev is the standard deviation of pixel intensity.
	StdDev float64 `json:"std_dev"`

	// MeanGradient is the mean Sobel gradient magnitude.
	MeanGradient float64 `json:"mean_gradient"`

	// Entropy is the Shannon entropy (base 2) of the 256-bin intensity
	// histogram, in [0, 8].
	Entropy float64 `json:"entropy"`

	// Contrast is the intensity variance.
	Contrast float64 `json:"contrast"`

	// Homogeneity is 1/(1+Contrast/1000), in (0, 1].
	Homogeneity float64 `json:"homogeneity"`

	// TextureType is the qualitative class: smooth, moderate or rough.
	TextureType string `json:"texture_type"`
}

// analyzeTexture computes the full texture bundle for one grayscale region.
func analyzeTexture(roi *image.Gray) TextureFeatures {
	variance := intensityVariance(roi)
	entropy := histogramEntropy(histogram256(roi))

	std := math.Sqrt(variance)
	return TextureFeatures{
		StdDev:       std,
		MeanGradient: meanSobelMagnitude(roi),
		Entropy:      entropy,
		Contrast:     variance,
		Homogeneity:  1 / (1 + variance/1000),
		TextureType:  classifyTexture(std),
	}
}

// classifyTexture buckets a standard deviation into the qualitative class.
func classifyTexture(std float64) string {
	switch {
	case std < 15:
		return "smooth"
	case std < 35:
		return "moderate"
	default:
		return "rough"
	}
}

func intensityVariance(roi *image.Gray) float64 {
	b := roi.Bounds()
	w, h := b.Dx(), b.Dy()
	n := w * h
	if n == 0 {
		return 0
	}

	var sum, sumSq float64
	for y := 0; y < h; y++ {
		row := y * roi.Stride
		for x := 0; x < w; x++ {
			v := float64(roi.Pix[row+x])
			sum += v
			sumSq += v * v
		}
	}
	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return variance
}

// meanSobelMagnitude averages the 3×3 Sobel gradient magnitude over the
// region interior. Regions thinner than 3 px have no interior and score 0.
func meanSobelMagnitude(roi *image.Gray) float64 {
	b := roi.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return 0
	}

	at := func(x, y int) int { return int(roi.Pix[y*roi.Stride+x]) }

	var sum float64
	n := 0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := -at(x-1, y-1) + at(x+1, y-1) -
				2*at(x-1, y) + 2*at(x+1, y) -
				at(x-1, y+1) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)
			sum += math.Sqrt(float64(gx*gx + gy*gy))
			n++
		}
	}
	return sum / float64(n)
}

func histogram256(roi *image.Gray) [256]int {
	var hist [256]int
	b := roi.Bounds()
	w, h := b.Dx(), b.Dy()
	for y := 0; y < h; y++ {
		row := y * roi.Stride
		for x := 0; x < w; x++ {
			hist[roi.Pix[row+x]]++
		}
	}
	return hist
}

// histogramEntropy computes Shannon entropy in bits over occupied bins.
func histogramEntropy(hist [256]int) float64 {
	total := 0
	for _, c := range hist {
		total += c
	}
	if total == 0 {
		return 0
	}

	entropy := 0.0
	for _, c := range hist {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// intensityRatio returns the fraction of pixels matching the predicate.
func intensityRatio(roi *image.Gray, match func(uint8) bool) float64 {
	b := roi.Bounds()
	w, h := b.Dx(), b.Dy()
	n := w * h
	if n == 0 {
		return 0
	}

	count := 0
	for y := 0; y < h; y++ {
		row := y * roi.Stride
		for x := 0; x < w; x++ {
			if match(roi.Pix[row+x]) {
				count++
			}
		}
	}
	return float64(count) / float64(n)
}
