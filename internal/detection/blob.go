package detection

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/effect"

	"github.com/medview/lesionscan/internal/imaging"
)

// Blob detector acceptance parameters, mirroring a conventional parametrized
// blob detector: area window, minimum circularity, convexity and inertia
// ratio, and a minimum radius below which detections are noise.
const (
	blobMinArea      = 100
	blobMaxAreaFrac  = 0.3
	blobMinCircular  = 0.3
	blobMinConvexity = 0.5
	blobMinInertia   = 0.2
	blobMinRadius    = 5.0
	blobSizeNorm     = 100.0
	blobScale        = 0.7
)

// DetectBlobs finds compact mass-like blobs in the grayscale plane.
//
// The plane is Otsu-binarized with dark pixels as foreground and the same
// pass is repeated on the photometric inverse, so both dark-on-light and
// light-on-dark masses are caught. Components must satisfy the area window
// (100 px² .. 30% of the image), circularity ≥ 0.3, convexity ≥ 0.5 and
// inertia ratio ≥ 0.2; blobs with equivalent radius under 5 px are
// discarded. Confidence is min(diameter/100, 1) × 0.7.
func DetectBlobs(gray *image.Gray) ([]Candidate, error) {
	var out []Candidate
	out = append(out, blobPass(gray)...)
	out = append(out, blobPass(imaging.ToGray(effect.Invert(gray)))...)
	return out, nil
}

func blobPass(gray *image.Gray) []Candidate {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}
	maxArea := int(blobMaxAreaFrac * float64(w*h))

	thresh := OtsuThreshold(gray)
	mask := NewMask(w, h)
	any := false
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if gray.Pix[y*gray.Stride+x] < thresh {
				mask[y][x] = true
				any = true
			}
		}
	}
	if !any {
		return nil
	}
	mask = Open(mask, 1)

	comps, pixels := FindComponents(mask, blobMinArea, true)
	var out []Candidate
	for i := range comps {
		c := &comps[i]
		if c.Area > maxArea {
			continue
		}

		circ := c.Circularity()
		if circ < blobMinCircular {
			continue
		}
		if c.Solidity() < blobMinConvexity {
			continue
		}
		if c.InertiaRatio(pixels[i]) < blobMinInertia {
			continue
		}

		radius := math.Sqrt(float64(c.Area) / math.Pi)
		if radius < blobMinRadius {
			continue
		}

		cand := NewCandidate(SourceBlob, c.Bounds, math.Min(2*radius/blobSizeNorm, 1)*blobScale)
		cand.Contour = c.Contour
		cand.Circularity = circ
		out = append(out, cand)
	}
	return out
}
