package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// ImageKind is the declared modality of an input image. The kind selects
// modality-specific preprocessing and classification branches; an unrecognized
// kind falls back to the generic branch and never errors.
type ImageKind string

const (
	KindXRay       ImageKind = "xray"
	KindCT         ImageKind = "ct"
	KindMRI        ImageKind = "mri"
	KindGrossPhoto ImageKind = "tumor"
	KindHistology  ImageKind = "histology"
	KindUltrasound ImageKind = "ultrasound"
	KindOther      ImageKind = "other"
)

// ParseKind maps a caller-supplied kind string to a known ImageKind.
// Unknown strings map to KindOther.
func ParseKind(s string) ImageKind {
	switch ImageKind(s) {
	case KindXRay, KindCT, KindMRI, KindGrossPhoto, KindHistology, KindUltrasound:
		return ImageKind(s)
	default:
		return KindOther
	}
}

// CrossSectional reports whether the kind is a cross-sectional modality
// (CT/MRI). These carry structured noise that an edge-preserving filter
// handles better than an isotropic blur.
func (k ImageKind) CrossSectional() bool {
	return k == KindCT || k == KindMRI
}

// Scan reports whether the kind is a radiological scan as opposed to a
// photographic or microscopy image.
func (k ImageKind) Scan() bool {
	switch k {
	case KindXRay, KindCT, KindMRI, KindUltrasound:
		return true
	}
	return false
}

// ToGray converts any image to an 8-bit grayscale plane using ITU-R BT.601
// luminance weights (via the imaging package).
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	nrgba := imaging.Grayscale(img)
	b := nrgba.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			// Grayscale output has R == G == B; take R directly.
			gray.Pix[y*gray.Stride+x] = nrgba.Pix[y*nrgba.Stride+x*4]
		}
	}
	return gray
}

// IsColor reports whether an image carries meaningful chroma. Grayscale
// sources saved as RGB decode with R == G == B everywhere; those are treated
// as monochrome so color-only detectors can skip them.
func IsColor(img image.Image) bool {
	if _, ok := img.(*image.Gray); ok {
		return false
	}
	if _, ok := img.(*image.Gray16); ok {
		return false
	}

	bounds := img.Bounds()
	// Sample a sparse grid rather than every pixel; chroma is a global property.
	stepX := maxInt(1, bounds.Dx()/32)
	stepY := maxInt(1, bounds.Dy()/32)

	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			r, g, b, _ := img.At(x, y).RGBA()
			r8, g8, b8 := int(r>>8), int(g>>8), int(b>>8)
			if absInt(r8-g8) > 8 || absInt(g8-b8) > 8 || absInt(r8-b8) > 8 {
				return true
			}
		}
	}
	return false
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
