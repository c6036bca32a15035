// Package region turns a surviving detection candidate into a structured
// clinical-style finding: texture statistics, a classification label, a size
// and stage estimate, auxiliary indicators and comorbidity flags.
//
// Every function here is a pure, deterministic mapping from (candidate,
// image, kind) to a Region. A panic during analysis degrades that one region
// to a zero-confidence "Unknown" placeholder; it never aborts the batch.
// The labels are heuristic screening aids, not diagnoses.
package region

import (
	"image"
	"log"
	"math"

	"github.com/disintegration/imaging"

	"github.com/medview/lesionscan/internal/detection"
	medimaging "github.com/medview/lesionscan/internal/imaging"
)

// Params holds the calibration constants of the analyzer.
type Params struct {
	// SizeUnitPerPixel converts sqrt(area-in-pixels) to size units. The
	// default 0.1 is an uncalibrated proxy; real deployments should set it
	// from the acquisition metadata.
	SizeUnitPerPixel float64

	// StageBounds are the six ascending size-unit boundaries separating the
	// seven stage buckets.
	StageBounds [6]float64
}

// DefaultParams returns the standard analyzer calibration.
func DefaultParams() Params {
	return Params{
		SizeUnitPerPixel: 0.1,
		StageBounds:      [6]float64{5, 10, 20, 30, 50, 70},
	}
}

var stageLabels = [7]string{"T1a", "T1b", "T1c", "T2", "T3", "T4a", "T4b"}

// Region is the analyzed finding for one fused candidate.
type Region struct {
	Bounds      detection.Bounds   `json:"bbox"`
	Center      detection.Point    `json:"center"`
	Area        int                `json:"area"`
	Confidence  float64            `json:"confidence"`
	StageConf   float64            `json:"stage_confidence"`
	TumorType   string             `json:"tumor_type"`
	TumorStage  string             `json:"tumor_stage"`
	Location    string             `json:"location"`
	SizeMM      float64            `json:"size_mm"`
	Circularity float64            `json:"circularity"`
	AspectRatio float64            `json:"aspect_ratio"`
	Texture     TextureFeatures    `json:"texture_features"`
	Indicators  Indicators         `json:"genetic_indicators"`
	Comorbid    []string           `json:"comorbidities"`
	Sources     []detection.Source `json:"sources"`
}

// Analyze produces the Region for one candidate.
//
// The candidate's box is clamped to the image; a clamp that leaves zero or
// negative extent yields a degenerate Region (confidence 0, "Unknown"
// labels) without touching pixels. Any panic inside the analysis likewise
// degrades to the placeholder, so one pathological region cannot abort the
// rest of the batch.
func Analyze(cand detection.Candidate, img image.Image, kind medimaging.ImageKind, p Params) (reg Region) {
	b := img.Bounds()
	clamped := cand.Bounds.Clamp(b.Dx(), b.Dy())

	defer func() {
		if r := recover(); r != nil {
			log.Printf("region analysis panicked, degrading region at %+v: %v", clamped, r)
			reg = degenerateRegion(cand, clamped)
		}
	}()

	if clamped.Width <= 0 || clamped.Height <= 0 {
		return degenerateRegion(cand, clamped)
	}

	roi := medimaging.ToGray(imaging.Crop(img, image.Rect(
		b.Min.X+clamped.X,
		b.Min.Y+clamped.Y,
		b.Min.X+clamped.X+clamped.Width,
		b.Min.Y+clamped.Y+clamped.Height,
	)))

	texture := analyzeTexture(roi)
	circularity := roiCircularity(roi)
	area := clamped.Area()
	sizeMM := math.Sqrt(float64(area)) * p.SizeUnitPerPixel

	confidence := math.Min(cand.Confidence+confidenceBoost(texture), 1.0)

	return Region{
		Bounds:      clamped,
		Center:      clamped.Center(),
		Area:        area,
		Confidence:  confidence,
		StageConf:   0.7 + 0.3*circularity,
		TumorType:   classify(kind, circularity, texture),
		TumorStage:  estimateStage(sizeMM, circularity, texture.Entropy, p.StageBounds),
		Location:    locate(clamped.Center(), b.Dx(), b.Dy()),
		SizeMM:      sizeMM,
		Circularity: circularity,
		AspectRatio: float64(clamped.Width) / float64(clamped.Height),
		Texture:     texture,
		Indicators:  deriveIndicators(texture, roi),
		Comorbid:    detectComorbidities(roi, texture, sizeMM),
		Sources:     cand.Sources,
	}
}

// degenerateRegion is the placeholder for regions whose geometry or analysis
// failed. Labels stay non-empty so downstream consumers never branch on "".
func degenerateRegion(cand detection.Candidate, clamped detection.Bounds) Region {
	return Region{
		Bounds:     clamped,
		Center:     clamped.Center(),
		Confidence: 0,
		StageConf:  0.7,
		TumorType:  "Unknown",
		TumorStage: "Unknown",
		Location:   "Unknown",
		Comorbid:   []string{},
		Sources:    cand.Sources,
	}
}

// roiCircularity measures how circular the region's dominant internal shape
// is: Otsu-binarize the sub-image with dark pixels as foreground and score
// the largest connected component. No component means 0.
func roiCircularity(roi *image.Gray) float64 {
	b := roi.Bounds()
	w, h := b.Dx(), b.Dy()

	thresh := detection.OtsuThreshold(roi)
	mask := detection.NewMask(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if roi.Pix[y*roi.Stride+x] < thresh {
				mask[y][x] = true
			}
		}
	}

	comps, _ := detection.FindComponents(mask, 1, false)
	if len(comps) == 0 {
		return 0
	}
	return comps[0].Circularity()
}

// classify maps the region's shape and texture onto a label keyed by imaging
// modality. Identical inputs always yield the same label.
func classify(kind medimaging.ImageKind, circularity float64, t TextureFeatures) string {
	switch {
	case kind == medimaging.KindXRay:
		switch {
		case circularity > 0.75 && t.Homogeneity > 0.5:
			return "Round Opacity (likely benign)"
		case t.Entropy > 5.5 && circularity < 0.6:
			return "Spiculated Mass (suspicious)"
		case circularity < 0.5:
			return "Irregular Opacity (needs evaluation)"
		default:
			return "Pulmonary Nodule"
		}

	case kind == medimaging.KindCT || kind == medimaging.KindMRI || kind == medimaging.KindUltrasound:
		switch {
		case circularity > 0.85 && t.Homogeneity > 0.5:
			return "Well-circumscribed Lesion (likely benign)"
		case t.Entropy > 5.5 && circularity < 0.6:
			return "Infiltrative Mass (suspicious)"
		case circularity < 0.5:
			return "Irregular Lesion (needs evaluation)"
		default:
			return "Indeterminate Lesion"
		}

	case kind == medimaging.KindHistology || kind == medimaging.KindGrossPhoto:
		switch {
		case t.TextureType == "rough" && t.Entropy > 5.0:
			return "High-grade Neoplasm (suspicious)"
		case t.TextureType == "moderate":
			return "Intermediate-grade Neoplasm"
		case t.TextureType == "smooth":
			return "Low-grade Neoplasm"
		default:
			return "Neoplastic Tissue"
		}

	default:
		if circularity > 0.7 {
			return "Regular Mass"
		}
		return "Irregular Abnormality"
	}
}

// estimateStage walks the seven-bucket size ladder and appends shape and
// texture descriptors.
func estimateStage(sizeMM, circularity, entropy float64, bounds [6]float64) string {
	stage := stageLabels[len(bounds)]
	for i, limit := range bounds {
		if sizeMM < limit {
			stage = stageLabels[i]
			break
		}
	}

	if circularity < 0.5 {
		stage += " (irregular margins)"
	}
	if entropy > 5.5 {
		stage += " (heterogeneous)"
	}
	return stage
}

// locate names the 3×3 grid cell containing the region center.
func locate(center detection.Point, imgW, imgH int) string {
	third := func(v, span int) int {
		if span <= 0 {
			return 1
		}
		t := v * 3 / span
		if t > 2 {
			t = 2
		}
		if t < 0 {
			t = 0
		}
		return t
	}

	rows := [3]string{"Upper", "Middle", "Lower"}
	cols := [3]string{"Left", "Center", "Right"}
	return rows[third(center.Y, imgH)] + " " + cols[third(center.X, imgW)]
}

// confidenceBoost rewards regions with real internal structure. High entropy
// and contrast are weak evidence that the detection is not a flat artifact.
func confidenceBoost(t TextureFeatures) float64 {
	boost := 0.0
	switch {
	case t.Entropy > 5.0:
		boost += 0.1
	case t.Entropy > 3.0:
		boost += 0.05
	}
	if t.Contrast > 500 {
		boost += 0.05
	}
	return boost
}
