package region

import (
	"image"
	"math"
)

// Indicators bundles the texture-derived proxies for tumor biology. These are
// image statistics dressed in pathology vocabulary; the follow-up test list
// exists precisely because none of them is confirmatory.
type Indicators struct {
	HighHeterogeneity    bool     `json:"high_heterogeneity"`
	HeterogeneityScore   float64  `json:"heterogeneity_score"`
	StructuralComplexity string   `json:"structural_complexity"`
	CellularDensity      float64  `json:"cellular_density"`
	NuclearPleomorphism  string   `json:"nuclear_pleomorphism"`
	MitoticActivity      string   `json:"mitotic_activity"`
	SuggestedTests       []string `json:"suggested_tests"`
}

// deriveIndicators computes the auxiliary bundle from the texture features
// and raw intensity distribution of the region.
func deriveIndicators(t TextureFeatures, roi *image.Gray) Indicators {
	brightRatio := intensityRatio(roi, func(v uint8) bool { return v > 200 })

	return Indicators{
		HighHeterogeneity:    t.Entropy > 5.5,
		HeterogeneityScore:   math.Min(t.Entropy/8.0, 1.0),
		StructuralComplexity: t.TextureType,
		CellularDensity:      t.StdDev / 50.0,
		NuclearPleomorphism:  pleomorphismGrade(t.Entropy),
		MitoticActivity:      activityGrade(brightRatio),
		SuggestedTests:       suggestTests(t),
	}
}

func pleomorphismGrade(entropy float64) string {
	switch {
	case entropy > 6.0:
		return "marked"
	case entropy > 4.0:
		return "moderate"
	default:
		return "mild"
	}
}

// activityGrade reads the bright-pixel fraction as a crude proliferation
// proxy.
func activityGrade(brightRatio float64) string {
	switch {
	case brightRatio > 0.15:
		return "elevated"
	case brightRatio > 0.05:
		return "moderate"
	default:
		return "low"
	}
}

// suggestTests picks follow-up tests justified by the texture evidence. The
// list is never nil so it serializes as [] rather than null.
func suggestTests(t TextureFeatures) []string {
	tests := []string{"Histopathological confirmation"}
	if t.Entropy > 5.5 {
		tests = append(tests, "Genomic sequencing panel")
	}
	if t.StdDev > 35 {
		tests = append(tests, "Ki-67 proliferation index")
	}
	if t.Entropy > 5.5 && t.StdDev > 35 {
		tests = append(tests, "Contrast-enhanced follow-up imaging")
	}
	return tests
}

// detectComorbidities flags secondary findings from simple pixel statistics.
func detectComorbidities(roi *image.Gray, t TextureFeatures, sizeMM float64) []string {
	flags := []string{}

	if intensityRatio(roi, func(v uint8) bool { return v > 200 }) > 0.05 {
		flags = append(flags, "Possible Calcifications")
	}
	if intensityRatio(roi, func(v uint8) bool { return v < 50 }) > 0.10 && sizeMM > 15 {
		flags = append(flags, "Possible Central Necrosis")
	}
	if t.StdDev > 50 {
		flags = append(flags, "Signs of Inflammation or Edema")
	}
	if histogramPeaks(histogram256(roi)) >= 3 {
		flags = append(flags, "Possible Satellite Lesions")
	}

	return flags
}

// histogramPeaks counts local maxima that rise above 1.5× the mean bin
// count. A multimodal intensity distribution hints at distinct structures
// inside one box.
func histogramPeaks(hist [256]int) int {
	total := 0
	for _, c := range hist {
		total += c
	}
	if total == 0 {
		return 0
	}
	threshold := 1.5 * float64(total) / 256

	peaks := 0
	for i := 1; i < 255; i++ {
		if float64(hist[i]) > threshold && hist[i] > hist[i-1] && hist[i] >= hist[i+1] {
			peaks++
		}
	}
	return peaks
}
