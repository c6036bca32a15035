// Package medpack identifies medicine packaging from photographs: label text
// via OCR, structured fields parsed out of the text, and visual features
// (dominant colors, shape hints) that survive even when OCR is unavailable.
package medpack

import (
	"image"
	"log"
	"math"
	"regexp"
	"sort"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/medview/lesionscan/internal/detection"
	"github.com/medview/lesionscan/internal/imaging"
	"github.com/medview/lesionscan/internal/ocr"
)

// MedicineInfo is the structured information parsed from label text.
type MedicineInfo struct {
	// PossibleNames lists up to five capitalized words that could be the
	// brand or generic name, in order of appearance.
	PossibleNames []string `json:"possible_names"`

	// Dosage is the first strength found, e.g. "500mg" or "10ml".
	Dosage string `json:"dosage,omitempty"`

	// Form is the dose form: tablet, capsule, syrup, cream, ointment, gel,
	// drops, injection, inhaler, spray or powder.
	Form string `json:"form,omitempty"`

	Expiry        string `json:"expiry,omitempty"`
	BatchNumber   string `json:"batch_number,omitempty"`
	WarningsFound bool   `json:"warnings_found"`
}

// ColorShare is one dominant color and its share of the image.
type ColorShare struct {
	Color      string  `json:"color"`
	Percentage float64 `json:"percentage"`
}

// VisualFeatures are the text-independent features of the photograph.
type VisualFeatures struct {
	DominantColors []ColorShare `json:"dominant_colors"`
	Brightness     float64      `json:"brightness"`
	Contrast       float64      `json:"contrast"`
	EdgesDetected  bool         `json:"edges_detected"`

	// RoundObjects counts compact circular shapes, a strong hint that loose
	// tablets or capsules are in frame.
	RoundObjects int `json:"round_objects"`
}

// PackageResult is the full outcome of analyzing one package photograph.
type PackageResult struct {
	// ExtractedText is the raw OCR output; empty when OCR is unavailable
	// or found nothing.
	ExtractedText string `json:"extracted_text,omitempty"`

	// OCRAvailable reports whether the Tesseract backend ran at all. When
	// false the text-derived fields are empty and only visual features are
	// populated.
	OCRAvailable bool `json:"ocr_available"`

	Info   MedicineInfo   `json:"medicine_info"`
	Visual VisualFeatures `json:"visual_features"`
}

var (
	dosagePattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(mg|ml|mcg|g|iu|units?)`)

	expiryPatterns = []*regexp.Regexp{
		regexp.MustCompile(`exp(?:iry)?[:\s]*(\d{2}[/\-]\d{2,4})`),
		regexp.MustCompile(`exp(?:iry)?[:\s]*([a-z]{3}\s*\d{4})`),
		regexp.MustCompile(`best\s*before[:\s]*(\d{2}[/\-]\d{2,4})`),
	}

	batchPatterns = []*regexp.Regexp{
		regexp.MustCompile(`batch\s*(?:no\.?)?[:\s]*([a-z0-9]+)`),
		regexp.MustCompile(`lot\s*(?:no\.?)?[:\s]*([a-z0-9]+)`),
		regexp.MustCompile(`b\.?\s*no\.?[:\s]*([a-z0-9]+)`),
	}
)

// formKeywords maps each dose form to the label words that imply it.
// Ordered so the most specific forms are checked first.
var formKeywords = []struct {
	form     string
	keywords []string
}{
	{"tablet", []string{"tablet", "tablets", "tab ", "tabs"}},
	{"capsule", []string{"capsule", "capsules", "caps"}},
	{"syrup", []string{"syrup", "suspension", "solution"}},
	{"cream", []string{"cream", "lotion"}},
	{"ointment", []string{"ointment"}},
	{"gel", []string{"gel"}},
	{"drops", []string{"drops", "drop"}},
	{"injection", []string{"injection", "injectable", "vial"}},
	{"inhaler", []string{"inhaler", "inhalation"}},
	{"spray", []string{"spray", "nasal"}},
	{"powder", []string{"powder", "sachet"}},
}

var warningKeywords = []string{"warning", "caution", "do not", "keep away", "consult", "prescription"}

// excludedNameWords are common label words that start capitalized but are
// never the medicine name.
var excludedNameWords = map[string]bool{
	"The": true, "For": true, "And": true, "With": true,
	"Contains": true, "Store": true, "Keep": true, "Take": true, "Use": true,
}

// Analyze runs the full package identification. The path feeds OCR (which
// needs a file on disk); the decoded image feeds visual analysis. OCR
// failure of any kind degrades to a visual-only result.
func Analyze(path string, img image.Image) *PackageResult {
	result := &PackageResult{
		Info:   MedicineInfo{PossibleNames: []string{}},
		Visual: analyzeVisual(img),
	}

	if path != "" && ocr.Available() {
		text, err := ocr.ExtractText(path)
		if err != nil {
			log.Printf("package OCR failed, using visual features only: %v", err)
		} else {
			result.OCRAvailable = true
			result.ExtractedText = strings.TrimSpace(text)
			result.Info = extractInfo(result.ExtractedText)
		}
	}

	if result.Info.Form == "" {
		result.Info.Form = visualForm(result.Visual, img)
	}
	return result
}

// extractInfo parses the structured fields out of raw label text.
func extractInfo(text string) MedicineInfo {
	info := MedicineInfo{PossibleNames: []string{}}
	lower := strings.ToLower(text)

	if m := dosagePattern.FindStringSubmatch(lower); m != nil {
		info.Dosage = m[1] + m[2]
	}

	for _, f := range formKeywords {
		for _, kw := range f.keywords {
			if strings.Contains(lower, kw) {
				info.Form = f.form
				break
			}
		}
		if info.Form != "" {
			break
		}
	}

	for _, p := range expiryPatterns {
		if m := p.FindStringSubmatch(lower); m != nil {
			info.Expiry = m[1]
			break
		}
	}
	for _, p := range batchPatterns {
		if m := p.FindStringSubmatch(lower); m != nil {
			info.BatchNumber = strings.ToUpper(m[1])
			break
		}
	}

	for _, kw := range warningKeywords {
		if strings.Contains(lower, kw) {
			info.WarningsFound = true
			break
		}
	}

	info.PossibleNames = possibleNames(text)
	return info
}

// possibleNames collects up to five distinct capitalized words in order of
// appearance, skipping common label vocabulary.
func possibleNames(text string) []string {
	names := []string{}
	seen := map[string]bool{}
	for _, word := range strings.Fields(text) {
		trimmed := strings.Trim(word, ".,:;()[]")
		if len(trimmed) <= 2 || seen[trimmed] || excludedNameWords[trimmed] {
			continue
		}
		first := trimmed[0]
		if first < 'A' || first > 'Z' {
			continue
		}
		seen[trimmed] = true
		names = append(names, trimmed)
		if len(names) == 5 {
			break
		}
	}
	return names
}

// analyzeVisual computes the text-independent features.
func analyzeVisual(img image.Image) VisualFeatures {
	gray := imaging.ToGray(img)
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()

	var sum, sumSq float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := float64(gray.Pix[y*gray.Stride+x])
			sum += v
			sumSq += v * v
		}
	}
	n := float64(w * h)
	brightness := 0.0
	contrast := 0.0
	if n > 0 {
		brightness = sum / n
		variance := sumSq/n - brightness*brightness
		if variance > 0 {
			contrast = math.Sqrt(variance)
		}
	}

	edges := imaging.EdgeMap(gray, 40)
	edgeCount := 0
	for _, row := range edges {
		for _, e := range row {
			if e {
				edgeCount++
			}
		}
	}

	round := 0
	if blobs, err := detection.DetectBlobs(gray); err == nil {
		for _, c := range blobs {
			if c.Circularity > 0.6 {
				round++
			}
		}
	}

	return VisualFeatures{
		DominantColors: dominantColors(img),
		Brightness:     brightness,
		Contrast:       contrast,
		EdgesDetected:  n > 0 && float64(edgeCount)/n > 0.01,
		RoundObjects:   round,
	}
}

// visualForm guesses the dose form from shape when the label text gave
// nothing: round objects read as tablets, a tall frame as a bottle.
func visualForm(v VisualFeatures, img image.Image) string {
	if v.RoundObjects > 0 {
		return "tablet"
	}
	b := img.Bounds()
	if b.Dx() > 0 && float64(b.Dy())/float64(b.Dx()) > 1.5 {
		return "syrup"
	}
	return ""
}

// colorBucket names a pixel's color family from its HSV coordinates.
func colorBucket(c colorful.Color) string {
	hue, sat, val := c.Hsv()
	switch {
	case val < 0.2:
		return "black"
	case sat < 0.15 && val > 0.85:
		return "white"
	case sat < 0.15:
		return "gray"
	}
	switch {
	case hue < 15 || hue >= 345:
		return "red"
	case hue < 45:
		if val < 0.6 {
			return "brown"
		}
		return "orange"
	case hue < 70:
		return "yellow"
	case hue < 170:
		return "green"
	case hue < 260:
		return "blue"
	case hue < 290:
		return "purple"
	default:
		return "pink"
	}
}

// dominantColors samples a sparse grid, buckets pixels into color families
// and returns the families covering more than 5% of samples, largest first,
// at most three.
func dominantColors(img image.Image) []ColorShare {
	b := img.Bounds()
	stepX := maxInt(1, b.Dx()/64)
	stepY := maxInt(1, b.Dy()/64)

	counts := map[string]int{}
	total := 0
	for y := b.Min.Y; y < b.Max.Y; y += stepY {
		for x := b.Min.X; x < b.Max.X; x += stepX {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue
			}
			counts[colorBucket(c)]++
			total++
		}
	}
	if total == 0 {
		return []ColorShare{}
	}

	shares := []ColorShare{}
	for name, count := range counts {
		pct := float64(count) / float64(total) * 100
		if pct > 5 {
			shares = append(shares, ColorShare{Color: name, Percentage: pct})
		}
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Percentage != shares[j].Percentage {
			return shares[i].Percentage > shares[j].Percentage
		}
		return shares[i].Color < shares[j].Color
	})
	if len(shares) > 3 {
		shares = shares[:3]
	}
	return shares
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
