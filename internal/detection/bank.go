package detection

import (
	"fmt"
	"image"
	"log"

	"github.com/medview/lesionscan/internal/imaging"
)

// RunBank executes every detection method over one preprocessed image and
// returns the concatenated candidate lists.
//
// The six methods are mutually independent and each is isolated: a method
// that returns an error or panics contributes an empty list and is logged,
// never aborting the others. Output order is the fixed method order; the
// fusion stage re-sorts by confidence so execution order carries no meaning.
func RunBank(img image.Image, gray *image.Gray, pre *imaging.Preprocessed, kind imaging.ImageKind) []Candidate {
	methods := []struct {
		source Source
		run    func() ([]Candidate, error)
	}{
		{SourceAdaptive, func() ([]Candidate, error) { return DetectAdaptive(pre.Enhanced) }},
		{SourceEdgeDensity, func() ([]Candidate, error) { return DetectEdgeDensity(pre.Edges) }},
		{SourceBlob, func() ([]Candidate, error) { return DetectBlobs(gray) }},
		{SourceColorPattern, func() ([]Candidate, error) { return DetectColorPattern(img, kind) }},
		{SourceTextureAnomaly, func() ([]Candidate, error) { return DetectTextureAnomaly(gray) }},
		{SourceWatershed, func() ([]Candidate, error) { return DetectWatershed(pre.Enhanced) }},
	}

	var all []Candidate
	for _, m := range methods {
		cands, err := runIsolated(m.source, m.run)
		if err != nil {
			log.Printf("detector %s failed, continuing without it: %v", m.source, err)
			continue
		}
		all = append(all, cands...)
	}
	return all
}

// runIsolated invokes one detector, converting panics into errors so a bad
// method cannot take down the bank.
func runIsolated(src Source, run func() ([]Candidate, error)) (cands []Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			cands = nil
			err = fmt.Errorf("detector %s panicked: %v", src, r)
		}
	}()
	return run()
}
