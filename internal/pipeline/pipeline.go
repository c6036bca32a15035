// Package pipeline composes the full analysis chain: load, preprocess,
// detector bank, external adapter, fusion, per-region analysis and
// annotation.
//
// The pipeline is synchronous: one image in, one AnalysisResult out. The only
// failure it surfaces is an unreadable input (imaging.ErrUnreadableImage);
// every internal stage degrades to empty output instead of erroring, so a
// clean "nothing found" result is always reachable.
package pipeline

import (
	"fmt"
	"image"
	"log"
	"sync"

	"github.com/medview/lesionscan/internal/annotate"
	"github.com/medview/lesionscan/internal/detection"
	"github.com/medview/lesionscan/internal/fusion"
	"github.com/medview/lesionscan/internal/imaging"
	"github.com/medview/lesionscan/internal/region"
)

// Options configures an Analyzer. The zero value selects the classical
// detector bank with default fusion and analysis parameters.
type Options struct {
	// External lazily constructs the learned detector. Nil means classical
	// detection only.
	External ExternalFactory

	// Fusion overrides fusion.DefaultParams when non-nil.
	Fusion *fusion.Params

	// Region overrides region.DefaultParams when non-nil.
	Region *region.Params

	// ModelType overrides the reported model identifier.
	ModelType string
}

// Analyzer runs the analysis pipeline. It is safe for concurrent use; the
// image cache and the one-time external-detector initialization are the only
// shared state.
type Analyzer struct {
	cache  *imaging.ImageCache
	fusion fusion.Params
	region region.Params
	model  ModelInfo

	externalFactory ExternalFactory
	externalOnce    sync.Once
	external        ExternalDetector
}

// New constructs an Analyzer.
func New(opts Options) *Analyzer {
	a := &Analyzer{
		cache:           imaging.NewImageCache(),
		fusion:          fusion.DefaultParams(),
		region:          region.DefaultParams(),
		model:           ModelInfo{ModelType: "classical-ensemble", Device: "cpu"},
		externalFactory: opts.External,
	}
	if opts.Fusion != nil {
		a.fusion = *opts.Fusion
	}
	if opts.Region != nil {
		a.region = *opts.Region
	}
	if opts.ModelType != "" {
		a.model.ModelType = opts.ModelType
	}
	return a
}

// Cache exposes the analyzer's image cache for metadata queries.
func (a *Analyzer) Cache() *imaging.ImageCache {
	return a.cache
}

// Analyze runs the full pipeline on an image file.
//
// The kind string is parsed leniently: unknown values fall back to the
// generic classification branch. The annotated frame is persisted next to
// the source file; persistence failure is logged, not surfaced.
func (a *Analyzer) Analyze(path, kind string) (*AnalysisResult, error) {
	img, err := a.cache.Load(path)
	if err != nil {
		return nil, err
	}

	result := a.analyzeImage(img, path, imaging.ParseKind(kind))

	if info, err := imaging.LoadImageInfo(a.cache, path); err == nil {
		result.ImageInfo = info
	}
	return result, nil
}

// AnalyzeBytes runs the full pipeline on an in-memory encoded image. No
// annotated copy is persisted; the data URI is still produced.
func (a *Analyzer) AnalyzeBytes(data []byte, kind string) (*AnalysisResult, error) {
	img, err := imaging.Decode(data)
	if err != nil {
		return nil, err
	}
	return a.analyzeImage(img, "", imaging.ParseKind(kind)), nil
}

func (a *Analyzer) analyzeImage(img image.Image, path string, kind imaging.ImageKind) *AnalysisResult {
	gray := imaging.ToGray(img)
	pre := imaging.Preprocess(gray, kind)

	bank := detection.RunBank(img, gray, pre, kind)
	external := a.externalCandidates(path, img)
	fused := fusion.Fuse(bank, external, a.fusion)

	regions := make([]region.Region, 0, len(fused))
	for _, cand := range fused {
		regions = append(regions, region.Analyze(cand, img, kind, a.region))
	}

	result := &AnalysisResult{
		TumorDetected: len(regions) > 0,
		TumorRegions:  regions,
		Comorbidities: []string{},
		ModelInfo:     a.model,
	}
	if len(regions) > 0 {
		// The per-region texture boost can reorder confidences relative to
		// the fused candidate order, so the summary picks its own maximum.
		primary := regions[primaryRegion(regions)]
		result.TumorType = primary.TumorType
		result.TumorStage = primary.TumorStage
		result.SizeMM = primary.SizeMM
		result.Location = primary.Location
		result.GeneticProfile = &primary.Indicators
		result.Comorbidities = primary.Comorbid
		result.DetectionConfidence = primary.Confidence
		result.StageConfidence = primary.StageConf
	}

	a.renderAnnotation(result, img, path, fused)
	return result
}

// primaryRegion returns the index of the highest-confidence region. Earlier
// entries win ties, keeping the choice stable across runs.
func primaryRegion(regions []region.Region) int {
	best := 0
	for i, r := range regions {
		if r.Confidence > regions[best].Confidence {
			best = i
		}
	}
	return best
}

// externalCandidates runs the external adapter with full isolation: lazy
// one-time construction, panic recovery, and logging on every failure path.
func (a *Analyzer) externalCandidates(path string, img image.Image) []detection.Candidate {
	a.externalOnce.Do(func() {
		if a.externalFactory == nil {
			return
		}
		det, err := a.externalFactory()
		if err != nil {
			log.Printf("external detector unavailable, continuing without it: %v", err)
			return
		}
		a.external = det
	})
	if a.external == nil {
		return nil
	}

	cands, err := runExternal(a.external, path, img)
	if err != nil {
		log.Printf("external detector failed, continuing without it: %v", err)
		return nil
	}
	return cands
}

func runExternal(det ExternalDetector, path string, img image.Image) (cands []detection.Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			cands = nil
			err = fmt.Errorf("external detector panicked: %v", r)
		}
	}()
	return det.Detect(path, img)
}

// renderAnnotation draws and encodes the annotated frame. Any failure here
// degrades to "no annotation" and leaves the result otherwise intact.
func (a *Analyzer) renderAnnotation(result *AnalysisResult, img image.Image, path string, fused []detection.Candidate) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("annotation failed, continuing without it: %v", r)
			result.AnnotatedImage = ""
			result.AnnotatedPath = ""
		}
	}()

	frame := annotate.Render(img, fused)
	encoded, err := annotate.EncodePNG(frame)
	if err != nil {
		log.Printf("annotation encoding failed, continuing without it: %v", err)
		return
	}
	result.AnnotatedImage = annotate.DataURI(encoded)

	if path == "" {
		return
	}
	saved, err := annotate.SaveAlongside(path, encoded)
	if err != nil {
		log.Printf("annotation save failed, continuing without it: %v", err)
		return
	}
	result.AnnotatedPath = saved
}
