package pipeline

import (
	"github.com/medview/lesionscan/internal/imaging"
	"github.com/medview/lesionscan/internal/region"
)

// ModelInfo records which detection configuration produced a result.
type ModelInfo struct {
	// ModelType names the active detector stack, e.g.
	// "classical-ensemble" or the external model's identifier.
	ModelType string `json:"model_type"`

	// Device is where inference ran. The classical bank always reports
	// "cpu".
	Device string `json:"device"`
}

// AnalysisResult is the complete outcome of analyzing one image.
//
// The top-level tumor fields summarize the primary (highest-confidence)
// region; the full per-region detail lives in TumorRegions. A result with
// TumorDetected == false and an empty region list is a legitimate, successful
// outcome, not an error.
type AnalysisResult struct {
	ImageInfo *imaging.ImageInfo `json:"image_info,omitempty"`

	TumorDetected bool            `json:"tumor_detected"`
	TumorRegions  []region.Region `json:"tumor_regions"`

	// Primary-region summary. Empty/zero when nothing was detected.
	TumorType           string             `json:"tumor_type,omitempty"`
	TumorStage          string             `json:"tumor_stage,omitempty"`
	SizeMM              float64            `json:"size_mm,omitempty"`
	Location            string             `json:"location,omitempty"`
	GeneticProfile      *region.Indicators `json:"genetic_profile,omitempty"`
	Comorbidities       []string           `json:"comorbidities"`
	DetectionConfidence float64            `json:"detection_confidence"`
	StageConfidence     float64            `json:"stage_confidence"`

	// AnnotatedImage is the annotated frame as a data URI; empty when
	// rendering failed or was skipped. AnnotatedPath is the persisted copy
	// next to the source file, set only for path-based analysis.
	AnnotatedImage string `json:"annotated_image,omitempty"`
	AnnotatedPath  string `json:"annotated_path,omitempty"`

	ModelInfo ModelInfo `json:"model_info"`
}
