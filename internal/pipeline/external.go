package pipeline

import (
	"image"

	"github.com/medview/lesionscan/internal/detection"
)

// ExternalDetector adapts a learned model (ONNX runtime, remote inference
// service, ...) into the candidate vocabulary of the classical bank.
// Implementations must tag their candidates with detection.SourceExternal.
type ExternalDetector interface {
	// Detect proposes candidates for one image. The path is advisory; it may
	// be empty when the image arrived as a byte buffer.
	Detect(path string, img image.Image) ([]detection.Candidate, error)
}

// ExternalFactory constructs the process-wide external detector. It runs at
// most once, on the first analysis; a returned error permanently disables
// the external adapter for the process.
type ExternalFactory func() (ExternalDetector, error)

// NullDetector is the no-model placeholder. It proposes nothing and never
// fails, leaving fusion to work from the classical bank alone.
type NullDetector struct{}

// Detect implements ExternalDetector.
func (NullDetector) Detect(string, image.Image) ([]detection.Candidate, error) {
	return nil, nil
}
