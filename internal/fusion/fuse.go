// Package fusion merges the candidate lists produced by the detector bank
// and any external learned detector into a single ranked, deduplicated set.
package fusion

import (
	"math"
	"sort"

	"github.com/medview/lesionscan/internal/detection"
)

// Params holds the tunable constants of the fusion stage. They are heuristic
// operating points, not calibrated quantities; expose them rather than bury
// them.
type Params struct {
	// ExternalFloor is the minimum confidence an external detection needs
	// before it seeds the fused set.
	ExternalFloor float64

	// ExternalBoost multiplies external confidences; learned detections are
	// trusted more than the classical methods. Result capped at 1.0.
	ExternalBoost float64

	// CorroborationIoU is the overlap above which a bank candidate counts as
	// corroborating an already-fused one instead of adding a new region.
	CorroborationIoU float64

	// CorroborationBump is added to a fused candidate's confidence for each
	// corroborating detection, capped at 1.0.
	CorroborationBump float64

	// MinConfidence is the floor for a bank candidate to enter the fused set
	// on its own.
	MinConfidence float64

	// PreNMSLimit truncates the sorted fused set before non-maximum
	// suppression runs.
	PreNMSLimit int

	// NMSIoU is the suppression threshold of the final NMS pass.
	NMSIoU float64

	// MaxRegions caps the final output length.
	MaxRegions int
}

// DefaultParams returns the standard fusion operating point.
func DefaultParams() Params {
	return Params{
		ExternalFloor:     0.35,
		ExternalBoost:     1.2,
		CorroborationIoU:  0.3,
		CorroborationBump: 0.1,
		MinConfidence:     0.2,
		PreNMSLimit:       8,
		NMSIoU:            0.4,
		MaxRegions:        10,
	}
}

// Fuse combines bank and external candidates into at most MaxRegions
// survivors, ordered by descending confidence.
//
// External detections seed the set first (boosted, floor-filtered). Each bank
// candidate either corroborates an overlapping fused candidate, bumping its
// confidence and provenance, or joins the set if it clears MinConfidence.
// The set is then sorted, truncated to PreNMSLimit and run through greedy
// non-maximum suppression. The NMS pass is deliberately separate from the
// corroboration test: corroboration only compares against earlier entries, so
// near-duplicates from one method at different scales can both survive it.
//
// A nil external list behaves identically to an empty one.
func Fuse(bank, external []detection.Candidate, p Params) []detection.Candidate {
	fused := make([]detection.Candidate, 0, len(bank)+len(external))

	for _, c := range external {
		if c.Confidence < p.ExternalFloor {
			continue
		}
		c.Confidence = math.Min(c.Confidence*p.ExternalBoost, 1.0)
		fused = append(fused, c)
	}

	for _, c := range bank {
		if i := overlapIndex(fused, c.Bounds, p.CorroborationIoU); i >= 0 {
			fused[i].Confidence = math.Min(fused[i].Confidence+p.CorroborationBump, 1.0)
			fused[i].Sources = appendSource(fused[i].Sources, c.Source)
			continue
		}
		if c.Confidence >= p.MinConfidence {
			fused = append(fused, c)
		}
	}

	sortByConfidence(fused)
	if len(fused) > p.PreNMSLimit {
		fused = fused[:p.PreNMSLimit]
	}

	fused = NonMaxSuppression(fused, p.NMSIoU)

	if len(fused) > p.MaxRegions {
		fused = fused[:p.MaxRegions]
	}
	return fused
}

// NonMaxSuppression performs classic greedy NMS over a confidence-sorted
// candidate list: iterate in order, suppress any later candidate whose box
// overlaps a kept one above the IoU threshold. Idempotent: running it on its
// own output returns the same set.
func NonMaxSuppression(cands []detection.Candidate, iouThreshold float64) []detection.Candidate {
	sortByConfidence(cands)

	kept := make([]detection.Candidate, 0, len(cands))
	suppressed := make([]bool, len(cands))
	for i := range cands {
		if suppressed[i] {
			continue
		}
		kept = append(kept, cands[i])
		for j := i + 1; j < len(cands); j++ {
			if suppressed[j] {
				continue
			}
			if cands[i].Bounds.IoU(cands[j].Bounds) > iouThreshold {
				suppressed[j] = true
			}
		}
	}
	return kept
}

// overlapIndex returns the index of the first fused candidate whose box
// overlaps b above the threshold, or -1.
func overlapIndex(fused []detection.Candidate, b detection.Bounds, threshold float64) int {
	for i := range fused {
		if fused[i].Bounds.IoU(b) > threshold {
			return i
		}
	}
	return -1
}

// appendSource records a corroborating source once.
func appendSource(sources []detection.Source, s detection.Source) []detection.Source {
	for _, existing := range sources {
		if existing == s {
			return sources
		}
	}
	return append(sources, s)
}

func sortByConfidence(cands []detection.Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Confidence > cands[j].Confidence
	})
}
