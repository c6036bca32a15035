package detection

// Source identifies which detection method proposed a candidate.
type Source string

const (
	SourceAdaptive       Source = "adaptive_threshold"
	SourceEdgeDensity    Source = "edge_density"
	SourceBlob           Source = "blob"
	SourceColorPattern   Source = "color_pattern"
	SourceTextureAnomaly Source = "texture_anomaly"
	SourceWatershed      Source = "watershed"
	SourceExternal       Source = "external"
)

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Bounds represents an axis-aligned bounding box in pixel coordinates,
// stored as top-left corner plus extent.
type Bounds struct {
	X      int `json:"x"`      // Left edge (inclusive)
	Y      int `json:"y"`      // Top edge (inclusive)
	Width  int `json:"width"`  // Horizontal extent in pixels
	Height int `json:"height"` // Vertical extent in pixels
}

// Area returns the box area in square pixels.
func (b Bounds) Area() int {
	return b.Width * b.Height
}

// Center returns the center point of the box.
func (b Bounds) Center() Point {
	return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// Clamp constrains the box to lie within a w×h image. The result may have
// zero or negative extent when the box lies entirely outside the image;
// callers must treat that as degenerate geometry.
func (b Bounds) Clamp(w, h int) Bounds {
	x1, y1 := b.X, b.Y
	x2, y2 := b.X+b.Width, b.Y+b.Height
	if x1 < 0 {
		x1 = 0
	}
	if y1 < 0 {
		y1 = 0
	}
	if x2 > w {
		x2 = w
	}
	if y2 > h {
		y2 = h
	}
	return Bounds{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// IoU computes the Intersection-over-Union overlap ratio of two boxes.
//
// IoU is symmetric, 1.0 for identical boxes, and 0.0 for disjoint boxes.
// Zero-union pairs (both boxes degenerate) are defined as non-overlapping.
func (b Bounds) IoU(o Bounds) float64 {
	ix1 := maxInt(b.X, o.X)
	iy1 := maxInt(b.Y, o.Y)
	ix2 := minInt(b.X+b.Width, o.X+o.Width)
	iy2 := minInt(b.Y+b.Height, o.Y+o.Height)

	if ix2 <= ix1 || iy2 <= iy1 {
		return 0
	}
	inter := (ix2 - ix1) * (iy2 - iy1)
	union := b.Area() + o.Area() - inter
	if union <= 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Candidate is a detection proposal from a single method. Candidates are
// created by one detector call and never mutated afterwards, except that the
// fusion stage may bump Confidence and append corroborating Sources.
type Candidate struct {
	// Source is the method that proposed this candidate.
	Source Source `json:"source"`

	// Sources lists every method that contributed evidence for this
	// candidate. Starts as [Source]; fusion appends corroborators.
	Sources []Source `json:"sources"`

	// Bounds is the proposal's bounding box in image pixel space.
	Bounds Bounds `json:"bbox"`

	// Confidence is the method's raw confidence in [0, 1].
	Confidence float64 `json:"confidence"`

	// Contour optionally traces the region boundary precisely. Some sources
	// (e.g. external detectors) provide boxes only.
	Contour []Point `json:"contour,omitempty"`

	// Circularity is an optional method-specific shape score (0..1).
	Circularity float64 `json:"circularity,omitempty"`

	// EdgeDensity is an optional method-specific edge-fraction score.
	EdgeDensity float64 `json:"edge_density,omitempty"`
}

// NewCandidate constructs a candidate with its provenance list seeded from
// the proposing source.
func NewCandidate(src Source, bounds Bounds, confidence float64) Candidate {
	return Candidate{
		Source:     src,
		Sources:    []Source{src},
		Bounds:     bounds,
		Confidence: confidence,
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
