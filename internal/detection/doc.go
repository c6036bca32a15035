// Package detection implements the candidate-generating detector bank of the
// analysis pipeline.
//
// Six independent methods each propose candidate regions from one input
// image: adaptive thresholding at multiple window scales, edge-density
// analysis, blob detection on both photometric polarities, color-pattern
// matching (histology staining or luminance extremes), sliding-window
// texture-anomaly scoring, and marker-driven watershed segmentation. Every
// method is a pure function from image planes to a []Candidate with a type
// tag, bounding box and raw confidence in [0, 1]; candidates are never
// mutated by their producer after creation.
//
// The package also owns the shared geometric vocabulary of the pipeline:
// Bounds with Intersection-over-Union overlap, connected-component contour
// extraction with circularity/solidity/inertia descriptors, and binary
// morphology (dilate, erode, open, close, hole filling).
//
// # Failure Isolation
//
// RunBank isolates each method: an error return or panic is logged and the
// method contributes an empty list. No detector failure propagates to the
// caller.
package detection
