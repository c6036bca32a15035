// Package imaging provides image loading and the preprocessing stage of the
// analysis pipeline.
//
// This package implements the cached image loader, grayscale conversion, the
// modality taxonomy (ImageKind), and the Preprocessor that turns a raw image
// into the analysis-ready planes (contrast-enhanced, edge map, morphological
// gradient) consumed by the detector bank. All operations work with standard
// Go image.Image types and use a coordinate system where (0,0) is at the
// top-left corner, X increases rightward, and Y increases downward.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Preprocessing is stateless
// and can run concurrently on different images.
//
// # Error Handling
//
// The only sentinel error exported here is ErrUnreadableImage, wrapping every
// open/decode failure. Preprocessing itself never fails: degenerate inputs
// (flat tiles, empty planes) degrade to identity mappings.
package imaging
