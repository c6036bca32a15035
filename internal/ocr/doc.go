// Package ocr extracts label text from package photographs using Tesseract.
//
// The real backend (gosseract/v2) requires CGO and an installed Tesseract
// with English language data. Builds without CGO get a stub backend that
// reports itself unavailable; callers are expected to degrade to visual-only
// analysis rather than fail.
package ocr
