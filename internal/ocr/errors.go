package ocr

import "errors"

// ErrUnavailable is returned by every OCR entry point when the binary was
// built without the Tesseract backend.
var ErrUnavailable = errors.New("ocr unavailable: built without cgo")
