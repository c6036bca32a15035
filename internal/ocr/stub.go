//go:build !cgo

package ocr

// Available reports whether the Tesseract backend was compiled in.
func Available() bool { return false }

// ExtractText always fails on non-CGO builds.
func ExtractText(string) (string, error) {
	return "", ErrUnavailable
}
