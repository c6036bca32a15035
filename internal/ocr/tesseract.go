//go:build cgo

package ocr

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Available reports whether the Tesseract backend was compiled in.
func Available() bool { return true }

// ExtractText performs OCR on an image file and returns the recognized text
// with original spacing and newlines.
//
// Tesseract and its English training data must be installed on the system;
// a missing installation surfaces as an OCR error at call time.
func ExtractText(imagePath string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage("eng"); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return text, nil
}
