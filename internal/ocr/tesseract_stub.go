//go:build !(cgo && linux)

package ocr

import "image"

// StampReader is unavailable without Tesseract.
type StampReader struct{}

// NewStampReader always fails with ErrOCRUnavailable.
func NewStampReader(opts Options) (*StampReader, error) {
	return nil, ErrOCRUnavailable
}

// Read always fails with ErrOCRUnavailable.
func (r *StampReader) Read(img image.Image, region image.Rectangle) (string, error) {
	return "", ErrOCRUnavailable
}

// Close does nothing.
func (r *StampReader) Close() error {
	return nil
}
