//go:build !gocv

package detection

import "image"

// CascadeClassifier is unavailable without OpenCV.
type CascadeClassifier struct{}

// NewCascadeClassifier always fails with ErrClassifierUnavailable.
func NewCascadeClassifier(path string) (*CascadeClassifier, error) {
	return nil, ErrClassifierUnavailable
}

// Detect always fails with ErrClassifierUnavailable.
func (c *CascadeClassifier) Detect(img image.Image) ([]image.Rectangle, error) {
	return nil, ErrClassifierUnavailable
}

// Close does nothing.
func (c *CascadeClassifier) Close() error {
	return nil
}
