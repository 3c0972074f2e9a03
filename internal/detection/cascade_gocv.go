//go:build gocv

package detection

import (
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// CascadeClassifier runs an OpenCV Haar cascade.
type CascadeClassifier struct {
	mu         sync.Mutex
	classifier gocv.CascadeClassifier
}

// NewCascadeClassifier loads the cascade definition at path.
func NewCascadeClassifier(path string) (*CascadeClassifier, error) {
	c := gocv.NewCascadeClassifier()
	if !c.Load(path) {
		c.Close()
		return nil, fmt.Errorf("failed to load cascade definition %s", path)
	}
	return &CascadeClassifier{classifier: c}, nil
}

// Detect runs the cascade at multiple scales over img.
func (c *CascadeClassifier) Detect(img image.Image) ([]image.Rectangle, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert frame: %w", err)
	}
	defer mat.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)
	gocv.EqualizeHist(gray, &gray)

	c.mu.Lock()
	defer c.mu.Unlock()
	found := c.classifier.DetectMultiScale(gray)

	offset := img.Bounds().Min
	for i := range found {
		found[i] = found[i].Add(offset)
	}
	return found, nil
}

// Close releases the native classifier.
func (c *CascadeClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.classifier.Close()
}
