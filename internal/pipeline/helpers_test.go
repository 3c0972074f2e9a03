package pipeline

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

// railFrame draws two bright five-pixel rails over the full height of a
// dark 640x480 frame, 140 px apart.
func railFrame() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 640, 480))
	for y := 0; y < 480; y++ {
		for x := 0; x < 640; x++ {
			c := color.RGBA{20, 20, 20, 255}
			if (x >= 250 && x < 255) || (x >= 390 && x < 395) {
				c = color.RGBA{240, 240, 240, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func darkFrame() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 640, 480))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 20, 20, 20, 255
	}
	return img
}

// addStamp draws glyph-like strokes into the top band.
func addStamp(img *image.RGBA) {
	for y := 8; y < 40; y++ {
		for x := 16; x < 176; x += 8 {
			img.SetRGBA(x, y, color.RGBA{255, 255, 255, 255})
		}
	}
}

// fakeClassifier returns canned rectangles.
type fakeClassifier struct {
	rects  []image.Rectangle
	err    error
	calls  int
	closed bool
}

func (f *fakeClassifier) Detect(image.Image) ([]image.Rectangle, error) {
	f.calls++
	return f.rects, f.err
}

func (f *fakeClassifier) Close() error {
	f.closed = true
	return nil
}

type fakeStampReader struct {
	text    string
	err     error
	regions []image.Rectangle
}

func (f *fakeStampReader) Read(_ image.Image, region image.Rectangle) (string, error) {
	f.regions = append(f.regions, region)
	return f.text, f.err
}

func newTestSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	proc, err := NewProcessor(DefaultParams(), opts...)
	require.NoError(t, err)
	s, err := NewSession(proc)
	require.NoError(t, err)
	return s
}
