package detection

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stampFrame draws one-pixel vertical strokes every 8 columns inside area,
// which reads like a line of small glyphs.
func stampFrame(w, h int, area image.Rectangle) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x += 8 {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	return img
}

func TestLocateStamps_TopBand(t *testing.T) {
	area := image.Rect(16, 8, 176, 40)
	regions := LocateStamps(stampFrame(640, 480, area), DefaultStampOptions())

	require.NotEmpty(t, regions)
	assert.True(t, regionsOverlap(regions[0].Bounds, BoundsFromRect(area)))
	assert.GreaterOrEqual(t, regions[0].Confidence, DefaultStampOptions().MinConfidence)
	for _, r := range regions {
		assert.LessOrEqual(t, r.Bounds.Y2, 80, "region %+v outside the top band", r.Bounds)
	}
}

func TestLocateStamps_IgnoresMiddle(t *testing.T) {
	img := stampFrame(640, 480, image.Rect(16, 200, 176, 232))
	assert.Empty(t, LocateStamps(img, DefaultStampOptions()))
}

func TestLocateStamps_Blank(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 320, 240))
	assert.Empty(t, LocateStamps(img, DefaultStampOptions()))
}
