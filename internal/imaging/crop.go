package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// CropScaled extracts rect from img and scales it so the result is rows
// pixels tall, keeping the aspect ratio.
//
// The rectangle is clipped to the image first. The returned scale is the
// factor applied to the crop, so a point p in the result maps back to
// rect.Min + p/scale in img. rows <= 0 disables scaling.
func CropScaled(img image.Image, rect image.Rectangle, rows int) (*image.NRGBA, float64, error) {
	bounds := img.Bounds()
	rect = rect.Canon().Intersect(bounds)
	if rect.Empty() {
		return nil, 0, fmt.Errorf("crop region outside image bounds (%d,%d)-(%d,%d)",
			bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}

	cropped := imaging.Crop(img, rect)
	if rows <= 0 || rows == rect.Dy() {
		return cropped, 1, nil
	}

	scale := float64(rows) / float64(rect.Dy())
	width := int(math.Max(1, math.Round(float64(rect.Dx())*scale)))
	return imaging.Resize(cropped, width, rows, imaging.Linear), scale, nil
}

// ScaleRect maps a rectangle found in a scaled crop back into the frame the
// crop was taken from.
func ScaleRect(r image.Rectangle, scale float64, origin image.Point) image.Rectangle {
	if scale <= 0 {
		scale = 1
	}
	conv := func(v int) int { return int(math.Round(float64(v) / scale)) }
	return image.Rect(conv(r.Min.X), conv(r.Min.Y), conv(r.Max.X), conv(r.Max.Y)).Add(origin)
}
