package detection

import (
	"image"

	"github.com/ironsheep/tram-track-mcp/internal/geometry"
)

// maskWithColumns sets the given columns between rows y0 (inclusive) and y1
// (exclusive).
func maskWithColumns(width, height, y0, y1 int, cols ...int) *image.Gray {
	m := image.NewGray(image.Rect(0, 0, width, height))
	for _, x := range cols {
		for y := y0; y < y1; y++ {
			m.Pix[y*m.Stride+x] = 255
		}
	}
	return m
}

// bentRails returns two rails that run straight up from the bottom for 170
// pixels and then turn sharply outwards.
func bentRails() []geometry.Segment {
	return []geometry.Segment{
		geometry.Seg(200, 470, 200, 300),
		geometry.Seg(200, 300, 50, 300),
		geometry.Seg(340, 470, 340, 300),
		geometry.Seg(340, 300, 490, 300),
	}
}
