package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/tram-track-mcp/internal/geometry"
)

// OverlayData lists what to draw on top of a frame for debugging.
type OverlayData struct {
	Segments    []geometry.Segment
	Candidates  []geometry.Point
	Left        []geometry.Point
	Right       []geometry.Point
	Tram        *image.Rectangle
	Pedestrians []image.Rectangle
	Caption     string
}

// Overlay palette. Hues are spread far enough apart to tell features apart
// on a busy street scene.
var (
	segmentColor    = paletteColor(200, 0.35, 0.55)
	candidateColor  = paletteColor(60, 0.9, 0.9)
	leftTrackColor  = paletteColor(130, 0.9, 0.75)
	rightTrackColor = paletteColor(20, 0.9, 0.65)
	tramColor       = paletteColor(280, 0.8, 0.6)
	pedestrianColor = paletteColor(0, 1.0, 0.55)
	captionColor    = color.RGBA{255, 255, 255, 255}
	captionBg       = color.RGBA{0, 0, 0, 180}
)

func paletteColor(hue, chroma, luminance float64) color.RGBA {
	r, g, b := colorful.Hcl(hue, chroma, luminance).Clamped().RGB255()
	return color.RGBA{r, g, b, 255}
}

// Overlay renders data on a copy of img. The source frame is not modified.
func Overlay(img image.Image, data OverlayData) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Src)

	for _, s := range data.Segments {
		drawLine(out, s.P1, s.P2, segmentColor, 0)
	}
	drawPolyline(out, data.Left, leftTrackColor)
	drawPolyline(out, data.Right, rightTrackColor)
	for _, c := range data.Candidates {
		drawCross(out, c, candidateColor)
	}
	if data.Tram != nil {
		drawRect(out, *data.Tram, tramColor)
	}
	for _, p := range data.Pedestrians {
		drawRect(out, p, pedestrianColor)
	}
	if data.Caption != "" {
		drawLabel(out, 4, 4, data.Caption, captionColor, captionBg)
	}
	return out
}

// OverlayResult contains a rendered debug overlay as base64 PNG.
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodeOverlay renders and encodes an overlay in one step.
func EncodeOverlay(img image.Image, data OverlayData) (*OverlayResult, error) {
	out := Overlay(img, data)
	encoded, err := EncodePNGBase64(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode overlay: %w", err)
	}
	return &OverlayResult{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

func drawPolyline(dst *image.RGBA, pts []geometry.Point, c color.RGBA) {
	for i := 1; i < len(pts); i++ {
		drawLine(dst, pts[i-1], pts[i], c, 1)
	}
	for _, p := range pts {
		drawDot(dst, int(p.X+0.5), int(p.Y+0.5), 2, c)
	}
}

// drawLine draws a Bresenham line, thickened by half pixels on each side.
func drawLine(dst *image.RGBA, a, b geometry.Point, c color.RGBA, half int) {
	x0, y0 := int(a.X+0.5), int(a.Y+0.5)
	x1, y1 := int(b.X+0.5), int(b.Y+0.5)

	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		drawDot(dst, x0, y0, half, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func drawDot(dst *image.RGBA, x, y, half int, c color.RGBA) {
	for yy := y - half; yy <= y+half; yy++ {
		for xx := x - half; xx <= x+half; xx++ {
			if (image.Point{xx, yy}).In(dst.Rect) {
				dst.SetRGBA(xx, yy, c)
			}
		}
	}
}

func drawCross(dst *image.RGBA, p geometry.Point, c color.RGBA) {
	const arm = 6
	drawLine(dst, geometry.Pt(p.X-arm, p.Y), geometry.Pt(p.X+arm, p.Y), c, 0)
	drawLine(dst, geometry.Pt(p.X, p.Y-arm), geometry.Pt(p.X, p.Y+arm), c, 0)
}

func drawRect(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	if r.Empty() {
		return
	}
	minX, minY := float64(r.Min.X), float64(r.Min.Y)
	maxX, maxY := float64(r.Max.X-1), float64(r.Max.Y-1)
	drawLine(dst, geometry.Pt(minX, minY), geometry.Pt(maxX, minY), c, 0)
	drawLine(dst, geometry.Pt(maxX, minY), geometry.Pt(maxX, maxY), c, 0)
	drawLine(dst, geometry.Pt(maxX, maxY), geometry.Pt(minX, maxY), c, 0)
	drawLine(dst, geometry.Pt(minX, maxY), geometry.Pt(minX, minY), c, 0)
}

// drawLabel writes text on a filled box whose top-left corner is (x, y).
func drawLabel(dst *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(fg),
		Face: face,
	}
	width := d.MeasureString(text).Ceil()
	box := image.Rect(x, y, x+width+4, y+face.Height+2)
	draw.Draw(dst, box, image.NewUniform(bg), image.Point{}, draw.Over)

	d.Dot = fixed.P(x+2, y+1+face.Ascent)
	d.DrawString(text)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
