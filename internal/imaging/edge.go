package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// EdgeOptions controls how a camera frame is reduced to a binary edge mask.
type EdgeOptions struct {
	// GradientScale multiplies the raw horizontal Sobel response before it
	// is shifted around mid-gray. 0.25 maps the largest possible 3x3
	// response (4*255) onto the full 8-bit range.
	GradientScale float64 `json:"gradient_scale"`

	// Threshold is the 8-bit cutoff; only pixels strictly brighter than it
	// become edge pixels.
	Threshold uint8 `json:"threshold"`

	// HorizonFraction is the share of rows, counted from the top, that can
	// never contain rail and is cleared.
	HorizonFraction float64 `json:"horizon_fraction"`

	// WedgeFraction is the width, as a share of the frame width, of the two
	// triangular dead zones at the bottom corners.
	WedgeFraction float64 `json:"wedge_fraction"`
}

// DefaultEdgeOptions returns the settings tuned for the tram camera.
func DefaultEdgeOptions() EdgeOptions {
	return EdgeOptions{
		GradientScale:   0.25,
		Threshold:       200,
		HorizonFraction: 0.5,
		WedgeFraction:   0.25,
	}
}

// sobelX responds to dark-to-bright transitions from left to right, which is
// how the inner rail edge appears on both rails.
func sobelX(scale float64) *convolution.Kernel {
	k := convolution.NewKernel(3, 3)
	copy(k.Matrix, []float64{
		-1, 0, 1,
		-2, 0, 2,
		-1, 0, 1,
	})
	for i := range k.Matrix {
		k.Matrix[i] *= scale
	}
	return k
}

// EdgeMask converts a color frame into a binary edge mask.
//
// The mask has the same dimensions as img, with its origin moved to (0,0).
// Edge pixels are 255, everything else is 0.
//
// # Pipeline
//
//  1. Grayscale conversion (imaging.Grayscale).
//  2. Horizontal Sobel gradient, scaled and biased by 128 so that rising
//     edges land in the upper half of the 8-bit range and falling edges are
//     clipped away (bild convolution).
//  3. Threshold strictly above opts.Threshold (bild segment).
//  4. Dead zones cleared with ApplyDeadZones.
//
// An empty image is rejected with an error; callers should skip the frame.
func EdgeMask(img image.Image, opts EdgeOptions) (*image.Gray, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("failed to build edge mask: empty frame")
	}
	if opts.GradientScale <= 0 {
		return nil, fmt.Errorf("failed to build edge mask: gradient scale must be positive, got %g", opts.GradientScale)
	}

	gray := imaging.Grayscale(img)
	grad := convolution.Convolve(gray, sobelX(opts.GradientScale), &convolution.Options{
		Bias:      128,
		KeepAlpha: true,
	})

	// bild treats fully transparent black as white when thresholding.
	for i := 3; i < len(grad.Pix); i += 4 {
		grad.Pix[i] = 0xFF
	}

	var mask *image.Gray
	if opts.Threshold == 255 {
		mask = image.NewGray(grad.Bounds())
	} else {
		mask = segment.Threshold(grad, opts.Threshold+1)
	}

	ApplyDeadZones(mask, opts.HorizonFraction, opts.WedgeFraction)
	return mask, nil
}

// CountEdgePixels returns how many pixels of mask are set.
func CountEdgePixels(mask *image.Gray) int {
	n := 0
	for _, v := range mask.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// EdgeMaskResult contains an edge mask encoded as base64 PNG.
type EdgeMaskResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	EdgePixels  int    `json:"edge_pixels"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodeEdgeMask packages a mask for transport to a client.
func EncodeEdgeMask(mask *image.Gray) (*EdgeMaskResult, error) {
	encoded, err := EncodePNGBase64(mask)
	if err != nil {
		return nil, err
	}
	b := mask.Bounds()
	return &EdgeMaskResult{
		Width:       b.Dx(),
		Height:      b.Dy(),
		EdgePixels:  CountEdgePixels(mask),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

// EncodePNGBase64 encodes img as PNG and returns it base64 encoded.
func EncodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
