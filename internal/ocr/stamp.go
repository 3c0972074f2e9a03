package ocr

import (
	"errors"
	"fmt"
	"image"
	"regexp"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	imgproc "github.com/ironsheep/tram-track-mcp/internal/imaging"
)

// ErrOCRUnavailable is returned when the binary was built without Tesseract.
var ErrOCRUnavailable = errors.New("OCR support not compiled in (requires cgo on linux)")

// Options configures a StampReader.
type Options struct {
	// Language is the Tesseract language code.
	Language string
	// TessdataDir overrides the location of the language data.
	TessdataDir string
	// Rows is the height stamp crops are scaled to before recognition.
	Rows int
	// Whitelist limits the characters Tesseract may return.
	Whitelist string
}

// DefaultOptions reads English digits and date separators.
func DefaultOptions() Options {
	return Options{
		Language:  "eng",
		Rows:      48,
		Whitelist: "0123456789:./- ",
	}
}

// prepareStamp crops region out of img and turns it into dark text on a
// light background.
func prepareStamp(img image.Image, region image.Rectangle, rows int) (*image.NRGBA, error) {
	crop, _, err := imgproc.CropScaled(img, region, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to crop stamp: %w", err)
	}

	gray := imaging.Grayscale(crop)
	gray = imaging.AdjustContrast(gray, 40)
	if meanBrightness(gray) < 128 {
		gray = imaging.Invert(gray)
	}
	return gray, nil
}

// meanBrightness returns the mean gray level, 0 to 255.
func meanBrightness(img image.Image) float64 {
	hist := imaging.Histogram(img)
	mean := 0.0
	for level, share := range hist {
		mean += float64(level) * share
	}
	return mean
}

var stampPattern = regexp.MustCompile(`\d{2,4}[./-]\d{2}[./-]\d{2,4}\s+\d{2}:\d{2}(:\d{2})?`)

var stampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"2006.01.02 15:04:05",
	"02.01.2006 15:04:05",
	"02-01-2006 15:04:05",
	"02/01/2006 15:04:05",
	"2006-01-02 15:04",
	"02.01.2006 15:04",
	"02/01/2006 15:04",
	"02.01.06 15:04:05",
}

// ocrDigits maps letters Tesseract commonly confuses with digits.
var ocrDigits = strings.NewReplacer("O", "0", "o", "0", "l", "1", "I", "1", "S", "5", "B", "8")

// ParseStamp finds a date and time in recognized stamp text. Day-first
// layouts are preferred over month-first ones, which are not recognized.
func ParseStamp(text string) (time.Time, bool) {
	match := stampPattern.FindString(ocrDigits.Replace(text))
	if match == "" {
		return time.Time{}, false
	}
	match = strings.Join(strings.Fields(match), " ")
	for _, layout := range stampLayouts {
		if t, err := time.Parse(layout, match); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// normalizeStamp returns the canonical form of a parseable stamp and the
// trimmed text otherwise.
func normalizeStamp(text string) string {
	if t, ok := ParseStamp(text); ok {
		return t.Format("2006-01-02 15:04:05")
	}
	return strings.TrimSpace(text)
}
