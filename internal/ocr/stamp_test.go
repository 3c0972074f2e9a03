package ocr

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// strokeImage fills a w x h image with bg and draws vertical strokes of fg
// every fourth column inside the middle third.
func strokeImage(w, h int, bg, fg uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := bg
			if y >= h/3 && y < 2*h/3 && x%4 == 0 {
				v = fg
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func TestPrepareStamp_DarkBackgroundIsInverted(t *testing.T) {
	img := strokeImage(200, 50, 30, 250)

	prepared, err := prepareStamp(img, img.Bounds(), 48)
	require.NoError(t, err)

	assert.Equal(t, 192, prepared.Bounds().Dx())
	assert.Equal(t, 48, prepared.Bounds().Dy())
	assert.Greater(t, meanBrightness(prepared), 128.0)

	corner := prepared.NRGBAAt(1, 1)
	assert.Equal(t, uint8(255), corner.R, "background should turn white")
}

func TestPrepareStamp_LightBackgroundKept(t *testing.T) {
	img := strokeImage(100, 24, 220, 10)

	prepared, err := prepareStamp(img, image.Rect(0, 0, 100, 24), 48)
	require.NoError(t, err)

	assert.Equal(t, 48, prepared.Bounds().Dy())
	assert.Greater(t, meanBrightness(prepared), 128.0)
	assert.Equal(t, uint8(255), prepared.NRGBAAt(1, 1).R)
}

func TestPrepareStamp_RegionOutsideFrame(t *testing.T) {
	img := strokeImage(50, 50, 0, 255)

	_, err := prepareStamp(img, image.Rect(100, 100, 150, 120), 48)
	assert.Error(t, err)
}

func TestParseStamp(t *testing.T) {
	want := time.Date(2021, 3, 14, 9, 26, 53, 0, time.UTC)
	noSeconds := time.Date(2021, 3, 14, 9, 26, 0, 0, time.UTC)

	tests := []struct {
		name string
		text string
		want time.Time
		ok   bool
	}{
		{"iso", "2021-03-14 09:26:53", want, true},
		{"slashes", "2021/03/14 09:26:53", want, true},
		{"day first", "14.03.2021 09:26:53", want, true},
		{"day first dashes", "14-03-2021 09:26:53", want, true},
		{"surrounding text", "CAM1 14.03.2021 09:26 ", noSeconds, true},
		{"letter confusion", "2O21-O3-14 O9:26:53", want, true},
		{"double space", "2021-03-14  09:26:53", want, true},
		{"no date", "tram line 7", time.Time{}, false},
		{"invalid date", "99.99.2021 10:00:00", time.Time{}, false},
		{"empty", "", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseStamp(tt.text)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeStamp(t *testing.T) {
	assert.Equal(t, "2021-03-14 09:26:53", normalizeStamp("  14.03.2021 09:26:53 \n"))
	assert.Equal(t, "no stamp", normalizeStamp(" no stamp \n"))
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, "eng", opts.Language)
	assert.Positive(t, opts.Rows)
	assert.Contains(t, opts.Whitelist, ":")
}
