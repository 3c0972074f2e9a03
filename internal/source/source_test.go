package source

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFrame(t *testing.T, dir, name string, shade uint8) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 8, 6))
	for i := range img.Pix {
		img.Pix[i] = shade
	}
	f, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestImageSequence_Order(t *testing.T) {
	dir := t.TempDir()
	writeFrame(t, dir, "frame_0002.png", 20)
	writeFrame(t, dir, "frame_0001.png", 10)
	writeFrame(t, dir, "frame_0010.png", 30)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0o755))

	seq, err := OpenImageSequence(dir)
	require.NoError(t, err)
	defer seq.Close()
	assert.Equal(t, 3, seq.Len())

	var names []string
	var shades []uint8
	for {
		f, err := seq.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		assert.Equal(t, len(names)+1, f.Index)
		names = append(names, f.Name)
		shades = append(shades, color.GrayModel.Convert(f.Image.At(0, 0)).(color.Gray).Y)
	}
	assert.Equal(t, []string{"frame_0001.png", "frame_0002.png", "frame_0010.png"}, names)
	assert.Equal(t, []uint8{10, 20, 30}, shades)

	_, err = seq.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestImageSequence_BrokenFrame(t *testing.T) {
	dir := t.TempDir()
	writeFrame(t, dir, "a.png", 10)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.png"), []byte("not a png"), 0o644))
	writeFrame(t, dir, "c.png", 30)

	seq, err := OpenImageSequence(dir)
	require.NoError(t, err)

	_, err = seq.Next()
	require.NoError(t, err)

	f, err := seq.Next()
	assert.Error(t, err)
	assert.Equal(t, "b.png", f.Name)
	assert.Nil(t, f.Image)

	f, err = seq.Next()
	require.NoError(t, err)
	assert.Equal(t, "c.png", f.Name)
}

func TestOpenImageSequence_Errors(t *testing.T) {
	_, err := OpenImageSequence(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	_, err = OpenImageSequence(t.TempDir())
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	writeFrame(t, dir, "a.png", 10)

	src, err := Open(dir)
	require.NoError(t, err)
	assert.IsType(t, &ImageSequence{}, src)

	_, err = Open(filepath.Join(dir, "missing.mp4"))
	assert.Error(t, err)
}
