// Package source supplies camera frames in order.
package source

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/ironsheep/tram-track-mcp/internal/imaging"
)

// ErrVideoUnavailable is returned by OpenVideo when the binary was built
// without OpenCV support.
var ErrVideoUnavailable = errors.New("video support not compiled in (build with -tags gocv)")

// Frame is one image of a sequence.
type Frame struct {
	// Index counts frames from 1.
	Index int
	// Name identifies the frame in logs and reports.
	Name  string
	Image image.Image
}

// Frames yields frames until it returns io.EOF.
type Frames interface {
	Next() (Frame, error)
	Close() error
}

// ImageSequence reads the image files of a directory in name order.
type ImageSequence struct {
	dir   string
	files []string
	pos   int
}

// OpenImageSequence lists the frame files in dir. Files with other
// extensions and subdirectories are ignored. A directory without frames is
// an error.
func OpenImageSequence(dir string) (*ImageSequence, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list frames: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !imaging.IsFrameFile(e.Name()) {
			continue
		}
		files = append(files, e.Name())
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no frame files in %s", dir)
	}
	sort.Strings(files)

	return &ImageSequence{dir: dir, files: files}, nil
}

// Len returns the number of frames in the sequence.
func (s *ImageSequence) Len() int {
	return len(s.files)
}

// Next decodes the next file. A file that cannot be decoded is returned as
// an error together with its frame, so callers can log it and go on.
func (s *ImageSequence) Next() (Frame, error) {
	if s.pos >= len(s.files) {
		return Frame{}, io.EOF
	}
	name := s.files[s.pos]
	s.pos++

	frame := Frame{Index: s.pos, Name: name}
	img, err := imaging.OpenFrame(filepath.Join(s.dir, name))
	if err != nil {
		return frame, err
	}
	frame.Image = img
	return frame, nil
}

// Close is a no-op; frames are opened one at a time.
func (s *ImageSequence) Close() error {
	return nil
}

// Open returns an image sequence for a directory and a video reader for
// anything else.
func Open(path string) (Frames, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open frame source: %w", err)
	}
	if info.IsDir() {
		seq, err := OpenImageSequence(path)
		if err != nil {
			return nil, err
		}
		return seq, nil
	}
	v, err := OpenVideo(path)
	if err != nil {
		return nil, err
	}
	return v, nil
}
