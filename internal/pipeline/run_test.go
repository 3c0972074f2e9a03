package pipeline

import (
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/tram-track-mcp/internal/features"
	"github.com/ironsheep/tram-track-mcp/internal/source"
)

// scriptedFrames replays a fixed list of frames and read errors.
type scriptedFrames struct {
	frames []source.Frame
	errs   []error
	pos    int
	closed bool
}

func (s *scriptedFrames) Next() (source.Frame, error) {
	if s.pos >= len(s.frames) {
		return source.Frame{}, io.EOF
	}
	i := s.pos
	s.pos++
	return s.frames[i], s.errs[i]
}

func (s *scriptedFrames) Close() error {
	s.closed = true
	return nil
}

func TestRun_RecordsEveryFrame(t *testing.T) {
	s := newTestSession(t)
	readErr := errors.New("truncated file")
	frames := &scriptedFrames{
		frames: []source.Frame{
			{Index: 1, Name: "001.png", Image: railFrame()},
			{Index: 2, Name: "002.png"},
			{Index: 3, Name: "003.png", Image: darkFrame()},
			{Index: 4, Name: "004.png", Image: image.NewRGBA(image.Rect(0, 0, 0, 0))},
		},
		errs: []error{nil, readErr, nil, nil},
	}

	var hooked []string
	rep, err := Run(context.Background(), s, frames, func(f source.Frame, res *FrameResult) error {
		hooked = append(hooked, f.Name)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, rep.Records, 4)
	assert.Equal(t, s.ID, rep.SessionID)
	assert.Equal(t, []string{"001.png", "003.png"}, hooked)
	assert.Equal(t, 4, s.Frames())

	assert.Equal(t, features.StatusFresh, rep.Records[0].TrackStatus)
	assert.Equal(t, 2, rep.Records[1].Frame)
	assert.Equal(t, "truncated file", rep.Records[1].Error)
	assert.Equal(t, 3, rep.Records[2].Frame)
	assert.Equal(t, features.StatusStale, rep.Records[2].TrackStatus)
	assert.Equal(t, 4, rep.Records[3].Frame)
	assert.Contains(t, rep.Records[3].Error, ErrEmptyFrame.Error())

	sum := rep.Summary()
	assert.Equal(t, 4, sum.Frames)
	assert.Equal(t, 2, sum.Errors)
}

func TestRun_HookErrorStops(t *testing.T) {
	s := newTestSession(t)
	frames := &scriptedFrames{
		frames: []source.Frame{
			{Index: 1, Name: "a", Image: railFrame()},
			{Index: 2, Name: "b", Image: railFrame()},
		},
		errs: []error{nil, nil},
	}
	stop := errors.New("disk full")

	rep, err := Run(context.Background(), s, frames, func(source.Frame, *FrameResult) error {
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Len(t, rep.Records, 1)
}

func TestRun_Cancelled(t *testing.T) {
	s := newTestSession(t)
	frames := &scriptedFrames{
		frames: []source.Frame{{Index: 1, Name: "a", Image: railFrame()}},
		errs:   []error{nil},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := Run(ctx, s, frames, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rep.Records)
	assert.Equal(t, 0, s.Frames())
}

func TestRun_ImageSequence(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"frame_002.png", "frame_001.png"} {
		f, err := os.Create(filepath.Join(dir, name))
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, railFrame()))
		require.NoError(t, f.Close())
	}

	seq, err := source.OpenImageSequence(dir)
	require.NoError(t, err)
	defer seq.Close()

	rep, err := Run(context.Background(), newTestSession(t), seq, nil)
	require.NoError(t, err)
	require.Len(t, rep.Records, 2)
	assert.Equal(t, "frame_001.png", rep.Records[0].Source)
	assert.Equal(t, features.StatusFresh, rep.Records[1].TrackStatus)
	assert.InDelta(t, 140, rep.Records[1].Spacing, 1)
}

func TestSession_Skip(t *testing.T) {
	s := newTestSession(t)
	assert.Equal(t, 1, s.Skip(errors.New("unreadable")))
	assert.Equal(t, 1, s.Frames())
}
