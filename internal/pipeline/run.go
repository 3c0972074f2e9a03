package pipeline

import (
	"context"
	"errors"
	"io"

	"github.com/ironsheep/tram-track-mcp/internal/source"
)

// FrameHook is called with every successfully processed frame.
type FrameHook func(f source.Frame, res *FrameResult) error

// Run feeds every frame of frames through s and records the outcomes in a
// new report. Frames that cannot be decoded or processed are recorded and
// skipped; they still count towards feature expiry. Run stops at the end of
// the source, when ctx is done and when hook fails.
func Run(ctx context.Context, s *Session, frames source.Frames, hook FrameHook) (*Report, error) {
	rep := NewReport(s.ID)
	for {
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		f, err := frames.Next()
		if errors.Is(err, io.EOF) {
			return rep, nil
		}
		if err != nil {
			rep.Add(s.Skip(err), f.Name, nil, err)
			continue
		}

		res, err := s.Process(ctx, f.Image)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return rep, ctxErr
			}
			rep.Add(s.Frames(), f.Name, nil, err)
			continue
		}
		rep.Add(res.Frame, f.Name, res, nil)

		if hook != nil {
			if err := hook(f, res); err != nil {
				return rep, err
			}
		}
	}
}
