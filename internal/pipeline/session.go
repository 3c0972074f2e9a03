package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/tram-track-mcp/internal/detection"
	"github.com/ironsheep/tram-track-mcp/internal/features"
	"github.com/ironsheep/tram-track-mcp/internal/log"
)

// Session processes the frames of one video in order.
type Session struct {
	ID      string
	Created time.Time

	proc   *Processor
	logger *slog.Logger

	mu    sync.Mutex
	agg   *features.Aggregator
	frame int
}

// NewSession starts a session with a fresh identifier.
func NewSession(proc *Processor) (*Session, error) {
	agg, err := features.NewAggregator(proc.Params().Features)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	s := &Session{
		ID:      id,
		Created: time.Now(),
		proc:    proc,
		logger:  log.With("session", id),
		agg:     agg,
	}
	s.logger.Info("session started")
	return s, nil
}

// Processor returns the processor the session runs.
func (s *Session) Processor() *Processor {
	return s.proc
}

// Frames returns the index of the last frame handed to Process.
func (s *Session) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

// Process runs the next frame and merges its detections with the session
// history. Every call advances the frame index, including calls that fail,
// so a skipped frame counts towards feature expiry.
func (s *Session) Process(ctx context.Context, img image.Image) (*FrameResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frame++
	res, err := s.proc.Detect(ctx, img)
	if err != nil {
		s.logger.Warn("frame skipped", "frame", s.frame, "error", err)
		return nil, fmt.Errorf("failed to process frame %d: %w", s.frame, err)
	}

	res.Frame = s.frame
	res.Features = s.agg.Update(s.frame, res.observation(s.proc.TramEnabled(), s.proc.PedestriansEnabled()))

	if res.Failure != detection.FailureNone {
		s.logger.Debug("no rail pair", "frame", s.frame, "failure", res.Failure,
			"segments", len(res.Segments), "candidates", len(res.Candidates))
	}
	if res.Features.TrackStatus == features.StatusLost {
		s.logger.Debug("tracks lost", "frame", s.frame)
	}
	return res, nil
}

// Skip advances the frame index for a frame that could not be read and
// returns the index it was given.
func (s *Session) Skip(reason error) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frame++
	s.logger.Warn("frame skipped", "frame", s.frame, "error", reason)
	return s.frame
}

// Reset forgets the frame history, as when a new video is opened.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agg.Reset()
	s.frame = 0
	s.logger.Info("session reset")
}
