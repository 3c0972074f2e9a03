package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/tram-track-mcp/internal/detection"
	"github.com/ironsheep/tram-track-mcp/internal/geometry"
	"github.com/ironsheep/tram-track-mcp/internal/imaging"
	"github.com/ironsheep/tram-track-mcp/internal/log"
)

// StampReader reads the text inside region of img.
type StampReader interface {
	Read(img image.Image, region image.Rectangle) (string, error)
}

// Option configures a Processor.
type Option func(*Processor)

// WithTramClassifier enables tram detection with c.
func WithTramClassifier(c detection.Classifier) Option {
	return func(p *Processor) {
		p.tramClassifier = c
	}
}

// WithPedestrianClassifier enables pedestrian detection with c.
func WithPedestrianClassifier(c detection.Classifier) Option {
	return func(p *Processor) {
		p.pedestrianClassifier = c
	}
}

// WithStampReader enables reading of the camera's date and time stamp.
func WithStampReader(r StampReader) Option {
	return func(p *Processor) {
		p.stamps = r
	}
}

// Processor runs the detection chain on single frames. It keeps no state
// between frames and is safe for concurrent use as long as its classifiers
// are.
type Processor struct {
	params  Params
	locator *detection.Locator
	grower  *detection.Grower

	tramClassifier       detection.Classifier
	pedestrianClassifier detection.Classifier
	tram                 *detection.TramDetector
	pedestrians          *detection.PedestrianDetector
	stamps               StampReader
}

// NewProcessor validates params and builds a processor. Cascade paths in
// params are loaded unless a classifier was passed as an option.
func NewProcessor(params Params, opts ...Option) (*Processor, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	grower, err := detection.NewGrower(params.Grower)
	if err != nil {
		return nil, err
	}

	p := &Processor{
		params:  params,
		locator: detection.NewLocator(params.Locator),
		grower:  grower,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.tramClassifier == nil && params.TramCascade != "" {
		c, err := detection.NewCascadeClassifier(params.TramCascade)
		if err != nil {
			return nil, fmt.Errorf("failed to load tram cascade: %w", err)
		}
		p.tramClassifier = c
	}
	if p.pedestrianClassifier == nil && params.PedestrianCascade != "" {
		c, err := detection.NewCascadeClassifier(params.PedestrianCascade)
		if err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("failed to load pedestrian cascade: %w", err)
		}
		p.pedestrianClassifier = c
	}

	if p.tramClassifier != nil {
		p.tram = detection.NewTramDetector(p.tramClassifier)
	}
	if p.pedestrianClassifier != nil {
		p.pedestrians = detection.NewPedestrianDetector(params.Pedestrian, p.pedestrianClassifier)
	}
	return p, nil
}

// Params returns the processor's settings.
func (p *Processor) Params() Params {
	return p.params
}

// TramEnabled reports whether a tram classifier is configured.
func (p *Processor) TramEnabled() bool {
	return p.tram != nil
}

// PedestriansEnabled reports whether a pedestrian classifier is configured.
func (p *Processor) PedestriansEnabled() bool {
	return p.pedestrians != nil
}

// Close releases the classifiers.
func (p *Processor) Close() error {
	var errs []error
	if p.tramClassifier != nil {
		errs = append(errs, p.tramClassifier.Close())
	}
	if p.pedestrianClassifier != nil {
		errs = append(errs, p.pedestrianClassifier.Close())
	}
	return errors.Join(errs...)
}

// railResult is the output of the rail half of the chain.
type railResult struct {
	mask       *image.Gray
	segments   []geometry.Segment
	candidates []detection.TrackCandidate
	failure    detection.FailureKind
	left       *detection.GrowResult
	right      *detection.GrowResult
}

// Detect runs the detection chain on img.
//
// Rail preprocessing, tram detection and stamp reading run concurrently.
// Pedestrians are searched afterwards around the rail starts of this frame.
// Finding no rails is not an error; it is reported in FrameResult.Failure.
// Errors are returned for empty frames and failing classifiers, in which
// case the whole frame is abandoned. The context is checked before and
// after the frame, not in the middle of it.
func (p *Processor) Detect(ctx context.Context, img image.Image) (*FrameResult, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyFrame
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	bounds := img.Bounds()

	var (
		rails railResult
		tram  *detection.Bounds
		stamp string
	)
	g := new(errgroup.Group)
	g.Go(func() error {
		var err error
		rails, err = p.detectRails(img)
		return err
	})
	if p.tram != nil {
		g.Go(func() error {
			b, ok, err := p.tram.Detect(img)
			if err != nil {
				return err
			}
			if ok {
				tram = &b
			}
			return nil
		})
	}
	if p.stamps != nil {
		g.Go(func() error {
			stamp = p.readStamp(img)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &FrameResult{
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		Segments:   rails.segments,
		Candidates: rails.candidates,
		Failure:    rails.failure,
		Left:       rails.left,
		Right:      rails.right,
		Tram:       tram,
		Stamp:      stamp,
		Mask:       rails.mask,
	}

	if p.pedestrians != nil {
		var left, right []geometry.Point
		if res.Left != nil && res.Right != nil {
			left, right = res.Left.Track, res.Right.Track
		}
		peds, err := p.pedestrians.Detect(img, left, right)
		if err != nil {
			return nil, err
		}
		res.Pedestrians = peds
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res.ElapsedMS = float64(time.Since(start).Microseconds()) / 1000
	return res, nil
}

// detectRails builds the edge mask and runs segment extraction, rail start
// search and growth.
func (p *Processor) detectRails(img image.Image) (railResult, error) {
	mask, err := imaging.EdgeMask(img, p.params.Edge)
	if err != nil {
		return railResult{}, fmt.Errorf("failed to preprocess frame: %w", err)
	}
	res := railResult{mask: mask}

	res.segments = detection.DetectSegments(mask, p.params.Hough)
	if len(res.segments) == 0 {
		res.failure = detection.FailureNoSegments
		return res, nil
	}

	bounds := mask.Bounds()
	res.candidates = p.locator.Locate(bounds.Dx(), bounds.Dy(), res.segments)
	left, right, kind := detection.SelectRailPair(res.candidates, p.params.SpacingMin, p.params.SpacingMax)
	if kind != detection.FailureNone {
		res.failure = kind
		return res, nil
	}

	l := p.grower.Grow(left.Point, res.segments)
	r := p.grower.Grow(right.Point, res.segments)
	res.left, res.right = &l, &r
	return res, nil
}

// readStamp returns the text of the strongest stamp region. Reading is best
// effort; failures are only logged.
func (p *Processor) readStamp(img image.Image) string {
	regions := detection.LocateStamps(img, p.params.Stamp)
	if len(regions) == 0 {
		return ""
	}
	text, err := p.stamps.Read(img, regions[0].Bounds.Rect())
	if err != nil {
		log.Debug("stamp not readable", "error", err)
		return ""
	}
	return text
}
