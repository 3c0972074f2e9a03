package detection

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/ironsheep/tram-track-mcp/internal/geometry"
	"github.com/ironsheep/tram-track-mcp/internal/imaging"
)

// ErrClassifierUnavailable is returned when the binary was built without
// OpenCV support.
var ErrClassifierUnavailable = errors.New("cascade classifier support not compiled in (build with -tags gocv)")

// Classifier finds objects of one class in an image.
type Classifier interface {
	Detect(img image.Image) ([]image.Rectangle, error)
	Close() error
}

// PedestrianConfig tunes the pedestrian search.
type PedestrianConfig struct {
	// Rows is the height the search region is scaled to before
	// classification.
	Rows int `json:"rows"`
	// SideFactor widens the region beyond each rail by this many rail
	// spacings.
	SideFactor float64 `json:"side_factor"`
}

// DefaultPedestrianConfig returns the settings used with a full-body cascade.
func DefaultPedestrianConfig() PedestrianConfig {
	return PedestrianConfig{Rows: 190, SideFactor: 2}
}

// PedestrianDetector looks for people close to the track.
type PedestrianDetector struct {
	cfg        PedestrianConfig
	classifier Classifier
}

// NewPedestrianDetector wraps classifier.
func NewPedestrianDetector(cfg PedestrianConfig, classifier Classifier) *PedestrianDetector {
	return &PedestrianDetector{cfg: cfg, classifier: classifier}
}

// SearchRegion returns the columns worth searching given the rail starts.
// With no rails known the whole frame is searched.
func (d *PedestrianDetector) SearchRegion(bounds image.Rectangle, left, right []geometry.Point) image.Rectangle {
	if len(left) == 0 || len(right) == 0 {
		return bounds
	}
	l, r := left[0], right[0]
	if r.X < l.X {
		l, r = r, l
	}
	spacing := l.Dist(r)
	x1 := int(math.Floor(l.X - d.cfg.SideFactor*spacing))
	x2 := int(math.Ceil(r.X + d.cfg.SideFactor*spacing))
	return image.Rect(x1, bounds.Min.Y, x2, bounds.Max.Y).Intersect(bounds)
}

// Detect returns pedestrian boxes in frame coordinates. Boxes lying inside
// another box are dropped.
func (d *PedestrianDetector) Detect(frame image.Image, left, right []geometry.Point) ([]Bounds, error) {
	region := d.SearchRegion(frame.Bounds(), left, right)
	crop, scale, err := imaging.CropScaled(frame, region, d.cfg.Rows)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare pedestrian search region: %w", err)
	}

	found, err := d.classifier.Detect(crop)
	if err != nil {
		return nil, fmt.Errorf("failed to classify pedestrians: %w", err)
	}

	out := make([]Bounds, 0, len(found))
	for _, r := range filterNested(found) {
		out = append(out, BoundsFromRect(imaging.ScaleRect(r, scale, region.Min)))
	}
	return out, nil
}

// filterNested drops rectangles contained in another one. Of identical
// rectangles the first is kept.
func filterNested(rects []image.Rectangle) []image.Rectangle {
	out := make([]image.Rectangle, 0, len(rects))
	for i, r := range rects {
		nested := false
		for j, o := range rects {
			if i == j {
				continue
			}
			if containedIn(BoundsFromRect(r), BoundsFromRect(o)) && (r != o || j < i) {
				nested = true
				break
			}
		}
		if !nested {
			out = append(out, r)
		}
	}
	return out
}

// TramDetector finds the tram body in a frame.
type TramDetector struct {
	classifier Classifier
}

// NewTramDetector wraps classifier.
func NewTramDetector(classifier Classifier) *TramDetector {
	return &TramDetector{classifier: classifier}
}

// Detect returns the largest classifier hit. ok is false when nothing was
// found.
func (d *TramDetector) Detect(frame image.Image) (b Bounds, ok bool, err error) {
	found, err := d.classifier.Detect(frame)
	if err != nil {
		return Bounds{}, false, fmt.Errorf("failed to classify tram: %w", err)
	}
	if len(found) == 0 {
		return Bounds{}, false, nil
	}
	best := BoundsFromRect(found[0])
	for _, r := range found[1:] {
		if c := BoundsFromRect(r); c.Area() > best.Area() {
			best = c
		}
	}
	return best, true, nil
}
