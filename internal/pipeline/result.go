package pipeline

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/tram-track-mcp/internal/detection"
	"github.com/ironsheep/tram-track-mcp/internal/features"
	"github.com/ironsheep/tram-track-mcp/internal/geometry"
	"github.com/ironsheep/tram-track-mcp/internal/imaging"
)

// ErrEmptyFrame is returned for frames without pixels. The frame should be
// logged and skipped.
var ErrEmptyFrame = errors.New("empty frame")

// FrameResult is everything known about one processed frame.
type FrameResult struct {
	// Frame is the session frame index, 0 outside a session.
	Frame  int `json:"frame"`
	Width  int `json:"width"`
	Height int `json:"height"`

	Segments   []geometry.Segment         `json:"segments"`
	Candidates []detection.TrackCandidate `json:"candidates"`
	// Failure says why no rail pair was grown; FailureNone when one was.
	Failure detection.FailureKind `json:"failure"`
	Left    *detection.GrowResult `json:"left,omitempty"`
	Right   *detection.GrowResult `json:"right,omitempty"`

	// Tram and Pedestrians are this frame's raw detections. The merged
	// values are in Features.
	Tram        *detection.Bounds  `json:"-"`
	Pedestrians []detection.Bounds `json:"-"`

	Features features.FrameFeatures `json:"features"`

	// Stamp is the camera's burnt-in text, when a reader is configured.
	Stamp     string  `json:"stamp,omitempty"`
	ElapsedMS float64 `json:"elapsed_ms"`

	Mask *image.Gray `json:"-"`
}

// observation converts the raw detections for the aggregator.
func (r *FrameResult) observation(tramEnabled, pedestriansEnabled bool) features.Observation {
	obs := features.Observation{
		Tram:                r.Tram,
		Pedestrians:         r.Pedestrians,
		TramDisabled:        !tramEnabled,
		PedestriansDisabled: !pedestriansEnabled,
	}
	if r.Failure == detection.FailureNone && r.Left != nil && r.Right != nil {
		obs.Tracks = &features.TrackPair{Left: r.Left.Track, Right: r.Right.Track}
	}
	return obs
}

// OverlayData describes the result for imaging.Overlay. Tracks are taken
// from the merged features, so stale tracks are drawn too.
func (r *FrameResult) OverlayData() imaging.OverlayData {
	data := imaging.OverlayData{
		Segments: r.Segments,
		Left:     r.Features.Left,
		Right:    r.Features.Right,
		Caption: fmt.Sprintf("frame %d  tracks %s  tram %s  pedestrians %s",
			r.Frame, r.Features.TrackStatus, r.Features.TramStatus, r.Features.PedestrianStatus),
	}
	for _, c := range r.Candidates {
		data.Candidates = append(data.Candidates, c.Point)
	}
	if r.Features.Tram != nil {
		rect := r.Features.Tram.Rect()
		data.Tram = &rect
	}
	for _, p := range r.Features.Pedestrians {
		data.Pedestrians = append(data.Pedestrians, p.Rect())
	}
	return data
}
