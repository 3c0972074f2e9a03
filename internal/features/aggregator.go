package features

import (
	"fmt"
	"slices"

	"github.com/ironsheep/tram-track-mcp/internal/detection"
	"github.com/ironsheep/tram-track-mcp/internal/geometry"
)

// Config holds the staleness settings shared by all feature kinds.
type Config struct {
	// ExpiryFrames is the largest frame gap to the last success for which
	// a fallback is still granted.
	ExpiryFrames int `json:"expiry_frames"`
	// AgeBudget is the number of fallbacks granted after one success.
	AgeBudget int `json:"age_budget"`
}

// DefaultConfig allows five frames of fallback.
func DefaultConfig() Config {
	return Config{ExpiryFrames: 5, AgeBudget: 5}
}

// Validate rejects negative windows.
func (c Config) Validate() error {
	if c.ExpiryFrames < 0 {
		return fmt.Errorf("expiry frames must not be negative, got %d", c.ExpiryFrames)
	}
	if c.AgeBudget < 0 {
		return fmt.Errorf("age budget must not be negative, got %d", c.AgeBudget)
	}
	return nil
}

// TrackPair is the two rails grown in one frame.
type TrackPair struct {
	Left  []geometry.Point
	Right []geometry.Point
}

func (p TrackPair) clone() TrackPair {
	return TrackPair{Left: slices.Clone(p.Left), Right: slices.Clone(p.Right)}
}

// Observation is what the detectors produced for a single frame.
type Observation struct {
	// Tracks is nil when no rail pair was found.
	Tracks *TrackPair
	// Tram is nil when no tram was found.
	Tram *detection.Bounds
	// Pedestrians is empty when nobody was found.
	Pedestrians []detection.Bounds

	TramDisabled        bool
	PedestriansDisabled bool
}

// FrameFeatures is the merged per-frame record handed to presentation.
// Empty tracks mean no track is known for the frame.
type FrameFeatures struct {
	Frame int `json:"frame"`

	Left        []geometry.Point `json:"left_track"`
	Right       []geometry.Point `json:"right_track"`
	TrackStatus Status           `json:"track_status"`
	// TrackAge is the number of frames since the tracks were last
	// detected, -1 when they never were or were lost.
	TrackAge int `json:"track_age"`

	Tram       *detection.Bounds `json:"tram,omitempty"`
	TramStatus Status            `json:"tram_status"`

	Pedestrians      []detection.Bounds `json:"pedestrians"`
	PedestrianStatus Status             `json:"pedestrian_status"`
}

// Aggregator carries features across frames. It is not safe for concurrent
// use; a session owns exactly one.
type Aggregator struct {
	tracks      *Tracker[TrackPair]
	tram        *Tracker[detection.Bounds]
	pedestrians *Tracker[[]detection.Bounds]
}

// NewAggregator creates an aggregator after validating cfg.
func NewAggregator(cfg Config) (*Aggregator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid feature config: %w", err)
	}
	return &Aggregator{
		tracks:      NewTracker[TrackPair](cfg.ExpiryFrames, cfg.AgeBudget),
		tram:        NewTracker[detection.Bounds](cfg.ExpiryFrames, cfg.AgeBudget),
		pedestrians: NewTracker[[]detection.Bounds](cfg.ExpiryFrames, cfg.AgeBudget),
	}, nil
}

// Update merges the observation for frame with what is remembered. The
// three feature kinds are handled independently. Remembered slices are
// copies, so callers may modify both obs and the returned record.
func (a *Aggregator) Update(frame int, obs Observation) FrameFeatures {
	out := FrameFeatures{
		Frame:       frame,
		Left:        []geometry.Point{},
		Right:       []geometry.Point{},
		Pedestrians: []detection.Bounds{},
	}

	switch {
	case obs.Tracks != nil:
		a.tracks.Succeed(frame, obs.Tracks.clone())
		out.Left, out.Right = obs.Tracks.Left, obs.Tracks.Right
		out.TrackStatus = StatusFresh
	default:
		if pair, err := a.tracks.Fallback(frame); err == nil {
			pair = pair.clone()
			out.Left, out.Right = pair.Left, pair.Right
			out.TrackStatus = StatusStale
		} else {
			out.TrackStatus = StatusLost
		}
	}
	out.TrackAge = a.tracks.Age(frame)

	switch {
	case obs.TramDisabled:
		out.TramStatus = StatusDisabled
	case obs.Tram != nil:
		a.tram.Succeed(frame, *obs.Tram)
		tram := *obs.Tram
		out.Tram = &tram
		out.TramStatus = StatusFresh
	default:
		if tram, err := a.tram.Fallback(frame); err == nil {
			out.Tram = &tram
			out.TramStatus = StatusStale
		} else {
			out.TramStatus = StatusLost
		}
	}

	switch {
	case obs.PedestriansDisabled:
		out.PedestrianStatus = StatusDisabled
	case len(obs.Pedestrians) > 0:
		a.pedestrians.Succeed(frame, slices.Clone(obs.Pedestrians))
		out.Pedestrians = obs.Pedestrians
		out.PedestrianStatus = StatusFresh
	default:
		if peds, err := a.pedestrians.Fallback(frame); err == nil {
			out.Pedestrians = slices.Clone(peds)
			out.PedestrianStatus = StatusStale
		} else {
			out.PedestrianStatus = StatusLost
		}
	}

	return out
}

// Reset forgets every remembered feature.
func (a *Aggregator) Reset() {
	a.tracks.Reset()
	a.tram.Reset()
	a.pedestrians.Reset()
}
