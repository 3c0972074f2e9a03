package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/tram-track-mcp/internal/detection"
	"github.com/ironsheep/tram-track-mcp/internal/features"
	"github.com/ironsheep/tram-track-mcp/internal/geometry"
)

// FrameRecord is the condensed outcome of one frame.
type FrameRecord struct {
	Frame  int    `json:"frame"`
	Source string `json:"source"`
	Error  string `json:"error,omitempty"`

	Failure     detection.FailureKind `json:"failure"`
	TrackStatus features.Status       `json:"track_status"`
	LeftPoints  int                   `json:"left_points"`
	RightPoints int                   `json:"right_points"`
	LeftLength  float64               `json:"left_length"`
	RightLength float64               `json:"right_length"`
	// Spacing is the distance between the rail starts of a fresh pair.
	Spacing float64 `json:"spacing,omitempty"`

	TramStatus  features.Status `json:"tram_status"`
	Pedestrians int             `json:"pedestrians"`
	Stamp       string          `json:"stamp,omitempty"`
	ElapsedMS   float64         `json:"elapsed_ms"`
}

// Summary aggregates a report.
type Summary struct {
	Frames int `json:"frames"`
	Errors int `json:"errors"`

	Fresh int `json:"fresh"`
	Stale int `json:"stale"`
	Lost  int `json:"lost"`

	Failures map[string]int `json:"failures"`

	MeanTrackLength float64 `json:"mean_track_length"`
	MeanSpacing     float64 `json:"mean_spacing"`
	SpacingStdDev   float64 `json:"spacing_std_dev"`
	MeanElapsedMS   float64 `json:"mean_elapsed_ms"`
}

// Report collects the frames of one session.
type Report struct {
	SessionID string        `json:"session_id"`
	Started   time.Time     `json:"started"`
	Records   []FrameRecord `json:"frames"`
}

// NewReport creates an empty report for a session.
func NewReport(sessionID string) *Report {
	return &Report{SessionID: sessionID, Started: time.Now(), Records: []FrameRecord{}}
}

// Add records the outcome of frame. res is ignored when err is set.
func (r *Report) Add(frame int, source string, res *FrameResult, err error) {
	rec := FrameRecord{Frame: frame, Source: source}
	if err != nil || res == nil {
		if err != nil {
			rec.Error = err.Error()
		}
		rec.TrackStatus = features.StatusLost
		rec.TramStatus = features.StatusLost
		r.Records = append(r.Records, rec)
		return
	}

	ff := res.Features
	rec.Failure = res.Failure
	rec.TrackStatus = ff.TrackStatus
	rec.LeftPoints, rec.RightPoints = len(ff.Left), len(ff.Right)
	rec.LeftLength = geometry.PolylineLength(ff.Left)
	rec.RightLength = geometry.PolylineLength(ff.Right)
	if ff.TrackStatus == features.StatusFresh && len(ff.Left) > 0 && len(ff.Right) > 0 {
		rec.Spacing = ff.Left[0].Dist(ff.Right[0])
	}
	rec.TramStatus = ff.TramStatus
	rec.Pedestrians = len(ff.Pedestrians)
	rec.Stamp = res.Stamp
	rec.ElapsedMS = res.ElapsedMS
	r.Records = append(r.Records, rec)
}

// Summary computes totals and means over the recorded frames. Track
// lengths and spacings only count frames with freshly detected tracks.
func (r *Report) Summary() Summary {
	s := Summary{Frames: len(r.Records), Failures: map[string]int{}}

	var lengths, spacings, elapsed []float64
	for _, rec := range r.Records {
		if rec.Error != "" {
			s.Errors++
			continue
		}
		elapsed = append(elapsed, rec.ElapsedMS)
		if rec.Failure != detection.FailureNone {
			s.Failures[rec.Failure.String()]++
		}
		switch rec.TrackStatus {
		case features.StatusFresh:
			s.Fresh++
			lengths = append(lengths, rec.LeftLength, rec.RightLength)
			spacings = append(spacings, rec.Spacing)
		case features.StatusStale:
			s.Stale++
		case features.StatusLost:
			s.Lost++
		}
	}

	if len(lengths) > 0 {
		s.MeanTrackLength = stat.Mean(lengths, nil)
	}
	if len(spacings) > 1 {
		s.MeanSpacing, s.SpacingStdDev = stat.MeanStdDev(spacings, nil)
	} else if len(spacings) == 1 {
		s.MeanSpacing = spacings[0]
	}
	if len(elapsed) > 0 {
		s.MeanElapsedMS = stat.Mean(elapsed, nil)
	}
	return s
}

// WriteJSON writes the records and the summary as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	out := struct {
		*Report
		Summary Summary `json:"summary"`
	}{Report: r, Summary: r.Summary()}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
