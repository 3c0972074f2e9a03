package detection

import (
	"math"

	"github.com/ironsheep/tram-track-mcp/internal/geometry"
)

// RailCount is the number of rails a track consists of.
const RailCount = 2

// TrackCandidate is a possible rail start on the scan row.
type TrackCandidate struct {
	Point geometry.Point `json:"point"`
	// Strength is the number of segments crossing the probe at Point.
	Strength int `json:"strength"`
}

// LocatorConfig tunes the rail start scan.
type LocatorConfig struct {
	// WindowWidth is the width of the horizontal probe, in pixels.
	WindowWidth float64 `json:"window_width"`
	// ScanRowOffset is the distance of the scan row from the bottom of the
	// frame.
	ScanRowOffset int `json:"scan_row_offset"`
}

// DefaultLocatorConfig returns the scan settings for a 15 px rail.
func DefaultLocatorConfig() LocatorConfig {
	return LocatorConfig{
		WindowWidth:   15,
		ScanRowOffset: 10,
	}
}

// Locator finds up to RailCount rail starts near the bottom of a frame.
type Locator struct {
	cfg LocatorConfig
}

// NewLocator creates a locator.
func NewLocator(cfg LocatorConfig) *Locator {
	return &Locator{cfg: cfg}
}

// Locate slides a probe of WindowWidth from right to left along the scan
// row and counts the segments crossing it at every position.
//
// A position within WindowWidth of an existing candidate refines it (the
// strictly stronger one wins, so ties keep the first position seen). Other
// positions are added while there is room, or replace the weakest candidate
// when strictly stronger. Afterwards candidates with an odd strength are
// moved half a window to the left. Candidates are returned in the order they
// were found; never more than RailCount.
func (l *Locator) Locate(width, height int, segs []geometry.Segment) []TrackCandidate {
	if len(segs) == 0 || width <= 0 || height <= 0 {
		return nil
	}

	half := math.Floor(l.cfg.WindowWidth / 2)
	y := float64(height - l.cfg.ScanRowOffset)
	cands := make([]TrackCandidate, 0, RailCount)

	for x := float64(width) - half; x > half; x-- {
		probe := geometry.Seg(x+half, y, x-half, y)
		count := 0
		for _, s := range segs {
			if probe.Intersects(s) {
				count++
			}
		}
		if count == 0 {
			continue
		}
		found := TrackCandidate{Point: geometry.Pt(x, y), Strength: count}

		refined := false
		for i := range cands {
			if math.Abs(x-cands[i].Point.X) < l.cfg.WindowWidth {
				if count > cands[i].Strength {
					cands[i] = found
				}
				refined = true
				break
			}
		}
		if refined {
			continue
		}

		if len(cands) < RailCount {
			cands = append(cands, found)
			continue
		}
		weakest := 0
		for i := range cands {
			if cands[i].Strength < cands[weakest].Strength {
				weakest = i
			}
		}
		if count > cands[weakest].Strength {
			cands[weakest] = found
		}
	}

	for i := range cands {
		if cands[i].Strength%2 == 1 {
			cands[i].Point.X -= half
		}
	}
	return cands
}

// SelectRailPair checks that the candidates describe two rails with a gauge
// strictly between minSpacing and maxSpacing. The left rail is the one with
// the smaller x.
func SelectRailPair(cands []TrackCandidate, minSpacing, maxSpacing float64) (left, right TrackCandidate, kind FailureKind) {
	if len(cands) == 0 {
		return left, right, FailureNoCandidates
	}
	if len(cands) != RailCount {
		return left, right, FailureRailPair
	}
	left, right = cands[0], cands[1]
	if right.Point.X < left.Point.X {
		left, right = right, left
	}
	spacing := right.Point.X - left.Point.X
	if spacing <= minSpacing || spacing >= maxSpacing {
		return TrackCandidate{}, TrackCandidate{}, FailureRailPair
	}
	return left, right, FailureNone
}
