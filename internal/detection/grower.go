package detection

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ironsheep/tram-track-mcp/internal/geometry"
)

// GrowerConfig tunes track growth.
type GrowerConfig struct {
	// GateWidth is the width of the search gate, roughly one rail.
	GateWidth float64 `json:"gate_width"`
	// MinSegmentLength is the first gate length tried at every step.
	MinSegmentLength float64 `json:"min_segment_length"`
	// SegmentLengthStep is added to the gate length while the best overlap
	// keeps improving.
	SegmentLengthStep float64 `json:"segment_length_step"`
	// AngleMin and AngleMax bound the sweep around straight ahead, in
	// radians. The sweep covers AngleMin + i*AngleStep below AngleMax; when
	// both bounds are equal only that single angle is tried.
	AngleMin  float64 `json:"angle_min"`
	AngleMax  float64 `json:"angle_max"`
	AngleStep float64 `json:"angle_step"`
	// MaxTurnAngle is the largest direction change allowed between two
	// consecutive steps.
	MaxTurnAngle float64 `json:"max_turn_angle"`
}

// DefaultGrowerConfig returns the growth settings tuned for the tram camera.
func DefaultGrowerConfig() GrowerConfig {
	return GrowerConfig{
		GateWidth:         15,
		MinSegmentLength:  25,
		SegmentLengthStep: 10,
		AngleMin:          -math.Pi / 4,
		AngleMax:          math.Pi / 4,
		AngleStep:         math.Pi / 256,
		MaxTurnAngle:      math.Pi / 6,
	}
}

// Validate rejects settings that would make growth meaningless or endless.
func (c GrowerConfig) Validate() error {
	switch {
	case c.GateWidth <= 0:
		return fmt.Errorf("gate width must be positive, got %g", c.GateWidth)
	case c.MinSegmentLength < 0:
		return fmt.Errorf("minimum segment length must not be negative, got %g", c.MinSegmentLength)
	case c.SegmentLengthStep <= 0:
		return fmt.Errorf("segment length step must be positive, got %g", c.SegmentLengthStep)
	case c.AngleStep <= 0:
		return fmt.Errorf("angle step must be positive, got %g", c.AngleStep)
	case c.AngleMin > c.AngleMax:
		return fmt.Errorf("angle range is inverted: [%g, %g]", c.AngleMin, c.AngleMax)
	case c.AngleMin <= -math.Pi/2 || c.AngleMax >= math.Pi/2:
		return fmt.Errorf("angle range [%g, %g] must stay within (-pi/2, pi/2)", c.AngleMin, c.AngleMax)
	case c.MaxTurnAngle < 0:
		return fmt.Errorf("maximum turn angle must not be negative, got %g", c.MaxTurnAngle)
	}
	return nil
}

// GrowResult is a grown track and why growth ended.
type GrowResult struct {
	Track  []geometry.Point `json:"track"`
	Reason StopReason       `json:"stop_reason"`
	// Gates are the accepted gates, one per step, for debugging.
	Gates []Gate `json:"-"`
}

// Grower extends a rail from its seed by greedy local search.
type Grower struct {
	cfg GrowerConfig
}

// NewGrower creates a grower after validating cfg.
func NewGrower(cfg GrowerConfig) (*Grower, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid grower config: %w", err)
	}
	return &Grower{cfg: cfg}, nil
}

// Config returns the grower's settings.
func (g *Grower) Config() GrowerConfig {
	return g.cfg
}

// step is the best gate found from one point.
type step struct {
	gate    Gate
	overlap float64
}

// Grow builds a track starting at seed.
//
// Every step picks the gate with the highest overlap score, extending the
// gate length while that improves the best score. The step ends at the
// gate's far end. Growth stops when no gate overlaps any segment or when
// the step would turn by more than MaxTurnAngle; in the latter case the
// step is dropped. The track always contains the seed.
func (g *Grower) Grow(seed geometry.Point, segs []geometry.Segment) GrowResult {
	res := GrowResult{Track: []geometry.Point{seed}}

	for {
		cur := res.Track[len(res.Track)-1]
		best := g.bestStep(cur, segs)
		if best.overlap <= 0 {
			res.Reason = StopNoOverlap
			return res
		}

		next := best.gate.FarEnd()
		if n := len(res.Track); n >= 2 {
			if TurnAngle(res.Track[n-2], cur, next) > g.cfg.MaxTurnAngle {
				res.Reason = StopTurnLimit
				return res
			}
		}

		res.Track = append(res.Track, next)
		res.Gates = append(res.Gates, best.gate)
	}
}

// bestStep searches gate lengths and angles from cur. For each length the
// whole angle sweep is scored; the search stops at the first length that
// does not beat the best score found so far. Ties keep the earlier gate.
func (g *Grower) bestStep(cur geometry.Point, segs []geometry.Segment) step {
	var best step
	angles := g.angles()

	for length := g.cfg.MinSegmentLength; ; length += g.cfg.SegmentLengthStep {
		improved := false
		for _, angle := range angles {
			gate := NewGate(cur, angle, length, g.cfg.GateWidth)
			if score := gate.Score(segs); score > best.overlap {
				best = step{gate: gate, overlap: score}
				improved = true
			}
		}
		if !improved {
			return best
		}
	}
}

func (g *Grower) angles() []float64 {
	if g.cfg.AngleMin == g.cfg.AngleMax {
		return []float64{g.cfg.AngleMin}
	}
	out := make([]float64, 0, int((g.cfg.AngleMax-g.cfg.AngleMin)/g.cfg.AngleStep)+1)
	for i := 0; ; i++ {
		a := g.cfg.AngleMin + float64(i)*g.cfg.AngleStep
		if a >= g.cfg.AngleMax {
			return out
		}
		out = append(out, a)
	}
}

// TurnAngle returns the absolute change of direction, in radians within
// [0, pi], between the step prev→cur and the step cur→next.
func TurnAngle(prev, cur, next geometry.Point) float64 {
	d1 := r2.Sub(cur.Vec(), prev.Vec())
	d2 := r2.Sub(next.Vec(), cur.Vec())
	return math.Abs(math.Atan2(r2.Cross(d1, d2), r2.Dot(d1, d2)))
}
