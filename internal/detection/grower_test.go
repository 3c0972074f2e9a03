package detection

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/tram-track-mcp/internal/geometry"
)

func newTestGrower(t *testing.T, mutate func(*GrowerConfig)) *Grower {
	t.Helper()
	cfg := DefaultGrowerConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	g, err := NewGrower(cfg)
	require.NoError(t, err)
	return g
}

func TestGrowerConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*GrowerConfig)
		wantErr bool
	}{
		{"defaults", func(*GrowerConfig) {}, false},
		{"zero minimum length", func(c *GrowerConfig) { c.MinSegmentLength = 0 }, false},
		{"single angle", func(c *GrowerConfig) { c.AngleMin, c.AngleMax = 0, 0 }, false},
		{"zero gate width", func(c *GrowerConfig) { c.GateWidth = 0 }, true},
		{"negative minimum length", func(c *GrowerConfig) { c.MinSegmentLength = -1 }, true},
		{"zero length step", func(c *GrowerConfig) { c.SegmentLengthStep = 0 }, true},
		{"zero angle step", func(c *GrowerConfig) { c.AngleStep = 0 }, true},
		{"inverted range", func(c *GrowerConfig) { c.AngleMin, c.AngleMax = 0.5, -0.5 }, true},
		{"range reaches horizontal", func(c *GrowerConfig) { c.AngleMax = math.Pi / 2 }, true},
		{"negative turn limit", func(c *GrowerConfig) { c.MaxTurnAngle = -0.1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultGrowerConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				_, nerr := NewGrower(cfg)
				assert.Error(t, nerr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGrower_NoSegments(t *testing.T) {
	g := newTestGrower(t, nil)
	seed := geometry.Pt(100, 400)

	res := g.Grow(seed, nil)
	assert.Equal(t, []geometry.Point{seed}, res.Track)
	assert.Equal(t, StopNoOverlap, res.Reason)
	assert.Empty(t, res.Gates)
}

func TestGrower_ZeroLengthGate(t *testing.T) {
	g := newTestGrower(t, func(c *GrowerConfig) { c.MinSegmentLength = 0 })
	seed := geometry.Pt(100, 400)

	res := g.Grow(seed, []geometry.Segment{geometry.Seg(100, 400, 100, 100)})
	assert.Equal(t, []geometry.Point{seed}, res.Track)
	assert.Equal(t, StopNoOverlap, res.Reason)
}

func TestGrower_SingleAngleStraightRail(t *testing.T) {
	g := newTestGrower(t, func(c *GrowerConfig) { c.AngleMin, c.AngleMax = 0, 0 })

	res := g.Grow(geometry.Pt(100, 400), []geometry.Segment{geometry.Seg(100, 150, 100, 410)})

	// The gate grows while coverage improves: 245 px at length 245, 250 px
	// once the rail end is inside at 255, no gain at 265.
	want := []geometry.Point{geometry.Pt(100, 400), geometry.Pt(100, 145)}
	if diff := cmp.Diff(want, res.Track); diff != "" {
		t.Errorf("track mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, StopNoOverlap, res.Reason)
	require.Len(t, res.Gates, 1)
	assert.Equal(t, 255.0, res.Gates[0].Length)
}

func TestGrower_FollowsStraightRail(t *testing.T) {
	g := newTestGrower(t, nil)
	segs := []geometry.Segment{
		geometry.Seg(249, 240, 249, 479),
		geometry.Seg(389, 240, 389, 479),
	}

	res := g.Grow(geometry.Pt(249, 470), segs)

	require.GreaterOrEqual(t, len(res.Track), 2)
	for _, p := range res.Track {
		assert.InDelta(t, 249, p.X, 7.5, "point %s strays from the rail", p)
	}
	assert.Less(t, res.Track[len(res.Track)-1].Y, 300.0)
}

func TestGrower_StopsAtSharpBend(t *testing.T) {
	g := newTestGrower(t, nil)

	res := g.Grow(geometry.Pt(200, 470), bentRails())

	require.Len(t, res.Track, 2)
	assert.Equal(t, StopTurnLimit, res.Reason)
	assert.Equal(t, geometry.Pt(200, 470), res.Track[0])
	for _, p := range res.Track {
		assert.InDelta(t, 200, p.X, 7.5)
		// Nothing of the segment past the bend at (200,300) is kept.
		assert.GreaterOrEqual(t, p.Y, 290.0, "point %s lies past the bend", p)
		assert.GreaterOrEqual(t, p.X, 190.0, "point %s lies past the bend", p)
	}
	last := res.Track[1]
	assert.InDelta(t, 193.56, last.X, 0.01)
	assert.InDelta(t, 295.12, last.Y, 0.01)
}

func TestGrower_TurnLimit(t *testing.T) {
	kink := math.Pi * 40 / 180
	segs := []geometry.Segment{
		geometry.Seg(200, 400, 200, 300),
		geometry.Seg(200, 300, 200+150*math.Sin(kink), 300-150*math.Cos(kink)),
	}

	strict := newTestGrower(t, func(c *GrowerConfig) { c.MaxTurnAngle = math.Pi / 9 })
	res := strict.Grow(geometry.Pt(200, 400), segs)
	assert.Len(t, res.Track, 2)
	assert.Equal(t, StopTurnLimit, res.Reason)

	loose := newTestGrower(t, func(c *GrowerConfig) { c.MaxTurnAngle = math.Pi / 3 })
	res = loose.Grow(geometry.Pt(200, 400), segs)
	assert.Greater(t, len(res.Track), 2)
	assert.Greater(t, res.Track[len(res.Track)-1].X, 230.0)
}

func TestGrower_Deterministic(t *testing.T) {
	g := newTestGrower(t, nil)
	segs := bentRails()

	first := g.Grow(geometry.Pt(340, 470), segs)
	second := g.Grow(geometry.Pt(340, 470), segs)

	if diff := cmp.Diff(first.Track, second.Track); diff != "" {
		t.Errorf("repeated growth differs (-first +second):\n%s", diff)
	}
	assert.Equal(t, first.Reason, second.Reason)
}

func TestGrower_RespectsTurnLimit(t *testing.T) {
	g := newTestGrower(t, nil)
	limit := g.Config().MaxTurnAngle
	r := rand.New(rand.NewPCG(7, 9))

	for trial := 0; trial < 20; trial++ {
		segs := make([]geometry.Segment, 25)
		for i := range segs {
			x, y := 50+r.Float64()*300, 50+r.Float64()*350
			a := (r.Float64() - 0.5) * math.Pi
			l := 20 + r.Float64()*120
			segs[i] = geometry.Seg(x, y, x+l*math.Sin(a), y-l*math.Cos(a))
		}
		seed := geometry.Pt(100+r.Float64()*200, 420)

		res := g.Grow(seed, segs)
		require.NotEmpty(t, res.Track)
		assert.Equal(t, seed, res.Track[0])
		assert.Len(t, res.Gates, len(res.Track)-1)
		for i := 2; i < len(res.Track); i++ {
			turn := TurnAngle(res.Track[i-2], res.Track[i-1], res.Track[i])
			assert.LessOrEqual(t, turn, limit+1e-12, "trial %d step %d", trial, i)
		}
	}
}

func TestTurnAngle(t *testing.T) {
	tests := []struct {
		name            string
		prev, cur, next geometry.Point
		want            float64
	}{
		{"straight", geometry.Pt(0, 10), geometry.Pt(0, 5), geometry.Pt(0, 0), 0},
		{"right angle", geometry.Pt(0, 10), geometry.Pt(0, 0), geometry.Pt(10, 0), math.Pi / 2},
		{"right angle other way", geometry.Pt(0, 10), geometry.Pt(0, 0), geometry.Pt(-10, 0), math.Pi / 2},
		{"reversal", geometry.Pt(0, 10), geometry.Pt(0, 0), geometry.Pt(0, 10), math.Pi},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, TurnAngle(tt.prev, tt.cur, tt.next), 1e-12)
		})
	}
}
