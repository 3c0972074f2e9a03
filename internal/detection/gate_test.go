package detection

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ironsheep/tram-track-mcp/internal/geometry"
)

func TestGate_Overlap(t *testing.T) {
	gate := NewGate(geometry.Pt(100, 100), 0, 50, 15)

	tests := []struct {
		name string
		seg  geometry.Segment
		want float64
	}{
		{"fully inside", geometry.Seg(100, 90, 100, 60), 30},
		{"one endpoint inside", geometry.Seg(100, 90, 100, 20), 40},
		{"one endpoint inside, reversed", geometry.Seg(100, 20, 100, 90), 40},
		{"crosses base and top", geometry.Seg(100, 120, 100, 20), 50},
		{"crosses both sides", geometry.Seg(50, 80, 150, 80), 15},
		{"outside", geometry.Seg(200, 0, 200, 200), 0},
		// The top edge is collinear with the segment and is skipped; the
		// left edge provides the crossing.
		{"collinear with top edge", geometry.Seg(100, 50, 80, 50), 7.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, gate.Overlap(tt.seg), 1e-9)
		})
	}
}

func TestGate_OverlapThroughCorner(t *testing.T) {
	// Corners at (92.5,100) (107.5,100) (107.5,50) (92.5,50).
	gate := NewGate(geometry.Pt(100, 100), 0, 50, 15)

	tests := []struct {
		name string
		seg  geometry.Segment
		want float64
	}{
		{"top right corner to base", geometry.Seg(108.5, 45, 96.5, 105), math.Hypot(10, 50)},
		{"opposite corners", geometry.Seg(89.5, 110, 110.5, 40), math.Hypot(15, 50)},
		{"grazes a corner", geometry.Seg(100, 40, 115, 60), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, gate.Overlap(tt.seg), 1e-6)
			rev := geometry.Segment{P1: tt.seg.P2, P2: tt.seg.P1}
			assert.InDelta(t, tt.want, gate.Overlap(rev), 1e-6)
		})
	}
}

func TestGate_Rotated(t *testing.T) {
	center := geometry.Pt(100, 100)
	angle := math.Pi / 4
	gate := NewGate(center, angle, 50, 15)

	dir := geometry.Pt(math.Sin(angle), -math.Cos(angle))
	along := func(d float64) geometry.Point {
		return geometry.Pt(center.X+d*dir.X, center.Y+d*dir.Y)
	}

	assert.InDelta(t, 25, gate.Overlap(geometry.Segment{P1: along(5), P2: along(30)}), 1e-9)
	assert.InDelta(t, 40, gate.Overlap(geometry.Segment{P1: along(10), P2: along(80)}), 1e-9)

	far := gate.FarEnd()
	assert.InDelta(t, along(50).X, far.X, 1e-9)
	assert.InDelta(t, along(50).Y, far.Y, 1e-9)
}

func TestGate_Corners(t *testing.T) {
	gate := NewGate(geometry.Pt(100, 100), 0, 50, 10)
	want := [4]geometry.Point{
		geometry.Pt(95, 100),
		geometry.Pt(105, 100),
		geometry.Pt(105, 50),
		geometry.Pt(95, 50),
	}
	assert.Equal(t, want, gate.Corners())
}

func TestGate_Score(t *testing.T) {
	gate := NewGate(geometry.Pt(100, 100), 0, 50, 15)
	segs := []geometry.Segment{
		geometry.Seg(100, 90, 100, 60),
		geometry.Seg(103, 95, 103, 85),
		geometry.Seg(300, 95, 300, 85),
	}
	assert.InDelta(t, 40, gate.Score(segs), 1e-9)
	assert.Zero(t, gate.Score(nil))
}

func TestGate_OverlapBounds(t *testing.T) {
	r := rand.New(rand.NewPCG(11, 13))

	for i := 0; i < 2000; i++ {
		gate := NewGate(
			geometry.Pt(100+r.Float64()*50, 100+r.Float64()*50),
			(r.Float64()-0.5)*math.Pi/2,
			10+r.Float64()*80,
			5+r.Float64()*20,
		)
		seg := geometry.Seg(r.Float64()*250, r.Float64()*250, r.Float64()*250, r.Float64()*250)
		rev := geometry.Segment{P1: seg.P2, P2: seg.P1}

		got := gate.Overlap(seg)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, seg.Length()+1e-9)
		assert.InDelta(t, got, gate.Overlap(rev), 1e-6, "overlap must not depend on segment direction")
	}
}
