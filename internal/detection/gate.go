package detection

import (
	"math"

	"github.com/ironsheep/tram-track-mcp/internal/geometry"
)

// Gate is the rectangular search window used while growing a track.
//
// In its local frame the gate spans [cx-w/2, cx+w/2) horizontally and
// [cy-length, cy) vertically, extending upwards from the current point. The
// world gate is that rectangle rotated by Angle around the current point;
// Angle 0 points straight up the frame and positive angles lean right.
type Gate struct {
	Center geometry.Point
	Angle  float64
	Length float64
	Width  float64

	rect  geometry.Rect
	edges [4][2]geometry.Point
}

// NewGate builds a gate at center.
func NewGate(center geometry.Point, angle, length, width float64) Gate {
	half := width / 2
	r1 := geometry.Pt(center.X-half, center.Y)
	r2 := geometry.Pt(center.X+half, center.Y)
	r3 := geometry.Pt(center.X+half, center.Y-length)
	r4 := geometry.Pt(center.X-half, center.Y-length)

	return Gate{
		Center: center,
		Angle:  angle,
		Length: length,
		Width:  width,
		rect: geometry.Rect{
			Min: geometry.Pt(center.X-half, center.Y-length),
			Max: geometry.Pt(center.X+half, center.Y),
		},
		// Crossings are searched in this order: base, right, top, left.
		edges: [4][2]geometry.Point{{r1, r2}, {r2, r3}, {r3, r4}, {r4, r1}},
	}
}

// FarEnd returns the centre of the gate's far edge in frame coordinates.
func (g Gate) FarEnd() geometry.Point {
	sin, cos := math.Sincos(g.Angle)
	return geometry.Pt(g.Center.X+g.Length*sin, g.Center.Y-g.Length*cos)
}

// Corners returns the four corners in frame coordinates, in edge order.
func (g Gate) Corners() [4]geometry.Point {
	var out [4]geometry.Point
	for i, e := range g.edges {
		out[i] = e[0].RotateAround(g.Angle, g.Center)
	}
	return out
}

// toLocal maps a frame point into the unrotated gate frame.
func (g Gate) toLocal(p geometry.Point) geometry.Point {
	if g.Angle == 0 {
		return p
	}
	return p.RotateAround(-g.Angle, g.Center)
}

// Overlap returns how much of seg lies inside the gate.
//
// A fully contained segment counts its whole length. With one endpoint
// inside, the distance from that endpoint to the first boundary crossing is
// counted. With no endpoint inside, the distance between exactly two distinct
// boundary crossings is counted; a corner counts once. Crossings on an edge parallel to the segment have no
// single intersection point and are skipped.
func (g Gate) Overlap(seg geometry.Segment) float64 {
	p1, p2 := g.toLocal(seg.P1), g.toLocal(seg.P2)
	in1, in2 := g.rect.Contains(p1), g.rect.Contains(p2)

	switch {
	case in1 && in2:
		return seg.Length()

	case in1 || in2:
		inside := p1
		if in2 {
			inside = p2
		}
		for _, e := range g.edges {
			if !geometry.SegmentsIntersect(p1, p2, e[0], e[1]) {
				continue
			}
			if hit, ok := geometry.IntersectionPoint(p1, p2, e[0], e[1]); ok {
				return inside.Dist(hit)
			}
		}
		return 0

	default:
		hits := make([]geometry.Point, 0, 4)
		for _, e := range g.edges {
			if !geometry.SegmentsIntersect(p1, p2, e[0], e[1]) {
				continue
			}
			if hit, ok := geometry.IntersectionPoint(p1, p2, e[0], e[1]); ok && !seenHit(hits, hit) {
				hits = append(hits, hit)
			}
		}
		if len(hits) == 2 {
			return hits[0].Dist(hits[1])
		}
		return 0
	}
}

// hitEpsilon merges crossings reported by both edges meeting at a corner.
const hitEpsilon = 1e-6

func seenHit(hits []geometry.Point, p geometry.Point) bool {
	for _, h := range hits {
		if h.Dist(p) < hitEpsilon {
			return true
		}
	}
	return false
}

// Score sums Overlap over all segments.
func (g Gate) Score(segs []geometry.Segment) float64 {
	total := 0.0
	for _, s := range segs {
		total += g.Overlap(s)
	}
	return total
}
