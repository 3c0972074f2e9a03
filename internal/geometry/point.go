package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point is an immutable 2D coordinate in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// FromVec converts a gonum vector to a Point.
func FromVec(v r2.Vec) Point {
	return Point{X: v.X, Y: v.Y}
}

// Vec converts p to a gonum vector.
func (p Point) Vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return FromVec(r2.Add(p.Vec(), q.Vec()))
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return FromVec(r2.Sub(p.Vec(), q.Vec()))
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return r2.Norm(r2.Sub(p.Vec(), q.Vec()))
}

// RotateAround rotates p by alpha radians around center.
func (p Point) RotateAround(alpha float64, center Point) Point {
	return FromVec(r2.Rotate(p.Vec(), alpha, center.Vec()))
}

// Round returns p with both coordinates rounded to the nearest integer.
func (p Point) Round() Point {
	return Point{X: math.Round(p.X), Y: math.Round(p.Y)}
}

func (p Point) String() string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}

// Segment is an ordered pair of endpoints.
type Segment struct {
	P1 Point `json:"p1"`
	P2 Point `json:"p2"`
}

// Seg builds a segment from integer-style coordinates.
func Seg(x1, y1, x2, y2 float64) Segment {
	return Segment{P1: Pt(x1, y1), P2: Pt(x2, y2)}
}

// Length returns the Euclidean length of the segment.
func (s Segment) Length() float64 {
	return s.P1.Dist(s.P2)
}

// Bounds returns the closed axis-aligned bounding box of the segment.
func (s Segment) Bounds() Rect {
	return Rect{
		Min: Pt(math.Min(s.P1.X, s.P2.X), math.Min(s.P1.Y, s.P2.Y)),
		Max: Pt(math.Max(s.P1.X, s.P2.X), math.Max(s.P1.Y, s.P2.Y)),
	}
}

// Intersects reports whether s and o share at least one point.
func (s Segment) Intersects(o Segment) bool {
	return SegmentsIntersect(s.P1, s.P2, o.P1, o.P2)
}

// PolylineLength returns the summed length of the polyline through pts.
func PolylineLength(pts []Point) float64 {
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += pts[i-1].Dist(pts[i])
	}
	return total
}
