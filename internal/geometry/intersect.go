package geometry

// Orientation classifies the turn a→b→c.
//
// It returns 1 for a counter-clockwise turn in the math sense (cross product
// of b-a and c-a positive), -1 for clockwise. For collinear points it orders
// them along the line: -1 when a lies strictly between b and c, 0 when c lies
// on the segment a-b, and 1 when c lies beyond b.
func Orientation(a, b, c Point) int {
	dxb, dyb := b.X-a.X, b.Y-a.Y
	dxc, dyc := c.X-a.X, c.Y-a.Y

	switch {
	case dxb*dyc > dyb*dxc:
		return 1
	case dxb*dyc < dyb*dxc:
		return -1
	case dxb*dxc < 0 || dyb*dyc < 0:
		return -1
	case dxb*dxb+dyb*dyb >= dxc*dxc+dyc*dyc:
		return 0
	default:
		return 1
	}
}

// SegmentsIntersect reports whether segment p1-p2 and segment p3-p4 share a
// point. Touching endpoints and collinear overlap count as intersecting.
func SegmentsIntersect(p1, p2, p3, p4 Point) bool {
	return Orientation(p1, p2, p3)*Orientation(p1, p2, p4) <= 0 &&
		Orientation(p3, p4, p1)*Orientation(p3, p4, p2) <= 0
}

// IntersectionPoint returns the point where the line through p1-p2 meets the
// line through p3-p4. It returns ok=false when the lines are parallel or
// either pair is degenerate.
func IntersectionPoint(p1, p2, p3, p4 Point) (Point, bool) {
	det := (p1.X-p2.X)*(p3.Y-p4.Y) - (p1.Y-p2.Y)*(p3.X-p4.X)
	if det == 0 {
		return Point{}, false
	}

	a := p1.X*p2.Y - p1.Y*p2.X
	b := p3.X*p4.Y - p3.Y*p4.X

	return Point{
		X: (a*(p3.X-p4.X) - (p1.X-p2.X)*b) / det,
		Y: (a*(p3.Y-p4.Y) - (p1.Y-p2.Y)*b) / det,
	}, true
}
