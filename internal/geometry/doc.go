// Package geometry provides the 2D primitives used by track reconstruction.
//
// Coordinates follow image conventions: X grows to the right and Y grows
// downwards, so "forward" along a rail in a camera frame means decreasing Y.
//
// # Intersection
//
// [SegmentsIntersect] is the classic separating-orientation test built on
// [Orientation]. It is inclusive: segments that touch at an endpoint or
// overlap collinearly are reported as intersecting.
//
// [IntersectionPoint] solves the line-line system with the determinant
// formula. Parallel or degenerate input has no meaningful solution and is
// reported with ok=false rather than a fabricated point.
//
// # Vectors
//
// [Point] converts to and from gonum's r2.Vec so rotation and dot/cross
// products come from gonum.org/v1/gonum/spatial/r2.
package geometry
