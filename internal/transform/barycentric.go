package transform

import (
	"math"

	"raid-mapper/pkg/geometry"
)

// containmentSlack tolerates floating-point noise on triangle edges when
// testing barycentric containment.
const containmentSlack = 1e-9

// BarycentricWeights computes the barycentric coordinates of q relative to
// triangle abc. The weights sum to 1; all are non-negative iff q lies inside
// the triangle. Returns ok=false for a degenerate (zero-area) triangle.
func BarycentricWeights(q, a, b, c geometry.Point2D) (w0, w1, w2 float64, ok bool) {
	d := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if math.Abs(d) < 1e-12 {
		return 0, 0, 0, false
	}
	w0 = ((b.Y-c.Y)*(q.X-c.X) + (c.X-b.X)*(q.Y-c.Y)) / d
	w1 = ((c.Y-a.Y)*(q.X-c.X) + (a.X-c.X)*(q.Y-c.Y)) / d
	w2 = 1 - w0 - w1
	return w0, w1, w2, true
}

// InterpolateBarycentric maps a source-space query point to target space by
// locating the triangulation cell containing it and applying the cell's
// barycentric weights to the corresponding target-space vertices. Queries
// outside the convex hull extrapolate through the nearest triangle by
// centroid distance; the further the query is from the hull, the larger the
// error of that extrapolation gets, which is accepted behavior.
//
// A query coinciding with a triangle vertex reproduces the vertex target
// exactly. Returns ok=false when the triangulation is empty.
func InterpolateBarycentric(query geometry.Point2D, tris []Triangle, points []ReferencePoint) (geometry.Point2D, bool) {
	if len(tris) == 0 {
		return geometry.Point2D{}, false
	}

	tri, w0, w1, w2, inside := locateTriangle(query, tris, points)
	if !inside {
		// Nearest triangle by centroid distance, extrapolated weights.
		var ok bool
		w0, w1, w2, ok = BarycentricWeights(query,
			points[tri.V[0]].Source, points[tri.V[1]].Source, points[tri.V[2]].Source)
		if !ok {
			return geometry.Point2D{}, false
		}
	}

	t0 := points[tri.V[0]].Target
	t1 := points[tri.V[1]].Target
	t2 := points[tri.V[2]].Target
	return geometry.Point2D{
		X: w0*t0.X + w1*t1.X + w2*t2.X,
		Y: w0*t0.Y + w1*t1.Y + w2*t2.Y,
	}, true
}

// locateTriangle finds the triangle containing the query point, or the
// nearest triangle by centroid distance when the query is outside the hull.
// When inside is true the returned weights are valid for that triangle.
func locateTriangle(query geometry.Point2D, tris []Triangle, points []ReferencePoint) (tri Triangle, w0, w1, w2 float64, inside bool) {
	nearest := tris[0]
	nearestDist := math.Inf(1)

	for _, t := range tris {
		a := points[t.V[0]].Source
		b := points[t.V[1]].Source
		c := points[t.V[2]].Source
		u0, u1, u2, ok := BarycentricWeights(query, a, b, c)
		if ok && u0 >= -containmentSlack && u1 >= -containmentSlack && u2 >= -containmentSlack {
			return t, u0, u1, u2, true
		}
		if d := query.Distance(t.Centroid(points)); d < nearestDist {
			nearestDist = d
			nearest = t
		}
	}
	return nearest, 0, 0, 0, false
}
