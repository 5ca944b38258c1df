// Package transform computes the mapping between two map coordinate spaces
// from a set of matched reference markers. The preferred fit is a thin-plate
// spline warp; when the reference geometry cannot support one, the engine
// falls back to an affine least-squares fit combined with piecewise-linear
// interpolation over a Delaunay triangulation of the reference points.
package transform

import (
	"raid-mapper/pkg/geometry"
)

// dedupeTolerance is the source-space distance below which two reference
// points are treated as the same point.
const dedupeTolerance = 1e-9

// ReferencePoint pairs a known point in source space (e.g. SVG pixel
// coordinates) with its position in target space (game world coordinates).
type ReferencePoint struct {
	Source geometry.Point2D `json:"source"`
	Target geometry.Point2D `json:"target"`
}

// NewReferencePoint builds a reference pair from raw coordinates.
func NewReferencePoint(sx, sy, tx, ty float64) ReferencePoint {
	return ReferencePoint{
		Source: geometry.Point2D{X: sx, Y: sy},
		Target: geometry.Point2D{X: tx, Y: ty},
	}
}

// Dedupe returns the reference points with source-space duplicates removed,
// keeping the first occurrence. Order is otherwise preserved.
func Dedupe(points []ReferencePoint) []ReferencePoint {
	out := make([]ReferencePoint, 0, len(points))
	for _, p := range points {
		dup := false
		for _, q := range out {
			if p.Source.Distance(q.Source) < dedupeTolerance {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, p)
		}
	}
	return out
}

// collinear reports whether all source points lie on a single line.
// It anchors a baseline between the two most distant points and checks the
// maximum perpendicular offset of the remaining points against it.
func collinear(points []ReferencePoint) bool {
	if len(points) < 3 {
		return true
	}

	// Longest baseline from the first point.
	base := 0
	far := 0
	maxDist := 0.0
	for i, p := range points {
		d := points[base].Source.Distance(p.Source)
		if d > maxDist {
			maxDist = d
			far = i
		}
	}
	if maxDist < dedupeTolerance {
		return true
	}

	a := points[base].Source
	b := points[far].Source
	dx, dy := b.X-a.X, b.Y-a.Y

	for _, p := range points {
		// Perpendicular distance from the a->b line.
		cross := dx*(p.Source.Y-a.Y) - dy*(p.Source.X-a.X)
		if cross < 0 {
			cross = -cross
		}
		if cross/maxDist > 1e-9*(1+maxDist) {
			return false
		}
	}
	return true
}

// sourcePoints extracts the source-space coordinates.
func sourcePoints(points []ReferencePoint) []geometry.Point2D {
	out := make([]geometry.Point2D, len(points))
	for i, p := range points {
		out[i] = p.Source
	}
	return out
}
