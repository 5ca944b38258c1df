package transform

import (
	"math"

	"raid-mapper/pkg/geometry"
)

// Triangle is one cell of the source-space triangulation. V holds indices
// into the reference point slice the triangulation was built from, in
// counter-clockwise order.
type Triangle struct {
	V [3]int
}

// Centroid returns the source-space centroid of the triangle.
func (t Triangle) Centroid(points []ReferencePoint) geometry.Point2D {
	a := points[t.V[0]].Source
	b := points[t.V[1]].Source
	c := points[t.V[2]].Source
	return geometry.Point2D{
		X: (a.X + b.X + c.X) / 3,
		Y: (a.Y + b.Y + c.Y) / 3,
	}
}

// Triangulate builds a Delaunay triangulation of the reference points in
// source space using incremental Bowyer-Watson insertion. Duplicate source
// points are skipped. Fewer than 3 distinct points, or a fully collinear
// set, yields an empty triangulation.
func Triangulate(points []ReferencePoint) []Triangle {
	// Distinct point indices, first occurrence wins.
	var idx []int
	for i, p := range points {
		dup := false
		for _, j := range idx {
			if p.Source.Distance(points[j].Source) < dedupeTolerance {
				dup = true
				break
			}
		}
		if !dup {
			idx = append(idx, i)
		}
	}
	if len(idx) < 3 {
		return nil
	}

	// Working vertex list: distinct points followed by the 3 super-triangle
	// vertices enclosing the bounding box.
	verts := make([]geometry.Point2D, 0, len(idx)+3)
	for _, i := range idx {
		verts = append(verts, points[i].Source)
	}

	bounds := geometry.BoundingBox(verts)
	span := math.Max(bounds.Width, bounds.Height)
	if span < dedupeTolerance {
		span = 1
	}
	mid := bounds.Center()
	super := len(idx)
	verts = append(verts,
		geometry.Point2D{X: mid.X - 20*span, Y: mid.Y - span},
		geometry.Point2D{X: mid.X + 20*span, Y: mid.Y - span},
		geometry.Point2D{X: mid.X, Y: mid.Y + 20*span},
	)

	tris := []delTri{newDelTri(verts, super, super+1, super+2)}

	for p := 0; p < super; p++ {
		pt := verts[p]

		// Triangles whose circumcircle contains the new point.
		var bad []delTri
		var keep []delTri
		for _, t := range tris {
			if t.circumContains(pt) {
				bad = append(bad, t)
			} else {
				keep = append(keep, t)
			}
		}

		// Boundary of the cavity: edges appearing in exactly one bad triangle.
		edgeCount := make(map[[2]int]int)
		for _, t := range bad {
			for _, e := range t.edges() {
				edgeCount[e]++
			}
		}

		tris = keep
		for e, count := range edgeCount {
			if count != 1 {
				continue
			}
			tris = append(tris, newDelTri(verts, p, e[0], e[1]))
		}
	}

	// Strip triangles touching the super vertices and map back to the
	// caller's indices.
	var out []Triangle
	for _, t := range tris {
		if t.v[0] >= super || t.v[1] >= super || t.v[2] >= super {
			continue
		}
		a, b, c := verts[t.v[0]], verts[t.v[1]], verts[t.v[2]]
		area := signedArea(a, b, c)
		if math.Abs(area) < dedupeTolerance {
			continue
		}
		tri := Triangle{V: [3]int{idx[t.v[0]], idx[t.v[1]], idx[t.v[2]]}}
		if area < 0 {
			tri.V[1], tri.V[2] = tri.V[2], tri.V[1]
		}
		out = append(out, tri)
	}
	return out
}

// delTri is an internal triangulation cell with its circumcircle cached.
type delTri struct {
	v      [3]int
	cx, cy float64
	r2     float64
}

func newDelTri(verts []geometry.Point2D, i, j, k int) delTri {
	t := delTri{v: [3]int{i, j, k}}
	a, b, c := verts[i], verts[j], verts[k]

	d := 2 * (a.X*(b.Y-c.Y) + b.X*(c.Y-a.Y) + c.X*(a.Y-b.Y))
	if math.Abs(d) < 1e-12 {
		// Degenerate cell: treat the circumcircle as all-containing so the
		// cell is evicted by the next insertion.
		t.r2 = math.Inf(1)
		return t
	}

	a2 := a.X*a.X + a.Y*a.Y
	b2 := b.X*b.X + b.Y*b.Y
	c2 := c.X*c.X + c.Y*c.Y
	t.cx = (a2*(b.Y-c.Y) + b2*(c.Y-a.Y) + c2*(a.Y-b.Y)) / d
	t.cy = (a2*(c.X-b.X) + b2*(a.X-c.X) + c2*(b.X-a.X)) / d
	dx := a.X - t.cx
	dy := a.Y - t.cy
	t.r2 = dx*dx + dy*dy
	return t
}

func (t delTri) circumContains(p geometry.Point2D) bool {
	if math.IsInf(t.r2, 1) {
		return true
	}
	dx := p.X - t.cx
	dy := p.Y - t.cy
	return dx*dx+dy*dy <= t.r2*(1+1e-12)
}

func (t delTri) edges() [3][2]int {
	return [3][2]int{
		orderedEdge(t.v[0], t.v[1]),
		orderedEdge(t.v[1], t.v[2]),
		orderedEdge(t.v[2], t.v[0]),
	}
}

func orderedEdge(i, j int) [2]int {
	if i < j {
		return [2]int{i, j}
	}
	return [2]int{j, i}
}

// signedArea returns twice the signed area of triangle abc; positive when
// the vertices wind counter-clockwise.
func signedArea(a, b, c geometry.Point2D) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (c.X-a.X)*(b.Y-a.Y)
}
