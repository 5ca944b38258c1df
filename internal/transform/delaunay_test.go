package transform

import (
	"math"
	"testing"

	"raid-mapper/pkg/geometry"
)

func refGrid(sources ...geometry.Point2D) []ReferencePoint {
	out := make([]ReferencePoint, len(sources))
	for i, s := range sources {
		// Identity mapping is enough for triangulation tests.
		out[i] = ReferencePoint{Source: s, Target: s}
	}
	return out
}

func TestTriangulateCounts(t *testing.T) {
	tests := []struct {
		name      string
		points    []ReferencePoint
		wantCells int
	}{
		{
			name:      "empty",
			points:    nil,
			wantCells: 0,
		},
		{
			name: "two points",
			points: refGrid(
				geometry.Point2D{X: 0, Y: 0},
				geometry.Point2D{X: 1, Y: 0},
			),
			wantCells: 0,
		},
		{
			name: "single triangle",
			points: refGrid(
				geometry.Point2D{X: 0, Y: 0},
				geometry.Point2D{X: 10, Y: 0},
				geometry.Point2D{X: 0, Y: 10},
			),
			wantCells: 1,
		},
		{
			name: "unit square",
			points: refGrid(
				geometry.Point2D{X: 0, Y: 0},
				geometry.Point2D{X: 1, Y: 0},
				geometry.Point2D{X: 1, Y: 1},
				geometry.Point2D{X: 0, Y: 1},
			),
			wantCells: 2,
		},
		{
			name: "collinear",
			points: refGrid(
				geometry.Point2D{X: 0, Y: 0},
				geometry.Point2D{X: 1, Y: 0},
				geometry.Point2D{X: 2, Y: 0},
				geometry.Point2D{X: 3, Y: 0},
			),
			wantCells: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tris := Triangulate(tt.points)
			if len(tris) != tt.wantCells {
				t.Errorf("Triangulate produced %d cells, want %d", len(tris), tt.wantCells)
			}
		})
	}
}

func TestTriangulateDuplicatePoints(t *testing.T) {
	// Repeated source points must be dropped, not turned into zero-area
	// cells.
	points := refGrid(
		geometry.Point2D{X: 0, Y: 0},
		geometry.Point2D{X: 0, Y: 0},
		geometry.Point2D{X: 10, Y: 0},
		geometry.Point2D{X: 10, Y: 0},
		geometry.Point2D{X: 5, Y: 8},
	)

	tris := Triangulate(points)
	if len(tris) != 1 {
		t.Fatalf("Triangulate produced %d cells, want 1", len(tris))
	}
	for _, tri := range tris {
		a := points[tri.V[0]].Source
		b := points[tri.V[1]].Source
		c := points[tri.V[2]].Source
		if math.Abs(signedArea(a, b, c)) < 1e-9 {
			t.Errorf("zero-area cell %v", tri.V)
		}
	}
}

func TestTriangulateDelaunayProperty(t *testing.T) {
	points := refGrid(
		geometry.Point2D{X: 0, Y: 0},
		geometry.Point2D{X: 10, Y: 1},
		geometry.Point2D{X: 4, Y: 9},
		geometry.Point2D{X: 13, Y: 7},
		geometry.Point2D{X: 7, Y: 4},
		geometry.Point2D{X: 2, Y: 6},
		geometry.Point2D{X: 11, Y: 12},
	)

	tris := Triangulate(points)
	if len(tris) == 0 {
		t.Fatal("empty triangulation")
	}

	// No input point may lie strictly inside the circumcircle of a cell it
	// is not a vertex of.
	for _, tri := range tris {
		a := points[tri.V[0]].Source
		b := points[tri.V[1]].Source
		c := points[tri.V[2]].Source
		cell := newDelTri([]geometry.Point2D{a, b, c}, 0, 1, 2)

		for i, p := range points {
			if i == tri.V[0] || i == tri.V[1] || i == tri.V[2] {
				continue
			}
			dx := p.Source.X - cell.cx
			dy := p.Source.Y - cell.cy
			if dx*dx+dy*dy < cell.r2*(1-1e-9) {
				t.Errorf("point %d inside circumcircle of cell %v", i, tri.V)
			}
		}
	}

	// All cells wind counter-clockwise.
	for _, tri := range tris {
		a := points[tri.V[0]].Source
		b := points[tri.V[1]].Source
		c := points[tri.V[2]].Source
		if signedArea(a, b, c) <= 0 {
			t.Errorf("cell %v is not counter-clockwise", tri.V)
		}
	}
}
