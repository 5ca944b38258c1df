package geometry

import (
	"math"
	"testing"
)

func TestPointArithmetic(t *testing.T) {
	a := NewPoint2D(3, 4)
	b := NewPoint2D(1, 2)

	if d := a.Distance(Point2D{}); d != 5 {
		t.Errorf("Distance = %v, want 5", d)
	}
	if got := a.Add(b); got != (Point2D{X: 4, Y: 6}) {
		t.Errorf("Add = %+v", got)
	}
	if got := a.Sub(b); got != (Point2D{X: 2, Y: 2}) {
		t.Errorf("Sub = %+v", got)
	}
	if got := b.Scale(3); got != (Point2D{X: 3, Y: 6}) {
		t.Errorf("Scale = %+v", got)
	}
}

func TestRect(t *testing.T) {
	r := NewRect(10, 20, 30, 40)

	if !r.Contains(Point2D{X: 10, Y: 20}) || !r.Contains(Point2D{X: 40, Y: 60}) {
		t.Error("Contains must include the boundary")
	}
	if r.Contains(Point2D{X: 9.9, Y: 30}) {
		t.Error("Contains accepted an outside point")
	}
	if c := r.Center(); c != (Point2D{X: 25, Y: 40}) {
		t.Errorf("Center = %+v", c)
	}

	u := r.Union(NewRect(0, 0, 5, 5))
	if u != (Rect{X: 0, Y: 0, Width: 40, Height: 60}) {
		t.Errorf("Union = %+v", u)
	}
}

func TestAffineTransform(t *testing.T) {
	tr := Translation(10, -5).Compose(Scaling(2, 3))

	got := tr.Apply(Point2D{X: 1, Y: 1})
	if got != (Point2D{X: 12, Y: -2}) {
		t.Errorf("Apply = %+v, want (12, -2)", got)
	}

	inv, ok := tr.Inverse()
	if !ok {
		t.Fatal("Inverse reported singular")
	}
	back := inv.Apply(got)
	if math.Abs(back.X-1) > 1e-12 || math.Abs(back.Y-1) > 1e-12 {
		t.Errorf("round trip = %+v, want (1, 1)", back)
	}

	if _, ok := Scaling(0, 1).Inverse(); ok {
		t.Error("Inverse of a singular transform must fail")
	}
}

func TestCentroidAndBoundingBox(t *testing.T) {
	points := []Point2D{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 2}, {X: 0, Y: 2}}

	if c := Centroid(points); c != (Point2D{X: 2, Y: 1}) {
		t.Errorf("Centroid = %+v", c)
	}
	if b := BoundingBox(points); b != (Rect{X: 0, Y: 0, Width: 4, Height: 2}) {
		t.Errorf("BoundingBox = %+v", b)
	}

	if c := Centroid(nil); c != (Point2D{}) {
		t.Errorf("Centroid(nil) = %+v", c)
	}
	if b := BoundingBox(nil); b != (Rect{}) {
		t.Errorf("BoundingBox(nil) = %+v", b)
	}
}
