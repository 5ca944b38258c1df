package transform

import (
	"errors"
	"math"
	"testing"

	"raid-mapper/pkg/geometry"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestEstimateAffineExactFit(t *testing.T) {
	// Scale-only mapping: x by 10, y by 5.
	points := []ReferencePoint{
		NewReferencePoint(0, 0, 0, 0),
		NewReferencePoint(10, 0, 100, 0),
		NewReferencePoint(0, 10, 0, 50),
	}

	tr, err := EstimateAffine(points)
	if err != nil {
		t.Fatalf("EstimateAffine failed: %v", err)
	}

	got := tr.Apply(geometry.Point2D{X: 5, Y: 5})
	if !almostEqual(got.X, 50, 1e-9) || !almostEqual(got.Y, 25, 1e-9) {
		t.Errorf("Transform(5,5) = (%v, %v), want (50, 25)", got.X, got.Y)
	}

	// All three reference points reproduce exactly.
	for _, p := range points {
		got := tr.Apply(p.Source)
		if got.Distance(p.Target) > 1e-9 {
			t.Errorf("reference point %+v maps to %+v, want %+v", p.Source, got, p.Target)
		}
	}
}

func TestEstimateAffineOverdetermined(t *testing.T) {
	// 5 points consistent with the map (x,y) -> (2x+1, 3y-2); least
	// squares must recover it exactly.
	want := geometry.AffineTransform{A: 2, D: 3, TX: 1, TY: -2}
	sources := []geometry.Point2D{
		{X: 0, Y: 0}, {X: 4, Y: 1}, {X: 2, Y: 7}, {X: -3, Y: 5}, {X: 6, Y: -2},
	}
	var points []ReferencePoint
	for _, s := range sources {
		tgt := want.Apply(s)
		points = append(points, ReferencePoint{Source: s, Target: tgt})
	}

	tr, err := EstimateAffine(points)
	if err != nil {
		t.Fatalf("EstimateAffine failed: %v", err)
	}
	for _, pair := range [][2]float64{
		{tr.A, want.A}, {tr.B, want.B}, {tr.TX, want.TX},
		{tr.C, want.C}, {tr.D, want.D}, {tr.TY, want.TY},
	} {
		if !almostEqual(pair[0], pair[1], 1e-9) {
			t.Fatalf("recovered transform %+v, want %+v", tr, want)
		}
	}

	for i, r := range affineResiduals(points, tr) {
		if r > 1e-9 {
			t.Errorf("residual[%d] = %v, want ~0 for consistent data", i, r)
		}
	}
}

func TestEstimateAffineDegenerate(t *testing.T) {
	tests := []struct {
		name    string
		points  []ReferencePoint
		wantErr error
	}{
		{
			name:    "no points",
			points:  nil,
			wantErr: ErrInsufficientPoints,
		},
		{
			name: "two points",
			points: []ReferencePoint{
				NewReferencePoint(0, 0, 0, 0),
				NewReferencePoint(1, 1, 2, 2),
			},
			wantErr: ErrInsufficientPoints,
		},
		{
			name: "collinear points",
			points: []ReferencePoint{
				NewReferencePoint(0, 0, 0, 0),
				NewReferencePoint(1, 1, 10, 10),
				NewReferencePoint(2, 2, 20, 20),
				NewReferencePoint(3, 3, 30, 30),
			},
			wantErr: ErrDegenerateGeometry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EstimateAffine(tt.points)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("EstimateAffine error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
