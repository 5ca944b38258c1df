package transform

import (
	"errors"
	"math"
	"testing"
)

func TestFitTPSExactAtReferences(t *testing.T) {
	points := []ReferencePoint{
		NewReferencePoint(0, 0, 12, -3),
		NewReferencePoint(100, 0, 240, 5),
		NewReferencePoint(0, 80, 18, 160),
		NewReferencePoint(100, 80, 255, 170),
		NewReferencePoint(40, 30, 105, 66),
	}

	s, err := FitTPS(points, 0)
	if err != nil {
		t.Fatalf("FitTPS failed: %v", err)
	}

	for _, p := range points {
		x, y := s.Transform(p.Source.X, p.Source.Y)
		dx, dy := x-p.Target.X, y-p.Target.Y
		if math.Sqrt(dx*dx+dy*dy) > 1e-6 {
			t.Errorf("reference %+v maps to (%v, %v), want %+v", p.Source, x, y, p.Target)
		}
	}

	if s.MeanError() > 1e-6 || s.MaxError() > 1e-6 {
		t.Errorf("residuals mean=%v max=%v, want ~0 for lambda=0", s.MeanError(), s.MaxError())
	}
	if s.ReferencePointCount() != len(points) {
		t.Errorf("ReferencePointCount = %d, want %d", s.ReferencePointCount(), len(points))
	}
}

func TestFitTPSNonAffineWarp(t *testing.T) {
	// Identity at the square corners with a bump at the center. No affine
	// map can satisfy all five constraints; the spline must.
	points := []ReferencePoint{
		NewReferencePoint(-1, -1, -1, -1),
		NewReferencePoint(1, -1, 1, -1),
		NewReferencePoint(1, 1, 1, 1),
		NewReferencePoint(-1, 1, -1, 1),
		NewReferencePoint(0, 0, 0, 0.5),
	}

	s, err := FitTPS(points, 0)
	if err != nil {
		t.Fatalf("FitTPS failed: %v", err)
	}

	// Spline reproduces the center bump exactly.
	_, cy := s.Transform(0, 0)
	if !almostEqual(cy, 0.5, 1e-6) {
		t.Errorf("spline center y = %v, want 0.5", cy)
	}

	// The affine least-squares fit can only split the difference: its
	// prediction at the center is (0, 0.1), off by 0.4 from the true warp.
	aff, err := EstimateAffine(points)
	if err != nil {
		t.Fatalf("EstimateAffine failed: %v", err)
	}
	affCenter := aff.Apply(points[4].Source)
	affErr := math.Abs(affCenter.Y - 0.5)
	if affErr < 0.3 {
		t.Fatalf("affine fit unexpectedly close at center: error %v", affErr)
	}
	tpsErr := math.Abs(cy - 0.5)
	if tpsErr >= affErr {
		t.Errorf("spline error %v not better than affine error %v", tpsErr, affErr)
	}
}

func TestFitTPSSmoothing(t *testing.T) {
	points := []ReferencePoint{
		NewReferencePoint(0, 0, 0, 0),
		NewReferencePoint(10, 0, 10.4, -0.2),
		NewReferencePoint(0, 10, -0.3, 10.1),
		NewReferencePoint(10, 10, 10.2, 10.3),
	}

	s, err := FitTPS(points, 0.5)
	if err != nil {
		t.Fatalf("FitTPS with smoothing failed: %v", err)
	}

	// Smoothing trades exactness for stability: residuals may be non-zero
	// but everything must stay finite.
	for _, p := range points {
		x, y := s.Transform(p.Source.X, p.Source.Y)
		if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
			t.Fatalf("non-finite output at %+v", p.Source)
		}
	}
	if math.IsNaN(s.MeanError()) || s.MaxError() > 1.0 {
		t.Errorf("smoothing residuals out of range: mean=%v max=%v", s.MeanError(), s.MaxError())
	}
}

func TestFitTPSDegenerate(t *testing.T) {
	tests := []struct {
		name    string
		points  []ReferencePoint
		wantErr error
	}{
		{
			name: "too few",
			points: []ReferencePoint{
				NewReferencePoint(0, 0, 0, 0),
				NewReferencePoint(1, 0, 1, 0),
			},
			wantErr: ErrInsufficientPoints,
		},
		{
			name: "duplicates collapse below minimum",
			points: []ReferencePoint{
				NewReferencePoint(0, 0, 0, 0),
				NewReferencePoint(0, 0, 0, 0),
				NewReferencePoint(1, 1, 2, 2),
			},
			wantErr: ErrInsufficientPoints,
		},
		{
			name: "collinear",
			points: []ReferencePoint{
				NewReferencePoint(0, 0, 0, 0),
				NewReferencePoint(5, 5, 10, 10),
				NewReferencePoint(9, 9, 18, 18),
			},
			wantErr: ErrDegenerateGeometry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := FitTPS(tt.points, 0)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("FitTPS error = %v, want %v", err, tt.wantErr)
			}
			if s != nil {
				t.Error("expected nil model on failure")
			}
		})
	}
}

func TestFitTPSDuplicatesTolerated(t *testing.T) {
	// Duplicate pairs above the minimum are dropped, not fatal.
	points := []ReferencePoint{
		NewReferencePoint(0, 0, 0, 0),
		NewReferencePoint(0, 0, 0, 0),
		NewReferencePoint(10, 0, 20, 1),
		NewReferencePoint(0, 10, -1, 19),
		NewReferencePoint(10, 10, 21, 20),
	}

	s, err := FitTPS(points, 0)
	if err != nil {
		t.Fatalf("FitTPS failed: %v", err)
	}
	if s.ReferencePointCount() != 4 {
		t.Errorf("ReferencePointCount = %d, want 4 after dedupe", s.ReferencePointCount())
	}
}
