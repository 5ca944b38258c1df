package transform

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ThinPlateSpline is a fitted non-linear warp from source to target space.
// It interpolates every reference point exactly when fitted with lambda 0;
// a positive lambda trades exactness for smoothness, which helps when the
// reference positions are noisy. The model is immutable once fitted and
// must be refit when the reference set changes.
type ThinPlateSpline struct {
	points []ReferencePoint
	lambda float64

	// Solved weights: n radial terms followed by the affine terms
	// (constant, x, y), one set per output axis.
	wx, wy []float64

	meanErr float64
	maxErr  float64
}

// FitTPS fits a thin-plate spline to the reference pairs. It needs at least
// 3 non-collinear, distinct source points; duplicate source points are
// dropped before solving. A singular system reports ErrDegenerateGeometry
// so the caller can fall back to the affine path.
func FitTPS(points []ReferencePoint, lambda float64) (*ThinPlateSpline, error) {
	pts := Dedupe(points)
	n := len(pts)
	if n < 3 {
		return nil, ErrInsufficientPoints
	}
	if collinear(pts) {
		return nil, ErrDegenerateGeometry
	}

	// System layout:
	//   [ K + lambda*I   P ] [w]   [t]
	//   [ P^T            0 ] [a] = [0]
	// where K[i][j] = U(|p_i - p_j|) and P rows are (1, x, y).
	size := n + 3
	L := mat.NewDense(size, size, nil)
	rhs := mat.NewDense(size, 2, nil)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := tpsKernel(pts[i].Source.Distance(pts[j].Source))
			if i == j {
				v += lambda
			}
			L.Set(i, j, v)
		}
		L.Set(i, n, 1)
		L.Set(i, n+1, pts[i].Source.X)
		L.Set(i, n+2, pts[i].Source.Y)
		L.Set(n, i, 1)
		L.Set(n+1, i, pts[i].Source.X)
		L.Set(n+2, i, pts[i].Source.Y)

		rhs.Set(i, 0, pts[i].Target.X)
		rhs.Set(i, 1, pts[i].Target.Y)
	}

	var solved mat.Dense
	if err := solved.Solve(L, rhs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegenerateGeometry, err)
	}

	s := &ThinPlateSpline{
		points: pts,
		lambda: lambda,
		wx:     make([]float64, size),
		wy:     make([]float64, size),
	}
	for i := 0; i < size; i++ {
		s.wx[i] = solved.At(i, 0)
		s.wy[i] = solved.At(i, 1)
		if math.IsNaN(s.wx[i]) || math.IsInf(s.wx[i], 0) ||
			math.IsNaN(s.wy[i]) || math.IsInf(s.wy[i], 0) {
			return nil, ErrDegenerateGeometry
		}
	}

	s.computeResiduals()
	return s, nil
}

// Transform evaluates the spline at an arbitrary source-space point.
func (s *ThinPlateSpline) Transform(x, y float64) (float64, float64) {
	n := len(s.points)
	tx := s.wx[n] + s.wx[n+1]*x + s.wx[n+2]*y
	ty := s.wy[n] + s.wy[n+1]*x + s.wy[n+2]*y
	for i, p := range s.points {
		dx := x - p.Source.X
		dy := y - p.Source.Y
		u := tpsKernelSq(dx*dx + dy*dy)
		tx += s.wx[i] * u
		ty += s.wy[i] * u
	}
	return tx, ty
}

// MeanError is the mean residual over the reference points (about zero for
// lambda 0).
func (s *ThinPlateSpline) MeanError() float64 { return s.meanErr }

// MaxError is the largest residual over the reference points.
func (s *ThinPlateSpline) MaxError() float64 { return s.maxErr }

// ReferencePointCount reports how many distinct reference points the spline
// was fitted to.
func (s *ThinPlateSpline) ReferencePointCount() int { return len(s.points) }

// Lambda returns the smoothing parameter the spline was fitted with.
func (s *ThinPlateSpline) Lambda() float64 { return s.lambda }

func (s *ThinPlateSpline) computeResiduals() {
	var sum, max float64
	for _, p := range s.points {
		x, y := s.Transform(p.Source.X, p.Source.Y)
		dx := x - p.Target.X
		dy := y - p.Target.Y
		r := math.Sqrt(dx*dx + dy*dy)
		sum += r
		if r > max {
			max = r
		}
	}
	s.meanErr = sum / float64(len(s.points))
	s.maxErr = max
}

// tpsKernel is the thin-plate radial basis U(r) = r^2 * log(r), zero at r=0.
func tpsKernel(r float64) float64 {
	return tpsKernelSq(r * r)
}

// tpsKernelSq evaluates the kernel from the squared radius, avoiding a
// square root: r^2 log r = r^2 * log(r^2) / 2.
func tpsKernelSq(r2 float64) float64 {
	if r2 == 0 {
		return 0
	}
	return 0.5 * r2 * math.Log(r2)
}
