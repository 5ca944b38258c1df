package transform

import (
	"fmt"
	"math"

	"raid-mapper/pkg/geometry"

	"gonum.org/v1/gonum/mat"
)

// EstimateAffine computes the least-squares 2D affine map (6 parameters)
// from source to target space. With exactly 3 non-collinear points the fit
// is exact; with more it minimizes the total squared residual.
func EstimateAffine(points []ReferencePoint) (geometry.AffineTransform, error) {
	n := len(points)
	if n < 3 {
		return geometry.AffineTransform{}, ErrInsufficientPoints
	}
	if collinear(points) {
		return geometry.AffineTransform{}, ErrDegenerateGeometry
	}

	// Build the overdetermined system, two rows per point:
	//   x' = a*x + b*y + tx
	//   y' = c*x + d*y + ty
	A := mat.NewDense(n*2, 6, nil)
	B := mat.NewVecDense(n*2, nil)

	for i := 0; i < n; i++ {
		x, y := points[i].Source.X, points[i].Source.Y
		xp, yp := points[i].Target.X, points[i].Target.Y

		A.Set(i*2, 0, x)
		A.Set(i*2, 1, y)
		A.Set(i*2, 2, 1)
		B.SetVec(i*2, xp)

		A.Set(i*2+1, 3, x)
		A.Set(i*2+1, 4, y)
		A.Set(i*2+1, 5, 1)
		B.SetVec(i*2+1, yp)
	}

	// Solve using QR decomposition.
	var qr mat.QR
	qr.Factorize(A)

	var params mat.VecDense
	if err := qr.SolveVecTo(&params, false, B); err != nil {
		return geometry.AffineTransform{}, fmt.Errorf("%w: %v", ErrDegenerateGeometry, err)
	}

	t := geometry.AffineTransform{
		A:  params.AtVec(0),
		B:  params.AtVec(1),
		TX: params.AtVec(2),
		C:  params.AtVec(3),
		D:  params.AtVec(4),
		TY: params.AtVec(5),
	}
	if !finiteAffine(t) {
		return geometry.AffineTransform{}, ErrDegenerateGeometry
	}
	return t, nil
}

func finiteAffine(t geometry.AffineTransform) bool {
	for _, v := range []float64{t.A, t.B, t.TX, t.C, t.D, t.TY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// affineResiduals returns per-point Euclidean residuals of the fit.
func affineResiduals(points []ReferencePoint, t geometry.AffineTransform) []float64 {
	res := make([]float64, len(points))
	for i, p := range points {
		res[i] = t.Apply(p.Source).Distance(p.Target)
	}
	return res
}
