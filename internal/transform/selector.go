package transform

import (
	"raid-mapper/pkg/geometry"
)

// Method identifies which strategy a fitted model uses.
type Method int

const (
	// MethodTPS is the thin-plate spline warp, preferred when solvable.
	MethodTPS Method = iota
	// MethodAffine is the fallback: affine least squares plus barycentric
	// interpolation over the Delaunay triangulation inside the hull.
	MethodAffine
)

func (m Method) String() string {
	switch m {
	case MethodTPS:
		return "tps"
	case MethodAffine:
		return "affine"
	}
	return "unknown"
}

// Options configures the fit.
type Options struct {
	// Lambda is the TPS smoothing parameter; 0 requests exact interpolation.
	Lambda float64

	// ForceAffine skips the thin-plate spline and fits the fallback path
	// directly. Used for side-by-side method comparison.
	ForceAffine bool
}

// Model is a working transform produced by Fit. It is immutable and safe
// for concurrent use once returned.
type Model struct {
	method Method
	points []ReferencePoint

	tps    *ThinPlateSpline
	affine geometry.AffineTransform
	tris   []Triangle

	residuals []float64
	meanErr   float64
	maxErr    float64
}

// Fit produces a working source-to-target transform from the reference
// pairs, preferring the thin-plate spline and falling back to affine plus
// barycentric interpolation when the spline system is singular. Both
// failure kinds are deterministic: more or better reference points are the
// only remedy.
func Fit(points []ReferencePoint, opts Options) (*Model, error) {
	if len(points) < 3 {
		return nil, ErrInsufficientPoints
	}
	pts := Dedupe(points)
	if len(pts) < 3 {
		return nil, ErrInsufficientPoints
	}

	m := &Model{points: pts}

	if !opts.ForceAffine {
		if tps, err := FitTPS(pts, opts.Lambda); err == nil {
			m.method = MethodTPS
			m.tps = tps
		}
	}

	if m.tps == nil {
		affine, err := EstimateAffine(pts)
		if err != nil {
			return nil, err
		}
		m.method = MethodAffine
		m.affine = affine
		m.tris = Triangulate(pts)
	}

	m.computeResiduals()
	return m, nil
}

// Transform maps a source-space coordinate into target space. A query that
// coincides with a reference point snaps to that point's known target
// regardless of the fitted method.
func (m *Model) Transform(x, y float64) (float64, float64) {
	p := m.TransformPoint(geometry.Point2D{X: x, Y: y})
	return p.X, p.Y
}

// TransformPoint is Transform for geometry.Point2D values.
func (m *Model) TransformPoint(p geometry.Point2D) geometry.Point2D {
	for _, ref := range m.points {
		if p.Distance(ref.Source) < dedupeTolerance {
			return ref.Target
		}
	}
	return m.rawTransform(p)
}

// rawTransform evaluates the fitted strategy without reference-point
// snapping. Residual diagnostics use this path so they reflect the actual
// fit quality.
func (m *Model) rawTransform(p geometry.Point2D) geometry.Point2D {
	if m.method == MethodTPS {
		x, y := m.tps.Transform(p.X, p.Y)
		return geometry.Point2D{X: x, Y: y}
	}

	if len(m.tris) > 0 {
		if tri, w0, w1, w2, inside := locateTriangle(p, m.tris, m.points); inside {
			t0 := m.points[tri.V[0]].Target
			t1 := m.points[tri.V[1]].Target
			t2 := m.points[tri.V[2]].Target
			return geometry.Point2D{
				X: w0*t0.X + w1*t1.X + w2*t2.X,
				Y: w0*t0.Y + w1*t1.Y + w2*t2.Y,
			}
		}
	}
	// Outside the hull (or no triangulation): plain affine extrapolation.
	return m.affine.Apply(p)
}

// Method reports the strategy in use.
func (m *Model) Method() Method { return m.method }

// MeanError is the mean residual over the reference points.
func (m *Model) MeanError() float64 { return m.meanErr }

// MaxError is the largest residual over the reference points.
func (m *Model) MaxError() float64 { return m.maxErr }

// ReferencePointCount reports how many distinct reference points back the
// model.
func (m *Model) ReferencePointCount() int { return len(m.points) }

// Residuals returns a copy of the per-reference-point residuals, in the
// order of the deduplicated reference set.
func (m *Model) Residuals() []float64 {
	out := make([]float64, len(m.residuals))
	copy(out, m.residuals)
	return out
}

func (m *Model) computeResiduals() {
	m.residuals = make([]float64, len(m.points))
	var sum, max float64
	for i, p := range m.points {
		got := m.rawTransform(p.Source)
		r := got.Distance(p.Target)
		m.residuals[i] = r
		sum += r
		if r > max {
			max = r
		}
	}
	m.meanErr = sum / float64(len(m.points))
	m.maxErr = max
}
