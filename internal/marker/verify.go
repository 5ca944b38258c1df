package marker

import (
	"time"

	"raid-mapper/pkg/geometry"
)

// DefaultVerifyTolerance is the position tolerance for verification, in
// source (SVG viewBox) coordinate units.
const DefaultVerifyTolerance = 5.0

// VerificationResult compares one marker's position across two sources in
// the same coordinate space.
type VerificationResult struct {
	MarkerUID  string
	MarkerName string
	Map        string
	Position   geometry.Point2D
	Observed   *geometry.Point2D
	Distance   float64
	IsMatch    bool
	Err        string
	VerifiedAt time.Time
}

// Verify cross-checks markers against an independently observed set in the
// same coordinate space. An exact UID match is preferred; otherwise the
// nearest observed marker within twice the tolerance is accepted as a
// candidate, and counts as a match only within the tolerance itself.
func Verify(markers, observed []Marker, tolerance float64) []VerificationResult {
	if tolerance <= 0 {
		tolerance = DefaultVerifyTolerance
	}
	now := time.Now()

	byUID := make(map[string]Marker, len(observed))
	for _, o := range observed {
		if o.UID != "" {
			byUID[o.UID] = o
		}
	}

	results := make([]VerificationResult, 0, len(markers))
	for _, m := range markers {
		r := VerificationResult{
			MarkerUID:  m.UID,
			MarkerName: m.Name,
			Map:        m.Map,
			Position:   m.Position,
			VerifiedAt: now,
		}

		if o, ok := byUID[m.UID]; ok {
			pos := o.Position
			r.Observed = &pos
			r.Distance = m.Position.Distance(o.Position)
			r.IsMatch = r.Distance <= tolerance
		} else if o, dist, ok := nearest(m.Position, observed); ok && dist <= tolerance*2 {
			pos := o.Position
			r.Observed = &pos
			r.Distance = dist
			r.IsMatch = dist <= tolerance
		} else {
			r.Err = "no matching observed marker"
		}

		results = append(results, r)
	}
	return results
}

func nearest(p geometry.Point2D, markers []Marker) (Marker, float64, bool) {
	var best Marker
	bestDist := -1.0
	for _, m := range markers {
		d := p.Distance(m.Position)
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = m
		}
	}
	return best, bestDist, bestDist >= 0
}
