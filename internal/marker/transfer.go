package marker

import (
	"fmt"

	"raid-mapper/internal/transform"
	"raid-mapper/pkg/geometry"
)

// TransferOptions configures a map transfer run.
type TransferOptions struct {
	// Lambda is passed through to the transform fit (0 = exact).
	Lambda float64
	// ForceAffine skips the thin-plate spline, for comparison runs.
	ForceAffine bool
}

// PlacedMarker is one external marker carried into target space.
type PlacedMarker struct {
	Marker Marker
	World  geometry.Point2D
	// Snapped is true when the marker was itself a reference pair and took
	// its curated partner's exact position.
	Snapped bool
}

// TransferResult is the outcome of a map transfer: every external marker
// placed in target space, plus the fitted model for diagnostics.
type TransferResult struct {
	Model  *transform.Model
	Report MatchReport
	Placed []PlacedMarker
}

// Transfer matches the external markers against the curated set, fits a
// source-to-target transform from the matched pairs, and places every
// external marker in target space: matched markers snap to their curated
// partner's position, unmatched ones are interpolated through the model.
func Transfer(external, curated []Marker, opts TransferOptions) (*TransferResult, error) {
	report := Match(external, curated)

	model, err := transform.Fit(report.ReferencePoints(), transform.Options{
		Lambda:      opts.Lambda,
		ForceAffine: opts.ForceAffine,
	})
	if err != nil {
		return nil, fmt.Errorf("fit transform from %d matched pairs: %w", len(report.Pairs), err)
	}

	curatedPos := make(map[string]geometry.Point2D, len(report.Pairs))
	for _, p := range report.Pairs {
		curatedPos[p.External.UID] = p.Curated.Position
	}

	placed := make([]PlacedMarker, 0, len(external))
	for _, ext := range external {
		if pos, ok := curatedPos[ext.UID]; ok {
			placed = append(placed, PlacedMarker{Marker: ext, World: pos, Snapped: true})
			continue
		}
		placed = append(placed, PlacedMarker{
			Marker: ext,
			World:  model.TransformPoint(ext.Position),
		})
	}

	return &TransferResult{Model: model, Report: report, Placed: placed}, nil
}
