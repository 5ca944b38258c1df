package transform

import "errors"

// The engine has exactly two failure kinds, both deterministic. Callers
// surface them to the user as "could not compute transform"; retrying
// without changing the reference set is pointless.
var (
	// ErrInsufficientPoints means fewer than 3 usable reference points
	// were supplied.
	ErrInsufficientPoints = errors.New("transform: need at least 3 reference points")

	// ErrDegenerateGeometry means the reference points are collinear or
	// otherwise produce a singular system.
	ErrDegenerateGeometry = errors.New("transform: degenerate reference geometry")
)
