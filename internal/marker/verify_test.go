package marker

import (
	"testing"

	"raid-mapper/pkg/geometry"
)

func TestVerify(t *testing.T) {
	markers := []Marker{
		ext("m1", "Exact", 10, 10),
		ext("m2", "Close", 50, 50),
		ext("m3", "Drifted", 100, 100),
		ext("m4", "Missing", 500, 500),
	}
	observed := []Marker{
		ext("m1", "Exact", 10, 10),       // UID hit, zero distance
		ext("w2", "Close", 52, 50),       // nearest within tolerance
		ext("w3", "Drifted", 100, 107.5), // nearest within 2x tolerance only
	}

	results := Verify(markers, observed, 5.0)
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}

	byUID := make(map[string]VerificationResult)
	for _, r := range results {
		byUID[r.MarkerUID] = r
	}

	if r := byUID["m1"]; !r.IsMatch || r.Distance != 0 {
		t.Errorf("m1 = %+v, want exact match", r)
	}
	if r := byUID["m2"]; !r.IsMatch || r.Observed == nil {
		t.Errorf("m2 = %+v, want nearest-neighbor match", r)
	}
	if r := byUID["m3"]; r.IsMatch || r.Observed == nil {
		t.Errorf("m3 = %+v, want discrepancy (candidate found, above tolerance)", r)
	}
	if r := byUID["m4"]; r.Err == "" || r.Observed != nil {
		t.Errorf("m4 = %+v, want missing", r)
	}
}

func TestVerifyDefaultTolerance(t *testing.T) {
	markers := []Marker{ext("m", "A", 0, 0)}
	observed := []Marker{ext("m", "A", 3, 0)}

	results := Verify(markers, observed, 0)
	if !results[0].IsMatch {
		t.Errorf("distance 3 should match under the default tolerance %v", DefaultVerifyTolerance)
	}
}

func TestNewMarker(t *testing.T) {
	m := New("customs", CategoryExtractions, "ZB-1011", geometry.Point2D{X: 1, Y: 2})
	if m.UID == "" {
		t.Error("New did not assign a UID")
	}
	if m.Map != "customs" || m.Category != CategoryExtractions {
		t.Errorf("unexpected marker %+v", m)
	}
}
