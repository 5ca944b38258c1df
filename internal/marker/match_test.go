package marker

import (
	"errors"
	"testing"

	"raid-mapper/internal/transform"
	"raid-mapper/pkg/geometry"
)

func ext(uid, name string, x, y float64) Marker {
	return Marker{UID: uid, Map: "woods", Category: CategoryQuests, Name: name,
		Position: geometry.Point2D{X: x, Y: y}}
}

func TestMatchRules(t *testing.T) {
	external := []Marker{
		ext("m1", "Old Station", 10, 10),
		ext("m2", "Sawmill Stash", 20, 5),
		ext("m3", "Scav Bridge", 30, 30),
		ext("m4", "ZB-1305", 40, 12),
	}
	curated := []Marker{
		ext("m1", "Old Station (renamed)", 100, 100), // pairs by UID
		ext("c2", "  sawmill stash ", 200, 50),       // pairs by normalized name
		ext("c4", "ZB-1306", 400, 120),               // no rule applies to m4
	}

	report := Match(external, curated)

	if len(report.Pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(report.Pairs))
	}
	if report.Pairs[0].By != MatchedByUID || report.Pairs[0].Curated.UID != "m1" {
		t.Errorf("first pair = %+v, want UID match with m1", report.Pairs[0])
	}
	if report.Pairs[1].By != MatchedByName || report.Pairs[1].Curated.UID != "c2" {
		t.Errorf("second pair = %+v, want name match with c2", report.Pairs[1])
	}

	if len(report.Unmatched) != 2 {
		t.Fatalf("got %d unmatched, want 2", len(report.Unmatched))
	}
	for _, m := range report.Unmatched {
		if m.UID != "m3" && m.UID != "m4" {
			t.Errorf("unexpected unmatched marker %s", m.UID)
		}
	}
}

func TestMatchCuratedUsedOnce(t *testing.T) {
	external := []Marker{
		ext("a", "Duplicate Name", 0, 0),
		ext("b", "Duplicate Name", 1, 1),
	}
	curated := []Marker{
		ext("c", "Duplicate Name", 5, 5),
	}

	report := Match(external, curated)
	if len(report.Pairs) != 1 {
		t.Fatalf("got %d pairs, want 1: a curated marker may pair only once", len(report.Pairs))
	}
	if len(report.Unmatched) != 1 || report.Unmatched[0].UID != "b" {
		t.Errorf("unmatched = %+v, want [b]", report.Unmatched)
	}
}

func TestReferencePoints(t *testing.T) {
	external := []Marker{ext("m1", "A", 1, 2)}
	curated := []Marker{ext("m1", "A", 30, 40)}

	refs := Match(external, curated).ReferencePoints()
	if len(refs) != 1 {
		t.Fatalf("got %d reference points, want 1", len(refs))
	}
	want := transform.NewReferencePoint(1, 2, 30, 40)
	if refs[0] != want {
		t.Errorf("reference point = %+v, want %+v", refs[0], want)
	}
}

func TestTransferLinearMap(t *testing.T) {
	// Curated positions follow (x, y) -> (2x, 2y+10). Three matched anchors
	// plus one unknown marker to interpolate.
	external := []Marker{
		ext("a", "Anchor A", 0, 0),
		ext("b", "Anchor B", 10, 0),
		ext("c", "Anchor C", 0, 10),
		ext("d", "Anchor D", 10, 10),
		ext("x", "Unknown Stash", 5, 5),
	}
	curated := []Marker{
		ext("a", "Anchor A", 0, 10),
		ext("b", "Anchor B", 20, 10),
		ext("c", "Anchor C", 0, 30),
		ext("d", "Anchor D", 20, 30),
	}

	result, err := Transfer(external, curated, TransferOptions{})
	if err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	if len(result.Placed) != 5 {
		t.Fatalf("placed %d markers, want 5", len(result.Placed))
	}

	for _, p := range result.Placed {
		switch p.Marker.UID {
		case "x":
			if p.Snapped {
				t.Error("unmatched marker reported as snapped")
			}
			want := geometry.Point2D{X: 10, Y: 20}
			if p.World.Distance(want) > 1e-6 {
				t.Errorf("interpolated %s at %+v, want %+v", p.Marker.UID, p.World, want)
			}
		default:
			if !p.Snapped {
				t.Errorf("matched marker %s not snapped", p.Marker.UID)
			}
		}
	}

	if result.Model.MaxError() > 1e-6 {
		t.Errorf("MaxError = %v, want ~0 for a consistent linear map", result.Model.MaxError())
	}
}

func TestTransferInsufficientPairs(t *testing.T) {
	external := []Marker{
		ext("a", "Anchor A", 0, 0),
		ext("b", "Anchor B", 10, 0),
	}
	curated := []Marker{
		ext("a", "Anchor A", 0, 10),
	}

	_, err := Transfer(external, curated, TransferOptions{})
	if !errors.Is(err, transform.ErrInsufficientPoints) {
		t.Errorf("Transfer error = %v, want ErrInsufficientPoints", err)
	}
}
