package marker

import (
	"strings"

	"raid-mapper/internal/transform"
)

// MatchedBy records which rule paired two markers.
type MatchedBy string

const (
	MatchedByUID  MatchedBy = "uid"
	MatchedByName MatchedBy = "name"
)

// Pair is an external marker matched with a curated one. The external
// marker's position is in source space and the curated one's in target
// space, so a pair is exactly one reference observation for the transform
// engine.
type Pair struct {
	External Marker
	Curated  Marker
	By       MatchedBy
}

// MatchReport summarizes a matching run.
type MatchReport struct {
	Pairs     []Pair
	Unmatched []Marker // external markers with no curated partner
}

// ReferencePoints converts the matched pairs into transform engine input.
func (r MatchReport) ReferencePoints() []transform.ReferencePoint {
	out := make([]transform.ReferencePoint, len(r.Pairs))
	for i, p := range r.Pairs {
		out[i] = transform.ReferencePoint{
			Source: p.External.Position,
			Target: p.Curated.Position,
		}
	}
	return out
}

// Match pairs external markers with curated markers, by UID first and by
// name (case-insensitive, trimmed) second. Each curated marker is used at
// most once; externals that find no partner are reported as unmatched.
func Match(external, curated []Marker) MatchReport {
	byUID := make(map[string]int, len(curated))
	byName := make(map[string]int, len(curated))
	for i, c := range curated {
		if c.UID != "" {
			byUID[c.UID] = i
		}
		if key := nameKey(c.Name); key != "" {
			// First curated marker with a given name wins.
			if _, exists := byName[key]; !exists {
				byName[key] = i
			}
		}
	}

	used := make(map[int]bool, len(curated))
	var report MatchReport

	for _, ext := range external {
		if i, ok := byUID[ext.UID]; ok && !used[i] {
			used[i] = true
			report.Pairs = append(report.Pairs, Pair{External: ext, Curated: curated[i], By: MatchedByUID})
			continue
		}
		if i, ok := byName[nameKey(ext.Name)]; ok && !used[i] {
			used[i] = true
			report.Pairs = append(report.Pairs, Pair{External: ext, Curated: curated[i], By: MatchedByName})
			continue
		}
		report.Unmatched = append(report.Unmatched, ext)
	}
	return report
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
