// Package marker defines the marker and quest model shared by the sync,
// verification and map transfer workflows, and implements the matching step
// that pairs externally sourced markers with locally curated ones.
package marker

import (
	"time"

	"github.com/google/uuid"

	"raid-mapper/pkg/geometry"
)

// Category classifies a map marker.
type Category string

const (
	CategoryQuests      Category = "Quests"
	CategoryExtractions Category = "Extractions"
	CategorySpawns      Category = "Spawns"
	CategoryKeys        Category = "Keys"
	CategoryLoot        Category = "Loot"
)

// Marker is a single point of interest on a map. Position is interpreted in
// whatever coordinate space the marker came from: SVG pixel space for API
// markers, world space for curated ones.
type Marker struct {
	UID         string           `json:"uid"`
	Map         string           `json:"map"`
	Category    Category         `json:"category"`
	SubCategory string           `json:"subCategory,omitempty"`
	Name        string           `json:"name"`
	NameKo      string           `json:"nameKo,omitempty"`
	NameRu      string           `json:"nameRu,omitempty"`
	Description string           `json:"description,omitempty"`
	Position    geometry.Point2D `json:"position"`
	Level       *int             `json:"level,omitempty"`
	QuestUID    string           `json:"questUid,omitempty"`
	Images      []Image          `json:"images,omitempty"`
	Updated     time.Time        `json:"updated,omitempty"`

	// Verification state, maintained by the verify workflow.
	Verified             bool    `json:"verified"`
	VerificationDistance float64 `json:"verificationDistance,omitempty"`
}

// Image is one reference screenshot attached to a marker.
type Image struct {
	URL         string `json:"url"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Order       int    `json:"order"`
}

// New creates a curated marker with a fresh UID.
func New(mapName string, category Category, name string, pos geometry.Point2D) Marker {
	return Marker{
		UID:      uuid.NewString(),
		Map:      mapName,
		Category: category,
		Name:     name,
		Position: pos,
	}
}

// Quest is a task definition markers can reference via QuestUID.
type Quest struct {
	UID             string    `json:"uid"`
	BSGID           string    `json:"bsgId"`
	Name            string    `json:"name"`
	NameRu          string    `json:"nameRu,omitempty"`
	Trader          string    `json:"trader,omitempty"`
	Type            string    `json:"type,omitempty"`
	WikiURL         string    `json:"wikiUrl,omitempty"`
	RequiredLevel   int       `json:"requiredLevel,omitempty"`
	RequiredLoyalty int       `json:"requiredLoyalty,omitempty"`
	RequiredRep     float64   `json:"requiredRep,omitempty"`
	KappaRequired   bool      `json:"kappaRequired"`
	Active          bool      `json:"active"`
	Objectives      []string  `json:"objectives,omitempty"`
	ObjectivesRu    []string  `json:"objectivesRu,omitempty"`
	Updated         time.Time `json:"updated,omitempty"`
}
