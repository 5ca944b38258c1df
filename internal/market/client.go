// Package market fetches marker and quest data from the tarkov-market API.
// List payloads arrive obfuscated; see Decode.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"raid-mapper/internal/marker"
	"raid-mapper/pkg/geometry"
)

// DefaultBaseURL is the production API host.
const DefaultBaseURL = "https://tarkov-market.com"

const userAgent = "raid-mapper/0.1"

// SupportedMaps lists the map slugs the API serves markers for.
var SupportedMaps = []string{
	"customs", "factory", "interchange", "labs", "lighthouse",
	"reserve", "shoreline", "streets", "woods", "ground-zero",
}

// Client talks to the marker API.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient builds a client for the given base URL ("" uses the default).
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Markers fetches and decodes the marker list for one map.
func (c *Client) Markers(ctx context.Context, mapName string) ([]marker.Marker, error) {
	body, err := c.get(ctx, "/api/be/markers/list", url.Values{"map": {mapName}})
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Markers string `json:"markers"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("markers response: %w", err)
	}
	if envelope.Markers == "" {
		return nil, nil
	}

	decoded, err := Decode(envelope.Markers)
	if err != nil {
		return nil, fmt.Errorf("markers for %s: %w", mapName, err)
	}

	var wire []wireMarker
	if err := json.Unmarshal([]byte(decoded), &wire); err != nil {
		return nil, fmt.Errorf("markers for %s: %w", mapName, err)
	}

	out := make([]marker.Marker, 0, len(wire))
	for _, w := range wire {
		out = append(out, w.toMarker(mapName))
	}
	return out, nil
}

// Quests fetches and decodes the quest list.
func (c *Client) Quests(ctx context.Context) ([]marker.Quest, error) {
	body, err := c.get(ctx, "/api/be/quests/list", nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Quests string `json:"quests"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("quests response: %w", err)
	}
	if envelope.Quests == "" {
		return nil, nil
	}

	decoded, err := Decode(envelope.Quests)
	if err != nil {
		return nil, fmt.Errorf("quests: %w", err)
	}

	var wire []wireQuest
	if err := json.Unmarshal([]byte(decoded), &wire); err != nil {
		return nil, fmt.Errorf("quests: %w", err)
	}

	out := make([]marker.Quest, 0, len(wire))
	for _, w := range wire {
		out = append(out, w.toQuest())
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: unexpected status %s", path, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// wireMarker mirrors the decoded marker JSON.
type wireMarker struct {
	UID         string `json:"uid"`
	Name        string `json:"name"`
	Desc        string `json:"desc"`
	Category    string `json:"category"`
	SubCategory string `json:"subCategory"`
	Geometry    *struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"geometry"`
	Level    *int     `json:"level"`
	QuestUID string   `json:"questUid"`
	ItemsUID []string `json:"itemsUid"`
	Imgs     []struct {
		Img  string `json:"img"`
		Name string `json:"name"`
		Desc string `json:"desc"`
	} `json:"imgs"`
	NameL10n map[string]string `json:"name_l10n"`
	DescL10n map[string]string `json:"desc_l10n"`
	Updated  string            `json:"updated"`
}

func (w wireMarker) toMarker(mapName string) marker.Marker {
	m := marker.Marker{
		UID:         w.UID,
		Map:         mapName,
		Category:    marker.Category(w.Category),
		SubCategory: w.SubCategory,
		Name:        w.Name,
		NameKo:      w.NameL10n["ko"],
		NameRu:      w.NameL10n["ru"],
		Description: w.Desc,
		Level:       w.Level,
		QuestUID:    w.QuestUID,
		Updated:     parseTime(w.Updated),
	}
	if w.Geometry != nil {
		m.Position = geometry.Point2D{X: w.Geometry.X, Y: w.Geometry.Y}
	}
	for i, img := range w.Imgs {
		m.Images = append(m.Images, marker.Image{
			URL:         img.Img,
			Name:        img.Name,
			Description: img.Desc,
			Order:       i,
		})
	}
	return m
}

// wireQuest mirrors the decoded quest JSON.
type wireQuest struct {
	UID              string   `json:"uid"`
	BSGID            string   `json:"bsgId"`
	Name             string   `json:"name"`
	RuName           string   `json:"ruName"`
	Trader           string   `json:"trader"`
	Type             string   `json:"type"`
	WikiURL          string   `json:"wikiUrl"`
	ReqLevel         int      `json:"reqLevel"`
	ReqLL            int      `json:"reqLL"`
	ReqRep           float64  `json:"reqRep"`
	RequiredForKappa bool     `json:"requiredForKappa"`
	Active           *bool    `json:"active"`
	EnObjectives     []string `json:"enObjectives"`
	RuObjectives     []string `json:"ruObjectives"`
	Updated          string   `json:"updated"`
}

func (w wireQuest) toQuest() marker.Quest {
	active := true
	if w.Active != nil {
		active = *w.Active
	}
	return marker.Quest{
		UID:             w.UID,
		BSGID:           w.BSGID,
		Name:            w.Name,
		NameRu:          w.RuName,
		Trader:          w.Trader,
		Type:            w.Type,
		WikiURL:         w.WikiURL,
		RequiredLevel:   w.ReqLevel,
		RequiredLoyalty: w.ReqLL,
		RequiredRep:     w.ReqRep,
		KappaRequired:   w.RequiredForKappa,
		Active:          active,
		Objectives:      w.EnObjectives,
		ObjectivesRu:    w.RuObjectives,
		Updated:         parseTime(w.Updated),
	}
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
