// Package store persists markers, quests and verification results in a
// local SQLite database.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"raid-mapper/internal/marker"
)

const schemaVersion = "1.0"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS markers (
    uid TEXT PRIMARY KEY,
    map TEXT NOT NULL,
    category TEXT NOT NULL,
    sub_category TEXT,
    name TEXT NOT NULL,
    name_ko TEXT,
    name_ru TEXT,
    description TEXT,
    geometry_x REAL NOT NULL,
    geometry_y REAL NOT NULL,
    level INTEGER,
    quest_uid TEXT,
    images TEXT,
    updated_at DATETIME,
    synced_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    is_verified BOOLEAN DEFAULT FALSE,
    verification_distance REAL,

    FOREIGN KEY (quest_uid) REFERENCES quests(uid)
);

CREATE TABLE IF NOT EXISTS quests (
    uid TEXT PRIMARY KEY,
    bsg_id TEXT UNIQUE NOT NULL,
    name TEXT NOT NULL,
    name_ru TEXT,
    trader TEXT,
    type TEXT,
    wiki_url TEXT,
    required_level INTEGER,
    required_loyalty_level INTEGER,
    required_reputation REAL,
    required_for_kappa BOOLEAN DEFAULT FALSE,
    is_active BOOLEAN DEFAULT TRUE,
    objectives_en TEXT,
    objectives_ru TEXT,
    updated_at DATETIME,
    synced_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS marker_images (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    marker_uid TEXT NOT NULL,
    image_url TEXT NOT NULL,
    image_name TEXT,
    image_description TEXT,
    display_order INTEGER DEFAULT 0,

    FOREIGN KEY (marker_uid) REFERENCES markers(uid)
);

CREATE TABLE IF NOT EXISTS verification_results (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    marker_uid TEXT NOT NULL,
    verified_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    api_x REAL,
    api_y REAL,
    web_x REAL,
    web_y REAL,
    distance REAL,
    is_match BOOLEAN,
    notes TEXT,

    FOREIGN KEY (marker_uid) REFERENCES markers(uid)
);

CREATE TABLE IF NOT EXISTS sync_metadata (
    key TEXT PRIMARY KEY,
    value TEXT,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_markers_map ON markers(map);
CREATE INDEX IF NOT EXISTS idx_markers_category ON markers(category);
CREATE INDEX IF NOT EXISTS idx_markers_quest ON markers(quest_uid);
CREATE INDEX IF NOT EXISTS idx_markers_verified ON markers(is_verified);
CREATE INDEX IF NOT EXISTS idx_quests_bsg ON quests(bsg_id);
CREATE INDEX IF NOT EXISTS idx_quests_trader ON quests(trader);
CREATE INDEX IF NOT EXISTS idx_quests_kappa ON quests(required_for_kappa);
CREATE INDEX IF NOT EXISTS idx_verification_marker ON verification_results(marker_uid);
CREATE INDEX IF NOT EXISTS idx_marker_images_marker ON marker_images(marker_uid);
`

// Store wraps the SQLite connection.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the database at path, creating parent
// directories as needed. The schema is not applied; call Init.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	return &Store{db: db, path: path}, nil
}

// Close releases the connection.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Init applies the schema and records the schema version. Safe to call
// on an already initialized database.
func (s *Store) Init() error {
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return s.SetMeta("schema_version", schemaVersion)
}

// UpsertMarkers writes markers for one map, replacing existing rows by
// UID. Marker images are rewritten alongside. Returns the number of
// markers written.
func (s *Store) UpsertMarkers(markers []marker.Marker) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("upsert markers: %w", err)
	}
	defer tx.Rollback()

	insMarker, err := tx.Prepare(`
        INSERT OR REPLACE INTO markers (
            uid, map, category, sub_category,
            name, name_ko, name_ru, description,
            geometry_x, geometry_y, level, quest_uid,
            images, updated_at, synced_at,
            is_verified, verification_distance
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'), ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("upsert markers: %w", err)
	}
	defer insMarker.Close()

	insImage, err := tx.Prepare(`
        INSERT INTO marker_images (marker_uid, image_url, image_name, image_description, display_order)
        VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("upsert markers: %w", err)
	}
	defer insImage.Close()

	count := 0
	for _, m := range markers {
		var images any
		if len(m.Images) > 0 {
			raw, err := json.Marshal(m.Images)
			if err != nil {
				return 0, fmt.Errorf("upsert marker %s: %w", m.UID, err)
			}
			images = string(raw)
		}

		var dist any
		if m.Verified {
			dist = m.VerificationDistance
		}

		_, err = insMarker.Exec(
			m.UID, m.Map, string(m.Category), nullStr(m.SubCategory),
			m.Name, nullStr(m.NameKo), nullStr(m.NameRu), nullStr(m.Description),
			m.Position.X, m.Position.Y, m.Level, nullStr(m.QuestUID),
			images, nullTime(m.Updated),
			m.Verified, dist,
		)
		if err != nil {
			return 0, fmt.Errorf("upsert marker %s: %w", m.UID, err)
		}

		if _, err := tx.Exec(`DELETE FROM marker_images WHERE marker_uid = ?`, m.UID); err != nil {
			return 0, fmt.Errorf("upsert marker %s: %w", m.UID, err)
		}
		for _, img := range m.Images {
			if _, err := insImage.Exec(m.UID, img.URL, nullStr(img.Name), nullStr(img.Description), img.Order); err != nil {
				return 0, fmt.Errorf("upsert marker %s: %w", m.UID, err)
			}
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("upsert markers: %w", err)
	}
	return count, nil
}

// UpsertQuests writes quests, replacing existing rows by UID.
func (s *Store) UpsertQuests(quests []marker.Quest) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("upsert quests: %w", err)
	}
	defer tx.Rollback()

	ins, err := tx.Prepare(`
        INSERT OR REPLACE INTO quests (
            uid, bsg_id, name, name_ru, trader, type,
            wiki_url, required_level, required_loyalty_level,
            required_reputation, required_for_kappa, is_active,
            objectives_en, objectives_ru, updated_at, synced_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))`)
	if err != nil {
		return 0, fmt.Errorf("upsert quests: %w", err)
	}
	defer ins.Close()

	count := 0
	for _, q := range quests {
		en, err := jsonArray(q.Objectives)
		if err != nil {
			return 0, fmt.Errorf("upsert quest %s: %w", q.UID, err)
		}
		ru, err := jsonArray(q.ObjectivesRu)
		if err != nil {
			return 0, fmt.Errorf("upsert quest %s: %w", q.UID, err)
		}

		_, err = ins.Exec(
			q.UID, q.BSGID, q.Name, nullStr(q.NameRu), nullStr(q.Trader), nullStr(q.Type),
			nullStr(q.WikiURL), q.RequiredLevel, q.RequiredLoyalty,
			q.RequiredRep, q.KappaRequired, q.Active,
			en, ru, nullTime(q.Updated),
		)
		if err != nil {
			return 0, fmt.Errorf("upsert quest %s: %w", q.UID, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("upsert quests: %w", err)
	}
	return count, nil
}

const markerColumns = `
    uid, map, category, sub_category,
    name, name_ko, name_ru, description,
    geometry_x, geometry_y, level, quest_uid,
    images, updated_at, is_verified, verification_distance`

// MarkersByMap returns every marker stored for one map, ordered by
// category then name.
func (s *Store) MarkersByMap(mapName string) ([]marker.Marker, error) {
	rows, err := s.db.Query(`SELECT `+markerColumns+`
        FROM markers WHERE map = ? ORDER BY category, name`, mapName)
	if err != nil {
		return nil, fmt.Errorf("markers for %s: %w", mapName, err)
	}
	defer rows.Close()

	var out []marker.Marker
	for rows.Next() {
		m, err := scanMarker(rows)
		if err != nil {
			return nil, fmt.Errorf("markers for %s: %w", mapName, err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MarkerByUID returns one marker, or sql.ErrNoRows if absent.
func (s *Store) MarkerByUID(uid string) (marker.Marker, error) {
	row := s.db.QueryRow(`SELECT `+markerColumns+`
        FROM markers WHERE uid = ?`, uid)
	m, err := scanMarker(row)
	if err != nil {
		return marker.Marker{}, fmt.Errorf("marker %s: %w", uid, err)
	}
	return m, nil
}

// SaveVerification records one verification run result and, on a
// positive match, flags the marker row as verified.
func (s *Store) SaveVerification(r marker.VerificationResult) error {
	var webX, webY any
	if r.Observed != nil {
		webX, webY = r.Observed.X, r.Observed.Y
	}

	_, err := s.db.Exec(`
        INSERT INTO verification_results (
            marker_uid, verified_at, api_x, api_y, web_x, web_y,
            distance, is_match, notes
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.MarkerUID, r.VerifiedAt,
		r.Position.X, r.Position.Y, webX, webY,
		r.Distance, r.IsMatch, nullStr(r.Err),
	)
	if err != nil {
		return fmt.Errorf("save verification for %s: %w", r.MarkerUID, err)
	}

	if r.IsMatch {
		_, err = s.db.Exec(`
            UPDATE markers SET is_verified = TRUE, verification_distance = ?
            WHERE uid = ?`, r.Distance, r.MarkerUID)
		if err != nil {
			return fmt.Errorf("save verification for %s: %w", r.MarkerUID, err)
		}
	}
	return nil
}

// Stats summarizes database contents.
type Stats struct {
	TotalMarkers      int
	VerifiedMarkers   int
	MarkersByMap      map[string]int
	MarkersByCategory map[string]int
	TotalQuests       int
	KappaQuests       int
	LastFullSync      string
}

// Stats aggregates counts over the whole database.
func (s *Store) Stats() (Stats, error) {
	var st Stats

	if err := s.db.QueryRow(`SELECT COUNT(*) FROM markers`).Scan(&st.TotalMarkers); err != nil {
		return st, fmt.Errorf("stats: %w", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM markers WHERE is_verified = TRUE`).Scan(&st.VerifiedMarkers); err != nil {
		return st, fmt.Errorf("stats: %w", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM quests`).Scan(&st.TotalQuests); err != nil {
		return st, fmt.Errorf("stats: %w", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM quests WHERE required_for_kappa = TRUE`).Scan(&st.KappaQuests); err != nil {
		return st, fmt.Errorf("stats: %w", err)
	}

	var err error
	if st.MarkersByMap, err = s.countBy(`SELECT map, COUNT(*) FROM markers GROUP BY map`); err != nil {
		return st, err
	}
	if st.MarkersByCategory, err = s.countBy(`SELECT category, COUNT(*) FROM markers GROUP BY category`); err != nil {
		return st, err
	}

	st.LastFullSync, _ = s.Meta("last_full_sync")
	return st, nil
}

// SetMeta stores one sync metadata key.
func (s *Store) SetMeta(key, value string) error {
	_, err := s.db.Exec(`
        INSERT OR REPLACE INTO sync_metadata (key, value, updated_at)
        VALUES (?, ?, datetime('now'))`, key, value)
	if err != nil {
		return fmt.Errorf("set meta %s: %w", key, err)
	}
	return nil
}

// Meta reads one sync metadata key; missing keys return "".
func (s *Store) Meta(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM sync_metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("meta %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) countBy(query string) (map[string]int, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("stats: %w", err)
		}
		out[key] = n
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMarker(row rowScanner) (marker.Marker, error) {
	var (
		m                                 marker.Marker
		subCategory, nameKo, nameRu, desc sql.NullString
		questUID, images                  sql.NullString
		level                             sql.NullInt64
		updated                           sql.NullTime
		dist                              sql.NullFloat64
		category                          string
	)
	err := row.Scan(
		&m.UID, &m.Map, &category, &subCategory,
		&m.Name, &nameKo, &nameRu, &desc,
		&m.Position.X, &m.Position.Y, &level, &questUID,
		&images, &updated, &m.Verified, &dist,
	)
	if err != nil {
		return marker.Marker{}, err
	}

	m.Category = marker.Category(category)
	m.SubCategory = subCategory.String
	m.NameKo = nameKo.String
	m.NameRu = nameRu.String
	m.Description = desc.String
	m.QuestUID = questUID.String
	if level.Valid {
		v := int(level.Int64)
		m.Level = &v
	}
	if updated.Valid {
		m.Updated = updated.Time
	}
	if dist.Valid {
		m.VerificationDistance = dist.Float64
	}
	if images.Valid && images.String != "" {
		if err := json.Unmarshal([]byte(images.String), &m.Images); err != nil {
			return marker.Marker{}, fmt.Errorf("images for %s: %w", m.UID, err)
		}
	}
	return m, nil
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func jsonArray(items []string) (any, error) {
	if len(items) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}
