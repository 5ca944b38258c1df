// Package raidlog extracts raid history from the game's session log
// folders. Each session folder holds a backend log with raid
// configuration traffic and an application log with session mode lines.
package raidlog

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// MapNames translates location IDs from the backend log to display
// names.
var MapNames = map[string]string{
	"factory4_day":   "Factory (Day)",
	"factory4_night": "Factory (Night)",
	"bigmap":         "Customs",
	"Woods":          "Woods",
	"Shoreline":      "Shoreline",
	"Interchange":    "Interchange",
	"laboratory":     "The Lab",
	"RezervBase":     "Reserve",
	"lighthouse":     "Lighthouse",
	"tarkovstreets":  "Streets of Tarkov",
	"sandbox":        "Ground Zero",
	"sandbox_high":   "Ground Zero (High)",
}

// MapName resolves a location ID; unknown IDs pass through unchanged.
func MapName(locationID string) string {
	if name, ok := MapNames[locationID]; ok {
		return name
	}
	return locationID
}

// Raid is one raid reconstructed from a session's logs.
type Raid struct {
	SessionFolder string
	Map           string
	Mode          string // "PVE", "PVP" or "Unknown"
	Start         time.Time
	End           time.Time // zero when the log ends mid-raid
}

// Duration reports the raid length, or zero when the end is unknown.
func (r Raid) Duration() time.Duration {
	if r.End.IsZero() {
		return 0
	}
	return r.End.Sub(r.Start)
}

var (
	sessionFolderRe = regexp.MustCompile(`^log_(\d{4})\.(\d{2})\.(\d{2})_(\d+)-(\d+)-(\d+)_`)
	locationRe      = regexp.MustCompile(`"location":"([^"]+)"`)
)

// Parse accepts fractional seconds whether or not the layout names
// them, so one layout covers both timestamp shapes in the logs.
const logTimeLayout = "2006-01-02 15:04:05"

// ParseSessionStart extracts the session start time from a log folder
// name of the form log_YYYY.MM.DD_H-M-S_<suffix>.
func ParseSessionStart(folder string) (time.Time, error) {
	m := sessionFolderRe.FindStringSubmatch(folder)
	if m == nil {
		return time.Time{}, fmt.Errorf("raidlog: not a session folder name: %q", folder)
	}
	var n [6]int
	for i := range n {
		n[i], _ = strconv.Atoi(m[i+1])
	}
	return time.Date(n[0], time.Month(n[1]), n[2], n[3], n[4], n[5], 0, time.Local), nil
}

// lineTime parses the timestamp field of a pipe-delimited log line.
func lineTime(line string) (time.Time, bool) {
	i := strings.IndexByte(line, '|')
	if i < 0 {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(logTimeLayout, strings.TrimSpace(line[:i]), time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

type modeStamp struct {
	at   time.Time
	mode string
}

// parseSessionModes scans an application log for "Session mode:" lines.
func parseSessionModes(path string) ([]modeStamp, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var modes []modeStamp
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if !strings.Contains(line, "Session mode:") {
			continue
		}
		at, ok := lineTime(line)
		if !ok {
			continue
		}
		mode := "PVP"
		if strings.Contains(line, "Pve") {
			mode = "PVE"
		}
		modes = append(modes, modeStamp{at: at, mode: mode})
	}
	return modes, sc.Err()
}

// parseBackendRaids reconstructs raids from a backend log. A raid opens
// on a raid configuration request, gets its map from the first
// location field that follows, and closes on a logout or on the next
// raid configuration request.
func parseBackendRaids(path, sessionFolder string) ([]Raid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var (
		raids   []Raid
		current *Raid
	)

	closeCurrent := func(end time.Time) {
		if current != nil && current.Map != "" {
			current.End = end
			raids = append(raids, *current)
		}
		current = nil
	}

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Text()

		if strings.Contains(line, "/client/raid/configuration") && strings.Contains(line, "---> Request") {
			at, ok := lineTime(line)
			if !ok {
				continue
			}
			closeCurrent(at)
			current = &Raid{SessionFolder: sessionFolder, Mode: "Unknown", Start: at}
			continue
		}

		if current != nil && current.Map == "" {
			if m := locationRe.FindStringSubmatch(line); m != nil {
				current.Map = MapName(m[1])
			}
			continue
		}

		if current != nil && strings.Contains(line, "/client/game/logout") {
			if at, ok := lineTime(line); ok {
				closeCurrent(at)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	// Log ended mid-raid; keep the raid with an open end.
	if current != nil && current.Map != "" {
		raids = append(raids, *current)
	}
	return raids, nil
}

// assignModes gives each raid the session mode whose timestamp is
// nearest to the raid start.
func assignModes(raids []Raid, modes []modeStamp) {
	for i := range raids {
		best := math.Inf(1)
		for _, m := range modes {
			d := math.Abs(m.at.Sub(raids[i].Start).Seconds())
			if d < best {
				best = d
				raids[i].Mode = m.mode
			}
		}
	}
}

// AnalyzeSession reconstructs the raids of one session folder.
func AnalyzeSession(dir string) ([]Raid, error) {
	folder := filepath.Base(dir)
	if _, err := ParseSessionStart(folder); err != nil {
		return nil, err
	}

	backend, err := findLog(dir, "backend_000.log")
	if err != nil {
		return nil, err
	}
	raids, err := parseBackendRaids(backend, folder)
	if err != nil {
		return nil, fmt.Errorf("raidlog: %s: %w", folder, err)
	}

	if application, err := findLog(dir, "application_000.log"); err == nil {
		modes, err := parseSessionModes(application)
		if err != nil {
			return nil, fmt.Errorf("raidlog: %s: %w", folder, err)
		}
		assignModes(raids, modes)
	}
	return raids, nil
}

// AnalyzeAll walks a logs directory and returns the raids of every
// session folder, oldest first.
func AnalyzeAll(root string) ([]Raid, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("raidlog: %w", err)
	}

	var all []Raid
	for _, e := range entries {
		if !e.IsDir() || !sessionFolderRe.MatchString(e.Name()) {
			continue
		}
		raids, err := AnalyzeSession(filepath.Join(root, e.Name()))
		if err != nil {
			continue
		}
		all = append(all, raids...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Start.Before(all[j].Start) })
	return all, nil
}

func findLog(dir, suffix string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+suffix))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("raidlog: no *%s in %s", suffix, dir)
	}
	return matches[0], nil
}
