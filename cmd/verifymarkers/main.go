// Command verifymarkers compares stored marker positions against an
// observed marker set and records the results.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"raid-mapper/internal/marker"
	"raid-mapper/internal/prefs"
	"raid-mapper/internal/store"
)

func main() {
	p := prefs.Load()
	defaultDB := p.String(prefs.KeyDatabasePath, filepath.Join("data", "tarkov_markers.db"))
	defaultTol := p.Float(prefs.KeyTolerance, marker.DefaultVerifyTolerance)

	mapName := flag.String("map", "", "Map to verify")
	observedPath := flag.String("observed", "", "Path to JSON array of observed markers")
	dbPath := flag.String("db", defaultDB, "Database path")
	tolerance := flag.Float64("tolerance", defaultTol, "Position tolerance")
	save := flag.Bool("save", false, "Record results in the database")
	verbose := flag.Bool("v", false, "Print every result, not just discrepancies")
	flag.Parse()

	if *mapName == "" || *observedPath == "" {
		fmt.Println("Usage: verifymarkers -map <name> -observed <file.json> [-tolerance 5] [-save]")
		os.Exit(1)
	}

	if err := run(*mapName, *observedPath, *dbPath, *tolerance, *save, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Verification failed: %v\n", err)
		os.Exit(1)
	}
}

func run(mapName, observedPath, dbPath string, tolerance float64, save, verbose bool) error {
	db, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	markers, err := db.MarkersByMap(mapName)
	if err != nil {
		return err
	}

	observed, err := loadObserved(observedPath)
	if err != nil {
		return err
	}
	fmt.Printf("=== Verifying %d markers against %d observations ===\n", len(markers), len(observed))

	results := marker.Verify(markers, observed, tolerance)

	matched, missing := 0, 0
	for _, r := range results {
		switch {
		case r.IsMatch:
			matched++
			if verbose {
				fmt.Printf("OK   %-40s dist=%.2f\n", r.MarkerName, r.Distance)
			}
		case r.Err != "":
			missing++
			fmt.Printf("MISS %-40s %s\n", r.MarkerName, r.Err)
		default:
			fmt.Printf("FAR  %-40s dist=%.2f (tolerance %.2f)\n", r.MarkerName, r.Distance, tolerance)
		}

		if save {
			if err := db.SaveVerification(r); err != nil {
				return err
			}
		}
	}

	fmt.Printf("\n%d matched, %d off position, %d missing\n",
		matched, len(results)-matched-missing, missing)
	return nil
}

func loadObserved(path string) ([]marker.Marker, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var markers []marker.Marker
	if err := json.Unmarshal(data, &markers); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return markers, nil
}
