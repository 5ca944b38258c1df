// Command markersync fetches markers and quests from the tarkov-market
// API and syncs them into a local SQLite database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"raid-mapper/internal/market"
	"raid-mapper/internal/prefs"
	"raid-mapper/internal/store"
	"raid-mapper/internal/version"
)

func main() {
	p := prefs.Load()
	defaultDB := p.String(prefs.KeyDatabasePath, filepath.Join("data", "tarkov_markers.db"))
	defaultBase := p.String(prefs.KeyAPIBaseURL, market.DefaultBaseURL)
	defaultLogDir := p.String(prefs.KeyLogDir, "logs")

	full := flag.Bool("full", false, "Sync markers for all supported maps plus quests")
	mapName := flag.String("map", "", "Sync markers for one map only")
	quests := flag.Bool("quests", false, "Sync quests only")
	initDB := flag.Bool("initdb", false, "Initialize the database schema and exit")
	stats := flag.Bool("stats", false, "Print database statistics and exit")
	dbPath := flag.String("db", defaultDB, "Database path")
	baseURL := flag.String("base", defaultBase, "API base URL")
	logDir := flag.String("logdir", defaultLogDir, "Log directory")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("markersync %s (%s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
		return
	}
	if !*full && *mapName == "" && !*quests && !*initDB && !*stats {
		fmt.Println("Usage: markersync [-full | -map <name> | -quests | -initdb | -stats] [-db <path>]")
		os.Exit(1)
	}

	cleanup, err := initLogger(*logDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := run(*dbPath, *baseURL, *mapName, *full, *quests, *initDB, *stats); err != nil {
		slog.Error("markersync failed", "error", err)
		os.Exit(1)
	}
}

func run(dbPath, baseURL, mapName string, full, questsOnly, initDB, stats bool) error {
	db, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Init(); err != nil {
		return err
	}
	if initDB {
		slog.Info("database initialized", "path", dbPath)
		return nil
	}
	if stats {
		return printStats(db)
	}

	ctx := context.Background()
	client := market.NewClient(baseURL)

	if mapName != "" {
		if !slices.Contains(market.SupportedMaps, mapName) {
			return fmt.Errorf("unsupported map %q (supported: %v)", mapName, market.SupportedMaps)
		}
		_, err := syncMap(ctx, client, db, mapName)
		return err
	}

	if questsOnly {
		_, err := syncQuests(ctx, client, db)
		return err
	}

	// Full sync: every map, then quests.
	totalMarkers := 0
	for _, name := range market.SupportedMaps {
		n, err := syncMap(ctx, client, db, name)
		if err != nil {
			slog.Error("map sync failed", "map", name, "error", err)
			continue
		}
		totalMarkers += n
	}
	totalQuests, err := syncQuests(ctx, client, db)
	if err != nil {
		slog.Error("quest sync failed", "error", err)
	}

	if err := db.SetMeta("last_full_sync", time.Now().Format(time.RFC3339)); err != nil {
		return err
	}
	slog.Info("full sync complete", "markers", totalMarkers, "quests", totalQuests)
	return nil
}

func syncMap(ctx context.Context, client *market.Client, db *store.Store, mapName string) (int, error) {
	slog.Info("fetching markers", "map", mapName)
	markers, err := client.Markers(ctx, mapName)
	if err != nil {
		return 0, err
	}
	n, err := db.UpsertMarkers(markers)
	if err != nil {
		return 0, err
	}
	slog.Info("markers synced", "map", mapName, "count", n)
	return n, nil
}

func syncQuests(ctx context.Context, client *market.Client, db *store.Store) (int, error) {
	slog.Info("fetching quests")
	quests, err := client.Quests(ctx)
	if err != nil {
		return 0, err
	}
	n, err := db.UpsertQuests(quests)
	if err != nil {
		return 0, err
	}
	slog.Info("quests synced", "count", n)
	return n, nil
}

func printStats(db *store.Store) error {
	st, err := db.Stats()
	if err != nil {
		return err
	}

	fmt.Printf("Markers: %d total, %d verified\n", st.TotalMarkers, st.VerifiedMarkers)
	fmt.Println("By map:")
	for _, name := range market.SupportedMaps {
		if n, ok := st.MarkersByMap[name]; ok {
			fmt.Printf("  %-14s %d\n", name, n)
		}
	}
	fmt.Println("By category:")
	for cat, n := range st.MarkersByCategory {
		fmt.Printf("  %-14s %d\n", cat, n)
	}
	fmt.Printf("Quests: %d total, %d kappa\n", st.TotalQuests, st.KappaQuests)
	if st.LastFullSync != "" {
		fmt.Printf("Last full sync: %s\n", st.LastFullSync)
	}
	return nil
}
