// Command raidhistory scans the game's log directory and prints the
// reconstructed raid history.
package main

import (
	"flag"
	"fmt"
	"os"

	"raid-mapper/internal/prefs"
	"raid-mapper/internal/raidlog"
)

func main() {
	p := prefs.Load()
	defaultLogs := p.String(prefs.KeyGameLogDir, "")

	logsDir := flag.String("logs", defaultLogs, "Game Logs directory")
	mapFilter := flag.String("map", "", "Only show raids on this map")
	flag.Parse()

	if *logsDir == "" {
		fmt.Println("Usage: raidhistory -logs <game logs dir> [-map Customs]")
		os.Exit(1)
	}

	raids, err := raidlog.AnalyzeAll(*logsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Analysis failed: %v\n", err)
		os.Exit(1)
	}

	shown := 0
	fmt.Printf("%-19s  %-22s  %-7s  %s\n", "Start", "Map", "Mode", "Duration")
	for _, r := range raids {
		if *mapFilter != "" && r.Map != *mapFilter {
			continue
		}
		duration := "in progress"
		if !r.End.IsZero() {
			duration = fmt.Sprintf("%.1f min", r.Duration().Minutes())
		}
		fmt.Printf("%-19s  %-22s  %-7s  %s\n",
			r.Start.Format("2006-01-02 15:04:05"), r.Map, r.Mode, duration)
		shown++
	}
	fmt.Printf("\n%d raids\n", shown)
}
