// Command overlayrender draws the stored markers of one map over a base
// image and writes the result as PNG or WebP.
package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"raid-mapper/internal/overlay"
	"raid-mapper/internal/prefs"
	"raid-mapper/internal/screenshot"
	"raid-mapper/internal/store"
	"raid-mapper/pkg/geometry"
)

func main() {
	p := prefs.Load()
	defaultDB := p.String(prefs.KeyDatabasePath, filepath.Join("data", "tarkov_markers.db"))

	mapName := flag.String("map", "", "Map to render")
	basePath := flag.String("base", "", "Base map image (png or jpeg)")
	outPath := flag.String("out", "overlay.png", "Output file")
	format := flag.String("format", "png", "Output format: png or webp")
	dbPath := flag.String("db", defaultDB, "Database path")
	scale := flag.Float64("scale", 1, "Base image scale factor")
	worldSpec := flag.String("world", "", "World bounds as x,y,width,height")
	shotName := flag.String("screenshot", "", "Screenshot filename to mark the player position")
	highlight := flag.Bool("highlight", false, "Ring markers that failed verification")
	flag.Parse()

	if *mapName == "" || *basePath == "" || *worldSpec == "" {
		fmt.Println("Usage: overlayrender -map <name> -base <image> -world x,y,w,h [-out overlay.png] [-format webp]")
		os.Exit(1)
	}

	world, err := parseWorld(*worldSpec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Bad world bounds: %v\n", err)
		os.Exit(1)
	}

	if err := run(*mapName, *basePath, *outPath, *format, *dbPath, *shotName, world, *scale, *highlight); err != nil {
		fmt.Fprintf(os.Stderr, "Render failed: %v\n", err)
		os.Exit(1)
	}
}

func run(mapName, basePath, outPath, format, dbPath, shotName string, world geometry.Rect, scale float64, highlight bool) error {
	db, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	markers, err := db.MarkersByMap(mapName)
	if err != nil {
		return err
	}
	fmt.Printf("=== Rendering %d markers for %s ===\n", len(markers), mapName)

	f, err := os.Open(basePath)
	if err != nil {
		return err
	}
	base, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("decode %s: %w", basePath, err)
	}

	opts := overlay.Options{Scale: scale, HighlightUnverified: highlight}
	if shotName != "" {
		pos, err := screenshot.ParsePosition(filepath.Base(shotName))
		if err != nil {
			return err
		}
		player := geometry.Point2D{X: pos.X, Y: pos.Z}
		opts.Player = &player
		fmt.Printf("Player at (%.1f, %.1f)\n", player.X, player.Y)
	}

	img, err := overlay.Render(base, markers, world, overlay.DefaultPalette(), opts)
	if err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	switch format {
	case "png":
		err = overlay.EncodePNG(out, img)
	case "webp":
		err = overlay.EncodeWebP(out, img)
	default:
		err = fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", outPath)
	return nil
}

func parseWorld(spec string) (geometry.Rect, error) {
	var r geometry.Rect
	n, err := fmt.Sscanf(spec, "%f,%f,%f,%f", &r.X, &r.Y, &r.Width, &r.Height)
	if err != nil || n != 4 {
		return geometry.Rect{}, fmt.Errorf("want x,y,width,height, got %q", spec)
	}
	return r, nil
}
