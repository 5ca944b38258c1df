// Command transfertest fits a coordinate transform to reference point
// pairs and prints fit quality and per-point residuals.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"raid-mapper/internal/transform"
)

func main() {
	pairsPath := flag.String("pairs", "", "Path to JSON array of reference point pairs")
	method := flag.String("method", "auto", "Transform method: auto, tps or affine")
	lambda := flag.Float64("lambda", 0, "Spline smoothing factor (0 = exact interpolation)")
	flag.Parse()

	if *pairsPath == "" {
		fmt.Println("Usage: transfertest -pairs <file.json> [-method affine] [-lambda 0.5] [x,y ...]")
		os.Exit(1)
	}

	points, err := loadPairs(*pairsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load pairs: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("=== Fitting %d reference pairs ===\n", len(points))

	opts := transform.Options{Lambda: *lambda}
	switch *method {
	case "auto", "tps":
	case "affine":
		opts.ForceAffine = true
	default:
		fmt.Fprintf(os.Stderr, "Unknown method %q\n", *method)
		os.Exit(1)
	}

	model, err := transform.Fit(points, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fit failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Method: %s\n", model.Method())
	fmt.Printf("Reference points: %d\n", model.ReferencePointCount())
	fmt.Printf("Mean error: %.3f\n", model.MeanError())
	fmt.Printf("Max error: %.3f\n", model.MaxError())

	printResiduals(model, points)

	for _, arg := range flag.Args() {
		x, y, err := parseQuery(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Bad query point %q: %v\n", arg, err)
			os.Exit(1)
		}
		tx, ty := model.Transform(x, y)
		fmt.Printf("(%g, %g) -> (%.3f, %.3f)\n", x, y, tx, ty)
	}
}

func loadPairs(path string) ([]transform.ReferencePoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var points []transform.ReferencePoint
	if err := json.Unmarshal(data, &points); err != nil {
		return nil, err
	}
	return points, nil
}

func printResiduals(model *transform.Model, points []transform.ReferencePoint) {
	residuals := model.Residuals()
	if len(residuals) == 0 {
		return
	}
	fmt.Println("\nPer-point residuals:")
	deduped := transform.Dedupe(points)
	for i, r := range residuals {
		p := deduped[i]
		fmt.Printf("  src=(%7.1f, %7.1f)  err=%.3f\n", p.Source.X, p.Source.Y, r)
	}
}

func parseQuery(arg string) (float64, float64, error) {
	parts := strings.Split(arg, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("want x,y")
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, err
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}
