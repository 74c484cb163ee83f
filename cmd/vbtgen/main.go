package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"vbtlab/adapters/export"
	"vbtlab/adapters/rng"
	"vbtlab/app"
	"vbtlab/internal/synth"
	"vbtlab/ports"
)

func main() {
	n := flag.Int("n", 100, "number of participants")
	seed := flag.Int64("seed", 42, "RNG seed (deterministic)")
	out := flag.String("out", "./output", "output directory")
	formats := flag.String("format", "csv,xlsx,json", "comma-separated formats: csv, xlsx, json")
	start := flag.String("start", "2025-01-01", "study start date (YYYY-MM-DD)")
	flag.Parse()

	if *n <= 0 {
		fmt.Fprintln(os.Stderr, "n must be > 0")
		os.Exit(2)
	}

	startDate, err := time.ParseInLocation("2006-01-02", *start, time.UTC)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid -start (expected YYYY-MM-DD):", err)
		os.Exit(2)
	}

	writers, err := buildWriters(*formats, *out)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg := synth.DefaultConfig()
	cfg.ParticipantCount = *n
	cfg.Seed = *seed
	cfg.StudyStartDate = startDate

	svc := app.NewGenerationService(func(seed int64) ports.RNG {
		return rng.New(seed)
	})

	ctx := context.Background()
	result, err := svc.GenerateConcurrent(ctx, app.GenerationRequest{Config: cfg})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error generating dataset:", err)
		os.Exit(1)
	}

	var written []string
	for _, w := range writers {
		paths, err := w.Write(ctx, result.Dataset, result.Quality)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error writing dataset:", err)
			os.Exit(1)
		}
		written = append(written, paths...)
	}

	m := result.Dataset.Manifest
	fmt.Printf("Dataset %s generated in %dms\n", m.DatasetID, result.RuntimeMs)
	fmt.Printf("Participants: %d | Measurements: %d | Seed: %d\n",
		m.ParticipantCount, m.MeasurementCount, m.Seed)
	fmt.Printf("Fingerprint: %s\n", m.Fingerprint)
	for _, path := range written {
		fmt.Printf("Wrote %s\n", path)
	}
}

func buildWriters(spec, dir string) ([]ports.DatasetWriter, error) {
	seen := make(map[string]bool)
	var writers []ports.DatasetWriter
	for _, name := range strings.Split(spec, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		switch name {
		case "csv":
			writers = append(writers, export.NewCSVWriter(dir))
		case "xlsx":
			writers = append(writers, export.NewXLSXWriter(dir))
		case "json":
			writers = append(writers, export.NewMetadataWriter(dir))
		default:
			return nil, fmt.Errorf("unsupported format: %s", name)
		}
	}
	if len(writers) == 0 {
		return nil, fmt.Errorf("no output formats selected")
	}
	return writers, nil
}
