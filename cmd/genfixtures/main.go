// Command genfixtures generates deterministic parcel fixtures for test suites
// and local development. It runs the synthetic source and the real
// normalization code, so the fixtures match pipeline behavior exactly.
//
// Usage:
//
//	go run ./cmd/genfixtures \
//	  -county McLean -state IL \
//	  -raw-out testdata/mclean_raw.json \
//	  -parcels-out testdata/mclean_parcels.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/parcel-screening/internal/adapter/synthetic"
	"github.com/couchcryptid/parcel-screening/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	county := flag.String("county", "", "county name to generate parcels for")
	state := flag.String("state", "", "two-letter state code")
	rawOut := flag.String("raw-out", "", "output path for raw record fixture")
	parcelsOut := flag.String("parcels-out", "", "output path for normalized parcel fixture")
	flag.Parse()

	if *county == "" || *state == "" || *rawOut == "" || *parcelsOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -county, -state, -raw-out, -parcels-out")
	}

	// Fix the clock so timestamped output is reproducible.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	source := synthetic.NewSource()
	raw, err := source.FetchParcels(context.Background(), domain.Jurisdiction{
		County: *county,
		State:  *state,
	})
	if err != nil {
		return fmt.Errorf("generating records: %w", err)
	}
	log.Printf("generated %d raw records for %s County, %s", len(raw), *county, *state)

	parcels := make([]domain.Parcel, 0, len(raw))
	for _, record := range raw {
		parcel, err := domain.Normalize(record)
		if err != nil {
			return fmt.Errorf("normalizing %v: %w", record.Fields["apn"], err)
		}
		parcels = append(parcels, parcel)
	}

	if err := writeJSON(*rawOut, raw); err != nil {
		return fmt.Errorf("writing raw fixture: %w", err)
	}
	log.Printf("wrote raw fixture: %s", *rawOut)

	if err := writeJSON(*parcelsOut, parcels); err != nil {
		return fmt.Errorf("writing parcel fixture: %w", err)
	}
	log.Printf("wrote parcel fixture: %s", *parcelsOut)

	printStats(parcels)
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(parcels []domain.Parcel) {
	soilCounts := map[string]int{}
	var minAcres, maxAcres float64
	for i, p := range parcels {
		soilCounts[p.SoilOrder]++
		if i == 0 || p.Acres < minAcres {
			minAcres = p.Acres
		}
		if p.Acres > maxAcres {
			maxAcres = p.Acres
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(parcels))
	fmt.Printf("Acres: min=%.1f, max=%.1f\n", minAcres, maxAcres)
	fmt.Printf("Soil orders:")
	for order, count := range soilCounts {
		fmt.Printf(" %s=%d", order, count)
	}
	fmt.Println()
}
