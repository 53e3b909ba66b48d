// Command validate checks a program catalog file: every program parses, its
// requirements are internally consistent, and its scoring weights cover the
// declared criteria. It prints a per-program summary and exits non-zero on the
// first invalid catalog, so it can gate deploys in CI.
//
// Usage:
//
//	go run ./cmd/validate -catalog config/programs.yaml
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/couchcryptid/parcel-screening/internal/domain"
	"github.com/couchcryptid/parcel-screening/internal/program"
)

func main() {
	catalog := flag.String("catalog", "config/programs.yaml", "path to the program catalog")
	flag.Parse()

	registry, err := program.Load(*catalog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %s: %v\n", *catalog, err)
		os.Exit(1)
	}

	fmt.Printf("=== Program Catalog Validation ===\n\n")
	fmt.Printf("Catalog: %s\n", *catalog)
	fmt.Printf("Programs: %d\n\n", len(registry.Keys()))

	for _, key := range registry.Keys() {
		prog, err := registry.Get(key)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %s: %v\n", key, err)
			os.Exit(1)
		}
		printProgram(prog)
	}

	fmt.Println("Catalog is valid.")
}

func printProgram(p domain.Program) {
	req := p.Requirements

	fmt.Printf("%s (%s)\n", p.Key, p.Name)
	fmt.Printf("  acreage: %.1f - %.1f acres\n", req.MinAcres, req.MaxAcres)
	fmt.Printf("  max slope: %.1f%%\n", req.MaxSlopePct)
	if len(req.AllowedSoilOrders) > 0 {
		fmt.Printf("  allowed soils: %s\n", strings.Join(req.AllowedSoilOrders, ", "))
	}
	if len(req.ExcludedSoilOrders) > 0 {
		fmt.Printf("  excluded soils: %s\n", strings.Join(req.ExcludedSoilOrders, ", "))
	}
	if req.MaxRoadAccessMiles != nil {
		fmt.Printf("  max road distance: %.2f mi\n", *req.MaxRoadAccessMiles)
	}
	for county, status := range req.CountyRestrictions {
		fmt.Printf("  county %s: %s\n", county, status)
	}

	fmt.Printf("  weights:")
	for _, criterion := range []string{domain.CriterionAcres, domain.CriterionSoilHealth, domain.CriterionErosionRisk, domain.CriterionAccess} {
		if w := p.Weight(criterion); w > 0 {
			fmt.Printf(" %s=%.0f", criterion, w)
		}
	}
	fmt.Printf("\n\n")
}
