// Package synthetic generates deterministic, plausible parcel data for
// development, tests, and the explicit live-fetch fallback path. Generation
// is seeded from the jurisdiction, so the same county always yields the same
// records — fixture files and re-runs stay stable.
package synthetic

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"

	"github.com/couchcryptid/parcel-screening/internal/domain"
)

// SourceName identifies this adapter in diagnostics.
const SourceName = "synthetic"

// parcelCount is how many records a jurisdiction generates.
const parcelCount = 12

var owners = []string{
	"Smith Family Farm LLC",
	"Johnson Agricultural Enterprises",
	"Williams Family Trust",
	"Davis Farm Partnership",
	"Brown Agricultural Corp",
	"Miller Land Holdings",
}

var roadNames = []string{
	"E 1000 North Road",
	"W 1500 South Road",
	"N 2000 East Road",
	"S 2500 West Road",
	"E 3000 North Road",
}

// soilOrders cycles through the vocabulary, including the orders typical
// program rules exclude, so screening output exercises every verdict.
var soilOrders = []string{
	"Alfisols", "Mollisols", "Entisols", "Inceptisols",
	"Spodosols", "Histosols", "Vertisols", "Mollisols",
}

// Source implements both domain.ParcelSource and domain.SoilSource with
// generated data. It never fails.
type Source struct{}

func NewSource() *Source { return &Source{} }

func (s *Source) Name() string { return SourceName }

// FetchParcels generates the jurisdiction's fixed parcel set. The PRNG is
// seeded from the jurisdiction name, so repeated calls are byte-identical.
func (s *Source) FetchParcels(_ context.Context, j domain.Jurisdiction) ([]domain.RawParcelRecord, error) {
	rng := rand.New(rand.NewSource(seed(j.County, j.State)))

	records := make([]domain.RawParcelRecord, 0, parcelCount)
	for i := 0; i < parcelCount; i++ {
		acres := 40 + rng.Float64()*210
		geom := rectangle(i, acres)
		records = append(records, domain.RawParcelRecord{
			Source: SourceName,
			Fields: map[string]any{
				"apn":          fmt.Sprintf("14-21-%02d-%03d-%03d", i+1, 100+rng.Intn(900), 100+rng.Intn(900)),
				"address":      fmt.Sprintf("%d %s", 1000+rng.Intn(9000), roadNames[i%len(roadNames)]),
				"owner":        owners[i%len(owners)],
				"county":       j.County,
				"state":        j.State,
				"acres":        round1(acres),
				"taxorder":     soilOrders[i%len(soilOrders)],
				"slope_r":      round1(1 + rng.Float64()*11),
				"om_r":         round1(1.5 + rng.Float64()*2),
				"kwfact":       math.Round((0.2+rng.Float64()*0.25)*100) / 100,
				"dist_road_mi": math.Round((0.05+rng.Float64()*0.55)*100) / 100,
			},
			Geometry: geom,
		})
	}
	return records, nil
}

// FetchSoilAttributes derives soil attributes from the geometry itself, so
// lookups are stable across calls and consistent for identical polygons.
func (s *Source) FetchSoilAttributes(_ context.Context, g domain.Geometry) (domain.SoilAttributes, error) {
	c := g.Centroid()
	rng := rand.New(rand.NewSource(seed(fmt.Sprintf("%.0f", c.X), fmt.Sprintf("%.0f", c.Y))))
	order := soilOrders[rng.Intn(len(soilOrders))]
	return domain.SoilAttributes{
		SoilOrder:        order,
		SlopePct:         round1(1 + rng.Float64()*11),
		OrganicMatterPct: round1(1.5 + rng.Float64()*2),
		ErodibilityIndex: math.Round((0.2+rng.Float64()*0.25)*100) / 100,
		SoilName:         "Generated " + order + " complex",
	}, nil
}

// rectangle lays parcels out on a grid in the working CRS, sized to match the
// stated acreage. Coordinates sit in the projection's CONUS domain so a
// round-trip through WGS-84 stays lossless.
func rectangle(index int, acres float64) domain.Geometry {
	side := math.Sqrt(acres * domain.SquareMetersPerAcre)
	originX := 700000 + float64(index%4)*2500
	originY := 2100000 + float64(index/4)*2500
	return domain.Geometry{
		CRS: domain.CRSAlbers,
		Ring: []domain.Point{
			{X: originX, Y: originY},
			{X: originX + side, Y: originY},
			{X: originX + side, Y: originY + side},
			{X: originX, Y: originY + side},
		},
	}
}

func seed(parts ...string) int64 {
	h := fnv.New64a()
	h.Write([]byte(strings.ToUpper(strings.Join(parts, "|"))))
	return int64(h.Sum64())
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
