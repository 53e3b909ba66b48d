package program

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/parcel-screening/internal/domain"
)

const validCatalog = `
programs:
  cover_crops:
    name: Cover Crop Incentive Program
    description: Cost-share for planting cover crops.
    requirements:
      min_acres: 10
      max_acres: 1000
      max_slope_pct: 15
      allowed_soil_orders: [Alfisols, Mollisols, Entisols, Inceptisols]
      excluded_soil_orders: [Histosols, Vertisols]
      max_road_access_miles: 0.5
      county_restrictions:
        McLean: INELIGIBLE
        Champaign: eligible
    scoring_weights:
      acres: 10
      soil_health: 30
      erosion_risk: 30
      access: 30
  conservation_tillage:
    name: Conservation Tillage Transition Program
    requirements:
      min_acres: 40
      max_acres: 5000
      max_slope_pct: 25
      excluded_soil_orders: [Histosols]
    scoring_weights:
      acres: 20
      soil_health: 40
      erosion_risk: 40
`

func TestParseValidCatalog(t *testing.T) {
	registry, err := Parse([]byte(validCatalog))
	require.NoError(t, err)
	assert.Equal(t, []string{"conservation_tillage", "cover_crops"}, registry.Keys())

	prog, err := registry.Get("cover_crops")
	require.NoError(t, err)
	assert.Equal(t, "cover_crops", prog.Key)
	assert.Equal(t, "Cover Crop Incentive Program", prog.Name)
	assert.Equal(t, 10.0, prog.Requirements.MinAcres)
	assert.Equal(t, 1000.0, prog.Requirements.MaxAcres)
	require.NotNil(t, prog.Requirements.MaxRoadAccessMiles)
	assert.Equal(t, 0.5, *prog.Requirements.MaxRoadAccessMiles)
	assert.Equal(t, 30.0, prog.Weight("soil_health"))
	assert.Equal(t, 0.0, prog.Weight("unknown_criterion"))

	// County keys and statuses are normalized to uppercase.
	status, ok := prog.Requirements.CountyOverride("mclean")
	assert.True(t, ok)
	assert.Equal(t, domain.CountyIneligible, status)

	status, ok = prog.Requirements.CountyOverride("CHAMPAIGN")
	assert.True(t, ok)
	assert.Equal(t, domain.CountyEligible, status)

	tillage, err := registry.Get("conservation_tillage")
	require.NoError(t, err)
	assert.Nil(t, tillage.Requirements.MaxRoadAccessMiles)
}

func TestGetUnknownProgram(t *testing.T) {
	registry, err := Parse([]byte(validCatalog))
	require.NoError(t, err)

	_, err = registry.Get("wetland_restoration")
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "wetland_restoration", notFound.Key)
}

func TestParseRejectsInvalidCatalogs(t *testing.T) {
	tests := []struct {
		name    string
		catalog string
		errLike string
	}{
		{
			name:    "empty document",
			catalog: `programs: {}`,
			errLike: "no programs",
		},
		{
			name: "unknown key fails strict decoding",
			catalog: `
programs:
  p:
    name: P
    requirments:
      min_acres: 1
`,
			errLike: "decode catalog",
		},
		{
			name: "missing requirements section",
			catalog: `
programs:
  p:
    name: P
    scoring_weights: {acres: 1}
`,
			errLike: "missing requirements",
		},
		{
			name: "missing scoring weights section",
			catalog: `
programs:
  p:
    name: P
    requirements:
      min_acres: 1
      max_acres: 2
`,
			errLike: "missing scoring_weights",
		},
		{
			name: "inverted acreage bounds",
			catalog: `
programs:
  p:
    name: P
    requirements:
      min_acres: 100
      max_acres: 10
    scoring_weights: {acres: 1}
`,
			errLike: "min_acres 100 exceeds max_acres 10",
		},
		{
			name: "negative bound",
			catalog: `
programs:
  p:
    name: P
    requirements:
      min_acres: -1
      max_acres: 10
    scoring_weights: {acres: 1}
`,
			errLike: "negative requirement bound",
		},
		{
			name: "non-positive road bound",
			catalog: `
programs:
  p:
    name: P
    requirements:
      min_acres: 1
      max_acres: 10
      max_road_access_miles: 0
    scoring_weights: {acres: 1}
`,
			errLike: "max_road_access_miles must be positive",
		},
		{
			name: "misspelled soil order",
			catalog: `
programs:
  p:
    name: P
    requirements:
      min_acres: 1
      max_acres: 10
      excluded_soil_orders: [Histosol]
    scoring_weights: {acres: 1}
`,
			errLike: `unknown soil order "Histosol"`,
		},
		{
			name: "invalid county status",
			catalog: `
programs:
  p:
    name: P
    requirements:
      min_acres: 1
      max_acres: 10
      county_restrictions:
        McLean: BANNED
    scoring_weights: {acres: 1}
`,
			errLike: `invalid status "BANNED"`,
		},
		{
			name: "unknown scoring criterion",
			catalog: `
programs:
  p:
    name: P
    requirements:
      min_acres: 1
      max_acres: 10
    scoring_weights: {proximity: 1}
`,
			errLike: `unknown scoring criterion "proximity"`,
		},
		{
			name: "negative weight",
			catalog: `
programs:
  p:
    name: P
    requirements:
      min_acres: 1
      max_acres: 10
    scoring_weights: {acres: -5}
`,
			errLike: `negative weight for "acres"`,
		},
		{
			name: "weights sum to zero",
			catalog: `
programs:
  p:
    name: P
    requirements:
      min_acres: 1
      max_acres: 10
    scoring_weights: {acres: 0}
`,
			errLike: "scoring weights sum to zero",
		},
		{
			name: "access weight alone does not count without a road bound",
			catalog: `
programs:
  p:
    name: P
    requirements:
      min_acres: 1
      max_acres: 10
    scoring_weights: {access: 50}
`,
			errLike: "scoring weights sum to zero",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.catalog))
			var cfgErr *domain.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.ErrorContains(t, err, tt.errLike)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("reads a catalog file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "programs.yaml")
		require.NoError(t, os.WriteFile(path, []byte(validCatalog), 0o600))

		registry, err := Load(path)
		require.NoError(t, err)
		assert.Len(t, registry.Keys(), 2)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorContains(t, err, "read program catalog")
	})
}

func TestShippedCatalogIsValid(t *testing.T) {
	registry, err := Load(filepath.Join("..", "..", "config", "programs.yaml"))
	require.NoError(t, err)
	assert.Contains(t, registry.Keys(), "cover_crops")
	assert.Contains(t, registry.Keys(), "conservation_tillage")
}
