package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Run("canonical field names", func(t *testing.T) {
		raw := RawParcelRecord{
			Source: "test",
			Fields: map[string]any{
				"apn":                    "14-21-01-100-001",
				"address":                "1200 E 1000 North Road",
				"owner":                  "Smith Family Farm LLC",
				"county":                 "Champaign",
				"state":                  "IL",
				"acres":                  160.0,
				"soil_order":             "Mollisols",
				"slope_pct":              4.2,
				"organic_matter_pct":     3.1,
				"erodibility_index":      0.28,
				"distance_to_road_miles": 0.15,
			},
			Geometry: squareAlbers(160),
		}

		p, err := Normalize(raw)
		require.NoError(t, err)
		assert.Equal(t, "14-21-01-100-001", p.APN)
		assert.Equal(t, "Champaign", p.County)
		assert.Equal(t, "IL", p.State)
		assert.Equal(t, 160.0, p.Acres)
		assert.Equal(t, "Mollisols", p.SoilOrder)
		assert.Equal(t, 4.2, p.SlopePct)
		assert.Equal(t, 0.15, p.DistanceToRoadMiles)
		assert.Equal(t, CRSAlbers, p.Geometry.CRS)
	})

	t.Run("source aliases resolve", func(t *testing.T) {
		raw := RawParcelRecord{
			Source: "test",
			Fields: map[string]any{
				"PARCEL_ID":    "21-30-400-002",
				"gis_acres":    "82.5",
				"taxorder":     "ALFISOLS",
				"slope_r":      6.0,
				"om_r":         2.4,
				"kwfact":       0.32,
				"dist_road_mi": 0.4,
			},
			Geometry: squareAlbers(82.5),
		}

		p, err := Normalize(raw)
		require.NoError(t, err)
		assert.Equal(t, "21-30-400-002", p.APN)
		assert.Equal(t, 82.5, p.Acres)
		assert.Equal(t, "Alfisols", p.SoilOrder)
		assert.Equal(t, 6.0, p.SlopePct)
		assert.Equal(t, 0.4, p.DistanceToRoadMiles)
	})

	t.Run("defaults for optional fields", func(t *testing.T) {
		raw := RawParcelRecord{
			Source: "test",
			Fields: map[string]any{
				"apn":   "30-01-100-003",
				"acres": 40,
			},
			Geometry: squareAlbers(40),
		}

		p, err := Normalize(raw)
		require.NoError(t, err)
		assert.Equal(t, SoilOrderUnknown, p.SoilOrder)
		assert.Equal(t, float64(UnknownRoadDistanceMiles), p.DistanceToRoadMiles)
		assert.Equal(t, 0.0, p.SlopePct)
	})

	t.Run("unrecognized soil order becomes Unknown", func(t *testing.T) {
		raw := RawParcelRecord{
			Fields: map[string]any{
				"apn":        "30-01-100-004",
				"acres":      40.0,
				"soil_order": "Chernozem",
			},
			Geometry: squareAlbers(40),
		}

		p, err := Normalize(raw)
		require.NoError(t, err)
		assert.Equal(t, SoilOrderUnknown, p.SoilOrder)
	})

	t.Run("WGS84 geometry is reprojected to the working CRS", func(t *testing.T) {
		raw := RawParcelRecord{
			Fields: map[string]any{"apn": "30-01-100-005", "acres": 55.0},
			Geometry: Geometry{
				CRS: CRSWGS84,
				Ring: []Point{
					{X: -88.95, Y: 40.48},
					{X: -88.94, Y: 40.48},
					{X: -88.94, Y: 40.49},
					{X: -88.95, Y: 40.49},
				},
			},
		}

		p, err := Normalize(raw)
		require.NoError(t, err)
		assert.Equal(t, CRSAlbers, p.Geometry.CRS)
		assert.Greater(t, p.Geometry.AreaSquareMeters(), 0.0)
	})

	t.Run("missing CRS defaults to WGS84", func(t *testing.T) {
		raw := RawParcelRecord{
			Fields: map[string]any{"apn": "30-01-100-006", "acres": 55.0},
			Geometry: Geometry{
				Ring: []Point{
					{X: -88.95, Y: 40.48},
					{X: -88.94, Y: 40.48},
					{X: -88.94, Y: 40.49},
				},
			},
		}

		p, err := Normalize(raw)
		require.NoError(t, err)
		assert.Equal(t, CRSAlbers, p.Geometry.CRS)
	})

	t.Run("all violations collected", func(t *testing.T) {
		raw := RawParcelRecord{
			Source:   "test",
			Fields:   map[string]any{"acres": -3.0},
			Geometry: Geometry{},
		}

		_, err := Normalize(raw)
		var invalid *InvalidRecordError
		require.ErrorAs(t, err, &invalid)
		assert.Empty(t, invalid.APN)
		assert.Len(t, invalid.Violations, 3)
		assert.Contains(t, invalid.Violations, "missing required field apn")
		assert.Contains(t, invalid.Violations, "acres must be positive, got -3")
		assert.Contains(t, invalid.Violations, "missing or empty geometry")
	})

	t.Run("self-intersecting geometry is rejected", func(t *testing.T) {
		raw := RawParcelRecord{
			Fields: map[string]any{"apn": "30-01-100-007", "acres": 10.0},
			Geometry: Geometry{
				CRS: CRSAlbers,
				Ring: []Point{
					{X: 700000, Y: 2100000},
					{X: 700100, Y: 2100100},
					{X: 700100, Y: 2100000},
					{X: 700000, Y: 2100100},
				},
			},
		}

		_, err := Normalize(raw)
		var invalid *InvalidRecordError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "30-01-100-007", invalid.APN)
		assert.Contains(t, invalid.Violations, "geometry is self-intersecting")
	})

	t.Run("unresolvable CRS is a violation", func(t *testing.T) {
		raw := RawParcelRecord{
			Fields:   map[string]any{"apn": "30-01-100-008", "acres": 10.0},
			Geometry: Geometry{CRS: "EPSG:3857", Ring: squareAlbers(10).Ring},
		}

		_, err := Normalize(raw)
		var invalid *InvalidRecordError
		require.ErrorAs(t, err, &invalid)
		require.Len(t, invalid.Violations, 1)
		assert.Contains(t, invalid.Violations[0], "geometry reprojection")
	})
}

func TestNormalizeSoilOrder(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Mollisols", "Mollisols"},
		{"MOLLISOLS", "Mollisols"},
		{"  alfisols  ", "Alfisols"},
		{"histosols", "Histosols"},
		{"", SoilOrderUnknown},
		{"Podzol", SoilOrderUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSoilOrder(tt.in))
		})
	}
}

func TestFloatFieldCoercion(t *testing.T) {
	fields := map[string]any{
		"acres":   "120.5",
		"slope_r": 7,
		"om_r":    float32(2.5),
		"kwfact":  "not-a-number",
	}

	acres, ok := floatField(fields, "acres")
	assert.True(t, ok)
	assert.Equal(t, 120.5, acres)

	slope, ok := floatField(fields, "slope_pct")
	assert.True(t, ok)
	assert.Equal(t, 7.0, slope)

	om, ok := floatField(fields, "organic_matter_pct")
	assert.True(t, ok)
	assert.InDelta(t, 2.5, om, 1e-6)

	_, ok = floatField(fields, "erodibility_index")
	assert.False(t, ok)

	_, ok = floatField(fields, "distance_to_road_miles")
	assert.False(t, ok)
}
