package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 { return &v }

func testProgram() Program {
	return Program{
		Key:  "cover_crops",
		Name: "Cover Crop Incentive Program",
		Requirements: Requirements{
			MinAcres:           10,
			MaxAcres:           1000,
			MaxSlopePct:        15,
			AllowedSoilOrders:  []string{"Alfisols", "Mollisols", "Entisols", "Inceptisols"},
			ExcludedSoilOrders: []string{"Histosols", "Vertisols"},
			MaxRoadAccessMiles: floatPtr(0.5),
			CountyRestrictions: map[string]CountyStatus{
				"MCLEAN":    CountyIneligible,
				"CHAMPAIGN": CountyEligible,
				"FORD":      CountyConditional,
			},
		},
		ScoringWeights: map[string]float64{
			CriterionAcres:       10,
			CriterionSoilHealth:  30,
			CriterionErosionRisk: 30,
			CriterionAccess:      30,
		},
	}
}

func testParcel() Parcel {
	return Parcel{
		APN:                 "14-21-01-100-001",
		County:              "Champaign",
		State:               "IL",
		Acres:               160,
		SoilOrder:           "Mollisols",
		SlopePct:            4.2,
		OrganicMatterPct:    3.1,
		ErodibilityIndex:    0.28,
		DistanceToRoadMiles: 0.15,
	}
}

func TestEvaluate(t *testing.T) {
	prog := testProgram()

	t.Run("qualifying parcel", func(t *testing.T) {
		ev := Evaluate(testParcel(), prog)
		assert.True(t, ev.Eligible)
		assert.False(t, ev.Conditional)
		assert.Empty(t, ev.Reasons)
	})

	t.Run("county INELIGIBLE short-circuits", func(t *testing.T) {
		p := testParcel()
		p.County = "McLean"
		// Everything else about the parcel would also fail; the override must
		// still yield exactly the one fixed reason.
		p.Acres = 2
		p.SlopePct = 40

		ev := Evaluate(p, prog)
		assert.False(t, ev.Eligible)
		assert.Equal(t, []string{ReasonCountyExcluded}, ev.Reasons)
	})

	t.Run("county CONDITIONAL annotates but still evaluates", func(t *testing.T) {
		p := testParcel()
		p.County = "ford"

		ev := Evaluate(p, prog)
		assert.True(t, ev.Eligible)
		assert.True(t, ev.Conditional)
	})

	t.Run("conditional county still fails on criteria", func(t *testing.T) {
		p := testParcel()
		p.County = "Ford"
		p.SlopePct = 20

		ev := Evaluate(p, prog)
		assert.False(t, ev.Eligible)
		assert.True(t, ev.Conditional)
		assert.Equal(t, []string{"slope 20.0% exceeds maximum 15.0%"}, ev.Reasons)
	})

	t.Run("acreage below minimum", func(t *testing.T) {
		p := testParcel()
		p.Acres = 5

		ev := Evaluate(p, prog)
		assert.False(t, ev.Eligible)
		assert.Equal(t, []string{"acreage 5.0 below minimum 10.0"}, ev.Reasons)
	})

	t.Run("acreage above maximum", func(t *testing.T) {
		p := testParcel()
		p.Acres = 1500

		ev := Evaluate(p, prog)
		assert.Equal(t, []string{"acreage 1500.0 above maximum 1000.0"}, ev.Reasons)
	})

	t.Run("boundary acreage is eligible", func(t *testing.T) {
		for _, acres := range []float64{10, 1000} {
			p := testParcel()
			p.Acres = acres
			assert.True(t, Evaluate(p, prog).Eligible, "acres=%g", acres)
		}
	})

	t.Run("excluded soil order", func(t *testing.T) {
		p := testParcel()
		p.SoilOrder = "Histosols"

		ev := Evaluate(p, prog)
		assert.Equal(t, []string{"soil order Histosols is excluded"}, ev.Reasons)
	})

	t.Run("soil order outside allowed set", func(t *testing.T) {
		p := testParcel()
		p.SoilOrder = "Spodosols"

		ev := Evaluate(p, prog)
		assert.Equal(t, []string{"soil order Spodosols not in allowed set"}, ev.Reasons)
	})

	t.Run("unknown soil fails a program with an allowed set", func(t *testing.T) {
		p := testParcel()
		p.SoilOrder = SoilOrderUnknown

		ev := Evaluate(p, prog)
		assert.False(t, ev.Eligible)
		assert.Equal(t, []string{"soil order Unknown not in allowed set"}, ev.Reasons)
	})

	t.Run("road distance exceeds bound", func(t *testing.T) {
		p := testParcel()
		p.DistanceToRoadMiles = 0.8

		ev := Evaluate(p, prog)
		assert.Equal(t, []string{"road distance 0.80 mi exceeds maximum 0.50 mi"}, ev.Reasons)
	})

	t.Run("unknown road distance sentinel fails when bound declared", func(t *testing.T) {
		p := testParcel()
		p.DistanceToRoadMiles = UnknownRoadDistanceMiles

		ev := Evaluate(p, prog)
		assert.False(t, ev.Eligible)
	})

	t.Run("no road bound means distance is never checked", func(t *testing.T) {
		unbounded := testProgram()
		unbounded.Requirements.MaxRoadAccessMiles = nil
		p := testParcel()
		p.DistanceToRoadMiles = UnknownRoadDistanceMiles

		ev := Evaluate(p, unbounded)
		assert.True(t, ev.Eligible)
	})

	t.Run("every violation is recorded in rule order", func(t *testing.T) {
		p := testParcel()
		p.Acres = 4
		p.SlopePct = 22
		p.SoilOrder = "Vertisols"
		p.DistanceToRoadMiles = 3

		ev := Evaluate(p, prog)
		assert.False(t, ev.Eligible)
		assert.Equal(t, []string{
			"acreage 4.0 below minimum 10.0",
			"slope 22.0% exceeds maximum 15.0%",
			"soil order Vertisols is excluded",
			"road distance 3.00 mi exceeds maximum 0.50 mi",
		}, ev.Reasons)
	})
}
