package domain

import (
	"math"
	"slices"
)

// Scoring criteria names. Each must appear in a program's scoring_weights to
// carry weight; absent keys default to 0.
const (
	CriterionAcres       = "acres"
	CriterionSoilHealth  = "soil_health"
	CriterionErosionRisk = "erosion_risk"
	CriterionAccess      = "access"
)

// Score computes the weighted 0-100 fit score and the per-criterion
// sub-scores. Scoring is independent of eligibility: an ineligible parcel
// still gets a score communicating how close it came. The access criterion is
// only present when the program declares a road-access bound. Deterministic —
// identical inputs always produce an identical score.
//
// The composite divides by the sum of the non-zero declared weights; a zero
// weight-sum is a *ConfigError* caught at registry load time, never here.
func Score(p Parcel, prog Program) (int, map[string]float64) {
	req := prog.Requirements

	subScores := map[string]float64{
		CriterionAcres:       acreageFit(p.Acres, req.MinAcres, req.MaxAcres),
		CriterionSoilHealth:  soilSuitability(p.SoilOrder, req.AllowedSoilOrders, req.ExcludedSoilOrders),
		CriterionErosionRisk: slopeRisk(p.SlopePct, req.MaxSlopePct),
	}
	if req.MaxRoadAccessMiles != nil {
		subScores[CriterionAccess] = accessScore(p.DistanceToRoadMiles, *req.MaxRoadAccessMiles)
	}

	var weighted, weightSum float64
	for criterion, sub := range subScores {
		w := prog.Weight(criterion)
		if w <= 0 {
			continue
		}
		weighted += sub * w
		weightSum += w
	}
	if weightSum == 0 {
		return 0, subScores
	}
	return int(math.Round(weighted / weightSum)), subScores
}

// acreageFit is 100 across the middle 50% of [min, max], decays linearly to 0
// at either bound, and is 0 outside the bounds. Maximal at the midpoint and
// monotonically non-increasing away from it.
func acreageFit(acres, minAcres, maxAcres float64) float64 {
	if acres < minAcres || acres > maxAcres {
		return 0
	}
	span := maxAcres - minAcres
	if span <= 0 {
		return 100
	}
	quarter := span / 4
	switch {
	case acres < minAcres+quarter:
		return clamp100(100 * (acres - minAcres) / quarter)
	case acres > maxAcres-quarter:
		return clamp100(100 * (maxAcres - acres) / quarter)
	default:
		return 100
	}
}

// soilSuitability: 0 for excluded orders, 100 for allowed orders, 50 for
// Unknown, 30 for anything else in the vocabulary. Exclusion wins over the
// allowed set.
func soilSuitability(order string, allowed, excluded []string) float64 {
	switch {
	case slices.Contains(excluded, order):
		return 0
	case slices.Contains(allowed, order):
		return 100
	case order == SoilOrderUnknown:
		return 50
	default:
		return 30
	}
}

// slopeRisk: 100·(1 − slope/max), clamped. A zero slope bound means only flat
// ground scores: 100 at slope 0, otherwise 0.
func slopeRisk(slopePct, maxSlopePct float64) float64 {
	if maxSlopePct == 0 {
		if slopePct == 0 {
			return 100
		}
		return 0
	}
	return clamp100(100 * (1 - slopePct/maxSlopePct))
}

// accessScore: 100·(1 − distance/max), clamped. The 999 unknown-distance
// sentinel naturally scores 0.
func accessScore(distMiles, maxMiles float64) float64 {
	if maxMiles <= 0 {
		return 0
	}
	return clamp100(100 * (1 - distMiles/maxMiles))
}

func clamp100(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}
