package domain

import (
	"fmt"
	"slices"
)

// ReasonCountyExcluded is the fixed reason emitted by a county INELIGIBLE
// override. Downstream report templates match on it.
const ReasonCountyExcluded = "county excluded"

// Evaluation is the outcome of applying a program's requirement set to a
// parcel. Eligible is true exactly when Reasons is empty. Conditional marks
// parcels in counties flagged CONDITIONAL: eligible, but annotated for
// downstream review.
type Evaluation struct {
	Eligible    bool     `json:"eligible"`
	Conditional bool     `json:"conditional,omitempty"`
	Reasons     []string `json:"reasons,omitempty"`
}

// Evaluate applies the program's rules to a parcel in a fixed order, so the
// reason list is deterministic and reproducible across runs:
//
//  1. county override — INELIGIBLE short-circuits; CONDITIONAL annotates
//  2. acreage bounds
//  3. slope bound
//  4. soil order (excluded set, then allowed set when declared)
//  5. road access (when declared)
//
// Apart from the county short-circuit, every applicable rule is checked and
// every violation recorded, so a rejected parcel carries its full rationale.
func Evaluate(p Parcel, prog Program) Evaluation {
	req := prog.Requirements

	if status, ok := req.CountyOverride(p.County); ok {
		switch status {
		case CountyIneligible:
			return Evaluation{Reasons: []string{ReasonCountyExcluded}}
		case CountyConditional:
			return evaluateCriteria(p, req, true)
		}
	}
	return evaluateCriteria(p, req, false)
}

func evaluateCriteria(p Parcel, req Requirements, conditional bool) Evaluation {
	var reasons []string

	if p.Acres < req.MinAcres {
		reasons = append(reasons, fmt.Sprintf("acreage %.1f below minimum %.1f", p.Acres, req.MinAcres))
	} else if p.Acres > req.MaxAcres {
		reasons = append(reasons, fmt.Sprintf("acreage %.1f above maximum %.1f", p.Acres, req.MaxAcres))
	}

	if p.SlopePct > req.MaxSlopePct {
		reasons = append(reasons, fmt.Sprintf("slope %.1f%% exceeds maximum %.1f%%", p.SlopePct, req.MaxSlopePct))
	}

	if slices.Contains(req.ExcludedSoilOrders, p.SoilOrder) {
		reasons = append(reasons, fmt.Sprintf("soil order %s is excluded", p.SoilOrder))
	} else if len(req.AllowedSoilOrders) > 0 && !slices.Contains(req.AllowedSoilOrders, p.SoilOrder) {
		reasons = append(reasons, fmt.Sprintf("soil order %s not in allowed set", p.SoilOrder))
	}

	if req.MaxRoadAccessMiles != nil && p.DistanceToRoadMiles > *req.MaxRoadAccessMiles {
		reasons = append(reasons, fmt.Sprintf("road distance %.2f mi exceeds maximum %.2f mi", p.DistanceToRoadMiles, *req.MaxRoadAccessMiles))
	}

	return Evaluation{
		Eligible:    len(reasons) == 0,
		Conditional: conditional,
		Reasons:     reasons,
	}
}
