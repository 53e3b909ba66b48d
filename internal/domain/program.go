package domain

import "strings"

// CountyStatus is a per-county eligibility override.
type CountyStatus string

const (
	CountyEligible    CountyStatus = "ELIGIBLE"
	CountyIneligible  CountyStatus = "INELIGIBLE"
	CountyConditional CountyStatus = "CONDITIONAL"
)

// Requirements is a program's acceptance rule set. MaxRoadAccessMiles is nil
// when the program declares no road-access restriction; the other bounds are
// always declared (a zero MaxSlopePct means "flat ground only").
type Requirements struct {
	MinAcres           float64                 `json:"min_acres"`
	MaxAcres           float64                 `json:"max_acres"`
	MaxSlopePct        float64                 `json:"max_slope_pct"`
	AllowedSoilOrders  []string                `json:"allowed_soil_orders,omitempty"`
	ExcludedSoilOrders []string                `json:"excluded_soil_orders,omitempty"`
	MaxRoadAccessMiles *float64                `json:"max_road_access_miles,omitempty"`
	CountyRestrictions map[string]CountyStatus `json:"county_restrictions,omitempty"` // keys are UPPERCASE county names
}

// CountyOverride looks up the restriction for a county, case-insensitively.
// The second return is false when the program has no entry for the county.
func (r Requirements) CountyOverride(county string) (CountyStatus, bool) {
	status, ok := r.CountyRestrictions[strings.ToUpper(strings.TrimSpace(county))]
	return status, ok
}

// Program is a named, immutable rule set loaded once at startup. Weights need
// not sum to 100; they are normalized at evaluation time.
type Program struct {
	Key            string             `json:"key"`
	Name           string             `json:"name"`
	Description    string             `json:"description,omitempty"`
	Requirements   Requirements       `json:"requirements"`
	ScoringWeights map[string]float64 `json:"scoring_weights"`
}

// Weight returns the declared weight for a criterion, defaulting to 0 when
// the key is absent.
func (p Program) Weight(criterion string) float64 {
	return p.ScoringWeights[criterion]
}
