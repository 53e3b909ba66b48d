package domain

import "time"

// Jurisdiction identifies the county+state area a screening run covers.
type Jurisdiction struct {
	County string `json:"county"`
	State  string `json:"state"`
}

func (j Jurisdiction) String() string {
	return j.County + " County, " + j.State
}

// RawParcelRecord is the opaque, source-specific shape handed to the
// normalizer. Fields carries whatever attribute names the source uses;
// the normalizer owns the mapping to canonical names. Never persisted.
type RawParcelRecord struct {
	Source   string         // adapter name, for diagnostics
	Fields   map[string]any // source attribute name -> value
	Geometry Geometry       // polygon in the source's declared CRS
}

// SoilAttributes is the soil mapping returned by a soil source for one
// geometry: the dominant component's taxonomy order and physical properties.
type SoilAttributes struct {
	SoilOrder        string  `json:"soil_order"`
	SlopePct         float64 `json:"slope_pct"`
	OrganicMatterPct float64 `json:"organic_matter_pct"`
	ErodibilityIndex float64 `json:"erodibility_index"`
	SoilName         string  `json:"soil_name,omitempty"`
}

// UnknownRoadDistanceMiles is the sentinel for "distance unknown, treat as far".
const UnknownRoadDistanceMiles = 999

// Parcel is the canonical normalized record. Immutable after creation by the
// normalizer; the geometry is exclusively owned by the parcel.
type Parcel struct {
	APN                 string   `json:"apn"`
	Address             string   `json:"address,omitempty"`
	Owner               string   `json:"owner,omitempty"`
	County              string   `json:"county"`
	State               string   `json:"state"`
	Acres               float64  `json:"acres"`
	Geometry            Geometry `json:"geometry"`
	SoilOrder           string   `json:"soil_order"`
	SlopePct            float64  `json:"slope_pct"`
	OrganicMatterPct    float64  `json:"organic_matter_pct"`
	ErodibilityIndex    float64  `json:"erodibility_index"`
	DistanceToRoadMiles float64  `json:"distance_to_road_miles"`
}

// ParcelResult is one (parcel, program) screening outcome. Never mutated;
// re-evaluation produces a new result.
type ParcelResult struct {
	Parcel         Parcel             `json:"parcel"`
	ProgramKey     string             `json:"program_key"`
	Eligible       bool               `json:"eligible"`
	Conditional    bool               `json:"conditional,omitempty"`
	FailureReasons []string           `json:"failure_reasons,omitempty"`
	FitScore       int                `json:"fit_score"`
	SubScores      map[string]float64 `json:"sub_scores"`
	ScreenedAt     time.Time          `json:"screened_at"`
}

// NewParcelResult combines an evaluation and a score into a result, stamped
// with the package clock.
func NewParcelResult(p Parcel, programKey string, ev Evaluation, fitScore int, subScores map[string]float64) ParcelResult {
	return ParcelResult{
		Parcel:         p,
		ProgramKey:     programKey,
		Eligible:       ev.Eligible,
		Conditional:    ev.Conditional,
		FailureReasons: ev.Reasons,
		FitScore:       fitScore,
		SubScores:      subScores,
		ScreenedAt:     clock.Now(),
	}
}
