// Package program loads and validates the program rule catalog: the
// data-driven requirement sets and scoring weights each screening run
// evaluates parcels against. The catalog is a YAML (or JSON) document,
// decoded strictly so unknown or misspelled keys fail fast at startup
// instead of being silently ignored.
package program

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/couchcryptid/parcel-screening/internal/domain"
)

// document mirrors the on-disk catalog shape. Requirements and ScoringWeights
// are pointers/maps so a missing section is distinguishable from an empty one.
type document struct {
	Programs map[string]programDoc `yaml:"programs"`
}

type programDoc struct {
	Name           string             `yaml:"name"`
	Description    string             `yaml:"description"`
	Requirements   *requirementsDoc   `yaml:"requirements"`
	ScoringWeights map[string]float64 `yaml:"scoring_weights"`
}

type requirementsDoc struct {
	MinAcres           float64           `yaml:"min_acres"`
	MaxAcres           float64           `yaml:"max_acres"`
	MaxSlopePct        float64           `yaml:"max_slope_pct"`
	AllowedSoilOrders  []string          `yaml:"allowed_soil_orders"`
	ExcludedSoilOrders []string          `yaml:"excluded_soil_orders"`
	MaxRoadAccessMiles *float64          `yaml:"max_road_access_miles"`
	CountyRestrictions map[string]string `yaml:"county_restrictions"`
}

// knownCriteria are the scoring weight keys the engine computes.
var knownCriteria = map[string]bool{
	domain.CriterionAcres:       true,
	domain.CriterionSoilHealth:  true,
	domain.CriterionErosionRisk: true,
	domain.CriterionAccess:      true,
}

// Registry is process-wide read-only state: built once by Load, immutable
// thereafter. Reloading the catalog means restarting the pipeline.
type Registry struct {
	programs map[string]domain.Program
}

// Load reads and validates a program catalog file.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read program catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a program catalog document. Any schema
// violation — unknown keys, missing sections, inverted acreage bounds, a zero
// effective weight sum — is a *domain.ConfigError; nothing loads partially.
func Parse(data []byte) (*Registry, error) {
	var doc document
	if err := yaml.UnmarshalWithOptions(data, &doc, yaml.Strict()); err != nil {
		return nil, &domain.ConfigError{Reason: fmt.Sprintf("decode catalog: %v", err)}
	}
	if len(doc.Programs) == 0 {
		return nil, &domain.ConfigError{Reason: "catalog declares no programs"}
	}

	programs := make(map[string]domain.Program, len(doc.Programs))
	for key, pd := range doc.Programs {
		prog, err := buildProgram(key, pd)
		if err != nil {
			return nil, err
		}
		programs[key] = prog
	}
	return &Registry{programs: programs}, nil
}

// Get returns the program for a key, or *domain.NotFoundError.
func (r *Registry) Get(key string) (domain.Program, error) {
	prog, ok := r.programs[key]
	if !ok {
		return domain.Program{}, &domain.NotFoundError{Key: key}
	}
	return prog, nil
}

// Keys returns the loaded program keys, sorted.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.programs))
	for k := range r.programs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func buildProgram(key string, pd programDoc) (domain.Program, error) {
	if pd.Requirements == nil {
		return domain.Program{}, &domain.ConfigError{Key: key, Reason: "missing requirements section"}
	}
	if pd.ScoringWeights == nil {
		return domain.Program{}, &domain.ConfigError{Key: key, Reason: "missing scoring_weights section"}
	}

	req := pd.Requirements
	if req.MinAcres > req.MaxAcres {
		return domain.Program{}, &domain.ConfigError{
			Key:    key,
			Reason: fmt.Sprintf("min_acres %g exceeds max_acres %g", req.MinAcres, req.MaxAcres),
		}
	}
	if req.MinAcres < 0 || req.MaxSlopePct < 0 {
		return domain.Program{}, &domain.ConfigError{Key: key, Reason: "negative requirement bound"}
	}
	if req.MaxRoadAccessMiles != nil && *req.MaxRoadAccessMiles <= 0 {
		return domain.Program{}, &domain.ConfigError{Key: key, Reason: "max_road_access_miles must be positive when declared"}
	}

	allowed, err := soilOrderSet(key, "allowed_soil_orders", req.AllowedSoilOrders)
	if err != nil {
		return domain.Program{}, err
	}
	excluded, err := soilOrderSet(key, "excluded_soil_orders", req.ExcludedSoilOrders)
	if err != nil {
		return domain.Program{}, err
	}

	restrictions, err := countyRestrictions(key, req.CountyRestrictions)
	if err != nil {
		return domain.Program{}, err
	}

	for criterion, w := range pd.ScoringWeights {
		if !knownCriteria[criterion] {
			return domain.Program{}, &domain.ConfigError{
				Key:    key,
				Reason: fmt.Sprintf("unknown scoring criterion %q", criterion),
			}
		}
		if w < 0 {
			return domain.Program{}, &domain.ConfigError{
				Key:    key,
				Reason: fmt.Sprintf("negative weight for %q", criterion),
			}
		}
	}

	// The composite score divides by the sum of weights over criteria the
	// engine will actually compute: access only counts when a road bound is
	// declared. Catching a zero sum here keeps scoring division-safe.
	effective := pd.ScoringWeights[domain.CriterionAcres] +
		pd.ScoringWeights[domain.CriterionSoilHealth] +
		pd.ScoringWeights[domain.CriterionErosionRisk]
	if req.MaxRoadAccessMiles != nil {
		effective += pd.ScoringWeights[domain.CriterionAccess]
	}
	if effective <= 0 {
		return domain.Program{}, &domain.ConfigError{Key: key, Reason: "scoring weights sum to zero"}
	}

	return domain.Program{
		Key:         key,
		Name:        pd.Name,
		Description: pd.Description,
		Requirements: domain.Requirements{
			MinAcres:           req.MinAcres,
			MaxAcres:           req.MaxAcres,
			MaxSlopePct:        req.MaxSlopePct,
			AllowedSoilOrders:  allowed,
			ExcludedSoilOrders: excluded,
			MaxRoadAccessMiles: req.MaxRoadAccessMiles,
			CountyRestrictions: restrictions,
		},
		ScoringWeights: pd.ScoringWeights,
	}, nil
}

// soilOrderSet validates a configured soil-order list against the fixed
// vocabulary, normalizing case. Misspelled orders are rejected: an exclusion
// that never matches would silently weaken a program's rules.
func soilOrderSet(key, field string, values []string) ([]string, error) {
	out := make([]string, 0, len(values))
	for _, v := range values {
		normalized := domain.NormalizeSoilOrder(v)
		if normalized == domain.SoilOrderUnknown && !strings.EqualFold(strings.TrimSpace(v), domain.SoilOrderUnknown) {
			return nil, &domain.ConfigError{
				Key:    key,
				Reason: fmt.Sprintf("%s: unknown soil order %q", field, v),
			}
		}
		out = append(out, normalized)
	}
	return out, nil
}

func countyRestrictions(key string, raw map[string]string) (map[string]domain.CountyStatus, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]domain.CountyStatus, len(raw))
	for county, status := range raw {
		switch s := domain.CountyStatus(strings.ToUpper(strings.TrimSpace(status))); s {
		case domain.CountyEligible, domain.CountyIneligible, domain.CountyConditional:
			out[strings.ToUpper(strings.TrimSpace(county))] = s
		default:
			return nil, &domain.ConfigError{
				Key:    key,
				Reason: fmt.Sprintf("county_restrictions: invalid status %q for %q", status, county),
			}
		}
	}
	return out, nil
}
