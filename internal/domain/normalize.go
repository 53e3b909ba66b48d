package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// SoilOrderUnknown is the default when a source omits or misspells the soil order.
const SoilOrderUnknown = "Unknown"

// soilOrderVocabulary is the fixed set of USDA top-level soil orders the
// engine recognizes. Matching is case-insensitive.
var soilOrderVocabulary = []string{
	"Alfisols", "Mollisols", "Entisols", "Inceptisols",
	"Spodosols", "Histosols", "Vertisols",
}

// fieldAliases maps canonical field names to the spellings seen across county
// assessor exports and the SDA column names. First match wins, in order.
var fieldAliases = map[string][]string{
	"apn":                    {"apn", "APN", "parcel_id", "PARCEL_ID", "ParcelID", "pin", "PIN"},
	"address":                {"address", "ADDRESS", "situs_address", "site_address"},
	"owner":                  {"owner", "OWNER", "owner_name", "OWNER_NAME"},
	"county":                 {"county", "COUNTY"},
	"state":                  {"state", "STATE"},
	"acres":                  {"acres", "ACRES", "acreage", "gis_acres", "deeded_acres"},
	"soil_order":             {"soil_order", "taxorder", "TAXORDER"},
	"slope_pct":              {"slope_pct", "slope_r", "SLOPE_R"},
	"organic_matter_pct":     {"organic_matter_pct", "organic_matter", "om_r"},
	"erodibility_index":      {"erodibility_index", "erodibility", "kwfact"},
	"distance_to_road_miles": {"distance_to_road_miles", "dist_road_mi", "dist_to_road_mi"},
}

// Normalize maps one raw source record into a canonical Parcel: resolves field
// aliases, applies declared defaults for optional fields, case-normalizes the
// soil order against the fixed vocabulary, and reprojects the geometry to the
// working CRS. Structural violations (missing apn, missing or non-positive
// acres, unusable geometry) are collected — all of them, not just the first —
// and returned together as an *InvalidRecordError.
func Normalize(raw RawParcelRecord) (Parcel, error) {
	var violations []string

	apn := stringField(raw.Fields, "apn")
	if apn == "" {
		violations = append(violations, "missing required field apn")
	}

	acres, acresPresent := floatField(raw.Fields, "acres")
	switch {
	case !acresPresent:
		violations = append(violations, "missing required field acres")
	case acres <= 0:
		violations = append(violations, fmt.Sprintf("acres must be positive, got %g", acres))
	}

	geom := raw.Geometry
	if geom.IsEmpty() {
		violations = append(violations, "missing or empty geometry")
	} else {
		if geom.CRS == "" {
			geom.CRS = CRSWGS84
		}
		projected, err := geom.Reproject(CRSAlbers)
		if err != nil {
			violations = append(violations, fmt.Sprintf("geometry reprojection: %v", err))
		} else {
			geom = projected
			if geom.SelfIntersects() {
				violations = append(violations, "geometry is self-intersecting")
			}
		}
	}

	if len(violations) > 0 {
		return Parcel{}, &InvalidRecordError{APN: apn, Violations: violations}
	}

	slope, _ := floatField(raw.Fields, "slope_pct")
	om, _ := floatField(raw.Fields, "organic_matter_pct")
	erod, _ := floatField(raw.Fields, "erodibility_index")
	roadDist, roadPresent := floatField(raw.Fields, "distance_to_road_miles")
	if !roadPresent {
		roadDist = UnknownRoadDistanceMiles
	}

	return Parcel{
		APN:                 apn,
		Address:             stringField(raw.Fields, "address"),
		Owner:               stringField(raw.Fields, "owner"),
		County:              stringField(raw.Fields, "county"),
		State:               stringField(raw.Fields, "state"),
		Acres:               acres,
		Geometry:            geom,
		SoilOrder:           NormalizeSoilOrder(stringField(raw.Fields, "soil_order")),
		SlopePct:            slope,
		OrganicMatterPct:    om,
		ErodibilityIndex:    erod,
		DistanceToRoadMiles: roadDist,
	}, nil
}

// NormalizeSoilOrder maps a source soil-order string onto the fixed vocabulary,
// case-insensitively. Unrecognized values become "Unknown" rather than failing:
// soil classification is advisory, not load-bearing for structural validity.
func NormalizeSoilOrder(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return SoilOrderUnknown
	}
	for _, order := range soilOrderVocabulary {
		if strings.EqualFold(s, order) {
			return order
		}
	}
	return SoilOrderUnknown
}

// stringField resolves a canonical field through its aliases, returning the
// trimmed value or "".
func stringField(fields map[string]any, canonical string) string {
	for _, alias := range fieldAliases[canonical] {
		if v, ok := fields[alias]; ok {
			if s := strings.TrimSpace(fmt.Sprintf("%v", v)); s != "" {
				return s
			}
		}
	}
	return ""
}

// floatField resolves a canonical numeric field through its aliases. Sources
// deliver numbers as JSON floats, integers, or strings; all are coerced. The
// second return reports whether any alias held a parseable value.
func floatField(fields map[string]any, canonical string) (float64, bool) {
	for _, alias := range fieldAliases[canonical] {
		v, ok := fields[alias]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case float32:
			return float64(n), true
		case int:
			return float64(n), true
		case int64:
			return float64(n), true
		case string:
			s := strings.TrimSpace(n)
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}
