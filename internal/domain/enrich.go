package domain

import (
	"context"
	"log/slog"
)

// Soil enrichment outcomes, used for diagnostics and metrics.
const (
	SoilEnrichSkipped = "skipped" // record already carried soil data, or no source
	SoilEnrichSuccess = "success"
	SoilEnrichEmpty   = "empty" // source had no soil mapped for the geometry
	SoilEnrichError   = "error"
)

// EnrichSoil fills missing soil attributes on a raw record from the soil
// source. Graceful degradation: a nil source, a lookup failure, or an unmapped
// geometry leaves the record unchanged and the normalizer's defaults apply —
// soil data is advisory, so a per-parcel soil failure never fails the record.
// The input record is not mutated; enrichment returns a copy.
func EnrichSoil(ctx context.Context, raw RawParcelRecord, source SoilSource, logger *slog.Logger) (RawParcelRecord, string) {
	if source == nil || stringField(raw.Fields, "soil_order") != "" {
		return raw, SoilEnrichSkipped
	}

	attrs, err := source.FetchSoilAttributes(ctx, raw.Geometry)
	if err != nil {
		logger.Warn("soil lookup failed",
			"source", source.Name(),
			"apn", stringField(raw.Fields, "apn"),
			"error", err,
		)
		return raw, SoilEnrichError
	}
	if attrs.SoilOrder == "" {
		return raw, SoilEnrichEmpty
	}

	fields := make(map[string]any, len(raw.Fields)+4)
	for k, v := range raw.Fields {
		fields[k] = v
	}
	fields["soil_order"] = attrs.SoilOrder
	if _, ok := floatField(fields, "slope_pct"); !ok {
		fields["slope_pct"] = attrs.SlopePct
	}
	if _, ok := floatField(fields, "organic_matter_pct"); !ok {
		fields["organic_matter_pct"] = attrs.OrganicMatterPct
	}
	if _, ok := floatField(fields, "erodibility_index"); !ok {
		fields["erodibility_index"] = attrs.ErodibilityIndex
	}

	raw.Fields = fields
	return raw, SoilEnrichSuccess
}
