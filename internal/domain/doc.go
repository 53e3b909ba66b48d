// Package domain models land-parcel screening for conservation program
// eligibility.
//
// # Data Sources
//
// Parcel records originate from county assessor datasets (APN, owner, situs
// address, deeded acreage, parcel polygon). Soil attributes come from the USDA
// Soil Data Access (SDA) tabular API, keyed by the dominant soil component
// intersecting the parcel geometry. Both sources are unreliable: fields are
// inconsistently named, sparsely populated, and sometimes missing entirely, so
// every record passes through the normalizer before any rule is applied.
//
// # Field Conventions
//
// APN (Assessor's Parcel Number):
//
//	The unique parcel identifier within a jurisdiction, e.g. "14-21-32-123-456".
//	Sources spell the column APN, apn, parcel_id, or PIN; the normalizer maps
//	all spellings to the canonical "apn". APNs must be unique within a batch.
//
// Soil order:
//
//	Top-level USDA soil taxonomy classification. The fixed vocabulary is
//	Alfisols, Mollisols, Entisols, Inceptisols, Spodosols, Histosols,
//	Vertisols. Values are matched case-insensitively; anything unrecognized
//	maps to "Unknown" rather than failing, because soil classification is
//	advisory and not load-bearing for structural validity.
//
// Units:
//
//	Geometry is processed in EPSG:5070 (US Albers Equal Area, meters) and
//	reprojected from WGS-84 on ingest. Area converts at 4046.86 m² per acre.
//	Road distance is in miles; 999 is the sentinel for "unknown, treat as far".
//
// # Screening
//
// A Program is a named rule set: acreage bounds, slope bound, allowed and
// excluded soil orders, a road-access bound, and per-county overrides that can
// force a county INELIGIBLE or mark it CONDITIONAL. Evaluation applies the
// rules in a fixed order and accumulates every violation, so a rejected
// parcel carries its full rejection rationale.
//
// The fit score is a 0-100 composite of four sub-criteria (acres, soil_health,
// erosion_risk, access), combined with the program's declared weights. Scoring
// is independent of eligibility: an ineligible parcel still gets a score that
// communicates how close it came. Scores are deterministic — identical inputs
// always produce identical output.
package domain
