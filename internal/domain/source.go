package domain

import "context"

// ParcelSource fetches raw parcel records for a jurisdiction. Implementations:
// the live county-assessor adapter and the deterministic synthetic generator.
// Live sources fail with *DataSourceError on any transport failure, timeout,
// or malformed response — they never silently substitute data. Whether to fall
// back to the synthetic source is the pipeline's decision, not the adapter's.
type ParcelSource interface {
	Name() string
	FetchParcels(ctx context.Context, j Jurisdiction) ([]RawParcelRecord, error)
}

// SoilSource fetches soil attributes for a parcel geometry.
type SoilSource interface {
	Name() string
	FetchSoilAttributes(ctx context.Context, g Geometry) (SoilAttributes, error)
}
