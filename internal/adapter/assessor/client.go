// Package assessor implements domain.ParcelSource against a county assessor
// open-data HTTP API. The wire format is the common open-data shape: a
// feature list with an attribute map and a polygon geometry in a declared
// CRS. Attribute names vary by county; they are passed through untouched for
// the normalizer to reconcile.
package assessor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/parcel-screening/internal/domain"
)

// SourceName identifies this adapter in errors and diagnostics.
const SourceName = "county-assessor"

// Client fetches parcel records from an assessor endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an assessor client. The timeout bounds the whole request;
// on expiry the fetch fails fast with a *domain.DataSourceError rather than
// hanging the batch.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (c *Client) Name() string { return SourceName }

// FetchParcels retrieves all parcel features for a jurisdiction. Any
// transport failure, non-200 status, or undecodable body is a
// *domain.DataSourceError carrying the cause — the client never substitutes
// data on failure.
func (c *Client) FetchParcels(ctx context.Context, j domain.Jurisdiction) ([]domain.RawParcelRecord, error) {
	params := url.Values{
		"county": {j.County},
		"state":  {j.State},
	}
	fullURL := fmt.Sprintf("%s/parcels?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, &domain.DataSourceError{Source: SourceName, Op: "fetch parcels", Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.DataSourceError{Source: SourceName, Op: "fetch parcels", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &domain.DataSourceError{
			Source: SourceName,
			Op:     "fetch parcels",
			Err:    fmt.Errorf("status %d: %s", resp.StatusCode, body),
		}
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &domain.DataSourceError{Source: SourceName, Op: "decode response", Err: err}
	}

	records := make([]domain.RawParcelRecord, 0, len(payload.Parcels))
	for _, f := range payload.Parcels {
		records = append(records, domain.RawParcelRecord{
			Source:   SourceName,
			Fields:   f.Attributes,
			Geometry: f.Geometry.toDomain(),
		})
	}
	c.logger.Debug("fetched assessor parcels", "jurisdiction", j.String(), "count", len(records))
	return records, nil
}

// Assessor API response types.

type response struct {
	Parcels []feature `json:"parcels"`
}

type feature struct {
	Attributes map[string]any `json:"attributes"`
	Geometry   wireGeometry   `json:"geometry"`
}

type wireGeometry struct {
	CRS  string       `json:"crs"`
	Ring [][2]float64 `json:"ring"`
}

func (g wireGeometry) toDomain() domain.Geometry {
	crs := g.CRS
	if crs == "" {
		crs = domain.CRSWGS84
	}
	ring := make([]domain.Point, len(g.Ring))
	for i, p := range g.Ring {
		ring[i] = domain.Point{X: p[0], Y: p[1]}
	}
	return domain.Geometry{CRS: crs, Ring: ring}
}
