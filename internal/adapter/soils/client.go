// Package soils implements domain.SoilSource against the USDA Soil Data
// Access (SDA) tabular API. One query per parcel geometry: the polygon goes
// up as WGS-84 WKT, and the dominant component (majcompflag='Yes') of the
// largest intersecting mapunit comes back with its taxonomy order, slope,
// organic matter, and erodibility factor.
package soils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/parcel-screening/internal/domain"
)

// SourceName identifies this adapter in errors and diagnostics.
const SourceName = "usda-sda"

// Client queries the SDA tabular endpoint.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an SDA client with a hard request timeout.
func NewClient(url string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (c *Client) Name() string { return SourceName }

// FetchSoilAttributes returns the dominant-component soil attributes for a
// geometry. A geometry with no mapped soil yields zero-value attributes, not
// an error; transport and decode failures are *domain.DataSourceError.
func (c *Client) FetchSoilAttributes(ctx context.Context, g domain.Geometry) (domain.SoilAttributes, error) {
	wgs84, err := g.Reproject(domain.CRSWGS84)
	if err != nil {
		return domain.SoilAttributes{}, &domain.DataSourceError{Source: SourceName, Op: "project geometry", Err: err}
	}

	payload, err := json.Marshal(map[string]string{"query": soilQuery(wgs84.WKT())})
	if err != nil {
		return domain.SoilAttributes{}, &domain.DataSourceError{Source: SourceName, Op: "encode query", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return domain.SoilAttributes{}, &domain.DataSourceError{Source: SourceName, Op: "soil query", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.SoilAttributes{}, &domain.DataSourceError{Source: SourceName, Op: "soil query", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.SoilAttributes{}, &domain.DataSourceError{
			Source: SourceName,
			Op:     "soil query",
			Err:    fmt.Errorf("status %d: %s", resp.StatusCode, body),
		}
	}

	var sdaResp response
	if err := json.NewDecoder(resp.Body).Decode(&sdaResp); err != nil {
		return domain.SoilAttributes{}, &domain.DataSourceError{Source: SourceName, Op: "decode response", Err: err}
	}

	if len(sdaResp.Table) == 0 {
		return domain.SoilAttributes{}, nil
	}

	row := sdaResp.Table[0]
	return domain.SoilAttributes{
		SoilOrder:        stringCell(row, "taxorder"),
		SlopePct:         floatCell(row, "slope_r"),
		OrganicMatterPct: floatCell(row, "om_r"),
		ErodibilityIndex: floatCell(row, "kwfact"),
		SoilName:         stringCell(row, "muname"),
	}, nil
}

// soilQuery builds the dominant-component lookup: largest intersecting
// mapunit first, major component only.
func soilQuery(wkt string) string {
	return fmt.Sprintf(`SELECT TOP 1
    c.taxorder AS taxorder,
    c.slope_r  AS slope_r,
    c.om_r     AS om_r,
    c.kwfact   AS kwfact,
    mu.muname  AS muname
FROM SDA_Get_Mukey_from_intersection_with_WktWgs84('%s') AS a
INNER JOIN mapunit mu ON mu.mukey = a.mukey
INNER JOIN component c ON c.mukey = mu.mukey AND c.majcompflag = 'Yes'
ORDER BY a.area_acres DESC`, wkt)
}

// SDA response shape: rows keyed by column name.

type response struct {
	Table []map[string]any `json:"Table"`
}

func stringCell(row map[string]any, col string) string {
	if v, ok := row[col]; ok && v != nil {
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
	return ""
}

// floatCell tolerates SDA's habit of returning numerics as strings.
func floatCell(row map[string]any, col string) float64 {
	switch v := row[col].(type) {
	case float64:
		return v
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return 0
}
