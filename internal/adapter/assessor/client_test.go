package assessor

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/parcel-screening/internal/domain"
)

func TestFetchParcels(t *testing.T) {
	jurisdiction := domain.Jurisdiction{County: "Champaign", State: "IL"}

	t.Run("decodes features into raw records", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/parcels", r.URL.Path)
			assert.Equal(t, "Champaign", r.URL.Query().Get("county"))
			assert.Equal(t, "IL", r.URL.Query().Get("state"))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"parcels": [
					{
						"attributes": {"PARCEL_ID": "21-30-400-002", "gis_acres": 82.5, "OWNER": "Davis Farm Partnership"},
						"geometry": {
							"crs": "EPSG:4326",
							"ring": [[-88.95, 40.48], [-88.94, 40.48], [-88.94, 40.49], [-88.95, 40.49]]
						}
					},
					{
						"attributes": {"apn": "21-30-400-003", "acres": 40},
						"geometry": {
							"ring": [[-88.93, 40.48], [-88.92, 40.48], [-88.92, 40.49]]
						}
					}
				]
			}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, 5*time.Second, slog.Default())
		records, err := client.FetchParcels(context.Background(), jurisdiction)
		require.NoError(t, err)
		require.Len(t, records, 2)

		assert.Equal(t, SourceName, records[0].Source)
		assert.Equal(t, "21-30-400-002", records[0].Fields["PARCEL_ID"])
		assert.Equal(t, domain.CRSWGS84, records[0].Geometry.CRS)
		require.Len(t, records[0].Geometry.Ring, 4)
		assert.Equal(t, domain.Point{X: -88.95, Y: 40.48}, records[0].Geometry.Ring[0])

		// Missing CRS defaults to WGS-84.
		assert.Equal(t, domain.CRSWGS84, records[1].Geometry.CRS)
	})

	t.Run("empty feature list", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"parcels": []}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, 5*time.Second, slog.Default())
		records, err := client.FetchParcels(context.Background(), jurisdiction)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "upstream maintenance", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := NewClient(server.URL, 5*time.Second, slog.Default())
		_, err := client.FetchParcels(context.Background(), jurisdiction)

		var dsErr *domain.DataSourceError
		require.ErrorAs(t, err, &dsErr)
		assert.Equal(t, SourceName, dsErr.Source)
		assert.Equal(t, "fetch parcels", dsErr.Op)
		assert.ErrorContains(t, err, "status 503")
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"parcels": [`))
		}))
		defer server.Close()

		client := NewClient(server.URL, 5*time.Second, slog.Default())
		_, err := client.FetchParcels(context.Background(), jurisdiction)

		var dsErr *domain.DataSourceError
		require.ErrorAs(t, err, &dsErr)
		assert.Equal(t, "decode response", dsErr.Op)
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte(`{"parcels": []}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, 20*time.Millisecond, slog.Default())
		_, err := client.FetchParcels(context.Background(), jurisdiction)

		var dsErr *domain.DataSourceError
		require.ErrorAs(t, err, &dsErr)
	})

	t.Run("unreachable host", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:1", time.Second, slog.Default())
		_, err := client.FetchParcels(context.Background(), jurisdiction)

		var dsErr *domain.DataSourceError
		require.ErrorAs(t, err, &dsErr)
	})
}
