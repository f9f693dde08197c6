package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGeocodeServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "-6.2", r.URL.Query().Get("lat"))
		assert.Equal(t, "106.8", r.URL.Query().Get("lon"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		assert.Equal(t, "id", r.Header.Get("Accept-Language"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newTestGeocoder(url string, cache InterfaceRedisService) InterfaceGeocodeService {
	cfg := testConfig()
	cfg.GeocoderURL = url + "/"
	cfg.GeocoderLanguage = "id"
	cfg.GeocoderTimeout = 2 * time.Second
	return NewGeocodeService(cfg, cache)
}

func TestGeocodeServiceReverseGeocode(t *testing.T) {
	srv, hits := newGeocodeServer(t, http.StatusOK, `{"display_name":"Jl. Sudirman, Jakarta"}`)
	geocoder := newTestGeocoder(srv.URL, nil)

	address, err := geocoder.ReverseGeocode(context.Background(), -6.2, 106.8)
	require.NoError(t, err)
	assert.Equal(t, "Jl. Sudirman, Jakarta", address)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestGeocodeServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{}`},
		{"error body", http.StatusOK, `{"error":"Unable to geocode"}`},
		{"empty address", http.StatusOK, `{"display_name":""}`},
		{"bad json", http.StatusOK, `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newGeocodeServer(t, tt.status, tt.body)
			_, err := newTestGeocoder(srv.URL, nil).ReverseGeocode(context.Background(), -6.2, 106.8)
			assert.Error(t, err)
		})
	}
}

func TestGeocodeServiceUsesRedisCache(t *testing.T) {
	srv, hits := newGeocodeServer(t, http.StatusOK, `{"display_name":"Jakarta"}`)
	_, cache := newTestRedis(t)
	geocoder := newTestGeocoder(srv.URL, cache)
	ctx := context.Background()

	first, err := geocoder.ReverseGeocode(ctx, -6.2, 106.8)
	require.NoError(t, err)
	second, err := geocoder.ReverseGeocode(ctx, -6.2, 106.8)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))

	cached, err := cache.GetAddress(ctx, -6.2, 106.8)
	require.NoError(t, err)
	assert.Equal(t, "Jakarta", cached)
}
