package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"fire-alert-service/internal/infrastructure/config"
	"fire-alert-service/internal/infrastructure/metrics"
	"fire-alert-service/pkg/logger"
)

const geocodeCacheTTL = 24 * time.Hour

// InterfaceGeocodeService turns coordinates into a human readable address
type InterfaceGeocodeService interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (string, error)
}

// GeocodeService queries a Nominatim compatible /reverse endpoint
type GeocodeService struct {
	BaseURL  string
	Language string
	Client   *http.Client
	Cache    InterfaceRedisService
	log      zerolog.Logger
}

type nominatimResponse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

// NewGeocodeService creates a geocoder. cache may be nil.
func NewGeocodeService(cfg *config.Config, cache InterfaceRedisService) InterfaceGeocodeService {
	timeout := cfg.GeocoderTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &GeocodeService{
		BaseURL:  strings.TrimRight(cfg.GeocoderURL, "/"),
		Language: cfg.GeocoderLanguage,
		Client:   &http.Client{Timeout: timeout},
		Cache:    cache,
		log:      logger.WithComponent("geocoder"),
	}
}

// ReverseGeocode returns the display name for the coordinates
func (s *GeocodeService) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	if s.Cache != nil {
		address, err := s.Cache.GetAddress(ctx, lat, lon)
		if err == nil && address != "" {
			metrics.GeocodeLookupsTotal.WithLabelValues("hit").Inc()
			return address, nil
		}
		if err != nil && !errors.Is(err, ErrCacheMiss) {
			s.log.Warn().Err(err).Msg("geocode cache read failed")
		}
	}

	address, err := s.fetch(ctx, lat, lon)
	if err != nil {
		metrics.GeocodeLookupsTotal.WithLabelValues("error").Inc()
		return "", err
	}
	metrics.GeocodeLookupsTotal.WithLabelValues("miss").Inc()

	if s.Cache != nil {
		if err := s.Cache.CacheAddress(ctx, lat, lon, address, geocodeCacheTTL); err != nil {
			s.log.Warn().Err(err).Msg("geocode cache write failed")
		}
	}
	return address, nil
}

func (s *GeocodeService) fetch(ctx context.Context, lat, lon float64) (string, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("zoom", "18")
	q.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build geocode request: %w", err)
	}
	// Nominatim rejects requests without an identifying agent
	req.Header.Set("User-Agent", "fire-alert-service/1.0")
	if s.Language != "" {
		req.Header.Set("Accept-Language", s.Language)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error fetching address: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geocoder returned status code %d", resp.StatusCode)
	}

	var body nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("error decoding geocoder response: %w", err)
	}
	if body.Error != "" {
		return "", fmt.Errorf("geocoder: %s", body.Error)
	}
	if body.DisplayName == "" {
		return "", errors.New("geocoder returned no address")
	}
	return body.DisplayName, nil
}
