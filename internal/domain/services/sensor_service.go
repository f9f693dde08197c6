package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"fire-alert-service/internal/domain/models"
	"fire-alert-service/internal/infrastructure/broadcast"
	"fire-alert-service/internal/infrastructure/metrics"
	"fire-alert-service/pkg/logger"
)

// Query limits
const (
	AllEventsLimit     = 100
	MyEventsLimit      = 50
	FireLocationsLimit = 100
)

// Status update sources, used as a metrics label
const (
	SourceHTTP = "http"
	SourceMQTT = "mqtt"
)

// Location merge outcomes
const (
	OutcomeMerged         = "merged"
	OutcomeCreated        = "created"
	OutcomeAlreadyLocated = "already_located"
	OutcomeMissingTarget  = "missing_target"
)

// InterfaceSensorService correlates sensor status and location reports with
// durable fire events and publishes them to the broadcast hub
type InterfaceSensorService interface {
	UpdateStatus(ctx context.Context, raw string, source string) (*StatusUpdateResult, error)
	CurrentStatus() models.StatusValue
	ReportLocation(ctx context.Context, input LocationInput, actor Identity) (*LocationResult, error)
	GetEvent(ctx context.Context, id uint) (*models.FireEvent, error)
	ListAllEvents(ctx context.Context) ([]models.FireEvent, error)
	ListMyEvents(ctx context.Context, userID uint) ([]models.FireEvent, error)
	ListFireLocations(ctx context.Context) ([]models.FireEvent, error)
}

// StatusUpdateResult is returned for every accepted status update. EventID is
// set only when a FIRE status was stored.
type StatusUpdateResult struct {
	Status    models.Status `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	EventID   *uint         `json:"eventId"`
}

// LocationInput is a location report. EventID is the fire event to merge
// into; when nil a new located fire event is created.
type LocationInput struct {
	EventID   *uint
	Latitude  *float64
	Longitude *float64
	Address   *string
}

// LocationResult describes what a location report did
type LocationResult struct {
	Outcome  string              `json:"outcome"`
	Location models.FireLocation `json:"location"`
}

// SensorService is the event correlator
type SensorService struct {
	Cache     InterfaceStatusCache
	Store     InterfaceFireEventStore
	Publisher broadcast.Publisher
	Geocoder  InterfaceGeocodeService
	log       zerolog.Logger
}

// NewSensorService wires the correlator. geocoder may be nil.
func NewSensorService(cache InterfaceStatusCache, store InterfaceFireEventStore, publisher broadcast.Publisher, geocoder InterfaceGeocodeService) InterfaceSensorService {
	return &SensorService{
		Cache:     cache,
		Store:     store,
		Publisher: publisher,
		Geocoder:  geocoder,
		log:       logger.WithComponent("sensor"),
	}
}

// 1 UpdateStatus sets the current status, stores a fire event on FIRE and
// publishes a fire-alert. A storage failure does not undo the status change
// or the broadcast; it is returned alongside the result with EventID nil.
func (s *SensorService) UpdateStatus(ctx context.Context, raw string, source string) (*StatusUpdateResult, error) {
	value, err := s.Cache.Set(raw)
	if err != nil {
		return nil, err
	}
	metrics.StatusUpdatesTotal.WithLabelValues(string(value.Status), source).Inc()

	result := &StatusUpdateResult{Status: value.Status, Timestamp: value.UpdatedAt}

	var storeErr error
	if value.Status == models.StatusFire {
		event := &models.FireEvent{Status: models.StatusFire, CreatedAt: value.UpdatedAt}
		if storeErr = s.Store.Create(ctx, event); storeErr != nil {
			s.log.Error().Err(storeErr).Str("source", source).Msg("failed to store fire event")
		} else {
			id := event.ID
			result.EventID = &id
			metrics.FireEventsCreatedTotal.WithLabelValues("status_update").Inc()
		}
	}

	s.Publisher.Publish(broadcast.EventFireAlert, models.FireAlert{
		Status:    result.Status,
		Timestamp: result.Timestamp,
		EventID:   result.EventID,
	})

	if value.Status == models.StatusFire {
		s.log.Warn().Str("source", source).Interface("eventId", result.EventID).Msg("FIRE DETECTED")
	} else {
		s.log.Info().Str("source", source).Msg("status is SAFE")
	}

	return result, storeErr
}

// 2 CurrentStatus reads the status cache
func (s *SensorService) CurrentStatus() models.StatusValue {
	return s.Cache.Get()
}

// 3 ReportLocation attaches a location to a fire event, or creates a new
// located fire event when no target is given
func (s *SensorService) ReportLocation(ctx context.Context, input LocationInput, actor Identity) (*LocationResult, error) {
	if input.Latitude == nil || input.Longitude == nil {
		return nil, ErrMissingLocation
	}
	lat, lon := *input.Latitude, *input.Longitude
	if !validCoordinates(lat, lon) {
		return nil, ErrInvalidLocation
	}

	address := s.resolveAddress(ctx, lat, lon, input.Address)

	patch := LocationPatch{Latitude: lat, Longitude: lon, Address: address}
	username := models.AnonymousUsername
	if !actor.Anonymous() {
		userID := actor.UserID
		patch.UserID = &userID
		username = actor.Username
	}
	patch.Username = &username

	now := time.Now()
	var result *LocationResult

	if input.EventID == nil {
		event := &models.FireEvent{
			Status:    models.StatusFire,
			Latitude:  &lat,
			Longitude: &lon,
			Address:   address,
			UserID:    patch.UserID,
			Username:  patch.Username,
			CreatedAt: now,
		}
		if err := s.Store.Create(ctx, event); err != nil {
			s.log.Error().Err(err).Msg("failed to store located fire event")
			return nil, err
		}
		metrics.FireEventsCreatedTotal.WithLabelValues("location_report").Inc()
		result = &LocationResult{Outcome: OutcomeCreated, Location: locationOf(event.ID, lat, lon, address, username, event.CreatedAt)}
	} else {
		var err error
		result, err = s.merge(ctx, *input.EventID, patch, now)
		if err != nil {
			return nil, err
		}
	}

	metrics.LocationMergesTotal.WithLabelValues(result.Outcome).Inc()

	// a lost merge was already broadcast by the writer that won
	if result.Outcome != OutcomeAlreadyLocated {
		s.Publisher.Publish(broadcast.EventFireLocation, result.Location)
	}

	s.log.Info().
		Str("outcome", result.Outcome).
		Uint("eventId", result.Location.ID).
		Float64("latitude", result.Location.Latitude).
		Float64("longitude", result.Location.Longitude).
		Str("username", result.Location.Username).
		Msg("fire location reported")

	return result, nil
}

func (s *SensorService) merge(ctx context.Context, id uint, patch LocationPatch, now time.Time) (*LocationResult, error) {
	applied, err := s.Store.MergeLocation(ctx, id, patch)
	if err != nil {
		s.log.Error().Err(err).Uint("eventId", id).Msg("failed to merge location")
		return nil, err
	}
	if applied {
		// the payload carries the event's creation time, matching the order of fire-locations
		createdAt := now
		if stored, err := s.Store.FindByID(ctx, id); err == nil {
			createdAt = stored.CreatedAt
		} else {
			s.log.Warn().Err(err).Uint("eventId", id).Msg("merged event could not be reread")
		}
		return &LocationResult{
			Outcome:  OutcomeMerged,
			Location: locationOf(id, patch.Latitude, patch.Longitude, patch.Address, *patch.Username, createdAt),
		}, nil
	}

	existing, err := s.Store.FindByID(ctx, id)
	if errors.Is(err, ErrFireEventNotFound) {
		// unknown target: nothing is written, the report is still broadcast as given
		s.log.Warn().Uint("eventId", id).Msg("location target not found, nothing merged")
		return &LocationResult{
			Outcome:  OutcomeMissingTarget,
			Location: locationOf(id, patch.Latitude, patch.Longitude, patch.Address, *patch.Username, now),
		}, nil
	}
	if err != nil {
		return nil, err
	}

	s.log.Info().Uint("eventId", id).Msg("fire event already located, keeping stored location")
	username := models.AnonymousUsername
	if existing.Username != nil {
		username = *existing.Username
	}
	return &LocationResult{
		Outcome:  OutcomeAlreadyLocated,
		Location: locationOf(existing.ID, derefFloat(existing.Latitude), derefFloat(existing.Longitude), existing.Address, username, existing.CreatedAt),
	}, nil
}

func (s *SensorService) resolveAddress(ctx context.Context, lat, lon float64, given *string) *string {
	if given != nil {
		trimmed := strings.TrimSpace(*given)
		if trimmed != "" {
			return &trimmed
		}
	}
	if s.Geocoder == nil {
		return nil
	}

	address, err := s.Geocoder.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		s.log.Warn().Err(err).Msg("reverse geocode failed")
		return nil
	}
	return &address
}

// 4 GetEvent returns one fire event
func (s *SensorService) GetEvent(ctx context.Context, id uint) (*models.FireEvent, error) {
	return s.Store.FindByID(ctx, id)
}

// 5 ListAllEvents returns the newest events across all users
func (s *SensorService) ListAllEvents(ctx context.Context) ([]models.FireEvent, error) {
	return s.Store.List(ctx, FireEventFilter{Limit: AllEventsLimit})
}

// 6 ListMyEvents returns the newest events attributed to userID
func (s *SensorService) ListMyEvents(ctx context.Context, userID uint) ([]models.FireEvent, error) {
	return s.Store.List(ctx, FireEventFilter{UserID: &userID, Limit: MyEventsLimit})
}

// 7 ListFireLocations returns the newest FIRE events that carry a location
func (s *SensorService) ListFireLocations(ctx context.Context) ([]models.FireEvent, error) {
	return s.Store.List(ctx, FireEventFilter{
		Status:      models.StatusFire,
		LocatedOnly: true,
		Limit:       FireLocationsLimit,
	})
}

func validCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func locationOf(id uint, lat, lon float64, address *string, username string, ts time.Time) models.FireLocation {
	return models.FireLocation{
		ID:        id,
		Latitude:  lat,
		Longitude: lon,
		Address:   address,
		Username:  username,
		Timestamp: ts,
	}
}

func derefFloat(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
