package services

import (
	"sync"
	"time"

	"fire-alert-service/internal/domain/models"
)

// InterfaceStatusCache holds the single current sensor status
type InterfaceStatusCache interface {
	Set(raw string) (models.StatusValue, error)
	Get() models.StatusValue
}

// StatusCache is the in-memory current status. It starts as SAFE and is
// never persisted.
type StatusCache struct {
	mu    sync.RWMutex
	value models.StatusValue
	now   func() time.Time
}

// NewStatusCache returns a cache holding SAFE
func NewStatusCache() *StatusCache {
	return &StatusCache{
		value: models.StatusValue{Status: models.StatusSafe, UpdatedAt: time.Now()},
		now:   time.Now,
	}
}

// Set normalizes raw and overwrites the current value. Invalid input leaves
// the cache untouched and returns ErrInvalidStatus.
func (s *StatusCache) Set(raw string) (models.StatusValue, error) {
	status, ok := models.ParseStatus(raw)
	if !ok {
		return models.StatusValue{}, ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = models.StatusValue{Status: status, UpdatedAt: s.now()}
	return s.value, nil
}

// Get returns the current value
func (s *StatusCache) Get() models.StatusValue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}
