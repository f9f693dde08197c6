package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"fire-alert-service/internal/domain/models"
)

// FireEventFilter narrows a List call. Zero values mean no filter.
type FireEventFilter struct {
	Status      models.Status
	UserID      *uint
	LocatedOnly bool
	Limit       int
}

// LocationPatch is the set of fields a merge writes onto an existing event
type LocationPatch struct {
	Latitude  float64
	Longitude float64
	Address   *string
	UserID    *uint
	Username  *string
}

// InterfaceFireEventStore is the durable store for fire events
type InterfaceFireEventStore interface {
	Create(ctx context.Context, event *models.FireEvent) error
	FindByID(ctx context.Context, id uint) (*models.FireEvent, error)
	MergeLocation(ctx context.Context, id uint, patch LocationPatch) (bool, error)
	List(ctx context.Context, filter FireEventFilter) ([]models.FireEvent, error)
}

// FireEventStore persists fire events with gorm
type FireEventStore struct {
	DB      *gorm.DB
	Timeout time.Duration
}

// NewFireEventStore creates a store. A zero timeout disables the per-call deadline.
func NewFireEventStore(db *gorm.DB, timeout time.Duration) InterfaceFireEventStore {
	return &FireEventStore{DB: db, Timeout: timeout}
}

func (s *FireEventStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Timeout)
}

// Create inserts the event and fills in its id and creation time
func (s *FireEventStore) Create(ctx context.Context, event *models.FireEvent) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.DB.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("%w: create fire event: %v", ErrStorage, err)
	}
	return nil
}

// FindByID returns ErrFireEventNotFound when no row matches
func (s *FireEventStore) FindByID(ctx context.Context, id uint) (*models.FireEvent, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var event models.FireEvent
	err := s.DB.WithContext(ctx).First(&event, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFireEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find fire event: %v", ErrStorage, err)
	}
	return &event, nil
}

// MergeLocation fills the location and attribution of an event that has no
// location yet. The update is conditional so concurrent merges on the same
// event cannot both apply; applied reports whether this call won.
func (s *FireEventStore) MergeLocation(ctx context.Context, id uint, patch LocationPatch) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res := s.DB.WithContext(ctx).
		Model(&models.FireEvent{}).
		Where("id = ? AND latitude IS NULL AND longitude IS NULL", id).
		Updates(map[string]interface{}{
			"latitude":  patch.Latitude,
			"longitude": patch.Longitude,
			"address":   patch.Address,
			"user_id":   patch.UserID,
			"username":  patch.Username,
		})
	if res.Error != nil {
		return false, fmt.Errorf("%w: merge location: %v", ErrStorage, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// List returns events newest first
func (s *FireEventStore) List(ctx context.Context, filter FireEventFilter) ([]models.FireEvent, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := s.DB.WithContext(ctx).Model(&models.FireEvent{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.LocatedOnly {
		query = query.Where("latitude IS NOT NULL AND longitude IS NOT NULL")
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	events := make([]models.FireEvent, 0)
	if err := query.Order("created_at DESC").Order("id DESC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("%w: list fire events: %v", ErrStorage, err)
	}
	return events, nil
}
