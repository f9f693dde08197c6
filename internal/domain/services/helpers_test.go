package services

import (
	"context"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"fire-alert-service/internal/domain/models"
	"fire-alert-service/internal/infrastructure/config"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.FireEvent{}))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecretKey:      "test-secret",
		JWTExpiryHours:    1,
		MQTTQoS:           1,
		MQTTSensorTopic:   "fire/sensor/status",
		MQTTAlertTopic:    "fire/alert",
		MQTTLocationTopic: "fire/location",
	}
}

type published struct {
	Event string
	Data  interface{}
}

// recordingPublisher captures everything published to it
type recordingPublisher struct {
	mu       sync.Mutex
	messages []published
}

func (p *recordingPublisher) Publish(event string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, published{Event: event, Data: data})
}

func (p *recordingPublisher) all() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.messages...)
}

// failingStore fails every write and read
type failingStore struct{}

func (failingStore) Create(context.Context, *models.FireEvent) error {
	return ErrStorage
}

func (failingStore) FindByID(context.Context, uint) (*models.FireEvent, error) {
	return nil, ErrStorage
}

func (failingStore) MergeLocation(context.Context, uint, LocationPatch) (bool, error) {
	return false, ErrStorage
}

func (failingStore) List(context.Context, FireEventFilter) ([]models.FireEvent, error) {
	return nil, ErrStorage
}

type stubGeocoder struct {
	address string
	err     error
	calls   int
}

func (g *stubGeocoder) ReverseGeocode(context.Context, float64, float64) (string, error) {
	g.calls++
	return g.address, g.err
}

func ptr[T any](v T) *T {
	return &v
}
