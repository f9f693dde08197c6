package container

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"fire-alert-service/internal/domain/models"
	"fire-alert-service/internal/domain/services"
	"fire-alert-service/internal/infrastructure/broadcast"
	"fire-alert-service/internal/infrastructure/config"
)

func newTestContainer(t *testing.T) *ServiceContainer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"),
		&gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.FireEvent{}))

	cfg := &config.Config{
		JWTSecretKey:   "test-secret",
		JWTExpiryHours: 1,
		DBQueryTimeout: time.Second,
	}

	c := NewServiceContainer(db, cfg, nil)
	c.Start()
	t.Cleanup(c.Shutdown)
	return c
}

func TestServiceContainerWiresCoreServices(t *testing.T) {
	c := newTestContainer(t)

	for _, name := range []string{"config", "db", "hub", "jwt", "access", "user", "status", "fire_event_store", "sensor"} {
		assert.NotNil(t, c.GetService(name), name)
	}

	assert.Nil(t, c.GetService("redis"))
	assert.Nil(t, c.GetService("geocode"))
	assert.Nil(t, c.GetService("mqtt"))
	assert.Nil(t, c.GetService("unknown"))
	assert.NotNil(t, c.GetDB())
	assert.NotNil(t, c.GetConfig())
}

func TestServiceContainerSensorPublishesToHub(t *testing.T) {
	c := newTestContainer(t)
	sub := c.GetHub().Subscribe()

	sensor := c.GetService("sensor").(services.InterfaceSensorService)
	_, err := sensor.UpdateStatus(context.Background(), "FIRE", services.SourceHTTP)
	require.NoError(t, err)

	select {
	case msg := <-sub.C:
		assert.Equal(t, broadcast.EventFireAlert, msg.Event)
	case <-time.After(2 * time.Second):
		t.Fatal("no broadcast received")
	}

	status := c.GetService("status").(services.InterfaceStatusCache)
	assert.Equal(t, models.StatusFire, status.Get().Status)
}

func TestNewServiceContainerPanicsWithoutDependencies(t *testing.T) {
	assert.Panics(t, func() { NewServiceContainer(nil, &config.Config{}, nil) })
}
