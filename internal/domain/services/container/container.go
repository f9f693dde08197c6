package container

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"fire-alert-service/internal/domain/services"
	"fire-alert-service/internal/infrastructure/broadcast"
	"fire-alert-service/internal/infrastructure/config"
	"fire-alert-service/pkg/logger"
)

// ServiceContainer owns every long-lived service and hands them to controllers
type ServiceContainer struct {
	db     *gorm.DB
	config *config.Config
	hub    *broadcast.Hub

	// identity
	jwtService   services.InterfaceJWTService
	accessPolicy services.InterfaceAccessPolicy
	userService  services.InterfaceUserService

	// sensor pipeline
	statusCache    services.InterfaceStatusCache
	fireEventStore services.InterfaceFireEventStore
	sensorService  services.InterfaceSensorService

	// optional integrations, nil when disabled
	redisService   services.InterfaceRedisService
	geocodeService services.InterfaceGeocodeService
	mqttService    services.InterfaceMQTTService

	mu sync.RWMutex
}

// NewServiceContainer builds all services. hub may be nil, in which case a new one is created.
func NewServiceContainer(db *gorm.DB, cfg *config.Config, hub *broadcast.Hub) *ServiceContainer {
	if db == nil {
		panic("database connection is nil")
	}

	if cfg == nil {
		panic("config is nil")
	}

	if hub == nil {
		hub = broadcast.NewHub()
	}

	container := &ServiceContainer{
		db:     db,
		config: cfg,
		hub:    hub,
	}
	container.initializeServices()
	return container
}

func (c *ServiceContainer) initializeServices() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.jwtService = services.NewJWTService(c.config, c.db)
	c.accessPolicy = services.NewAccessPolicy(c.jwtService)
	c.userService = services.NewUserService(c.db, c.config)

	if c.config.RedisEnabled {
		redisService := services.NewRedisService(c.config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisService.Ping(ctx); err != nil {
			logger.Warning("redis ping failed: %v, geocode cache disabled", err)
		} else {
			c.redisService = redisService
		}
	}

	if c.config.GeocoderEnabled {
		c.geocodeService = services.NewGeocodeService(c.config, c.redisService)
	}

	c.statusCache = services.NewStatusCache()
	c.fireEventStore = services.NewFireEventStore(c.db, c.config.DBQueryTimeout)
	c.sensorService = services.NewSensorService(c.statusCache, c.fireEventStore, c.hub, c.geocodeService)

	if c.config.MQTTEnabled {
		c.mqttService = services.NewMQTTService(c.config, c.sensorService, c.hub)
	}
}

// Start launches the hub and the MQTT bridge
func (c *ServiceContainer) Start() {
	c.hub.Start()

	if c.mqttService != nil {
		if err := c.mqttService.Start(); err != nil {
			logger.Error("mqtt bridge failed to start: %v", err)
		}
	}
}

// Shutdown stops background work in reverse start order
func (c *ServiceContainer) Shutdown() {
	if c.mqttService != nil {
		c.mqttService.Stop()
	}
	c.hub.Stop()
}

// GetService returns the named service, or nil when it is unknown or disabled
func (c *ServiceContainer) GetService(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch name {
	case "config":
		return c.config
	case "db":
		return c.db
	case "hub":
		return c.hub
	case "jwt":
		return c.jwtService
	case "access":
		return c.accessPolicy
	case "user":
		return c.userService
	case "status":
		return c.statusCache
	case "fire_event_store":
		return c.fireEventStore
	case "sensor":
		return c.sensorService
	case "redis":
		return c.redisService
	case "geocode":
		return c.geocodeService
	case "mqtt":
		return c.mqttService
	default:
		return nil
	}
}

// GetDB returns the database handle
func (c *ServiceContainer) GetDB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// GetConfig returns the configuration
func (c *ServiceContainer) GetConfig() *config.Config {
	return c.config
}

// GetHub returns the broadcast hub
func (c *ServiceContainer) GetHub() *broadcast.Hub {
	return c.hub
}
