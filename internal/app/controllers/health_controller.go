package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fire-alert-service/internal/app/middleware"
	"fire-alert-service/internal/domain/services"
	"fire-alert-service/internal/domain/services/container"
	"fire-alert-service/internal/error/code"
	"fire-alert-service/internal/error/response"
)

// HealthCheckController reports liveness and dependency state
type HealthCheckController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewHealthCheckController creates a health controller
func NewHealthCheckController(ctx *gin.Context, container *container.ServiceContainer) *HealthCheckController {
	return &HealthCheckController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleHealthFunc returns a gin handler for the named health operation
func HandleHealthFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewHealthCheckController(ctx, container)

		switch method {
		case "ping":
			controller.Ping()
		case "status":
			controller.Status()
		case "cacheStats":
			controller.CacheStats()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "invalid method", nil)
		}
	}
}

// Ping is the liveness check
// @Summary      Ping
// @Tags         Health
// @Produce      json
// @Success      200  {object}  SuccessResponse
// @Router       /ping [get]
func (h *HealthCheckController) Ping() {
	response.Success(h.Ctx, gin.H{
		"status":  "healthy",
		"message": "pong",
	})
}

// Status checks every dependency
// @Summary      Dependency status
// @Description  Database, Redis and MQTT state, websocket subscribers and the current fire status
// @Tags         Health
// @Produce      json
// @Success      200  {object}  SuccessResponse
// @Failure      503  {object}  SuccessResponse
// @Router       /health/status [get]
func (h *HealthCheckController) Status() {
	ctx, cancel := context.WithTimeout(h.Ctx.Request.Context(), 3*time.Second)
	defer cancel()

	healthy := true
	components := gin.H{}

	if sqlDB, err := h.Container.GetDB().DB(); err != nil {
		healthy = false
		components["database"] = "error"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		healthy = false
		components["database"] = "unreachable"
	} else {
		components["database"] = "ok"
	}

	if redis, ok := h.Container.GetService("redis").(services.InterfaceRedisService); ok && redis != nil {
		if err := redis.Ping(ctx); err != nil {
			components["redis"] = "unreachable"
		} else {
			components["redis"] = "ok"
		}
	} else {
		components["redis"] = "disabled"
	}

	if mqtt, ok := h.Container.GetService("mqtt").(services.InterfaceMQTTService); ok && mqtt != nil {
		if mqtt.IsConnected() {
			components["mqtt"] = "connected"
		} else {
			components["mqtt"] = "disconnected"
		}
	} else {
		components["mqtt"] = "disabled"
	}

	sensor := h.Container.GetService("sensor").(services.InterfaceSensorService)
	data := gin.H{
		"healthy":     healthy,
		"components":  components,
		"subscribers": h.Container.GetHub().SubscriberCount(),
		"fireStatus":  sensor.CurrentStatus(),
		"time":        time.Now(),
	}

	if !healthy {
		h.Ctx.JSON(http.StatusServiceUnavailable, response.Response{
			Code:    code.ErrDatabase,
			Message: "Service degraded",
			Data:    data,
		})
		return
	}
	response.Success(h.Ctx, data)
}

// CacheStats reports the response cache
// @Summary      Response cache statistics
// @Tags         Health
// @Produce      json
// @Success      200  {object}  SuccessResponse
// @Router       /health/cache-stats [get]
func (h *HealthCheckController) CacheStats() {
	response.Success(h.Ctx, middleware.CacheStats())
}
