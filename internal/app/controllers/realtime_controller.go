package controllers

import (
	"github.com/gin-gonic/gin"

	"fire-alert-service/internal/domain/services/container"
	"fire-alert-service/internal/infrastructure/broadcast"
)

// HandleRealtime upgrades the request to a websocket subscribed to the
// broadcast hub. Every fire-alert and fire-location event is pushed as an
// {"event","data"} text frame.
// @Summary      Realtime events
// @Description  Websocket stream of fire-alert and fire-location events
// @Tags         Realtime
// @Success      101
// @Router       /ws [get]
func HandleRealtime(container *container.ServiceContainer) gin.HandlerFunc {
	handler := broadcast.ServeWS(container.GetHub(), container.GetConfig().CORSAllowOrigin)
	return func(ctx *gin.Context) {
		handler(ctx.Writer, ctx.Request)
	}
}
