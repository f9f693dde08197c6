package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"fire-alert-service/internal/app/middleware"
	"fire-alert-service/internal/domain/services"
	"fire-alert-service/internal/domain/services/container"
	"fire-alert-service/internal/error/code"
	"fire-alert-service/internal/error/response"
)

// InterfaceLogController defines the fire event history endpoints
type InterfaceLogController interface {
	GetAllLogs()
	GetMyLogs()
	GetLog()
}

// LogController serves fire event history
type LogController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewLogController creates a log controller
func NewLogController(ctx *gin.Context, container *container.ServiceContainer) *LogController {
	return &LogController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleLogFunc returns a gin handler for the named log operation
func HandleLogFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewLogController(ctx, container)

		switch method {
		case "getAllLogs":
			controller.GetAllLogs()
		case "getMyLogs":
			controller.GetMyLogs()
		case "getLog":
			controller.GetLog()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "invalid method", nil)
		}
	}
}

// 1. GetAllLogs lists the newest fire events
// @Summary      All fire events
// @Description  Newest fire events across all users, at most 100. Admin only.
// @Tags         Logs
// @Produce      json
// @Success      200  {object}  SuccessResponse{data=[]models.FireEvent}
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /logs [get]
// @Security     BearerAuth
func (c *LogController) GetAllLogs() {
	sensor := c.Container.GetService("sensor").(services.InterfaceSensorService)
	events, err := sensor.ListAllEvents(c.Ctx.Request.Context())
	if err != nil {
		respondError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, events)
}

// 2. GetMyLogs lists the caller's fire events
// @Summary      My fire events
// @Description  Newest fire events reported by the caller, at most 50
// @Tags         Logs
// @Produce      json
// @Success      200  {object}  SuccessResponse{data=[]models.FireEvent}
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /logs/my [get]
// @Security     BearerAuth
func (c *LogController) GetMyLogs() {
	identity := middleware.GetIdentity(c.Ctx)
	if identity.Anonymous() {
		respondError(c.Ctx, services.ErrUnauthenticated)
		return
	}

	sensor := c.Container.GetService("sensor").(services.InterfaceSensorService)
	events, err := sensor.ListMyEvents(c.Ctx.Request.Context(), identity.UserID)
	if err != nil {
		respondError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, events)
}

// 3. GetLog returns one fire event
// @Summary      Get fire event
// @Description  One fire event. Users may read events they reported; admins may read any.
// @Tags         Logs
// @Produce      json
// @Param        id   path      int  true  "Fire event ID"
// @Success      200  {object}  SuccessResponse{data=models.FireEvent}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /logs/{id} [get]
// @Security     BearerAuth
func (c *LogController) GetLog() {
	id, err := strconv.ParseUint(c.Ctx.Param("id"), 10, 32)
	if err != nil || id == 0 {
		response.ParamError(c.Ctx, "invalid id")
		return
	}

	sensor := c.Container.GetService("sensor").(services.InterfaceSensorService)
	event, err := sensor.GetEvent(c.Ctx.Request.Context(), uint(id))
	if err != nil {
		respondError(c.Ctx, err)
		return
	}

	// events without a reporter are visible to admins only
	var owner uint
	if event.UserID != nil {
		owner = *event.UserID
	}
	access := c.Container.GetService("access").(services.InterfaceAccessPolicy)
	if err := access.Check(middleware.GetIdentity(c.Ctx), services.RequireSelfOrAdmin, owner); err != nil {
		respondError(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, event)
}
