package controllers

import (
	"github.com/gin-gonic/gin"

	"fire-alert-service/internal/app/middleware"
	"fire-alert-service/internal/domain/services"
	"fire-alert-service/internal/domain/services/container"
	"fire-alert-service/internal/error/code"
	"fire-alert-service/internal/error/response"
)

// InterfaceSensorController defines the sensor endpoints
type InterfaceSensorController interface {
	UpdateStatus()
	UpdateLocation()
	GetStatus()
	GetFireLocations()
}

// SensorController handles sensor ingress and status reads
type SensorController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewSensorController creates a sensor controller
func NewSensorController(ctx *gin.Context, container *container.ServiceContainer) *SensorController {
	return &SensorController{
		Ctx:       ctx,
		Container: container,
	}
}

// StatusRequest is posted by the sensor
type StatusRequest struct {
	Status string `json:"status" binding:"required" example:"FIRE"`
}

// LocationRequest is posted by a browser after a fire alert. LogID is
// accepted as an alias of EventID.
type LocationRequest struct {
	EventID   *uint    `json:"eventId" example:"7"`
	LogID     *uint    `json:"logId" swaggerignore:"true"`
	Latitude  *float64 `json:"latitude" example:"-6.2"`
	Longitude *float64 `json:"longitude" example:"106.8"`
	Address   *string  `json:"address" example:"Jakarta"`
}

// HandleSensorFunc returns a gin handler for the named sensor operation
func HandleSensorFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewSensorController(ctx, container)

		switch method {
		case "updateStatus":
			controller.UpdateStatus()
		case "updateLocation":
			controller.UpdateLocation()
		case "getStatus":
			controller.GetStatus()
		case "getFireLocations":
			controller.GetFireLocations()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "invalid method", nil)
		}
	}
}

func (c *SensorController) sensor() services.InterfaceSensorService {
	return c.Container.GetService("sensor").(services.InterfaceSensorService)
}

// 1. UpdateStatus sets the current status
// @Summary      Report sensor status
// @Description  Sets the current FIRE/SAFE status. FIRE stores a new fire event whose id is returned and broadcast.
// @Tags         Sensor
// @Accept       json
// @Produce      json
// @Param        request body StatusRequest true "Sensor status"
// @Success      200  {object}  SuccessResponse{data=services.StatusUpdateResult}
// @Failure      400  {object}  ErrorResponse
// @Failure      429  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /sensor/update [post]
func (c *SensorController) UpdateStatus() {
	var req StatusRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "Status is required", nil)
		return
	}

	result, err := c.sensor().UpdateStatus(c.Ctx.Request.Context(), req.Status, services.SourceHTTP)
	if err != nil {
		respondError(c.Ctx, err)
		return
	}

	response.SuccessWithMessage(c.Ctx, "Status updated successfully", result)
}

// 2. UpdateLocation attaches a location to a fire event
// @Summary      Report fire location
// @Description  Merges a location into the fire event given by eventId, or creates a new located fire event. A bearer token is optional and attributes the report.
// @Tags         Sensor
// @Accept       json
// @Produce      json
// @Param        request body LocationRequest true "Location"
// @Success      200  {object}  SuccessResponse{data=services.LocationResult}
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /sensor/location [post]
// @Security     BearerAuth
func (c *SensorController) UpdateLocation() {
	var req LocationRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "Invalid request body", nil)
		return
	}

	eventID := req.EventID
	if eventID == nil {
		eventID = req.LogID
	}

	result, err := c.sensor().ReportLocation(c.Ctx.Request.Context(), services.LocationInput{
		EventID:   eventID,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Address:   req.Address,
	}, middleware.GetIdentity(c.Ctx))
	if err != nil {
		respondError(c.Ctx, err)
		return
	}

	response.SuccessWithMessage(c.Ctx, "Location updated successfully", result)
}

// 3. GetStatus returns the current status
// @Summary      Current status
// @Description  Returns the in-memory FIRE/SAFE status and when it was last set
// @Tags         Sensor
// @Produce      json
// @Success      200  {object}  SuccessResponse{data=models.StatusValue}
// @Router       /sensor/status [get]
func (c *SensorController) GetStatus() {
	response.Success(c.Ctx, c.sensor().CurrentStatus())
}

// 4. GetFireLocations lists located fire events
// @Summary      Fire locations
// @Description  Newest located FIRE events, at most 100
// @Tags         Sensor
// @Produce      json
// @Success      200  {object}  SuccessResponse{data=[]models.FireEvent}
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /sensor/fire-locations [get]
// @Security     BearerAuth
func (c *SensorController) GetFireLocations() {
	events, err := c.sensor().ListFireLocations(c.Ctx.Request.Context())
	if err != nil {
		respondError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, events)
}
