package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"fire-alert-service/internal/domain/services"
	"fire-alert-service/internal/error/code"
	"fire-alert-service/internal/error/response"
	"fire-alert-service/pkg/logger"
)

// ErrorResponse is the failure envelope, for swagger
type ErrorResponse struct {
	Code    int         `json:"code" example:"102000"`
	Message string      `json:"message" example:"Invalid status. Must be FIRE or SAFE"`
	Data    interface{} `json:"data,omitempty"`
}

// SuccessResponse is the success envelope, for swagger
type SuccessResponse struct {
	Code    int         `json:"code" example:"100000"`
	Message string      `json:"message" example:"Success"`
	Data    interface{} `json:"data,omitempty"`
}

// respondError maps a domain error to its business code. Unknown and storage
// errors are logged and reported without detail.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidStatus):
		response.Fail(c, code.ErrInvalidStatus, nil)
	case errors.Is(err, services.ErrMissingLocation):
		response.Fail(c, code.ErrMissingLocation, nil)
	case errors.Is(err, services.ErrInvalidLocation):
		response.Fail(c, code.ErrInvalidLocation, nil)
	case errors.Is(err, services.ErrFireEventNotFound):
		response.Fail(c, code.ErrFireEventNotFound, nil)
	case errors.Is(err, services.ErrUnauthenticated):
		response.Fail(c, code.ErrTokenInvalid, nil)
	case errors.Is(err, services.ErrForbidden):
		response.Fail(c, code.ErrForbidden, nil)
	case errors.Is(err, services.ErrUserNotFound):
		response.Fail(c, code.ErrUserNotFound, nil)
	case errors.Is(err, services.ErrUserAlreadyExists):
		response.Fail(c, code.ErrUserAlreadyExist, nil)
	case errors.Is(err, services.ErrInvalidCredentials):
		response.Fail(c, code.ErrUserPasswordIncorrect, nil)
	case errors.Is(err, services.ErrSelfDeleteForbidden):
		response.Fail(c, code.ErrSelfDeleteForbidden, nil)
	case errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrEmptyUserField),
		errors.Is(err, services.ErrPasswordTooShort):
		response.ParamError(c, err.Error())
	case errors.Is(err, services.ErrStorage):
		logger.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
		response.Fail(c, code.ErrDatabase, nil)
	default:
		logger.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
		response.ServerError(c)
	}
}
