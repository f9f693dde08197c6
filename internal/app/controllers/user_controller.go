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

// usersCachePrefix is the path prefix purged after any user write
const usersCachePrefix = "/api/users"

// InterfaceUserController defines the user administration endpoints
type InterfaceUserController interface {
	GetUsers()
	GetUser()
	UpdateUser()
	DeleteUser()
}

// UserController handles user administration
type UserController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewUserController creates a user controller
func NewUserController(ctx *gin.Context, container *container.ServiceContainer) *UserController {
	return &UserController{
		Ctx:       ctx,
		Container: container,
	}
}

// UpdateUserRequest holds the fields an admin may change. Omitted fields are kept.
type UpdateUserRequest struct {
	Username *string `json:"username" example:"alice"`
	Email    *string `json:"email" binding:"omitempty,email" example:"alice@example.com"`
	Role     *string `json:"role" binding:"omitempty,oneof=user admin" example:"user"`
	Password *string `json:"password" example:"newsecret"`
}

// HandleUserFunc returns a gin handler for the named user operation
func HandleUserFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewUserController(ctx, container)

		switch method {
		case "getUsers":
			controller.GetUsers()
		case "getUser":
			controller.GetUser()
		case "updateUser":
			controller.UpdateUser()
		case "deleteUser":
			controller.DeleteUser()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "invalid method", nil)
		}
	}
}

func (c *UserController) users() services.InterfaceUserService {
	return c.Container.GetService("user").(services.InterfaceUserService)
}

func (c *UserController) parseID() (uint, bool) {
	id, err := strconv.ParseUint(c.Ctx.Param("id"), 10, 32)
	if err != nil || id == 0 {
		response.ParamError(c.Ctx, "invalid id")
		return 0, false
	}
	return uint(id), true
}

// 1. GetUsers lists all users
// @Summary      List users
// @Description  All user accounts, newest first. Admin only.
// @Tags         Users
// @Produce      json
// @Success      200  {object}  SuccessResponse{data=[]models.User}
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /users [get]
// @Security     BearerAuth
func (c *UserController) GetUsers() {
	users, err := c.users().ListUsers(c.Ctx.Request.Context())
	if err != nil {
		respondError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, users)
}

// 2. GetUser returns one user
// @Summary      Get user
// @Tags         Users
// @Produce      json
// @Param        id path int true "User ID"
// @Success      200  {object}  SuccessResponse{data=models.User}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [get]
// @Security     BearerAuth
func (c *UserController) GetUser() {
	id, ok := c.parseID()
	if !ok {
		return
	}

	user, err := c.users().GetUserByID(c.Ctx.Request.Context(), id)
	if err != nil {
		respondError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, user)
}

// 3. UpdateUser changes a user
// @Summary      Update user
// @Description  Changes username, email, role or password. Username and email stay unique.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        id path int true "User ID"
// @Param        request body UpdateUserRequest true "Fields to change"
// @Success      200  {object}  SuccessResponse{data=models.User}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /users/{id} [put]
// @Security     BearerAuth
func (c *UserController) UpdateUser() {
	id, ok := c.parseID()
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "Invalid request body", nil)
		return
	}

	user, err := c.users().UpdateUser(c.Ctx.Request.Context(), id, services.UpdateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Role:     req.Role,
		Password: req.Password,
	})
	if err != nil {
		respondError(c.Ctx, err)
		return
	}

	middleware.PurgeCacheByPrefix(usersCachePrefix)
	response.SuccessWithMessage(c.Ctx, "User updated successfully", user)
}

// 4. DeleteUser removes a user
// @Summary      Delete user
// @Description  Removes a user account. Admins cannot delete themselves.
// @Tags         Users
// @Produce      json
// @Param        id path int true "User ID"
// @Success      200  {object}  SuccessResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [delete]
// @Security     BearerAuth
func (c *UserController) DeleteUser() {
	id, ok := c.parseID()
	if !ok {
		return
	}

	caller := middleware.GetIdentity(c.Ctx)
	if err := c.users().DeleteUser(c.Ctx.Request.Context(), caller.UserID, id); err != nil {
		respondError(c.Ctx, err)
		return
	}

	middleware.PurgeCacheByPrefix(usersCachePrefix)
	response.SuccessWithMessage(c.Ctx, "User deleted successfully", nil)
}
