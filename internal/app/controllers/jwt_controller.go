package controllers

import (
	"github.com/gin-gonic/gin"

	"fire-alert-service/internal/app/middleware"
	"fire-alert-service/internal/domain/services"
	"fire-alert-service/internal/domain/services/container"
	"fire-alert-service/internal/error/code"
	"fire-alert-service/internal/error/response"
)

// InterfaceJWTController defines the authentication endpoints
type InterfaceJWTController interface {
	Register()
	Login()
	Me()
}

// JWTController handles sign up, sign in and the current user
type JWTController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewJWTController creates an authentication controller
func NewJWTController(ctx *gin.Context, container *container.ServiceContainer) *JWTController {
	return &JWTController{
		Ctx:       ctx,
		Container: container,
	}
}

// LoginRequest accepts either an email or a username
type LoginRequest struct {
	Email    string `json:"email" example:"admin@fire.com"`
	Username string `json:"username" example:"Admin"`
	Password string `json:"password" binding:"required" example:"admin123"`
}

// HandleJWTFunc returns a gin handler for the named auth operation
func HandleJWTFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewJWTController(ctx, container)

		switch method {
		case "register":
			controller.Register()
		case "login":
			controller.Login()
		case "me":
			controller.Me()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "invalid method", nil)
		}
	}
}

func (c *JWTController) jwt() services.InterfaceJWTService {
	return c.Container.GetService("jwt").(services.InterfaceJWTService)
}

// 1. Register creates an account
// @Summary      Register
// @Description  Creates a user account with role user and returns a token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body services.RegisterInput true "Account"
// @Success      201  {object}  SuccessResponse{data=services.LoginResult}
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /auth/register [post]
func (c *JWTController) Register() {
	var req services.RegisterInput
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "Username, a valid email and password are required", nil)
		return
	}

	result, err := c.jwt().Register(c.Ctx.Request.Context(), req)
	if err != nil {
		respondError(c.Ctx, err)
		return
	}

	middleware.PurgeCacheByPrefix(usersCachePrefix)
	response.Created(c.Ctx, "User registered successfully", result)
}

// 2. Login signs a user in
// @Summary      Login
// @Description  Checks the credentials and returns a token and the user
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200  {object}  SuccessResponse{data=services.LoginResult}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/login [post]
func (c *JWTController) Login() {
	var req LoginRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "Email and password are required", nil)
		return
	}

	identifier := req.Email
	if identifier == "" {
		identifier = req.Username
	}
	if identifier == "" {
		response.FailWithMessage(c.Ctx, code.ErrBind, "Email and password are required", nil)
		return
	}

	result, err := c.jwt().Login(c.Ctx.Request.Context(), identifier, req.Password)
	if err != nil {
		respondError(c.Ctx, err)
		return
	}
	response.SuccessWithMessage(c.Ctx, "Login successful", result)
}

// 3. Me returns the signed in user
// @Summary      Current user
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  SuccessResponse{data=models.User}
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /auth/me [get]
// @Security     BearerAuth
func (c *JWTController) Me() {
	identity := middleware.GetIdentity(c.Ctx)
	if identity.Anonymous() {
		respondError(c.Ctx, services.ErrUnauthenticated)
		return
	}

	users := c.Container.GetService("user").(services.InterfaceUserService)
	user, err := users.GetUserByID(c.Ctx.Request.Context(), identity.UserID)
	if err != nil {
		respondError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, user)
}
