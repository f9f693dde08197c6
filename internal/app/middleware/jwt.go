package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"fire-alert-service/internal/domain/services"
	"fire-alert-service/internal/error/code"
	"fire-alert-service/internal/error/response"
)

const (
	identityKey = "identity"
	userIDKey   = "userID"
	roleKey     = "role"
)

var accessPolicy services.InterfaceAccessPolicy

// InitAuthMiddleware sets the policy used by every auth middleware
func InitAuthMiddleware(policy services.InterfaceAccessPolicy) {
	accessPolicy = policy
}

// extractToken strips an optional "Bearer " prefix
func extractToken(authHeader string) string {
	authHeader = strings.TrimSpace(authHeader)
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return authHeader
}

// resolve stores the caller identity on the context. A bad token is anonymous.
func resolve(c *gin.Context) services.Identity {
	identity := accessPolicy.Resolve(extractToken(c.GetHeader("Authorization")))
	c.Set(identityKey, identity)
	if !identity.Anonymous() {
		c.Set(userIDKey, identity.UserID)
		c.Set(roleKey, identity.Kind.String())
	}
	return identity
}

func requireAccess(req services.Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := resolve(c)
		if err := accessPolicy.Check(identity, req, 0); err != nil {
			if errors.Is(err, services.ErrForbidden) {
				response.Abort(c, code.ErrForbidden)
			} else {
				response.Abort(c, code.ErrTokenInvalid)
			}
			return
		}
		c.Next()
	}
}

// OptionalAuthentication attaches the caller identity when a valid token is
// present and lets anonymous requests through
func OptionalAuthentication() gin.HandlerFunc {
	return func(c *gin.Context) {
		resolve(c)
		c.Next()
	}
}

// Authentication rejects requests without a valid token
func Authentication() gin.HandlerFunc {
	return requireAccess(services.RequireAuthenticated)
}

// AuthenticateSystemAdmin rejects requests that do not carry an admin token
func AuthenticateSystemAdmin() gin.HandlerFunc {
	return requireAccess(services.RequireAdmin)
}

// GetIdentity returns the identity resolved by one of the auth middlewares,
// or the anonymous identity when none ran
func GetIdentity(c *gin.Context) services.Identity {
	if v, ok := c.Get(identityKey); ok {
		if identity, ok := v.(services.Identity); ok {
			return identity
		}
	}
	return services.Identity{}
}
