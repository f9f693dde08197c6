package services

import (
	"fire-alert-service/internal/domain/models"
)

// IdentityKind classifies the caller of a request
type IdentityKind int

const (
	KindAnonymous IdentityKind = iota
	KindUser
	KindAdmin
)

func (k IdentityKind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindAdmin:
		return "admin"
	default:
		return "anonymous"
	}
}

// Identity is who made a request. The zero value is anonymous.
type Identity struct {
	Kind     IdentityKind
	UserID   uint
	Username string
}

// Anonymous reports whether no valid token was presented
func (i Identity) Anonymous() bool {
	return i.Kind == KindAnonymous
}

// Requirement is what a route demands from its caller
type Requirement int

const (
	RequirePublic Requirement = iota
	RequireAuthenticated
	RequireAdmin
	RequireSelfOrAdmin
)

// InterfaceAccessPolicy resolves tokens to identities and gates operations
type InterfaceAccessPolicy interface {
	Resolve(token string) Identity
	Check(identity Identity, req Requirement, targetUserID uint) error
}

// AccessPolicy resolves identities from bearer tokens
type AccessPolicy struct {
	jwt InterfaceJWTService
}

// NewAccessPolicy creates an access policy on top of the token service
func NewAccessPolicy(jwtService InterfaceJWTService) InterfaceAccessPolicy {
	return &AccessPolicy{jwt: jwtService}
}

// Resolve never fails: a missing, malformed or expired token is anonymous
func (p *AccessPolicy) Resolve(token string) Identity {
	if token == "" {
		return Identity{}
	}

	claims, err := p.jwt.ExtractClaims(token)
	if err != nil {
		return Identity{}
	}

	kind := KindUser
	if claims.Role == models.RoleAdmin {
		kind = KindAdmin
	}
	return Identity{Kind: kind, UserID: claims.UserID, Username: claims.Username}
}

// Check returns ErrUnauthenticated or ErrForbidden when identity does not
// meet req. targetUserID is only consulted for RequireSelfOrAdmin.
func (p *AccessPolicy) Check(identity Identity, req Requirement, targetUserID uint) error {
	switch req {
	case RequirePublic:
		return nil
	case RequireAuthenticated:
		if identity.Anonymous() {
			return ErrUnauthenticated
		}
		return nil
	case RequireAdmin:
		if identity.Anonymous() {
			return ErrUnauthenticated
		}
		if identity.Kind != KindAdmin {
			return ErrForbidden
		}
		return nil
	case RequireSelfOrAdmin:
		if identity.Anonymous() {
			return ErrUnauthenticated
		}
		if identity.Kind != KindAdmin && identity.UserID != targetUserID {
			return ErrForbidden
		}
		return nil
	}
	return ErrForbidden
}
