package services

import "errors"

var (
	ErrInvalidStatus       = errors.New("invalid status")
	ErrMissingLocation     = errors.New("latitude and longitude are required")
	ErrInvalidLocation     = errors.New("coordinates out of range")
	ErrFireEventNotFound   = errors.New("fire event not found")
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrForbidden           = errors.New("forbidden")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserAlreadyExists   = errors.New("user already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRole         = errors.New("invalid role")
	ErrEmptyUserField      = errors.New("username and email cannot be empty")
	ErrPasswordTooShort    = errors.New("password must be at least 6 characters")
	ErrSelfDeleteForbidden = errors.New("cannot delete your own account")
	ErrStorage             = errors.New("storage failure")
)
