package code

// HTTP status codes.
const (
	// StatusOK - 200: success.
	StatusOK = 200
	// StatusBadRequest - 400: bad request parameters.
	StatusBadRequest = 400
	// StatusUnauthorized - 401: unauthenticated.
	StatusUnauthorized = 401
	// StatusForbidden - 403: forbidden.
	StatusForbidden = 403
	// StatusNotFound - 404: resource not found.
	StatusNotFound = 404
	// StatusConflict - 409: resource already exists.
	StatusConflict = 409
	// StatusTooManyRequests - 429: too many requests.
	StatusTooManyRequests = 429
	// StatusInternalServerError - 500: internal server error.
	StatusInternalServerError = 500
)

// Common codes (100xxx).
const (
	// ErrSuccess - 200: success.
	ErrSuccess int = iota + 100000
	// ErrUnknown - 500: unknown error.
	ErrUnknown
	// ErrBind - 400: request body could not be bound.
	ErrBind
	// ErrValidation - 400: request parameters failed validation.
	ErrValidation
	// ErrTokenInvalid - 401: missing or invalid token.
	ErrTokenInvalid
	// ErrTooManyRequests - 429: rate limit exceeded.
	ErrTooManyRequests
	// ErrForbidden - 403: caller lacks the required role.
	ErrForbidden
)

// User codes (101xxx).
const (
	// ErrUserNotFound - 404: user not found.
	ErrUserNotFound int = iota + 101000
	// ErrUserAlreadyExist - 409: username or email already taken.
	ErrUserAlreadyExist
	// ErrUserPasswordIncorrect - 401: wrong credentials.
	ErrUserPasswordIncorrect
	// ErrSelfDeleteForbidden - 400: an admin cannot delete their own account.
	ErrSelfDeleteForbidden
)

// Sensor codes (102xxx).
const (
	// ErrInvalidStatus - 400: status is neither FIRE nor SAFE.
	ErrInvalidStatus int = iota + 102000
	// ErrMissingLocation - 400: latitude or longitude missing.
	ErrMissingLocation
	// ErrFireEventNotFound - 404: fire event not found.
	ErrFireEventNotFound
	// ErrInvalidLocation - 400: coordinates out of range.
	ErrInvalidLocation
)

// Database codes (105xxx).
const (
	// ErrDatabase - 500: storage failure.
	ErrDatabase int = iota + 105000
	// ErrRecordNotFound - 404: record not found.
	ErrRecordNotFound
)
