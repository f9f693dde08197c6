package code

var codeMessageMap = map[int]string{
	// common
	ErrSuccess:         "Success",
	ErrUnknown:         "Internal server error",
	ErrBind:            "Invalid request body",
	ErrValidation:      "Request validation failed",
	ErrTokenInvalid:    "Access denied. No valid token provided.",
	ErrTooManyRequests: "Too many requests",
	ErrForbidden:       "Access denied. Admin only.",

	// users
	ErrUserNotFound:          "User not found",
	ErrUserAlreadyExist:      "User already exists",
	ErrUserPasswordIncorrect: "Invalid credentials",
	ErrSelfDeleteForbidden:   "Cannot delete your own account",

	// sensor
	ErrInvalidStatus:     "Invalid status. Must be FIRE or SAFE",
	ErrMissingLocation:   "Latitude and longitude are required",
	ErrFireEventNotFound: "Fire event not found",
	ErrInvalidLocation:   "Latitude must be within [-90, 90] and longitude within [-180, 180]",

	// database
	ErrDatabase:       "Server error",
	ErrRecordNotFound: "Record not found",
}

var codeStatusMap = map[int]int{
	// common
	ErrSuccess:         StatusOK,
	ErrUnknown:         StatusInternalServerError,
	ErrBind:            StatusBadRequest,
	ErrValidation:      StatusBadRequest,
	ErrTokenInvalid:    StatusUnauthorized,
	ErrTooManyRequests: StatusTooManyRequests,
	ErrForbidden:       StatusForbidden,

	// users
	ErrUserNotFound:          StatusNotFound,
	ErrUserAlreadyExist:      StatusConflict,
	ErrUserPasswordIncorrect: StatusUnauthorized,
	ErrSelfDeleteForbidden:   StatusBadRequest,

	// sensor
	ErrInvalidStatus:     StatusBadRequest,
	ErrMissingLocation:   StatusBadRequest,
	ErrFireEventNotFound: StatusNotFound,
	ErrInvalidLocation:   StatusBadRequest,

	// database
	ErrDatabase:       StatusInternalServerError,
	ErrRecordNotFound: StatusNotFound,
}

// GetMessage returns the message for a business code
func GetMessage(code int) string {
	if msg, ok := codeMessageMap[code]; ok {
		return msg
	}
	return "Unknown error"
}

// GetStatus returns the HTTP status for a business code
func GetStatus(code int) int {
	if status, ok := codeStatusMap[code]; ok {
		return status
	}
	return StatusInternalServerError
}
