package handlers

const (
	bearerPrefix = "Bearer "

	ErrInvalidJSON         = "Invalid request body"
	ErrInvalidID           = "Invalid ID"
	ErrUnauthorized        = "Unauthorized"
	ErrForbidden           = "Forbidden"
	ErrTooManyRequests     = "Too many attempts. Please try again later."
	ErrInternalServerError = "Internal server error"
	ErrValidationFailed    = "Validation failed"
)
