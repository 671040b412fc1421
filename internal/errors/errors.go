// Package errors writes the JSON error envelope shared by every endpoint:
//
//	{"code": "...", "message": "...", "details": {...}}
package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeInvalidTransition  = "INVALID_TRANSITION"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// APIError is the body of every error response.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

type kind struct {
	status   int
	fallback string
	// bearer adds the WWW-Authenticate challenge.
	bearer bool
}

var kinds = map[string]kind{
	ErrCodeUnauthorized:       {http.StatusUnauthorized, "Authentication required", true},
	ErrCodeInvalidCredentials: {http.StatusUnauthorized, "Incorrect email or password", true},
	ErrCodeForbidden:          {http.StatusForbidden, "Access denied", false},
	ErrCodeInvalidInput:       {http.StatusBadRequest, "Invalid request", false},
	ErrCodeInvalidTransition:  {http.StatusBadRequest, "Invalid status transition", false},
	ErrCodeNotFound:           {http.StatusNotFound, "Resource not found", false},
	ErrCodeTooManyRequests:    {http.StatusTooManyRequests, "Too many requests", false},
	ErrCodeInternalError:      {http.StatusInternalServerError, "Internal server error", false},
	ErrCodeServiceUnavailable: {http.StatusServiceUnavailable, "Service temporarily unavailable", false},
}

// StatusFor returns the HTTP status used for code, 500 for unknown codes.
func StatusFor(code string) int {
	if k, ok := kinds[code]; ok {
		return k.status
	}
	return http.StatusInternalServerError
}

// Respond aborts the handler chain with an error of the given code.
// An empty message falls back to the code's default text.
func Respond(c *gin.Context, code, message string, details interface{}) {
	k, ok := kinds[code]
	if !ok {
		code, k = ErrCodeInternalError, kinds[ErrCodeInternalError]
	}
	if message == "" {
		message = k.fallback
	}
	if k.bearer {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.AbortWithStatusJSON(k.status, &APIError{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	Respond(c, ErrCodeUnauthorized, message, nil)
}

// InvalidCredentials sends a 401 response for a failed login
func InvalidCredentials(c *gin.Context, message string) {
	Respond(c, ErrCodeInvalidCredentials, message, nil)
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	Respond(c, ErrCodeForbidden, message, nil)
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	Respond(c, ErrCodeNotFound, message, nil)
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	Respond(c, ErrCodeInvalidInput, message, nil)
}

// BadRequestWithDetails sends a 400 response carrying per-field details
func BadRequestWithDetails(c *gin.Context, message string, details interface{}) {
	Respond(c, ErrCodeInvalidInput, message, details)
}

// InvalidTransition sends a 400 response naming the rejected status change
func InvalidTransition(c *gin.Context, message string, details interface{}) {
	Respond(c, ErrCodeInvalidTransition, message, details)
}

// TooManyRequests sends a 429 response
func TooManyRequests(c *gin.Context, message string) {
	Respond(c, ErrCodeTooManyRequests, message, nil)
}

// InternalError sends a 500 response. Causes are logged by the caller, never sent.
func InternalError(c *gin.Context, message string) {
	Respond(c, ErrCodeInternalError, message, nil)
}

// ServiceUnavailable sends a 503 response
func ServiceUnavailable(c *gin.Context, message string) {
	Respond(c, ErrCodeServiceUnavailable, message, nil)
}
