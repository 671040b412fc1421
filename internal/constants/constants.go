package constants

import "time"

// Context keys
const (
	ContextKeyUserID    = "user_id"
	ContextKeyUser      = "current_user"
	ContextKeyRequestID = "request_id"
)

// Pagination
const (
	MinPage         = 1
	MinPageSize     = 1
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// Credentials
const (
	// MaxPasswordBytes is the bcrypt input limit; longer passwords are rejected, never truncated.
	MaxPasswordBytes = 72
	TokenType        = "bearer"

	DefaultTokenTTL = 60 * time.Minute
)

// AI drafts
const (
	MaxAIGeneratedTasks = 20
)
