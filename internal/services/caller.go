package services

import "github.com/flowtrack/flowtrack-api/internal/models"

// Caller identifies who issued a request. The zero value is anonymous.
type Caller struct {
	user *models.User
}

// Anonymous returns a caller with no identity.
func Anonymous() Caller {
	return Caller{}
}

// AuthenticatedAs returns a caller acting as user.
func AuthenticatedAs(user *models.User) Caller {
	return Caller{user: user}
}

// User returns the authenticated user, if any.
func (c Caller) User() (*models.User, bool) {
	return c.user, c.user != nil
}

// IsAnonymous reports whether the caller presented no credentials.
func (c Caller) IsAnonymous() bool {
	return c.user == nil
}
