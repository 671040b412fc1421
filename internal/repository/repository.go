package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/flowtrack/flowtrack-api/internal/models"
	"github.com/flowtrack/flowtrack-api/internal/utils"
)

// Store groups the repositories that share one database handle.
type Store interface {
	// Users returns the user repository bound to this store
	Users() UserRepository

	// Tasks returns the task repository bound to this store
	Tasks() TaskRepository

	// Transaction runs fn inside a database transaction. The transaction commits
	// when fn returns nil and rolls back otherwise.
	Transaction(ctx context.Context, fn func(tx Store) error) error

	// Ping checks that the database is reachable
	Ping(ctx context.Context) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID with its assignee preloaded
	FindByID(ctx context.Context, id uuid.UUID) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// Update persists every column of a task
	Update(ctx context.Context, task *models.Task) error
}

// TaskFilter holds filtering options for listing tasks.
// All set fields are combined with AND.
type TaskFilter struct {
	AssignedToID *uuid.UUID
	Unassigned   bool
	Status       *models.TaskStatus
	Query        string
	Pagination   utils.PaginationParams
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// FindByEmail finds a user by email, ignoring case
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// List lists every user
	List(ctx context.Context) ([]models.User, error)

	// ListByRole lists the users holding role
	ListByRole(ctx context.Context, role models.Role) ([]models.User, error)
}
