package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/flowtrack/flowtrack-api/internal/models"
	"github.com/flowtrack/flowtrack-api/internal/policy"
	"github.com/flowtrack/flowtrack-api/internal/repository"
	"github.com/flowtrack/flowtrack-api/internal/security"
)

// UserService handles user registration and directory queries.
type UserService struct {
	users repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// RegisterInput represents the information needed to create a user.
type RegisterInput struct {
	Email    string
	FullName string
	Password string
	Role     string
}

// Register creates a user on behalf of caller.
//
// Anonymous callers always get an EMPLOYEE account whatever role they ask for.
// Authenticated callers must be allowed to create users and may pick any role.
func (s *UserService) Register(ctx context.Context, input RegisterInput, caller Caller) (*models.User, error) {
	if caller.IsAnonymous() {
		return s.create(ctx, input, models.RoleEmployee)
	}

	user, _ := caller.User()
	if !policy.Allows(user.Role, policy.ActionCreateUser) {
		return nil, ErrPermissionDenied
	}

	role := models.RoleEmployee
	if strings.TrimSpace(input.Role) != "" {
		parsed, err := models.ParseRole(input.Role)
		if err != nil {
			return nil, ErrInvalidRole
		}
		role = parsed
	}

	return s.create(ctx, input, role)
}

// Provision creates a user with the requested role without a caller check.
// It backs operator tooling, where the first ADMIN has to come from.
func (s *UserService) Provision(ctx context.Context, input RegisterInput) (*models.User, error) {
	role, err := models.ParseRole(input.Role)
	if err != nil {
		return nil, ErrInvalidRole
	}
	return s.create(ctx, input, role)
}

func (s *UserService) create(ctx context.Context, input RegisterInput, role models.Role) (*models.User, error) {
	email := models.NormalizeEmail(input.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		return nil, ErrFullNameRequired
	}

	hashed, err := security.HashPassword(input.Password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooLong) || errors.Is(err, security.ErrPasswordEmpty) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	user := &models.User{
		Email:          email,
		FullName:       fullName,
		Role:           role,
		HashedPassword: hashed,
		IsActive:       true,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// ListEmployees returns every EMPLOYEE user.
func (s *UserService) ListEmployees(ctx context.Context, caller *models.User) ([]models.User, error) {
	if !policy.Allows(caller.Role, policy.ActionListEmployeeUsers) {
		return nil, ErrPermissionDenied
	}

	users, err := s.users.ListByRole(ctx, models.RoleEmployee)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return users, nil
}

// ListAll returns every user.
func (s *UserService) ListAll(ctx context.Context, caller *models.User) ([]models.User, error) {
	if !policy.Allows(caller.Role, policy.ActionListAllUsers) {
		return nil, ErrPermissionDenied
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
