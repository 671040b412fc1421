package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowtrack/flowtrack-api/internal/models"
	"github.com/flowtrack/flowtrack-api/internal/security"
)

func TestUserService_RegisterAnonymousForcesEmployee(t *testing.T) {
	store, _ := newTestStore(t)
	service := NewUserService(store.Users())

	user, err := service.Register(context.Background(), RegisterInput{
		Email:    " New.User@Example.com ",
		FullName: "New User",
		Password: "correct horse",
		Role:     "ADMIN",
	}, Anonymous())
	require.NoError(t, err)

	assert.Equal(t, models.RoleEmployee, user.Role)
	assert.Equal(t, "new.user@example.com", user.Email)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "correct horse", user.HashedPassword)
	assert.True(t, security.VerifyPassword("correct horse", user.HashedPassword))
}

func TestUserService_RegisterByPrivilegedCaller(t *testing.T) {
	store, _ := newTestStore(t)
	service := NewUserService(store.Users())
	manager := seedUser(t, store, "manager@example.com", models.RoleManager)

	user, err := service.Register(context.Background(), RegisterInput{
		Email: "lead@example.com", FullName: "Lead", Password: "pw", Role: "manager",
	}, AuthenticatedAs(manager))
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, user.Role)

	user, err = service.Register(context.Background(), RegisterInput{
		Email: "default@example.com", FullName: "Default", Password: "pw",
	}, AuthenticatedAs(manager))
	require.NoError(t, err)
	assert.Equal(t, models.RoleEmployee, user.Role)

	_, err = service.Register(context.Background(), RegisterInput{
		Email: "owner@example.com", FullName: "Owner", Password: "pw", Role: "OWNER",
	}, AuthenticatedAs(manager))
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestUserService_RegisterDeniedForEmployee(t *testing.T) {
	store, _ := newTestStore(t)
	service := NewUserService(store.Users())
	employee := seedUser(t, store, "employee@example.com", models.RoleEmployee)

	_, err := service.Register(context.Background(), RegisterInput{
		Email: "friend@example.com", FullName: "Friend", Password: "pw",
	}, AuthenticatedAs(employee))
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestUserService_RegisterDuplicateEmail(t *testing.T) {
	store, _ := newTestStore(t)
	service := NewUserService(store.Users())
	seedUser(t, store, "taken@example.com", models.RoleEmployee)

	_, err := service.Register(context.Background(), RegisterInput{
		Email: "TAKEN@example.com", FullName: "Again", Password: "pw",
	}, Anonymous())
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserService_RegisterRejectsOverlongPassword(t *testing.T) {
	store, _ := newTestStore(t)
	service := NewUserService(store.Users())

	_, err := service.Register(context.Background(), RegisterInput{
		Email: "long@example.com", FullName: "Long", Password: strings.Repeat("a", 73),
	}, Anonymous())
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	_, err = store.Users().FindByEmail(context.Background(), "long@example.com")
	assert.Error(t, err)

	_, err = service.Register(context.Background(), RegisterInput{
		Email: "edge@example.com", FullName: "Edge", Password: strings.Repeat("a", 72),
	}, Anonymous())
	assert.NoError(t, err)
}

func TestUserService_RegisterRequiresFields(t *testing.T) {
	store, _ := newTestStore(t)
	service := NewUserService(store.Users())

	_, err := service.Register(context.Background(), RegisterInput{FullName: "x", Password: "pw"}, Anonymous())
	assert.ErrorIs(t, err, ErrEmailRequired)

	_, err = service.Register(context.Background(), RegisterInput{Email: "a@example.com", FullName: " ", Password: "pw"}, Anonymous())
	assert.ErrorIs(t, err, ErrFullNameRequired)
}

func TestUserService_Provision(t *testing.T) {
	store, _ := newTestStore(t)
	service := NewUserService(store.Users())

	admin, err := service.Provision(context.Background(), RegisterInput{
		Email: "root@example.com", FullName: "Root", Password: "pw", Role: "ADMIN",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	_, err = service.Provision(context.Background(), RegisterInput{
		Email: "x@example.com", FullName: "X", Password: "pw",
	})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestUserService_Listing(t *testing.T) {
	store, _ := newTestStore(t)
	service := NewUserService(store.Users())
	admin := seedUser(t, store, "admin@example.com", models.RoleAdmin)
	manager := seedUser(t, store, "manager@example.com", models.RoleManager)
	employee := seedUser(t, store, "employee@example.com", models.RoleEmployee)
	ctx := context.Background()

	employees, err := service.ListEmployees(ctx, manager)
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, employee.ID, employees[0].ID)

	_, err = service.ListEmployees(ctx, employee)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	all, err := service.ListAll(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = service.ListAll(ctx, manager)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}
