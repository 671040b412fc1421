package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/flowtrack/flowtrack-api/internal/models"
	"github.com/flowtrack/flowtrack-api/internal/repository"
)

func newTestStore(t *testing.T) (repository.Store, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Task{}))
	t.Cleanup(func() { sqlDB.Close() })

	return repository.NewStore(db), db
}

func seedUser(t *testing.T, store repository.Store, email string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		Email:          email,
		FullName:       string(role) + " user",
		Role:           role,
		HashedPassword: "not-a-real-hash",
		IsActive:       true,
	}
	require.NoError(t, store.Users().Create(context.Background(), user))
	return user
}

type fakeDrafter struct {
	drafts []TaskDraft
	err    error
	calls  int
}

func (f *fakeDrafter) DraftTasks(ctx context.Context, text string) ([]TaskDraft, error) {
	f.calls++
	return f.drafts, f.err
}
