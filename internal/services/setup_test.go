package services

import (
	"context"
	"testing"

	"github.com/franciscosanchezn/gin-phrasebook-api/internal/database"
	"github.com/franciscosanchezn/gin-phrasebook-api/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func ptr(s string) *string {
	return &s
}

func createUser(t *testing.T, db *gorm.DB, email, password string) *models.User {
	user, err := NewUserService(db).CreateUser(context.Background(), UserInput{
		Email:    ptr(email),
		Password: ptr(password),
		Name:     ptr("Test User"),
	})
	require.NoError(t, err)
	return user
}

func requireServiceError(t *testing.T, err error, status int, message string) {
	t.Helper()
	require.Error(t, err)
	svcErr, ok := err.(*ServiceError)
	require.True(t, ok, "expected *ServiceError, got %T: %v", err, err)
	require.Equal(t, status, svcErr.Status)
	require.Equal(t, message, svcErr.Message)
}
