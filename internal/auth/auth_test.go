package auth

import (
	"context"
	"fmt"
	"testing"

	"warbler/internal/database"
	"warbler/internal/models"
	"warbler/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (*Service, repository.UserRepository) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	users := repository.NewUserRepository(db)
	return NewService(users), users
}

func TestSignupHashesPassword(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.Signup("testuser", "test@example.com", "password123", "")
	require.NoError(t, err)

	assert.Equal(t, "testuser", user.Username)
	assert.NotEqual(t, "password123", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))

	// Signup stages the user; nothing is persisted yet.
	assert.Zero(t, user.ID)
}

func TestSignupDefaults(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.Signup("testuser", "test@example.com", "password123", "")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultImageURL, user.ImageURL)
	assert.Equal(t, models.DefaultHeaderImageURL, user.HeaderImageURL)

	custom, err := svc.Signup("other", "other@example.com", "password123", "/custom.png")
	require.NoError(t, err)
	assert.Equal(t, "/custom.png", custom.ImageURL)
}

func TestSignupEmptyPassword(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.Signup("testuser", "test@example.com", "", "")
	require.Error(t, err)
	assert.Nil(t, user)
	assert.True(t, models.IsValidationError(err))
}

func TestAuthenticate(t *testing.T) {
	svc, users := newTestService(t)
	ctx := context.Background()

	staged, err := svc.Signup("testuser", "test@example.com", "password123", "")
	require.NoError(t, err)
	require.NoError(t, users.Create(ctx, staged))

	tests := []struct {
		name     string
		username string
		password string
		wantOK   bool
	}{
		{"valid credentials", "testuser", "password123", true},
		{"wrong password", "testuser", "wrongpassword", false},
		{"unknown username", "nobody", "password123", false},
		{"empty password", "testuser", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, ok := svc.Authenticate(ctx, tt.username, tt.password)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				require.NotNil(t, user)
				assert.Equal(t, "testuser", user.Username)
			} else {
				assert.Nil(t, user)
			}
		})
	}
}
