package auth

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/entities"
)

const testPassword = "correct-horse-battery"

func init() {
	gin.SetMode(gin.TestMode)
}

func testAuthConfig(mode config.AuthMode) config.Auth {
	return config.Auth{
		Mode:             mode,
		SessionLifetime:  time.Hour,
		TokenExpiry:      24 * time.Hour,
		BcryptCost:       4,
		SecureCookies:    false,
		MaxLoginAttempts: 3,
		RateLimitWindow:  time.Minute,
		LockoutDuration:  time.Minute,
	}
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "auth.db") + "?_foreign_keys=on&_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.User{}))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func setupService(t *testing.T, mode config.AuthMode) (*Service, *gorm.DB) {
	t.Helper()
	db := setupDB(t)
	return NewService(db, testAuthConfig(mode)), db
}

func createUser(t *testing.T, svc *Service, username string, role entities.UserRole) *entities.User {
	t.Helper()
	user, err := svc.CreateUser(username, username+"@example.com", testPassword, role)
	require.NoError(t, err)
	return user
}
