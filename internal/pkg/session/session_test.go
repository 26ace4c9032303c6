package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nexhost/core/internal/models"
	jwtpkg "github.com/nexhost/core/internal/pkg/jwt"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.UserSession{}))
	return db
}

func TestIssueAndValidate(t *testing.T) {
	db := setupTestDB(t)

	token, s, err := Issue(db, "user-1", "10.0.0.1", "test-agent", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, s.ID)

	claims, err := jwtpkg.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, s.ID, claims.SessionID)

	active, err := IsActive(db, "user-1", s.ID)
	require.NoError(t, err)
	assert.True(t, active)
}

func TestIsActive_Misses(t *testing.T) {
	db := setupTestDB(t)

	_, s, err := Issue(db, "user-1", "", "", time.Hour)
	require.NoError(t, err)

	t.Run("empty session id", func(t *testing.T) {
		active, err := IsActive(db, "user-1", "")
		require.NoError(t, err)
		assert.False(t, active)
	})

	t.Run("wrong user", func(t *testing.T) {
		active, err := IsActive(db, "user-2", s.ID)
		require.NoError(t, err)
		assert.False(t, active)
	})

	t.Run("expired session", func(t *testing.T) {
		_, expired, err := Issue(db, "user-3", "", "", time.Nanosecond)
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)
		active, err := IsActive(db, "user-3", expired.ID)
		require.NoError(t, err)
		assert.False(t, active)
	})
}

func TestRevoke(t *testing.T) {
	db := setupTestDB(t)

	_, s, err := Issue(db, "user-1", "", "", time.Hour)
	require.NoError(t, err)

	require.NoError(t, Revoke(db, "user-1", s.ID))

	active, err := IsActive(db, "user-1", s.ID)
	require.NoError(t, err)
	assert.False(t, active)

	// Second revoke finds nothing.
	assert.ErrorIs(t, Revoke(db, "user-1", s.ID), gorm.ErrRecordNotFound)
}
