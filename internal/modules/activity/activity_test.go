package activity

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nexhost/core/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ActivityLogModel{}))
	return db
}

func TestActivityService_List(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	for i := 0; i < 60; i++ {
		require.NoError(t, db.Create(&models.ActivityLogModel{
			UserID:     "u1",
			Action:     models.ActionCreate,
			Resource:   "page",
			ResourceID: fmt.Sprint(i),
		}).Error)
	}
	require.NoError(t, db.Create(&models.ActivityLogModel{
		UserID: "u2", Action: models.ActionDelete, Resource: "service",
	}).Error)

	t.Run("default limit caps the result", func(t *testing.T) {
		items, err := svc.List(Query{})
		require.NoError(t, err)
		assert.Len(t, items, defaultLimit)
	})

	t.Run("newest first", func(t *testing.T) {
		items, err := svc.List(Query{Limit: 2})
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "service", items[0].Resource)
	})

	t.Run("resource and action filters", func(t *testing.T) {
		items, err := svc.List(Query{Resource: "service", Action: models.ActionDelete})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "u2", items[0].UserID)
	})

	t.Run("absurd limit falls back to default", func(t *testing.T) {
		items, err := svc.List(Query{Limit: 100000})
		require.NoError(t, err)
		assert.Len(t, items, defaultLimit)
	})
}
