package setting

import (
	"encoding/json"
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
	require.NoError(t, db.AutoMigrate(&models.SiteSettingModel{}))
	return db
}

func boolPtr(b bool) *bool { return &b }

func TestCoerceValue(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		typ  string
		want interface{}
	}{
		{"string as string", `"hello"`, models.SettingTypeString, "hello"},
		{"number to string", `42`, models.SettingTypeString, "42"},
		{"bool to string", `true`, models.SettingTypeString, "true"},
		{"number as number", `3.5`, models.SettingTypeNumber, 3.5},
		{"numeric string to number", `"19.99"`, models.SettingTypeNumber, 19.99},
		{"bool as bool", `false`, models.SettingTypeBoolean, false},
		{"bool string to bool", `"true"`, models.SettingTypeBoolean, true},
		{"object stays decoded", `{"a":1}`, models.SettingTypeObject, map[string]interface{}{"a": float64(1)}},
		{"array stays decoded", `[1,2]`, models.SettingTypeArray, []interface{}{float64(1), float64(2)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CoerceValue(models.JSONValue(tc.raw), tc.typ)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("empty value is nil", func(t *testing.T) {
		assert.Nil(t, CoerceValue(nil, models.SettingTypeString))
	})
}

func TestSettingService_Upsert(t *testing.T) {
	svc := NewService(setupTestDB(t))

	t.Run("create defaults to private string", func(t *testing.T) {
		item, err := svc.Upsert("site_title", &UpsertSettingDTO{
			Value: json.RawMessage(`"NexHost"`),
		}, "u1")
		require.NoError(t, err)
		assert.Equal(t, models.SettingTypeString, item.Type)
		assert.False(t, item.IsPublic)
		assert.Equal(t, "u1", item.UpdatedBy)
	})

	t.Run("second upsert overwrites in place", func(t *testing.T) {
		item, err := svc.Upsert("site_title", &UpsertSettingDTO{
			Value:    json.RawMessage(`"NexHost Cloud"`),
			IsPublic: boolPtr(true),
		}, "u2")
		require.NoError(t, err)
		assert.Equal(t, "NexHost Cloud", CoerceValue(item.Value, item.Type))
		assert.True(t, item.IsPublic)
		assert.Equal(t, "u2", item.UpdatedBy)

		items, err := svc.ListAll()
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})
}

func TestSettingService_PublicMap(t *testing.T) {
	svc := NewService(setupTestDB(t))

	_, err := svc.Upsert("site_title", &UpsertSettingDTO{
		Value: json.RawMessage(`"NexHost"`), IsPublic: boolPtr(true),
	}, "u1")
	require.NoError(t, err)
	_, err = svc.Upsert("support_phone", &UpsertSettingDTO{
		Value: json.RawMessage(`"+91 98765 43210"`), IsPublic: boolPtr(true),
	}, "u1")
	require.NoError(t, err)
	_, err = svc.Upsert("smtp_password", &UpsertSettingDTO{
		Value: json.RawMessage(`"secret"`),
	}, "u1")
	require.NoError(t, err)
	_, err = svc.Upsert("max_upload", &UpsertSettingDTO{
		Value: json.RawMessage(`10`), Type: models.SettingTypeNumber, IsPublic: boolPtr(true),
	}, "u1")
	require.NoError(t, err)

	out, err := svc.PublicMap()
	require.NoError(t, err)

	assert.Len(t, out, 3)
	assert.Equal(t, "NexHost", out["site_title"])
	assert.Equal(t, float64(10), out["max_upload"])
	_, leaked := out["smtp_password"]
	assert.False(t, leaked)
}

func TestSettingService_Delete(t *testing.T) {
	svc := NewService(setupTestDB(t))

	_, err := svc.Upsert("temp", &UpsertSettingDTO{Value: json.RawMessage(`1`)}, "u1")
	require.NoError(t, err)

	deleted, err := svc.Delete("temp")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.Delete("temp")
	require.NoError(t, err)
	assert.False(t, deleted)
}
