package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nexhost/core/internal/models"
	"github.com/nexhost/core/internal/pkg/jwt"
	"github.com/nexhost/core/internal/pkg/response"
	sessionpkg "github.com/nexhost/core/internal/pkg/session"
)

func setupAuthDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.UserModel{}, &models.UserSession{}))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id, role string) string {
	require.NoError(t, db.Create(&models.UserModel{
		ID: id, Email: id + "@example.com", Role: role,
	}).Error)
	token, _, err := sessionpkg.Issue(db, id, "", "", time.Hour)
	require.NoError(t, err)
	return token
}

func adminRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api", OptionalAuth(db))
	admin := api.Group("/admin", RequireAdmin(db))
	admin.GET("/ping", func(c *gin.Context) {
		response.OK(c, gin.H{"user": CurrentUser(c).ID})
	})
	return r
}

func adminGet(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAdmin(t *testing.T) {
	db := setupAuthDB(t)
	r := adminRouter(db)

	editorToken := seedUser(t, db, "editor-1", models.RoleEditor)
	viewerToken := seedUser(t, db, "viewer-1", models.RoleViewer)
	superToken := seedUser(t, db, "super-1", models.RoleSuperAdmin)

	t.Run("anonymous is 401", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, adminGet(r, "").Code)
	})

	t.Run("garbage token is 401", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, adminGet(r, "not-a-jwt").Code)
	})

	t.Run("viewer is 403", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, adminGet(r, viewerToken).Code)
	})

	t.Run("editor passes", func(t *testing.T) {
		w := adminGet(r, editorToken)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "editor-1")
	})

	t.Run("super admin passes", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, adminGet(r, superToken).Code)
	})

	t.Run("revoked session is 401", func(t *testing.T) {
		require.NoError(t, sessionpkg.Revoke(db, "editor-1", sessionIDOf(t, editorToken)))
		assert.Equal(t, http.StatusUnauthorized, adminGet(r, editorToken).Code)
	})
}

func sessionIDOf(t *testing.T, token string) string {
	claims, err := jwt.Parse(token)
	require.NoError(t, err)
	return claims.SessionID
}
