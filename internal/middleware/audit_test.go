package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nexhost/core/internal/models"
	"github.com/nexhost/core/internal/pkg/response"
)

func setupAuditDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ActivityLogModel{}))
	return db
}

func setupAuditRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	admin := r.Group("/api/admin")
	admin.Use(func(c *gin.Context) {
		c.Set(ContextKeyUserID, "user-1")
		c.Next()
	})
	admin.Use(Audit(db, nil))

	admin.POST("/pages", func(c *gin.Context) {
		StageAudit(c, models.ActionCreate, "page", "42",
			map[string]interface{}{"slug": "home"})
		response.Created(c, gin.H{"id": 42})
	})
	admin.POST("/widgets", func(c *gin.Context) {
		// No staged entry; the middleware derives one from the route.
		response.Created(c, gin.H{"id": 1})
	})
	admin.DELETE("/pages/:id", func(c *gin.Context) {
		response.Forbidden(c)
	})
	admin.GET("/pages", func(c *gin.Context) {
		response.OK(c, gin.H{"ok": 1})
	})

	return r
}

func doRequest(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "audit-test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func countLogs(t *testing.T, db *gorm.DB) int64 {
	var count int64
	require.NoError(t, db.Model(&models.ActivityLogModel{}).Count(&count).Error)
	return count
}

func TestAudit_SuccessfulMutationWritesOneRow(t *testing.T) {
	db := setupAuditDB(t)
	r := setupAuditRouter(db)

	w := doRequest(r, http.MethodPost, "/api/admin/pages")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id":42`)

	var logs []models.ActivityLogModel
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "user-1", logs[0].UserID)
	assert.Equal(t, models.ActionCreate, logs[0].Action)
	assert.Equal(t, "page", logs[0].Resource)
	assert.Equal(t, "42", logs[0].ResourceID)
	assert.Equal(t, "audit-test", logs[0].UserAgent)
	assert.Equal(t, "home", logs[0].Details["slug"])
}

func TestAudit_FallbackEntryFromRoute(t *testing.T) {
	db := setupAuditDB(t)
	r := setupAuditRouter(db)

	w := doRequest(r, http.MethodPost, "/api/admin/widgets")
	require.Equal(t, http.StatusCreated, w.Code)

	var log models.ActivityLogModel
	require.NoError(t, db.First(&log).Error)
	assert.Equal(t, models.ActionCreate, log.Action)
	assert.Equal(t, "widgets", log.Resource)
}

func TestAudit_FailedRequestWritesNoRow(t *testing.T) {
	db := setupAuditDB(t)
	r := setupAuditRouter(db)

	w := doRequest(r, http.MethodDelete, "/api/admin/pages/1")
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Zero(t, countLogs(t, db))
}

func TestAudit_ReadsAreNotLogged(t *testing.T) {
	db := setupAuditDB(t)
	r := setupAuditRouter(db)

	w := doRequest(r, http.MethodGet, "/api/admin/pages")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, countLogs(t, db))
}

func TestAudit_WriteFailureTurnsSuccessInto500(t *testing.T) {
	db := setupAuditDB(t)
	r := setupAuditRouter(db)

	// Break the audit table so the insert fails after the handler ran.
	require.NoError(t, db.Migrator().DropTable(&models.ActivityLogModel{}))

	w := doRequest(r, http.MethodPost, "/api/admin/pages")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	// The handler's 201 body never reaches the client.
	assert.NotContains(t, w.Body.String(), `"id":42`)
	assert.Contains(t, w.Body.String(), "internal server error")
}
