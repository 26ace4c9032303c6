package media

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nexhost/core/internal/models"
	"github.com/nexhost/core/internal/pkg/storage"
)

func setupService(t *testing.T, maxBytes int64) (*Service, string) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.MediaFileModel{}))

	dir := t.TempDir()
	provider, err := storage.NewLocal(dir, "/uploads")
	require.NoError(t, err)

	return NewService(db, provider, maxBytes), dir
}

func TestMediaUpload(t *testing.T) {
	svc, dir := setupService(t, 1<<20)
	ctx := context.Background()

	t.Run("stores payload and row", func(t *testing.T) {
		m, err := svc.Upload(ctx, "logo.png", "image/png", []byte("png-bytes"),
			"Company logo", "", []string{"brand"}, "u1")
		require.NoError(t, err)
		assert.NotZero(t, m.ID)
		assert.Equal(t, "logo.png", m.OriginalName)
		assert.NotEqual(t, "logo.png", m.Filename)
		assert.Equal(t, "image/png", m.MimeType)
		assert.Equal(t, int64(9), m.Size)
		assert.Equal(t, "/uploads/"+m.Filename, m.URL)

		data, err := os.ReadFile(filepath.Join(dir, m.Filename))
		require.NoError(t, err)
		assert.Equal(t, "png-bytes", string(data))
	})

	t.Run("content type parameters are stripped", func(t *testing.T) {
		m, err := svc.Upload(ctx, "pic.jpg", "image/jpeg; charset=binary",
			[]byte("jpg"), "", "", nil, "u1")
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", m.MimeType)
	})

	t.Run("extension follows the mime type, not the client name", func(t *testing.T) {
		m, err := svc.Upload(ctx, "payload.html", "image/png", []byte("png"),
			"", "", nil, "u1")
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(m.Filename, ".png"), m.Filename)
		assert.Equal(t, "payload.html", m.OriginalName)
	})

	t.Run("disallowed mime rejected without a row", func(t *testing.T) {
		before := countRows(t, svc.db)
		_, err := svc.Upload(ctx, "run.exe", "application/x-msdownload",
			[]byte("MZ"), "", "", nil, "u1")
		assert.ErrorIs(t, err, ErrUnsupportedType)
		assert.Equal(t, before, countRows(t, svc.db))
	})

	t.Run("oversize payload rejected without a row", func(t *testing.T) {
		svc, _ := setupService(t, 4)
		_, err := svc.Upload(ctx, "big.png", "image/png",
			[]byte("12345"), "", "", nil, "u1")
		assert.ErrorIs(t, err, ErrTooLarge)
		assert.Zero(t, countRows(t, svc.db))
	})
}

func TestMediaUpdateAndDelete(t *testing.T) {
	svc, dir := setupService(t, 1<<20)
	ctx := context.Background()

	m, err := svc.Upload(ctx, "banner.webp", "image/webp", []byte("webp"),
		"", "", nil, "u1")
	require.NoError(t, err)

	t.Run("metadata update", func(t *testing.T) {
		alt := "Homepage banner"
		updated, err := svc.Update(m.ID, &UpdateMediaDTO{
			Alt:  &alt,
			Tags: []string{"home", "banner"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Homepage banner", updated.Alt)
		assert.Equal(t, models.StringArray{"home", "banner"}, updated.Tags)
	})

	t.Run("delete removes row and blob", func(t *testing.T) {
		deleted, err := svc.Delete(ctx, m.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		_, err = os.Stat(filepath.Join(dir, m.Filename))
		assert.True(t, os.IsNotExist(err))

		deleted, err = svc.Delete(ctx, m.ID)
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestMediaListFilter(t *testing.T) {
	svc, _ := setupService(t, 1<<20)
	ctx := context.Background()

	_, err := svc.Upload(ctx, "a.png", "image/png", []byte("a"), "", "", nil, "u1")
	require.NoError(t, err)
	_, err = svc.Upload(ctx, "b.mp4", "video/mp4", []byte("b"), "", "", nil, "u1")
	require.NoError(t, err)

	images, err := svc.List("image/")
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, "a.png", images[0].OriginalName)

	all, err := svc.List("")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMediaUploadHandler_SizeGate(t *testing.T) {
	svc, _ := setupService(t, 4)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	admin := r.Group("/api/admin")
	NewHandler(svc).RegisterAdminRoutes(admin)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "big.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("12345"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/media/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Zero(t, countRows(t, svc.db))
}

func countRows(t *testing.T, db *gorm.DB) int64 {
	var count int64
	require.NoError(t, db.Model(&models.MediaFileModel{}).Count(&count).Error)
	return count
}
