package page

import (
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
	require.NoError(t, db.AutoMigrate(&models.PageModel{}))
	return db
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func TestPageService_Create(t *testing.T) {
	svc := NewService(setupTestDB(t))

	t.Run("defaults to unpublished", func(t *testing.T) {
		p, err := svc.Create(&CreatePageDTO{Title: "About", Slug: "about"}, "u1")
		require.NoError(t, err)
		assert.False(t, p.IsPublished)
		assert.Equal(t, "default", p.LayoutType)
		assert.Equal(t, "u1", p.CreatedBy)
	})

	t.Run("duplicate slug rejected", func(t *testing.T) {
		_, err := svc.Create(&CreatePageDTO{Title: "About 2", Slug: "about"}, "u1")
		assert.ErrorIs(t, err, ErrSlugTaken)
	})
}

func TestPageService_PublishedFiltering(t *testing.T) {
	svc := NewService(setupTestDB(t))

	live, err := svc.Create(&CreatePageDTO{
		Title: "Home", Slug: "home", IsPublished: boolPtr(true),
	}, "u1")
	require.NoError(t, err)
	draft, err := svc.Create(&CreatePageDTO{Title: "Draft", Slug: "draft"}, "u1")
	require.NoError(t, err)

	t.Run("list returns only published", func(t *testing.T) {
		items, err := svc.ListPublished()
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, live.ID, items[0].ID)
	})

	t.Run("unpublished slug is invisible", func(t *testing.T) {
		p, err := svc.GetPublishedBySlug("draft")
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("unpublishing hides a live page", func(t *testing.T) {
		_, err := svc.Update(live.ID, &UpdatePageDTO{IsPublished: boolPtr(false)})
		require.NoError(t, err)
		p, err := svc.GetPublishedBySlug("home")
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("admin list still sees everything", func(t *testing.T) {
		items, err := svc.ListAll()
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	_ = draft
}

func TestPageService_Update(t *testing.T) {
	svc := NewService(setupTestDB(t))

	a, err := svc.Create(&CreatePageDTO{Title: "A", Slug: "a"}, "u1")
	require.NoError(t, err)
	_, err = svc.Create(&CreatePageDTO{Title: "B", Slug: "b"}, "u1")
	require.NoError(t, err)

	t.Run("slug move onto taken slug rejected", func(t *testing.T) {
		_, err := svc.Update(a.ID, &UpdatePageDTO{Slug: strPtr("b")})
		assert.ErrorIs(t, err, ErrSlugTaken)
	})

	t.Run("partial update leaves other fields alone", func(t *testing.T) {
		p, err := svc.Update(a.ID, &UpdatePageDTO{Title: strPtr("A2")})
		require.NoError(t, err)
		assert.Equal(t, "A2", p.Title)
		assert.Equal(t, "a", p.Slug)
	})

	t.Run("unknown id returns nil", func(t *testing.T) {
		p, err := svc.Update(9999, &UpdatePageDTO{Title: strPtr("x")})
		require.NoError(t, err)
		assert.Nil(t, p)
	})
}

func TestPageService_Delete(t *testing.T) {
	svc := NewService(setupTestDB(t))

	p, err := svc.Create(&CreatePageDTO{Title: "Gone", Slug: "gone"}, "u1")
	require.NoError(t, err)

	deleted, err := svc.Delete(p.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.Delete(p.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestRenderSections(t *testing.T) {
	sections := []models.ContentSection{
		{Type: "hero", Content: map[string]interface{}{"heading": "Hi"}},
		{Type: "markdown", Content: map[string]interface{}{"markdown": "**bold** text"}},
	}

	out := renderSections(sections)

	require.Len(t, out, 2)
	assert.Equal(t, sections[0].Content, out[0].Content)
	html, _ := out[1].Content["html"].(string)
	assert.Contains(t, html, "<strong>bold</strong>")
	// Raw source survives alongside the rendered HTML.
	assert.Equal(t, "**bold** text", out[1].Content["markdown"])
	// Input slice is not mutated.
	_, hasHTML := sections[1].Content["html"]
	assert.False(t, hasHTML)
}
