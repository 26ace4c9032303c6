package navigation

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
	require.NoError(t, db.AutoMigrate(&models.NavigationItemModel{}))
	return db
}

func boolPtr(b bool) *bool { return &b }
func uintPtr(v uint) *uint { return &v }

func TestNavigationService_DepthLimit(t *testing.T) {
	svc := NewService(setupTestDB(t))

	root, err := svc.Create(&CreateItemDTO{Label: "Products", Path: "/products"})
	require.NoError(t, err)
	child, err := svc.Create(&CreateItemDTO{
		Label: "VPS", Path: "/products/vps", ParentID: uintPtr(root.ID),
	})
	require.NoError(t, err)

	t.Run("grandchild rejected", func(t *testing.T) {
		_, err := svc.Create(&CreateItemDTO{
			Label: "Nested", Path: "/x", ParentID: uintPtr(child.ID),
		})
		assert.ErrorIs(t, err, ErrTooDeep)
	})

	t.Run("unknown parent rejected", func(t *testing.T) {
		_, err := svc.Create(&CreateItemDTO{
			Label: "Lost", Path: "/y", ParentID: uintPtr(9999),
		})
		assert.ErrorIs(t, err, ErrUnknownParent)
	})

	t.Run("self parent rejected", func(t *testing.T) {
		_, err := svc.Update(root.ID, &UpdateItemDTO{ParentID: uintPtr(root.ID)})
		assert.ErrorIs(t, err, ErrOwnParent)
	})

	t.Run("parent with children cannot become a child", func(t *testing.T) {
		other, err := svc.Create(&CreateItemDTO{Label: "Company", Path: "/company"})
		require.NoError(t, err)
		_, err = svc.Update(root.ID, &UpdateItemDTO{ParentID: uintPtr(other.ID)})
		assert.ErrorIs(t, err, ErrTooDeep)
	})
}

func TestNavigationService_VisibilityAndTree(t *testing.T) {
	svc := NewService(setupTestDB(t))

	root, err := svc.Create(&CreateItemDTO{Label: "Products", Path: "/products", SortOrder: 1})
	require.NoError(t, err)
	_, err = svc.Create(&CreateItemDTO{
		Label: "VPS", Path: "/products/vps", ParentID: uintPtr(root.ID),
	})
	require.NoError(t, err)
	_, err = svc.Create(&CreateItemDTO{
		Label: "Hidden", Path: "/hidden", IsVisible: boolPtr(false), SortOrder: 2,
	})
	require.NoError(t, err)

	t.Run("public list hides invisible items", func(t *testing.T) {
		items, err := svc.ListVisible()
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("tree nests children under roots", func(t *testing.T) {
		items, err := svc.ListVisible()
		require.NoError(t, err)
		tree := buildTree(items)
		require.Len(t, tree, 1)
		assert.Equal(t, "Products", tree[0].Label)
		require.Len(t, tree[0].Children, 1)
		assert.Equal(t, "VPS", tree[0].Children[0].Label)
	})

	t.Run("admin list sees all", func(t *testing.T) {
		items, err := svc.ListAll()
		require.NoError(t, err)
		assert.Len(t, items, 3)
	})
}

func TestNavigationService_DeletePromotesChildren(t *testing.T) {
	svc := NewService(setupTestDB(t))

	root, err := svc.Create(&CreateItemDTO{Label: "Parent", Path: "/p"})
	require.NoError(t, err)
	child, err := svc.Create(&CreateItemDTO{
		Label: "Child", Path: "/p/c", ParentID: uintPtr(root.ID),
	})
	require.NoError(t, err)

	deleted, err := svc.Delete(root.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	promoted, err := svc.GetByID(child.ID)
	require.NoError(t, err)
	require.NotNil(t, promoted)
	assert.Nil(t, promoted.ParentID)

	deleted, err = svc.Delete(root.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}
