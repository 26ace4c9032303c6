package models

// NavigationItemModel is a site menu entry. Either Path (internal) or
// ExternalURL is set, not both. ParentID builds a two-level tree.
type NavigationItemModel struct {
	Base
	Label       string `json:"label"       gorm:"not null"`
	Path        string `json:"path"`
	ExternalURL string `json:"externalUrl" gorm:"column:external_url"`
	ParentID    *uint  `json:"parentId"    gorm:"index"`
	SortOrder   int    `json:"sortOrder"   gorm:"default:0"`
	IsVisible   bool   `json:"isVisible"   gorm:"default:true"`
	Icon        string `json:"icon"`
}

func (NavigationItemModel) TableName() string { return "navigation_items" }
