package models

// ContentSection is one typed block of a page's structured content.
type ContentSection struct {
	Type    string                 `json:"type"`
	Content map[string]interface{} `json:"content"`
}

// PageModel is a database-driven site page.
type PageModel struct {
	Base
	Title           string           `json:"title"           gorm:"not null"`
	Slug            string           `json:"slug"            gorm:"uniqueIndex;not null"`
	Content         []ContentSection `json:"content"         gorm:"type:longtext;serializer:json"`
	MetaTitle       string           `json:"metaTitle"`
	MetaDescription string           `json:"metaDescription" gorm:"type:text"`
	MetaKeywords    string           `json:"metaKeywords"`
	OGImage         string           `json:"ogImage"         gorm:"column:og_image"`
	IsPublished     bool             `json:"isPublished"     gorm:"default:false"`
	LayoutType      string           `json:"layoutType"      gorm:"default:'default'"` // default, cards, pricing, grid
	SortOrder       int              `json:"sortOrder"       gorm:"default:0"`
	CreatedBy       string           `json:"createdBy"       gorm:"index"`
}

func (PageModel) TableName() string { return "pages" }
