package models

import "time"

// Declared value types for site settings.
const (
	SettingTypeString  = "string"
	SettingTypeNumber  = "number"
	SettingTypeBoolean = "boolean"
	SettingTypeObject  = "object"
	SettingTypeArray   = "array"
)

// SiteSettingModel is one row of the typed key/value settings store.
// Readers coerce Value to the declared Type instead of trusting writers.
type SiteSettingModel struct {
	ID          uint      `json:"id"          gorm:"primaryKey;autoIncrement"`
	Key         string    `json:"key"         gorm:"uniqueIndex;not null"`
	Value       JSONValue `json:"value"       gorm:"type:longtext;not null"`
	Type        string    `json:"type"        gorm:"default:'string'"`
	Description string    `json:"description" gorm:"type:text"`
	IsPublic    bool      `json:"isPublic"    gorm:"default:false"`
	UpdatedAt   time.Time `json:"updatedAt"`
	UpdatedBy   string    `json:"updatedBy"`
}

func (SiteSettingModel) TableName() string { return "site_settings" }
