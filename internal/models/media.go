package models

import "time"

// MediaFileModel records an uploaded asset and where it lives.
type MediaFileModel struct {
	ID           uint        `json:"id"           gorm:"primaryKey;autoIncrement"`
	Filename     string      `json:"filename"     gorm:"not null"`
	OriginalName string      `json:"originalName" gorm:"not null"`
	MimeType     string      `json:"mimeType"     gorm:"not null"`
	Size         int64       `json:"size"         gorm:"not null"`
	Path         string      `json:"path"         gorm:"not null"`
	URL          string      `json:"url"          gorm:"not null"`
	Alt          string      `json:"alt"`
	Caption      string      `json:"caption"      gorm:"type:text"`
	Tags         StringArray `json:"tags"         gorm:"type:longtext"`
	UploadedBy   string      `json:"uploadedBy"   gorm:"index"`
	CreatedAt    time.Time   `json:"createdAt"`
}

func (MediaFileModel) TableName() string { return "media_files" }
