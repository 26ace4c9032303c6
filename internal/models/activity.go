package models

import "time"

// Audit actions recorded for admin mutations.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// ActivityLogModel is an append-only audit record. The application never
// updates or deletes rows, so there is no UpdatedAt.
type ActivityLogModel struct {
	ID         uint                   `json:"id"         gorm:"primaryKey;autoIncrement"`
	UserID     string                 `json:"userId"     gorm:"index"`
	Action     string                 `json:"action"     gorm:"index;not null"`
	Resource   string                 `json:"resource"   gorm:"index;not null"`
	ResourceID string                 `json:"resourceId"`
	Details    map[string]interface{} `json:"details"    gorm:"type:longtext;serializer:json"`
	IPAddress  string                 `json:"ipAddress"  gorm:"column:ip_address"`
	UserAgent  string                 `json:"userAgent"  gorm:"type:text"`
	CreatedAt  time.Time              `json:"createdAt"`
}

func (ActivityLogModel) TableName() string { return "activity_logs" }
