package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role values for admin access control.
const (
	RoleSuperAdmin = "super_admin"
	RoleEditor     = "editor"
	RoleViewer     = "viewer"
)

// UserModel is an admin-panel account. The ID is the identity-provider
// subject, so rows are upserted on sign-in and never hard-deleted.
type UserModel struct {
	ID              string    `json:"id"              gorm:"type:varchar(64);primaryKey"`
	Email           string    `json:"email"           gorm:"uniqueIndex;not null"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	ProfileImageURL string    `json:"profileImageUrl"`
	Role            string    `json:"role"            gorm:"default:'viewer'"`
	PasswordHash    string    `json:"-"               gorm:"column:password_hash"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (UserModel) TableName() string { return "users" }

// CanManageContent reports whether the role may use admin mutation routes.
func (u *UserModel) CanManageContent() bool {
	return u.Role == RoleSuperAdmin || u.Role == RoleEditor
}

// UserSession tracks signed-in JWT sessions so tokens can be revoked.
type UserSession struct {
	ID        string         `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string         `json:"userId"     gorm:"index;not null"`
	IP        string         `json:"ip"`
	UA        string         `json:"ua"         gorm:"type:text"`
	ExpiresAt time.Time      `json:"expiresAt"  gorm:"index;not null"`
	RevokedAt *time.Time     `json:"revokedAt"  gorm:"index"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-"          gorm:"index"`
}

func (s *UserSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

func (UserSession) TableName() string { return "user_sessions" }
