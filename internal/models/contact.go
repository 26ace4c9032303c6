package models

// Contact submission priorities.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Contact submission statuses.
const (
	ContactStatusNew        = "new"
	ContactStatusInProgress = "in_progress"
	ContactStatusResolved   = "resolved"
	ContactStatusClosed     = "closed"
)

// ContactSubmissionModel is an inbound contact-form message.
type ContactSubmissionModel struct {
	Base
	Name            string `json:"name"            gorm:"not null"`
	Email           string `json:"email"           gorm:"not null"`
	Phone           string `json:"phone"`
	Subject         string `json:"subject"`
	Message         string `json:"message"         gorm:"type:text;not null"`
	ServiceInterest string `json:"serviceInterest"`
	Priority        string `json:"priority"        gorm:"default:'normal'"`
	Status          string `json:"status"          gorm:"index;default:'new'"`
	IPAddress       string `json:"ipAddress"       gorm:"column:ip_address"`
}

func (ContactSubmissionModel) TableName() string { return "contact_submissions" }
