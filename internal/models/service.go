package models

// Billing cycle values for service plans.
const (
	BillingMonthly = "monthly"
	BillingYearly  = "yearly"
	BillingOneTime = "one-time"
)

// ServiceModel is a sellable service category (VPS, hosting, domains, ...).
type ServiceModel struct {
	Base
	Name        string `json:"name"        gorm:"not null"`
	Slug        string `json:"slug"        gorm:"uniqueIndex;not null"`
	Description string `json:"description" gorm:"type:text"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	IsActive    bool   `json:"isActive"    gorm:"default:true"`
	SortOrder   int    `json:"sortOrder"   gorm:"default:0"`
}

func (ServiceModel) TableName() string { return "services" }

// ServicePlanModel is a priced tier of a service. Prices are carried as
// decimal strings end to end to avoid float rounding.
type ServicePlanModel struct {
	Base
	ServiceID      uint                   `json:"serviceId"      gorm:"index;not null"`
	Name           string                 `json:"name"           gorm:"not null"`
	Description    string                 `json:"description"    gorm:"type:text"`
	Price          *string                `json:"price"          gorm:"type:decimal(10,2)"`
	OriginalPrice  *string                `json:"originalPrice"  gorm:"type:decimal(10,2)"`
	Currency       string                 `json:"currency"       gorm:"default:'INR'"`
	BillingCycle   string                 `json:"billingCycle"   gorm:"default:'monthly'"`
	Features       StringArray            `json:"features"       gorm:"type:longtext;not null"`
	Specifications map[string]interface{} `json:"specifications" gorm:"type:longtext;serializer:json"`
	IsPopular      bool                   `json:"isPopular"      gorm:"default:false"`
	IsActive       bool                   `json:"isActive"       gorm:"default:true"`
	SortOrder      int                    `json:"sortOrder"      gorm:"default:0"`
	Ribbon         string                 `json:"ribbon"`
}

func (ServicePlanModel) TableName() string { return "service_plans" }
