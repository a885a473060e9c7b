package model

import (
	"time"

	"gorm.io/gorm"
)

// Tenant represents a client organization served by the shared deployment.
// The Identifier doubles as the routing key (X-Client-ID header) and the
// name of the tenant's isolated storage partition.
type Tenant struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	Identifier string `json:"identifier" gorm:"type:varchar(100);uniqueIndex;not null"`
	Name       string `json:"name" gorm:"type:varchar(100);not null"`
	Website    string `json:"website,omitempty" gorm:"type:varchar(200)"`
	Industry   string `json:"industry,omitempty" gorm:"type:varchar(100)"`
	OwnerID    uint   `json:"owner_id" gorm:"index"`

	SubscriptionID *uint         `json:"-"`
	Subscription   *Subscription `json:"subscription,omitempty" gorm:"foreignKey:SubscriptionID"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// Plan is a pricing tier defining per-tenant resource limits.
type Plan struct {
	ID       uint    `json:"id" gorm:"primaryKey"`
	Name     string  `json:"name" gorm:"type:varchar(100);not null"`
	Price    float64 `json:"price" gorm:"type:numeric(10,2)"`
	MaxFAQs  int     `json:"max_faqs" gorm:"default:10"`
	MaxLeads int     `json:"max_leads" gorm:"default:100"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
