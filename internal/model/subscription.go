package model

import (
	"time"
)

// Subscription binds a tenant to a plan with activity and expiry state.
// The plan reference is weak: a subscription whose plan was deleted keeps
// existing with no limits attached.
type Subscription struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	PlanID           *uint      `json:"-"`
	Plan             *Plan      `json:"plan,omitempty" gorm:"foreignKey:PlanID;constraint:OnDelete:SET NULL"`
	Active           bool       `json:"active" gorm:"default:true"`
	ExpiresOn        *time.Time `json:"expires_on,omitempty" gorm:"type:date"`
	PaymentGatewayID string     `json:"payment_gateway_id,omitempty" gorm:"type:varchar(100)"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ExpireIfDue flips an active subscription to inactive when its expiry date
// has passed. It reports whether the flag changed so the caller knows to
// persist. Calling it twice is safe.
func (s *Subscription) ExpireIfDue(now time.Time) bool {
	if s == nil || !s.Active || s.ExpiresOn == nil {
		return false
	}
	today := now.Truncate(24 * time.Hour)
	if s.ExpiresOn.Before(today) {
		s.Active = false
		return true
	}
	return false
}
