package model

import (
	"time"
)

// ChatRule stores one JSON-defined step of a guided conversation flow,
// looked up by its unique node identifier.
type ChatRule struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	NodeID   string `json:"node_id" gorm:"type:varchar(100);uniqueIndex;not null"`
	RuleData string `json:"rule_data" gorm:"type:jsonb;default:'{}'"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
