package model

import (
	"encoding/json"
	"time"
)

// AnalyticsLog is one append-only usage event. The core never updates or
// deletes rows; the dashboard reads them in aggregate.
type AnalyticsLog struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	EventType string `json:"event_type" gorm:"type:varchar(100);index;not null"`
	Details   string `json:"details,omitempty" gorm:"type:jsonb"`

	Timestamp time.Time `json:"timestamp" gorm:"autoCreateTime;index"`
}

// InteractionDetail is the payload recorded for interaction_* events.
type InteractionDetail struct {
	Message string `json:"message"`
}

// DetailMessage extracts the message field from the details payload,
// returning the empty string when the payload has none.
func (l *AnalyticsLog) DetailMessage() string {
	if l.Details == "" {
		return ""
	}
	var d InteractionDetail
	if err := json.Unmarshal([]byte(l.Details), &d); err != nil {
		return ""
	}
	return d.Message
}
