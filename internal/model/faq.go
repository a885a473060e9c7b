package model

import (
	"time"
)

// Response types for FAQ answers.
const (
	ResponseTypeText = "text"
	ResponseTypeRich = "rich"
)

// FAQ is a partition-scoped question with either a plain-text answer or a
// rich structured payload. QuestionVector is derived from the question text
// and is never accepted from a client; it is regenerated on every save of
// the question. A FAQ with a nil vector is excluded from matching.
type FAQ struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Question     string `json:"question" gorm:"type:varchar(255);not null"`
	ResponseType string `json:"response_type" gorm:"type:varchar(10);default:text"`
	Answer       string `json:"answer,omitempty" gorm:"type:text"`
	RichResponse string `json:"rich_response,omitempty" gorm:"type:jsonb"`

	QuestionVector Vector `json:"-" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
