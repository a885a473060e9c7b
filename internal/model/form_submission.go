package model

import (
	"time"
)

// FormSubmission is a lead captured through the widget's contact form.
// Submissions count against the tenant plan's lead limit.
type FormSubmission struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	Name    string `json:"name" gorm:"type:varchar(100);not null"`
	Email   string `json:"email" gorm:"type:varchar(254);not null"`
	Phone   string `json:"phone,omitempty" gorm:"type:varchar(15)"`
	Message string `json:"message" gorm:"type:text;not null"`

	SubmittedAt time.Time `json:"submitted_at" gorm:"autoCreateTime"`
}
