package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EmailStatus string

const (
	EmailSent   EmailStatus = "sent"
	EmailFailed EmailStatus = "failed"
)

// EmailLog records a single delivery attempt made by a notification task.
type EmailLog struct {
	ID        uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	TaskType  string      `json:"task_type" gorm:"size:64;not null;index"`
	TaskID    string      `json:"task_id,omitempty" gorm:"size:64;index"`
	BookingID *uuid.UUID  `json:"booking_id,omitempty" gorm:"type:uuid;index"`
	Recipient string      `json:"recipient" gorm:"size:254;not null"`
	Subject   string      `json:"subject" gorm:"size:255"`
	Status    EmailStatus `json:"status" gorm:"size:10;not null"`
	Error     string      `json:"error,omitempty" gorm:"type:text"`
	Attempt   int         `json:"attempt" gorm:"not null;default:1"`
	CreatedAt time.Time   `json:"created_at" gorm:"index"`
}

func (e *EmailLog) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
