package models

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusOpen   JobStatus = "open"
	JobStatusClosed JobStatus = "closed"
)

type Job struct {
	ID          uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name        string            `gorm:"type:text;not null" json:"name"`
	Description string            `gorm:"type:text;not null" json:"description"`
	Status      JobStatus         `gorm:"not null;default:'open'" json:"status"`
	Attributes  *AttributeSet     `gorm:"type:jsonb" json:"attributes,omitempty"`
	Extraction  *ExtractionRecord `gorm:"type:jsonb" json:"extraction,omitempty"`
	CreatedAt   time.Time         `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Job) TableName() string {
	return "jobs"
}
