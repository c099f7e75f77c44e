package models

import (
	"time"

	"github.com/google/uuid"
)

// CandidateStatus tracks a candidate's progress through the extraction queue.
type CandidateStatus string

const (
	StatusQueued     CandidateStatus = "queued"
	StatusProcessing CandidateStatus = "processing"
	StatusCompleted  CandidateStatus = "completed"
	StatusFailed     CandidateStatus = "failed"
)

type Candidate struct {
	ID               uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	JobID            uuid.UUID         `gorm:"type:uuid;not null;index" json:"job_id"`
	Filename         string            `gorm:"type:text" json:"filename"`
	OriginalFileName string            `gorm:"type:text" json:"original_filename"`
	FilePath         string            `gorm:"type:text" json:"-"`
	Name             string            `gorm:"type:text" json:"name"`
	Email            string            `gorm:"type:text" json:"email"`
	Summary          string            `gorm:"type:text" json:"summary"`
	Status           CandidateStatus   `gorm:"not null;default:'queued'" json:"status"`
	Attributes       *AttributeSet     `gorm:"type:jsonb" json:"attributes,omitempty"`
	Extraction       *ExtractionRecord `gorm:"type:jsonb" json:"extraction,omitempty"`
	Score            *float64          `gorm:"type:decimal(3,2)" json:"score,omitempty"`
	Subscores        *Subscores        `gorm:"type:jsonb" json:"subscores,omitempty"`
	CreatedAt        time.Time         `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time         `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Job Job `gorm:"foreignKey:JobID" json:"-"`
}

func (Candidate) TableName() string {
	return "candidates"
}
