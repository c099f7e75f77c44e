package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// AttributeSet is the normalized structured profile extracted from free text,
// for a job (its requirements) or a candidate (their CV). Fields absent in the
// source normalize to empty slices, never nil, so scorers never branch on
// missing vs empty.
type AttributeSet struct {
	Education        []string `json:"education"`
	Experiences      []string `json:"experiences"`
	Responsibilities []string `json:"responsibilities"`
	TechSkills       []string `json:"tech_skills"`
	SoftSkills       []string `json:"soft_skills"`
}

// Normalize replaces nil field slices with empty ones.
func (a *AttributeSet) Normalize() {
	if a.Education == nil {
		a.Education = []string{}
	}
	if a.Experiences == nil {
		a.Experiences = []string{}
	}
	if a.Responsibilities == nil {
		a.Responsibilities = []string{}
	}
	if a.TechSkills == nil {
		a.TechSkills = []string{}
	}
	if a.SoftSkills == nil {
		a.SoftSkills = []string{}
	}
}

// Field returns the attribute list scored for the given dimension.
// Responsibilities are informational only and have no dimension.
func (a *AttributeSet) Field(dim Dimension) []string {
	if a == nil {
		return nil
	}
	switch dim {
	case DimensionEducation:
		return a.Education
	case DimensionExperience:
		return a.Experiences
	case DimensionTechSkills:
		return a.TechSkills
	case DimensionSoftSkills:
		return a.SoftSkills
	}
	return nil
}

func (a *AttributeSet) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

func (a *AttributeSet) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	data, err := jsonbBytes(value)
	if err != nil {
		return fmt.Errorf("failed to scan attribute set: %w", err)
	}
	if err := json.Unmarshal(data, a); err != nil {
		return fmt.Errorf("failed to unmarshal attribute set: %w", err)
	}
	a.Normalize()
	return nil
}

type ExtractionStatus string

const (
	ExtractionSucceeded ExtractionStatus = "succeeded"
	ExtractionFailed    ExtractionStatus = "failed"
)

// ExtractionRecord is the side-metadata of one extraction run. When Status is
// failed the owning record's AttributeSet is null and the pair is unscoreable.
type ExtractionRecord struct {
	Status        ExtractionStatus `json:"status"`
	Error         *string          `json:"error,omitempty"`
	ExtractedAt   time.Time        `json:"extracted_at"`
	Provider      string           `json:"provider"`
	Model         string           `json:"model"`
	PromptVersion string           `json:"prompt_version"`
}

func (e *ExtractionRecord) Value() (driver.Value, error) {
	if e == nil {
		return nil, nil
	}
	return json.Marshal(e)
}

func (e *ExtractionRecord) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	data, err := jsonbBytes(value)
	if err != nil {
		return fmt.Errorf("failed to scan extraction record: %w", err)
	}
	return json.Unmarshal(data, e)
}

func jsonbBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unexpected jsonb source type %T", value)
	}
}
