package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Dimension is one of the four scored facets of a (job, candidate) pair.
type Dimension string

const (
	DimensionEducation  Dimension = "education"
	DimensionExperience Dimension = "experience"
	DimensionTechSkills Dimension = "tech_skills"
	DimensionSoftSkills Dimension = "soft_skills"
)

// Dimensions lists the scored dimensions in their canonical order.
var Dimensions = []Dimension{
	DimensionEducation,
	DimensionExperience,
	DimensionTechSkills,
	DimensionSoftSkills,
}

// DimensionResult is one dimension's bounded score plus a short justification.
// Score is always within [0,1].
type DimensionResult struct {
	Score         float64 `json:"score"`
	Justification string  `json:"justification"`
}

// Subscores holds the four dimension results of one match.
type Subscores struct {
	Education  DimensionResult `json:"education"`
	Experience DimensionResult `json:"experience"`
	TechSkills DimensionResult `json:"tech_skills"`
	SoftSkills DimensionResult `json:"soft_skills"`
}

// Set stores a result under its dimension.
func (s *Subscores) Set(dim Dimension, result DimensionResult) {
	switch dim {
	case DimensionEducation:
		s.Education = result
	case DimensionExperience:
		s.Experience = result
	case DimensionTechSkills:
		s.TechSkills = result
	case DimensionSoftSkills:
		s.SoftSkills = result
	}
}

// Get returns the result stored under the given dimension.
func (s *Subscores) Get(dim Dimension) DimensionResult {
	switch dim {
	case DimensionEducation:
		return s.Education
	case DimensionExperience:
		return s.Experience
	case DimensionTechSkills:
		return s.TechSkills
	case DimensionSoftSkills:
		return s.SoftSkills
	}
	return DimensionResult{}
}

func (s *Subscores) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func (s *Subscores) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	data, err := jsonbBytes(value)
	if err != nil {
		return fmt.Errorf("failed to scan subscores: %w", err)
	}
	return json.Unmarshal(data, s)
}

// MatchResult is the composite fit score of one (job, candidate) pair.
// CompositeScore is the weighted sum of the subscores rounded half-up to
// two decimals, always within [0,1].
type MatchResult struct {
	CompositeScore float64   `json:"composite_score"`
	Subscores      Subscores `json:"subscores"`
}

// ScoredCandidate is one successfully scored pair in a batch result.
type ScoredCandidate struct {
	CandidateID uuid.UUID   `json:"candidate_id"`
	Result      MatchResult `json:"result"`
}

// SkippedCandidate is a pair excluded from scoring, typically because the
// candidate's own extraction failed.
type SkippedCandidate struct {
	CandidateID uuid.UUID `json:"candidate_id"`
	Reason      string    `json:"reason"`
}

// FailedCandidate is a pair that was scored but whose result could not be
// persisted. It does not affect other pairs.
type FailedCandidate struct {
	CandidateID uuid.UUID `json:"candidate_id"`
	Error       string    `json:"error"`
}

// MatchBatch is the structured outcome of one matching run over a job's
// unscored candidates.
type MatchBatch struct {
	JobID   uuid.UUID          `json:"job_id"`
	Scored  []ScoredCandidate  `json:"scored"`
	Skipped []SkippedCandidate `json:"skipped"`
	Failed  []FailedCandidate  `json:"failed"`
}
