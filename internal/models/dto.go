package models

import "github.com/google/uuid"

type JobCreateRequest struct {
	Name        string `json:"name" validate:"required,min=1"`
	Description string `json:"description" validate:"required,min=1"`
	Status      string `json:"status" validate:"omitempty,oneof=open closed"`
}

type JobUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Description *string `json:"description" validate:"omitempty,min=1"`
	Status      *string `json:"status" validate:"omitempty,oneof=open closed"`
}

type JobListResponse struct {
	Items []Job `json:"items"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// UploadResult reports the outcome of one uploaded CV file. A file that could
// not be parsed carries an error instead of failing the whole upload.
type UploadResult struct {
	CandidateID string `json:"candidate_id,omitempty"`
	Filename    string `json:"filename"`
	Status      string `json:"status,omitempty"`
	Error       string `json:"error,omitempty"`
}

type CandidateSearchResult struct {
	CandidateID uuid.UUID `json:"candidate_id"`
	Name        string    `json:"name"`
	Similarity  float32   `json:"similarity"`
}

type JobCountStats struct {
	TotalJobs int64 `json:"total_jobs"`
}

type CandidatesPerJob struct {
	JobID          uuid.UUID `json:"job_id"`
	JobName        string    `json:"job_name"`
	CandidateCount int64     `json:"candidate_count"`
}

type BestCandidatePerJob struct {
	JobID         uuid.UUID  `json:"job_id"`
	JobName       string     `json:"job_name"`
	CandidateID   *uuid.UUID `json:"candidate_id,omitempty"`
	CandidateName string     `json:"candidate_name,omitempty"`
	Score         *float64   `json:"score,omitempty"`
}
