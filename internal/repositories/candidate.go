package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"talentmatch/cv-matcher/internal/models"
)

// ErrCandidateNotFound is returned when a candidate id does not resolve to a
// stored candidate for the expected job.
var ErrCandidateNotFound = errors.New("candidate not found")

type CandidateRepository interface {
	Create(candidate *models.Candidate) error
	FindByID(id uuid.UUID) (*models.Candidate, error)
	// FindByJob returns a job's candidates in insertion order. With
	// withoutScoreOnly set, candidates that already carry a match result are
	// excluded, which is what makes batch reruns idempotent.
	FindByJob(jobID uuid.UUID, withoutScoreOnly bool) ([]models.Candidate, error)
	// ListByJob returns a job's candidates for display: unscored first,
	// then by score descending.
	ListByJob(jobID uuid.UUID) ([]models.Candidate, error)
	SaveMatchResult(jobID, candidateID uuid.UUID, result *models.MatchResult) error
	// ClearMatchResults drops all stored match results for a job. Called when
	// the job's requirements are re-extracted and prior scores no longer apply.
	ClearMatchResults(jobID uuid.UUID) error
	UpdateStatus(id uuid.UUID, status models.CandidateStatus) error
	UpdateExtraction(id uuid.UUID, data *ExtractionUpdateData) error
	FindPendingExtractions(limit int) ([]models.Candidate, error)
	Delete(id uuid.UUID) error
	CountPerJob() ([]models.CandidatesPerJob, error)
	BestByJob(jobID uuid.UUID) (*models.Candidate, error)
}

// ExtractionUpdateData carries the outcome of one candidate extraction run.
type ExtractionUpdateData struct {
	Name       *string
	Email      *string
	Summary    *string
	Attributes *models.AttributeSet
	Extraction *models.ExtractionRecord
	Status     models.CandidateStatus
}

type candidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

func (r *candidateRepository) Create(candidate *models.Candidate) error {
	if err := r.db.Create(candidate).Error; err != nil {
		return fmt.Errorf("failed to create candidate: %w", err)
	}
	return nil
}

func (r *candidateRepository) FindByID(id uuid.UUID) (*models.Candidate, error) {
	var candidate models.Candidate
	if err := r.db.Where("id = ?", id).First(&candidate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCandidateNotFound
		}
		return nil, fmt.Errorf("failed to find candidate: %w", err)
	}
	return &candidate, nil
}

func (r *candidateRepository) FindByJob(jobID uuid.UUID, withoutScoreOnly bool) ([]models.Candidate, error) {
	tx := r.db.Where("job_id = ?", jobID)
	if withoutScoreOnly {
		tx = tx.Where("score IS NULL")
	}

	var candidates []models.Candidate
	if err := tx.Order("created_at ASC").Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("failed to find candidates: %w", err)
	}
	return candidates, nil
}

func (r *candidateRepository) ListByJob(jobID uuid.UUID) ([]models.Candidate, error) {
	var candidates []models.Candidate
	err := r.db.
		Where("job_id = ?", jobID).
		Order("(score IS NOT NULL) ASC").
		Order("score DESC NULLS LAST").
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	return candidates, nil
}

func (r *candidateRepository) SaveMatchResult(jobID, candidateID uuid.UUID, result *models.MatchResult) error {
	subscores := result.Subscores

	res := r.db.Model(&models.Candidate{}).
		Where("id = ? AND job_id = ?", candidateID, jobID).
		Updates(map[string]interface{}{
			"score":      result.CompositeScore,
			"subscores":  &subscores,
			"updated_at": time.Now(),
		})

	if res.Error != nil {
		return fmt.Errorf("failed to save match result: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrCandidateNotFound
	}
	return nil
}

func (r *candidateRepository) ClearMatchResults(jobID uuid.UUID) error {
	err := r.db.Model(&models.Candidate{}).
		Where("job_id = ?", jobID).
		Updates(map[string]interface{}{
			"score":      nil,
			"subscores":  nil,
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to clear match results: %w", err)
	}
	return nil
}

func (r *candidateRepository) UpdateStatus(id uuid.UUID, status models.CandidateStatus) error {
	result := r.db.Model(&models.Candidate{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCandidateNotFound
	}
	return nil
}

func (r *candidateRepository) UpdateExtraction(id uuid.UUID, data *ExtractionUpdateData) error {
	updates := map[string]interface{}{
		"status":     data.Status,
		"attributes": data.Attributes,
		"extraction": data.Extraction,
		"updated_at": time.Now(),
	}

	if data.Name != nil {
		updates["name"] = *data.Name
	}
	if data.Email != nil {
		updates["email"] = *data.Email
	}
	if data.Summary != nil {
		updates["summary"] = *data.Summary
	}

	result := r.db.Model(&models.Candidate{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update extraction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCandidateNotFound
	}
	return nil
}

func (r *candidateRepository) FindPendingExtractions(limit int) ([]models.Candidate, error) {
	var candidates []models.Candidate
	err := r.db.
		Where("status = ?", models.StatusQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find pending extractions: %w", err)
	}
	return candidates, nil
}

func (r *candidateRepository) Delete(id uuid.UUID) error {
	result := r.db.Where("id = ?", id).Delete(&models.Candidate{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete candidate: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCandidateNotFound
	}
	return nil
}

func (r *candidateRepository) CountPerJob() ([]models.CandidatesPerJob, error) {
	var rows []models.CandidatesPerJob
	err := r.db.Model(&models.Candidate{}).
		Select("candidates.job_id AS job_id, jobs.name AS job_name, COUNT(candidates.id) AS candidate_count").
		Joins("JOIN jobs ON jobs.id = candidates.job_id").
		Group("candidates.job_id, jobs.name").
		Order("candidate_count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count candidates per job: %w", err)
	}
	return rows, nil
}

func (r *candidateRepository) BestByJob(jobID uuid.UUID) (*models.Candidate, error) {
	var candidate models.Candidate
	err := r.db.
		Where("job_id = ? AND score IS NOT NULL", jobID).
		Order("score DESC").
		First(&candidate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCandidateNotFound
		}
		return nil, fmt.Errorf("failed to find best candidate: %w", err)
	}
	return &candidate, nil
}
