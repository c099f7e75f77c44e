package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"talentmatch/cv-matcher/internal/models"
)

// ErrJobNotFound is returned when a job id does not resolve to a stored job.
var ErrJobNotFound = errors.New("job not found")

type JobRepository interface {
	Create(job *models.Job) error
	FindByID(id uuid.UUID) (*models.Job, error)
	FindAll() ([]models.Job, error)
	List(query string, page, limit int) ([]models.Job, int64, error)
	Update(job *models.Job) error
	UpdateExtraction(id uuid.UUID, attrs *models.AttributeSet, record *models.ExtractionRecord) error
	Delete(id uuid.UUID) error
	Count() (int64, error)
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(job *models.Job) error {
	if err := r.db.Create(job).Error; err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (r *jobRepository) FindByID(id uuid.UUID) (*models.Job, error) {
	var job models.Job
	if err := r.db.Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to find job: %w", err)
	}
	return &job, nil
}

func (r *jobRepository) FindAll() ([]models.Job, error) {
	var jobs []models.Job
	if err := r.db.Order("updated_at DESC").Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

func (r *jobRepository) List(query string, page, limit int) ([]models.Job, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	tx := r.db.Model(&models.Job{})
	if query != "" {
		tx = tx.Where("name ILIKE ?", "%"+query+"%")
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count jobs: %w", err)
	}

	var jobs []models.Job
	err := tx.
		Order("updated_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}

	return jobs, total, nil
}

func (r *jobRepository) Update(job *models.Job) error {
	job.UpdatedAt = time.Now()
	result := r.db.Model(&models.Job{}).Where("id = ?", job.ID).Updates(job)
	if result.Error != nil {
		return fmt.Errorf("failed to update job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *jobRepository) UpdateExtraction(id uuid.UUID, attrs *models.AttributeSet, record *models.ExtractionRecord) error {
	result := r.db.Model(&models.Job{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"attributes": attrs,
			"extraction": record,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update job extraction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *jobRepository) Delete(id uuid.UUID) error {
	result := r.db.Where("id = ?", id).Delete(&models.Job{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *jobRepository) Count() (int64, error) {
	var total int64
	if err := r.db.Model(&models.Job{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}
	return total, nil
}
