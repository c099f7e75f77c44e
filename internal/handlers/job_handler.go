package handlers

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"talentmatch/cv-matcher/internal/models"
	"talentmatch/cv-matcher/internal/repositories"
	"talentmatch/cv-matcher/internal/services"
)

type JobHandler struct {
	jobRepo       repositories.JobRepository
	candidateRepo repositories.CandidateRepository
	extractor     services.ExtractionService
	validate      *validator.Validate
}

func NewJobHandler(
	jobRepo repositories.JobRepository,
	candidateRepo repositories.CandidateRepository,
	extractor services.ExtractionService,
) *JobHandler {
	return &JobHandler{
		jobRepo:       jobRepo,
		candidateRepo: candidateRepo,
		extractor:     extractor,
		validate:      validator.New(),
	}
}

// HandleCreate handles POST /jobs. Requirement extraction runs synchronously
// so a created job is immediately matchable (or carries a failed record).
func (h *JobHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.JobCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	status := models.JobStatusOpen
	if req.Status != "" {
		status = models.JobStatus(req.Status)
	}

	attrs, record := h.extractor.ExtractJob(c.Context(), req.Description)

	job := &models.Job{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Status:      status,
		Attributes:  attrs,
		Extraction:  record,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := h.jobRepo.Create(job); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create job",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(job)
}

// HandleList handles GET /jobs with optional ?q=, ?page=, ?limit=.
func (h *JobHandler) HandleList(c *fiber.Ctx) error {
	query := c.Query("q")
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	jobs, total, err := h.jobRepo.List(query, page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list jobs",
		})
	}

	return c.JSON(models.JobListResponse{
		Items: jobs,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// HandleGet handles GET /jobs/:id.
func (h *JobHandler) HandleGet(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job ID format",
		})
	}

	job, err := h.jobRepo.FindByID(jobID)
	if err != nil {
		if errors.Is(err, repositories.ErrJobNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Job not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load job",
		})
	}

	return c.JSON(job)
}

// HandleUpdate handles PATCH /jobs/:id. Changing the description re-runs
// requirement extraction and invalidates stored match results.
func (h *JobHandler) HandleUpdate(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job ID format",
		})
	}

	var req models.JobUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	job, err := h.jobRepo.FindByID(jobID)
	if err != nil {
		if errors.Is(err, repositories.ErrJobNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Job not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load job",
		})
	}

	if req.Name != nil {
		job.Name = *req.Name
	}
	if req.Status != nil {
		job.Status = models.JobStatus(*req.Status)
	}

	descriptionChanged := req.Description != nil && *req.Description != job.Description
	if descriptionChanged {
		job.Description = *req.Description
		job.Attributes, job.Extraction = h.extractor.ExtractJob(c.Context(), job.Description)
	}

	if err := h.jobRepo.Update(job); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update job",
		})
	}

	if descriptionChanged {
		if err := h.candidateRepo.ClearMatchResults(jobID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to invalidate match results",
			})
		}
	}

	return c.JSON(job)
}

// HandleDelete handles DELETE /jobs/:id.
func (h *JobHandler) HandleDelete(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job ID format",
		})
	}

	if err := h.jobRepo.Delete(jobID); err != nil {
		if errors.Is(err, repositories.ErrJobNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Job not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete job",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// HandleExtract handles POST /jobs/:id/extract. Re-extraction replaces the
// job's requirements, so stored match results for the job are cleared; the
// next batch run rescoring every candidate is the intended effect.
func (h *JobHandler) HandleExtract(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job ID format",
		})
	}

	job, err := h.jobRepo.FindByID(jobID)
	if err != nil {
		if errors.Is(err, repositories.ErrJobNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Job not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load job",
		})
	}

	attrs, record := h.extractor.ExtractJob(c.Context(), job.Description)

	if err := h.jobRepo.UpdateExtraction(jobID, attrs, record); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save extraction",
		})
	}

	if err := h.candidateRepo.ClearMatchResults(jobID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to invalidate match results",
		})
	}

	return c.JSON(fiber.Map{
		"job_id":     jobID,
		"attributes": attrs,
		"extraction": record,
	})
}
