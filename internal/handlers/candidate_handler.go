package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"talentmatch/cv-matcher/internal/models"
	"talentmatch/cv-matcher/internal/repositories"
	"talentmatch/cv-matcher/internal/services"
)

type CandidateHandler struct {
	candidateRepo  repositories.CandidateRepository
	jobRepo        repositories.JobRepository
	storageService services.StorageService
	searchService  services.SearchService
	qdrantService  services.QdrantService
	worker         services.Worker
	maxFileSize    int64
}

func NewCandidateHandler(
	candidateRepo repositories.CandidateRepository,
	jobRepo repositories.JobRepository,
	storageService services.StorageService,
	searchService services.SearchService,
	qdrantService services.QdrantService,
	worker services.Worker,
	maxFileSize int64,
) *CandidateHandler {
	return &CandidateHandler{
		candidateRepo:  candidateRepo,
		jobRepo:        jobRepo,
		storageService: storageService,
		searchService:  searchService,
		qdrantService:  qdrantService,
		worker:         worker,
		maxFileSize:    maxFileSize,
	}
}

// HandleUpload handles POST /jobs/:id/candidates. Accepts one or more CV
// files under the "files" field; each file is isolated, a bad PDF is
// reported without failing the rest of the upload.
func (h *CandidateHandler) HandleUpload(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job ID format",
		})
	}

	if _, err := h.jobRepo.FindByID(jobID); err != nil {
		if errors.Is(err, repositories.ErrJobNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Job not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load job",
		})
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to parse multipart form",
		})
	}

	files := form.File["files"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No files uploaded. Please upload one or more CVs as 'files'.",
		})
	}

	var results []models.UploadResult

	for _, file := range files {
		if file.Size > h.maxFileSize {
			results = append(results, models.UploadResult{
				Filename: file.Filename,
				Error:    fmt.Sprintf("file too large, max size: %d bytes", h.maxFileSize),
			})
			continue
		}

		filename, filePath, err := h.storageService.SaveCV(file)
		if err != nil {
			results = append(results, models.UploadResult{
				Filename: file.Filename,
				Error:    err.Error(),
			})
			continue
		}

		candidate := &models.Candidate{
			ID:               uuid.New(),
			JobID:            jobID,
			Filename:         filename,
			OriginalFileName: file.Filename,
			FilePath:         filePath,
			Status:           models.StatusQueued,
			CreatedAt:        time.Now(),
			UpdatedAt:        time.Now(),
		}

		if err := h.candidateRepo.Create(candidate); err != nil {
			// Drop the stored file if the record never made it in.
			_ = h.storageService.DeleteFile(filename)
			results = append(results, models.UploadResult{
				Filename: file.Filename,
				Error:    "failed to save candidate record",
			})
			continue
		}

		h.worker.EnqueueCandidate(candidate.ID)

		results = append(results, models.UploadResult{
			CandidateID: candidate.ID.String(),
			Filename:    file.Filename,
			Status:      string(models.StatusQueued),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"job_id":     jobID,
		"candidates": results,
	})
}

// HandleListByJob handles GET /jobs/:id/candidates. Unscored candidates come
// first, then scored ones by score descending.
func (h *CandidateHandler) HandleListByJob(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job ID format",
		})
	}

	candidates, err := h.candidateRepo.ListByJob(jobID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list candidates",
		})
	}

	return c.JSON(candidates)
}

// HandleGet handles GET /candidates/:id.
func (h *CandidateHandler) HandleGet(c *fiber.Ctx) error {
	candidateID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid candidate ID format",
		})
	}

	candidate, err := h.candidateRepo.FindByID(candidateID)
	if err != nil {
		if errors.Is(err, repositories.ErrCandidateNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Candidate not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load candidate",
		})
	}

	return c.JSON(candidate)
}

// HandleDelete handles DELETE /candidates/:id. The stored file and the
// search index entry go with the record.
func (h *CandidateHandler) HandleDelete(c *fiber.Ctx) error {
	candidateID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid candidate ID format",
		})
	}

	candidate, err := h.candidateRepo.FindByID(candidateID)
	if err != nil {
		if errors.Is(err, repositories.ErrCandidateNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Candidate not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load candidate",
		})
	}

	if err := h.candidateRepo.Delete(candidateID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete candidate",
		})
	}

	_ = h.storageService.DeleteFile(candidate.Filename)
	_ = h.qdrantService.DeleteCandidate(c.Context(), candidateID)

	return c.JSON(fiber.Map{
		"status": "deleted",
		"id":     candidateID,
	})
}

// HandleSearch handles GET /jobs/:id/candidates/search?q=.
func (h *CandidateHandler) HandleSearch(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job ID format",
		})
	}

	query := c.Query("q")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "q is required",
		})
	}

	limit := c.QueryInt("limit", 10)

	results, err := h.searchService.SearchCandidates(c.Context(), jobID, query, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to search candidates",
		})
	}

	return c.JSON(fiber.Map{
		"job_id":  jobID,
		"query":   query,
		"results": results,
	})
}
