package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"talentmatch/cv-matcher/internal/models"
	"talentmatch/cv-matcher/internal/repositories"
)

type DashboardHandler struct {
	jobRepo       repositories.JobRepository
	candidateRepo repositories.CandidateRepository
}

func NewDashboardHandler(
	jobRepo repositories.JobRepository,
	candidateRepo repositories.CandidateRepository,
) *DashboardHandler {
	return &DashboardHandler{
		jobRepo:       jobRepo,
		candidateRepo: candidateRepo,
	}
}

// HandleJobCount handles GET /dashboard/stats/jobs/count.
func (h *DashboardHandler) HandleJobCount(c *fiber.Ctx) error {
	total, err := h.jobRepo.Count()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to count jobs",
		})
	}

	return c.JSON(models.JobCountStats{TotalJobs: total})
}

// HandleCandidatesPerJob handles GET /dashboard/stats/candidates-per-job.
func (h *DashboardHandler) HandleCandidatesPerJob(c *fiber.Ctx) error {
	rows, err := h.candidateRepo.CountPerJob()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to count candidates per job",
		})
	}

	return c.JSON(rows)
}

// HandleBestCandidatePerJob handles GET /dashboard/best-candidate-per-job.
func (h *DashboardHandler) HandleBestCandidatePerJob(c *fiber.Ctx) error {
	jobs, err := h.jobRepo.FindAll()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list jobs",
		})
	}

	results := make([]models.BestCandidatePerJob, 0, len(jobs))
	for _, job := range jobs {
		entry := models.BestCandidatePerJob{
			JobID:   job.ID,
			JobName: job.Name,
		}

		best, err := h.candidateRepo.BestByJob(job.ID)
		if err != nil && !errors.Is(err, repositories.ErrCandidateNotFound) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to find best candidate",
			})
		}
		if best != nil {
			id := best.ID
			entry.CandidateID = &id
			entry.CandidateName = best.Name
			entry.Score = best.Score
		}

		results = append(results, entry)
	}

	return c.JSON(results)
}
