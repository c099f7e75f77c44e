package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"talentmatch/cv-matcher/internal/repositories"
	"talentmatch/cv-matcher/internal/services"
)

type MatchHandler struct {
	pipeline services.MatchingPipeline
}

func NewMatchHandler(pipeline services.MatchingPipeline) *MatchHandler {
	return &MatchHandler{pipeline: pipeline}
}

// HandleRunBatch handles POST /jobs/:id/matches. Scores every candidate of
// the job that does not yet carry a match result; reruns are no-ops for
// already scored candidates.
func (h *MatchHandler) HandleRunBatch(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job ID format",
		})
	}

	batch, err := h.pipeline.RunMatchingBatch(c.Context(), jobID)
	if err != nil {
		if errors.Is(err, repositories.ErrJobNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Job not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to run matching batch",
		})
	}

	return c.JSON(batch)
}
