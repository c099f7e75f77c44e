package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"talentmatch/cv-matcher/internal/models"
)

// SearchService answers free-text queries over a job's indexed candidates.
type SearchService interface {
	SearchCandidates(ctx context.Context, jobID uuid.UUID, query string, limit int) ([]models.CandidateSearchResult, error)
}

type searchService struct {
	gemini GeminiService
	qdrant QdrantService
}

func NewSearchService(gemini GeminiService, qdrant QdrantService) SearchService {
	return &searchService{
		gemini: gemini,
		qdrant: qdrant,
	}
}

func (s *searchService) SearchCandidates(ctx context.Context, jobID uuid.UUID, query string, limit int) ([]models.CandidateSearchResult, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}

	embedding, err := s.gemini.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := s.qdrant.SearchCandidates(ctx, embedding, jobID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search candidates: %w", err)
	}

	results := make([]models.CandidateSearchResult, 0, len(hits))
	for _, hit := range hits {
		candidateID, err := uuid.Parse(hit.CandidateID)
		if err != nil {
			continue
		}
		results = append(results, models.CandidateSearchResult{
			CandidateID: candidateID,
			Name:        hit.Name,
			Similarity:  hit.Score,
		})
	}

	return results, nil
}
