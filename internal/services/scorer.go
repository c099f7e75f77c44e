package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"talentmatch/cv-matcher/internal/models"
)

// parsingFailedJustification is the diagnostic attached to every degraded
// zero result, regardless of whether the evaluator was unreachable, timed
// out, or answered with something unparseable.
const parsingFailedJustification = "parsing failed"

// DimensionScorer converts two attribute lists for a single dimension into a
// bounded DimensionResult. It never fails outward: evaluator errors degrade
// the dimension to zero so a single bad call cannot abort a batch.
type DimensionScorer interface {
	Score(ctx context.Context, dim models.Dimension, jobItems, candidateItems []string) models.DimensionResult
}

type dimensionScorer struct {
	evaluator SemanticEvaluator
	logger    *zap.Logger
}

func NewDimensionScorer(evaluator SemanticEvaluator, logger *zap.Logger) DimensionScorer {
	return &dimensionScorer{
		evaluator: evaluator,
		logger:    logger,
	}
}

func (s *dimensionScorer) Score(ctx context.Context, dim models.Dimension, jobItems, candidateItems []string) models.DimensionResult {
	required := cleanItems(jobItems)
	offered := cleanItems(candidateItems)

	// A job without requirements for a dimension is fully satisfied by any
	// candidate. Whitespace-only entries count as no requirement.
	if len(required) == 0 {
		return models.DimensionResult{
			Score:         1.0,
			Justification: "no requirements listed for this dimension",
		}
	}

	// Nothing on the candidate side means no condition can match.
	if len(offered) == 0 {
		return models.DimensionResult{
			Score:         0.0,
			Justification: "candidate has no entries for this dimension",
		}
	}

	result, err := s.evaluator.Evaluate(ctx, dim, required, offered)
	if err != nil {
		s.logger.Warn("dimension degraded to zero",
			zap.String("dimension", string(dim)),
			zap.Error(err),
		)
		return models.DimensionResult{
			Score:         0.0,
			Justification: parsingFailedJustification,
		}
	}

	result.Score = clampScore(result.Score)
	return result
}

// cleanItems trims entries and drops the empty ones.
func cleanItems(items []string) []string {
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
