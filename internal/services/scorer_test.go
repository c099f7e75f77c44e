package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"talentmatch/cv-matcher/internal/models"
)

type stubEvaluator struct {
	result models.DimensionResult
	err    error
	calls  int

	lastJobItems       []string
	lastCandidateItems []string
}

func (s *stubEvaluator) Evaluate(_ context.Context, _ models.Dimension, jobItems, candidateItems []string) (models.DimensionResult, error) {
	s.calls++
	s.lastJobItems = jobItems
	s.lastCandidateItems = candidateItems
	if s.err != nil {
		return models.DimensionResult{}, s.err
	}
	return s.result, nil
}

func TestDimensionScorer_VacuousTruth(t *testing.T) {
	stub := &stubEvaluator{}
	scorer := NewDimensionScorer(stub, zap.NewNop())

	result := scorer.Score(context.Background(), models.DimensionTechSkills, nil, []string{"Python"})

	assert.Equal(t, 1.0, result.Score)
	assert.Zero(t, stub.calls, "evaluator must not be called without requirements")
}

func TestDimensionScorer_WhitespaceOnlyRequirementIsNoRequirement(t *testing.T) {
	stub := &stubEvaluator{}
	scorer := NewDimensionScorer(stub, zap.NewNop())

	result := scorer.Score(context.Background(), models.DimensionEducation, []string{"  ", "", "\t"}, []string{"Bachelor's in CS"})

	assert.Equal(t, 1.0, result.Score)
	assert.Zero(t, stub.calls)
}

func TestDimensionScorer_EmptyCandidateScoresZero(t *testing.T) {
	stub := &stubEvaluator{}
	scorer := NewDimensionScorer(stub, zap.NewNop())

	result := scorer.Score(context.Background(), models.DimensionExperience, []string{"5 years backend engineer"}, nil)

	assert.Equal(t, 0.0, result.Score)
	assert.Zero(t, stub.calls, "nothing to compare, evaluator must not be called")
}

func TestDimensionScorer_EvaluatorErrorDegradesToZero(t *testing.T) {
	for _, evalErr := range []error{ErrEvaluatorUnavailable, ErrMalformedOutput, context.DeadlineExceeded, errors.New("boom")} {
		stub := &stubEvaluator{err: evalErr}
		scorer := NewDimensionScorer(stub, zap.NewNop())

		result := scorer.Score(context.Background(), models.DimensionTechSkills, []string{"Go"}, []string{"Python"})

		assert.Equal(t, 0.0, result.Score)
		assert.Equal(t, "parsing failed", result.Justification)
	}
}

func TestDimensionScorer_PassesCleanedItems(t *testing.T) {
	stub := &stubEvaluator{result: models.DimensionResult{Score: 0.5, Justification: "one of two"}}
	scorer := NewDimensionScorer(stub, zap.NewNop())

	result := scorer.Score(context.Background(), models.DimensionTechSkills,
		[]string{" Python ", "", "Go"},
		[]string{"Python", "  "},
	)

	require.Equal(t, 1, stub.calls)
	assert.Equal(t, []string{"Python", "Go"}, stub.lastJobItems)
	assert.Equal(t, []string{"Python"}, stub.lastCandidateItems)
	assert.Equal(t, 0.5, result.Score)
	assert.Equal(t, "one of two", result.Justification)
}

func TestDimensionScorer_ClampsEvaluatorResult(t *testing.T) {
	stub := &stubEvaluator{result: models.DimensionResult{Score: 3.2, Justification: "overeager"}}
	scorer := NewDimensionScorer(stub, zap.NewNop())

	result := scorer.Score(context.Background(), models.DimensionSoftSkills, []string{"teamwork"}, []string{"teamwork"})

	assert.Equal(t, 1.0, result.Score)
}

func TestDimensionScorer_Deterministic(t *testing.T) {
	stub := &stubEvaluator{result: models.DimensionResult{Score: 0.7, Justification: "stable"}}
	scorer := NewDimensionScorer(stub, zap.NewNop())

	first := scorer.Score(context.Background(), models.DimensionExperience, []string{"3 years Go"}, []string{"2 years Go"})
	second := scorer.Score(context.Background(), models.DimensionExperience, []string{"3 years Go"}, []string{"2 years Go"})

	assert.Equal(t, first, second)
}
