package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentmatch/cv-matcher/internal/models"
)

func TestMemoizedEvaluator_CachesByExactInput(t *testing.T) {
	stub := &stubEvaluator{result: models.DimensionResult{Score: 0.8, Justification: "good fit"}}
	memo := NewMemoizedEvaluator(stub)

	jobItems := []string{"Python", "Go"}
	candidateItems := []string{"Python"}

	first, err := memo.Evaluate(context.Background(), models.DimensionTechSkills, jobItems, candidateItems)
	require.NoError(t, err)

	second, err := memo.Evaluate(context.Background(), models.DimensionTechSkills, jobItems, candidateItems)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, stub.calls, "second identical call must be served from cache")
}

func TestMemoizedEvaluator_DistinguishesDimensionAndInputs(t *testing.T) {
	stub := &stubEvaluator{result: models.DimensionResult{Score: 0.8}}
	memo := NewMemoizedEvaluator(stub)

	_, err := memo.Evaluate(context.Background(), models.DimensionTechSkills, []string{"Go"}, []string{"Go"})
	require.NoError(t, err)
	_, err = memo.Evaluate(context.Background(), models.DimensionSoftSkills, []string{"Go"}, []string{"Go"})
	require.NoError(t, err)
	_, err = memo.Evaluate(context.Background(), models.DimensionTechSkills, []string{"Go"}, []string{"Rust"})
	require.NoError(t, err)

	assert.Equal(t, 3, stub.calls)
}

func TestMemoizedEvaluator_DoesNotCacheFailures(t *testing.T) {
	stub := &stubEvaluator{err: ErrEvaluatorUnavailable}
	memo := NewMemoizedEvaluator(stub)

	_, err := memo.Evaluate(context.Background(), models.DimensionEducation, []string{"PhD"}, []string{"MSc"})
	require.ErrorIs(t, err, ErrEvaluatorUnavailable)

	// The backend recovers; the wrapper must try again instead of replaying
	// the failure.
	stub.err = nil
	stub.result = models.DimensionResult{Score: 0.5, Justification: "one level below"}

	result, err := memo.Evaluate(context.Background(), models.DimensionEducation, []string{"PhD"}, []string{"MSc"})
	require.NoError(t, err)
	assert.Equal(t, 0.5, result.Score)
	assert.Equal(t, 2, stub.calls)
}
