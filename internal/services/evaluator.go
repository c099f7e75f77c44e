package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"talentmatch/cv-matcher/internal/models"
)

var (
	// ErrEvaluatorUnavailable marks evaluator calls that never produced
	// output: network failure, timeout, empty response.
	ErrEvaluatorUnavailable = errors.New("evaluator unavailable")
	// ErrMalformedOutput marks evaluator output that could not be parsed
	// into a dimension result.
	ErrMalformedOutput = errors.New("evaluator returned malformed output")
)

// SemanticEvaluator judges similarity between two attribute lists for one
// dimension. Implementations must be deterministic: identical inputs return
// identical results on repeated invocation.
type SemanticEvaluator interface {
	Evaluate(ctx context.Context, dim models.Dimension, jobItems, candidateItems []string) (models.DimensionResult, error)
}

type geminiEvaluator struct {
	gemini        GeminiService
	promptBuilder *PromptBuilder
	timeout       time.Duration
	maxRetries    int
	logger        *zap.Logger
}

// NewGeminiEvaluator wraps the Gemini service as a SemanticEvaluator. Every
// call carries a bounded timeout; determinism comes from zero-temperature
// decoding plus the memoization wrapper layered on top.
func NewGeminiEvaluator(gemini GeminiService, timeout time.Duration, maxRetries int, logger *zap.Logger) SemanticEvaluator {
	return &geminiEvaluator{
		gemini:        gemini,
		promptBuilder: NewPromptBuilder(),
		timeout:       timeout,
		maxRetries:    maxRetries,
		logger:        logger,
	}
}

func (e *geminiEvaluator) Evaluate(ctx context.Context, dim models.Dimension, jobItems, candidateItems []string) (models.DimensionResult, error) {
	instruction := e.promptBuilder.BuildDimensionInstruction(dim)
	prompt := e.promptBuilder.BuildDimensionPrompt(dim, jobItems, candidateItems)

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := e.gemini.GenerateWithRetry(callCtx, instruction, prompt, e.maxRetries)
	if err != nil {
		e.logger.Warn("semantic evaluation failed",
			zap.String("dimension", string(dim)),
			zap.Error(err),
		)
		return models.DimensionResult{}, fmt.Errorf("%w: %v", ErrEvaluatorUnavailable, err)
	}

	result, err := ParseDimensionResult(raw)
	if err != nil {
		e.logger.Warn("semantic evaluation returned unparseable output",
			zap.String("dimension", string(dim)),
			zap.Error(err),
		)
		return models.DimensionResult{}, err
	}

	return result, nil
}

type memoizedEvaluator struct {
	inner SemanticEvaluator

	mu    sync.Mutex
	cache map[string]models.DimensionResult
}

// NewMemoizedEvaluator caches successful results keyed on the exact input
// pair. Failures are not cached so a transient outage does not stick.
func NewMemoizedEvaluator(inner SemanticEvaluator) SemanticEvaluator {
	return &memoizedEvaluator{
		inner: inner,
		cache: make(map[string]models.DimensionResult),
	}
}

func (m *memoizedEvaluator) Evaluate(ctx context.Context, dim models.Dimension, jobItems, candidateItems []string) (models.DimensionResult, error) {
	key := memoKey(dim, jobItems, candidateItems)

	m.mu.Lock()
	if cached, ok := m.cache[key]; ok {
		m.mu.Unlock()
		return cached, nil
	}
	m.mu.Unlock()

	result, err := m.inner.Evaluate(ctx, dim, jobItems, candidateItems)
	if err != nil {
		return models.DimensionResult{}, err
	}

	m.mu.Lock()
	m.cache[key] = result
	m.mu.Unlock()

	return result, nil
}

func memoKey(dim models.Dimension, jobItems, candidateItems []string) string {
	return strings.Join([]string{
		string(dim),
		strings.Join(jobItems, "\x1e"),
		strings.Join(candidateItems, "\x1e"),
	}, "\x1f")
}
