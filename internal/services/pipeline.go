package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"talentmatch/cv-matcher/internal/models"
	"talentmatch/cv-matcher/internal/repositories"
)

// MatchingPipeline orchestrates one batch run: fetch the job's unscored
// candidates, score each pair across the four dimensions, aggregate, persist.
// The only fatal condition is the job (or its attribute set) being missing;
// everything else is absorbed into the batch result.
type MatchingPipeline interface {
	RunMatchingBatch(ctx context.Context, jobID uuid.UUID) (*models.MatchBatch, error)
}

type matchingPipeline struct {
	jobRepo       repositories.JobRepository
	candidateRepo repositories.CandidateRepository
	scorer        DimensionScorer
	aggregator    *ScoreAggregator
	concurrency   int
	logger        *zap.Logger
}

func NewMatchingPipeline(
	jobRepo repositories.JobRepository,
	candidateRepo repositories.CandidateRepository,
	scorer DimensionScorer,
	aggregator *ScoreAggregator,
	concurrency int,
	logger *zap.Logger,
) MatchingPipeline {
	if concurrency < 1 {
		concurrency = 1
	}
	return &matchingPipeline{
		jobRepo:       jobRepo,
		candidateRepo: candidateRepo,
		scorer:        scorer,
		aggregator:    aggregator,
		concurrency:   concurrency,
		logger:        logger,
	}
}

// pairOutcome holds the result slot of one (job, candidate) pair. Slots keep
// the batch response in input order no matter how pairs interleave.
type pairOutcome struct {
	scored  *models.ScoredCandidate
	skipped *models.SkippedCandidate
	failed  *models.FailedCandidate
}

func (p *matchingPipeline) RunMatchingBatch(ctx context.Context, jobID uuid.UUID) (*models.MatchBatch, error) {
	job, err := p.jobRepo.FindByID(jobID)
	if err != nil {
		if errors.Is(err, repositories.ErrJobNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load job: %w", err)
	}

	if job.Attributes == nil {
		return nil, fmt.Errorf("%w: job requirements were never extracted", repositories.ErrJobNotFound)
	}

	candidates, err := p.candidateRepo.FindByJob(jobID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidates: %w", err)
	}

	p.logger.Info("starting matching batch",
		zap.String("job_id", jobID.String()),
		zap.Int("candidates", len(candidates)),
	)

	outcomes := make([]pairOutcome, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i := range candidates {
		g.Go(func() error {
			// A cancelled batch leaves the remaining pairs unscored; the
			// idempotent-by-absence policy picks them up on the next run.
			if gctx.Err() != nil {
				return nil
			}
			outcomes[i] = p.scorePair(gctx, job, &candidates[i])
			return nil
		})
	}

	// Pair goroutines never return errors, only cancellation stops them.
	_ = g.Wait()

	batch := &models.MatchBatch{
		JobID:   jobID,
		Scored:  []models.ScoredCandidate{},
		Skipped: []models.SkippedCandidate{},
		Failed:  []models.FailedCandidate{},
	}
	for _, outcome := range outcomes {
		switch {
		case outcome.scored != nil:
			batch.Scored = append(batch.Scored, *outcome.scored)
		case outcome.skipped != nil:
			batch.Skipped = append(batch.Skipped, *outcome.skipped)
		case outcome.failed != nil:
			batch.Failed = append(batch.Failed, *outcome.failed)
		}
	}

	p.logger.Info("matching batch finished",
		zap.String("job_id", jobID.String()),
		zap.Int("scored", len(batch.Scored)),
		zap.Int("skipped", len(batch.Skipped)),
		zap.Int("failed", len(batch.Failed)),
	)

	return batch, nil
}

func (p *matchingPipeline) scorePair(ctx context.Context, job *models.Job, candidate *models.Candidate) pairOutcome {
	if candidate.Attributes == nil {
		return pairOutcome{skipped: &models.SkippedCandidate{
			CandidateID: candidate.ID,
			Reason:      "candidate attributes missing (extraction failed or pending)",
		}}
	}

	// The four dimension evaluations are independent; issue them together
	// and join before aggregating. Each writes its own slot so no lock is
	// held across the evaluator round-trips.
	var (
		wg        sync.WaitGroup
		subscores models.Subscores
		results   [4]models.DimensionResult
	)
	for i, dim := range models.Dimensions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = p.scorer.Score(ctx, dim, job.Attributes.Field(dim), candidate.Attributes.Field(dim))
		}()
	}
	wg.Wait()

	for i, dim := range models.Dimensions {
		subscores.Set(dim, results[i])
	}

	result := p.aggregator.Aggregate(subscores)

	// Do not persist partial work for a cancelled batch.
	if ctx.Err() != nil {
		return pairOutcome{}
	}

	if err := p.candidateRepo.SaveMatchResult(job.ID, candidate.ID, &result); err != nil {
		p.logger.Warn("failed to persist match result",
			zap.String("job_id", job.ID.String()),
			zap.String("candidate_id", candidate.ID.String()),
			zap.Error(err),
		)
		return pairOutcome{failed: &models.FailedCandidate{
			CandidateID: candidate.ID,
			Error:       err.Error(),
		}}
	}

	return pairOutcome{scored: &models.ScoredCandidate{
		CandidateID: candidate.ID,
		Result:      result,
	}}
}
