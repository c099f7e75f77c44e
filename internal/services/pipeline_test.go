package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"talentmatch/cv-matcher/internal/models"
	"talentmatch/cv-matcher/internal/repositories"
)

type evaluatorFunc func(dim models.Dimension, jobItems, candidateItems []string) (models.DimensionResult, error)

func (f evaluatorFunc) Evaluate(_ context.Context, dim models.Dimension, jobItems, candidateItems []string) (models.DimensionResult, error) {
	return f(dim, jobItems, candidateItems)
}

type fakeJobRepo struct {
	jobs map[uuid.UUID]*models.Job
}

func (r *fakeJobRepo) Create(job *models.Job) error { r.jobs[job.ID] = job; return nil }
func (r *fakeJobRepo) FindByID(id uuid.UUID) (*models.Job, error) {
	job, ok := r.jobs[id]
	if !ok {
		return nil, repositories.ErrJobNotFound
	}
	return job, nil
}
func (r *fakeJobRepo) FindAll() ([]models.Job, error)                        { return nil, nil }
func (r *fakeJobRepo) List(string, int, int) ([]models.Job, int64, error)    { return nil, 0, nil }
func (r *fakeJobRepo) Update(*models.Job) error                              { return nil }
func (r *fakeJobRepo) UpdateExtraction(uuid.UUID, *models.AttributeSet, *models.ExtractionRecord) error {
	return nil
}
func (r *fakeJobRepo) Delete(uuid.UUID) error { return nil }
func (r *fakeJobRepo) Count() (int64, error)  { return int64(len(r.jobs)), nil }

type fakeCandidateRepo struct {
	mu         sync.Mutex
	candidates []models.Candidate
	saveErrors map[uuid.UUID]error
	saves      int
}

func (r *fakeCandidateRepo) Create(c *models.Candidate) error {
	r.candidates = append(r.candidates, *c)
	return nil
}

func (r *fakeCandidateRepo) FindByID(id uuid.UUID) (*models.Candidate, error) {
	for i := range r.candidates {
		if r.candidates[i].ID == id {
			return &r.candidates[i], nil
		}
	}
	return nil, repositories.ErrCandidateNotFound
}

func (r *fakeCandidateRepo) FindByJob(jobID uuid.UUID, withoutScoreOnly bool) ([]models.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Candidate
	for _, c := range r.candidates {
		if c.JobID != jobID {
			continue
		}
		if withoutScoreOnly && c.Score != nil {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCandidateRepo) ListByJob(jobID uuid.UUID) ([]models.Candidate, error) {
	return r.FindByJob(jobID, false)
}

func (r *fakeCandidateRepo) SaveMatchResult(jobID, candidateID uuid.UUID, result *models.MatchResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err, ok := r.saveErrors[candidateID]; ok {
		return err
	}

	for i := range r.candidates {
		if r.candidates[i].ID == candidateID && r.candidates[i].JobID == jobID {
			score := result.CompositeScore
			subscores := result.Subscores
			r.candidates[i].Score = &score
			r.candidates[i].Subscores = &subscores
			r.saves++
			return nil
		}
	}
	return repositories.ErrCandidateNotFound
}

func (r *fakeCandidateRepo) ClearMatchResults(jobID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.candidates {
		if r.candidates[i].JobID == jobID {
			r.candidates[i].Score = nil
			r.candidates[i].Subscores = nil
		}
	}
	return nil
}

func (r *fakeCandidateRepo) UpdateStatus(uuid.UUID, models.CandidateStatus) error { return nil }
func (r *fakeCandidateRepo) UpdateExtraction(uuid.UUID, *repositories.ExtractionUpdateData) error {
	return nil
}
func (r *fakeCandidateRepo) FindPendingExtractions(int) ([]models.Candidate, error) { return nil, nil }
func (r *fakeCandidateRepo) Delete(uuid.UUID) error                                 { return nil }
func (r *fakeCandidateRepo) CountPerJob() ([]models.CandidatesPerJob, error)        { return nil, nil }
func (r *fakeCandidateRepo) BestByJob(uuid.UUID) (*models.Candidate, error) {
	return nil, repositories.ErrCandidateNotFound
}

func newTestPipeline(t *testing.T, jobRepo *fakeJobRepo, candidateRepo *fakeCandidateRepo, eval SemanticEvaluator) MatchingPipeline {
	t.Helper()
	aggregator, err := NewScoreAggregator()
	require.NoError(t, err)
	scorer := NewDimensionScorer(eval, zap.NewNop())
	return NewMatchingPipeline(jobRepo, candidateRepo, scorer, aggregator, 2, zap.NewNop())
}

func matchableJob() *models.Job {
	return &models.Job{
		ID:   uuid.New(),
		Name: "Backend Engineer",
		Attributes: &models.AttributeSet{
			Education:        []string{"Bachelor's in Computer Science"},
			Experiences:      []string{"3 years backend engineer"},
			Responsibilities: []string{},
			TechSkills:       []string{"Python", "Go"},
			SoftSkills:       []string{"communication"},
		},
	}
}

func matchableCandidate(jobID uuid.UUID) models.Candidate {
	return models.Candidate{
		ID:    uuid.New(),
		JobID: jobID,
		Attributes: &models.AttributeSet{
			Education:        []string{"Bachelor's in Computer Science"},
			Experiences:      []string{"4 years backend engineer"},
			Responsibilities: []string{},
			TechSkills:       []string{"Python"},
			SoftSkills:       []string{"communication"},
		},
	}
}

func fixedEvaluator(score float64) evaluatorFunc {
	return func(models.Dimension, []string, []string) (models.DimensionResult, error) {
		return models.DimensionResult{Score: score, Justification: "fixed"}, nil
	}
}

func TestRunMatchingBatch_JobNotFound(t *testing.T) {
	jobRepo := &fakeJobRepo{jobs: map[uuid.UUID]*models.Job{}}
	candidateRepo := &fakeCandidateRepo{}
	pipeline := newTestPipeline(t, jobRepo, candidateRepo, fixedEvaluator(1))

	_, err := pipeline.RunMatchingBatch(context.Background(), uuid.New())
	require.ErrorIs(t, err, repositories.ErrJobNotFound)
}

func TestRunMatchingBatch_JobAttributesMissingIsFatal(t *testing.T) {
	job := matchableJob()
	job.Attributes = nil
	jobRepo := &fakeJobRepo{jobs: map[uuid.UUID]*models.Job{job.ID: job}}
	candidateRepo := &fakeCandidateRepo{}
	pipeline := newTestPipeline(t, jobRepo, candidateRepo, fixedEvaluator(1))

	_, err := pipeline.RunMatchingBatch(context.Background(), job.ID)
	require.ErrorIs(t, err, repositories.ErrJobNotFound)
}

func TestRunMatchingBatch_ScoresSkipsAndFailuresAreSeparate(t *testing.T) {
	job := matchableJob()
	jobRepo := &fakeJobRepo{jobs: map[uuid.UUID]*models.Job{job.ID: job}}

	scoreable := matchableCandidate(job.ID)
	unextracted := models.Candidate{ID: uuid.New(), JobID: job.ID} // extraction never succeeded
	unsaveable := matchableCandidate(job.ID)

	candidateRepo := &fakeCandidateRepo{
		candidates: []models.Candidate{scoreable, unextracted, unsaveable},
		saveErrors: map[uuid.UUID]error{unsaveable.ID: fmt.Errorf("connection reset")},
	}

	pipeline := newTestPipeline(t, jobRepo, candidateRepo, fixedEvaluator(1))

	batch, err := pipeline.RunMatchingBatch(context.Background(), job.ID)
	require.NoError(t, err)

	require.Len(t, batch.Scored, 1)
	assert.Equal(t, scoreable.ID, batch.Scored[0].CandidateID)
	assert.Equal(t, 1.0, batch.Scored[0].Result.CompositeScore)

	require.Len(t, batch.Skipped, 1)
	assert.Equal(t, unextracted.ID, batch.Skipped[0].CandidateID)
	assert.NotEmpty(t, batch.Skipped[0].Reason)

	require.Len(t, batch.Failed, 1)
	assert.Equal(t, unsaveable.ID, batch.Failed[0].CandidateID)
	assert.Contains(t, batch.Failed[0].Error, "connection reset")
}

func TestRunMatchingBatch_CompositeUsesFixedWeights(t *testing.T) {
	job := matchableJob()
	jobRepo := &fakeJobRepo{jobs: map[uuid.UUID]*models.Job{job.ID: job}}
	candidate := matchableCandidate(job.ID)
	candidateRepo := &fakeCandidateRepo{candidates: []models.Candidate{candidate}}

	// education 0.8, experience 0.6, tech 0.4, soft 1.0 -> 0.57
	eval := evaluatorFunc(func(dim models.Dimension, _, _ []string) (models.DimensionResult, error) {
		switch dim {
		case models.DimensionEducation:
			return models.DimensionResult{Score: 0.8}, nil
		case models.DimensionExperience:
			return models.DimensionResult{Score: 0.6}, nil
		case models.DimensionTechSkills:
			return models.DimensionResult{Score: 0.4}, nil
		default:
			return models.DimensionResult{Score: 1.0}, nil
		}
	})

	pipeline := newTestPipeline(t, jobRepo, candidateRepo, eval)

	batch, err := pipeline.RunMatchingBatch(context.Background(), job.ID)
	require.NoError(t, err)
	require.Len(t, batch.Scored, 1)

	result := batch.Scored[0].Result
	assert.Equal(t, 0.57, result.CompositeScore)
	assert.Equal(t, 0.8, result.Subscores.Education.Score)
	assert.Equal(t, 0.6, result.Subscores.Experience.Score)
	assert.Equal(t, 0.4, result.Subscores.TechSkills.Score)
	assert.Equal(t, 1.0, result.Subscores.SoftSkills.Score)
}

func TestRunMatchingBatch_EvaluatorFailureDegradesOnlyThatDimension(t *testing.T) {
	job := matchableJob()
	jobRepo := &fakeJobRepo{jobs: map[uuid.UUID]*models.Job{job.ID: job}}
	first := matchableCandidate(job.ID)
	second := matchableCandidate(job.ID)
	second.Attributes.TechSkills = []string{"Go", "Python"}
	candidateRepo := &fakeCandidateRepo{candidates: []models.Candidate{first, second}}

	// Tech-skill evaluations for the first candidate blow up; everything
	// else answers 1.0.
	eval := evaluatorFunc(func(dim models.Dimension, _, candidateItems []string) (models.DimensionResult, error) {
		if dim == models.DimensionTechSkills && len(candidateItems) == 1 && candidateItems[0] == "Python" {
			return models.DimensionResult{}, ErrEvaluatorUnavailable
		}
		return models.DimensionResult{Score: 1.0}, nil
	})

	pipeline := newTestPipeline(t, jobRepo, candidateRepo, eval)

	batch, err := pipeline.RunMatchingBatch(context.Background(), job.ID)
	require.NoError(t, err)
	require.Len(t, batch.Scored, 2)
	assert.Empty(t, batch.Skipped)
	assert.Empty(t, batch.Failed)

	degraded := batch.Scored[0].Result
	assert.Equal(t, 0.0, degraded.Subscores.TechSkills.Score)
	assert.Equal(t, "parsing failed", degraded.Subscores.TechSkills.Justification)
	// 0.15 + 0.25 + 0 + 0.10 = 0.50
	assert.Equal(t, 0.5, degraded.CompositeScore)

	healthy := batch.Scored[1].Result
	assert.Equal(t, 1.0, healthy.CompositeScore)
}

func TestRunMatchingBatch_IdempotentByAbsence(t *testing.T) {
	job := matchableJob()
	jobRepo := &fakeJobRepo{jobs: map[uuid.UUID]*models.Job{job.ID: job}}
	candidateRepo := &fakeCandidateRepo{candidates: []models.Candidate{
		matchableCandidate(job.ID),
		matchableCandidate(job.ID),
	}}

	pipeline := newTestPipeline(t, jobRepo, candidateRepo, fixedEvaluator(0.9))

	first, err := pipeline.RunMatchingBatch(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Len(t, first.Scored, 2)
	assert.Equal(t, 2, candidateRepo.saves)

	second, err := pipeline.RunMatchingBatch(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Empty(t, second.Scored, "already scored candidates must not be rescored")
	assert.Equal(t, 2, candidateRepo.saves, "no additional writes on rerun")
}

func TestRunMatchingBatch_Deterministic(t *testing.T) {
	job := matchableJob()

	run := func() *models.MatchBatch {
		jobRepo := &fakeJobRepo{jobs: map[uuid.UUID]*models.Job{job.ID: job}}
		candidates := []models.Candidate{
			matchableCandidate(job.ID),
			matchableCandidate(job.ID),
			matchableCandidate(job.ID),
		}
		// Same IDs in both runs so the batches are comparable.
		for i := range candidates {
			candidates[i].ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("candidate-%d", i)))
		}
		candidateRepo := &fakeCandidateRepo{candidates: candidates}
		pipeline := newTestPipeline(t, jobRepo, candidateRepo, fixedEvaluator(0.37))

		batch, err := pipeline.RunMatchingBatch(context.Background(), job.ID)
		require.NoError(t, err)
		return batch
	}

	assert.Equal(t, run(), run())
}
