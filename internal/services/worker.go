package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"talentmatch/cv-matcher/internal/models"
	"talentmatch/cv-matcher/internal/repositories"
)

// Worker drains the candidate extraction queue: parse the uploaded CV,
// extract its attribute set, and index the profile for semantic search.
type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueCandidate(candidateID uuid.UUID)
}

type worker struct {
	candidateRepo repositories.CandidateRepository
	extractor     ExtractionService
	pdfParser     PDFParserService
	gemini        GeminiService
	qdrant        QdrantService
	logger        *zap.Logger

	queue       chan uuid.UUID
	concurrency int
	wg          sync.WaitGroup
	stopChan    chan struct{}
}

func NewWorker(
	candidateRepo repositories.CandidateRepository,
	extractor ExtractionService,
	pdfParser PDFParserService,
	gemini GeminiService,
	qdrant QdrantService,
	concurrency int,
	logger *zap.Logger,
) Worker {
	return &worker{
		candidateRepo: candidateRepo,
		extractor:     extractor,
		pdfParser:     pdfParser,
		gemini:        gemini,
		qdrant:        qdrant,
		logger:        logger,
		queue:         make(chan uuid.UUID, 100),
		concurrency:   concurrency,
		stopChan:      make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.logger.Info("starting extraction worker", zap.Int("concurrency", w.concurrency))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processQueue(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPending(ctx)
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.logger.Info("stopping extraction worker")
	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("extraction worker stopped")
}

// EnqueueCandidate implements Worker.
func (w *worker) EnqueueCandidate(candidateID uuid.UUID) {
	select {
	case w.queue <- candidateID:
		w.logger.Debug("candidate enqueued", zap.String("candidate_id", candidateID.String()))
	case <-w.stopChan:
		w.logger.Warn("worker stopped, cannot enqueue candidate",
			zap.String("candidate_id", candidateID.String()))
	}
}

func (w *worker) processQueue(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			w.logger.Debug("worker goroutine stopped", zap.Int("worker", workerID))
			return
		case candidateID := <-w.queue:
			if err := w.extractCandidate(ctx, candidateID); err != nil {
				w.logger.Warn("candidate extraction failed",
					zap.Int("worker", workerID),
					zap.String("candidate_id", candidateID.String()),
					zap.Error(err),
				)
			}
		}
	}
}

func (w *worker) pollPending(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			pending, err := w.candidateRepo.FindPendingExtractions(10)
			if err != nil {
				w.logger.Warn("failed to fetch pending extractions", zap.Error(err))
				continue
			}

			for _, candidate := range pending {
				w.EnqueueCandidate(candidate.ID)
			}
		}
	}
}

func (w *worker) extractCandidate(ctx context.Context, candidateID uuid.UUID) error {
	if err := w.candidateRepo.UpdateStatus(candidateID, models.StatusProcessing); err != nil {
		return err
	}

	candidate, err := w.candidateRepo.FindByID(candidateID)
	if err != nil {
		return err
	}

	cvText, err := w.pdfParser.ExtractText(candidate.FilePath)
	if err != nil {
		msg := err.Error()
		record := &models.ExtractionRecord{
			Status:        models.ExtractionFailed,
			Error:         &msg,
			ExtractedAt:   time.Now().UTC(),
			Provider:      extractionProvider,
			PromptVersion: extractionPromptVersion,
		}
		return w.candidateRepo.UpdateExtraction(candidateID, &repositories.ExtractionUpdateData{
			Extraction: record,
			Status:     models.StatusFailed,
		})
	}

	profile, record := w.extractor.ExtractCandidate(ctx, cvText)
	if profile == nil {
		return w.candidateRepo.UpdateExtraction(candidateID, &repositories.ExtractionUpdateData{
			Extraction: record,
			Status:     models.StatusFailed,
		})
	}

	attrs := profile.Attributes
	err = w.candidateRepo.UpdateExtraction(candidateID, &repositories.ExtractionUpdateData{
		Name:       &profile.Name,
		Email:      &profile.Email,
		Summary:    &profile.Summary,
		Attributes: &attrs,
		Extraction: record,
		Status:     models.StatusCompleted,
	})
	if err != nil {
		return err
	}

	// Indexing is best effort: a missing embedding only degrades search,
	// never the extraction itself.
	if err := w.indexCandidate(ctx, candidate, profile); err != nil {
		w.logger.Warn("failed to index candidate profile",
			zap.String("candidate_id", candidateID.String()),
			zap.Error(err),
		)
	}

	w.logger.Info("candidate extracted",
		zap.String("candidate_id", candidateID.String()),
		zap.String("job_id", candidate.JobID.String()),
	)
	return nil
}

func (w *worker) indexCandidate(ctx context.Context, candidate *models.Candidate, profile *CandidateProfile) error {
	text := profileIndexText(profile)
	embedding, err := w.gemini.GenerateEmbedding(ctx, text)
	if err != nil {
		return err
	}
	return w.qdrant.UpsertCandidate(ctx, candidate.ID, candidate.JobID, profile.Name, text, embedding)
}

func profileIndexText(profile *CandidateProfile) string {
	parts := []string{profile.Summary}
	parts = append(parts, profile.Attributes.Experiences...)
	parts = append(parts, profile.Attributes.TechSkills...)
	parts = append(parts, profile.Attributes.SoftSkills...)

	var nonEmpty []string
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			nonEmpty = append(nonEmpty, part)
		}
	}
	return strings.Join(nonEmpty, "\n")
}
