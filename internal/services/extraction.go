package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"talentmatch/cv-matcher/internal/models"
)

const (
	extractionProvider      = "gemini"
	extractionPromptVersion = "v1"
)

// CandidateProfile is the full payload extracted from one CV: identity fields
// plus the scored attribute set.
type CandidateProfile struct {
	Name       string
	Email      string
	Summary    string
	Attributes models.AttributeSet
}

// ExtractionService turns free text into attribute sets. It never returns an
// error alongside a nil record: a failed extraction yields a failed
// ExtractionRecord and nil attributes, making the owner unscoreable.
type ExtractionService interface {
	ExtractJob(ctx context.Context, description string) (*models.AttributeSet, *models.ExtractionRecord)
	ExtractCandidate(ctx context.Context, cvText string) (*CandidateProfile, *models.ExtractionRecord)
}

type extractionService struct {
	gemini        GeminiService
	promptBuilder *PromptBuilder
	modelName     string
	maxRetries    int
	logger        *zap.Logger
}

func NewExtractionService(gemini GeminiService, modelName string, maxRetries int, logger *zap.Logger) ExtractionService {
	return &extractionService{
		gemini:        gemini,
		promptBuilder: NewPromptBuilder(),
		modelName:     modelName,
		maxRetries:    maxRetries,
		logger:        logger,
	}
}

func (e *extractionService) ExtractJob(ctx context.Context, description string) (*models.AttributeSet, *models.ExtractionRecord) {
	prompt := e.promptBuilder.BuildJobExtractionPrompt(description)

	raw, err := e.gemini.GenerateWithRetry(ctx, "", prompt, e.maxRetries)
	if err != nil {
		return nil, e.failedRecord(fmt.Errorf("job extraction failed: %w", err))
	}

	var attrs models.AttributeSet
	if err := json.Unmarshal([]byte(stripFences(raw)), &attrs); err != nil {
		e.logger.Warn("job extraction output unparseable", zap.Error(err))
		return nil, e.failedRecord(fmt.Errorf("failed to parse extraction output: %w", err))
	}

	attrs.Normalize()
	return &attrs, e.succeededRecord()
}

func (e *extractionService) ExtractCandidate(ctx context.Context, cvText string) (*CandidateProfile, *models.ExtractionRecord) {
	prompt := e.promptBuilder.BuildCVExtractionPrompt(cvText)

	raw, err := e.gemini.GenerateWithRetry(ctx, "", prompt, e.maxRetries)
	if err != nil {
		return nil, e.failedRecord(fmt.Errorf("cv extraction failed: %w", err))
	}

	var payload struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Summary string `json:"summary"`
		models.AttributeSet
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &payload); err != nil {
		e.logger.Warn("cv extraction output unparseable", zap.Error(err))
		return nil, e.failedRecord(fmt.Errorf("failed to parse extraction output: %w", err))
	}

	payload.AttributeSet.Normalize()
	profile := &CandidateProfile{
		Name:       payload.Name,
		Email:      payload.Email,
		Summary:    payload.Summary,
		Attributes: payload.AttributeSet,
	}
	return profile, e.succeededRecord()
}

func (e *extractionService) succeededRecord() *models.ExtractionRecord {
	return &models.ExtractionRecord{
		Status:        models.ExtractionSucceeded,
		ExtractedAt:   time.Now().UTC(),
		Provider:      extractionProvider,
		Model:         e.modelName,
		PromptVersion: extractionPromptVersion,
	}
}

func (e *extractionService) failedRecord(err error) *models.ExtractionRecord {
	msg := err.Error()
	return &models.ExtractionRecord{
		Status:        models.ExtractionFailed,
		Error:         &msg,
		ExtractedAt:   time.Now().UTC(),
		Provider:      extractionProvider,
		Model:         e.modelName,
		PromptVersion: extractionPromptVersion,
	}
}
