package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type GeminiService interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	// Generate runs the model with a fixed system instruction and zero
	// temperature. Scoring and extraction both depend on identical inputs
	// producing identical outputs.
	Generate(ctx context.Context, systemInstruction, prompt string) (string, error)
	GenerateWithRetry(ctx context.Context, systemInstruction, prompt string, maxRetries int) (string, error)
}

type geminiService struct {
	client     *genai.Client
	modelName  string
	embedModel string
	retryDelay time.Duration
	logger     *zap.Logger
}

func NewGeminiService(apiKey, modelName, embedModel string, retryDelay time.Duration, logger *zap.Logger) (GeminiService, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:     client,
		modelName:  modelName,
		embedModel: embedModel,
		retryDelay: retryDelay,
		logger:     logger,
	}, nil
}

// GenerateEmbedding implements GeminiService.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	// Truncate text if too long (max ~10000 tokens for embedding)
	if len(text) > 40000 {
		text = text[:40000]
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// Generate implements GeminiService.
func (g *geminiService) Generate(ctx context.Context, systemInstruction, prompt string) (string, error) {
	temperature := float32(0)
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	}
	if systemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(systemInstruction, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		g.logger.Warn("gemini generate content failed", zap.Error(err))
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}

	return text, nil
}

// GenerateWithRetry implements GeminiService.
func (g *geminiService) GenerateWithRetry(ctx context.Context, systemInstruction, prompt string, maxRetries int) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		result, err := g.Generate(ctx, systemInstruction, prompt)
		if err == nil {
			return result, nil
		}

		lastErr = err

		if attempt < maxRetries {
			g.logger.Warn("gemini attempt failed, retrying",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			// Linear backoff between attempts.
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("context cancelled: %w", ctx.Err())
			case <-time.After(g.retryDelay * time.Duration(attempt)):
			}
		}
	}

	return "", fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}
