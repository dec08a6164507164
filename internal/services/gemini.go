package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	DefaultGeminiModel = "gemini-2.5-flash"

	maxOutputTokens = 8192
)

// GeminiService issues schema-constrained generation requests.
type GeminiService interface {
	GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema, temperature float32) (string, error)
	Model() string
}

type geminiService struct {
	client    *genai.Client
	modelName string
	logger    *zap.Logger
}

// NewGeminiService creates the client once; the returned service is safe for
// concurrent use and should be shared across requests.
func NewGeminiService(ctx context.Context, apiKey, model string, logger *zap.Logger) (GeminiService, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = DefaultGeminiModel
	}

	logger.Info("gemini client ready", zap.String("model", model))

	return &geminiService{
		client:    client,
		modelName: model,
		logger:    logger,
	}, nil
}

// GenerateStructured implements GeminiService.
func (g *geminiService) GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema, temperature float32) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		MaxOutputTokens:  maxOutputTokens,
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if resp == nil {
		return "", errors.New("no response generated (nil response)")
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		if len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
			g.logger.Warn("gemini returned no text",
				zap.String("finish_reason", string(resp.Candidates[0].FinishReason)))
		}
		return "", errors.New("no text content in response")
	}

	return text, nil
}

func (g *geminiService) Model() string {
	return g.modelName
}
