package services

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// AIClient is the single capability a pipeline stage needs from the model
// provider: text in, text out.
type AIClient interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

type GeminiAIClient struct {
	client      *genai.Client
	tracker     *CostTracker
	model       string
	temperature float32
}

type GeminiAIClientOption = func(client *GeminiAIClient) error

func NewGeminiAIClient(opts ...GeminiAIClientOption) (*GeminiAIClient, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create AI client: %w", err)
	}
	gemini := GeminiAIClient{
		client:      client,
		model:       "gemini-1.5-pro",
		temperature: 0.1,
	}
	if err := applyFuncOptions(&gemini, opts...); err != nil {
		return nil, fmt.Errorf("failed to apply options: %w", err)
	}
	return &gemini, nil
}

func WithModel(model string) GeminiAIClientOption {
	return func(client *GeminiAIClient) error {
		client.model = model
		return nil
	}
}

func WithTemperature(temperature float32) GeminiAIClientOption {
	return func(client *GeminiAIClient) error {
		client.temperature = temperature
		return nil
	}
}

func WithCostTracker(tracker *CostTracker) GeminiAIClientOption {
	return func(client *GeminiAIClient) error {
		client.tracker = tracker
		return nil
	}
}

func (g *GeminiAIClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	temperature := g.temperature
	cfg := &genai.GenerateContentConfig{Temperature: &temperature}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if g.tracker != nil && result.UsageMetadata != nil {
		um := result.UsageMetadata
		g.tracker.AddTokens(int(um.PromptTokenCount), int(um.TotalTokenCount-um.PromptTokenCount))
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("model returned an empty response")
	}

	return text, nil
}
