package llm

import (
	"context"
	"errors"
)

// Provider names, as recorded in the run manifest.
const (
	ProviderAzure  = "azure"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

var (
	// ErrNoAPIKey means the provider has no credentials configured.
	ErrNoAPIKey = errors.New("no API key configured")
	// ErrEmptyResponse means the provider answered without any text.
	ErrEmptyResponse = errors.New("empty response from provider")
)

// DefaultTemperature keeps summaries close to the figures they describe.
const DefaultTemperature = 0.2

// Provider is the interface for all LLM providers.
type Provider interface {
	// Name identifies the provider in logs and the run manifest.
	Name() string
	// GenerateResponse sends prompt and returns the model's text. Recognised
	// options are "model" (string) and "temperature" (float64).
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
}

func stringOption(options map[string]interface{}, key, fallback string) string {
	if val, ok := options[key].(string); ok && val != "" {
		return val
	}
	return fallback
}

func floatOption(options map[string]interface{}, key string, fallback float64) float64 {
	switch val := options[key].(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	}
	return fallback
}
