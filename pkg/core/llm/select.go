package llm

import (
	"fmt"
	"strings"
)

// Provider choices accepted by Settings.Provider.
const (
	ChoiceAuto     = "auto"
	ChoiceFallback = "fallback"
)

// Settings carries the credentials and model choices for every provider.
type Settings struct {
	// Provider forces a provider: auto, azure, openai, gemini or fallback.
	Provider string

	AzureKey        string
	AzureEndpoint   string
	AzureDeployment string
	AzureAPIVersion string

	OpenAIKey   string
	OpenAIModel string

	GeminiKey   string
	GeminiModel string

	Temperature float64
}

func (s Settings) azureConfigured() bool {
	return s.AzureKey != "" && s.AzureEndpoint != "" && s.AzureDeployment != ""
}

// Select picks the provider. With Provider set to auto (or empty) the first
// configured of Azure, OpenAI and Gemini wins; nil means no provider is
// configured and the caller should use its rule-based text. Forcing a
// provider without its credentials is an error.
func Select(s Settings) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(s.Provider)) {
	case "", ChoiceAuto:
		switch {
		case s.azureConfigured():
			return newAzure(s)
		case s.OpenAIKey != "":
			return newOpenAI(s)
		case s.GeminiKey != "":
			return newGemini(s)
		}
		return nil, nil
	case ChoiceFallback:
		return nil, nil
	case ProviderAzure:
		if s.AzureKey == "" {
			return nil, fmt.Errorf("azure: %w", ErrNoAPIKey)
		}
		return newAzure(s)
	case ProviderOpenAI:
		return newOpenAI(s)
	case ProviderGemini:
		if s.GeminiKey == "" {
			return nil, fmt.Errorf("gemini: %w", ErrNoAPIKey)
		}
		return newGemini(s)
	default:
		return nil, fmt.Errorf("unknown narrative provider %q", s.Provider)
	}
}

func newAzure(s Settings) (Provider, error) {
	return NewAzureOpenAIProvider(s.AzureKey, s.AzureEndpoint, s.AzureDeployment, s.AzureAPIVersion,
		WithTemperature(temperatureOrDefault(s.Temperature)))
}

func newOpenAI(s Settings) (Provider, error) {
	return NewOpenAIProvider(s.OpenAIKey,
		WithOpenAIModel(s.OpenAIModel),
		WithTemperature(temperatureOrDefault(s.Temperature)))
}

func newGemini(s Settings) (Provider, error) {
	return &GeminiProvider{APIKey: s.GeminiKey, Model: s.GeminiModel, Temperature: s.Temperature}, nil
}

func temperatureOrDefault(t float64) float64 {
	if t == 0 {
		return DefaultTemperature
	}
	return t
}
