package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultOpenAIBaseURL   = "https://api.openai.com/v1"
	DefaultOpenAIModel     = "gpt-4o-mini"
	DefaultAzureAPIVersion = "2024-07-18"
	openAIRequestTimeout   = 120 * time.Second
	maxErrorBodyInMessage  = 512
)

// OpenAIProvider calls the Chat Completions API, either on api.openai.com or
// on an Azure OpenAI deployment.
type OpenAIProvider struct {
	name        string
	apiKey      string
	endpoint    string // full chat/completions URL
	azure       bool
	model       string
	temperature float64
	client      *http.Client
}

var _ Provider = (*OpenAIProvider)(nil)

// OpenAIOption configures the OpenAI provider.
type OpenAIOption func(*OpenAIProvider)

// WithOpenAIBaseURL sets a custom base URL (proxies, tests).
func WithOpenAIBaseURL(base string) OpenAIOption {
	return func(p *OpenAIProvider) {
		p.endpoint = strings.TrimRight(base, "/") + "/chat/completions"
	}
}

// WithOpenAIModel sets the default model.
func WithOpenAIModel(model string) OpenAIOption {
	return func(p *OpenAIProvider) {
		if model != "" {
			p.model = model
		}
	}
}

// WithTemperature sets the default sampling temperature.
func WithTemperature(t float64) OpenAIOption {
	return func(p *OpenAIProvider) { p.temperature = t }
}

// WithOpenAIHTTPClient sets a custom HTTP client.
func WithOpenAIHTTPClient(client *http.Client) OpenAIOption {
	return func(p *OpenAIProvider) { p.client = client }
}

// NewOpenAIProvider creates a provider for api.openai.com.
func NewOpenAIProvider(apiKey string, opts ...OpenAIOption) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: %w", ErrNoAPIKey)
	}
	p := &OpenAIProvider{
		name:        ProviderOpenAI,
		apiKey:      apiKey,
		endpoint:    defaultOpenAIBaseURL + "/chat/completions",
		model:       DefaultOpenAIModel,
		temperature: DefaultTemperature,
		client:      &http.Client{Timeout: openAIRequestTimeout},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// NewAzureOpenAIProvider creates a provider for an Azure OpenAI deployment.
// The deployment name doubles as the model.
func NewAzureOpenAIProvider(apiKey, endpoint, deployment, apiVersion string, opts ...OpenAIOption) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("azure: %w", ErrNoAPIKey)
	}
	if endpoint == "" || deployment == "" {
		return nil, fmt.Errorf("azure: endpoint and deployment are required")
	}
	if apiVersion == "" {
		apiVersion = DefaultAzureAPIVersion
	}
	p := &OpenAIProvider{
		name:   ProviderAzure,
		apiKey: apiKey,
		endpoint: fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
			strings.TrimRight(endpoint, "/"), url.PathEscape(deployment), url.QueryEscape(apiVersion)),
		azure:       true,
		model:       deployment,
		temperature: DefaultTemperature,
		client:      &http.Client{Timeout: openAIRequestTimeout},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *OpenAIProvider) Name() string { return p.name }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateResponse sends a single chat completion request.
func (p *OpenAIProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	var messages []chatMessage
	if systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	body := chatRequest{
		Model:       stringOption(options, "model", p.model),
		Messages:    messages,
		Temperature: floatOption(options, "temperature", p.temperature),
	}
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("%s: marshal request: %w", p.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%s: create request: %w", p.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if p.azure {
		req.Header.Set("api-key", p.apiKey)
	} else {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: request failed: %w", p.name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%s: read body: %w", p.name, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := string(raw)
		if len(msg) > maxErrorBodyInMessage {
			msg = msg[:maxErrorBodyInMessage]
		}
		return "", fmt.Errorf("%s: status %d: %s", p.name, resp.StatusCode, msg)
	}

	var result chatResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("%s: decode response: %w", p.name, err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("%s: %w", p.name, ErrEmptyResponse)
	}
	text := strings.TrimSpace(result.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("%s: %w", p.name, ErrEmptyResponse)
	}
	return text, nil
}
