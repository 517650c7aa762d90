package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIProvider_GenerateResponse(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  **Summary**\n  "}}]}`))
	}))
	defer srv.Close()

	p, err := NewOpenAIProvider("sk-test", WithOpenAIBaseURL(srv.URL+"/v1/"))
	require.NoError(t, err)

	text, err := p.GenerateResponse(context.Background(), "prompt", "system", nil)
	require.NoError(t, err)
	assert.Equal(t, "**Summary**", text)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, 0.2, got.Temperature)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "prompt", got.Messages[1].Content)
	assert.Equal(t, ProviderOpenAI, p.Name())
}

func TestOpenAIProvider_OptionsOverride(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	p, err := NewOpenAIProvider("k", WithOpenAIBaseURL(srv.URL))
	require.NoError(t, err)
	_, err = p.GenerateResponse(context.Background(), "p", "", map[string]interface{}{
		"model":       "gpt-4o",
		"temperature": 0.7,
	})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", got.Model)
	assert.Equal(t, 0.7, got.Temperature)
	require.Len(t, got.Messages, 1, "no system message when the system prompt is empty")
}

func TestAzureOpenAIProvider_Request(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/deployments/fpna-mini/chat/completions", r.URL.Path)
		assert.Equal(t, "2024-07-18", r.URL.Query().Get("api-version"))
		assert.Equal(t, "azure-key", r.Header.Get("api-key"))
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"azure text"}}]}`))
	}))
	defer srv.Close()

	p, err := NewAzureOpenAIProvider("azure-key", srv.URL+"/", "fpna-mini", "")
	require.NoError(t, err)
	assert.Equal(t, ProviderAzure, p.Name())

	text, err := p.GenerateResponse(context.Background(), "p", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "azure text", text)
}

func TestOpenAIProvider_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{name: "http error", status: http.StatusTooManyRequests, body: `{"error":"rate limited"}`, wantMsg: "status 429"},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, wantErr: ErrEmptyResponse},
		{name: "blank content", status: http.StatusOK, body: `{"choices":[{"message":{"content":"  "}}]}`, wantErr: ErrEmptyResponse},
		{name: "bad json", status: http.StatusOK, body: `not json`, wantMsg: "decode response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p, err := NewOpenAIProvider("k", WithOpenAIBaseURL(srv.URL))
			require.NoError(t, err)
			_, err = p.GenerateResponse(context.Background(), "p", "", nil)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestNewProviders_RequireKeys(t *testing.T) {
	_, err := NewOpenAIProvider("")
	assert.ErrorIs(t, err, ErrNoAPIKey)

	_, err = NewAzureOpenAIProvider("", "https://x", "d", "")
	assert.ErrorIs(t, err, ErrNoAPIKey)

	_, err = NewAzureOpenAIProvider("k", "", "d", "")
	assert.Error(t, err)

	_, err = (&GeminiProvider{}).GenerateResponse(context.Background(), "p", "", nil)
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestGeminiProvider_GenerateResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "gemini-test:generateContent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"gemini text"}]}}]}`))
	}))
	defer srv.Close()

	p := &GeminiProvider{APIKey: "g", Model: "gemini-test", BaseURL: srv.URL}
	text, err := p.GenerateResponse(context.Background(), "prompt", "system", nil)
	require.NoError(t, err)
	assert.Equal(t, "gemini text", text)
}

func TestSelect(t *testing.T) {
	full := Settings{
		AzureKey: "a", AzureEndpoint: "https://az", AzureDeployment: "dep",
		OpenAIKey: "o",
		GeminiKey: "g",
	}

	tests := []struct {
		name     string
		settings Settings
		wantName string // empty means no provider
		wantErr  error
	}{
		{name: "azure first", settings: full, wantName: ProviderAzure},
		{name: "partial azure skipped", settings: Settings{AzureKey: "a", OpenAIKey: "o"}, wantName: ProviderOpenAI},
		{name: "gemini last", settings: Settings{GeminiKey: "g"}, wantName: ProviderGemini},
		{name: "nothing configured", settings: Settings{}},
		{name: "forced fallback", settings: func() Settings { s := full; s.Provider = "fallback"; return s }()},
		{name: "forced gemini", settings: func() Settings { s := full; s.Provider = "Gemini"; return s }(), wantName: ProviderGemini},
		{name: "forced openai without key", settings: Settings{Provider: "openai"}, wantErr: ErrNoAPIKey},
		{name: "forced gemini without key", settings: Settings{Provider: "gemini"}, wantErr: ErrNoAPIKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Select(tt.settings)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.wantName == "" {
				assert.Nil(t, p)
				return
			}
			require.NotNil(t, p)
			assert.Equal(t, tt.wantName, p.Name())
		})
	}

	_, err := Select(Settings{Provider: "claude"})
	assert.ErrorContains(t, err, "unknown narrative provider")
}
