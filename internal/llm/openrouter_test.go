package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenRouterProvider(t *testing.T) {
	tests := []struct {
		name    string
		cfg     OpenRouterConfig
		wantErr bool
		model   string
	}{
		{"vendor model passes through", OpenRouterConfig{APIKey: "sk-or", Model: "anthropic/claude-3-haiku"}, false, "anthropic/claude-3-haiku"},
		{"friendly names are not aliased", OpenRouterConfig{APIKey: "sk-or", Model: "gpt-4o-mini"}, false, "gpt-4o-mini"},
		{"missing key", OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"}, true, ""},
		{"missing model", OpenRouterConfig{APIKey: "sk-or"}, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewOpenRouterProvider(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.model, p.ModelID())
		})
	}
}

func TestOpenRouterSendsAttributionHeaders(t *testing.T) {
	var got http.Header
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		got = r.Header.Clone()
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "gen-1",
			"object": "chat.completion",
			"model": "meta-llama/llama-3-8b",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "report"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 1, "total_tokens": 13}
		}`))
	}))
	defer srv.Close()

	p, err := NewOpenRouterProvider(OpenRouterConfig{
		APIKey:  "sk-or-test",
		Model:   "meta-llama/llama-3-8b",
		BaseURL: srv.URL,
		SiteURL: "https://lms.example.com",
		AppName: "coursekit",
	})
	require.NoError(t, err)

	resp, err := p.Generate(context.Background(), UserPrompt("Classify.", "Who finished Python?", 0, 10))
	require.NoError(t, err)

	assert.Equal(t, "report", resp.Text())
	assert.Equal(t, 13, resp.Usage.TotalTokens)
	assert.Equal(t, "end", resp.StopReason)
	assert.Equal(t, "Bearer sk-or-test", got.Get("Authorization"))
	assert.Equal(t, "https://lms.example.com", got.Get("HTTP-Referer"))
	assert.Equal(t, "coursekit", got.Get("X-Title"))
	assert.Equal(t, "meta-llama/llama-3-8b", body["model"])
}

func TestOpenRouterWithoutAttribution(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "hi"}, "finish_reason": "stop"}]}`))
	}))
	defer srv.Close()

	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "k", Model: "m/x", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), UserPrompt("", "hello", 0, 10))
	require.NoError(t, err)
	assert.Empty(t, got.Get("X-Title"))
	assert.Empty(t, got.Get("HTTP-Referer"))
}
