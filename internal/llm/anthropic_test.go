package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnthropicProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := anthropic.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(server.URL),
		option.WithMaxRetries(0),
	)
	return &AnthropicProvider{client: &client, model: "claude-haiku-4-5-20251001"}
}

func anthropicReply(text, stop string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":          "msg_test",
			"type":        "message",
			"role":        "assistant",
			"content":     []map[string]any{{"type": "text", "text": text}},
			"model":       "claude-haiku-4-5-20251001",
			"stop_reason": stop,
			"usage": map[string]any{
				"input_tokens":            40,
				"cache_read_input_tokens": 900,
				"output_tokens":           25,
			},
		})
	}
}

func anthropicError(status int, header http.Header) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for k, v := range header {
			w.Header()[k] = v
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"nope"}}`))
	}
}

func TestAnthropicConversationTurn(t *testing.T) {
	var body map[string]any
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		anthropicReply("Python is a programming language.", "end_turn")(w, r)
	})

	resp, err := p.Generate(context.Background(), Request{
		System: "You are a helpful learning assistant.",
		Messages: []Message{
			{Role: RoleAssistant, Content: "stale reply from a trimmed history"},
			{Role: RoleUser, Content: "Hi"},
			{Role: RoleAssistant, Content: "Hello!"},
			{Role: RoleUser, Content: "What is Python?"},
		},
		MaxTokens:   800,
		Temperature: 0.7,
	})
	require.NoError(t, err)

	assert.Equal(t, "Python is a programming language.", resp.Text())
	assert.Equal(t, "end", resp.StopReason)
	assert.Equal(t, 940, resp.Usage.InputTokens)
	assert.Equal(t, 965, resp.Usage.TotalTokens)

	msgs, _ := body["messages"].([]any)
	require.Len(t, msgs, 3, "leading assistant turn is dropped")
	first, _ := msgs[0].(map[string]any)
	assert.Equal(t, "user", first["role"])
	assert.EqualValues(t, 800, body["max_tokens"])
}

func TestAnthropicDefaultsTokenBudget(t *testing.T) {
	params := buildAnthropicParams("m", UserPrompt("", "classify", 0, 0))
	assert.EqualValues(t, defaultAnthropicMaxTokens, params.MaxTokens)
	assert.Empty(t, params.System)
}

func TestAnthropicCachesLongSystemPrompts(t *testing.T) {
	short := buildAnthropicParams("m", UserPrompt("Reply with one word.", "hi", 0, 10))
	require.Len(t, short.System, 1)
	assert.Empty(t, short.System[0].CacheControl.Type)

	long := buildAnthropicParams("m", UserPrompt(strings.Repeat("Extract the filter. ", 300), "hi", 0, 10))
	require.Len(t, long.System, 1)
	assert.NotEmpty(t, long.System[0].CacheControl.Type)
}

func TestAnthropicRejectsHistoryWithoutUserTurn(t *testing.T) {
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleAssistant, Content: "hello"}}})
	assert.Error(t, err)
}

func TestAnthropicTruncatedStructuredOutput(t *testing.T) {
	p := newTestAnthropicProvider(t, anthropicReply(`{"courses":[`, "max_tokens"))
	_, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "suggest"}},
		Schema:   &Schema{Name: "test-anthropic-cut", Definition: map[string]any{"type": "object"}},
	})
	var cut *ErrMaxTokensExceeded
	assert.ErrorAs(t, err, &cut)
}

func TestAnthropicSchemaViolation(t *testing.T) {
	p := newTestAnthropicProvider(t, anthropicReply(`{"courses":"many"}`, "end_turn"))
	_, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "suggest"}},
		Schema: &Schema{Name: "test-anthropic-shape", Definition: map[string]any{
			"type":       "object",
			"properties": map[string]any{"courses": map[string]any{"type": "array"}},
		}},
	})
	assert.True(t, IsInvalidResponse(err))
}

func TestAnthropicEmptyContent(t *testing.T) {
	p := newTestAnthropicProvider(t, anthropicReply("   ", "refusal"))
	_, err := p.Generate(context.Background(), UserPrompt("", "hi", 0, 10))
	assert.True(t, IsInvalidResponse(err))
}

func TestAnthropicErrorMapping(t *testing.T) {
	t.Run("rate limit with retry-after", func(t *testing.T) {
		p := newTestAnthropicProvider(t, anthropicError(http.StatusTooManyRequests, http.Header{"Retry-After": {"7"}}))
		_, err := p.Generate(context.Background(), UserPrompt("", "hi", 0, 10))
		var rl *ErrRateLimit
		require.ErrorAs(t, err, &rl)
		assert.Equal(t, 7*time.Second, rl.RetryAfter)
	})

	t.Run("overloaded", func(t *testing.T) {
		p := newTestAnthropicProvider(t, anthropicError(statusOverloaded, nil))
		_, err := p.Generate(context.Background(), UserPrompt("", "hi", 0, 10))
		var un *ErrProviderUnavailable
		require.ErrorAs(t, err, &un)
		assert.False(t, un.Timeout)
	})

	t.Run("gateway timeout", func(t *testing.T) {
		p := newTestAnthropicProvider(t, anthropicError(http.StatusGatewayTimeout, nil))
		_, err := p.Generate(context.Background(), UserPrompt("", "hi", 0, 10))
		var un *ErrProviderUnavailable
		require.ErrorAs(t, err, &un)
		assert.True(t, un.Timeout)
	})
}

func TestAnthropicStopReasons(t *testing.T) {
	assert.Equal(t, "end", mapAnthropicStopReason("end_turn"))
	assert.Equal(t, "end", mapAnthropicStopReason("stop_sequence"))
	assert.Equal(t, "max_tokens", mapAnthropicStopReason("max_tokens"))
	assert.Equal(t, "error", mapAnthropicStopReason("refusal"))
}

func TestNormalizeTurns(t *testing.T) {
	got := normalizeTurns([]Message{
		{Role: RoleAssistant, Content: "orphan"},
		{Role: RoleUser, Content: "first"},
		{Role: RoleUser, Content: " second "},
		{Role: RoleAssistant, Content: ""},
		{Role: RoleAssistant, Content: "answer"},
	})
	assert.Equal(t, []Message{
		{Role: RoleUser, Content: "first\n\nsecond"},
		{Role: RoleAssistant, Content: "answer"},
	}, got)
	assert.Empty(t, normalizeTurns(nil))
}

func TestAnthropicModelMapping(t *testing.T) {
	assert.Equal(t, "claude-sonnet-4-20250514", resolveModel("claude-sonnet", anthropicModels))
	assert.Equal(t, "claude-opus-4-1", resolveModel("claude-opus-4-1", anthropicModels))
}
