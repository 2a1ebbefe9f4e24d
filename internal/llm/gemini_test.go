package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGeminiModelMapping(t *testing.T) {
	assert.Equal(t, "gemini-2.5-flash", resolveModel("gemini-flash", geminiModels))
	assert.Equal(t, "gemini-2.5-flash-lite", resolveModel("gemini-lite", geminiModels))
	assert.Equal(t, "gemini-1.5-pro-002", resolveModel("gemini-1.5-pro-002", geminiModels))
}

func TestGeminiClientConfig(t *testing.T) {
	cc, err := geminiClientConfig(GeminiConfig{APIKey: "k", Project: "p", Location: "l"})
	require.NoError(t, err)
	assert.Equal(t, genai.BackendGeminiAPI, cc.Backend, "an API key wins over Vertex settings")

	cc, err = geminiClientConfig(GeminiConfig{Project: "p", Location: "us-central1"})
	require.NoError(t, err)
	assert.Equal(t, genai.BackendVertexAI, cc.Backend)
	assert.Equal(t, "us-central1", cc.Location)

	_, err = geminiClientConfig(GeminiConfig{Project: "p"})
	assert.Error(t, err)
}

func TestBuildGeminiSchema_CareerPathShape(t *testing.T) {
	def := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"title": map[string]any{"type": "string"},
			"courses": map[string]any{
				"type":     "array",
				"minItems": 4,
				"maxItems": 6,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name":  map[string]any{"type": "string"},
						"hours": map[string]any{"type": "integer"},
						"level": map[string]any{"type": "string", "enum": []string{"beginner", "advanced"}},
					},
					"required": []string{"name", "hours", "level"},
				},
			},
		},
		"required": []any{"title", "courses"},
	}

	s := buildGeminiSchema(def)
	assert.Equal(t, genai.TypeObject, s.Type)
	assert.Equal(t, []string{"title", "courses"}, s.Required)
	assert.Equal(t, []string{"title", "courses"}, s.PropertyOrdering)

	courses := s.Properties["courses"]
	require.NotNil(t, courses)
	assert.Equal(t, genai.TypeArray, courses.Type)
	require.NotNil(t, courses.MinItems)
	require.NotNil(t, courses.MaxItems)
	assert.EqualValues(t, 4, *courses.MinItems)
	assert.EqualValues(t, 6, *courses.MaxItems)

	item := courses.Items
	require.NotNil(t, item)
	assert.Equal(t, genai.TypeInteger, item.Properties["hours"].Type)
	assert.Equal(t, []string{"beginner", "advanced"}, item.Properties["level"].Enum)
}

func TestBuildGeminiSchema_NullableUnion(t *testing.T) {
	s := buildGeminiSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"start_date": map[string]any{"type": []any{"string", "null"}},
		},
	})
	prop := s.Properties["start_date"]
	require.NotNil(t, prop)
	assert.Equal(t, genai.TypeString, prop.Type)
	require.NotNil(t, prop.Nullable)
	assert.True(t, *prop.Nullable)
	assert.Nil(t, s.PropertyOrdering)
}

func TestMapGeminiStopReason(t *testing.T) {
	resp := func(r genai.FinishReason) *genai.GenerateContentResponse {
		return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{FinishReason: r}}}
	}
	assert.Equal(t, "end", mapGeminiStopReason(resp(genai.FinishReasonStop)))
	assert.Equal(t, "max_tokens", mapGeminiStopReason(resp(genai.FinishReasonMaxTokens)))
	assert.Equal(t, "error", mapGeminiStopReason(resp(genai.FinishReasonSafety)))
	assert.Equal(t, "end", mapGeminiStopReason(&genai.GenerateContentResponse{}))
}

func TestMapGeminiError(t *testing.T) {
	var rl *ErrRateLimit
	assert.ErrorAs(t, mapGeminiError(genai.APIError{Code: 429}), &rl)

	var un *ErrProviderUnavailable
	err := mapGeminiError(genai.APIError{Code: 504})
	require.ErrorAs(t, err, &un)
	assert.True(t, un.Timeout)

	assert.True(t, IsUnavailable(mapGeminiError(genai.APIError{Code: 500})))
}
