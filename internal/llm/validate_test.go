package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quizSchema() *Schema {
	return &Schema{
		Name:        "test-quiz",
		Description: "Five-question quiz",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"questions": map[string]any{
					"type":     "array",
					"minItems": 1,
					"maxItems": 5,
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"q":            map[string]any{"type": "string"},
							"type":         map[string]any{"type": "string", "enum": []string{"mcq", "tf"}},
							"options":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
							"answer_index": map[string]any{"type": "integer", "minimum": 0},
						},
						"required": []string{"q", "type"},
					},
				},
			},
			"required": []string{"questions"},
		},
	}
}

func TestValidateJSON(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		valid bool
	}{
		{"mcq item", `{"questions":[{"q":"What is Go?","type":"mcq","options":["A","B"],"answer_index":1}]}`, true},
		{"tf item without options", `{"questions":[{"q":"Go has generics.","type":"tf"}]}`, true},
		{"missing questions", `{}`, false},
		{"unknown kind", `{"questions":[{"q":"x","type":"essay"}]}`, false},
		{"negative answer index", `{"questions":[{"q":"x","type":"mcq","answer_index":-1}]}`, false},
		{"too many items", `{"questions":[{"q":"1","type":"tf"},{"q":"2","type":"tf"},{"q":"3","type":"tf"},{"q":"4","type":"tf"},{"q":"5","type":"tf"},{"q":"6","type":"tf"}]}`, false},
		{"fenced reply", "```json\n{\"questions\":[]}\n```", false},
		{"empty", ``, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateJSON(quizSchema(), json.RawMessage(tt.raw))
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			var inv *ErrInvalidResponse
			require.ErrorAs(t, err, &inv)
			assert.Equal(t, tt.raw, string(inv.Content))
			assert.True(t, IsInvalidResponse(err))
		})
	}
}

func TestValidateJSON_ReturnsDecodedValue(t *testing.T) {
	v, err := ValidateJSON(quizSchema(), json.RawMessage(`{"questions":[{"q":"Go is compiled.","type":"tf"}]}`))
	require.NoError(t, err)

	obj, ok := v.(map[string]any)
	require.True(t, ok)
	qs, ok := obj["questions"].([]any)
	require.True(t, ok)
	assert.Len(t, qs, 1)
}

func TestValidateJSON_NilSchemaStillRequiresJSON(t *testing.T) {
	_, err := ValidateJSON(nil, json.RawMessage(`{"anything":"goes"}`))
	assert.NoError(t, err)

	_, err = ValidateJSON(nil, json.RawMessage(`report`))
	assert.True(t, IsInvalidResponse(err))
}

func TestValidateResponse_SkipsFreeText(t *testing.T) {
	assert.NoError(t, validateResponse(nil, json.RawMessage("Hello! How can I help?")))
}

func TestCompiledSchemaIsCachedByName(t *testing.T) {
	s := &Schema{Name: "test-cache", Definition: map[string]any{"type": "object"}}
	first, err := getCompiledSchema(s)
	require.NoError(t, err)

	second, err := getCompiledSchema(&Schema{Name: "test-cache", Definition: map[string]any{"type": "array"}})
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestBadSchemaIsInvalidResponse(t *testing.T) {
	s := &Schema{Name: "test-broken", Definition: map[string]any{"type": 42}}
	_, err := ValidateJSON(s, json.RawMessage(`{}`))
	assert.True(t, IsInvalidResponse(err))
}
