package assessment

import "github.com/abhisek/coursekit/internal/llm"

// QuestionArraySchema is the structural contract for a question reply.
// Per-kind rules (option count, index range) are checked in Go after
// schema validation so that mixed or partial sets can be rejected as a
// whole.
var QuestionArraySchema = &llm.Schema{
	Name:        "assessment-questions",
	Description: "Exactly five quiz questions derived from a course text",
	Definition: map[string]any{
		"type":     "array",
		"minItems": QuestionCount,
		"maxItems": QuestionCount,
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"q":            map[string]any{"type": "string"},
				"type":         map[string]any{"type": "string"},
				"options":      map[string]any{"type": "array"},
				"answer_index": map[string]any{"type": "integer"},
				"answer":       map[string]any{"type": []any{"string", "boolean"}},
			},
			"required": []any{"q", "type"},
		},
	},
}
