package assessment

import (
	"fmt"
	"strings"

	"github.com/abhisek/coursekit/internal/llm"
)

// ParseQuestions turns a raw completion into exactly five questions of the
// requested kind. Any structural problem, or a single item of another kind,
// rejects the whole reply with *llm.ErrInvalidResponse.
func ParseQuestions(completion string, kind Kind) ([]Question, error) {
	raw, err := llm.ExtractArray(completion)
	if err != nil {
		return nil, err
	}
	decoded, err := llm.ValidateJSON(QuestionArraySchema, raw)
	if err != nil {
		return nil, err
	}

	items, _ := decoded.([]any)
	out := make([]Question, 0, len(items))
	for i, item := range items {
		obj, _ := item.(map[string]any)
		q, err := parseItem(obj)
		if err != nil {
			return nil, invalid(raw, fmt.Errorf("question %d: %w", i+1, err))
		}
		if q.Kind != kind {
			return nil, invalid(raw, fmt.Errorf("question %d: kind %q, want %q", i+1, q.Kind, kind))
		}
		out = append(out, q)
	}
	return out, nil
}

func parseItem(obj map[string]any) (Question, error) {
	text, _ := obj["q"].(string)
	typ, _ := obj["type"].(string)

	kind, ok := ParseKind(typ)
	if !ok {
		return Question{}, fmt.Errorf("unknown type %q", typ)
	}
	q := Question{Text: text, Kind: kind}

	switch kind {
	case KindMCQ:
		opts, _ := obj["options"].([]any)
		for _, o := range opts {
			q.Options = append(q.Options, fmt.Sprint(o))
		}
		idx, ok := obj["answer_index"].(float64)
		if !ok || idx != float64(int(idx)) {
			return Question{}, fmt.Errorf("answer_index missing or not an integer")
		}
		q.CorrectIndex = int(idx)
	case KindTrueFalse:
		q.CorrectAnswer = truthy(obj["answer"])
	}

	if err := q.Validate(); err != nil {
		return Question{}, err
	}
	return q, nil
}

// truthy normalizes a true/false answer: booleans as-is, strings by a
// leading "t".
func truthy(v any) bool {
	switch a := v.(type) {
	case bool:
		return a
	case string:
		return strings.HasPrefix(strings.ToLower(strings.TrimSpace(a)), "t")
	}
	return false
}

func invalid(raw []byte, err error) error {
	return &llm.ErrInvalidResponse{Content: raw, Err: err}
}
