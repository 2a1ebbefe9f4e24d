package progress

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/coursekit/internal/llm"
	"github.com/abhisek/coursekit/internal/logger"
)

const extractPrompt = `You are an assistant that extracts structured data from natural language queries.

Return a JSON object with the following keys:
- "username": the learner's name if mentioned
- "course": the course name if mentioned
- "status": 'completed', 'in progress', or 'not started' if specified
- "start_date": formatted as YYYY-MM-DD if any date range is mentioned
- "end_date": formatted as YYYY-MM-DD if any date range is mentioned

If any field is not found, return an empty string for that field.

Examples:

Input: "Show me Sarah's progress in Python"
Output:
{"username": "sarah", "course": "python", "status": "", "start_date": "", "end_date": ""}

Input: "Show learners who have completed Python between 01st Jan 2025 to 30th June 2025"
Output:
{"username": "", "course": "python", "status": "completed", "start_date": "2025-01-01", "end_date": "2025-06-30"}

Input: "Show me the list of courses Sara has completed between period 01st Jan 2025 to 30th June 2025"
Output:
{"username": "sara", "course": "", "status": "completed", "start_date": "2025-01-01", "end_date": "2025-06-30"}`

// FilterSchema is the structural contract of an extraction reply.
var FilterSchema = &llm.Schema{
	Name:        "progress-filter",
	Description: "Learner progress filter extracted from a question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"username":   map[string]any{"type": []any{"string", "null"}},
			"course":     map[string]any{"type": []any{"string", "null"}},
			"status":     map[string]any{"type": []any{"string", "null"}},
			"start_date": map[string]any{"type": []any{"string", "null"}},
			"end_date":   map[string]any{"type": []any{"string", "null"}},
		},
	},
}

// Extractor turns a free-text question into a Filter via the LLM.
type Extractor struct {
	provider llm.Provider
	config   Config
	log      *logger.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(provider llm.Provider, cfg Config, log *logger.Logger) *Extractor {
	if log == nil {
		log = logger.NewNop()
	}
	return &Extractor{provider: provider, config: cfg, log: log.With("service", "progress.extract")}
}

// Extract asks the LLM for the filter fields. Backend errors and unparsable
// replies are returned to the caller; there is no fallback.
func (e *Extractor) Extract(ctx context.Context, query string) (Filter, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeFilter)
	resp, err := e.provider.Generate(ctx, llm.UserPrompt(extractPrompt, query, e.config.Temperature, e.config.MaxTokens))
	if err != nil {
		return Filter{}, fmt.Errorf("extract filter: %w", err)
	}
	f, err := ParseFilter(resp.Text())
	if err != nil {
		return Filter{}, fmt.Errorf("extract filter: %w", err)
	}
	if f.StartDate.IsZero() != f.EndDate.IsZero() {
		e.log.Debug("ignoring half-open date range", "query", query)
	}
	return f, nil
}

// ParseFilter reads an extraction reply. Status goes through the synonym
// table; dates that are not YYYY-MM-DD are treated as absent.
func ParseFilter(completion string) (Filter, error) {
	raw, err := llm.ExtractObject(completion)
	if err != nil {
		return Filter{}, err
	}
	decoded, err := llm.ValidateJSON(FilterSchema, raw)
	if err != nil {
		return Filter{}, err
	}
	obj, _ := decoded.(map[string]any)

	return Filter{
		Username:  field(obj, "username"),
		Course:    field(obj, "course"),
		Status:    NormalizeStatus(field(obj, "status")),
		StartDate: parseDate(field(obj, "start_date")),
		EndDate:   parseDate(field(obj, "end_date")),
	}, nil
}

func field(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return strings.TrimSpace(s)
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
