package assessment

import (
	"context"

	"github.com/abhisek/coursekit/internal/llm"
	"github.com/abhisek/coursekit/internal/logger"
)

// Supplier obtains quiz questions from the LLM with a deterministic fallback.
type Supplier struct {
	provider llm.Provider
	config   Config
	log      *logger.Logger
}

// NewSupplier creates a Supplier. A nil provider, like a nil *Supplier,
// always yields the fallback.
func NewSupplier(provider llm.Provider, cfg Config, log *logger.Logger) *Supplier {
	if log == nil {
		log = logger.NewNop()
	}
	return &Supplier{provider: provider, config: cfg, log: log.With("service", "assessment")}
}

// Supply returns five questions of kind for courseText. Backend failures and
// unusable replies are absorbed: the caller always gets a valid set, with
// Source telling which path produced it.
func (s *Supplier) Supply(ctx context.Context, courseText string, kind Kind) Result {
	if s == nil || s.provider == nil {
		return Result{Questions: Fallback(courseText, kind), Source: SourceFallback}
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeQuestions)
	req := llm.UserPrompt(systemPrompt, buildUserMessage(courseText, kind, s.config.MaxCourseChars),
		s.config.Temperature, s.config.MaxTokens)

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		s.log.Warn("question generation failed, using fallback", "kind", string(kind), "error", err)
		return Result{Questions: Fallback(courseText, kind), Source: SourceFallback}
	}

	qs, err := ParseQuestions(resp.Text(), kind)
	if err != nil {
		s.log.Warn("discarding generated questions, using fallback", "kind", string(kind), "error", err)
		return Result{Questions: Fallback(courseText, kind), Source: SourceFallback}
	}
	return Result{Questions: qs, Source: SourceLLM}
}
