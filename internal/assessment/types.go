// Package assessment produces the five-question final quiz of a course
// package: it asks the LLM for questions, falls back to a deterministic set
// when the reply is unusable, and renders the self-grading quiz page.
package assessment

import (
	"fmt"
	"strings"
)

// QuestionCount is the fixed size of every question set.
const QuestionCount = 5

// Kind is the question type of a whole assessment.
type Kind string

const (
	KindMCQ       Kind = "mcq"
	KindTrueFalse Kind = "tf"
)

// ParseKind maps the user-facing assessment type names onto a Kind.
// Matching is case-insensitive and accepts the usual true/false spellings.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mcq":
		return KindMCQ, true
	case "tf", "true/false", "true_false", "truefalse", "true false":
		return KindTrueFalse, true
	}
	return "", false
}

// Label is the quiz heading for the kind.
func (k Kind) Label() string {
	if k == KindMCQ {
		return "Multiple-Choice Quiz"
	}
	return "True / False"
}

// Question is one quiz item. MCQ items use Options and CorrectIndex;
// true/false items use CorrectAnswer only.
type Question struct {
	Text          string   `json:"q"`
	Kind          Kind     `json:"type"`
	Options       []string `json:"options,omitempty"`
	CorrectIndex  int      `json:"answer_index,omitempty"`
	CorrectAnswer bool     `json:"answer,omitempty"`
}

// Validate checks the per-kind field invariant.
func (q Question) Validate() error {
	switch q.Kind {
	case KindMCQ:
		if len(q.Options) < 2 {
			return fmt.Errorf("mcq question needs at least 2 options, got %d", len(q.Options))
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return fmt.Errorf("answer index %d out of range for %d options", q.CorrectIndex, len(q.Options))
		}
		if q.CorrectAnswer {
			return fmt.Errorf("mcq question must not carry a true/false answer")
		}
	case KindTrueFalse:
		if len(q.Options) > 0 || q.CorrectIndex != 0 {
			return fmt.Errorf("true/false question must not carry options")
		}
	default:
		return fmt.Errorf("unknown question kind %q", q.Kind)
	}
	return nil
}

// Settings configures the assessment of one package. A zero Kind means no
// assessment; a zero MaxAttempts means unlimited attempts.
type Settings struct {
	Kind        Kind
	MaxAttempts int
}

// Enabled reports whether an assessment should be produced.
func (s Settings) Enabled() bool {
	return s.Kind != ""
}

// Source records which generation path produced a question set.
type Source string

const (
	SourceLLM      Source = "llm"
	SourceFallback Source = "fallback"
)

// Result is a supplied question set.
type Result struct {
	Questions []Question
	Source    Source
}
