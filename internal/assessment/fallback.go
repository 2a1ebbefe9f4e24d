package assessment

import (
	"fmt"
	"strings"
)

var fallbackTemplates = [QuestionCount]string{
	"What is a core idea in %s?",
	"Which statement about %s is correct?",
	"How would %s be applied?",
	"Which topic is usually covered in %s?",
	"A common tool related to %s is?",
}

var fallbackOptions = []string{"Correct answer", "Distractor A", "Distractor B", "Distractor C"}

// Fallback builds the deterministic question set for a course. It depends
// only on the first line of courseText and never calls the LLM. MCQ items
// always have option 0 correct; true/false items are always true.
func Fallback(courseText string, kind Kind) []Question {
	title := fallbackTitle(courseText)
	out := make([]Question, 0, QuestionCount)
	for _, tmpl := range fallbackTemplates {
		q := Question{Text: fmt.Sprintf(tmpl, title), Kind: kind}
		if kind == KindMCQ {
			q.Options = append([]string(nil), fallbackOptions...)
			q.CorrectIndex = 0
		} else {
			q.CorrectAnswer = true
		}
		out = append(out, q)
	}
	return out
}

func fallbackTitle(courseText string) string {
	first, _, _ := strings.Cut(courseText, "\n")
	first = strings.TrimSpace(first)
	if first == "" {
		return "Course"
	}
	return first
}
