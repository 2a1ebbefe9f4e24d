package assessment

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a helpful assistant that creates short assessment questions from a course text.
Return ONLY a JSON array (no explanation). Create exactly 5 questions.

Each question item must be an object with these fields:
- q: question text (string)
- type: "mcq" or "tf"
- options: array of strings (only for mcq, 4 items)
- answer_index: integer (0-based index into options) for mcq
- answer: "True" or "False" for tf

Make questions based on the course content provided. Keep options concise.`

func buildUserMessage(courseText string, kind Kind, maxChars int) string {
	var b strings.Builder
	want := "mcq"
	if kind == KindTrueFalse {
		want = "tf"
	}
	fmt.Fprintf(&b, "Every question must have type %q.\n\n", want)
	b.WriteString("Course text:\n")
	b.WriteString(truncateRunes(courseText, maxChars))
	return b.String()
}

// truncateRunes cuts s to at most n characters without splitting a rune.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
