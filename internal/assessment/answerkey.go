package assessment

import (
	"fmt"
	"io"
	"strconv"

	"golang.org/x/net/html"
)

// KeyOption is one selectable answer as embedded in a rendered page.
type KeyOption struct {
	Value   string
	Correct bool
}

// KeyQuestion groups the options sharing one radio name.
type KeyQuestion struct {
	Name    string
	Options []KeyOption
}

// AnswerKey is the grading material recovered from a rendered page.
type AnswerKey struct {
	CourseID    string
	MaxAttempts int
	Questions   []KeyQuestion
}

// CorrectSelections returns the selection map that answers every question
// correctly.
func (k AnswerKey) CorrectSelections() map[string]string {
	out := make(map[string]string, len(k.Questions))
	for _, q := range k.Questions {
		for _, o := range q.Options {
			if o.Correct {
				out[q.Name] = o.Value
				break
			}
		}
	}
	return out
}

// IncorrectSelections returns a selection map that misses every question
// that has a wrong option.
func (k AnswerKey) IncorrectSelections() map[string]string {
	out := make(map[string]string, len(k.Questions))
	for _, q := range k.Questions {
		for _, o := range q.Options {
			if !o.Correct {
				out[q.Name] = o.Value
				break
			}
		}
	}
	return out
}

// ReadAnswerKey parses a rendered assessment page back into its answer key.
func ReadAnswerKey(r io.Reader) (AnswerKey, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return AnswerKey{}, fmt.Errorf("parse assessment page: %w", err)
	}

	var key AnswerKey
	index := map[string]int{}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "form":
				if id := attr(n, "data-course-id"); id != "" {
					key.CourseID = id
				}
				if v := attr(n, "data-max-attempts"); v != "" {
					key.MaxAttempts, _ = strconv.Atoi(v)
				}
			case "input":
				if attr(n, "type") == "radio" {
					name := attr(n, "name")
					i, ok := index[name]
					if !ok {
						i = len(key.Questions)
						index[name] = i
						key.Questions = append(key.Questions, KeyQuestion{Name: name})
					}
					key.Questions[i].Options = append(key.Questions[i].Options, KeyOption{
						Value:   attr(n, "value"),
						Correct: attr(n, "data-correct") == "true",
					})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if len(key.Questions) == 0 {
		return AnswerKey{}, fmt.Errorf("parse assessment page: no questions found")
	}
	return key, nil
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
