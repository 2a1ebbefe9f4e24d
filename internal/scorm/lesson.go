package scorm

import (
	"bytes"
	"fmt"
	"html/template"
)

var lessonTemplate = template.Must(template.New("lesson").Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8"/>
  <title>{{.Title}}</title>
</head>
<body>
  <h1>Course Content</h1>
  <pre>{{.Text}}</pre>
{{- if .WithAssessment}}
  <hr/>
  <p><a href="assessment.html">Go to final assessment</a></p>
{{- end}}
</body>
</html>
`))

// LessonPage renders the lesson document around the escaped course text.
func LessonPage(title, text string, withAssessment bool) (string, error) {
	var buf bytes.Buffer
	err := lessonTemplate.Execute(&buf, struct {
		Title          string
		Text           string
		WithAssessment bool
	}{title, text, withAssessment})
	if err != nil {
		return "", fmt.Errorf("render lesson: %w", err)
	}
	return buf.String(), nil
}
