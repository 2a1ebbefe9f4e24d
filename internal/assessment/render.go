package assessment

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
)

// RenderOptions carries page settings that do not come from the question set.
type RenderOptions struct {
	// MaxAttempts limits submissions per browser; zero means unlimited.
	MaxAttempts int

	// ResetEndpoint, when set, receives a POST from the retake control.
	// Without it the control clears the local counter itself.
	ResetEndpoint string
}

type pageOption struct {
	Value   string
	Label   string
	Correct bool
}

type pageQuestion struct {
	Number  int
	Name    string
	Text    string
	Options []pageOption
}

type pageData struct {
	Title         string
	Heading       string
	CourseID      string
	CourseKey     string
	Total         int
	PassPercent   int
	MaxAttempts   any // int or nil, rendered into script as a number or null
	MaxAttemptsTx string
	ResetEndpoint any // string or nil
	Questions     []pageQuestion
}

// Render builds the self-contained quiz page. The answer key travels in
// data-correct attributes because grading happens in the browser.
func Render(title string, questions []Question, courseID string, opts RenderOptions) (string, error) {
	if len(questions) == 0 {
		return "", fmt.Errorf("render assessment: no questions")
	}

	data := pageData{
		Title:       title,
		Heading:     headingFor(questions),
		CourseID:    courseID,
		CourseKey:   AttemptsKey(courseID),
		Total:       len(questions),
		PassPercent: PassPercent,
	}
	if opts.MaxAttempts > 0 {
		data.MaxAttempts = opts.MaxAttempts
		data.MaxAttemptsTx = strconv.Itoa(opts.MaxAttempts)
	}
	if opts.ResetEndpoint != "" {
		data.ResetEndpoint = opts.ResetEndpoint
	}

	for i, q := range questions {
		if err := q.Validate(); err != nil {
			return "", fmt.Errorf("render assessment: question %d: %w", i+1, err)
		}
		pq := pageQuestion{Number: i + 1, Name: fieldName(i), Text: q.Text}
		if q.Kind == KindMCQ {
			for oi, opt := range q.Options {
				pq.Options = append(pq.Options, pageOption{
					Value:   strconv.Itoa(oi),
					Label:   opt,
					Correct: oi == q.CorrectIndex,
				})
			}
		} else {
			pq.Options = []pageOption{
				{Value: "True", Label: "True", Correct: q.CorrectAnswer},
				{Value: "False", Label: "False", Correct: !q.CorrectAnswer},
			}
		}
		data.Questions = append(data.Questions, pq)
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render assessment: %w", err)
	}
	return buf.String(), nil
}

// AttemptsKey is the local-storage key holding the attempt counter.
func AttemptsKey(courseID string) string {
	return "attempts_" + courseID
}

func fieldName(i int) string {
	return "q" + strconv.Itoa(i+1)
}

func headingFor(qs []Question) string {
	for _, q := range qs {
		if q.Kind == KindMCQ {
			return KindMCQ.Label()
		}
	}
	return KindTrueFalse.Label()
}

var pageTemplate = template.Must(template.New("assessment").Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8"/>
  <title>Final Assessment - {{.Title}}</title>
  <style>
    body { font-family: Arial, sans-serif; padding: 20px; }
    .question { margin-bottom: 10px; }
    hr { border: 0; border-top: 1px solid #eee; margin: 12px 0; }
    .submit { margin-top: 20px; }
    #result { margin-top: 20px; font-weight: bold; }
  </style>
</head>
<body>
  <h2>Final Assessment – {{.Heading}}</h2>
  <p>Answer all questions below. Select the best option for each. When finished, click "Submit Quiz &amp; Complete". A minimum score of {{.PassPercent}}% is required to pass.</p>
  {{- if .MaxAttemptsTx}}
  <p>Attempts allowed: {{.MaxAttemptsTx}}</p>
  {{- end}}
  <form id="quiz" data-course-id="{{.CourseID}}" data-max-attempts="{{.MaxAttemptsTx}}" onsubmit="return checkAnswers();">
{{- range .Questions}}
    <div class="question"><h4>{{.Number}}. {{.Text}}</h4>
{{- $name := .Name}}
{{- range .Options}}
      <label><input type="radio" name="{{$name}}" value="{{.Value}}" data-correct="{{.Correct}}"> {{.Label}}</label><br>
{{- end}}
    </div><hr/>
{{- end}}
    <div class="submit">
      <button type="submit">Submit Quiz &amp; Complete</button>
    </div>
    <div id="result"></div>
  </form>
  <div id="reset-area" style="display:none; margin-top:10px;">
    <button type="button" onclick="requestRetake()">Request Retake</button>
  </div>
<script>
const TOTAL = {{.Total}};
const PASS_PERCENT = {{.PassPercent}};
const COURSE_KEY = {{.CourseKey}};
const ATTEMPTS_ALLOWED = {{.MaxAttempts}};
const RESET_ENDPOINT = {{.ResetEndpoint}};

function getAttemptsUsed() {
  const v = localStorage.getItem(COURSE_KEY);
  return v ? parseInt(v, 10) : 0;
}

function setAttemptsUsed(n) {
  localStorage.setItem(COURSE_KEY, String(n));
}

function showReset(show) {
  document.getElementById('reset-area').style.display = show ? 'block' : 'none';
}

function checkAnswers() {
  const used = getAttemptsUsed();
  if (ATTEMPTS_ALLOWED !== null && used >= ATTEMPTS_ALLOWED) {
    document.getElementById('result').innerText = "No attempts left. You have used all allowed attempts.";
    showReset(true);
    return false;
  }

  let correctCount = 0;
  for (let i = 1; i <= TOTAL; i++) {
    const chosen = document.querySelector('input[name="q' + i + '"]:checked');
    if (chosen && chosen.dataset.correct === 'true') {
      correctCount++;
    }
  }
  const percent = Math.round((correctCount / TOTAL) * 100);
  if (percent >= PASS_PERCENT) {
    document.getElementById('result').innerText = "Score: " + percent + "%. Status: Passed. Your completion has been recorded.";
  } else {
    document.getElementById('result').innerText = "Score: " + percent + "%. Status: Not passed. You may review the content and attempt again if allowed by the LMS.";
  }

  setAttemptsUsed(used + 1);
  if (ATTEMPTS_ALLOWED !== null && used + 1 >= ATTEMPTS_ALLOWED) {
    showReset(true);
  }
  return false;
}

function clearLocal(message) {
  localStorage.removeItem(COURSE_KEY);
  alert(message);
  showReset(false);
}

function requestRetake() {
  if (!RESET_ENDPOINT) {
    clearLocal('Local attempts cleared. You may attempt again (client-side only).');
    return;
  }
  fetch(RESET_ENDPOINT, { method: 'POST' })
    .then(function (res) {
      if (!res.ok) throw new Error('Reset failed');
      clearLocal('Retake granted. You may attempt the quiz again.');
    })
    .catch(function () {
      clearLocal('Reset request failed. For now local reset will be performed.');
    });
}
</script>
</body>
</html>
`))
