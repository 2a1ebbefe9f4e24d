package careerpath

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/abhisek/coursekit/internal/llm"
)

func validRequest() Request {
	return Request{
		CurrentRole:          "QA Engineer",
		TargetRole:           "Data Engineer",
		CourseStartDate:      "2025-01-01",
		CourseEndDate:        "2025-06-30",
		EstimatedWeeklyHours: 6,
	}
}

func coursesJSON(n int) string {
	var items []string
	for i := 0; i < n; i++ {
		items = append(items, fmt.Sprintf(`{"course_name":"Course %d","description":"d","category":"Data","level":"Beginner","estimated_hours":10,"mandatory":%t,"thumbnail_url":"https://images.example.com/%d.jpg"}`, i+1, i == 0, i))
	}
	return `{"courses":[` + strings.Join(items, ",") + `]}`
}

func TestSuggest(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockText(coursesJSON(5)))
	a := NewAdvisor(mock, DefaultConfig(), nil)

	resp, err := a.Suggest(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(resp.Courses) != 5 {
		t.Fatalf("got %d courses", len(resp.Courses))
	}
	if !resp.Courses[0].Mandatory || resp.Courses[1].Mandatory || resp.Courses[0].EstimatedHours != 10 {
		t.Errorf("unexpected first courses: %+v", resp.Courses[:2])
	}

	call := mock.LastCall()
	if call.Schema != ResponseSchema {
		t.Error("request should carry the response schema")
	}
	if !strings.Contains(call.Messages[0].Content, "Target role: Data Engineer") {
		t.Errorf("unexpected user prompt: %s", call.Messages[0].Content)
	}
}

func TestParseResponse_Bounds(t *testing.T) {
	for _, n := range []int{3, 7} {
		if _, err := ParseResponse(json.RawMessage(coursesJSON(n))); !llm.IsInvalidResponse(err) {
			t.Errorf("%d courses should be rejected, got %v", n, err)
		}
	}
	for _, n := range []int{4, 6} {
		if _, err := ParseResponse(json.RawMessage(coursesJSON(n))); err != nil {
			t.Errorf("%d courses should be accepted: %v", n, err)
		}
	}
}

func TestParseResponse_MissingField(t *testing.T) {
	raw := strings.Replace(coursesJSON(4), `"level":"Beginner",`, "", 1)
	if _, err := ParseResponse(json.RawMessage(raw)); !llm.IsInvalidResponse(err) {
		t.Fatalf("missing level should be rejected, got %v", err)
	}
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request)
		ok     bool
	}{
		{"valid", func(*Request) {}, true},
		{"same day", func(r *Request) { r.CourseEndDate = r.CourseStartDate }, true},
		{"missing role", func(r *Request) { r.CurrentRole = " " }, false},
		{"bad date", func(r *Request) { r.CourseStartDate = "01/01/2025" }, false},
		{"end before start", func(r *Request) { r.CourseEndDate = "2024-12-31" }, false},
		{"no hours", func(r *Request) { r.EstimatedWeeklyHours = 0 }, false},
		{"too many hours", func(r *Request) { r.EstimatedWeeklyHours = 100 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRequest()
			tt.mutate(&r)
			err := r.Validate()
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestSuggest_InvalidRequestSkipsLLM(t *testing.T) {
	mock := llm.NewMockProvider()
	a := NewAdvisor(mock, DefaultConfig(), nil)
	r := validRequest()
	r.TargetRole = ""
	if _, err := a.Suggest(context.Background(), r); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if mock.CallCount() != 0 {
		t.Error("invalid requests must not reach the model")
	}
}
