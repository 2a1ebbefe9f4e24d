// Package careerpath suggests a short course list for moving from one
// role to another, using the provider's native structured output.
package careerpath

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/abhisek/coursekit/internal/llm"
	"github.com/abhisek/coursekit/internal/logger"
)

// ErrInvalidRequest wraps request validation failures.
var ErrInvalidRequest = errors.New("invalid career path request")

const (
	MinCourses = 4
	MaxCourses = 6
)

// Request describes the learner's move.
type Request struct {
	CurrentRole          string `json:"current_role" validate:"required"`
	TargetRole           string `json:"target_role" validate:"required"`
	CourseStartDate      string `json:"course_start_date" validate:"required,datetime=2006-01-02"`
	CourseEndDate        string `json:"course_end_date" validate:"required,datetime=2006-01-02"`
	EstimatedWeeklyHours int    `json:"estimated_weekly_hours" validate:"required,min=1,max=80"`
}

// Course is one suggested course.
type Course struct {
	CourseName     string `json:"course_name"`
	Description    string `json:"description"`
	Category       string `json:"category"`
	Level          string `json:"level"`
	EstimatedHours int    `json:"estimated_hours"`
	Mandatory      bool   `json:"mandatory"`
	ThumbnailURL   string `json:"thumbnail_url"`
}

// Response is the advisor's answer.
type Response struct {
	Courses []Course `json:"courses"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field rules and that the end date is not before the
// start date.
func (r *Request) Validate() error {
	r.CurrentRole = strings.TrimSpace(r.CurrentRole)
	r.TargetRole = strings.TrimSpace(r.TargetRole)
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field()+" ("+fe.Tag()+")")
			}
			return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	start, _ := time.Parse(time.DateOnly, r.CourseStartDate)
	end, _ := time.Parse(time.DateOnly, r.CourseEndDate)
	if end.Before(start) {
		return fmt.Errorf("%w: course_end_date is before course_start_date", ErrInvalidRequest)
	}
	return nil
}

// ResponseSchema is attached to the request for native structured output.
var ResponseSchema = &llm.Schema{
	Name:        "career-path",
	Description: "Courses that take a learner from the current role to the target role",
	Definition: map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"courses"},
		"properties": map[string]any{
			"courses": map[string]any{
				"type":     "array",
				"minItems": MinCourses,
				"maxItems": MaxCourses,
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required": []any{
						"course_name", "description", "category", "level",
						"estimated_hours", "mandatory", "thumbnail_url",
					},
					"properties": map[string]any{
						"course_name":     map[string]any{"type": "string"},
						"description":     map[string]any{"type": "string"},
						"category":        map[string]any{"type": "string"},
						"level":           map[string]any{"type": "string"},
						"estimated_hours": map[string]any{"type": "integer"},
						"mandatory":       map[string]any{"type": "boolean"},
						"thumbnail_url":   map[string]any{"type": "string"},
					},
				},
			},
		},
	},
}

const systemPrompt = `You are an AI career path advisor.
Based on the given current role, target role, start/end dates, and weekly hours, suggest a list of courses.

Rules:
- Only return a "courses" array.
- Each course object must include: course_name, description, category, level, estimated_hours, mandatory, thumbnail_url
- The "mandatory" field must be true if the learner cannot skip this course, otherwise false.
- "thumbnail_url" must be a valid public image URL relevant to the course topic.
- Keep the list concise (4-6 courses).
- The total estimated hours should fit between the start and end dates at the given weekly hours.`

// Config controls the advisor call.
type Config struct {
	Temperature float64
	MaxTokens   int
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{Temperature: 0.4, MaxTokens: 1200}
}

// Advisor produces career path suggestions.
type Advisor struct {
	provider llm.Provider
	config   Config
	log      *logger.Logger
}

// NewAdvisor creates an Advisor.
func NewAdvisor(provider llm.Provider, cfg Config, log *logger.Logger) *Advisor {
	if log == nil {
		log = logger.NewNop()
	}
	return &Advisor{provider: provider, config: cfg, log: log.With("service", "careerpath")}
}

// Suggest returns 4 to 6 courses for req.
func (a *Advisor) Suggest(ctx context.Context, req Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user := fmt.Sprintf("Current role: %s\nTarget role: %s\nCourse start date: %s\nCourse end date: %s\nEstimated weekly hours: %d",
		req.CurrentRole, req.TargetRole, req.CourseStartDate, req.CourseEndDate, req.EstimatedWeeklyHours)
	llmReq := llm.UserPrompt(systemPrompt, user, a.config.Temperature, a.config.MaxTokens)
	llmReq.Schema = ResponseSchema

	resp, err := a.provider.Generate(llm.WithPurpose(ctx, llm.PurposeCareerPath), llmReq)
	if err != nil {
		return nil, fmt.Errorf("suggest career path: %w", err)
	}

	out, err := ParseResponse(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("suggest career path: %w", err)
	}
	a.log.Info("suggested career path", "target_role", req.TargetRole, "courses", len(out.Courses))
	return out, nil
}

// ParseResponse validates raw against ResponseSchema and decodes it.
func ParseResponse(raw json.RawMessage) (*Response, error) {
	if _, err := llm.ValidateJSON(ResponseSchema, raw); err != nil {
		return nil, err
	}
	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: raw, Err: err}
	}
	return &out, nil
}
