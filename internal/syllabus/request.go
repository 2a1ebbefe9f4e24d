package syllabus

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/abhisek/coursekit/internal/assessment"
)

// ErrInvalidRequest wraps every request validation failure.
var ErrInvalidRequest = errors.New("invalid syllabus request")

// DefaultTone is used when a request names none.
const DefaultTone = "Formal"

// MaxDurationHours bounds the hours part of a duration.
const MaxDurationHours = 52

// Request describes the course to draft.
type Request struct {
	Topic    string `json:"topic" validate:"required"`
	Audience string `json:"audience" validate:"required"`
	// Duration is "HH:MM" with hours 0..52 and minutes 00..59.
	Duration       string `json:"duration" validate:"required,duration"`
	ContentTypes   string `json:"content_types,omitempty"`
	AssessmentType string `json:"assessment_type,omitempty" validate:"omitempty,oneof=MCQ True/False"`
	Attempts       int    `json:"attempts,omitempty" validate:"omitempty,oneof=1 2 3"`
	Modules        int    `json:"modules" validate:"required,min=1"`
	AITone         string `json:"ai_tone,omitempty"`
}

var durationPattern = regexp.MustCompile(`^(\d{1,2}):([0-5][0-9])$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		return validDuration(fl.Field().String())
	})
	return v
}

func validDuration(s string) bool {
	m := durationPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return false
	}
	hours, err := strconv.Atoi(m[1])
	return err == nil && hours <= MaxDurationHours
}

// Normalize trims text fields and applies the default tone.
func (r *Request) Normalize() {
	r.Topic = strings.TrimSpace(r.Topic)
	r.Audience = strings.TrimSpace(r.Audience)
	r.Duration = strings.TrimSpace(r.Duration)
	r.ContentTypes = strings.TrimSpace(r.ContentTypes)
	r.AssessmentType = strings.TrimSpace(r.AssessmentType)
	r.AITone = strings.TrimSpace(r.AITone)
	if r.AITone == "" {
		r.AITone = DefaultTone
	}
}

// Validate normalizes r and checks every field rule.
func (r *Request) Validate() error {
	r.Normalize()
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, fieldProblem(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(problems, "; "))
}

func fieldProblem(fe validator.FieldError) string {
	name := jsonName(fe.Field())
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "duration":
		return fmt.Sprintf("duration must be HH:MM with hours 0-%d and minutes 00-59", MaxDurationHours)
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", name, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be >= %s", name, fe.Param())
	default:
		return name + " is invalid"
	}
}

func jsonName(field string) string {
	switch field {
	case "AssessmentType":
		return "assessment_type"
	case "ContentTypes":
		return "content_types"
	case "AITone":
		return "ai_tone"
	default:
		return strings.ToLower(field)
	}
}

// Name is the storage name of the syllabus: the topic with spaces as
// underscores, then the audience, all lowercase.
func (r Request) Name() string {
	return slug(r.Topic) + "_" + slug(r.Audience)
}

func slug(s string) string {
	var b strings.Builder
	for _, c := range strings.ToLower(strings.Join(strings.Fields(s), "_")) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '_', c == '-':
			b.WriteRune(c)
		}
	}
	return b.String()
}

// Assessment returns the package assessment settings the request asks for.
func (r Request) Assessment() assessment.Settings {
	kind, ok := assessment.ParseKind(r.AssessmentType)
	if !ok {
		return assessment.Settings{}
	}
	return assessment.Settings{Kind: kind, MaxAttempts: r.Attempts}
}
