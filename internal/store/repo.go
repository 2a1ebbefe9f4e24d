package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned by updates that match no row.
var ErrNotFound = errors.New("store: not found")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // id > After
	Before  int64     // id < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // exact purpose match when set

	FailedOnly bool // only unsuccessful calls
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a recorded LLM request.
type LLMEvent struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates LLM usage for one purpose label.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// FailureRate is the share of calls that failed, in [0, 1].
func (u PurposeUsage) FailureRate() float64 {
	if u.Calls == 0 {
		return 0
	}
	return float64(u.Failures) / float64(u.Calls)
}

// ModelUsage aggregates LLM usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}

// SyllabusRecord is a drafted syllabus awaiting or past human review.
type SyllabusRecord struct {
	Name     string
	Topic    string
	Audience string
	// Params holds the originating request as JSON so the course pipeline
	// can recover the assessment settings.
	Params    json.RawMessage
	Text      string
	Verified  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SyllabusRepo persists syllabi keyed by name.
type SyllabusRepo interface {
	// Save inserts or replaces a syllabus. Replacing resets Verified.
	Save(ctx context.Context, rec *SyllabusRecord) error

	// Get returns the syllabus, or nil if none exists.
	Get(ctx context.Context, name string) (*SyllabusRecord, error)

	// List returns all syllabi, most recently updated first.
	List(ctx context.Context) ([]SyllabusRecord, error)

	// UpdateText replaces the body after human edits and clears Verified.
	UpdateText(ctx context.Context, name, text string) error

	// MarkVerified flags the syllabus as reviewed.
	MarkVerified(ctx context.Context, name string) error
}
