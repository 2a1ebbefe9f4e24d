// Package progress answers natural-language questions about learner
// progress: an LLM extracts a structured Filter from the question, and a
// query builder turns the filter into a parameterized query over the
// user_detail table.
package progress

import (
	"strings"
	"time"
)

// Status is the closed completion-status vocabulary.
type Status string

const (
	StatusCompleted  Status = "completed"
	StatusInProgress Status = "in progress"
	StatusNotStarted Status = "not started"
)

// statusSynonyms maps colloquial phrases onto the vocabulary. Anything not
// listed normalizes to the empty status, which leaves the query unfiltered.
var statusSynonyms = map[string]Status{
	"completed":         StatusCompleted,
	"complete":          StatusCompleted,
	"done":              StatusCompleted,
	"finished":          StatusCompleted,
	"already completed": StatusCompleted,

	"in progress":        StatusInProgress,
	"in-progress":        StatusInProgress,
	"ongoing":            StatusInProgress,
	"currently learning": StatusInProgress,
	"progress":           StatusInProgress,

	"not started":  StatusNotStarted,
	"yet to start": StatusNotStarted,
	"not begun":    StatusNotStarted,
	"pending":      StatusNotStarted,
}

// NormalizeStatus maps free text onto the status vocabulary.
func NormalizeStatus(s string) Status {
	key := strings.Join(strings.Fields(strings.ToLower(s)), " ")
	return statusSynonyms[key]
}

// DateLayout is the wire and output format of every date.
const DateLayout = "2006-01-02"

// Filter is the structured form of a progress question. Zero fields are
// absent. The date range applies only when both ends are set.
type Filter struct {
	Username  string
	Course    string
	Status    Status
	StartDate time.Time
	EndDate   time.Time
}

// HasDateRange reports whether both ends of the range are present.
func (f Filter) HasDateRange() bool {
	return !f.StartDate.IsZero() && !f.EndDate.IsZero()
}

// IsEmpty reports whether the filter contributes no predicate. A half
// specified date range does not count.
func (f Filter) IsEmpty() bool {
	return f.Username == "" && f.Course == "" && f.Status == "" && !f.HasDateRange()
}

// Record is one learner/course row.
type Record struct {
	Username    string  `json:"username"`
	Course      string  `json:"course"`
	Status      string  `json:"status"`
	InitiatedOn *string `json:"course_initiate_date"`
	CompletedOn *string `json:"course_completion_date"`
}

// Mode selects what an empty filter means.
type Mode int

const (
	// ModeListAll returns every row for an empty filter (report listing).
	ModeListAll Mode = iota
	// ModeRequireFilter returns no rows for an empty filter (chat queries).
	ModeRequireFilter
)
