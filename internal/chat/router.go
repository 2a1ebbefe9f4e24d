// Package chat routes chatbot messages: a classifier call labels each
// message as a progress report request or small talk, report requests go
// through filter extraction and the progress query, and everything else is
// a session-scoped conversational turn.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/coursekit/internal/llm"
	"github.com/abhisek/coursekit/internal/logger"
	"github.com/abhisek/coursekit/internal/progress"
)

// ErrNotUnderstood means the message could not be classified or its filter
// could not be extracted. The underlying cause is wrapped alongside it.
var ErrNotUnderstood = errors.New("could not understand the request")

// ErrEmptyQuery is returned for blank messages.
var ErrEmptyQuery = errors.New("query is required")

// NoDataMessage accompanies a report with zero matching rows.
const NoDataMessage = "No data found in DB for the given query."

// ResponseType distinguishes the two reply shapes.
type ResponseType string

const (
	TypeReport       ResponseType = "report"
	TypeConversation ResponseType = "conversation"
)

// Response is the router's reply. Reports carry Results, or Message when
// nothing matched; conversations carry Reply.
type Response struct {
	Type    ResponseType      `json:"type"`
	Message string            `json:"message,omitempty"`
	Results []progress.Record `json:"results,omitempty"`
	Reply   string            `json:"reply,omitempty"`
}

// NoData reports whether a report matched no rows.
func (r *Response) NoData() bool {
	return r.Type == TypeReport && len(r.Results) == 0
}

// FilterExtractor turns a question into a progress filter.
type FilterExtractor interface {
	Extract(ctx context.Context, query string) (progress.Filter, error)
}

// ProgressFinder runs a progress filter.
type ProgressFinder interface {
	Find(ctx context.Context, f progress.Filter, mode progress.Mode) ([]progress.Record, error)
}

const classifyPrompt = `You classify messages sent to a learning-platform assistant.

Answer "report" if the message asks for learner progress data: who took, completed, started or is doing a course, a learner's course status, or completions within a date range.
Answer "conversation" for anything else, including greetings and general questions.

Reply with exactly one word: report or conversation.`

const conversationPrompt = `You are a friendly assistant for a corporate learning platform. Answer questions about courses, learning and the platform briefly and helpfully. If the user asks for learner progress data, tell them to ask for it directly, for example "Show me Sarah's progress in Python".`

// Router dispatches chat messages.
type Router struct {
	provider  llm.Provider
	extractor FilterExtractor
	finder    ProgressFinder
	sessions  SessionStore
	config    Config
	log       *logger.Logger
}

// NewRouter creates a Router. A nil session store falls back to an
// in-memory one.
func NewRouter(provider llm.Provider, extractor FilterExtractor, finder ProgressFinder, sessions SessionStore, cfg Config, log *logger.Logger) *Router {
	if log == nil {
		log = logger.NewNop()
	}
	if sessions == nil {
		sessions = NewMemorySessionStore(cfg.HistoryLimit)
	}
	return &Router{
		provider:  provider,
		extractor: extractor,
		finder:    finder,
		sessions:  sessions,
		config:    cfg,
		log:       log.With("service", "chat"),
	}
}

// Route classifies query and answers it. An empty sessionID means
// DefaultSessionID.
func (r *Router) Route(ctx context.Context, sessionID, query string) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if sessionID == "" {
		sessionID = DefaultSessionID
	}

	kind, err := r.Classify(ctx, query)
	if err != nil {
		return nil, err
	}
	r.log.Debug("routed chat message", "session_id", sessionID, "type", kind)

	if kind == TypeReport {
		return r.report(ctx, query)
	}
	return r.converse(ctx, sessionID, query)
}

// Classify labels query. Any label other than report is treated as
// conversation.
func (r *Router) Classify(ctx context.Context, query string) (ResponseType, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeIntent)
	resp, err := r.provider.Generate(ctx, llm.UserPrompt(classifyPrompt, query, 0, r.config.ClassifierMaxTokens))
	if err != nil {
		return "", fmt.Errorf("%w: classify: %w", ErrNotUnderstood, err)
	}

	label := normalizeLabel(resp.Text())
	switch label {
	case string(TypeReport):
		return TypeReport, nil
	case string(TypeConversation):
		return TypeConversation, nil
	default:
		r.log.Warn("unexpected intent label, treating as conversation", "label", label)
		return TypeConversation, nil
	}
}

func normalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Trim(s, " \t\r\n\"'`.!:")
}

func (r *Router) report(ctx context.Context, query string) (*Response, error) {
	f, err := r.extractor.Extract(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotUnderstood, err)
	}

	recs, err := r.finder.Find(ctx, f, progress.ModeRequireFilter)
	if err != nil {
		return nil, fmt.Errorf("progress report: %w", err)
	}
	if len(recs) == 0 {
		return &Response{Type: TypeReport, Message: NoDataMessage}, nil
	}
	return &Response{Type: TypeReport, Results: recs}, nil
}

func (r *Router) converse(ctx context.Context, sessionID, query string) (*Response, error) {
	history, err := r.sessions.History(ctx, sessionID)
	if err != nil {
		r.log.Warn("session history unavailable, starting fresh", "session_id", sessionID, "error", err)
		history = nil
	}

	user := llm.Message{Role: llm.RoleUser, Content: query}
	req := llm.Request{
		System:      conversationPrompt,
		Messages:    append(history, user),
		Temperature: r.config.ConversationTemperature,
		MaxTokens:   r.config.ConversationMaxTokens,
	}

	resp, err := r.provider.Generate(llm.WithPurpose(ctx, llm.PurposeConversation), req)
	if err != nil {
		return nil, fmt.Errorf("conversation turn: %w", err)
	}
	reply := resp.Text()

	if err := r.sessions.Append(ctx, sessionID, user, llm.Message{Role: llm.RoleAssistant, Content: reply}); err != nil {
		r.log.Warn("failed to save session history", "session_id", sessionID, "error", err)
	}
	return &Response{Type: TypeConversation, Reply: reply}, nil
}
