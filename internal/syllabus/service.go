// Package syllabus drafts course syllabi and detailed course content with
// the LLM and keeps drafts in the application store for human review.
package syllabus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/coursekit/internal/envutil"
	"github.com/abhisek/coursekit/internal/llm"
	"github.com/abhisek/coursekit/internal/logger"
	"github.com/abhisek/coursekit/internal/store"
)

// ErrNotFound means no syllabus has the requested name.
var ErrNotFound = errors.New("syllabus not found")

// Config controls generation.
type Config struct {
	Temperature       float64
	SyllabusMaxTokens int
	ContentMaxTokens  int
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{
		Temperature:       0.7,
		SyllabusMaxTokens: 2000,
		ContentMaxTokens:  6000,
	}
}

// ConfigFromEnv reads COURSEKIT_SYLLABUS_* settings over the defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.SyllabusMaxTokens = envutil.Int("COURSEKIT_SYLLABUS_MAX_TOKENS", cfg.SyllabusMaxTokens)
	cfg.ContentMaxTokens = envutil.Int("COURSEKIT_CONTENT_MAX_TOKENS", cfg.ContentMaxTokens)
	return cfg
}

// Syllabus is a stored draft.
type Syllabus struct {
	Name      string    `json:"syllabus_name"`
	Text      string    `json:"syllabus"`
	Verified  bool      `json:"verified"`
	Request   Request   `json:"request"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service generates and manages syllabi.
type Service struct {
	provider llm.Provider
	repo     store.SyllabusRepo
	config   Config
	log      *logger.Logger
}

// NewService creates a Service.
func NewService(provider llm.Provider, repo store.SyllabusRepo, cfg Config, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{provider: provider, repo: repo, config: cfg, log: log.With("service", "syllabus")}
}

// GenerateSyllabus validates req, drafts a module-wise syllabus and stores
// it under req.Name(), replacing any earlier draft of the same name.
func (s *Service) GenerateSyllabus(ctx context.Context, req Request) (*Syllabus, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeSyllabus)
	resp, err := s.provider.Generate(ctx, llm.UserPrompt("", syllabusPrompt(req), s.config.Temperature, s.config.SyllabusMaxTokens))
	if err != nil {
		return nil, fmt.Errorf("generate syllabus: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("generate syllabus: %w", &llm.ErrInvalidResponse{Err: errors.New("empty completion")})
	}

	params, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode syllabus request: %w", err)
	}
	rec := &store.SyllabusRecord{
		Name:     req.Name(),
		Topic:    req.Topic,
		Audience: req.Audience,
		Params:   params,
		Text:     text,
	}
	if err := s.repo.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("save syllabus: %w", err)
	}

	s.log.Info("generated syllabus", "name", rec.Name, "modules", req.Modules)
	return &Syllabus{Name: rec.Name, Text: text, Request: req, UpdatedAt: rec.UpdatedAt}, nil
}

// GenerateDetailedContent expands a syllabus into full module content.
func (s *Service) GenerateDetailedContent(ctx context.Context, syllabusText, tone string) (string, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeCourseContent)
	resp, err := s.provider.Generate(ctx, llm.UserPrompt("", detailedContentPrompt(syllabusText, tone), s.config.Temperature, s.config.ContentMaxTokens))
	if err != nil {
		return "", fmt.Errorf("generate course content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("generate course content: %w", &llm.ErrInvalidResponse{Err: errors.New("empty completion")})
	}
	return text, nil
}

// Get returns the named syllabus or ErrNotFound.
func (s *Service) Get(ctx context.Context, name string) (*Syllabus, error) {
	rec, err := s.repo.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get syllabus: %w", err)
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return fromRecord(*rec, s.log), nil
}

// List returns every stored syllabus, most recently updated first.
func (s *Service) List(ctx context.Context) ([]Syllabus, error) {
	recs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list syllabi: %w", err)
	}
	out := make([]Syllabus, 0, len(recs))
	for _, r := range recs {
		out = append(out, *fromRecord(r, s.log))
	}
	return out, nil
}

// UpdateText stores a reviewer's edited text. The syllabus needs
// verifying again afterwards.
func (s *Service) UpdateText(ctx context.Context, name, text string) error {
	if err := s.repo.UpdateText(ctx, name, text); err != nil {
		return mapRepoError(err)
	}
	return nil
}

// Verify marks the syllabus as reviewed.
func (s *Service) Verify(ctx context.Context, name string) error {
	if err := s.repo.MarkVerified(ctx, name); err != nil {
		return mapRepoError(err)
	}
	s.log.Info("verified syllabus", "name", name)
	return nil
}

func mapRepoError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("update syllabus: %w", err)
}

func fromRecord(rec store.SyllabusRecord, log *logger.Logger) *Syllabus {
	out := &Syllabus{Name: rec.Name, Text: rec.Text, Verified: rec.Verified, UpdatedAt: rec.UpdatedAt}
	if len(rec.Params) > 0 {
		if err := json.Unmarshal(rec.Params, &out.Request); err != nil {
			log.Warn("unreadable syllabus request", "name", rec.Name, "error", err)
		}
	}
	if out.Request.Topic == "" {
		out.Request.Topic = rec.Topic
		out.Request.Audience = rec.Audience
	}
	return out
}
