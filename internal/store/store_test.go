package store

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "coursekit.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		if err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got); err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	for i := 0; i < 2; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("open #%d: %v", i+1, err)
		}
		s.Close()
	}
}

func TestEventRepo_AppendAndQuery(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for _, purpose := range []string{"syllabus", "intent", "intent"} {
		err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
			Provider:     "openai",
			Model:        "gpt-4o-mini",
			Purpose:      purpose,
			InputTokens:  10,
			OutputTokens: 4,
			LatencyMs:    100,
			Success:      true,
			RequestBody:  "[user]\nhello",
			ResponseBody: "report",
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 events, got %d", len(all))
	}
	if all[0].ID < all[1].ID {
		t.Fatal("expected newest first")
	}
	if !all[0].Success || all[0].ResponseBody != "report" {
		t.Fatalf("unexpected event: %+v", all[0])
	}

	intents, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "intent", Limit: 1})
	if err != nil {
		t.Fatalf("query purpose: %v", err)
	}
	if len(intents) != 1 || intents[0].Purpose != "intent" {
		t.Fatalf("unexpected filtered events: %+v", intents)
	}

	older, err := repo.QueryLLMEvents(ctx, QueryOpts{Before: int64(all[0].ID)})
	if err != nil {
		t.Fatalf("query before: %v", err)
	}
	if len(older) != 2 {
		t.Fatalf("expected 2 older events, got %d", len(older))
	}
}

func TestEventRepo_GetMissing(t *testing.T) {
	s := openTestStore(t)
	e, err := s.EventRepo().GetLLMEvent(context.Background(), 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e != nil {
		t.Fatalf("expected nil event, got %+v", e)
	}
}

func TestEventRepo_Usage(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "openai", Model: "gpt-4o", Purpose: "syllabus", InputTokens: 100, OutputTokens: 50, LatencyMs: 200, Success: true},
		{Provider: "openai", Model: "gpt-4o", Purpose: "syllabus", InputTokens: 300, OutputTokens: 150, LatencyMs: 400, Success: true},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "intent", InputTokens: 10, OutputTokens: 1, LatencyMs: 50, Success: false, ErrorMessage: "boom"},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("expected 2 purposes, got %d", len(byPurpose))
	}
	top := byPurpose[0]
	if top.Purpose != "syllabus" || top.Calls != 2 || top.InputTokens != 400 || top.OutputTokens != 200 || top.AvgLatencyMs != 300 {
		t.Fatalf("unexpected syllabus usage: %+v", top)
	}
	if top.Failures != 0 || top.FailureRate() != 0 {
		t.Fatalf("syllabus calls all succeeded, got %+v", top)
	}
	if intent := byPurpose[1]; intent.Purpose != "intent" || intent.Failures != 1 || intent.FailureRate() != 1 {
		t.Fatalf("unexpected intent usage: %+v", intent)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 2 || byModel[0].Model != "gpt-4o" || byModel[0].Calls != 2 {
		t.Fatalf("unexpected model usage: %+v", byModel)
	}

	failed, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "intent"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if failed[0].Success || failed[0].ErrorMessage != "boom" {
		t.Fatalf("expected failed event, got %+v", failed[0])
	}

	onlyFailed, err := repo.QueryLLMEvents(ctx, QueryOpts{FailedOnly: true})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(onlyFailed) != 1 || onlyFailed[0].Purpose != "intent" {
		t.Fatalf("expected only the failed intent event, got %+v", onlyFailed)
	}
}

func TestSyllabusRepo_Lifecycle(t *testing.T) {
	s := openTestStore(t)
	repo := s.SyllabusRepo()
	ctx := context.Background()

	got, err := repo.Get(ctx, "python_beginner")
	if err != nil {
		t.Fatalf("get (empty): %v", err)
	}
	if got != nil {
		t.Fatal("expected nil syllabus when none exist")
	}

	rec := &SyllabusRecord{
		Name:     "python_beginner",
		Topic:    "Python",
		Audience: "Beginner",
		Params:   json.RawMessage(`{"assessment_type":"MCQ","attempts":2}`),
		Text:     "Module 1: Basics",
	}
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.MarkVerified(ctx, rec.Name); err != nil {
		t.Fatalf("verify: %v", err)
	}

	got, err = repo.Get(ctx, rec.Name)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Verified || got.Text != "Module 1: Basics" || got.Topic != "Python" {
		t.Fatalf("unexpected record: %+v", got)
	}
	var params map[string]any
	if err := json.Unmarshal(got.Params, &params); err != nil || params["assessment_type"] != "MCQ" {
		t.Fatalf("params not preserved: %s (%v)", got.Params, err)
	}

	if err := repo.UpdateText(ctx, rec.Name, "Module 1: Edited"); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = repo.Get(ctx, rec.Name)
	if got.Verified {
		t.Fatal("editing must clear verification")
	}
	if got.Text != "Module 1: Edited" {
		t.Fatalf("text not updated: %q", got.Text)
	}

	// Saving again replaces and resets.
	rec.Text = "Module 1: Regenerated"
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("resave: %v", err)
	}
	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Text != "Module 1: Regenerated" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestSyllabusRepo_UpdateMissing(t *testing.T) {
	s := openTestStore(t)
	repo := s.SyllabusRepo()
	ctx := context.Background()

	if err := repo.UpdateText(ctx, "nope", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.MarkVerified(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDefaultDBPath_Env(t *testing.T) {
	want := filepath.Join(t.TempDir(), "nested", "app.db")
	t.Setenv("COURSEKIT_DB", want)

	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDefaultDBPath_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("COURSEKIT_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)

	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if want := filepath.Join(dir, "coursekit", "coursekit.db"); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
