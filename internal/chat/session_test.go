package chat

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/abhisek/coursekit/internal/llm"
)

// testSessionStore checks the SessionStore contract. store must keep at
// most 3 messages per session.
func testSessionStore(t *testing.T, store SessionStore) {
	t.Helper()
	ctx := context.Background()
	id := uuid.NewString()

	h, err := store.History(ctx, id)
	if err != nil {
		t.Fatalf("History(new): %v", err)
	}
	if len(h) != 0 {
		t.Fatalf("new session has %d messages", len(h))
	}

	msgs := []llm.Message{
		{Role: llm.RoleUser, Content: "one"},
		{Role: llm.RoleAssistant, Content: "two"},
	}
	if err := store.Append(ctx, id, msgs...); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.Append(ctx, id, llm.Message{Role: llm.RoleUser, Content: "three"}, llm.Message{Role: llm.RoleAssistant, Content: "four"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	h, err = store.History(ctx, id)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(h) != 3 {
		t.Fatalf("expected history capped at 3, got %d", len(h))
	}
	if h[0].Content != "two" || h[2].Content != "four" || h[2].Role != llm.RoleAssistant {
		t.Errorf("expected newest messages in order, got %+v", h)
	}
}

func TestMemorySessionStore(t *testing.T) {
	testSessionStore(t, NewMemorySessionStore(3))
}

func TestMemorySessionStore_HistoryIsCopy(t *testing.T) {
	s := NewMemorySessionStore(0)
	ctx := context.Background()
	_ = s.Append(ctx, "x", llm.Message{Role: llm.RoleUser, Content: "a"})

	h, _ := s.History(ctx, "x")
	h[0].Content = "mutated"

	h2, _ := s.History(ctx, "x")
	if h2[0].Content != "a" {
		t.Fatal("History must not expose internal state")
	}
}

func TestRedisSessionStore(t *testing.T) {
	addr := os.Getenv("COURSEKIT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("COURSEKIT_TEST_REDIS_ADDR not set")
	}
	cfg := DefaultConfig()
	cfg.RedisAddr = addr
	cfg.HistoryLimit = 3

	store, err := NewRedisSessionStore(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewRedisSessionStore: %v", err)
	}
	defer store.Close()
	testSessionStore(t, store)
}

func TestNewRedisSessionStore_RequiresAddr(t *testing.T) {
	if _, err := NewRedisSessionStore(context.Background(), DefaultConfig(), nil); err == nil {
		t.Fatal("expected error without address")
	}
}

func TestNormalizeLabel(t *testing.T) {
	for in, want := range map[string]string{
		"report":           "report",
		" Report.\n":       "report",
		`"conversation"`:   "conversation",
		"CONVERSATION!":    "conversation",
		"report: progress": "report: progress",
	} {
		if got := normalizeLabel(in); got != want {
			t.Errorf("normalizeLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
