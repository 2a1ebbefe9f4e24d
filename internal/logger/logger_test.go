package logger

import (
	"strings"
	"testing"
)

func TestSanitizeKVs_RedactsSecrets(t *testing.T) {
	out := sanitizeKVs([]interface{}{"api_key", "sk-123", "course", "python"})
	if out[1] != "[REDACTED]" {
		t.Fatalf("expected api_key to be redacted, got %v", out[1])
	}
	if out[3] != "python" {
		t.Fatalf("expected course untouched, got %v", out[3])
	}
}

func TestSanitizeKVs_HashesSessionID(t *testing.T) {
	out := sanitizeKVs([]interface{}{"session_id", "abc"})
	s, ok := out[1].(string)
	if !ok || !strings.HasPrefix(s, "h:") {
		t.Fatalf("expected hashed session id, got %v", out[1])
	}
	again := sanitizeKVs([]interface{}{"session_id", "abc"})
	if again[1] != s {
		t.Fatalf("hash must be stable, got %v and %v", s, again[1])
	}
}

func TestSanitizeKVs_OddLength(t *testing.T) {
	out := sanitizeKVs([]interface{}{"k", "v", "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("unexpected output: %v", out)
	}
}
