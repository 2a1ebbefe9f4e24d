package envutil

import (
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	t.Setenv("CK_TEST_DUR", "45s")
	if got := Duration("CK_TEST_DUR", time.Second); got != 45*time.Second {
		t.Fatalf("got %s", got)
	}
	t.Setenv("CK_TEST_DUR", "12")
	if got := Duration("CK_TEST_DUR", time.Second); got != 12*time.Second {
		t.Fatalf("bare integer: got %s", got)
	}
	t.Setenv("CK_TEST_DUR", "soon")
	if got := Duration("CK_TEST_DUR", time.Second); got != time.Second {
		t.Fatalf("invalid value should fall back, got %s", got)
	}
}

func TestIntAndString(t *testing.T) {
	t.Setenv("CK_TEST_INT", "x")
	if got := Int("CK_TEST_INT", 7); got != 7 {
		t.Fatalf("got %d", got)
	}
	t.Setenv("CK_TEST_STR", "  value ")
	if got := String("CK_TEST_STR", "d"); got != "value" {
		t.Fatalf("got %q", got)
	}
	if got := String("CK_TEST_UNSET_STR", "d"); got != "d" {
		t.Fatalf("got %q", got)
	}
}
