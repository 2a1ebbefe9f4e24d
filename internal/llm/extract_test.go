package llm

import (
	"testing"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `  [1,2]  `, `[1,2]`},
		{"json tag", "```json\n[{\"q\":\"x\"}]\n```", `[{"q":"x"}]`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"longest segment wins", "```\nshort\n```\n```json\n[\"a much longer segment\"]\n```", `["a much longer segment"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFence(tt.in); got != tt.want {
				t.Fatalf("StripCodeFence() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractArray(t *testing.T) {
	got, err := ExtractArray("Here you go:\n[{\"q\":\"What?\"}]\nHope it helps.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != `[{"q":"What?"}]` {
		t.Fatalf("unexpected span: %s", got)
	}

	_, err = ExtractArray("no brackets here")
	if !IsInvalidResponse(err) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}

	_, err = ExtractArray("] backwards [")
	if !IsInvalidResponse(err) {
		t.Fatalf("expected ErrInvalidResponse for reversed brackets, got %v", err)
	}
}

func TestExtractObject(t *testing.T) {
	got, err := ExtractObject("```json\n{\"username\": \"alice\"}\n```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != `{"username": "alice"}` {
		t.Fatalf("unexpected span: %s", got)
	}
}

func TestValidateJSON_ReturnsDecoded(t *testing.T) {
	v, err := ValidateJSON(nil, []byte(`[1, "two"]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	arr, ok := v.([]any)
	if !ok || len(arr) != 2 {
		t.Fatalf("unexpected decoded value: %#v", v)
	}

	if _, err := ValidateJSON(nil, []byte(`nope`)); !IsInvalidResponse(err) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}
