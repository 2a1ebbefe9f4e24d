package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// Provider is the core abstraction for LLM interaction. Every consumer in
// coursekit (syllabus drafting, quiz generation, filter extraction, intent
// classification, conversation) goes through Generate.
type Provider interface {
	// Generate sends a prompt to the LLM. When the request carries a Schema
	// the provider asks for native structured output and validates the
	// result; otherwise Content is the raw completion text, which may be
	// malformed, verbose or wrapped in code fences.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt.
	System string

	// Messages is the conversation history. Single-shot consumers send one
	// user message; conversational turns send the whole session history.
	Messages []Message

	// Schema, when set, requests native structured output.
	Schema *Schema

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the LLM.
type Schema struct {
	// Name identifies this schema. Kebab-case, e.g. "progress-filter".
	Name string

	// Description is sent to providers that accept one.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the LLM's output.
type Response struct {
	// Content is the generated output: validated JSON when a Schema was
	// requested, raw completion text otherwise.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason is normalized to "end", "max_tokens" or "error".
	StopReason string
}

// Text returns the completion as trimmed text.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(string(r.Content))
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// UserPrompt is a convenience for the common single-turn request shape.
func UserPrompt(system, user string, temperature float64, maxTokens int) Request {
	return Request{
		System:      system,
		Messages:    []Message{{Role: RoleUser, Content: user}},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
}

// normalizeTurns makes a session history acceptable to APIs that require
// strictly alternating turns starting with the user: empty messages and
// leading assistant turns are dropped, and consecutive turns of the same
// role are merged.
func normalizeTurns(msgs []Message) []Message {
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		text := strings.TrimSpace(m.Content)
		if text == "" {
			continue
		}
		if len(out) == 0 && m.Role != RoleUser {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Role == m.Role {
			out[n-1].Content += "\n\n" + text
			continue
		}
		out = append(out, Message{Role: m.Role, Content: text})
	}
	return out
}
