package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockText is a canned plain-text completion.
func MockText(text string) MockResponse {
	return MockResponse{Content: json.RawMessage(text)}
}

// MockJSON marshals v into a canned completion. It panics on values that
// cannot be marshalled, which only happens with test mistakes.
func MockJSON(v any) MockResponse {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return MockResponse{Content: b}
}

// MockError is a canned failure.
func MockError(err error) MockResponse {
	return MockResponse{Err: err}
}

// Responder produces a reply once the canned queue is drained. The purpose
// argument is the label attached with WithPurpose.
type Responder func(purpose string, req Request) MockResponse

// MockProvider is a deterministic Provider for tests and offline runs.
// Canned responses are served in FIFO order; after that the Responder
// answers, and without one every call fails as unavailable.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	responder Responder
	model     string

	// Calls records every request in order. Read it through CallCount and
	// LastCall while calls may still be in flight.
	Calls []Request
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses, model: "mock"}
}

// WithResponder sets the fallback used when the queue is empty.
func (m *MockProvider) WithResponder(r Responder) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responder = r
	return m
}

func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	var next MockResponse
	switch {
	case len(m.responses) > 0:
		next = m.responses[0]
		m.responses = m.responses[1:]
	case m.responder != nil:
		r := m.responder
		m.mu.Unlock()
		next = r(PurposeFrom(ctx), req)
		m.mu.Lock()
	default:
		m.mu.Unlock()
		return nil, &ErrProviderUnavailable{}
	}
	m.mu.Unlock()

	if next.Err != nil {
		return nil, next.Err
	}
	if err := validateResponse(req.Schema, next.Content); err != nil {
		return nil, err
	}
	return &Response{
		Content:    next.Content,
		Usage:      next.Usage,
		Model:      m.model,
		StopReason: "end",
	}, nil
}

func (m *MockProvider) ModelID() string {
	return m.model
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// Pending returns the number of canned responses not yet served.
func (m *MockProvider) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.responses)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent request, or a zero Request.
func (m *MockProvider) LastCall() Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return Request{}
	}
	return m.Calls[len(m.Calls)-1]
}
