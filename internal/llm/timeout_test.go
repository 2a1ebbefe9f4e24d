package llm

import (
	"context"
	"testing"
	"time"
)

// blockingProvider waits for its context to end.
type blockingProvider struct{}

func (blockingProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingProvider) ModelID() string { return "blocking" }

func TestWithTimeout_ReportsUnavailable(t *testing.T) {
	p := WithTimeout(blockingProvider{}, 5*time.Millisecond)

	_, err := p.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !asUnavailable(err, &unavail) || !unavail.Timeout {
		t.Fatalf("expected timeout ErrProviderUnavailable, got %T (%v)", err, err)
	}
	if p.ModelID() != "blocking" {
		t.Fatalf("ModelID should delegate, got %q", p.ModelID())
	}
}

func TestWithTimeout_NonPositiveIsNoop(t *testing.T) {
	mock := NewMockProvider()
	if WithTimeout(mock, 0) != Provider(mock) {
		t.Fatal("expected provider to be returned unchanged")
	}
}

func TestWithTimeout_PassesThroughSuccess(t *testing.T) {
	p := WithTimeout(NewMockProvider(MockText("ok")), time.Second)
	resp, err := p.Generate(context.Background(), Request{})
	if err != nil || resp.Text() != "ok" {
		t.Fatalf("unexpected result: %v %v", resp, err)
	}
}

func asUnavailable(err error, target **ErrProviderUnavailable) bool {
	u, ok := err.(*ErrProviderUnavailable)
	if ok {
		*target = u
	}
	return ok
}
