package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2,
	}
}

var (
	errDown    = &ErrProviderUnavailable{Err: errors.New("503 from upstream")}
	errLimited = &ErrRateLimit{RetryAfter: time.Millisecond, Err: errors.New("429")}
	errGarbled = &ErrInvalidResponse{Err: errors.New("not JSON")}
	errCut     = &ErrMaxTokensExceeded{}
	errSlow    = &ErrProviderUnavailable{Timeout: true, Err: errors.New("slow")}
)

func TestRetrySequences(t *testing.T) {
	tests := []struct {
		name      string
		replies   []MockResponse
		wantText  string
		wantErr   error
		wantCalls int
	}{
		{"first try", []MockResponse{MockText("ok")}, "ok", nil, 1},
		{"outage then success", []MockResponse{MockError(errDown), MockText("ok")}, "ok", nil, 2},
		{"rate limit then success", []MockResponse{MockError(errLimited), MockText("ok")}, "ok", nil, 2},
		{"outage exhausts attempts", []MockResponse{MockError(errDown), MockError(errDown), MockError(errDown), MockText("never")}, "", errDown, 3},
		{"garbled output retried once", []MockResponse{MockError(errGarbled), MockError(errGarbled), MockText("never")}, "", errGarbled, 2},
		{"garbled then outage then success", []MockResponse{MockError(errGarbled), MockError(errDown), MockText("ok")}, "ok", nil, 3},
		{"truncation is final", []MockResponse{MockError(errCut), MockText("never")}, "", errCut, 1},
		{"timeout is final", []MockResponse{MockError(errSlow), MockText("never")}, "", errSlow, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.replies...)
			resp, err := WithRetry(mock, fastRetry(), nil).Generate(context.Background(), Request{})

			assert.Equal(t, tt.wantCalls, mock.CallCount())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, resp.Text())
		})
	}
}

func TestRetryZeroAttemptsStillCalls(t *testing.T) {
	mock := NewMockProvider(MockText("hello"))
	resp, err := WithRetry(mock, RetryConfig{}, nil).Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Text())
}

func TestRetryStopsWhenCancelled(t *testing.T) {
	mock := NewMockProvider(MockError(errDown), MockText("ok"))
	cfg := fastRetry()
	cfg.InitialWait = time.Hour
	cfg.MaxWait = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := WithRetry(mock, cfg, nil).Generate(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetryDoesNotSleepPastDeadline(t *testing.T) {
	mock := NewMockProvider(MockError(&ErrRateLimit{RetryAfter: time.Minute, Err: errors.New("429")}), MockText("ok"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	start := time.Now()
	_, err := WithRetry(mock, fastRetry(), nil).Generate(ctx, Request{})
	assert.True(t, IsUnavailable(err))
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, 1, mock.CallCount())
}

func TestBackoffBounds(t *testing.T) {
	r := &RetryProvider{config: RetryConfig{InitialWait: 100 * time.Millisecond, MaxWait: time.Second, Multiplier: 2}}
	for i := 0; i < 20; i++ {
		first := r.backoff(1, errDown)
		assert.GreaterOrEqual(t, first, 80*time.Millisecond)
		assert.LessOrEqual(t, first, 120*time.Millisecond)

		capped := r.backoff(10, errDown)
		assert.LessOrEqual(t, capped, 1200*time.Millisecond)
	}
	assert.Equal(t, time.Millisecond, r.backoff(1, errLimited))
}

func TestRetryModelIDDelegates(t *testing.T) {
	assert.Equal(t, "mock", WithRetry(NewMockProvider(), fastRetry(), nil).ModelID())
}
