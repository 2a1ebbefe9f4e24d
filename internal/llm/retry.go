package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/abhisek/coursekit/internal/logger"
)

// RetryProvider retries transient failures with capped exponential backoff.
// It never sleeps past the caller's deadline.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
	log    *logger.Logger
}

// WithRetry wraps a Provider with retry logic. A nil logger is allowed.
func WithRetry(p Provider, cfg RetryConfig, log *logger.Logger) Provider {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = 1
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &RetryProvider{inner: p, config: cfg, log: log.With("component", "llm.retry")}
}

type retryDecision int

const (
	giveUp retryDecision = iota
	retryOnce
	retryBackoff
)

// classifyRetry decides what a failure allows. Malformed output is worth
// exactly one more try; rate limits and outages back off; truncation,
// timeouts and cancellation are final.
func classifyRetry(err error) retryDecision {
	var (
		maxTok  *ErrMaxTokensExceeded
		invalid *ErrInvalidResponse
		unavail *ErrProviderUnavailable
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return giveUp
	case errors.As(err, &maxTok):
		return giveUp
	case errors.As(err, &invalid):
		return retryOnce
	case errors.As(err, &unavail) && unavail.Timeout:
		return giveUp
	}
	return retryBackoff
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	purpose := PurposeFrom(ctx)
	usedInvalidRetry := false

	var err error
	for attempt := 1; ; attempt++ {
		var resp *Response
		resp, err = r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		decision := classifyRetry(err)
		if decision == retryOnce {
			if usedInvalidRetry {
				decision = giveUp
			}
			usedInvalidRetry = true
		}
		if decision == giveUp || attempt >= r.config.MaxAttempts {
			break
		}

		wait := r.backoff(attempt, err)
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < wait {
			r.log.Debug("not retrying past deadline", "purpose", purpose, "wait", wait.String())
			break
		}
		r.log.Debug("retrying LLM request",
			"purpose", purpose,
			"attempt", attempt,
			"wait", wait.String(),
			"error", err.Error(),
		)

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
	return nil, err
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// backoff returns the wait before the next attempt. attempt starts at 1.
// A server-supplied Retry-After wins over the computed delay.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt-1))
	if r.config.MaxWait > 0 {
		wait = math.Min(wait, float64(r.config.MaxWait))
	}
	// Spread retries by up to 20% either way.
	wait *= 0.8 + 0.4*rand.Float64()
	return time.Duration(wait)
}
