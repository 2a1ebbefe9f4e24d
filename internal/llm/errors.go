package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrRateLimit indicates the provider returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the LLM returned content that could not be
// parsed or does not conform to the expected shape. Consumers of free-text
// completions return it from their parse boundary as well.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down, unreachable, or did
// not answer within the configured timeout.
type ErrProviderUnavailable struct {
	Timeout bool
	Err     error
}

func (e *ErrProviderUnavailable) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("LLM provider timed out: %v", e.Err)
	case e.Err != nil:
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	default:
		return "LLM provider unavailable"
	}
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded indicates the response was truncated because it
// hit the MaxTokens limit.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "LLM response truncated: max tokens exceeded"
}

// IsInvalidResponse reports whether err is a schema violation.
func IsInvalidResponse(err error) bool {
	var inv *ErrInvalidResponse
	return errors.As(err, &inv)
}

// IsUnavailable reports whether err means the backend could not be reached.
func IsUnavailable(err error) bool {
	var unavail *ErrProviderUnavailable
	var rl *ErrRateLimit
	return errors.As(err, &unavail) || errors.As(err, &rl)
}
