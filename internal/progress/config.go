package progress

import (
	"time"

	"github.com/abhisek/coursekit/internal/envutil"
)

// Config holds progress database and extraction settings.
type Config struct {
	// Driver is "sqlite" or "postgres".
	Driver string
	DSN    string

	// QueryTimeout bounds each query. Zero disables it.
	QueryTimeout time.Duration

	// Temperature and MaxTokens tune the filter extraction call.
	Temperature float64
	MaxTokens   int
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{
		Driver:       "sqlite",
		DSN:          "progress.db",
		QueryTimeout: 10 * time.Second,
		Temperature:  0.2,
		MaxTokens:    300,
	}
}

// ConfigFromEnv reads COURSEKIT_PROGRESS_* settings over the defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.Driver = envutil.String("COURSEKIT_PROGRESS_DRIVER", cfg.Driver)
	cfg.DSN = envutil.String("COURSEKIT_PROGRESS_DSN", cfg.DSN)
	cfg.QueryTimeout = envutil.Duration("COURSEKIT_QUERY_TIMEOUT", cfg.QueryTimeout)
	return cfg
}
