package chat

import (
	"time"

	"github.com/abhisek/coursekit/internal/envutil"
)

// DefaultSessionID is used when a request carries no session identifier.
const DefaultSessionID = "default"

// Config holds router and session settings.
type Config struct {
	// ClassifierMaxTokens bounds the label reply. It only needs one word.
	ClassifierMaxTokens int

	ConversationTemperature float64
	ConversationMaxTokens   int

	// HistoryLimit caps the messages kept per session. Zero keeps all.
	HistoryLimit int

	// SessionTTL expires idle sessions in stores that support it.
	SessionTTL time.Duration

	// RedisAddr selects the redis session store when set.
	RedisAddr string
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{
		ClassifierMaxTokens:     10,
		ConversationTemperature: 0.7,
		ConversationMaxTokens:   800,
		HistoryLimit:            20,
		SessionTTL:              24 * time.Hour,
	}
}

// ConfigFromEnv reads COURSEKIT_* chat settings over the defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.RedisAddr = envutil.String("COURSEKIT_REDIS_ADDR", "")
	cfg.SessionTTL = envutil.Duration("COURSEKIT_SESSION_TTL", cfg.SessionTTL)
	cfg.HistoryLimit = envutil.Int("COURSEKIT_CHAT_HISTORY_LIMIT", cfg.HistoryLimit)
	return cfg
}
