package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/abhisek/coursekit/internal/llm"
	"github.com/abhisek/coursekit/internal/logger"
)

// SessionStore keeps conversation history per session. The router never
// holds history itself.
type SessionStore interface {
	// History returns the session's messages, oldest first. Unknown
	// sessions have no history.
	History(ctx context.Context, sessionID string) ([]llm.Message, error)

	// Append adds messages to the end of the session's history.
	Append(ctx context.Context, sessionID string, msgs ...llm.Message) error
}

// MemorySessionStore is an in-process SessionStore for single-instance
// deployments and tests. TTL is not enforced.
type MemorySessionStore struct {
	mu       sync.Mutex
	limit    int
	sessions map[string][]llm.Message
}

// NewMemorySessionStore creates a store that keeps at most limit messages
// per session (zero keeps all).
func NewMemorySessionStore(limit int) *MemorySessionStore {
	return &MemorySessionStore{limit: limit, sessions: make(map[string][]llm.Message)}
}

func (s *MemorySessionStore) History(_ context.Context, sessionID string) ([]llm.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.sessions[sessionID]
	out := make([]llm.Message, len(h))
	copy(out, h)
	return out, nil
}

func (s *MemorySessionStore) Append(_ context.Context, sessionID string, msgs ...llm.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := append(s.sessions[sessionID], msgs...)
	if s.limit > 0 && len(h) > s.limit {
		h = append([]llm.Message(nil), h[len(h)-s.limit:]...)
	}
	s.sessions[sessionID] = h
	return nil
}

// RedisSessionStore keeps each session as a redis list of JSON messages
// under coursekit:chat:<session_id>.
type RedisSessionStore struct {
	rdb   *goredis.Client
	limit int
	ttl   time.Duration
	log   *logger.Logger
}

const redisKeyPrefix = "coursekit:chat:"

// NewRedisSessionStore connects to cfg.RedisAddr and verifies the
// connection.
func NewRedisSessionStore(ctx context.Context, cfg Config, log *logger.Logger) (*RedisSessionStore, error) {
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	if log == nil {
		log = logger.NewNop()
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.RedisAddr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisSessionStore{
		rdb:   rdb,
		limit: cfg.HistoryLimit,
		ttl:   cfg.SessionTTL,
		log:   log.With("service", "chat.sessions"),
	}, nil
}

func (s *RedisSessionStore) History(ctx context.Context, sessionID string) ([]llm.Message, error) {
	raw, err := s.rdb.LRange(ctx, redisKeyPrefix+sessionID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load session history: %w", err)
	}
	out := make([]llm.Message, 0, len(raw))
	for _, r := range raw {
		var m llm.Message
		if err := json.Unmarshal([]byte(r), &m); err != nil {
			s.log.Warn("skipping unreadable session message", "session_id", sessionID, "error", err)
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *RedisSessionStore) Append(ctx context.Context, sessionID string, msgs ...llm.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	values := make([]any, 0, len(msgs))
	for _, m := range msgs {
		b, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("encode session message: %w", err)
		}
		values = append(values, b)
	}

	key := redisKeyPrefix + sessionID
	_, err := s.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.RPush(ctx, key, values...)
		if s.limit > 0 {
			p.LTrim(ctx, key, int64(-s.limit), -1)
		}
		if s.ttl > 0 {
			p.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("append session history: %w", err)
	}
	return nil
}

// Close releases the redis connection.
func (s *RedisSessionStore) Close() error {
	return s.rdb.Close()
}
