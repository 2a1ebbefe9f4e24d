// Package storage holds SCORM packages: a GCS bucket in production or a
// local directory with HMAC-signed download links, plus a catalog that
// lists and searches the stored packages.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/abhisek/coursekit/internal/envutil"
	"github.com/abhisek/coursekit/internal/logger"
)

// ErrStorage wraps every failure talking to the object store.
var ErrStorage = errors.New("storage failure")

// ErrNotFound means the object does not exist.
var ErrNotFound = errors.New("object not found")

// ObjectStore is the blob storage the course pipeline writes packages to.
type ObjectStore interface {
	// Put writes r under key, replacing any existing object.
	Put(ctx context.Context, key string, r io.Reader) error

	// List returns every object key, sorted.
	List(ctx context.Context) ([]string, error)

	// SignForRead returns a time-limited download URL for key.
	SignForRead(ctx context.Context, key string, ttl time.Duration) (string, error)
}

const (
	ModeGCS   = "gcs"
	ModeLocal = "local"
)

// Config selects and configures the object store.
type Config struct {
	Mode string

	// Bucket is the GCS bucket name.
	Bucket string

	// LocalDir, PublicBaseURL and SigningKey configure the local store.
	// PublicBaseURL is the externally visible server address.
	LocalDir      string
	PublicBaseURL string
	SigningKey    string

	// SignedURLTTL is the lifetime of download links. GCS caps V4 signed
	// URLs at seven days.
	SignedURLTTL time.Duration
}

// MaxSignedURLTTL is the longest lifetime GCS accepts for V4 signatures.
const MaxSignedURLTTL = 7 * 24 * time.Hour

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{
		Mode:          ModeLocal,
		LocalDir:      "packages",
		PublicBaseURL: "http://localhost:8080",
		SignedURLTTL:  MaxSignedURLTTL,
	}
}

// ConfigFromEnv reads COURSEKIT_* storage settings over the defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.Mode = strings.ToLower(envutil.String("COURSEKIT_STORAGE_MODE", cfg.Mode))
	cfg.Bucket = envutil.String("COURSEKIT_GCS_BUCKET", cfg.Bucket)
	cfg.LocalDir = envutil.String("COURSEKIT_LOCAL_STORAGE_DIR", cfg.LocalDir)
	cfg.PublicBaseURL = envutil.String("COURSEKIT_PUBLIC_BASE_URL", cfg.PublicBaseURL)
	cfg.SigningKey = envutil.String("COURSEKIT_SIGNING_KEY", cfg.SigningKey)
	cfg.SignedURLTTL = envutil.Duration("COURSEKIT_SIGNED_URL_TTL", cfg.SignedURLTTL)
	return cfg
}

// Open builds the store selected by cfg.Mode.
func Open(ctx context.Context, cfg Config, log *logger.Logger) (ObjectStore, error) {
	switch cfg.Mode {
	case ModeGCS:
		return NewGCSStore(ctx, cfg, log)
	case ModeLocal, "":
		return NewLocalStore(cfg, log)
	default:
		return nil, fmt.Errorf("unknown storage mode %q", cfg.Mode)
	}
}

// validKey rejects keys that are empty, absolute or escape the root.
func validKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return fmt.Errorf("invalid object key %q", key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("invalid object key %q", key)
		}
	}
	return nil
}
