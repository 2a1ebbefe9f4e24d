package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/abhisek/coursekit/internal/logger"
)

// GCSStore keeps packages in a Google Cloud Storage bucket. The client
// honors STORAGE_EMULATOR_HOST for local development.
type GCSStore struct {
	client *storage.Client
	bucket string
	log    *logger.Logger
}

// NewGCSStore creates a client for cfg.Bucket.
func NewGCSStore(ctx context.Context, cfg Config, log *logger.Logger) (*GCSStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("missing GCS bucket name")
	}
	if log == nil {
		log = logger.NewNop()
	}

	opts := clientOptionsFromEnv()
	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: create storage client: %w", ErrStorage, err)
	}
	return &GCSStore{client: client, bucket: cfg.Bucket, log: log.With("service", "storage.gcs")}, nil
}

// clientOptionsFromEnv accepts credentials as inline JSON or a file path.
func clientOptionsFromEnv() []option.ClientOption {
	creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}

func (s *GCSStore) Put(ctx context.Context, key string, r io.Reader) error {
	if err := validKey(key); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType(key)
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("%w: write %s: %w", ErrStorage, key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrStorage, key, err)
	}
	s.log.Info("uploaded object", "bucket", s.bucket, "key", key)
	return nil
}

func (s *GCSStore) List(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	it := s.client.Bucket(s.bucket).Objects(ctx, nil)
	var out []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: list %s: %w", ErrStorage, s.bucket, err)
		}
		out = append(out, attrs.Name)
	}
	sort.Strings(out)
	return out, nil
}

// SignForRead returns a V4 signed GET URL. ttl is clamped to the GCS
// maximum.
func (s *GCSStore) SignForRead(_ context.Context, key string, ttl time.Duration) (string, error) {
	if ttl <= 0 || ttl > MaxSignedURLTTL {
		ttl = MaxSignedURLTTL
	}
	u, err := s.client.Bucket(s.bucket).SignedURL(key, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("%w: sign %s: %w", ErrStorage, key, err)
	}
	return u, nil
}

// Close releases the client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

func contentType(key string) string {
	switch {
	case strings.HasSuffix(strings.ToLower(key), ".zip"):
		return "application/zip"
	case strings.HasSuffix(strings.ToLower(key), ".txt"):
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
