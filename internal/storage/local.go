package storage

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/coursekit/internal/logger"
)

// ErrBadSignature is returned by Verify for a tampered or expired link.
var ErrBadSignature = errors.New("invalid or expired download signature")

// FilesPath is the route prefix local download links point at.
const FilesPath = "/files/"

// LocalStore keeps objects under a directory and issues signed links to
// the server's file route.
type LocalStore struct {
	dir     string
	baseURL string
	key     []byte
	now     func() time.Time
	log     *logger.Logger
}

// NewLocalStore creates the directory if needed.
func NewLocalStore(cfg Config, log *logger.Logger) (*LocalStore, error) {
	if cfg.LocalDir == "" {
		return nil, fmt.Errorf("missing local storage directory")
	}
	if cfg.SigningKey == "" {
		return nil, fmt.Errorf("missing signing key for local storage")
	}
	if log == nil {
		log = logger.NewNop()
	}
	if err := os.MkdirAll(cfg.LocalDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %w", ErrStorage, cfg.LocalDir, err)
	}
	return &LocalStore{
		dir:     cfg.LocalDir,
		baseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		key:     []byte(cfg.SigningKey),
		now:     time.Now,
		log:     log.With("service", "storage.local"),
	}, nil
}

func (s *LocalStore) Put(_ context.Context, key string, r io.Reader) error {
	if err := validKey(key); err != nil {
		return err
	}
	dst := s.path(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("%w: put %s: %w", ErrStorage, key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return fmt.Errorf("%w: put %s: %w", ErrStorage, key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: put %s: %w", ErrStorage, key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: put %s: %w", ErrStorage, key, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("%w: put %s: %w", ErrStorage, key, err)
	}
	s.log.Info("stored object", "key", key)
	return nil
}

func (s *LocalStore) List(_ context.Context) ([]string, error) {
	var out []string
	err := filepath.WalkDir(s.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".upload-") {
			return nil
		}
		rel, err := filepath.Rel(s.dir, p)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", ErrStorage, s.dir, err)
	}
	sort.Strings(out)
	return out, nil
}

// SignForRead returns <base>/files/<key>?expires=<unix>&sig=<hex>.
func (s *LocalStore) SignForRead(_ context.Context, key string, ttl time.Duration) (string, error) {
	if err := validKey(key); err != nil {
		return "", err
	}
	expires := strconv.FormatInt(s.now().Add(ttl).Unix(), 10)

	q := url.Values{}
	q.Set("expires", expires)
	q.Set("sig", s.sign(key, expires))
	return s.baseURL + FilesPath + escapeKey(key) + "?" + q.Encode(), nil
}

// Verify checks a download link's expiry and signature.
func (s *LocalStore) Verify(key, expires, sig string) error {
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return ErrBadSignature
	}
	if s.now().Unix() > exp {
		return ErrBadSignature
	}
	want, err := hex.DecodeString(s.sign(key, expires))
	if err != nil {
		return ErrBadSignature
	}
	got, err := hex.DecodeString(sig)
	if err != nil || !hmac.Equal(want, got) {
		return ErrBadSignature
	}
	return nil
}

// Path returns the file backing key.
func (s *LocalStore) Path(key string) (string, error) {
	if err := validKey(key); err != nil {
		return "", err
	}
	p := s.path(key)
	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: stat %s: %w", ErrStorage, key, err)
	}
	return p, nil
}

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.dir, filepath.FromSlash(key))
}

func (s *LocalStore) sign(key, expires string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(key + "\n" + expires))
	return hex.EncodeToString(mac.Sum(nil))
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
