// Package course turns a stored syllabus into a published SCORM package:
// detailed content generation, packaging, upload and a signed download
// link.
package course

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abhisek/coursekit/internal/assessment"
	"github.com/abhisek/coursekit/internal/envutil"
	"github.com/abhisek/coursekit/internal/logger"
	"github.com/abhisek/coursekit/internal/scorm"
	"github.com/abhisek/coursekit/internal/storage"
	"github.com/abhisek/coursekit/internal/syllabus"
)

// ErrSyllabusNotFound means the named syllabus does not exist.
var ErrSyllabusNotFound = errors.New("syllabus not found")

// OutlineFile is the detailed content written next to the package files.
const OutlineFile = "outline.txt"

// Config controls the pipeline.
type Config struct {
	// StagingDir is the root for per-request build directories. Empty
	// means the system temp dir.
	StagingDir string

	// SignedURLTTL is the lifetime of returned download links.
	SignedURLTTL time.Duration
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{SignedURLTTL: storage.MaxSignedURLTTL}
}

// ConfigFromEnv reads COURSEKIT_* course settings over the defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.StagingDir = envutil.String("COURSEKIT_STAGING_DIR", cfg.StagingDir)
	cfg.SignedURLTTL = envutil.Duration("COURSEKIT_SIGNED_URL_TTL", cfg.SignedURLTTL)
	return cfg
}

// Syllabi is the syllabus source the pipeline reads from.
type Syllabi interface {
	Get(ctx context.Context, name string) (*syllabus.Syllabus, error)
	GenerateDetailedContent(ctx context.Context, syllabusText, tone string) (string, error)
}

// Assembler packages course text into a zip under outDir.
type Assembler interface {
	Assemble(ctx context.Context, courseText, outDir string, settings assessment.Settings) (string, error)
}

// Result is a published course.
type Result struct {
	CourseName string `json:"course_name"`
	Outline    string `json:"outline"`
	PackageURL string `json:"scorm_url"`
}

// Service runs the course pipeline and lists published packages.
type Service struct {
	syllabi   Syllabi
	assembler Assembler
	store     storage.ObjectStore
	catalog   *storage.Catalog
	config    Config
	log       *logger.Logger
}

// NewService creates a Service.
func NewService(syllabi Syllabi, assembler Assembler, store storage.ObjectStore, cfg Config, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		syllabi:   syllabi,
		assembler: assembler,
		store:     store,
		catalog:   storage.NewCatalog(store, cfg.SignedURLTTL),
		config:    cfg,
		log:       log.With("service", "course"),
	}
}

// GenerateCourse builds and publishes the package for the named syllabus.
// The staging directory is removed whether or not the build succeeds.
func (s *Service) GenerateCourse(ctx context.Context, name string) (*Result, error) {
	syl, err := s.syllabi.Get(ctx, name)
	if errors.Is(err, syllabus.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSyllabusNotFound, name)
	}
	if err != nil {
		return nil, err
	}

	outline, err := s.syllabi.GenerateDetailedContent(ctx, syl.Text, syl.Request.AITone)
	if err != nil {
		return nil, err
	}

	dir, cleanup, err := scorm.Stage(s.config.StagingDir, name)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := cleanup(); err != nil {
			s.log.Warn("failed to remove staging dir", "dir", dir, "error", err)
		}
	}()

	if err := os.WriteFile(filepath.Join(dir, OutlineFile), []byte(outline), 0o644); err != nil {
		return nil, fmt.Errorf("write outline: %w", err)
	}

	zipPath, err := s.assembler.Assemble(ctx, outline, dir, syl.Request.Assessment())
	if err != nil {
		return nil, fmt.Errorf("assemble package: %w", err)
	}

	key := name + storage.PackageExt
	if err := s.upload(ctx, zipPath, key); err != nil {
		return nil, err
	}
	url, err := s.catalog.Link(ctx, key)
	if err != nil {
		return nil, err
	}

	s.log.Info("published course", "name", name, "key", key)
	return &Result{CourseName: name, Outline: outline, PackageURL: url}, nil
}

func (s *Service) upload(ctx context.Context, path, key string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open package: %w", err)
	}
	defer f.Close()
	return s.store.Put(ctx, key, f)
}

// List returns every published package.
func (s *Service) List(ctx context.Context) ([]storage.Package, error) {
	return s.catalog.List(ctx)
}

// Search returns packages whose name contains query.
func (s *Service) Search(ctx context.Context, query string) ([]storage.Package, error) {
	return s.catalog.Search(ctx, query)
}

// Filter returns packages whose name contains filter.
func (s *Service) Filter(ctx context.Context, filter string) ([]storage.Package, error) {
	return s.catalog.Filter(ctx, filter)
}
