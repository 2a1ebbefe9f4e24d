package scorm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/abhisek/coursekit/internal/assessment"
	"github.com/abhisek/coursekit/internal/logger"
)

// Package is an assembled course before it is written to disk. It is built
// once per request and discarded after archiving.
type Package struct {
	CourseID       string
	LessonHTML     string
	AssessmentHTML string // empty when no assessment was requested
	ManifestXML    []byte
	QuestionSource assessment.Source
}

// HasAssessment reports whether the package carries a quiz.
func (p *Package) HasAssessment() bool {
	return p.AssessmentHTML != ""
}

// Config controls the Assembler.
type Config struct {
	// ResetEndpoint is embedded in quiz pages for retake requests.
	ResetEndpoint string
}

// Assembler builds SCORM packages, fetching quiz questions when asked to.
type Assembler struct {
	supplier *assessment.Supplier
	config   Config
	log      *logger.Logger
}

// NewAssembler creates an Assembler.
func NewAssembler(supplier *assessment.Supplier, cfg Config, log *logger.Logger) *Assembler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Assembler{supplier: supplier, config: cfg, log: log.With("service", "scorm")}
}

// Build produces the in-memory package for courseText.
func (a *Assembler) Build(ctx context.Context, courseText, courseID, title string, settings assessment.Settings) (*Package, error) {
	pkg := &Package{CourseID: courseID}

	lesson, err := LessonPage(title, courseText, settings.Enabled())
	if err != nil {
		return nil, err
	}
	pkg.LessonHTML = lesson

	if settings.Enabled() {
		res := a.supplier.Supply(ctx, courseText, settings.Kind)
		page, err := assessment.Render(title, res.Questions, courseID, assessment.RenderOptions{
			MaxAttempts:   settings.MaxAttempts,
			ResetEndpoint: a.config.ResetEndpoint,
		})
		if err != nil {
			return nil, err
		}
		pkg.AssessmentHTML = page
		pkg.QuestionSource = res.Source
	}

	pkg.ManifestXML, err = BuildManifest(courseID, title, pkg.HasAssessment())
	if err != nil {
		return nil, err
	}
	return pkg, nil
}

// WriteTo writes the package documents into dir.
func (p *Package) WriteTo(dir string) error {
	files := map[string][]byte{
		LessonFile:   []byte(p.LessonHTML),
		ManifestFile: p.ManifestXML,
	}
	if p.HasAssessment() {
		files[AssessmentFile] = []byte(p.AssessmentHTML)
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}

// Assemble builds the package for courseText into outDir and archives the
// directory as outDir/<base>.zip. Files already present in outDir are
// archived too.
func (a *Assembler) Assemble(ctx context.Context, courseText, outDir string, settings assessment.Settings) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	base := filepath.Base(filepath.Clean(outDir))
	pkg, err := a.Build(ctx, courseText, CourseID(outDir), base, settings)
	if err != nil {
		return "", err
	}
	if err := pkg.WriteTo(outDir); err != nil {
		return "", err
	}

	zipPath, err := Archive(outDir, base+".zip")
	if err != nil {
		return "", err
	}

	a.log.Info("assembled package",
		"course_id", pkg.CourseID,
		"assessment", pkg.HasAssessment(),
		"question_source", string(pkg.QuestionSource),
		"path", zipPath,
	)
	return zipPath, nil
}
