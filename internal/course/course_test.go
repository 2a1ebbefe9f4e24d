package course

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/coursekit/internal/assessment"
	"github.com/abhisek/coursekit/internal/llm"
	"github.com/abhisek/coursekit/internal/scorm"
	"github.com/abhisek/coursekit/internal/storage"
	"github.com/abhisek/coursekit/internal/store"
	"github.com/abhisek/coursekit/internal/syllabus"
)

type fixture struct {
	svc      *Service
	syllabi  *syllabus.Service
	local    *storage.LocalStore
	mock     *llm.MockProvider
	staging  string
	packages string
}

func newFixture(t *testing.T, objects storage.ObjectStore) *fixture {
	t.Helper()
	root := t.TempDir()

	st, err := store.Open(filepath.Join(root, "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	mock := llm.NewMockProvider()
	syllabi := syllabus.NewService(mock, st.SyllabusRepo(), syllabus.DefaultConfig(), nil)
	supplier := assessment.NewSupplier(mock, assessment.DefaultConfig(), nil)
	assembler := scorm.NewAssembler(supplier, scorm.Config{}, nil)

	f := &fixture{syllabi: syllabi, mock: mock, staging: filepath.Join(root, "staging"), packages: filepath.Join(root, "packages")}
	if objects == nil {
		cfg := storage.DefaultConfig()
		cfg.LocalDir = f.packages
		cfg.SigningKey = "k"
		f.local, err = storage.NewLocalStore(cfg, nil)
		require.NoError(t, err)
		objects = f.local
	}

	cfg := DefaultConfig()
	cfg.StagingDir = f.staging
	cfg.SignedURLTTL = time.Hour
	f.svc = NewService(syllabi, assembler, objects, cfg, nil)
	return f
}

func (f *fixture) seedSyllabus(t *testing.T, assessmentType string) string {
	t.Helper()
	f.mock.AddResponse(llm.MockText("Module 1: Variables\nModule 2: Loops"))
	s, err := f.syllabi.GenerateSyllabus(context.Background(), syllabus.Request{
		Topic:          "Python Basics",
		Audience:       "Beginner",
		Duration:       "02:00",
		AssessmentType: assessmentType,
		Attempts:       2,
		Modules:        2,
	})
	require.NoError(t, err)
	return s.Name
}

func zipEntries(t *testing.T, path string) []string {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()
	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

func assertStagingEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return
	}
	require.NoError(t, err)
	assert.Empty(t, entries, "staging directory must be cleaned up")
}

func TestGenerateCourse(t *testing.T) {
	f := newFixture(t, nil)
	name := f.seedSyllabus(t, "MCQ")

	// Content reply; the question request then finds the queue empty and
	// the supplier falls back to the deterministic set.
	f.mock.AddResponse(llm.MockText("Python Basics\n\nModule 1 explains variables."))

	res, err := f.svc.GenerateCourse(context.Background(), name)
	require.NoError(t, err)
	assert.Equal(t, "python_basics_beginner", res.CourseName)
	assert.Equal(t, "Python Basics\n\nModule 1 explains variables.", res.Outline)
	assert.Contains(t, res.PackageURL, "/files/python_basics_beginner.zip?")

	path, err := f.local.Path("python_basics_beginner.zip")
	require.NoError(t, err)
	assert.Equal(t, []string{"assessment.html", "imsmanifest.xml", "index.html", "outline.txt"}, zipEntries(t, path))

	assertStagingEmpty(t, f.staging)

	list, err := f.svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "python_basics_beginner", list[0].CourseName)
}

func TestGenerateCourse_NoAssessment(t *testing.T) {
	f := newFixture(t, nil)
	name := f.seedSyllabus(t, "")
	f.mock.AddResponse(llm.MockText("Outline"))

	_, err := f.svc.GenerateCourse(context.Background(), name)
	require.NoError(t, err)

	path, err := f.local.Path(name + ".zip")
	require.NoError(t, err)
	assert.Equal(t, []string{"imsmanifest.xml", "index.html", "outline.txt"}, zipEntries(t, path))
}

func TestGenerateCourse_MissingSyllabus(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.GenerateCourse(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSyllabusNotFound)
	assert.Equal(t, 0, f.mock.CallCount())
}

func TestGenerateCourse_ContentFailure(t *testing.T) {
	f := newFixture(t, nil)
	name := f.seedSyllabus(t, "MCQ")
	f.mock.AddResponse(llm.MockError(&llm.ErrProviderUnavailable{Timeout: true}))

	_, err := f.svc.GenerateCourse(context.Background(), name)
	assert.True(t, llm.IsUnavailable(err))
	assertStagingEmpty(t, f.staging)
}

type failingStore struct{}

func (failingStore) Put(context.Context, string, io.Reader) error {
	return errors.Join(storage.ErrStorage, errors.New("bucket gone"))
}

func (failingStore) List(context.Context) ([]string, error) { return nil, nil }

func (failingStore) SignForRead(context.Context, string, time.Duration) (string, error) {
	return "", errors.New("unreachable")
}

func TestGenerateCourse_StorageFailure(t *testing.T) {
	f := newFixture(t, failingStore{})
	name := f.seedSyllabus(t, "True/False")
	f.mock.AddResponse(llm.MockText("Outline"))

	_, err := f.svc.GenerateCourse(context.Background(), name)
	assert.ErrorIs(t, err, storage.ErrStorage)
	assertStagingEmpty(t, f.staging)
}

func TestSearchAndFilter(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	for _, key := range []string{"python_basics_beginner.zip", "go_intro_expert.zip", "readme.txt"} {
		require.NoError(t, f.local.Put(ctx, key, strings.NewReader("x")))
	}

	found, err := f.svc.Search(ctx, "PYTHON")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "python_basics_beginner.zip", found[0].Key)

	filtered, err := f.svc.Filter(ctx, "expert")
	require.NoError(t, err)
	require.Len(t, filtered, 1)

	all, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
