package scorm

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// CourseID derives the package id from an output directory's base name:
// lowercase, spaces replaced by underscores.
func CourseID(dir string) string {
	base := filepath.Base(filepath.Clean(dir))
	return strings.ToLower(strings.ReplaceAll(base, " ", "_"))
}

// Stage creates a request-unique directory root/<uuid>/name so concurrent
// builds of the same course never share files. The returned cleanup removes
// the whole request directory.
func Stage(root, name string) (dir string, cleanup func() error, err error) {
	if root == "" {
		root = os.TempDir()
	}
	reqDir := filepath.Join(root, uuid.NewString())
	dir = filepath.Join(reqDir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create staging dir: %w", err)
	}
	return dir, func() error { return os.RemoveAll(reqDir) }, nil
}
