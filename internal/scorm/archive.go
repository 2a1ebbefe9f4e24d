package scorm

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
)

// Archive zips every file under dir into dir/zipName and returns the
// archive path. A stale archive of the same name is removed first and never
// included, so regenerating a package is idempotent.
func Archive(dir, zipName string) (string, error) {
	zipPath := filepath.Join(dir, zipName)
	if err := os.Remove(zipPath); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("remove stale archive: %w", err)
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() == zipName {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("walk %s: %w", dir, err)
	}

	out, err := os.Create(zipPath)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	zw := zip.NewWriter(out)

	for _, path := range files {
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			out.Close()
			return "", err
		}
		if err := addFile(zw, path, filepath.ToSlash(rel)); err != nil {
			out.Close()
			return "", err
		}
	}

	if err := zw.Close(); err != nil {
		out.Close()
		return "", fmt.Errorf("finish archive: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close archive: %w", err)
	}
	return zipPath, nil
}

func addFile(zw *zip.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("add %s: %w", name, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
