package storage

import (
	"context"
	"path"
	"strings"
	"time"
)

// PackageExt is the suffix of every SCORM package key.
const PackageExt = ".zip"

// Package is one stored SCORM package with a download link.
type Package struct {
	CourseName string `json:"course_name"`
	Key        string `json:"key"`
	URL        string `json:"scorm_url"`
}

// Catalog lists and searches the packages in an ObjectStore.
type Catalog struct {
	store ObjectStore
	ttl   time.Duration
}

// NewCatalog creates a Catalog whose links live for ttl.
func NewCatalog(store ObjectStore, ttl time.Duration) *Catalog {
	return &Catalog{store: store, ttl: ttl}
}

// List returns every package.
func (c *Catalog) List(ctx context.Context) ([]Package, error) {
	return c.match(ctx, "")
}

// Search returns packages whose name contains query, ignoring case.
func (c *Catalog) Search(ctx context.Context, query string) ([]Package, error) {
	return c.match(ctx, query)
}

// Filter matches exactly like Search. Both back separate HTTP routes.
func (c *Catalog) Filter(ctx context.Context, filter string) ([]Package, error) {
	return c.match(ctx, filter)
}

// Link signs a download URL for one key.
func (c *Catalog) Link(ctx context.Context, key string) (string, error) {
	return c.store.SignForRead(ctx, key, c.ttl)
}

func (c *Catalog) match(ctx context.Context, needle string) ([]Package, error) {
	keys, err := c.store.List(ctx)
	if err != nil {
		return nil, err
	}
	needle = strings.ToLower(strings.TrimSpace(needle))

	out := []Package{}
	for _, k := range keys {
		if !strings.HasSuffix(k, PackageExt) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(k), needle) {
			continue
		}
		u, err := c.store.SignForRead(ctx, k, c.ttl)
		if err != nil {
			return nil, err
		}
		out = append(out, Package{CourseName: strings.TrimSuffix(path.Base(k), PackageExt), Key: k, URL: u})
	}
	return out, nil
}
