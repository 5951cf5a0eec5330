// Package reader turns document files into per-page plain text.
package reader

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"docrank/internal/domain"
)

// ErrUnsupported is returned for files no registered reader handles.
var ErrUnsupported = errors.New("unsupported document type")

// Registry dispatches to a PageReader by file extension.
type Registry struct {
	byExt    map[string]domain.PageReader
	fallback domain.PageReader
}

// NewRegistry creates an empty registry. fallback handles unknown extensions
// and may be nil.
func NewRegistry(fallback domain.PageReader) *Registry {
	return &Registry{byExt: make(map[string]domain.PageReader), fallback: fallback}
}

// Register maps one or more extensions (with or without the dot) to r.
func (g *Registry) Register(r domain.PageReader, exts ...string) *Registry {
	for _, ext := range exts {
		g.byExt[normalizeExt(ext)] = r
	}
	return g
}

// ReadPages implements domain.PageReader.
func (g *Registry) ReadPages(ctx context.Context, path string) ([]string, error) {
	r, ok := g.byExt[normalizeExt(filepath.Ext(path))]
	if !ok {
		r = g.fallback
	}
	if r == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, path)
	}
	return r.ReadPages(ctx, path)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
