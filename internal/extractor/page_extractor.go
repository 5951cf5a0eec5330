// Package extractor turns documents into page-level candidate units.
package extractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"docrank/internal/chunker"
	"docrank/internal/domain"
)

// PageExtractor emits one section-level Unit per non-blank page.
type PageExtractor struct {
	reader  domain.PageReader
	logger  *zap.Logger
	workers int
}

// Option configures a PageExtractor.
type Option func(*PageExtractor)

// WithLogger sets the logger used to report skipped documents.
func WithLogger(logger *zap.Logger) Option {
	return func(e *PageExtractor) {
		e.logger = logger
	}
}

// WithWorkers sets how many documents are read concurrently. Output order
// does not depend on it.
func WithWorkers(n int) Option {
	return func(e *PageExtractor) {
		e.workers = n
	}
}

func New(reader domain.PageReader, opts ...Option) *PageExtractor {
	e := &PageExtractor{reader: reader, logger: zap.NewNop(), workers: 1}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers < 1 {
		e.workers = 1
	}
	return e
}

// Extract reads the document at path and returns its non-blank pages as units
// identified by name. A document that does not exist is skipped with a
// warning and yields no units. Reader failures are returned.
func (e *PageExtractor) Extract(ctx context.Context, path, name string) ([]domain.Unit, error) {
	if _, err := os.Stat(path); err != nil {
		e.logger.Warn("document not found, skipping",
			zap.String("document", name),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, nil
	}
	pages, err := e.reader.ReadPages(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", name, err)
	}
	var units []domain.Unit
	for i, page := range pages {
		text := chunker.TrimSpace(page)
		if text == "" {
			continue
		}
		locator := i + 1
		units = append(units, domain.Unit{
			DocumentID: name,
			Locator:    locator,
			Label:      "Page " + strconv.Itoa(locator),
			Text:       text,
			Level:      domain.LevelSection,
		})
	}
	e.logger.Debug("document extracted",
		zap.String("document", name),
		zap.Int("pages", len(pages)),
		zap.Int("units", len(units)),
	)
	return units, nil
}

// ExtractAll extracts every named document under dir and concatenates the
// units in the order the names are given.
func (e *PageExtractor) ExtractAll(ctx context.Context, dir string, names []string) ([]domain.Unit, error) {
	perDoc := make([][]domain.Unit, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, name := range names {
		g.Go(func() error {
			units, err := e.Extract(gctx, filepath.Join(dir, name), filepath.Base(name))
			if err != nil {
				return err
			}
			perDoc[i] = units
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var all []domain.Unit
	for _, units := range perDoc {
		all = append(all, units...)
	}
	e.logger.Info("extraction complete",
		zap.Int("documents", len(names)),
		zap.Int("sections", len(all)),
	)
	return all, nil
}
