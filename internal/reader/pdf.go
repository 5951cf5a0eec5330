package reader

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
)

// PDFReader extracts per-page plain text with the Eino PDF parser.
type PDFReader struct {
	parser  einoParser.Parser
	logger  *zap.Logger
	timeout time.Duration
}

// PDFOption configures a PDFReader.
type PDFOption func(*PDFReader)

// WithPDFLogger sets the logger used for parse diagnostics.
func WithPDFLogger(logger *zap.Logger) PDFOption {
	return func(r *PDFReader) {
		r.logger = logger
	}
}

// WithPDFTimeout bounds the time spent parsing a single document.
func WithPDFTimeout(d time.Duration) PDFOption {
	return func(r *PDFReader) {
		r.timeout = d
	}
}

// NewPDFReader builds a parser that returns one document per page.
func NewPDFReader(ctx context.Context, opts ...PDFOption) (*PDFReader, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: true})
	if err != nil {
		return nil, fmt.Errorf("failed to create Eino PDF parser: %w", err)
	}
	r := &PDFReader{
		parser:  p,
		logger:  zap.NewNop(),
		timeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// ReadPages returns the raw text of every page, in page order. Parsing is
// abandoned once the reader's timeout or ctx expires.
func (r *PDFReader) ReadPages(ctx context.Context, path string) ([]string, error) {
	start := time.Now()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// The Eino parser does not observe ctx, so it runs on its own goroutine.
	type result struct {
		docs []*schema.Document
		err  error
	}
	done := make(chan result, 1)
	go func() {
		docs, err := r.parser.Parse(ctx, bytes.NewReader(data), einoParser.WithURI(path))
		done <- result{docs: docs, err: err}
	}()

	var res result
	select {
	case <-ctx.Done():
		r.logger.Warn("pdf parse abandoned",
			zap.String("path", path),
			zap.Duration("timeout", r.timeout),
			zap.Error(ctx.Err()),
		)
		return nil, fmt.Errorf("parse pdf %s: %w", path, ctx.Err())
	case res = <-done:
	}
	if res.err != nil {
		return nil, fmt.Errorf("parse pdf %s: %w", path, res.err)
	}
	pages := make([]string, len(res.docs))
	for i, doc := range res.docs {
		pages[i] = doc.Content
	}
	r.logger.Debug("pdf parsed",
		zap.String("path", path),
		zap.Int("pages", len(pages)),
		zap.Duration("took", time.Since(start)),
	)
	return pages, nil
}
