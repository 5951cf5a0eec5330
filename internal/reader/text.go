package reader

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// PageBreak separates pages in plain-text documents, as emitted by pdftotext.
const PageBreak = "\f"

// TextReader reads plain-text documents, treating form feeds as page breaks.
type TextReader struct{}

func NewTextReader() *TextReader { return &TextReader{} }

func (r *TextReader) ReadPages(_ context.Context, path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read text %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return strings.Split(string(data), PageBreak), nil
}
