//go:build cgo

package fastembed

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	fe "github.com/anush008/fastembed-go"
)

var modelMapping = map[string]fe.EmbeddingModel{
	"sentence-transformers/all-MiniLM-L6-v2": fe.AllMiniLML6V2,
	"BAAI/bge-small-en-v1.5":                 fe.BGESmallENV15,
	"BAAI/bge-small-en":                      fe.BGESmallEN,
	"BAAI/bge-base-en-v1.5":                  fe.BGEBaseENV15,
	"BAAI/bge-base-en":                       fe.BGEBaseEN,
}

// Encoder embeds text with a locally cached ONNX model.
type Encoder struct {
	mu        sync.Mutex
	model     *fe.FlagEmbedding
	name      string
	dim       int
	batchSize int
}

// NewEncoder loads the configured model, downloading it into CacheDir on first use.
func NewEncoder(cfg Config) (*Encoder, error) {
	name := cfg.Model
	if name == "" {
		name = DefaultModel
	}
	dim, ok := Dimension(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedModel, name)
	}
	model := modelMapping[name]
	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		cacheDir = filepath.Join(".", "local_cache")
	}
	maxLength := cfg.MaxLength
	if maxLength == 0 {
		maxLength = 512
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 256
	}
	showProgress := false
	flag, err := fe.NewFlagEmbedding(&fe.InitOptions{
		Model:                model,
		CacheDir:             cacheDir,
		MaxLength:            maxLength,
		ShowDownloadProgress: &showProgress,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing fastembed %s: %w", name, err)
	}
	return &Encoder{model: flag, name: name, dim: dim, batchSize: batchSize}, nil
}

// Name returns the identifier of this encoder implementation.
func (e *Encoder) Name() string { return "fastembed:" + e.name }

// Encode embeds texts without query/passage prefixes so that the query and
// the candidates share one embedding space.
func (e *Encoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	vecs, err := e.model.Embed(texts, e.batchSize)
	if err != nil {
		return nil, err
	}
	for i, v := range vecs {
		if len(v) != e.dim {
			return nil, fmt.Errorf("fastembed %s: vector %d has %d dimensions, want %d", e.name, i, len(v), e.dim)
		}
	}
	return vecs, nil
}

// Close releases the ONNX session.
func (e *Encoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.model == nil {
		return nil
	}
	err := e.model.Destroy()
	e.model = nil
	return err
}
