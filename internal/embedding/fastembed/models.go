// Package fastembed runs sentence-embedding models locally through ONNX Runtime.
package fastembed

import "errors"

// DefaultModel is the sentence-transformers model the ranking was tuned with.
const DefaultModel = "sentence-transformers/all-MiniLM-L6-v2"

var (
	// ErrNotAvailable is returned when the binary was built without cgo.
	ErrNotAvailable = errors.New("fastembed: not available (binary built without cgo support, use the tfidf or openai encoder)")

	// ErrUnsupportedModel is returned for model names fastembed cannot load.
	ErrUnsupportedModel = errors.New("fastembed: unsupported model")
)

// Config configures the local encoder.
type Config struct {
	Model     string
	CacheDir  string
	MaxLength int
	BatchSize int
}

// modelDimensions lists the supported model names and their vector sizes.
var modelDimensions = map[string]int{
	"sentence-transformers/all-MiniLM-L6-v2": 384,
	"BAAI/bge-small-en-v1.5":                 384,
	"BAAI/bge-small-en":                      384,
	"BAAI/bge-base-en-v1.5":                  768,
	"BAAI/bge-base-en":                       768,
}

// Dimension returns the vector size of a supported model.
func Dimension(model string) (int, bool) {
	if model == "" {
		model = DefaultModel
	}
	d, ok := modelDimensions[model]
	return d, ok
}
