//go:build !cgo

package fastembed

import (
	"context"
	"fmt"
)

// Encoder is unavailable without cgo.
type Encoder struct{}

// NewEncoder returns ErrNotAvailable when cgo is disabled, after rejecting
// unknown models the same way the cgo build does.
func NewEncoder(cfg Config) (*Encoder, error) {
	if _, ok := Dimension(cfg.Model); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedModel, cfg.Model)
	}
	return nil, ErrNotAvailable
}

func (e *Encoder) Name() string { return "fastembed" }

func (e *Encoder) Encode(_ context.Context, _ []string) ([][]float32, error) {
	return nil, ErrNotAvailable
}

func (e *Encoder) Close() error { return nil }
