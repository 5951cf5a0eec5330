// Package embedding adapts a text encoder to the batched, order-preserving
// contract the ranking pipeline relies on.
package embedding

import (
	"context"
	"errors"
	"fmt"

	"docrank/internal/domain"
)

var (
	// ErrEncoding wraps any failure reported by the underlying encoder.
	ErrEncoding = errors.New("encoding failed")

	// ErrLengthMismatch is returned when an encoder yields a different number
	// of vectors than it was given texts.
	ErrLengthMismatch = errors.New("encoder returned wrong number of vectors")
)

// DefaultBatchSize is used when the adapter is built with a non-positive batch size.
const DefaultBatchSize = 32

// Adapter encodes texts in fixed-size batches through a domain.Encoder.
type Adapter struct {
	encoder   domain.Encoder
	batchSize int
}

func NewAdapter(encoder domain.Encoder, batchSize int) *Adapter {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Adapter{encoder: encoder, batchSize: batchSize}
}

// Name returns the underlying encoder's name.
func (a *Adapter) Name() string { return a.encoder.Name() }

// Prepare hands the corpus to encoders that need it. Other encoders ignore it.
func (a *Adapter) Prepare(corpus []string) error {
	p, ok := a.encoder.(domain.Preparer)
	if !ok {
		return nil
	}
	if err := p.Prepare(corpus); err != nil {
		return fmt.Errorf("%w: prepare %s: %w", ErrEncoding, a.encoder.Name(), err)
	}
	return nil
}

// EncodeAll returns one vector per text, in input order. An empty input
// returns nil without calling the encoder.
func (a *Adapter) EncodeAll(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += a.batchSize {
		end := min(start+a.batchSize, len(texts))
		batch := texts[start:end]
		vecs, err := a.encoder.Encode(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("%w: %s batch [%d:%d]: %w", ErrEncoding, a.encoder.Name(), start, end, err)
		}
		if len(vecs) != len(batch) {
			return nil, fmt.Errorf("%w: %s: got %d for %d texts", ErrLengthMismatch, a.encoder.Name(), len(vecs), len(batch))
		}
		out = append(out, vecs...)
	}
	return out, nil
}

// EncodeOne encodes a single text, such as the query.
func (a *Adapter) EncodeOne(ctx context.Context, text string) ([]float32, error) {
	vecs, err := a.EncodeAll(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}
