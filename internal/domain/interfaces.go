package domain

import (
	"context"
	"time"
)

// Level is the granularity a Unit was extracted at.
type Level int

const (
	LevelSection Level = iota
	LevelSentence
)

func (l Level) String() string {
	switch l {
	case LevelSection:
		return "section"
	case LevelSentence:
		return "sentence"
	default:
		return "unknown"
	}
}

// Unit is a rankable piece of text with its source identity attached.
type Unit struct {
	DocumentID string
	Locator    int
	Label      string
	Text       string
	Level      Level
}

// RankedUnit is a Unit placed at a 1-based dense rank. Section entries carry
// their ranked sentences in Children.
type RankedUnit struct {
	Unit
	Rank     int
	Score    float64
	Children []RankedUnit
}

// RunMetadata describes a run. It is not used for ranking.
type RunMetadata struct {
	Documents   []string
	Persona     string
	Job         string
	GeneratedAt time.Time
}

// Report is the layered result of one ranking run.
type Report struct {
	Metadata RunMetadata
	Sections []RankedUnit
}

// Encoder maps text to fixed-length vectors, one per input, in input order.
type Encoder interface {
	Name() string
	Encode(ctx context.Context, texts []string) ([][]float32, error)
}

// Preparer is implemented by encoders that must see the corpus before encoding.
type Preparer interface {
	Prepare(corpus []string) error
}

// PageReader returns the plain text of every page of a document, in page order.
// A document without extractable pages yields an empty slice.
type PageReader interface {
	ReadPages(ctx context.Context, path string) ([]string, error)
}

// Splitter breaks a unit's text into ordered sentences.
type Splitter interface {
	Split(text string) []string
}
