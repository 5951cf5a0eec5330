// Package output converts a ranking report into the JSON artifact and back.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"docrank/internal/domain"
)

// TimestampLayout renders UTC times with microseconds and a trailing Z.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// Document is the serialized form of a ranking report.
type Document struct {
	Metadata          Metadata  `json:"metadata"`
	ExtractedSections []Section `json:"extracted_sections"`
}

type Metadata struct {
	Documents   []string `json:"documents"`
	Persona     string   `json:"persona"`
	JobToBeDone string   `json:"job_to_be_done"`
	Timestamp   string   `json:"timestamp"`
}

type Section struct {
	Document           string       `json:"document"`
	PageNumber         int          `json:"page_number"`
	SectionTitle       string       `json:"section_title"`
	ImportanceRank     int          `json:"importance_rank"`
	SubSectionAnalysis []SubSection `json:"sub_section_analysis"`
}

type SubSection struct {
	RefinedText string `json:"refined_text"`
	PageNumber  int    `json:"page_number"`
}

// FromReport maps a report to its artifact form. Slices are never nil so
// empty lists serialize as [].
func FromReport(r *domain.Report) Document {
	doc := Document{
		Metadata: Metadata{
			Documents:   append([]string{}, r.Metadata.Documents...),
			Persona:     r.Metadata.Persona,
			JobToBeDone: r.Metadata.Job,
			Timestamp:   FormatTimestamp(r.Metadata.GeneratedAt),
		},
		ExtractedSections: make([]Section, 0, len(r.Sections)),
	}
	for _, sec := range r.Sections {
		subs := make([]SubSection, 0, len(sec.Children))
		for _, sent := range sec.Children {
			subs = append(subs, SubSection{RefinedText: sent.Text, PageNumber: sent.Locator})
		}
		doc.ExtractedSections = append(doc.ExtractedSections, Section{
			Document:           sec.DocumentID,
			PageNumber:         sec.Locator,
			SectionTitle:       sec.Label,
			ImportanceRank:     sec.Rank,
			SubSectionAnalysis: subs,
		})
	}
	return doc
}

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Marshal encodes doc as indented JSON without HTML escaping.
func Marshal(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write stores doc at path, creating parent directories. The file is written
// to a temporary sibling and renamed so a partial artifact is never visible.
func Write(path string, doc Document) error {
	data, err := Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write artifact: %w", err)
	}
	// Atomic rename
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}

// Read loads an artifact previously produced by Write.
func Read(path string) (Document, error) {
	var doc Document
	data, err := os.ReadFile(path)
	if err != nil {
		return doc, err
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("decode artifact %s: %w", path, err)
	}
	return doc, nil
}
