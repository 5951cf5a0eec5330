package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrank/internal/domain"
)

func sampleReport() *domain.Report {
	return &domain.Report{
		Metadata: domain.RunMetadata{
			Documents:   []string{"a.pdf", "b.pdf"},
			Persona:     "Analyst",
			Job:         "Summarize risks",
			GeneratedAt: time.Date(2025, 7, 10, 9, 30, 15, 123456789, time.FixedZone("CEST", 2*3600)),
		},
		Sections: []domain.RankedUnit{
			{
				Unit: domain.Unit{DocumentID: "b.pdf", Locator: 4, Label: "Page 4", Text: "Risk <high> & rising. More."},
				Rank: 1,
				Children: []domain.RankedUnit{
					{Unit: domain.Unit{DocumentID: "b.pdf", Locator: 4, Text: "Risk <high> & rising."}, Rank: 1},
				},
			},
			{
				Unit: domain.Unit{DocumentID: "a.pdf", Locator: 1, Label: "Page 1", Text: "..."},
				Rank: 2,
			},
		},
	}
}

func TestFromReport(t *testing.T) {
	doc := FromReport(sampleReport())

	assert.Equal(t, Metadata{
		Documents:   []string{"a.pdf", "b.pdf"},
		Persona:     "Analyst",
		JobToBeDone: "Summarize risks",
		Timestamp:   "2025-07-10T07:30:15.123456Z",
	}, doc.Metadata)

	require.Len(t, doc.ExtractedSections, 2)
	assert.Equal(t, Section{
		Document:       "b.pdf",
		PageNumber:     4,
		SectionTitle:   "Page 4",
		ImportanceRank: 1,
		SubSectionAnalysis: []SubSection{
			{RefinedText: "Risk <high> & rising.", PageNumber: 4},
		},
	}, doc.ExtractedSections[0])
	assert.NotNil(t, doc.ExtractedSections[1].SubSectionAnalysis)
	assert.Empty(t, doc.ExtractedSections[1].SubSectionAnalysis)
}

func TestFromReport_EmptyListsSerializeAsArrays(t *testing.T) {
	data, err := Marshal(FromReport(&domain.Report{}))
	require.NoError(t, err)

	var top map[string]any
	require.NoError(t, json.Unmarshal(data, &top))
	assert.Equal(t, []any{}, top["extracted_sections"])
	meta, ok := top["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{}, meta["documents"])
}

func TestFormatTimestamp(t *testing.T) {
	ts := FormatTimestamp(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	assert.Equal(t, "2024-01-02T03:04:05.000000Z", ts)
}

func TestMarshal_NoHTMLEscaping(t *testing.T) {
	data, err := Marshal(FromReport(sampleReport()))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"refined_text": "Risk <high> & rising."`)
	assert.Contains(t, string(data), "\n  \"metadata\": {")
}

func TestWriteRead_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out", "result.json")
	doc := FromReport(sampleReport())

	require.NoError(t, Write(path, doc))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must not be left behind")
}

func TestRead_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Read(path)
	assert.Error(t, err)
}
