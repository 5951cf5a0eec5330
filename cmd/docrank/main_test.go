package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type artifact struct {
	Metadata struct {
		Documents   []string `json:"documents"`
		Persona     string   `json:"persona"`
		JobToBeDone string   `json:"job_to_be_done"`
		Timestamp   string   `json:"timestamp"`
	} `json:"metadata"`
	ExtractedSections []struct {
		Document           string `json:"document"`
		PageNumber         int    `json:"page_number"`
		SectionTitle       string `json:"section_title"`
		ImportanceRank     int    `json:"importance_rank"`
		SubSectionAnalysis []struct {
			RefinedText string `json:"refined_text"`
			PageNumber  int    `json:"page_number"`
		} `json:"sub_section_analysis"`
	} `json:"extracted_sections"`
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stderr bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&stderr)
	err := root.Execute()
	return stderr.String(), err
}

func setupRun(t *testing.T, runConfig string) (docs, cfgPath, outPath, settings string) {
	t.Helper()
	dir := t.TempDir()
	docs = filepath.Join(dir, "docs")
	require.NoError(t, os.MkdirAll(docs, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "risks.txt"),
		[]byte("Credit risks are rising. Lunch is served at noon.\fThe weather was pleasant."), 0o644))
	cfgPath = filepath.Join(dir, "input.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(runConfig), 0o644))
	outPath = filepath.Join(dir, "out", "result.json")
	settings = filepath.Join(dir, "absent.yaml")
	return docs, cfgPath, outPath, settings
}

func TestRank_EndToEnd(t *testing.T) {
	docs, cfgPath, outPath, settings := setupRun(t,
		`{"documents": [{"filename": "risks.txt"}], "persona": {"role": "Analyst"}, "job_to_be_done": {"task": "Summarize risks"}}`)

	logs, err := execute(t, "rank", "--settings", settings,
		"--pdf-dir", docs, "--config", cfgPath, "--output", outPath,
		"--top-sections", "1", "--top-sentences", "1", "--log-format", "json")
	require.NoError(t, err, logs)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var got artifact
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, []string{"risks.txt"}, got.Metadata.Documents)
	assert.Equal(t, "Analyst", got.Metadata.Persona)
	assert.Equal(t, "Summarize risks", got.Metadata.JobToBeDone)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{6}Z$`, got.Metadata.Timestamp)

	require.Len(t, got.ExtractedSections, 1)
	sec := got.ExtractedSections[0]
	assert.Equal(t, 1, sec.ImportanceRank)
	assert.Equal(t, "risks.txt", sec.Document)
	assert.Equal(t, 1, sec.PageNumber)
	assert.Equal(t, "Page 1", sec.SectionTitle)
	require.Len(t, sec.SubSectionAnalysis, 1)
	assert.Equal(t, "Credit risks are rising.", sec.SubSectionAnalysis[0].RefinedText)

	assert.Contains(t, logs, `"run_id"`)
	assert.Contains(t, logs, "output written")
}

func TestRank_MissingDocumentWritesEmptyArtifact(t *testing.T) {
	docs, cfgPath, outPath, settings := setupRun(t,
		`{"documents": ["nowhere.pdf"], "persona": "Analyst", "job": "Summarize risks"}`)

	logs, err := execute(t, "rank", "--settings", settings,
		"--pdf-dir", docs, "--config", cfgPath, "--output", outPath)
	require.NoError(t, err, logs)
	assert.Contains(t, logs, "document not found, skipping")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"extracted_sections": []`)
}

func TestRank_InvalidRunConfigWritesNothing(t *testing.T) {
	docs, cfgPath, outPath, settings := setupRun(t, `{"documents": "risks.txt"}`)

	_, err := execute(t, "rank", "--settings", settings,
		"--pdf-dir", docs, "--config", cfgPath, "--output", outPath)
	require.Error(t, err)
	assert.NoFileExists(t, outPath)
}

func TestRank_AbsentJobRunsWithEmptyJob(t *testing.T) {
	docs, cfgPath, outPath, settings := setupRun(t, `{"documents": ["risks.txt"], "persona": "Risk analyst"}`)

	logs, err := execute(t, "rank", "--settings", settings,
		"--pdf-dir", docs, "--config", cfgPath, "--output", outPath, "--top-sections", "1")
	require.NoError(t, err, logs)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var got artifact
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "Risk analyst", got.Metadata.Persona)
	assert.Equal(t, "", got.Metadata.JobToBeDone)
	require.Len(t, got.ExtractedSections, 1)
	assert.Equal(t, 1, got.ExtractedSections[0].PageNumber)
}

func TestRank_RequiresFlags(t *testing.T) {
	_, err := execute(t, "rank", "--settings", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestRank_UnknownEncoder(t *testing.T) {
	docs, cfgPath, outPath, settings := setupRun(t, `{"documents": [], "persona": "a", "job": "b"}`)
	t.Setenv("DOCRANK_EMBEDDER__TYPE", "word2vec")

	_, err := execute(t, "rank", "--settings", settings,
		"--pdf-dir", docs, "--config", cfgPath, "--output", outPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown embedder")
	assert.NoFileExists(t, outPath)
}

func TestView_MissingArtifact(t *testing.T) {
	_, err := execute(t, "view", "--settings", filepath.Join(t.TempDir(), "absent.yaml"),
		filepath.Join(t.TempDir(), "none.json"))
	assert.Error(t, err)
}
