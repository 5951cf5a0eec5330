package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrInvalidRunConfig is returned when a run configuration cannot be used.
var ErrInvalidRunConfig = errors.New("invalid run configuration")

// RunConfig names the documents to rank and who is asking.
type RunConfig struct {
	Documents []string
	Persona   string
	Job       string
}

// rawRunConfig accepts both the flat form
//
//	{"documents": ["a.pdf"], "persona": "...", "job": "..."}
//
// and the descriptive form
//
//	{"documents": [{"filename": "a.pdf", "title": "A"}],
//	 "persona": {"role": "..."}, "job_to_be_done": {"task": "..."}}
type rawRunConfig struct {
	Documents   *[]documentRef `json:"documents"`
	Persona     *textField     `json:"persona"`
	Job         *textField     `json:"job"`
	JobToBeDone *textField     `json:"job_to_be_done"`
}

type documentRef struct {
	Filename string
}

func (d *documentRef) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		d.Filename = name
		return nil
	}
	var obj struct {
		Filename string `json:"filename"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("document entry must be a string or an object with filename: %w", err)
	}
	if strings.TrimSpace(obj.Filename) == "" {
		return errors.New("document entry has no filename")
	}
	d.Filename = obj.Filename
	return nil
}

// textField is a string, or an object carrying the text under role or task.
type textField struct {
	Text string
}

func (f *textField) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f.Text = s
		return nil
	}
	var obj struct {
		Role string `json:"role"`
		Task string `json:"task"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("expected a string or an object with role/task: %w", err)
	}
	f.Text = obj.Role
	if f.Text == "" {
		f.Text = obj.Task
	}
	return nil
}

// LoadRun reads and validates a JSON run configuration.
func LoadRun(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRunConfig, err)
	}
	return ParseRun(data)
}

// ParseRun decodes a run configuration. Absent keys default to empty values:
// no documents, and an empty persona or job. job takes precedence over
// job_to_be_done. Invalid JSON and wrongly typed values are rejected.
func ParseRun(data []byte) (*RunConfig, error) {
	var raw rawRunConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRunConfig, err)
	}
	cfg := &RunConfig{Documents: []string{}}
	if raw.Documents != nil {
		for _, d := range *raw.Documents {
			cfg.Documents = append(cfg.Documents, d.Filename)
		}
	}
	if raw.Persona != nil {
		cfg.Persona = raw.Persona.Text
	}
	switch {
	case raw.Job != nil:
		cfg.Job = raw.Job.Text
	case raw.JobToBeDone != nil:
		cfg.Job = raw.JobToBeDone.Text
	}
	return cfg, nil
}
