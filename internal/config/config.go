package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix marks environment variables that override settings. Nested keys
// are separated by a double underscore: DOCRANK_EMBEDDER__OPENAI__MODEL.
const EnvPrefix = "DOCRANK_"

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible encoder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries"`
}

// FastEmbedConfig holds configuration for the local ONNX encoder.
type FastEmbedConfig struct {
	Model     string `yaml:"model"`
	CacheDir  string `yaml:"cache_dir"`
	MaxLength int    `yaml:"max_length"`
}

// EmbedderConfig selects and configures the text encoder implementation.
type EmbedderConfig struct {
	Type      string                `yaml:"type"`
	BatchSize int                   `yaml:"batch_size"`
	OpenAI    *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
	FastEmbed *FastEmbedConfig      `yaml:"fastembed,omitempty"`
}

// RankingConfig holds the default truncation counts.
type RankingConfig struct {
	TopSections  int `yaml:"top_sections"`
	TopSentences int `yaml:"top_sentences"`
}

// ExtractionConfig controls document reading.
type ExtractionConfig struct {
	Workers        int `yaml:"workers"`
	PDFTimeoutSecs int `yaml:"pdf_timeout_secs"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AppConfig is the root application settings structure.
type AppConfig struct {
	Embedder   EmbedderConfig   `yaml:"embedder"`
	Ranking    RankingConfig    `yaml:"ranking"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// Load reads settings from path and applies environment overrides. If the
// file does not exist, defaults are used.
func Load(path string) (*AppConfig, error) {
	k := koanf.New(".")
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load settings %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}
	cfg := defaultConfig()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	applyConfigDefaults(cfg)
	return cfg, nil
}

// envKey maps DOCRANK_EMBEDDER__BATCH_SIZE to embedder.batch_size.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// LoadDefault tries ./docrank.yaml first, then ~/.config/docrank/config.yaml.
// If neither exists, it writes defaults to ~/.config/docrank/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "docrank.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	if err := Save(userPath, defaultConfig()); err != nil {
		return nil, "", err
	}
	cfg, err := Load(userPath)
	return cfg, userPath, err
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yamlv3.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docrank", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Embedder:   EmbedderConfig{Type: "tfidf", BatchSize: 32},
		Ranking:    RankingConfig{TopSections: 5, TopSentences: 3},
		Extraction: ExtractionConfig{Workers: 1, PDFTimeoutSecs: 60},
		Logging:    LoggingConfig{Level: "info", Format: "console"},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "tfidf"
	}
	if cfg.Embedder.BatchSize <= 0 {
		cfg.Embedder.BatchSize = 32
	}
	if cfg.Extraction.Workers <= 0 {
		cfg.Extraction.Workers = 1
	}
	if cfg.Extraction.PDFTimeoutSecs <= 0 {
		cfg.Extraction.PDFTimeoutSecs = 60
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}
	if cfg.Embedder.Type == "fastembed" && cfg.Embedder.FastEmbed == nil {
		cfg.Embedder.FastEmbed = &FastEmbedConfig{}
	}
}
