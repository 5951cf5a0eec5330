package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"docrank/internal/config"
	"docrank/internal/logging"
)

// app carries state shared by subcommands once the root pre-run has loaded it.
type app struct {
	settingsPath string
	logLevel     string
	logFormat    string

	cfg    *config.AppConfig
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "docrank",
		Short: "Rank document pages and sentences for a persona and a job",
		Long: `docrank selects the pages of a document collection most relevant to a
persona and the job they need done, then picks the most relevant sentences
inside each selected page.

Settings are read from --settings, ./docrank.yaml or ~/.config/docrank/config.yaml
and can be overridden with DOCRANK_* environment variables.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = logging.Sync(a.logger)
			}
		},
	}
	root.PersistentFlags().StringVar(&a.settingsPath, "settings", "", "Path to YAML settings (default ./docrank.yaml or ~/.config/docrank/config.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log format: console or json")

	root.AddCommand(newRankCmd(a))
	root.AddCommand(newViewCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	// .env is optional
	_ = godotenv.Load()

	var (
		cfg  *config.AppConfig
		path string
		err  error
	)
	if a.settingsPath != "" {
		path = a.settingsPath
		cfg, err = config.Load(path)
	} else {
		cfg, path, err = config.LoadDefault()
	}
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = a.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Logging.Format = a.logFormat
	}

	logger, err := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format}, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger.With(zap.String("run_id", uuid.NewString()))
	a.logger.Debug("settings loaded", zap.String("path", path), zap.String("encoder", cfg.Embedder.Type))
	return nil
}
