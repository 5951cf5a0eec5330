package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"docrank/internal/chunker"
	"docrank/internal/config"
	"docrank/internal/domain"
	"docrank/internal/embedding"
	"docrank/internal/embedding/fastembed"
	"docrank/internal/embedding/openai"
	"docrank/internal/embedding/tfidf"
	"docrank/internal/extractor"
	"docrank/internal/output"
	"docrank/internal/reader"
	"docrank/internal/service"
)

type rankOptions struct {
	pdfDir       string
	configPath   string
	outputPath   string
	topSections  int
	topSentences int
}

func newRankCmd(a *app) *cobra.Command {
	var opts rankOptions
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank pages and sentences and write the JSON artifact",
		Long: `Rank the pages of the documents listed in the run configuration against the
persona and job, keep the best --top-sections pages, and for each of them the
best --top-sentences sentences.

Examples:
  docrank rank --pdf-dir ./PDFs --config challenge1b_input.json --output challenge1b_output.json

  # Fewer sections, JSON logs
  docrank rank --pdf-dir ./PDFs --config input.json --output out.json --top-sections 3 --log-format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("top-sections") {
				opts.topSections = a.cfg.Ranking.TopSections
			}
			if !cmd.Flags().Changed("top-sentences") {
				opts.topSentences = a.cfg.Ranking.TopSentences
			}
			return runRank(cmd.Context(), a, opts)
		},
	}
	cmd.Flags().StringVar(&opts.pdfDir, "pdf-dir", "", "Folder containing the input documents")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to the JSON run configuration")
	cmd.Flags().StringVar(&opts.outputPath, "output", "", "Path to write the JSON artifact")
	cmd.Flags().IntVar(&opts.topSections, "top-sections", 5, "How many top sections to return")
	cmd.Flags().IntVar(&opts.topSentences, "top-sentences", 3, "How many top sentences per section")
	_ = cmd.MarkFlagRequired("pdf-dir")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func runRank(ctx context.Context, a *app, opts rankOptions) error {
	run, err := config.LoadRun(opts.configPath)
	if err != nil {
		return err
	}

	enc, closeEnc, err := newEncoder(a.cfg.Embedder)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeEnc(); err != nil {
			a.logger.Warn("failed to release encoder", zap.Error(err))
		}
	}()

	pdfReader, err := reader.NewPDFReader(ctx,
		reader.WithPDFLogger(a.logger),
		reader.WithPDFTimeout(time.Duration(a.cfg.Extraction.PDFTimeoutSecs)*time.Second),
	)
	if err != nil {
		return err
	}
	pages := reader.NewRegistry(pdfReader).Register(reader.NewTextReader(), "txt", "text")

	svc := service.NewRankingService(
		extractor.New(pages,
			extractor.WithLogger(a.logger),
			extractor.WithWorkers(a.cfg.Extraction.Workers),
		),
		chunker.NewSentenceSplitter(),
		embedding.NewAdapter(enc, a.cfg.Embedder.BatchSize),
		service.WithLogger(a.logger),
	)

	report, err := svc.Run(ctx, service.Request{
		DocumentDir:  opts.pdfDir,
		Documents:    run.Documents,
		Persona:      run.Persona,
		Job:          run.Job,
		TopSections:  opts.topSections,
		TopSentences: opts.topSentences,
	})
	if err != nil {
		a.logger.Error("ranking failed", zap.Error(err))
		return err
	}
	if err := output.Write(opts.outputPath, output.FromReport(report)); err != nil {
		return err
	}
	a.logger.Info("output written",
		zap.String("path", opts.outputPath),
		zap.Int("sections", len(report.Sections)),
	)
	return nil
}

// newEncoder builds the configured encoder and a function releasing its resources.
func newEncoder(cfg config.EmbedderConfig) (domain.Encoder, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Type {
	case "tfidf", "":
		return tfidf.NewEncoder(), noop, nil
	case "openai":
		if cfg.OpenAI == nil {
			return nil, nil, fmt.Errorf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:    cfg.OpenAI.BaseURL,
			APIKeyEnv:  cfg.OpenAI.APIKeyEnv,
			Model:      cfg.OpenAI.Model,
			Timeout:    time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
			MaxRetries: cfg.OpenAI.MaxRetries,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("openai embedder init failed: %w", err)
		}
		return client, noop, nil
	case "fastembed":
		fc := fastembed.Config{BatchSize: cfg.BatchSize}
		if cfg.FastEmbed != nil {
			fc.Model = cfg.FastEmbed.Model
			fc.CacheDir = cfg.FastEmbed.CacheDir
			fc.MaxLength = cfg.FastEmbed.MaxLength
		}
		e, err := fastembed.NewEncoder(fc)
		if err != nil {
			return nil, nil, err
		}
		return e, e.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown embedder: %s", cfg.Type)
	}
}
