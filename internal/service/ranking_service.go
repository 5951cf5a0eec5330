package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"docrank/internal/domain"
	"docrank/internal/embedding"
	"docrank/internal/query"
	"docrank/internal/ranker"
)

// UnitExtractor produces section-level units for the named documents.
type UnitExtractor interface {
	ExtractAll(ctx context.Context, dir string, names []string) ([]domain.Unit, error)
}

// Request is one ranking run's input.
type Request struct {
	DocumentDir  string
	Documents    []string
	Persona      string
	Job          string
	TopSections  int
	TopSentences int
}

// RankingService ranks page sections against a persona/job query, then ranks
// the sentences of each selected section against the same query.
type RankingService struct {
	extractor UnitExtractor
	splitter  domain.Splitter
	encoder   *embedding.Adapter
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures a RankingService.
type Option func(*RankingService)

func WithLogger(logger *zap.Logger) Option {
	return func(s *RankingService) {
		s.logger = logger
	}
}

// WithClock overrides the source of the run timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *RankingService) {
		s.now = now
	}
}

func NewRankingService(extractor UnitExtractor, splitter domain.Splitter, encoder *embedding.Adapter, opts ...Option) *RankingService {
	s := &RankingService{
		extractor: extractor,
		splitter:  splitter,
		encoder:   encoder,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes the two-level ranking. Missing documents and empty candidate
// sets produce empty rankings; extraction and encoding failures abort the run.
func (s *RankingService) Run(ctx context.Context, req Request) (*domain.Report, error) {
	q := query.Build(req.Persona, req.Job)

	sections, err := s.extractor.ExtractAll(ctx, req.DocumentDir, req.Documents)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(sections))
	for i := range sections {
		texts[i] = sections[i].Text
	}
	// Sentences are substrings of section text, so the sections plus the
	// query cover every text encoded in this run.
	if err := s.encoder.Prepare(append([]string{q}, texts...)); err != nil {
		return nil, err
	}
	qvec, err := s.encoder.EncodeOne(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	svecs, err := s.encoder.EncodeAll(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("encode sections: %w", err)
	}

	hits := ranker.Rank(qvec, svecs, req.TopSections)
	ranked := make([]domain.RankedUnit, 0, len(hits))
	for i, hit := range hits {
		sec := sections[hit.Index]
		children, err := s.rankSentences(ctx, qvec, sec, req.TopSentences)
		if err != nil {
			return nil, err
		}
		s.logger.Debug("section ranked",
			zap.Stringer("level", sec.Level),
			zap.Int("rank", i+1),
			zap.String("document", sec.DocumentID),
			zap.Int("page", sec.Locator),
			zap.Float64("score", hit.Score),
			zap.Int("sentences", len(children)),
		)
		ranked = append(ranked, domain.RankedUnit{
			Unit:     sec,
			Rank:     i + 1,
			Score:    hit.Score,
			Children: children,
		})
	}

	s.logger.Info("ranking complete",
		zap.String("encoder", s.encoder.Name()),
		zap.Int("dimension", len(qvec)),
		zap.Int("documents", len(req.Documents)),
		zap.Int("candidates", len(sections)),
		zap.Int("selected", len(ranked)),
	)
	return &domain.Report{
		Metadata: domain.RunMetadata{
			Documents:   append([]string{}, req.Documents...),
			Persona:     req.Persona,
			Job:         req.Job,
			GeneratedAt: s.now().UTC(),
		},
		Sections: ranked,
	}, nil
}

// rankSentences ranks the sentences of one selected section. They inherit the
// section's document and page.
func (s *RankingService) rankSentences(ctx context.Context, qvec []float32, sec domain.Unit, k int) ([]domain.RankedUnit, error) {
	sentences := s.splitter.Split(sec.Text)
	if len(sentences) == 0 {
		return []domain.RankedUnit{}, nil
	}
	vecs, err := s.encoder.EncodeAll(ctx, sentences)
	if err != nil {
		return nil, fmt.Errorf("encode sentences of %s %s: %w", sec.DocumentID, sec.Label, err)
	}
	hits := ranker.Rank(qvec, vecs, k)
	out := make([]domain.RankedUnit, 0, len(hits))
	for i, hit := range hits {
		out = append(out, domain.RankedUnit{
			Unit: domain.Unit{
				DocumentID: sec.DocumentID,
				Locator:    sec.Locator,
				Label:      sec.Label,
				Text:       sentences[hit.Index],
				Level:      domain.LevelSentence,
			},
			Rank:  i + 1,
			Score: hit.Score,
		})
	}
	return out, nil
}
