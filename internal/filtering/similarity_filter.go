package filtering

import (
	"context"
	"errors"
	"math"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/resume-matcher/internal/ai"
	"github.com/spigell/resume-matcher/internal/jobs"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/similarity"
)

const (
	defaultConcurrency = 4
	// Tolerance for float noise when comparing a score with the threshold.
	thresholdEpsilon = 1e-9
)

// Scorer scores one job description against a prepared résumé reference.
type Scorer interface {
	ScorePrepared(ctx context.Context, ref *similarity.Reference, job string) (float64, error)
}

type SimilarityConfig struct {
	// Threshold is the inclusive minimum similarity percent.
	Threshold   float64
	Concurrency int
}

type SimilarityDeps struct {
	Scorer    Scorer
	Reference *similarity.Reference
	Logger    *zap.Logger
}

type similarityFilter struct {
	toggle
	config SimilarityConfig
	deps   SimilarityDeps
	logger *zap.Logger
}

// NewSimilarity creates the step that scores every listing and drops those below the threshold.
func NewSimilarity(cfg SimilarityConfig, deps SimilarityDeps) Filter {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}

	return &similarityFilter{
		config: cfg,
		deps:   deps,
		logger: logger.OrNop(deps.Logger),
	}
}

func (f *similarityFilter) Name() string { return "similarity" }

func (f *similarityFilter) Validate() error {
	if f.deps.Scorer == nil {
		return errors.New("scorer is required")
	}
	if f.deps.Reference == nil {
		return errors.New("resume reference is required")
	}
	if math.IsNaN(f.config.Threshold) {
		return errors.New("threshold is not a number")
	}
	return nil
}

func (f *similarityFilter) Apply(ctx context.Context, l *jobs.Listings) (*jobs.Listings, Step, error) {
	initial := l.Len()
	scores := make([]float64, initial)
	skipped := make([]bool, initial)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.config.Concurrency)

	for i, li := range l.Items {
		g.Go(func() error {
			score, err := f.deps.Scorer.ScorePrepared(gctx, f.deps.Reference, li.Description)
			if errors.Is(err, ai.ErrInvalidInput) {
				f.logger.Warn("scoring listing failed. It will be skipped.",
					zap.String("title", li.Title),
					zap.String("url", li.ApplyURL),
					zap.Error(err),
				)
				skipped[i] = true
				return nil
			}
			if err != nil {
				return err
			}

			scores[i] = score
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return l, Step{}, err
	}

	keep := make(map[*jobs.Listing]bool, initial)
	for i, li := range l.Items {
		// The raw score is compared; the rounded one is reported.
		passed := !skipped[i] && scores[i] >= f.config.Threshold-thresholdEpsilon
		li.Similarity = similarity.RoundPercent(scores[i])
		keep[li] = passed

		f.logger.Debug("listing scored",
			zap.String("title", li.Title),
			zap.Float64("similarity", scores[i]),
			zap.Bool("passed", passed),
		)
	}

	l.Keep(func(li *jobs.Listing) bool { return keep[li] })

	f.logger.Info("similarity scoring completed",
		zap.Int("initial_listings", initial),
		zap.Int("matched_listings", l.Len()),
		zap.Float64("threshold", f.config.Threshold),
	)

	return l, Step{Initial: initial, Dropped: initial - l.Len(), Left: l.Len()}, nil
}

func (f *similarityFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{
			"threshold":   strconv.FormatFloat(f.config.Threshold, 'f', -1, 64),
			"concurrency": strconv.Itoa(f.config.Concurrency),
		},
	}
}
