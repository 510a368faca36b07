package matching

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/ai"
	"github.com/spigell/resume-matcher/internal/filtering"
	"github.com/spigell/resume-matcher/internal/jobs"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/nlp"
	"github.com/spigell/resume-matcher/internal/similarity"
)

// Representation selects how the résumé is compared with job descriptions.
type Representation string

const (
	// RepresentationSkills compares the flattened set of short skill phrases.
	RepresentationSkills Representation = "skills"
	// RepresentationFullText compares the normalized résumé text.
	RepresentationFullText Representation = "fulltext"
)

const (
	DefaultThreshold     = 30.0
	DefaultTopK          = 10
	DefaultLocation      = "india"
	DefaultExcerptLength = 400
)

func ParseRepresentation(s string) (Representation, error) {
	switch Representation(strings.ToLower(strings.TrimSpace(s))) {
	case "", RepresentationSkills:
		return RepresentationSkills, nil
	case RepresentationFullText:
		return RepresentationFullText, nil
	default:
		return "", fmt.Errorf("unknown resume representation %q", s)
	}
}

type Options struct {
	Representation Representation  `mapstructure:"representation" json:"representation"`
	Mode           similarity.Mode `mapstructure:"mode" json:"mode"`
	// Threshold is the inclusive minimum similarity percent.
	Threshold     float64 `mapstructure:"threshold" json:"threshold"`
	TopK          int     `mapstructure:"top-k" json:"top_k"`
	Location      string  `mapstructure:"location" json:"location"`
	ExcerptLength int     `mapstructure:"excerpt-length" json:"excerpt_length"`
	Concurrency   int     `mapstructure:"concurrency" json:"concurrency"`
	ExcludeFile   string  `mapstructure:"exclude-file" json:"exclude_file,omitempty"`
}

func DefaultOptions() Options {
	return Options{
		Representation: RepresentationSkills,
		Mode:           similarity.ModeSemantic,
		Threshold:      DefaultThreshold,
		TopK:           DefaultTopK,
		Location:       DefaultLocation,
		ExcerptLength:  DefaultExcerptLength,
	}
}

type Engine struct {
	scorer  *similarity.Scorer
	chunker ai.Chunker
	options Options
	logger  *zap.Logger
}

// NewEngine builds an engine. The chunker is only used with RepresentationSkills.
func NewEngine(scorer *similarity.Scorer, chunker ai.Chunker, opts Options, log *zap.Logger) *Engine {
	if opts.Representation == "" {
		opts.Representation = RepresentationSkills
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.ExcerptLength <= 0 {
		opts.ExcerptLength = DefaultExcerptLength
	}
	opts.Mode = scorer.Mode()

	return &Engine{
		scorer:  scorer,
		chunker: chunker,
		options: opts,
		logger: logger.WithFields(log,
			logger.MatchFields(string(opts.Mode), string(opts.Representation))...,
		),
	}
}

func (e *Engine) Options() Options { return e.options }

// Match ranks listings against the résumé. Listings are not modified.
// Empty input is reported through Report.Outcome; errors wrapping similarity.ErrScoring mean the provider failed.
func (e *Engine) Match(ctx context.Context, resumeText, role string, listings *jobs.Listings) (*Report, error) {
	report := &Report{
		Role:       role,
		Threshold:  e.options.Threshold,
		Considered: listings.Len(),
		Matches:    []Result{},
	}

	if listings.Len() == 0 {
		report.Outcome = OutcomeNoJobs
		e.logger.Info("nothing to match", zap.String("reason", "no jobs"), zap.String("role", role))
		return report, nil
	}

	repr, skills, err := e.representation(ctx, resumeText)
	if err != nil {
		return nil, err
	}
	report.Skills = skills

	ref, err := e.scorer.Prepare(ctx, repr)
	if err != nil {
		return nil, err
	}

	if ref.Text == "" {
		report.Outcome = OutcomeEmptyResume
		e.logger.Info("nothing to match", zap.String("reason", "empty resume representation"))
		return report, nil
	}

	filters := filtering.New(e.steps(ref), e.logger)

	remaining, err := filters.RunFilters(ctx, listings.Clone())
	if err != nil {
		return nil, fmt.Errorf("matching listings: %w", err)
	}
	report.Steps = filters.Describe()

	for _, li := range remaining.Items {
		report.Matches = append(report.Matches, newResult(li, e.options.ExcerptLength))
	}

	sort.SliceStable(report.Matches, func(i, j int) bool {
		return report.Matches[i].Similarity > report.Matches[j].Similarity
	})

	if len(report.Matches) > e.options.TopK {
		report.Matches = report.Matches[:e.options.TopK]
	}

	report.Outcome = OutcomeMatched
	if len(report.Matches) == 0 {
		report.Outcome = OutcomeNoMatches
	}

	e.logger.Info("match completed",
		zap.String("role", role),
		zap.String("outcome", string(report.Outcome)),
		zap.Int("considered", report.Considered),
		zap.Int("matches", len(report.Matches)),
	)

	return report, nil
}

func (e *Engine) representation(ctx context.Context, resumeText string) (string, []string, error) {
	if e.options.Representation == RepresentationFullText {
		return nlp.Normalize(resumeText), nil, nil
	}

	if e.chunker == nil {
		return "", nil, fmt.Errorf("%w: skill extraction requires a chunker", similarity.ErrScoring)
	}

	skills, err := nlp.ExtractSkills(ctx, e.chunker, resumeText)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", similarity.ErrScoring, err)
	}

	e.logger.Debug("extracted skills", zap.Strings("skills", skills.Sorted()))

	return skills.Flatten(), skills.Sorted(), nil
}

func (e *Engine) steps(ref *similarity.Reference) []filtering.Filter {
	return []filtering.Filter{
		filtering.NewDescription(),
		filtering.NewExcludeFile(e.options.ExcludeFile, e.logger),
		filtering.NewLocation(e.options.Location),
		filtering.NewSimilarity(
			filtering.SimilarityConfig{
				Threshold:   e.options.Threshold,
				Concurrency: e.options.Concurrency,
			},
			filtering.SimilarityDeps{
				Scorer:    e.scorer,
				Reference: ref,
				Logger:    e.logger,
			},
		),
	}
}
