package similarity

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/ai"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/nlp"
)

// ErrScoring marks provider-level failures that make the whole run unreliable.
var ErrScoring = errors.New("scoring failed")

type Mode string

const (
	// ModeSemantic compares embeddings of the texts as given.
	ModeSemantic Mode = "semantic"
	// ModeHybrid blends lexical and semantic similarity of the normalized texts.
	ModeHybrid Mode = "hybrid"

	lexicalWeight  = 0.5
	semanticWeight = 0.5
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeSemantic:
		return ModeSemantic, nil
	case ModeHybrid:
		return ModeHybrid, nil
	default:
		return "", fmt.Errorf("unknown scoring mode %q", s)
	}
}

// Reference is the résumé side of a comparison, prepared once per run.
type Reference struct {
	Text   string
	vector []float32
}

type Scorer struct {
	mode     Mode
	embedder ai.Embedder
	logger   *zap.Logger
}

func NewScorer(mode Mode, embedder ai.Embedder, log *zap.Logger) *Scorer {
	if mode == "" {
		mode = ModeSemantic
	}
	return &Scorer{
		mode:     mode,
		embedder: embedder,
		logger:   logger.OrNop(log),
	}
}

func (s *Scorer) Mode() Mode { return s.mode }

// Prepare embeds the résumé representation. In hybrid mode the text is normalized first.
func (s *Scorer) Prepare(ctx context.Context, resume string) (*Reference, error) {
	text := s.prepareText(resume)
	if text == "" {
		return &Reference{}, nil
	}

	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding resume: %w", ErrScoring, err)
	}

	return &Reference{Text: text, vector: vector}, nil
}

// Score returns the similarity percent of resume and job in [0, 100].
func (s *Scorer) Score(ctx context.Context, resume, job string) (float64, error) {
	ref, err := s.Prepare(ctx, resume)
	if err != nil {
		return 0, err
	}
	return s.ScorePrepared(ctx, ref, job)
}

// ScorePrepared scores job against a prepared résumé reference.
// Errors wrapping ai.ErrInvalidInput concern this job only; any other error wraps ErrScoring.
func (s *Scorer) ScorePrepared(ctx context.Context, ref *Reference, job string) (float64, error) {
	text := s.prepareText(job)
	if ref == nil || ref.Text == "" || text == "" {
		s.logger.Debug("degenerate text pair, scoring as zero")
		return 0, nil
	}

	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		if errors.Is(err, ai.ErrInvalidInput) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: embedding job description: %w", ErrScoring, err)
	}

	semantic, err := Cosine(ref.vector, vector)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrScoring, err)
	}

	score := semantic
	if s.mode == ModeHybrid {
		lexical := Lexical(ref.Text, text)
		score = lexicalWeight*lexical + semanticWeight*semantic

		s.logger.Debug("hybrid similarity",
			zap.Float64("lexical", lexical),
			zap.Float64("semantic", semantic),
		)
	}

	return toPercent(score), nil
}

func (s *Scorer) prepareText(text string) string {
	if s.mode == ModeHybrid {
		return nlp.Normalize(text)
	}
	return strings.TrimSpace(text)
}

// toPercent clamps a cosine-based score to [0, 1] and scales it to percent.
func toPercent(score float64) float64 {
	if math.IsNaN(score) || score < 0 {
		return 0
	}
	return math.Min(score, 1) * 100
}

// RoundPercent rounds a percent to two decimal places.
func RoundPercent(p float64) float64 {
	return math.Round(p*100) / 100
}
