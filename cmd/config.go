package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/adzuna"
	"github.com/spigell/resume-matcher/internal/ai"
	"github.com/spigell/resume-matcher/internal/ai/gemini"
	"github.com/spigell/resume-matcher/internal/jobs"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/matching"
	"github.com/spigell/resume-matcher/internal/nlp"
	"github.com/spigell/resume-matcher/internal/secrets"
	"github.com/spigell/resume-matcher/internal/similarity"
)

// jobSource binds the configured search parameters to an adzuna client.
type jobSource struct {
	client *adzuna.Client
	params adzuna.SearchParams
}

func (s *jobSource) Fetch(ctx context.Context, role string) *jobs.Listings {
	return s.client.Fetch(ctx, role, s.params)
}

func newJobSource(cfg *AdzunaConfig, log *zap.Logger) (*jobSource, error) {
	if cfg == nil {
		return nil, errors.New("adzuna configuration is required")
	}

	appKey, err := secrets.Load(secrets.Source{
		Name:  "adzuna app key",
		Value: cfg.AppKey,
		File:  cfg.AppKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set adzuna.app-key-file or RM_ADZUNA_APP_KEY_FILE)", err)
	}

	if strings.TrimSpace(cfg.AppID) == "" {
		return nil, errors.New("adzuna app id is not configured (set adzuna.app-id or RM_ADZUNA_APP_ID)")
	}

	client := adzuna.New(cfg.AppID, appKey, log.Named("adzuna"))
	if cfg.UserAgent != "" {
		client.UserAgent = cfg.UserAgent
	}

	return &jobSource{
		client: client,
		params: adzuna.SearchParams{
			Country:        cfg.Country,
			ResultsPerPage: cfg.ResultsPerPage,
			Pages:          cfg.Pages,
		},
	}, nil
}

func newEngine(ctx context.Context, config *Config, log *zap.Logger) (*matching.Engine, error) {
	cfg := config.AI
	if cfg == nil || cfg.Gemini == nil {
		return nil, errors.New("ai.gemini configuration is required for embeddings")
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	mode, err := similarity.ParseMode(string(config.Match.Mode))
	if err != nil {
		return nil, err
	}

	repr, err := matching.ParseRepresentation(string(config.Match.Representation))
	if err != nil {
		return nil, err
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	aiLogger := log.Named("ai").With(zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries))

	client, err := gemini.NewClient(ctx, apiKey, cfg.Gemini.MaxRetries, aiLogger)
	if err != nil {
		return nil, err
	}

	chunker, err := newChunker(cfg, client, aiLogger)
	if err != nil {
		return nil, err
	}

	embedder := gemini.NewEmbedder(client, cfg.Gemini.EmbeddingModel, aiLogger)
	scorer := similarity.NewScorer(mode, embedder, log.Named("similarity"))

	opts := config.Match
	opts.Representation = repr

	return matching.NewEngine(scorer, chunker, opts, log.Named("matching")), nil
}

func newChunker(cfg *AIConfig, client *gemini.Client, log *zap.Logger) (ai.Chunker, error) {
	switch strings.TrimSpace(strings.ToLower(cfg.Chunker)) {
	case "", "tagger":
		return nlp.NewTaggerChunker(), nil
	case "gemini":
		return gemini.NewChunker(client, cfg.Gemini.Model, cfg.Gemini.MaxLogLength, log), nil
	default:
		return nil, fmt.Errorf("unsupported chunker: %s", cfg.Chunker)
	}
}

func newLogger(json, debug bool) (*zap.Logger, error) {
	l, err := logger.New(json, debug)
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}
	return l.With(zap.String("version", version)), nil
}
