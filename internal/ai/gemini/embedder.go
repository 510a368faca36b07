package gemini

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/ai"
	"github.com/spigell/resume-matcher/internal/logger"
)

const (
	defaultEmbeddingModel = "gemini-embedding-001"
	similarityTask        = "SEMANTIC_SIMILARITY"
)

// Embedder produces semantic similarity embeddings and caches them per text.
type Embedder struct {
	client *Client
	model  string
	logger *zap.Logger

	cacheMu sync.RWMutex
	cache   map[[sha256.Size]byte][]float32
}

func NewEmbedder(client *Client, model string, log *zap.Logger) *Embedder {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultEmbeddingModel
	}

	return &Embedder{
		client: client,
		model:  model,
		logger: logger.WithCommonFields(log, "gemini", model),
		cache:  make(map[[sha256.Size]byte][]float32),
	}
}

func (e *Embedder) Model() string { return e.model }

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text must not be empty", ai.ErrInvalidInput)
	}

	key := sha256.Sum256([]byte(text))

	e.cacheMu.RLock()
	cached, ok := e.cache[key]
	e.cacheMu.RUnlock()
	if ok {
		return cached, nil
	}

	vector, err := e.client.EmbedContent(ctx, e.model, text, similarityTask)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("embedded text",
		zap.Int("text_length", len(text)),
		zap.Int("dimensions", len(vector)),
	)

	e.cacheMu.Lock()
	e.cache[key] = vector
	e.cacheMu.Unlock()

	return vector, nil
}
