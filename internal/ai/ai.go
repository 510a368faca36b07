package ai

import (
	"context"
	"errors"
)

// ErrInvalidInput marks a provider rejection tied to one input text rather than to the provider itself.
var ErrInvalidInput = errors.New("input rejected by provider")

// Embedder maps text to a fixed-length vector. Cosine similarity of two vectors
// approximates the semantic similarity of their texts.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// Chunker segments text into noun-phrase-like spans.
type Chunker interface {
	Chunk(ctx context.Context, text string) ([]string, error)
}
