package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/utils"
)

const (
	defaultModel        = "gemini-2.5-flash"
	defaultMaxLogLength = 200
)

//go:embed chunk_prompt.md
var chunkPrompt string

type contentGenerator interface {
	GenerateContent(ctx context.Context, model, prompt string, config *genai.GenerateContentConfig) (string, error)
}

// Chunker asks the model to list the noun phrases of a text.
type Chunker struct {
	generator contentGenerator
	model     string
	maxLogLen int
	logger    *zap.Logger
}

func NewChunker(generator contentGenerator, model string, maxLogLength int, log *zap.Logger) *Chunker {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Chunker{
		generator: generator,
		model:     model,
		maxLogLen: maxLogLength,
		logger:    logger.WithCommonFields(log, "gemini", model),
	}
}

func (c *Chunker) Chunk(ctx context.Context, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	prompt := strings.ReplaceAll(chunkPrompt, "{{TEXT}}", text)

	c.logger.Debug("gemini chunk request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, c.maxLogLen)),
	)

	raw, err := c.generator.GenerateContent(ctx, c.model, prompt, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("gemini chunk response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, c.maxLogLen)),
	)

	return parsePhrases(raw)
}

// parsePhrases accepts either a bare JSON array or an object with a "phrases" array.
func parsePhrases(raw string) ([]string, error) {
	cleaned := extractJSON(raw)

	var phrases []string
	if err := json.Unmarshal([]byte(cleaned), &phrases); err == nil {
		return compact(phrases), nil
	}

	var wrapped struct {
		Phrases []string `json:"phrases"`
	}
	if err := json.Unmarshal([]byte(cleaned), &wrapped); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	return compact(wrapped.Phrases), nil
}

func compact(phrases []string) []string {
	out := phrases[:0]
	for _, p := range phrases {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
