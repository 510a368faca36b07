package nlp

import (
	"context"
	"fmt"
	"strings"

	"github.com/jdkato/prose/v2"
)

// TaggerChunker groups part-of-speech tagged tokens into noun phrases:
// runs of adjectives, nouns and numbers that contain at least one noun.
type TaggerChunker struct{}

func NewTaggerChunker() *TaggerChunker {
	return &TaggerChunker{}
}

func (c *TaggerChunker) Chunk(_ context.Context, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	doc, err := prose.NewDocument(text,
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		return nil, fmt.Errorf("tagging text: %w", err)
	}

	var (
		chunks  []string
		current []prose.Token
	)

	flush := func() {
		// Trailing modifiers are not part of the phrase.
		for len(current) > 0 && !isNoun(current[len(current)-1].Tag) {
			current = current[:len(current)-1]
		}
		if len(current) > 0 {
			words := make([]string, 0, len(current))
			for _, tok := range current {
				words = append(words, tok.Text)
			}
			chunks = append(chunks, strings.Join(words, " "))
		}
		current = current[:0]
	}

	for _, tok := range doc.Tokens() {
		switch {
		case isNoun(tok.Tag):
			current = append(current, tok)
		case isModifier(tok.Tag):
			if len(current) > 0 && isNoun(current[len(current)-1].Tag) {
				flush()
			}
			current = append(current, tok)
		default:
			flush()
		}
	}
	flush()

	return chunks, nil
}

func isNoun(tag string) bool {
	return strings.HasPrefix(tag, "NN")
}

func isModifier(tag string) bool {
	switch tag {
	case "JJ", "JJR", "JJS", "CD", "VBG":
		return true
	default:
		return false
	}
}
