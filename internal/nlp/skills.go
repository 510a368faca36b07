package nlp

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spigell/resume-matcher/internal/ai"
)

// MaxSkillTokens is the longest phrase, in whitespace-separated tokens, kept as a skill.
const MaxSkillTokens = 3

// SkillSet is a deduplicated set of lowercased skill phrases.
type SkillSet map[string]struct{}

func NewSkillSet(phrases ...string) SkillSet {
	s := make(SkillSet, len(phrases))
	for _, p := range phrases {
		s.Add(p)
	}
	return s
}

// Add inserts the phrase when it has between one and MaxSkillTokens tokens.
func (s SkillSet) Add(phrase string) bool {
	n := len(strings.Fields(phrase))
	if n == 0 || n > MaxSkillTokens {
		return false
	}
	s[strings.ToLower(strings.TrimSpace(phrase))] = struct{}{}
	return true
}

func (s SkillSet) Len() int { return len(s) }

func (s SkillSet) Contains(phrase string) bool {
	_, ok := s[phrase]
	return ok
}

// Sorted returns the phrases in lexical order.
func (s SkillSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Flatten joins the phrases with single spaces in a deterministic order.
func (s SkillSet) Flatten() string {
	return strings.Join(s.Sorted(), " ")
}

// ExtractSkills chunks the raw text and keeps the short phrases.
// An empty set is a valid result; an error means the chunker itself failed.
func ExtractSkills(ctx context.Context, chunker ai.Chunker, text string) (SkillSet, error) {
	skills := SkillSet{}
	if strings.TrimSpace(text) == "" {
		return skills, nil
	}

	chunks, err := chunker.Chunk(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("chunking resume text: %w", err)
	}

	for _, chunk := range chunks {
		skills.Add(chunk)
	}

	return skills, nil
}
