package utils

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{
			name:   "returns empty when limit non-positive",
			input:  "hello world",
			limit:  0,
			expect: "",
		},
		{
			name:   "shorter than limit",
			input:  "hello",
			limit:  10,
			expect: "hello",
		},
		{
			name:   "truncates and adds ellipsis",
			input:  "hello world",
			limit:  5,
			expect: "hello...",
		},
		{
			name:   "trims surrounding whitespace",
			input:  "  spaced  ",
			limit:  5,
			expect: "space...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestExcerpt(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 1000)

	tests := []struct {
		name      string
		input     string
		limit     int
		expectLen int
	}{
		{name: "cuts long text at limit", input: long, limit: 400, expectLen: 403},
		{name: "keeps short text and still marks it", input: "short", limit: 400, expectLen: 8},
		{name: "counts runes, not bytes", input: strings.Repeat("é", 10), limit: 5, expectLen: 8},
		{name: "negative limit keeps only marker", input: "abc", limit: -1, expectLen: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Excerpt(tt.input, tt.limit)
			if n := utf8.RuneCountInString(got); n != tt.expectLen {
				t.Fatalf("expected %d runes, got %d (%q)", tt.expectLen, n, got)
			}
			if !strings.HasSuffix(got, "...") {
				t.Fatalf("expected ellipsis suffix, got %q", got)
			}
		})
	}
}
