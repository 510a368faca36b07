package nlp

import "testing"

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{name: "punctuation and underscore", input: "Hello-World_2024", expect: "hello world 2024"},
		{name: "glued camel case", input: "DataAnalyst with PowerBI", expect: "data analyst with power bi"},
		{name: "collapses whitespace", input: "  a\t\tb \n c  ", expect: "a b c"},
		{name: "non ascii replaced", input: "café naïve", expect: "caf na ve"},
		{name: "empty", input: "", expect: ""},
		{name: "only symbols", input: "!!! ---", expect: ""},
		{name: "upper run is not split", input: "SQL and AWS", expect: "sql and aws"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Normalize(tt.input); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"Hello-World_2024",
		"camelCaseWordsHere",
		"  Python, SQL & Tableau!  ",
		"résumé — senior engineer",
		"aB",
		"x y",
		"",
	}

	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Fatalf("normalize not idempotent for %q: %q != %q", in, twice, once)
		}
		for _, r := range once {
			if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == ' ') {
				t.Fatalf("unexpected rune %q in %q", r, once)
			}
		}
	}
}
