package similarity

import (
	"math"
	"regexp"
	"strings"
)

// tokenRe matches words of two or more word characters.
var tokenRe = regexp.MustCompile(`\w\w+`)

func terms(text string) map[string]float64 {
	counts := make(map[string]float64)
	for _, tok := range tokenRe.FindAllString(strings.ToLower(text), -1) {
		counts[tok]++
	}
	return counts
}

// Lexical returns the TF-IDF cosine similarity of a and b with the vocabulary
// and document frequencies fitted on exactly these two documents.
// Raw term counts are weighted with the smoothed idf ln((1+n)/(1+df))+1 and L2-normalised.
// A pair without shared vocabulary, or with an empty side, scores 0.
func Lexical(a, b string) float64 {
	ta, tb := terms(a), terms(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	const docs = 2
	idf := func(term string) float64 {
		df := 0.0
		if _, ok := ta[term]; ok {
			df++
		}
		if _, ok := tb[term]; ok {
			df++
		}
		return math.Log((1+docs)/(1+df)) + 1
	}

	weigh := func(counts map[string]float64) map[string]float64 {
		weights := make(map[string]float64, len(counts))
		var norm float64
		for term, tf := range counts {
			w := tf * idf(term)
			weights[term] = w
			norm += w * w
		}
		norm = math.Sqrt(norm)
		for term := range weights {
			weights[term] /= norm
		}
		return weights
	}

	wa, wb := weigh(ta), weigh(tb)

	var dot float64
	for term, x := range wa {
		if y, ok := wb[term]; ok {
			dot += x * y
		}
	}

	return math.Min(dot, 1)
}
