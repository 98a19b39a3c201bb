package verify

import (
	"strings"

	"github.com/ppiankov/brandguard/internal/extract"
)

var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "of": true, "to": true,
	"in": true, "on": true, "for": true, "by": true, "with": true, "is": true, "are": true,
	"our": true, "we": true, "it": true, "that": true, "this": true, "at": true, "as": true,
}

// QuotedSpan returns the sentence of chunkText that best overlaps claim.
// Overlap counts shared content words plus twice the shared word pairs.
// Ties go to the earliest sentence; trailing punctuation is dropped.
func QuotedSpan(claim, chunkText string) string {
	sentences := extract.SplitSentences(chunkText)
	if len(sentences) == 0 {
		return extract.TrimTerminator(chunkText)
	}

	claimWords := extract.Words(claim)
	unigrams := make(map[string]bool, len(claimWords))
	for _, w := range claimWords {
		if !stopwords[w] {
			unigrams[w] = true
		}
	}
	bigrams := pairs(claimWords)

	best, bestScore := 0, -1
	for i, s := range sentences {
		words := extract.Words(s)
		score := 0

		counted := make(map[string]bool)
		for _, w := range words {
			if unigrams[w] && !counted[w] {
				counted[w] = true
				score++
			}
		}
		for p := range pairs(words) {
			if bigrams[p] {
				score += 2
			}
		}

		if score > bestScore {
			best, bestScore = i, score
		}
	}

	return extract.TrimTerminator(sentences[best])
}

func pairs(words []string) map[string]bool {
	out := make(map[string]bool)
	for i := 1; i < len(words); i++ {
		out[words[i-1]+" "+words[i]] = true
	}
	return out
}

// Excerpt shortens text to at most n words for feedback messages
func Excerpt(text string, n int) string {
	fields := strings.Fields(text)
	if len(fields) <= n {
		return strings.Join(fields, " ")
	}
	return strings.Join(fields[:n], " ") + "..."
}
