package extract

import (
	"strings"

	"github.com/ppiankov/brandguard/internal/model"
)

// ClaimExtractor finds claim-like sentences in draft copy.
// Drafts declare their own claims; this catches factual sentences the agent
// did not declare so they are verified too.
type ClaimExtractor struct {
	indicators      []string
	opinionStarters []string
}

// NewClaimExtractor creates a claim extractor with the built-in heuristics
func NewClaimExtractor() *ClaimExtractor {
	return &ClaimExtractor{
		indicators: []string{
			"%", "customers", "users", "teams", "companies",
			"reduction", "increase", "faster", "secure",
			"integrates", "supports", "certified", "compliant",
		},
		opinionStarters: []string{
			"we believe", "we're excited", "we are excited", "join us", "discover", "learn",
		},
	}
}

// FromDraft returns claim-like sentences in the draft body
func (e *ClaimExtractor) FromDraft(d model.ChannelDraft) []string {
	var claims []string
	for _, sentence := range SplitSentences(d.Body) {
		if e.isClaim(sentence) {
			claims = append(claims, sentence)
		}
	}
	return claims
}

func (e *ClaimExtractor) isClaim(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, o := range e.opinionStarters {
		if strings.HasPrefix(lower, o) {
			return false
		}
	}
	for _, ind := range e.indicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}

// NormalizeClaims trims claims and drops blanks and case-insensitive duplicates,
// keeping first occurrences in order
func NormalizeClaims(claims []string) []string {
	seen := make(map[string]bool)
	var unique []string

	for _, claim := range claims {
		text := strings.TrimSpace(claim)
		if text == "" {
			continue
		}
		key := strings.ToLower(text)
		if !seen[key] {
			seen[key] = true
			unique = append(unique, text)
		}
	}

	return unique
}
