package critic

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/ppiankov/brandguard/internal/extract"
)

var (
	passiveMarkers = []string{"will be", "has been", "was", "were", "is being"}

	buzzwords = []string{
		"revolutionary", "game-changing", "synergy", "leverage", "paradigm",
		"best-in-class", "world-class", "cutting-edge",
	}

	secondPerson = []string{"you", "your", "you're", "yours", "yourself"}

	approvedVerbs = []string{
		"register", "join", "learn", "discover", "get", "start", "sign up", "download",
		"watch", "explore", "reserve", "claim", "build", "create", "transform", "improve",
	}

	genericCTAs = []string{"learn more", "click here", "submit"}

	benefitTerms = []string{
		"free", "save", "seat", "spot", "guide", "demo", "trial", "report", "playbook",
		"checklist", "access", "discount", "bonus", "instant", "insights", "replay", "certificate",
	}

	linkPlaceholder = regexp.MustCompile(`(?i)\{link\}|\[link\]|\{\{[^}]+\}\}|https?://\S+`)
)

// phraseText lowercases text into space-separated words padded with spaces,
// so " phrase " matches whole words and multi-word phrases
func phraseText(text string) string {
	return " " + strings.Join(extract.Words(text), " ") + " "
}

// countPhrase counts whole-word occurrences of phrase in padded text
func countPhrase(padded, phrase string) int {
	return strings.Count(padded, " "+phrase+" ")
}

// found returns the phrases present in padded text, in list order
func found(padded string, phrases []string) []string {
	var out []string
	for _, p := range phrases {
		if countPhrase(padded, p) > 0 {
			out = append(out, p)
		}
	}
	return out
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
