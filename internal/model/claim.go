package model

// MatchStatus classifies how well a claim matched its nearest source chunk
type MatchStatus string

const (
	MatchSupported MatchStatus = "supported" // similarity >= support threshold
	MatchWeak      MatchStatus = "weak"      // between weak and support thresholds
	MatchNone      MatchStatus = "none"      // below weak threshold or no candidates
)

// Claim is a factual statement from a draft together with its verification verdict
type Claim struct {
	Text          string      `json:"claim" yaml:"claim"`
	SourceChunkID string      `json:"source_id,omitempty" yaml:"source_id,omitempty"`
	Supported     bool        `json:"supported" yaml:"supported"`
	Similarity    float64     `json:"similarity" yaml:"similarity"`
	QuotedSpan    string      `json:"quoted_span,omitempty" yaml:"quoted_span,omitempty"`
	Match         MatchStatus `json:"match" yaml:"match"`
}

// UnsupportedClaims filters claims that did not pass verification
func UnsupportedClaims(claims []Claim) []Claim {
	var out []Claim
	for _, c := range claims {
		if !c.Supported {
			out = append(out, c)
		}
	}
	return out
}

// AllSupported reports whether every claim is supported (vacuously true for none)
func AllSupported(claims []Claim) bool {
	for _, c := range claims {
		if !c.Supported {
			return false
		}
	}
	return true
}
