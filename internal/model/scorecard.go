package model

// Scorecard is the deterministic quality verdict for one channel's draft
type Scorecard struct {
	Channel         Channel  `json:"channel" yaml:"channel"`
	BrandVoiceScore int      `json:"brand_voice_score" yaml:"brand_voice_score"` // 0-10
	CTAClarityScore int      `json:"cta_clarity_score" yaml:"cta_clarity_score"` // 0-10
	LengthOK        bool     `json:"length_ok" yaml:"length_ok"`
	CharCount       int      `json:"char_count" yaml:"char_count"`
	WordCount       int      `json:"word_count" yaml:"word_count"`
	Issues          []string `json:"issues" yaml:"issues"`
	Passed          bool     `json:"passed" yaml:"passed"`
	Signals         []Signal `json:"signals,omitempty" yaml:"signals,omitempty"`
}

// Signal records one rubric check with its transparent scoring data
type Signal struct {
	Type        SignalType             `json:"type" yaml:"type"`
	Severity    SignalSeverity         `json:"severity" yaml:"severity"`
	Description string                 `json:"description" yaml:"description"`
	Data        map[string]interface{} `json:"data,omitempty" yaml:"data,omitempty"`
}

// SignalType classifies a rubric check
type SignalType string

const (
	SignalLength        SignalType = "length"
	SignalPassiveVoice  SignalType = "passive_voice"
	SignalBuzzword      SignalType = "buzzword"
	SignalSecondPerson  SignalType = "second_person"
	SignalConcreteFacts SignalType = "concrete_numbers"
	SignalActionVerbs   SignalType = "action_verbs"
	SignalCTAVerb       SignalType = "cta_verb"
	SignalCTABenefit    SignalType = "cta_benefit"
	SignalCTAGeneric    SignalType = "cta_generic"
	SignalCTAMissing    SignalType = "cta_missing"
)

// SignalSeverity indicates how a check affected the score
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// CountPassed returns how many scorecards passed
func CountPassed(cards map[Channel]Scorecard) int {
	n := 0
	for _, c := range cards {
		if c.Passed {
			n++
		}
	}
	return n
}

// AllPassed reports whether every scorecard passed; an empty map does not pass
func AllPassed(cards map[Channel]Scorecard) bool {
	if len(cards) == 0 {
		return false
	}
	return CountPassed(cards) == len(cards)
}
