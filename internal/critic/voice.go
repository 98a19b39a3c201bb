package critic

import (
	"fmt"
	"strings"

	"github.com/ppiankov/brandguard/internal/model"
)

type rubricResult struct {
	score   int
	issues  []string
	signals []model.Signal
}

// scoreBrandVoice applies the brand rubric to headline, body and CTA together
func scoreBrandVoice(d model.ChannelDraft, w model.RubricWeights) rubricResult {
	raw := strings.Join([]string{d.Headline, d.Body, d.CTA}, " ")
	text := phraseText(raw)
	score := w.BrandBase
	var res rubricResult

	passive := 0
	for _, m := range passiveMarkers {
		if n := countPhrase(text, m); n > 0 {
			passive += n
			res.issues = append(res.issues, fmt.Sprintf("passive voice marker %q (use active voice)", m))
		}
	}
	score -= passive * w.PassivePenalty
	res.signals = append(res.signals, countSignal(model.SignalPassiveVoice, "Passive voice markers", passive, -w.PassivePenalty))

	buzz := 0
	for _, b := range buzzwords {
		if n := countPhrase(text, b); n > 0 {
			buzz += n
			res.issues = append(res.issues, fmt.Sprintf("banned buzzword %q", b))
		}
	}
	score -= buzz * w.BuzzwordPenalty
	res.signals = append(res.signals, countSignal(model.SignalBuzzword, "Buzzwords", buzz, -w.BuzzwordPenalty))

	if you := found(text, secondPerson); len(you) > 0 {
		score += w.SecondPersonBonus
		res.signals = append(res.signals, model.Signal{
			Type:        model.SignalSecondPerson,
			Severity:    model.SeverityInfo,
			Description: "Addresses the reader directly",
			Data:        map[string]interface{}{"words": you, "points": w.SecondPersonBonus},
		})
	} else {
		score -= w.NoSecondPersonPenalty
		res.issues = append(res.issues, `no second-person address (speak to the reader with "you" or "your")`)
		res.signals = append(res.signals, model.Signal{
			Type:        model.SignalSecondPerson,
			Severity:    model.SeverityWarning,
			Description: "Does not address the reader",
			Data:        map[string]interface{}{"points": -w.NoSecondPersonPenalty},
		})
	}

	if hasDigit(raw) {
		score += w.NumberBonus
		res.signals = append(res.signals, model.Signal{
			Type:        model.SignalConcreteFacts,
			Severity:    model.SeverityInfo,
			Description: "Uses concrete numbers",
			Data:        map[string]interface{}{"points": w.NumberBonus},
		})
	}

	verbs := found(text, approvedVerbs)
	verbPoints := len(verbs) * w.VerbBonus
	if verbPoints > w.MaxVerbBonus {
		verbPoints = w.MaxVerbBonus
	}
	score += verbPoints
	res.signals = append(res.signals, model.Signal{
		Type:        model.SignalActionVerbs,
		Severity:    model.SeverityInfo,
		Description: fmt.Sprintf("Approved action verbs: %d", len(verbs)),
		Data: map[string]interface{}{
			"verbs":   verbs,
			"points":  verbPoints,
			"formula": "min(verbs * verb_bonus, max_verb_bonus)",
		},
	})

	res.score = clamp(score)
	return res
}

func countSignal(t model.SignalType, label string, count, perHit int) model.Signal {
	sev := model.SeverityInfo
	if count > 0 {
		sev = model.SeverityWarning
	}
	return model.Signal{
		Type:        t,
		Severity:    sev,
		Description: fmt.Sprintf("%s: %d", label, count),
		Data: map[string]interface{}{
			"count":  count,
			"points": count * perHit,
		},
	}
}
