package critic

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/brandguard/internal/model"
)

// minCTALength is the shortest CTA treated as present
const minCTALength = 5

// scoreCTA rewards a specific action verb with a named benefit or link and penalises generic phrasing
func scoreCTA(cta string, w model.RubricWeights) rubricResult {
	cta = strings.TrimSpace(cta)
	if utf8.RuneCountInString(cta) < minCTALength {
		return rubricResult{
			score:  0,
			issues: []string{"CTA is missing"},
			signals: []model.Signal{{
				Type:        model.SignalCTAMissing,
				Severity:    model.SeverityCritical,
				Description: "No call to action",
			}},
		}
	}

	text := phraseText(cta)
	score := w.CTABase
	var res rubricResult

	verbs := found(text, approvedVerbs)
	if len(verbs) > 0 {
		score += w.CTAVerbBonus
		res.signals = append(res.signals, model.Signal{
			Type:        model.SignalCTAVerb,
			Severity:    model.SeverityInfo,
			Description: "CTA starts from an action verb",
			Data:        map[string]interface{}{"verbs": verbs, "points": w.CTAVerbBonus},
		})
	} else {
		res.issues = append(res.issues, "CTA has no specific action verb")
	}

	benefits := found(text, benefitTerms)
	hasLink := linkPlaceholder.MatchString(cta)
	hasBenefit := len(benefits) > 0 || hasLink
	if hasBenefit {
		score += w.CTABenefitBonus
		res.signals = append(res.signals, model.Signal{
			Type:        model.SignalCTABenefit,
			Severity:    model.SeverityInfo,
			Description: "CTA names a benefit or link",
			Data:        map[string]interface{}{"benefits": benefits, "link": hasLink, "points": w.CTABenefitBonus},
		})
	} else {
		res.issues = append(res.issues, "CTA names no benefit or link placeholder")
	}

	if len(verbs) > 0 && hasBenefit {
		score += w.CTASpecificBonus
	}

	for _, g := range genericCTAs {
		if n := countPhrase(text, g); n > 0 {
			score -= n * w.CTAGenericPenalty
			res.issues = append(res.issues, fmt.Sprintf("generic CTA phrase %q", g))
			res.signals = append(res.signals, model.Signal{
				Type:        model.SignalCTAGeneric,
				Severity:    model.SeverityWarning,
				Description: fmt.Sprintf("Generic CTA phrase %q", g),
				Data:        map[string]interface{}{"count": n, "points": -n * w.CTAGenericPenalty},
			})
		}
	}

	res.score = clamp(score)
	return res
}
