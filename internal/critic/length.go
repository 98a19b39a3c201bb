package critic

import (
	"fmt"
	"unicode/utf8"

	"github.com/ppiankov/brandguard/internal/extract"
	"github.com/ppiankov/brandguard/internal/model"
)

type lengthResult struct {
	ok      bool
	chars   int
	issues  []string
	signals []model.Signal
}

// bound is one measured field against its limit
type bound struct {
	field string
	unit  string
	value int
	limit int
}

func checkLength(d model.ChannelDraft, rules model.ChannelConstraints) lengthResult {
	chars := utf8.RuneCountInString(d.Headline) + utf8.RuneCountInString(d.Body) + utf8.RuneCountInString(d.CTA)

	bounds := []bound{
		{field: "headline+body+cta", unit: "character", value: chars, limit: rules.MaxChars},
		{field: "subject", unit: "character", value: utf8.RuneCountInString(d.Headline), limit: rules.SubjectMaxChars},
		{field: "body", unit: "word", value: extract.WordCount(d.Body), limit: rules.BodyMaxWords},
		{field: "headline", unit: "word", value: extract.WordCount(d.Headline), limit: rules.HeadlineMaxWords},
		{field: "subhead", unit: "word", value: extract.WordCount(d.Body), limit: rules.SubheadMaxWords},
	}

	res := lengthResult{ok: true, chars: chars}
	for _, b := range bounds {
		if b.limit <= 0 {
			continue
		}
		over := b.value - b.limit
		sev := model.SeverityInfo
		if over > 0 {
			res.ok = false
			sev = model.SeverityCritical
			res.issues = append(res.issues, fmt.Sprintf("%s %s exceeds limit by %s (%d/%d)",
				d.Channel, b.field, plural(over, b.unit), b.value, b.limit))
		}
		res.signals = append(res.signals, model.Signal{
			Type:        model.SignalLength,
			Severity:    sev,
			Description: fmt.Sprintf("%s: %d/%d %ss", b.field, b.value, b.limit, b.unit),
			Data: map[string]interface{}{
				"field": b.field,
				"value": b.value,
				"limit": b.limit,
			},
		})
	}
	return res
}
