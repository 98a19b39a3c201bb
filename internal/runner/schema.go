package runner

import (
	"fmt"
	"strings"

	"github.com/ppiankov/brandguard/internal/agent"
	"github.com/ppiankov/brandguard/internal/model"
)

// CheckSchema returns one problem per missing or invalid field.
// Extra channels the agent volunteered are ignored.
func CheckSchema(channels []model.Channel, out *agent.Output) []string {
	if out == nil || len(out.Drafts) == 0 {
		return []string{"response contains no drafts"}
	}

	var problems []string
	for _, ch := range model.SortChannels(channels) {
		d, ok := out.Drafts[ch]
		if !ok || d == nil {
			problems = append(problems, fmt.Sprintf("missing draft for channel %s", ch))
			continue
		}
		if d.Channel != ch {
			problems = append(problems, fmt.Sprintf("%s: draft declares channel %q", ch, d.Channel))
		}
		if requiresHeadline(ch) && strings.TrimSpace(d.Headline) == "" {
			problems = append(problems, fmt.Sprintf("%s: %s is required", ch, headlineName(ch)))
		}
		if strings.TrimSpace(d.Body) == "" {
			problems = append(problems, fmt.Sprintf("%s: %s is required", ch, bodyName(ch)))
		}
		if strings.TrimSpace(d.CTA) == "" {
			problems = append(problems, fmt.Sprintf("%s: cta is required", ch))
		}
		if d.Claims == nil {
			problems = append(problems, fmt.Sprintf("%s: claims list is missing (use [] when there are none)", ch))
		}
	}
	return problems
}

func requiresHeadline(ch model.Channel) bool {
	return ch == model.ChannelEmail || ch == model.ChannelWeb
}

func headlineName(ch model.Channel) string {
	if ch == model.ChannelEmail {
		return "subject line (headline)"
	}
	return "headline"
}

func bodyName(ch model.Channel) string {
	if ch == model.ChannelWeb {
		return "subhead (body)"
	}
	return "body"
}
