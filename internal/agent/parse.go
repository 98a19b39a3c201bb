package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/brandguard/internal/model"
)

// draftPayload is the per-channel object the agent returns.
// subject_line and subhead are accepted as aliases for headline and body.
type draftPayload struct {
	Channel     string   `json:"channel"`
	Headline    string   `json:"headline"`
	SubjectLine string   `json:"subject_line"`
	Body        string   `json:"body"`
	Subhead     string   `json:"subhead"`
	CTA         string   `json:"cta"`
	Claims      []string `json:"claims"`
}

// ParseOutput decodes an agent response into drafts keyed by channel.
// The object may be bare or inside a fenced block, and the channel map may sit
// under "drafts", "content" or at the top level. Claims stay nil when absent
// so the schema check can tell a missing list from an empty one.
func ParseOutput(raw string) (*Output, error) {
	payload := extractJSON(raw)
	if payload == "" {
		return nil, fmt.Errorf("%w: no JSON object in response", model.ErrSchemaInvalid)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &top); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrSchemaInvalid, err)
	}

	channels := top
	for _, key := range []string{"drafts", "content"} {
		if nested, ok := top[key]; ok {
			channels = nil
			if err := json.Unmarshal(nested, &channels); err != nil {
				return nil, fmt.Errorf("%w: %q is not an object: %v", model.ErrSchemaInvalid, key, err)
			}
			break
		}
	}

	out := &Output{Drafts: make(map[model.Channel]*model.ChannelDraft, len(channels)), Raw: raw}
	for key, value := range channels {
		var p draftPayload
		if err := json.Unmarshal(value, &p); err != nil {
			return nil, fmt.Errorf("%w: draft %q: %v", model.ErrSchemaInvalid, key, err)
		}

		d := &model.ChannelDraft{
			Channel:  model.Channel(strings.ToLower(strings.TrimSpace(p.Channel))),
			Headline: p.Headline,
			Body:     p.Body,
			CTA:      p.CTA,
			Claims:   p.Claims,
		}
		if d.Channel == "" {
			d.Channel = model.Channel(strings.ToLower(key))
		}
		if strings.TrimSpace(d.Headline) == "" {
			d.Headline = p.SubjectLine
		}
		if strings.TrimSpace(d.Body) == "" {
			d.Body = p.Subhead
		}
		out.Drafts[model.Channel(strings.ToLower(strings.TrimSpace(key)))] = d
	}

	if len(out.Drafts) == 0 {
		return nil, fmt.Errorf("%w: response contains no drafts", model.ErrSchemaInvalid)
	}
	return out, nil
}

// extractJSON returns the first fenced block if present, else the outermost braces
func extractJSON(raw string) string {
	text := strings.TrimSpace(raw)

	if start := strings.Index(text, "```"); start >= 0 {
		rest := text[start+3:]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 && !strings.Contains(rest[:nl], "{") {
			rest = rest[nl+1:]
		}
		if end := strings.Index(rest, "```"); end >= 0 {
			text = strings.TrimSpace(rest[:end])
		}
	}

	open := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if open < 0 || end < open {
		return ""
	}
	return text[open : end+1]
}
