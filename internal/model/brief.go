package model

import (
	"errors"
	"fmt"
	"strings"
)

// Link is a labelled URL the copy may point readers to
type Link struct {
	Label string `json:"label" yaml:"label"`
	URL   string `json:"url" yaml:"url"`
}

// EventBrief describes the event copy is generated for
type EventBrief struct {
	Title          string    `json:"event_title" yaml:"event_title"`
	Description    string    `json:"event_description" yaml:"event_description"`
	Date           string    `json:"event_date,omitempty" yaml:"event_date,omitempty"`
	TargetAudience string    `json:"target_audience" yaml:"target_audience"`
	KeyMessages    []string  `json:"key_messages,omitempty" yaml:"key_messages,omitempty"`
	Channels       []Channel `json:"channels" yaml:"channels"`
	RelevantURLs   []Link    `json:"relevant_urls,omitempty" yaml:"relevant_urls,omitempty"`
}

// Validate checks the brief has what a run needs
func (b EventBrief) Validate() error {
	var problems []string
	if strings.TrimSpace(b.Title) == "" {
		problems = append(problems, "event_title is required")
	}
	if strings.TrimSpace(b.Description) == "" {
		problems = append(problems, "event_description is required")
	}
	if len(b.Channels) == 0 {
		problems = append(problems, "at least one channel is required")
	}
	for _, c := range b.Channels {
		if _, err := ParseChannel(string(c)); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New("invalid brief: " + strings.Join(problems, "; "))
	}
	return nil
}

// Text renders the brief as the free-text form handed to the drafting agent
func (b EventBrief) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Event: %s\n", b.Title)
	if b.Date != "" {
		fmt.Fprintf(&sb, "Date: %s\n", b.Date)
	}
	if b.TargetAudience != "" {
		fmt.Fprintf(&sb, "Audience: %s\n", b.TargetAudience)
	}
	fmt.Fprintf(&sb, "Description: %s\n", strings.TrimSpace(b.Description))
	if len(b.KeyMessages) > 0 {
		sb.WriteString("Key messages:\n")
		for _, m := range b.KeyMessages {
			fmt.Fprintf(&sb, "- %s\n", m)
		}
	}
	if len(b.RelevantURLs) > 0 {
		sb.WriteString("Links:\n")
		for _, l := range b.RelevantURLs {
			fmt.Fprintf(&sb, "- %s: %s\n", l.Label, l.URL)
		}
	}
	return sb.String()
}
