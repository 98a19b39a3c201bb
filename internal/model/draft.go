package model

import (
	"fmt"
	"sort"
	"strings"
)

// Channel is a marketing channel a draft is written for
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelFacebook Channel = "facebook"
	ChannelLinkedIn Channel = "linkedin"
	ChannelWeb      Channel = "web"
)

// AllChannels returns every supported channel sorted by name
func AllChannels() []Channel {
	return []Channel{ChannelEmail, ChannelFacebook, ChannelLinkedIn, ChannelWeb}
}

// ParseChannel converts user input into a Channel
func ParseChannel(s string) (Channel, error) {
	c := Channel(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllChannels() {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown channel %q (supported: email, facebook, linkedin, web)", s)
}

// SortChannels returns a sorted, de-duplicated copy of channels
func SortChannels(channels []Channel) []Channel {
	seen := make(map[Channel]bool, len(channels))
	out := make([]Channel, 0, len(channels))
	for _, c := range channels {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ChannelDraft is one channel's copy as authored by the drafting agent.
// For email the headline is the subject line; for web the body is the subhead.
type ChannelDraft struct {
	Channel  Channel  `json:"channel" yaml:"channel"`
	Headline string   `json:"headline" yaml:"headline"`
	Body     string   `json:"body" yaml:"body"`
	CTA      string   `json:"cta" yaml:"cta"`
	Claims   []string `json:"claims" yaml:"claims"`
}

// Clone returns a deep copy so records never alias agent-owned slices
func (d ChannelDraft) Clone() ChannelDraft {
	c := d
	if d.Claims != nil {
		c.Claims = append(make([]string, 0, len(d.Claims)), d.Claims...)
	}
	return c
}
