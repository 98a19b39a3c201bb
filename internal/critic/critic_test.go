package critic

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ppiankov/brandguard/internal/model"
)

func goodDraft(ch model.Channel) model.ChannelDraft {
	return model.ChannelDraft{
		Channel:  ch,
		Headline: "Zero Trust in 45 minutes",
		Body:     "Join our security architects and see how you can cut identity incidents with a rollout plan your team can start next week.",
		CTA:      "Register for your free seat: {link}",
		Claims:   []string{},
	}
}

func TestCritique_LinkedInOverageByOne(t *testing.T) {
	d := model.ChannelDraft{
		Channel: model.ChannelLinkedIn,
		Body:    strings.Repeat("a", 3001),
		CTA:     "",
	}
	rules := model.DefaultChannelConstraints()[model.ChannelLinkedIn]

	card := Critique(d, rules, model.DefaultRubric())

	if card.LengthOK {
		t.Error("expected LengthOK=false for 3001 characters")
	}
	if card.CharCount != 3001 {
		t.Errorf("expected 3001 characters, got %d", card.CharCount)
	}
	if card.Passed {
		t.Error("expected scorecard to fail")
	}
	want := "linkedin headline+body+cta exceeds limit by 1 character (3001/3000)"
	if len(card.Issues) == 0 || card.Issues[0] != want {
		t.Errorf("expected first issue %q, got %v", want, card.Issues)
	}
}

func TestCritique_ExactLimitIsOK(t *testing.T) {
	d := goodDraft(model.ChannelFacebook)
	d.Body = strings.Repeat("é", 500-len([]rune(d.Headline))-len([]rune(d.CTA)))

	card := Critique(d, model.DefaultChannelConstraints()[model.ChannelFacebook], model.DefaultRubric())
	if !card.LengthOK || card.CharCount != 500 {
		t.Errorf("expected 500 runes to fit, got ok=%v chars=%d", card.LengthOK, card.CharCount)
	}
}

func TestCritique_Deterministic(t *testing.T) {
	c := NewCritic(model.CriticConfig{})
	d := goodDraft(model.ChannelEmail)
	d.Body += " This was a revolutionary, game-changing release."

	first := c.Critique(d)
	for i := 0; i < 20; i++ {
		if got := c.Critique(d); !reflect.DeepEqual(first, got) {
			t.Fatalf("critique %d differs from first", i)
		}
	}
}

func TestCritique_PassingDraft(t *testing.T) {
	c := NewCritic(model.CriticConfig{})
	for _, ch := range model.AllChannels() {
		card := c.Critique(goodDraft(ch))
		if !card.Passed {
			t.Errorf("%s: expected pass, got brand=%d cta=%d issues=%v", ch, card.BrandVoiceScore, card.CTAClarityScore, card.Issues)
		}
		if len(card.Issues) != 0 {
			t.Errorf("%s: expected no issues, got %v", ch, card.Issues)
		}
	}
}

func TestScoreCTA(t *testing.T) {
	rubric := model.DefaultRubric()
	tests := []struct {
		cta  string
		want int
	}{
		{"Register for your free seat: {link}", 9},
		{"Your free seat awaits: {link}", 5},
		{"Learn more", 2},
		{"Click here", 0},
		{"Submit", 0},
		{"", 0},
		{"Go", 0},
		{"Reserve your spot at https://example.com/webinar", 9},
		{"Join us", 6},
	}
	for _, tt := range tests {
		if got := scoreCTA(tt.cta, rubric).score; got != tt.want {
			t.Errorf("scoreCTA(%q) = %d, want %d", tt.cta, got, tt.want)
		}
	}
}

func TestCritique_CTAFailureIssues(t *testing.T) {
	d := goodDraft(model.ChannelLinkedIn)
	d.CTA = "Your free seat awaits: {link}"

	card := NewCritic(model.CriticConfig{}).Critique(d)

	if card.CTAClarityScore != 5 || card.Passed {
		t.Fatalf("expected CTA score 5 and fail, got %d passed=%v", card.CTAClarityScore, card.Passed)
	}
	want := []string{
		"CTA has no specific action verb",
		"CTA clarity score 5 is below minimum 7",
	}
	if !reflect.DeepEqual(card.Issues, want) {
		t.Errorf("unexpected issues %v", card.Issues)
	}
}

func TestScoreBrandVoice(t *testing.T) {
	rubric := model.DefaultRubric()
	tests := []struct {
		name string
		d    model.ChannelDraft
		want int
	}{
		{
			name: "second person, number, two verbs",
			d:    model.ChannelDraft{Body: "Join 500 peers and discover how you cut incidents."},
			want: 10,
		},
		{
			name: "no second person",
			d:    model.ChannelDraft{Body: "The webinar covers identity."},
			want: 4,
		},
		{
			name: "buzzwords and passive voice",
			d:    model.ChannelDraft{Body: "You will be amazed by our revolutionary synergy."},
			want: 2,
		},
		{
			name: "clamped at zero",
			d:    model.ChannelDraft{Body: "Synergy, leverage, paradigm, best-in-class, world-class."},
			want: 0,
		},
	}
	for _, tt := range tests {
		if got := scoreBrandVoice(tt.d, rubric).score; got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestCritique_EmailBounds(t *testing.T) {
	d := goodDraft(model.ChannelEmail)
	d.Headline = strings.Repeat("x", 62)
	d.Body = strings.TrimSpace(strings.Repeat("you ", 301))

	card := Critique(d, model.DefaultChannelConstraints()[model.ChannelEmail], model.DefaultRubric())

	if card.LengthOK {
		t.Fatal("expected email bounds to fail")
	}
	want := []string{
		"email subject exceeds limit by 2 characters (62/60)",
		"email body exceeds limit by 1 word (301/300)",
	}
	if len(card.Issues) < 2 || !reflect.DeepEqual(card.Issues[:2], want) {
		t.Errorf("unexpected issues %v", card.Issues)
	}
}

func TestCritique_WebBounds(t *testing.T) {
	d := goodDraft(model.ChannelWeb)
	d.Headline = "one two three four five six seven eight nine ten eleven"
	d.Body = strings.TrimSpace(strings.Repeat("you ", 52))

	card := Critique(d, model.DefaultChannelConstraints()[model.ChannelWeb], model.DefaultRubric())

	want := []string{
		"web headline exceeds limit by 1 word (11/10)",
		"web subhead exceeds limit by 2 words (52/50)",
	}
	if card.LengthOK || len(card.Issues) < 2 || !reflect.DeepEqual(card.Issues[:2], want) {
		t.Errorf("unexpected result ok=%v issues=%v", card.LengthOK, card.Issues)
	}
}

func TestNewCritic_Overrides(t *testing.T) {
	c := NewCritic(model.CriticConfig{
		Channels: map[model.Channel]model.ChannelConstraints{
			model.ChannelFacebook: {MaxChars: 100, BrandVoiceMin: 9, CTAClarityMin: 9},
		},
	})

	if c.Constraints(model.ChannelFacebook).MaxChars != 100 {
		t.Error("expected override for facebook")
	}
	if c.Constraints(model.ChannelLinkedIn).MaxChars != 3000 {
		t.Error("expected default for linkedin")
	}
	if c.Constraints("tiktok").BrandVoiceMin != 7 {
		t.Error("expected fallback thresholds for unknown channel")
	}
}
