package agent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/brandguard/internal/model"
)

// MaxFeedbackClaims caps how many unsupported claims are repeated back to the agent
const MaxFeedbackClaims = 5

// SystemPrompt sets the agent's role and output contract
const SystemPrompt = `You are a B2B marketing copywriter. You write event promotion copy that follows the brand voice guidance and only states facts found in the provided product context.

RULES:
1. Use only facts from the PRODUCT CONTEXT. Do not invent numbers, customers or features.
2. Address the reader directly ("you", "your") in active voice. Avoid buzzwords.
3. Every CTA starts with an action verb and names a concrete benefit.
4. List every factual statement you make in "claims", copied verbatim from your copy.
5. Respond with a single JSON object and nothing else.`

// BuildPrompt renders the user message for one drafting call
func BuildPrompt(in Input) string {
	var sb strings.Builder

	sb.WriteString("EVENT BRIEF:\n")
	sb.WriteString(strings.TrimSpace(in.EventBrief))
	sb.WriteString("\n\n")

	brand, product := splitChunks(in.RetrievedChunks)
	writeChunks(&sb, "BRAND VOICE GUIDANCE", brand)
	writeChunks(&sb, "PRODUCT CONTEXT", product)

	channels := model.SortChannels(in.Channels)
	sb.WriteString("CHANNELS:\n")
	for _, ch := range channels {
		fmt.Fprintf(&sb, "- %s: %s\n", ch, channelGuidance(ch, in.Constraints[ch]))
	}
	sb.WriteString("\n")

	if !in.PriorFeedback.Empty() {
		writeFeedback(&sb, in.PriorFeedback)
	}

	sb.WriteString("Respond with JSON of this shape:\n")
	sb.WriteString(`{"drafts": {`)
	for i, ch := range channels {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, `"%s": {"channel": "%s", "headline": "...", "body": "...", "cta": "...", "claims": ["..."]}`, ch, ch)
	}
	sb.WriteString("}}\n")

	return sb.String()
}

func splitChunks(chunks []model.Chunk) (brand, product []model.Chunk) {
	for _, c := range chunks {
		if c.Category == model.CategoryBrand {
			brand = append(brand, c)
		} else {
			product = append(product, c)
		}
	}
	return brand, product
}

func writeChunks(sb *strings.Builder, title string, chunks []model.Chunk) {
	sb.WriteString(title)
	sb.WriteString(":\n")
	if len(chunks) == 0 {
		sb.WriteString("(none)\n\n")
		return
	}
	for _, c := range chunks {
		fmt.Fprintf(sb, "[%s] %s\n", c.ID, strings.TrimSpace(c.Text))
	}
	sb.WriteString("\n")
}

func channelGuidance(ch model.Channel, c model.ChannelConstraints) string {
	var parts []string
	switch ch {
	case model.ChannelEmail:
		parts = append(parts, "headline is the subject line")
	case model.ChannelWeb:
		parts = append(parts, "body is the subhead")
	}
	if c.MaxChars > 0 {
		parts = append(parts, fmt.Sprintf("headline+body+cta at most %d characters", c.MaxChars))
	}
	if c.SubjectMaxChars > 0 {
		parts = append(parts, fmt.Sprintf("subject at most %d characters", c.SubjectMaxChars))
	}
	if c.BodyMaxWords > 0 {
		parts = append(parts, fmt.Sprintf("body at most %d words", c.BodyMaxWords))
	}
	if c.HeadlineMaxWords > 0 {
		parts = append(parts, fmt.Sprintf("headline at most %d words", c.HeadlineMaxWords))
	}
	if c.SubheadMaxWords > 0 {
		parts = append(parts, fmt.Sprintf("subhead at most %d words", c.SubheadMaxWords))
	}
	if len(parts) == 0 {
		return "no length limit"
	}
	return strings.Join(parts, "; ")
}

func writeFeedback(sb *strings.Builder, f *Feedback) {
	fmt.Fprintf(sb, "FEEDBACK FROM ITERATION %d (fix all of these):\n", f.Iteration)

	if f.AgentError != "" {
		fmt.Fprintf(sb, "- The previous call failed: %s\n", f.AgentError)
	}
	for _, p := range f.SchemaProblems {
		fmt.Fprintf(sb, "- Output problem: %s\n", p)
	}

	channels := make([]model.Channel, 0, len(f.Scorecards))
	for ch := range f.Scorecards {
		channels = append(channels, ch)
	}
	sort.Slice(channels, func(i, j int) bool { return channels[i] < channels[j] })
	for _, ch := range channels {
		card := f.Scorecards[ch]
		if card.Passed {
			continue
		}
		fmt.Fprintf(sb, "- %s (brand voice %d, CTA clarity %d):\n", ch, card.BrandVoiceScore, card.CTAClarityScore)
		for _, issue := range card.Issues {
			fmt.Fprintf(sb, "  - %s\n", issue)
		}
	}

	for i, c := range f.UnsupportedClaims {
		if i >= MaxFeedbackClaims {
			fmt.Fprintf(sb, "- ... and %d more unsupported claims\n", len(f.UnsupportedClaims)-MaxFeedbackClaims)
			break
		}
		fmt.Fprintf(sb, "- Unsupported claim, remove it or restate it from the product context: %q\n", c.Text)
	}
	sb.WriteString("\n")
}
