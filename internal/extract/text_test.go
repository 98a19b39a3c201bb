package extract

import (
	"reflect"
	"strings"
	"testing"
)

func TestWords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Our platform reduces incidents by 75%", []string{"our", "platform", "reduces", "incidents", "by", "75%"}},
		{"identity-related security", []string{"identity-related", "security"}},
		{"You're in -- register!", []string{"you're", "in", "register"}},
		{"   ", nil},
	}

	for _, tt := range tests {
		got := Words(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Words(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSplitSentences_LiteralSubstrings(t *testing.T) {
	text := "Acme secures access. Fortune 500 customers reported 75% reduction in incidents. Deploys in a day"
	got := SplitSentences(text)

	want := []string{
		"Acme secures access.",
		"Fortune 500 customers reported 75% reduction in incidents.",
		"Deploys in a day",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for _, s := range got {
		if !strings.Contains(text, s) {
			t.Errorf("sentence %q is not a substring of the input", s)
		}
	}
}

func TestSplitSentences_DecimalsAndNewlines(t *testing.T) {
	got := SplitSentences("Version 2.5 is out\n- Faster sync")
	want := []string{"Version 2.5 is out", "- Faster sync"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestTrimTerminator(t *testing.T) {
	if got := TrimTerminator(" Done. "); got != "Done" {
		t.Errorf("expected Done, got %q", got)
	}
}

func TestVisibleText(t *testing.T) {
	doc := `<html><head><style>p{}</style><script>var x=1;</script></head>
<body><h1>Brand voice</h1><p>Speak to   <b>you</b>, the reader.</p><p>Be concrete.</p></body></html>`

	got, err := VisibleText(doc)
	if err != nil {
		t.Fatalf("VisibleText failed: %v", err)
	}
	if strings.Contains(got, "var x") || strings.Contains(got, "p{}") {
		t.Errorf("script or style leaked into text: %q", got)
	}
	paragraphs := strings.Split(got, "\n\n")
	if len(paragraphs) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d: %q", len(paragraphs), got)
	}
	if paragraphs[1] != "Speak to you , the reader." {
		t.Errorf("unexpected paragraph: %q", paragraphs[1])
	}
}

func TestWordCount(t *testing.T) {
	if got := WordCount("one  two\nthree"); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
}
