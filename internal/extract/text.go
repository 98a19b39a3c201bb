package extract

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"
)

// Words splits text into lowercase word tokens.
// Inner hyphens, apostrophes and a trailing percent sign stay part of the word
// ("identity-related", "you're", "75%").
func Words(text string) []string {
	var words []string
	var cur strings.Builder

	flush := func() {
		w := strings.Trim(cur.String(), "-'")
		if w != "" {
			words = append(words, w)
		}
		cur.Reset()
	}

	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '%':
			cur.WriteRune(r)
		case r == '-':
			if cur.Len() > 0 {
				cur.WriteRune('-')
			}
		case r == '\'', r == '’':
			if cur.Len() > 0 {
				cur.WriteRune('\'')
			}
		default:
			flush()
		}
	}
	flush()

	return words
}

// WordCount counts whitespace-separated words, the way a reader would
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// SplitSentences splits text into trimmed sentences that are literal substrings of text.
// A sentence ends at '.', '!' or '?' followed by whitespace (or end of text), or at a newline.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0

	emit := func(end int) {
		s := strings.TrimSpace(text[start:end])
		if s != "" {
			sentences = append(sentences, s)
		}
		start = end
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '\n':
			emit(i + 1)
		case c == '.' || c == '!' || c == '?':
			if i+1 == len(text) || text[i+1] == ' ' || text[i+1] == '\t' || text[i+1] == '\n' || text[i+1] == '\r' {
				emit(i + 1)
			}
		}
	}
	emit(len(text))

	return sentences
}

// TrimTerminator strips trailing sentence punctuation
func TrimTerminator(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), ".!?;:")
}

var blockElements = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "li": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"br": true, "tr": true, "blockquote": true, "pre": true,
}

// VisibleText extracts readable text from HTML, skipping scripts and styles.
// Block elements are separated by blank lines so paragraph chunking still works.
func VisibleText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}

	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "template", "nav":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.Join(strings.Fields(n.Data), " ")
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && blockElements[n.Data] {
			buf.WriteString("\n\n")
		}
	}

	walk(doc)
	return normalizeBlankLines(buf.String()), nil
}

// PDFText extracts plain text from a PDF document, one page per paragraph
func PDFText(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract page %d: %w", i, err)
		}
		if t := strings.TrimSpace(text); t != "" {
			pages = append(pages, t)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}

// normalizeBlankLines trims lines and collapses runs of blank lines to one
func normalizeBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
