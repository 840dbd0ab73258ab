package render

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// DefaultMaxChangelogLines is how many changelog lines are shown before
// "(and more...)".
const DefaultMaxChangelogLines = 4

const (
	indent   = "    "
	bullet   = "• "
	moreLine = indent + bullet + "(and more...)"

	sectionHeading = "## "
)

// invisibleChars have no visual width and could hide text in release notes.
var invisibleChars = map[rune]bool{
	'\u200B': true, // zero width space
	'\u200C': true, // zero width non-joiner
	'\u200D': true, // zero width joiner
	'\uFEFF': true, // byte order mark
	'\u2060': true, // word joiner
	'\u200E': true, // left-to-right mark
	'\u200F': true, // right-to-left mark
}

// skippedTags lose their content entirely.
var skippedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
}

// htmlTagRegex recognises markup GitHub and Gitea allow in release notes,
// so that text like "Vec<T>" is not mistaken for a tag.
var htmlTagRegex = regexp.MustCompile(`(?i)<!--|</?(?:a|b|i|em|strong|code|pre|p|br|hr|div|span|img|ul|ol|li|h[1-6]|table|thead|tbody|tr|td|th|details|summary|sub|sup|script|style|noscript)\b[^>]*>`)

// breakTags end a line of text.
var breakTags = map[string]bool{
	"br": true, "p": true, "div": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"summary": true, "details": true, "pre": true,
}

// Sanitize turns release notes into plain terminal-safe text. Embedded HTML
// is reduced to its text, and control and zero-width characters are removed.
// Line structure is kept.
func Sanitize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	switch {
	case htmlTagRegex.MatchString(text):
		text = stripHTML(text)
	case strings.Contains(text, "&"):
		text = html.UnescapeString(text)
	}

	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\n':
			sb.WriteRune(r)
		case r == '\t':
			sb.WriteString("  ")
		case invisibleChars[r], unicode.IsControl(r):
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func stripHTML(text string) string {
	nodes, err := html.ParseFragment(strings.NewReader(text), &html.Node{
		Type: html.ElementNode,
		Data: "body",
	})
	if err != nil {
		return text
	}

	var sb strings.Builder
	for _, n := range nodes {
		extractText(n, &sb)
	}
	return sb.String()
}

func extractText(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		if skippedTags[n.Data] {
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractText(c, sb)
	}
	if n.Type == html.ElementNode && breakTags[n.Data] {
		sb.WriteByte('\n')
	}
}

// ChangelogLines formats release notes for display.
//
// Notes that fit on one line come back verbatim. Otherwise blank lines and
// "## " section headings are dropped and at most limit of the remaining
// lines are returned as bullets: lines starting with "-" or "*" keep their
// marker, "•" lines are re-bulleted, and anything else gets a "•". If lines
// were cut, a final "(and more...)" bullet says so. limit <= 0 means no limit.
func ChangelogLines(text string, limit int) []string {
	text = strings.TrimSpace(Sanitize(text))
	if text == "" {
		return nil
	}
	if !strings.Contains(text, "\n") {
		return []string{indent + text}
	}

	var meaningful []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, sectionHeading) {
			continue
		}
		meaningful = append(meaningful, trimmed)
	}

	shown := meaningful
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	out := make([]string, 0, len(shown)+1)
	for _, line := range shown {
		switch {
		case strings.HasPrefix(line, "-"), strings.HasPrefix(line, "*"):
			out = append(out, indent+line)
		case strings.HasPrefix(line, "•"):
			out = append(out, indent+bullet+strings.TrimSpace(strings.TrimPrefix(line, "•")))
		default:
			out = append(out, indent+bullet+line)
		}
	}
	if len(shown) < len(meaningful) {
		out = append(out, moreLine)
	}
	return out
}
