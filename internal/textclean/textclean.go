// Package textclean turns provider HTML payloads into readable plain text.
package textclean

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	nethtml "golang.org/x/net/html"
)

// MinPreferredLength is the length BestDescription looks for before settling
// for a shorter candidate.
const MinPreferredLength = 100

// nonContentTags are removed together with everything inside them.
var nonContentTags = []string{
	"script", "style", "noscript", "nav", "header", "footer", "aside", "iframe", "form",
}

var (
	htmlTagRegex    = regexp.MustCompile(`<[^>]*>`)
	htmlCommentRe   = regexp.MustCompile(`<!--[\s\S]*?-->`)
	spaceRunRegex   = regexp.MustCompile(`[ \t]+`)
	blankLinesRegex = regexp.MustCompile(`\n{3,}`)
)

// CleanHTMLToText converts an HTML fragment or document into plain text.
//
// Non-content elements are dropped with their content, block elements become
// line breaks, list items get a "• " bullet, table cells are tab separated and
// rows newline separated, <hr> becomes a "---" line and any other tag becomes
// a single space. Entities are decoded and whitespace collapsed. The result is
// trimmed but never truncated.
func CleanHTMLToText(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return collapseWhitespace(extractText(raw))
	}
	doc.Find(strings.Join(nonContentTags, ", ")).Remove()

	var b strings.Builder
	for _, n := range doc.Nodes {
		render(&b, n)
	}
	return collapseWhitespace(b.String())
}

// BestDescription cleans each candidate in priority order and returns the
// first one at least MinPreferredLength characters long. When none qualifies
// it falls back to the first non-empty cleaned candidate.
func BestDescription(candidates ...string) string {
	var fallback string
	for _, c := range candidates {
		cleaned := CleanHTMLToText(c)
		if cleaned == "" {
			continue
		}
		if utf8.RuneCountInString(cleaned) >= MinPreferredLength {
			return cleaned
		}
		if fallback == "" {
			fallback = cleaned
		}
	}
	return fallback
}

func render(b *strings.Builder, n *nethtml.Node) {
	switch n.Type {
	case nethtml.TextNode:
		b.WriteString(n.Data)
		return
	case nethtml.CommentNode, nethtml.DoctypeNode:
		return
	case nethtml.DocumentNode:
		renderChildren(b, n)
		return
	}

	switch n.Data {
	case "html", "head", "body":
		renderChildren(b, n)
	case "br":
		b.WriteString("\n")
	case "hr":
		b.WriteString("\n---\n")
	case "li":
		// The bullet sits on the item's first word, even when the item
		// starts with whitespace or a block child.
		var item strings.Builder
		renderChildren(&item, n)
		b.WriteString("\n• ")
		b.WriteString(strings.TrimLeft(item.String(), " \t\r\n\u00a0"))
		b.WriteString("\n")
	case "h1", "h2", "h3", "h4", "h5", "h6", "p", "div":
		renderChildren(b, n)
		b.WriteString("\n\n")
	case "td", "th":
		renderChildren(b, n)
		b.WriteString("\t")
	case "tr", "table":
		renderChildren(b, n)
		b.WriteString("\n")
	default:
		b.WriteString(" ")
		renderChildren(b, n)
		b.WriteString(" ")
	}
}

func renderChildren(b *strings.Builder, n *nethtml.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		render(b, c)
	}
}

// collapseWhitespace folds space runs to one space (runs containing a tab fold
// to a single tab so table cells stay separated), trims every line and caps
// consecutive blank lines at one.
func collapseWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = spaceRunRegex.ReplaceAllStringFunc(s, func(run string) string {
		if strings.Contains(run, "\t") {
			return "\t"
		}
		return " "
	})

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = blankLinesRegex.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// extractText is the regex fallback used when the document cannot be parsed:
// comments and tags are dropped and entities unescaped.
func extractText(content string) string {
	plain := htmlCommentRe.ReplaceAllString(content, "")
	plain = htmlTagRegex.ReplaceAllString(plain, " ")
	return html.UnescapeString(plain)
}
