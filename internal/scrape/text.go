package scrape

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

var whitespacePattern = regexp.MustCompile(`\s+`)

// visibleText extracts text nodes from a parsed document, skipping chrome
// elements (script, style, nav, footer, header) that carry no company
// signals.
func visibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "nav", "footer", "header":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return collapseWhitespace(buf.String())
}

// collapseWhitespace normalizes all runs of whitespace to single spaces.
func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}

// findAboutURL scans the first maxLinks anchors for a company/about page
// link, matching keywords against both the href and the anchor text.
// Returns "" when no candidate is found.
func findAboutURL(doc *html.Node, base *url.URL, keywords []string, maxLinks int) string {
	type anchor struct {
		href string
		text string
	}

	var anchors []anchor
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if maxLinks > 0 && len(anchors) >= maxLinks {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			href := ""
			for _, attr := range n.Attr {
				if attr.Key == "href" {
					href = strings.TrimSpace(attr.Val)
				}
			}
			if href != "" {
				anchors = append(anchors, anchor{
					href: href,
					text: anchorText(n),
				})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	for _, a := range anchors {
		hrefLower := strings.ToLower(a.href)
		textLower := strings.ToLower(a.text)
		for _, kw := range keywords {
			if strings.Contains(hrefLower, kw) || strings.Contains(textLower, kw) {
				if resolved := resolveURL(base, a.href); resolved != "" {
					return resolved
				}
			}
		}
	}

	return ""
}

// anchorText returns the concatenated text content of an anchor node.
func anchorText(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(buf.String())
}

// resolveURL resolves href against the base URL, dropping fragments and
// non-http schemes.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	resolved.Fragment = ""

	return resolved.String()
}

// truncate caps s at max bytes without splitting a UTF-8 sequence;
// non-positive max means no cap.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
