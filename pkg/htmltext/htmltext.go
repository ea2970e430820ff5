// Package htmltext flattens HTML fragments into whitespace-normalized
// plain text for prompt building and storage.
package htmltext

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Flatten strips markup from raw text. Input that does not look like HTML
// is only whitespace-trimmed.
func Flatten(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.Contains(trimmed, "<") || !strings.Contains(trimmed, ">") {
		return trimmed
	}

	root, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return trimmed
	}

	return strings.Join(collectText(root), " ")
}

// FlattenSelection extracts the text of a goquery selection, separating
// text nodes with single spaces.
func FlattenSelection(sel *goquery.Selection) string {
	var parts []string
	for _, node := range sel.Nodes {
		parts = append(parts, collectText(node)...)
	}
	return strings.Join(parts, " ")
}

func collectText(root *html.Node) []string {
	var parts []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if fields := strings.Fields(n.Data); len(fields) > 0 {
				parts = append(parts, strings.Join(fields, " "))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return parts
}
