package loader

import (
	"strings"

	"golang.org/x/net/html"
)

// htmlCleaner reduces markup in free text to its visible text.
type htmlCleaner struct{}

// Clean returns s with tags removed, entities decoded and whitespace collapsed.
// Text without markup is only whitespace-normalized.
func (htmlCleaner) Clean(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}

	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
			text.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(doc)
	return strings.Join(strings.Fields(text.String()), " ")
}
