package search

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/ppiankov/briefly/internal/model"
)

// ExtractText converts an HTML document into readable plain text: script,
// style, and navigation subtrees are skipped, block elements become line
// breaks, and whitespace is collapsed.
func ExtractText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "nav", "header", "footer", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				sb.WriteString(text)
				sb.WriteByte(' ')
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
		if n.Type == html.ElementNode && isBlockElement(n.Data) {
			sb.WriteByte('\n')
		}
	}
	walk(doc)

	return collapseBlankLines(sb.String())
}

func isBlockElement(tag string) bool {
	switch tag {
	case "p", "div", "section", "article", "li", "tr", "br",
		"h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "pre":
		return true
	}
	return false
}

// collapseBlankLines trims trailing spaces and squeezes runs of blank lines
func collapseBlankLines(text string) string {
	lines := strings.Split(text, "\n")
	var out []string
	blank := true
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// parseSearchResults extracts ranked results from a DuckDuckGo HTML
// response. Each result is an anchor with class result__a; the snippet
// lives in a sibling node with class result__snippet.
func parseSearchResults(htmlContent string) ([]model.SearchResult, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	var results []model.SearchResult
	var current *model.SearchResult

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			switch {
			case hasClass(n, "result__a"):
				if current != nil && current.URL != "" {
					results = append(results, *current)
				}
				current = &model.SearchResult{
					Title: nodeText(n),
					URL:   resolveResultURL(attrValue(n, "href")),
				}
				return
			case hasClass(n, "result__snippet"):
				if current != nil {
					current.Snippet = nodeText(n)
				}
				return
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	if current != nil && current.URL != "" {
		results = append(results, *current)
	}

	return results, nil
}

// resolveResultURL unwraps DuckDuckGo's redirect links (the uddg query
// parameter carries the destination).
func resolveResultURL(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	if dest := parsed.Query().Get("uddg"); dest != "" {
		return dest
	}
	return href
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			for _, c := range strings.Fields(attr.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// nodeText returns the concatenated trimmed text of a node's subtree
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
