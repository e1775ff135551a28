// Package htmlfield extracts labelled values from scraped HTML documents.
// Extraction tries several structural strategies in a fixed order: table
// rows, definition lists, then a plain-text label scan. The first success
// wins. Callers treat the result as best-effort; an empty string means the
// label was not found.
package htmlfield

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Document is a parsed HTML page ready for field extraction.
type Document struct {
	root  *html.Node
	lines []string
}

// Parse builds a Document from raw HTML bytes.
func Parse(raw []byte) (*Document, error) {
	root, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	return &Document{root: root, lines: textLines(root)}, nil
}

// Field returns the value associated with the first of the given labels that
// any strategy can resolve.
func (d *Document) Field(labels ...string) string {
	for _, label := range labels {
		if v := d.fromTables(label); v != "" {
			return v
		}
		if v := d.fromDefinitionLists(label); v != "" {
			return v
		}
		if v := d.fromText(label); v != "" {
			return v
		}
	}
	return ""
}

// FormValue returns the value attribute of the first input element with the
// given name, or "" when absent. Used to lift anti-forgery tokens out of
// session pages.
func (d *Document) FormValue(name string) string {
	var value string
	walk(d.root, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "input" {
			return true
		}
		if attr(n, "name") != name {
			return true
		}
		value = attr(n, "value")
		return false
	})
	return value
}

func (d *Document) fromTables(label string) string {
	var value string
	walk(d.root, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "tr" {
			return true
		}
		var cells []*html.Node
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "th" || c.Data == "td") {
				cells = append(cells, c)
			}
		}
		if len(cells) < 2 || !labelMatches(text(cells[0]), label) {
			return true
		}
		value = strings.TrimSpace(text(cells[1]))
		return value == ""
	})
	return value
}

func (d *Document) fromDefinitionLists(label string) string {
	var value string
	walk(d.root, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "dt" || !labelMatches(text(n), label) {
			return true
		}
		for s := n.NextSibling; s != nil; s = s.NextSibling {
			if s.Type == html.ElementNode && s.Data == "dd" {
				value = strings.TrimSpace(text(s))
				break
			}
		}
		return value == ""
	})
	return value
}

// fromText scans the flattened text content for "Label: value" or a label
// line followed by a value line. Last-resort strategy for pages that render
// specs as styled divs or spans.
func (d *Document) fromText(label string) string {
	for i, line := range d.lines {
		if !labelMatches(line, label) {
			continue
		}
		if idx := strings.Index(line, ":"); idx >= 0 {
			if v := strings.TrimSpace(line[idx+1:]); v != "" {
				return v
			}
		}
		if strings.EqualFold(trimLabel(line), label) && i+1 < len(d.lines) {
			return d.lines[i+1]
		}
	}
	return ""
}

// attr returns the value of the named attribute on n, or "" when absent.
func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func labelMatches(cell, label string) bool {
	cleaned := strings.ToLower(trimLabel(cell))
	want := strings.ToLower(label)
	return cleaned == want || strings.HasPrefix(cleaned, want+" ") || strings.HasPrefix(cleaned, want+":")
}

func trimLabel(s string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), ":"))
}

func text(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

func textLines(n *html.Node) []string {
	var lines []string
	walk(n, func(c *html.Node) bool {
		if c.Type == html.ElementNode && (c.Data == "script" || c.Data == "style") {
			return false
		}
		if c.Type == html.TextNode {
			if line := strings.Join(strings.Fields(c.Data), " "); line != "" {
				lines = append(lines, line)
			}
		}
		return true
	})
	return lines
}

// walk visits nodes depth-first until fn returns false for a subtree root.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}
