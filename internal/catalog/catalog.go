// Package catalog provides the default subjects and topics of a study page.
package catalog

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Subject is a subject with its default topic names in page order
type Subject struct {
	Name   string   `koanf:"name" json:"name"`
	Topics []string `koanf:"topics" json:"topics"`
}

// ParseHTML extracts subjects from a page. A subject is an element with
// class "subject" and a data-subject attribute; its topics are descendant
// elements with class "topic", named by data-topic or else by the text of
// their first <span>.
func ParseHTML(r io.Reader) ([]Subject, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	var subjects []Subject
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "subject") {
			if name := strings.TrimSpace(attr(n, "data-subject")); name != "" {
				subjects = append(subjects, Subject{Name: name, Topics: topicsOf(n)})
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return subjects, nil
}

func topicsOf(subject *html.Node) []string {
	topics := []string{}
	seen := map[string]bool{}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "topic") {
			name := strings.TrimSpace(attr(n, "data-topic"))
			if name == "" {
				name = spanText(n)
			}
			if name != "" && !seen[name] {
				seen[name] = true
				topics = append(topics, name)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := subject.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return topics
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// spanText returns the trimmed text of the first <span> under n.
func spanText(n *html.Node) string {
	var span *html.Node
	var find func(*html.Node)
	find = func(n *html.Node) {
		for c := n.FirstChild; c != nil && span == nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "span" {
				span = c
				return
			}
			find(c)
		}
	}
	find(n)
	if span == nil {
		return ""
	}

	var sb strings.Builder
	var text func(*html.Node)
	text = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			text(c)
		}
	}
	text(span)
	return strings.TrimSpace(sb.String())
}
