package dom

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// ParseOptions controls how raw HTML becomes a Document.
type ParseOptions struct {
	// RemoveSelectors lists CSS selectors whose matches are pruned before
	// the owned tree is built (e.g. "nav", ".ads").
	RemoveSelectors []string
}

// Parse reads HTML from r and builds an owned Document from the body.
func Parse(r io.Reader, opts ParseOptions) (*Document, error) {
	gq, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc := &Document{Pruned: make(map[string]int)}

	for _, sel := range opts.RemoveSelectors {
		sel = strings.TrimSpace(sel)
		if sel == "" {
			continue
		}
		matcher, err := cascadia.Compile(sel)
		if err != nil {
			return nil, fmt.Errorf("invalid selector %q: %w", sel, err)
		}
		matches := gq.FindMatcher(matcher)
		doc.Pruned[sel] = matches.Length()
		matches.Remove()
	}

	doc.Title = strings.TrimSpace(collapseSpace(gq.Find("head title").First().Text()))
	if doc.Title == "" {
		doc.Title = strings.TrimSpace(collapseSpace(gq.Find("h1").First().Text()))
	}

	root := gq.Find("body").First()
	var parent *html.Node
	if root.Length() > 0 {
		parent = root.Get(0)
	} else if len(gq.Nodes) > 0 {
		parent = gq.Nodes[0]
	}
	if parent == nil {
		return doc, nil
	}

	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if n := fromHTML(c); n != nil {
			doc.Children = append(doc.Children, n)
		}
	}
	return doc, nil
}

// ParseString is Parse over a string.
func ParseString(s string, opts ParseOptions) (*Document, error) {
	return Parse(strings.NewReader(s), opts)
}

func fromHTML(n *html.Node) Node {
	switch n.Type {
	case html.TextNode:
		return &Text{Content: n.Data}
	case html.CommentNode:
		return &Comment{Content: n.Data}
	case html.ElementNode:
		el := &Element{Tag: strings.ToLower(n.Data)}
		if len(n.Attr) > 0 {
			el.Attrs = make([]Attr, 0, len(n.Attr))
		}
		for _, a := range n.Attr {
			key := strings.ToLower(a.Key)
			if a.Namespace != "" {
				key = a.Namespace + ":" + key
			}
			el.Attrs = append(el.Attrs, Attr{Key: key, Val: a.Val})
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if child := fromHTML(c); child != nil {
				el.Children = append(el.Children, child)
			}
		}
		return el
	default:
		return nil
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
