package dom

import (
	"bytes"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ToHTML converts the document into an x/net/html tree rooted at a
// document node with an html > body skeleton.
func ToHTML(doc *Document) *html.Node {
	root := &html.Node{Type: html.DocumentNode}
	htmlEl := &html.Node{Type: html.ElementNode, Data: "html", DataAtom: atom.Html}
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	root.AppendChild(htmlEl)
	htmlEl.AppendChild(body)
	for _, n := range doc.Children {
		body.AppendChild(toHTML(n))
	}
	return root
}

func toHTML(n Node) *html.Node {
	switch n := n.(type) {
	case *Text:
		return &html.Node{Type: html.TextNode, Data: n.Content}
	case *Comment:
		return &html.Node{Type: html.CommentNode, Data: n.Content}
	case *Element:
		out := &html.Node{
			Type:     html.ElementNode,
			Data:     n.Tag,
			DataAtom: atom.Lookup([]byte(n.Tag)),
		}
		for _, a := range n.Attrs {
			out.Attr = append(out.Attr, html.Attribute{Key: a.Key, Val: a.Val})
		}
		for _, c := range n.Children {
			out.AppendChild(toHTML(c))
		}
		return out
	}
	return &html.Node{Type: html.TextNode}
}

// Render writes the body content of doc as HTML.
func Render(w io.Writer, doc *Document) error {
	for _, n := range doc.Children {
		if err := html.Render(w, toHTML(n)); err != nil {
			return err
		}
	}
	return nil
}

// RenderString returns the body content of doc as HTML.
func RenderString(doc *Document) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}
