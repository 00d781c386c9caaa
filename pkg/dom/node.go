// Package dom holds the owned document tree that the converter sanitizes
// and emits from.
//
// A tree is built fresh from a parse and is never shared between
// conversions. Every stage that changes a tree returns a new one.
package dom

import "strings"

// Node is one of *Element, *Text or *Comment.
type Node interface {
	node()
}

// Attr is a single element attribute.
type Attr struct {
	Key string
	Val string
}

// Element is a tag with ordered attributes and children.
type Element struct {
	Tag      string
	Attrs    []Attr
	Children []Node
}

// Text is a run of character data, already entity-decoded.
type Text struct {
	Content string
}

// Comment is an HTML comment.
type Comment struct {
	Content string
}

func (*Element) node() {}
func (*Text) node()    {}
func (*Comment) node() {}

// Attr returns the value of the first attribute named key.
func (e *Element) Attr(key string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Classes returns the whitespace-separated tokens of the class attribute.
func (e *Element) Classes() []string {
	v, _ := e.Attr("class")
	return strings.Fields(v)
}

// Document is the root of a tree: the body content of a parsed page plus
// metadata lifted from the head.
type Document struct {
	// Title is the <title> text, or the first h1 when no title exists.
	Title string

	Children []Node

	// Pruned maps each removal selector to the number of elements it matched.
	Pruned map[string]int
}

// TextContent concatenates all descendant text. Comments are skipped.
func TextContent(n Node) string {
	var sb strings.Builder
	appendText(&sb, n)
	return sb.String()
}

func appendText(sb *strings.Builder, n Node) {
	switch n := n.(type) {
	case *Text:
		sb.WriteString(n.Content)
	case *Element:
		for _, c := range n.Children {
			appendText(sb, c)
		}
	}
}

// Walk calls fn for every node in depth-first order. Returning false from
// fn skips that node's children.
func Walk(nodes []Node, fn func(Node) bool) {
	for _, n := range nodes {
		if !fn(n) {
			continue
		}
		if el, ok := n.(*Element); ok {
			Walk(el.Children, fn)
		}
	}
}

// CountElements returns the number of elements in nodes and their
// descendants.
func CountElements(nodes []Node) int {
	count := 0
	Walk(nodes, func(n Node) bool {
		if _, ok := n.(*Element); ok {
			count++
		}
		return true
	})
	return count
}

// Tags returns the set of distinct element tags present under nodes.
func Tags(nodes []Node) map[string]int {
	tags := make(map[string]int)
	Walk(nodes, func(n Node) bool {
		if el, ok := n.(*Element); ok {
			tags[el.Tag]++
		}
		return true
	})
	return tags
}
