package emit

import (
	"strings"

	"github.com/jmylchreest/htmd/pkg/dom"
)

var inlineTags = map[string]bool{
	"a": true, "img": true, "br": true, "code": true,
	"em": true, "i": true, "strong": true, "b": true,
	"del": true, "s": true, "strike": true,
}

func (e *emitter) inlineNode(b *inline, n dom.Node) {
	switch n := n.(type) {
	case *dom.Text:
		b.text(n.Content, true)
	case *dom.Comment:
		if e.passthrough && !e.style.StripComments {
			b.write("<!--" + n.Content + "-->")
		}
	case *dom.Element:
		e.inlineElement(b, n)
	}
}

func (e *emitter) inlineChildren(b *inline, el *dom.Element) {
	for _, c := range el.Children {
		e.inlineNode(b, c)
	}
}

// flatInline renders el's children on a single line.
func (e *emitter) flatInline(el *dom.Element) string {
	b := e.newInline(true)
	e.inlineChildren(b, el)
	return b.String()
}

func (e *emitter) inlineElement(b *inline, el *dom.Element) {
	switch el.Tag {
	case "em", "i":
		e.emphasis(b, el, e.em)
	case "strong", "b":
		e.emphasis(b, el, e.strong)
	case "del", "s", "strike":
		if e.strike {
			e.emphasis(b, el, "~~")
			return
		}
		e.inlineChildren(b, el)
	case "code":
		b.write(codeSpan(dom.TextContent(el)))
	case "pre":
		b.write(codeSpan(preText(el)))
	case "a":
		e.link(b, el)
	case "img":
		e.image(b, el)
	case "br":
		b.hardBreak(e.hardBreak)
	default:
		if skipTags[el.Tag] {
			return
		}
		if isBlock(el.Tag) {
			b.space()
			e.inlineChildren(b, el)
			b.space()
			return
		}
		e.inlineUnknown(b, el)
	}
}

func (e *emitter) emphasis(b *inline, el *dom.Element, marker string) {
	inner := e.newInline(b.flat)
	e.inlineChildren(inner, el)
	b.wrap(inner, marker)
}

func (e *emitter) link(b *inline, el *dom.Element) {
	inner := e.newInline(true)
	e.inlineChildren(inner, el)

	href, _ := el.Attr("href")
	href = strings.TrimSpace(href)
	if href == "" {
		b.wrap(inner, "")
		return
	}

	text := inner.String()
	if text == "" {
		text = escapeText(href)
	}

	if inner.lead {
		b.space()
	}
	b.write("[" + text + "](" + destination(href) + titleClause(el) + ")")
	if inner.pending {
		b.space()
	}
}

func (e *emitter) image(b *inline, el *dom.Element) {
	alt, _ := el.Attr("alt")
	alt = strings.Join(strings.Fields(alt), " ")

	src, _ := el.Attr("src")
	src = strings.TrimSpace(src)
	if src == "" {
		// A broken image reference is useless in text; keep the alt text.
		b.text(alt, true)
		return
	}
	b.write("![" + escapeText(alt) + "](" + destination(src) + titleClause(el) + ")")
}

func titleClause(el *dom.Element) string {
	title, _ := el.Attr("title")
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return ""
	}
	return ` "` + strings.ReplaceAll(title, `"`, `\"`) + `"`
}

func (e *emitter) inlineUnknown(b *inline, el *dom.Element) {
	if e.passthrough {
		if open, ok := e.openTag(el); ok {
			b.write(open)
			e.inlineChildren(b, el)
			if !voidTags[el.Tag] {
				b.write(closeTag(el))
			}
			return
		}
	}
	e.inlineChildren(b, el)
}
