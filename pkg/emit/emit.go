// Package emit turns a sanitized document tree into Markdown.
//
// Emission is total: elements without a rule are transparent (or passed
// through as literal HTML when the style allows it), so any tree yields a
// Stream.
package emit

import (
	"strings"
	"unicode/utf8"

	"github.com/jmylchreest/htmd/pkg/dom"
	"github.com/jmylchreest/htmd/pkg/style"
)

// Elements with no textual value that are never emitted.
var skipTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"head":     true,
	"title":    true,
	"meta":     true,
	"link":     true,
	"base":     true,
	"wbr":      true,
}

// Block containers: their content becomes paragraphs of its own.
var containerTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "main": true,
	"header": true, "footer": true, "aside": true, "nav": true,
	"figure": true, "figcaption": true, "address": true, "details": true,
	"summary": true, "form": true, "fieldset": true, "center": true,
	"li": true, "dt": true, "dd": true, "caption": true,
	"thead": true, "tbody": true, "tfoot": true, "td": true, "th": true,
	"body": true, "html": true,
}

var blockTags = map[string]bool{
	"blockquote": true, "pre": true, "ul": true, "ol": true, "dl": true,
	"table": true, "tr": true, "hr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

func isBlock(tag string) bool {
	return containerTags[tag] || blockTags[tag]
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

// Emit walks doc and returns the Markdown token stream for st.
func Emit(doc *dom.Document, st style.Style) Stream {
	return newEmitter(st).blocks(doc.Children)
}

// Markdown is Emit rendered to text, before post-processing.
func Markdown(doc *dom.Document, st style.Style) string {
	return Emit(doc, st).String()
}

type emitter struct {
	style style.Style

	em, strong, bullet, hardBreak string

	tables, strike, fenceInfo, passthrough bool
}

func newEmitter(st style.Style) *emitter {
	return &emitter{
		style:       st,
		em:          st.EmphasisMarker(),
		strong:      st.StrongMarker(),
		bullet:      st.BulletMarker(),
		hardBreak:   st.Flavor.HardBreak(),
		tables:      st.Flavor.Tables(),
		strike:      st.Flavor.Strikethrough(),
		fenceInfo:   st.Flavor.FenceInfo(),
		passthrough: st.PassthroughHTML(),
	}
}

func (e *emitter) blocks(nodes []dom.Node) Stream {
	w := &blockWriter{e: e, inl: e.newInline(false)}
	for _, n := range nodes {
		w.node(n)
	}
	w.flush()
	return w.out
}

// blockWriter collects the blocks of one container. Inline content is
// buffered until a block element or the end of the container flushes it
// as a paragraph.
type blockWriter struct {
	e   *emitter
	out Stream
	inl *inline
}

func (w *blockWriter) flush() {
	if s := w.inl.String(); s != "" {
		w.out.block(escapeLineStarts(s))
	}
	w.inl = w.e.newInline(false)
}

func (w *blockWriter) children(el *dom.Element) {
	for _, c := range el.Children {
		w.node(c)
	}
}

func (w *blockWriter) node(n dom.Node) {
	el, ok := n.(*dom.Element)
	if !ok {
		w.e.inlineNode(w.inl, n)
		return
	}

	e := w.e
	switch tag := el.Tag; {
	case skipTags[tag]:
	case headingLevel(tag) > 0:
		w.flush()
		w.out.block(e.heading(el, headingLevel(tag)))
	case tag == "blockquote":
		w.flush()
		w.out.block(quote(e.blocks(el.Children).String()))
	case tag == "pre":
		w.flush()
		w.out.block(e.codeBlock(el))
	case tag == "ul" || tag == "ol":
		w.flush()
		w.out.block(e.list(el, 0))
	case tag == "table" && e.tables:
		w.flush()
		w.out.block(e.table(el))
	case tag == "hr":
		w.flush()
		w.out.block("---")
	case tag == "dl":
		w.flush()
		w.out.block(e.definitionList(el))
	case tag == "tr":
		w.flush()
		for _, c := range el.Children {
			e.inlineNode(w.inl, c)
		}
		w.flush()
	case containerTags[tag] || tag == "table":
		w.flush()
		w.children(el)
		w.flush()
	case inlineTags[tag]:
		e.inlineElement(w.inl, el)
	default:
		w.unknown(el)
	}
}

// unknown handles an element without an emission rule in block context.
func (w *blockWriter) unknown(el *dom.Element) {
	if !w.e.passthrough || !hasBlockContent(el) {
		if w.e.passthrough {
			w.e.inlineUnknown(w.inl, el)
			return
		}
		w.children(el)
		return
	}

	open, ok := w.e.openTag(el)
	if !ok {
		w.children(el)
		return
	}
	w.flush()
	w.out.block(open)
	w.children(el)
	w.flush()
	if !voidTags[el.Tag] {
		w.out.block(closeTag(el))
	}
}

func hasBlockContent(el *dom.Element) bool {
	found := false
	dom.Walk(el.Children, func(n dom.Node) bool {
		if c, ok := n.(*dom.Element); ok && isBlock(c.Tag) {
			found = true
		}
		return !found
	})
	return found
}

func (e *emitter) heading(el *dom.Element, level int) string {
	b := e.newInline(true)
	e.inlineChildren(b, el)
	text := b.String()
	if text == "" {
		return ""
	}

	if e.style.Heading == style.HeadingSetext && level <= 2 {
		underline := "="
		if level == 2 {
			underline = "-"
		}
		text = escapeLineStart(text)
		return text + "\n" + strings.Repeat(underline, utf8.RuneCountInString(text))
	}
	return strings.Repeat("#", level) + " " + text
}

func quote(s string) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = ">"
			continue
		}
		lines[i] = "> " + line
	}
	return strings.Join(lines, "\n")
}
