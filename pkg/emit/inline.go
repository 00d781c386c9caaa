package emit

import (
	"strings"
	"unicode/utf8"
)

// inline accumulates the inline content of one block, collapsing HTML
// whitespace the way a browser would.
type inline struct {
	sb strings.Builder

	// pending is a collapsed space owed before the next write.
	pending bool
	// lead records whitespace seen before any content.
	lead bool
	// flat turns hard breaks into spaces (headings, links, table cells).
	flat bool

	breakLen int
	breaks   []int
}

func (e *emitter) newInline(flat bool) *inline {
	return &inline{flat: flat, breakLen: len(e.hardBreak)}
}

func (b *inline) afterBreak() bool {
	return len(b.breaks) > 0 && b.breaks[len(b.breaks)-1] == b.sb.Len()
}

func (b *inline) space() {
	if b.sb.Len() == 0 {
		b.lead = true
		return
	}
	if b.afterBreak() {
		return
	}
	b.pending = true
}

func (b *inline) write(s string) {
	if s == "" {
		return
	}
	if b.pending {
		b.sb.WriteByte(' ')
		b.pending = false
	}
	b.sb.WriteString(s)
}

// text writes character data, escaping Markdown syntax when esc is set.
func (b *inline) text(raw string, esc bool) {
	words := strings.FieldsFunc(raw, isHTMLSpace)
	if len(words) == 0 {
		if raw != "" {
			b.space()
		}
		return
	}
	if r, _ := utf8.DecodeRuneInString(raw); isHTMLSpace(r) {
		b.space()
	}
	s := strings.Join(words, " ")
	if esc {
		s = escapeText(s)
	}
	b.write(s)
	if r, _ := utf8.DecodeLastRuneInString(raw); isHTMLSpace(r) {
		b.space()
	}
}

func (b *inline) hardBreak(seq string) {
	if b.flat {
		b.space()
		return
	}
	if b.sb.Len() == 0 {
		return
	}
	b.pending = false
	b.sb.WriteString(seq)
	b.breaks = append(b.breaks, b.sb.Len())
}

// wrap writes inner surrounded by marker, keeping inner's edge whitespace
// outside the markers.
func (b *inline) wrap(inner *inline, marker string) {
	if inner.lead {
		b.space()
	}
	if s := inner.String(); s != "" {
		b.write(marker + s + marker)
	}
	if inner.pending {
		b.space()
	}
}

// String returns the content with trailing hard breaks removed.
func (b *inline) String() string {
	s := b.sb.String()
	for i := len(b.breaks) - 1; i >= 0 && b.breaks[i] == len(s); i-- {
		s = s[:len(s)-b.breakLen]
	}
	return s
}

func isHTMLSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}
