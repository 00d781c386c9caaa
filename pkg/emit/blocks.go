package emit

import (
	"strconv"
	"strings"

	"github.com/jmylchreest/htmd/pkg/dom"
)

// list renders ul/ol at the given nesting depth. Indentation is absolute:
// two spaces per level.
func (e *emitter) list(el *dom.Element, depth int) string {
	ordered := el.Tag == "ol"
	n := 1

	var lines []string
	for _, c := range el.Children {
		ce, ok := c.(*dom.Element)
		if !ok {
			continue
		}
		switch ce.Tag {
		case "li":
			marker := e.bullet + " "
			if ordered {
				marker = strconv.Itoa(n) + ". "
				n++
			}
			lines = append(lines, e.listItem(ce, depth, marker))
		case "ul", "ol":
			if s := e.list(ce, depth+1); s != "" {
				lines = append(lines, s)
			}
		}
	}
	return strings.Join(lines, "\n")
}

func (e *emitter) listItem(li *dom.Element, depth int, marker string) string {
	indent := strings.Repeat("  ", depth)
	hang := indent + strings.Repeat(" ", len(marker))

	var out []string
	first := true
	add := func(text string) {
		for _, line := range strings.Split(text, "\n") {
			switch {
			case first:
				out = append(out, indent+marker+line)
				first = false
			case line == "":
				out = append(out, "")
			default:
				out = append(out, hang+line)
			}
		}
	}

	inl := e.newInline(false)
	flush := func() {
		if s := inl.String(); s != "" {
			add(escapeLineStarts(s))
		}
		inl = e.newInline(false)
	}

	for _, c := range li.Children {
		if ce, ok := c.(*dom.Element); ok {
			switch {
			case ce.Tag == "ul" || ce.Tag == "ol":
				flush()
				if first {
					out = append(out, indent+strings.TrimRight(marker, " "))
					first = false
				}
				if s := e.list(ce, depth+1); s != "" {
					out = append(out, s)
				}
				continue
			case isBlock(ce.Tag):
				flush()
				if s := e.blocks([]dom.Node{ce}).String(); s != "" {
					add(s)
				}
				continue
			}
		}
		e.inlineNode(inl, c)
	}
	flush()

	if first {
		return indent + strings.TrimRight(marker, " ")
	}
	return strings.Join(out, "\n")
}

func (e *emitter) table(t *dom.Element) string {
	var caption string
	var rows [][]string

	var collect func(el *dom.Element)
	collect = func(el *dom.Element) {
		for _, c := range el.Children {
			ce, ok := c.(*dom.Element)
			if !ok {
				continue
			}
			switch ce.Tag {
			case "caption":
				caption = e.flatInline(ce)
			case "thead", "tbody", "tfoot":
				collect(ce)
			case "tr":
				if cells := e.cells(ce); len(cells) > 0 {
					rows = append(rows, cells)
				}
			}
		}
	}
	collect(t)

	cols := 0
	for _, row := range rows {
		cols = max(cols, len(row))
	}
	if cols == 0 {
		return caption
	}

	var sb strings.Builder
	if caption != "" {
		sb.WriteString(escapeLineStarts(caption))
		sb.WriteString("\n\n")
	}
	for i, row := range rows {
		for len(row) < cols {
			row = append(row, "")
		}
		sb.WriteString("| ")
		sb.WriteString(strings.Join(row, " | "))
		sb.WriteString(" |")
		if i == 0 {
			sb.WriteString("\n|")
			sb.WriteString(strings.Repeat(" --- |", cols))
		}
		if i < len(rows)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func (e *emitter) cells(tr *dom.Element) []string {
	var cells []string
	for _, c := range tr.Children {
		ce, ok := c.(*dom.Element)
		if !ok || (ce.Tag != "td" && ce.Tag != "th") {
			continue
		}
		cells = append(cells, strings.ReplaceAll(e.flatInline(ce), "|", `\|`))

		if span, _ := ce.Attr("colspan"); span != "" {
			if n, err := strconv.Atoi(span); err == nil {
				// zero or negative spans count as one cell
				n = min(max(n, 1), 64)
				for i := 1; i < n; i++ {
					cells = append(cells, "")
				}
			}
		}
	}
	return cells
}

func (e *emitter) definitionList(dl *dom.Element) string {
	var lines []string

	var collect func(el *dom.Element)
	collect = func(el *dom.Element) {
		for _, c := range el.Children {
			ce, ok := c.(*dom.Element)
			if !ok {
				continue
			}
			switch ce.Tag {
			case "dt":
				if s := e.flatInline(ce); s != "" {
					lines = append(lines, e.strong+s+e.strong)
				}
			case "dd":
				if s := e.flatInline(ce); s != "" {
					lines = append(lines, ": "+s)
				}
			case "div":
				collect(ce)
			}
		}
	}
	collect(dl)

	return strings.Join(lines, "\n")
}
