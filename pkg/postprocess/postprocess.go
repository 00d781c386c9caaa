// Package postprocess normalizes emitted Markdown: whitespace cleanup
// followed by line wrapping. Fenced code is never touched and Normalize is
// idempotent.
package postprocess

import (
	"strings"

	"github.com/jmylchreest/htmd/pkg/style"
)

// Normalize applies whitespace cleanup (when st.CleanWhitespace is set)
// and then wraps lines to st.LineLength (when positive).
func Normalize(text string, st style.Style) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	if st.CleanWhitespace {
		lines = CleanWhitespace(lines)
	}
	if st.LineLength > 0 {
		lines = Wrap(lines, st.LineLength)
	}
	return strings.Join(lines, "\n")
}

// CleanWhitespace strips trailing blanks from each line, collapses runs of
// blank lines to one and trims blank lines at both ends. Lines inside
// fenced code are kept as they are. A hard break (two or more trailing
// spaces before another line of text) is kept as exactly two spaces.
func CleanWhitespace(lines []string) []string {
	out := make([]string, 0, len(lines))
	var fence fenceTracker
	blank := false

	for i, line := range lines {
		if fence.open {
			fence.feed(line)
			out = append(out, line)
			blank = false
			continue
		}

		brk := hardBreak(lines, i)
		line = strings.TrimRight(line, " \t")
		if line == "" {
			if blank || len(out) == 0 {
				continue
			}
			blank = true
			out = append(out, "")
			continue
		}

		blank = false
		if !fence.feed(line) && brk {
			line += "  "
		}
		out = append(out, line)
	}

	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

// hardBreak reports whether lines[i] ends in a space-only run of two or
// more and is followed by a non-blank line.
func hardBreak(lines []string, i int) bool {
	line := lines[i]
	body := strings.TrimRight(line, " ")
	if body == "" || len(line)-len(body) < 2 || strings.TrimRight(body, " \t") != body {
		return false
	}
	return i+1 < len(lines) && strings.TrimSpace(lines[i+1]) != ""
}

// fenceTracker follows fenced code regions line by line.
type fenceTracker struct {
	open   bool
	marker byte
	size   int
}

// feed advances the tracker and reports whether line is part of a fenced
// region, delimiters included.
func (f *fenceTracker) feed(line string) bool {
	marker, size, rest, ok := fenceDelimiter(line)
	if !f.open {
		if ok {
			f.open, f.marker, f.size = true, marker, size
			return true
		}
		return false
	}
	if ok && marker == f.marker && size >= f.size && strings.TrimSpace(rest) == "" {
		f.open = false
	}
	return true
}

// fenceDelimiter recognizes a run of three or more backticks or tildes,
// after any indentation and blockquote markers. A backtick run whose info
// string holds another backtick is an inline code span, not a fence.
func fenceDelimiter(line string) (marker byte, size int, rest string, ok bool) {
	s := strings.TrimLeft(line, " ")
	for strings.HasPrefix(s, ">") {
		s = strings.TrimLeft(s[1:], " ")
	}
	if s == "" || (s[0] != '`' && s[0] != '~') {
		return 0, 0, "", false
	}
	marker = s[0]
	for size < len(s) && s[size] == marker {
		size++
	}
	if size < 3 {
		return 0, 0, "", false
	}
	rest = s[size:]
	if marker == '`' && strings.IndexByte(rest, '`') >= 0 {
		return 0, 0, "", false
	}
	return marker, size, rest, true
}
