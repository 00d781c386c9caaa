package postprocess

import (
	"strings"
	"unicode/utf8"
)

// Wrap re-flows lines longer than width at word boundaries. Fenced code,
// indented code, headings and table rows are left alone, and a word is
// never split even when it alone exceeds width.
func Wrap(lines []string, width int) []string {
	out := make([]string, 0, len(lines))
	var fence fenceTracker

	for i, line := range lines {
		if fence.feed(line) {
			out = append(out, line)
			continue
		}
		if utf8.RuneCountInString(line) <= width || protected(lines, i) {
			out = append(out, line)
			continue
		}
		out = append(out, wrapLine(line, width)...)
	}
	return out
}

func protected(lines []string, i int) bool {
	line := lines[i]
	if strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t") {
		return true
	}
	trimmed := strings.TrimLeft(line, " ")
	if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "|") {
		return true
	}
	// setext heading text
	return i+1 < len(lines) && isUnderline(lines[i+1])
}

func isUnderline(line string) bool {
	s := strings.TrimSpace(line)
	if s == "" {
		return false
	}
	return strings.Trim(s, "=") == "" || strings.Trim(s, "-") == ""
}

func wrapLine(line string, width int) []string {
	prefix, hang, body := splitPrefix(line)

	var trailing string
	if strings.HasSuffix(body, "  ") {
		trailing = "  "
	}

	words := strings.FieldsFunc(body, func(r rune) bool { return r == ' ' || r == '\t' })
	if len(words) == 0 {
		return []string{line}
	}

	var out []string
	cur := prefix
	curLen := utf8.RuneCountInString(prefix)
	empty := true
	// byte offset of the last word on cur, when it is not the first
	last := -1

	for _, w := range words {
		wl := utf8.RuneCountInString(w)
		if !empty && curLen+1+wl > width && !opensBlock(w) {
			out = append(out, cur)
			cur = hang + w
			curLen = utf8.RuneCountInString(hang) + wl
			last = -1
			continue
		}
		if empty {
			cur += w
			curLen += wl
			empty = false
			continue
		}
		last = len(cur) + 1
		cur += " " + w
		curLen += 1 + wl
	}

	// The break marker counts toward the width.
	if trailing != "" && curLen+len(trailing) > width && last > 0 && !opensBlock(cur[last:]) {
		out = append(out, cur[:last-1])
		cur = hang + cur[last:]
	}
	return append(out, cur+trailing)
}

// splitPrefix separates indentation, blockquote markers and a list marker
// from the line body. hang is the prefix for continuation lines.
func splitPrefix(line string) (prefix, hang, body string) {
	i := 0
	for i < len(line) && line[i] == ' ' {
		i++
	}
	prefix, hang = line[:i], line[:i]
	rest := line[i:]

	for strings.HasPrefix(rest, ">") {
		n := 1
		for n < len(rest) && rest[n] == ' ' {
			n++
		}
		prefix += rest[:n]
		hang += rest[:n]
		rest = rest[n:]
	}

	if m := listMarker(rest); m > 0 {
		prefix += rest[:m]
		hang += strings.Repeat(" ", m)
		rest = rest[m:]
	}
	return prefix, hang, rest
}

// listMarker returns the byte length of a leading list marker including
// its trailing space, or 0.
func listMarker(s string) int {
	if len(s) >= 2 && (s[0] == '-' || s[0] == '*' || s[0] == '+') && s[1] == ' ' {
		return 2
	}
	i := 0
	for i < len(s) && i < 9 && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > 0 && i+1 < len(s) && (s[i] == '.' || s[i] == ')') && s[i+1] == ' ' {
		return i + 2
	}
	return 0
}

// opensBlock reports whether w would start a block construct if it began
// a line.
func opensBlock(w string) bool {
	switch w[0] {
	case '#', '>', '|':
		return true
	case '-', '*', '+', '=':
		return strings.Trim(w, w[:1]) == ""
	}
	if strings.HasPrefix(w, "```") || strings.HasPrefix(w, "~~~") {
		return true
	}
	return listMarker(w+" ") > 0
}
