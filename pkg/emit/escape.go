package emit

import (
	"regexp"
	"strings"
)

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"<", "&lt;",
)

// entityLike matches text a Markdown reader would decode as a character
// reference.
var entityLike = regexp.MustCompile(`&(?:#[0-9]{1,7}|#[xX][0-9a-fA-F]{1,6}|[A-Za-z][A-Za-z0-9]{0,31});`)

// escapeText neutralizes characters that Markdown would read as syntax.
// A literal "&lt;" keeps its ampersand escaped so it stays distinct from
// the "&lt;" written for a real "<".
func escapeText(s string) string {
	if !strings.Contains(s, "&") {
		return textEscaper.Replace(s)
	}
	var sb strings.Builder
	last := 0
	for _, m := range entityLike.FindAllStringIndex(s, -1) {
		sb.WriteString(textEscaper.Replace(s[last:m[0]]))
		sb.WriteByte('\\')
		sb.WriteString(s[m[0]:m[1]])
		last = m[1]
	}
	sb.WriteString(textEscaper.Replace(s[last:]))
	return sb.String()
}

var destEscaper = strings.NewReplacer(
	" ", "%20",
	"(", "%28",
	")", "%29",
	"<", "%3C",
	">", "%3E",
	"\n", "",
	"\r", "",
	"\t", "",
)

// destination formats a link or image target so it never needs angle
// brackets.
func destination(href string) string {
	return destEscaper.Replace(strings.TrimSpace(href))
}

// escapeLineStarts escapes characters that would open a block construct
// when they begin a line of paragraph text.
func escapeLineStarts(s string) string {
	if !strings.Contains(s, "\n") {
		return escapeLineStart(s)
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = escapeLineStart(line)
	}
	return strings.Join(lines, "\n")
}

func escapeLineStart(line string) string {
	if line == "" {
		return line
	}
	switch line[0] {
	case '#', '>', '+', '-', '=', '|':
		return `\` + line
	}
	if strings.HasPrefix(line, "~~~") {
		return `\` + line
	}

	i := 0
	for i < len(line) && i < 9 && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i > 0 && i < len(line) && (line[i] == '.' || line[i] == ')') &&
		(i+1 == len(line) || line[i+1] == ' ') {
		return line[:i] + `\` + line[i:]
	}
	return line
}

// codeSpan wraps s in a backtick run longer than any run it contains.
func codeSpan(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	if strings.TrimSpace(s) == "" {
		return ""
	}
	fence := strings.Repeat("`", longestRun(s, '`')+1)
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") {
		return fence + " " + s + " " + fence
	}
	return fence + s + fence
}

func longestRun(s string, c byte) int {
	longest, run := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	return longest
}
