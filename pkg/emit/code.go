package emit

import (
	"strings"

	"github.com/go-enry/go-enry/v2"

	"github.com/jmylchreest/htmd/pkg/dom"
)

// codeBlock renders pre as a fenced block. The content is copied byte for
// byte; the fence grows past any backtick run inside it.
func (e *emitter) codeBlock(pre *dom.Element) string {
	content := preText(pre)

	var lang string
	if e.fenceInfo {
		lang = e.codeLanguage(pre, content)
	}

	n := longestRun(content, '`')
	if n < 3 {
		n = 2
	}
	fence := strings.Repeat("`", n+1)

	var sb strings.Builder
	sb.WriteString(fence)
	sb.WriteString(lang)
	sb.WriteByte('\n')
	if content != "" {
		sb.WriteString(content)
		if !strings.HasSuffix(content, "\n") {
			sb.WriteByte('\n')
		}
	}
	sb.WriteString(fence)
	return sb.String()
}

// preText is the literal text of a pre element, with <br> as a newline.
func preText(n dom.Node) string {
	var sb strings.Builder
	var walk func(dom.Node)
	walk = func(n dom.Node) {
		switch n := n.(type) {
		case *dom.Text:
			sb.WriteString(n.Content)
		case *dom.Element:
			if n.Tag == "br" {
				sb.WriteByte('\n')
				return
			}
			for _, c := range n.Children {
				walk(c)
			}
		}
	}
	walk(n)
	return sb.String()
}

func (e *emitter) codeLanguage(pre *dom.Element, content string) string {
	if lang := classLanguage(pre); lang != "" {
		return lang
	}
	for _, c := range pre.Children {
		if code, ok := c.(*dom.Element); ok && code.Tag == "code" {
			if lang := classLanguage(code); lang != "" {
				return lang
			}
		}
	}
	if e.style.DetectLanguage {
		return detectLanguage(content)
	}
	return ""
}

func classLanguage(el *dom.Element) string {
	for _, cls := range el.Classes() {
		for _, prefix := range []string{"language-", "lang-"} {
			if rest, ok := strings.CutPrefix(cls, prefix); ok {
				if lang := infoString(rest); lang != "" {
					return lang
				}
			}
		}
	}
	return ""
}

// infoString keeps the characters that are safe in a fence info string.
func infoString(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == '+', r == '#', r == '-', r == '_', r == '.':
			return r
		}
		return -1
	}, s)
}

var classifierCandidates = []string{
	"Go", "Python", "Shell", "JavaScript", "TypeScript", "Ruby", "Rust",
	"Java", "C", "C++", "SQL", "JSON", "YAML", "HTML", "CSS",
}

var languageAliases = map[string]string{
	"Shell": "sh",
	"C++":   "cpp",
	"C#":    "csharp",
}

// detectLanguage guesses the language of unlabelled code. Cheap
// structural checks run before the shebang lookup and the classifier.
func detectLanguage(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return ""
	}

	lower := strings.ToLower(trimmed)
	switch {
	case strings.HasPrefix(trimmed, "package "):
		return "go"
	case strings.HasPrefix(lower, "<!doctype html"), strings.HasPrefix(lower, "<html"):
		return "html"
	case (strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")) && strings.Contains(trimmed, `"`):
		return "json"
	}

	data := []byte(trimmed)
	if lang, safe := enry.GetLanguageByShebang(data); safe {
		return alias(lang)
	}

	if strings.Count(trimmed, "\n") < 2 {
		return ""
	}
	if lang, _ := enry.GetLanguageByClassifier(data, classifierCandidates); lang != "" {
		return alias(lang)
	}
	return ""
}

func alias(lang string) string {
	if a, ok := languageAliases[lang]; ok {
		return a
	}
	return infoString(strings.ReplaceAll(lang, " ", "-"))
}
