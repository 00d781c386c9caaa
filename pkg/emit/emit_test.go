package emit

import (
	"strings"
	"testing"

	"github.com/jmylchreest/htmd/pkg/dom"
	"github.com/jmylchreest/htmd/pkg/style"
)

func emitHTML(t *testing.T, input string, mutate func(*style.Style)) string {
	t.Helper()
	doc, err := dom.ParseString(input, dom.ParseOptions{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	st := style.Default()
	if mutate != nil {
		mutate(&st)
	}
	return Markdown(doc, st)
}

func TestEmit(t *testing.T) {
	strict := func(s *style.Style) { s.Flavor = style.FlavorStrict }
	commonmark := func(s *style.Style) { s.Flavor = style.FlavorCommonMark }
	preserve := func(s *style.Style) {
		s.PreserveHTML = true
		s.StripComments = false
	}

	tests := []struct {
		name   string
		input  string
		mutate func(*style.Style)
		want   string
	}{
		{
			name:  "heading and paragraph",
			input: `<h1>Title</h1><p>Hello <b>world</b></p>`,
			want:  "# Title\n\nHello **world**",
		},
		{
			name:   "setext headings fall back to atx past level two",
			input:  `<h1>Title</h1><h2>Sub</h2><h3>Three</h3>`,
			mutate: func(s *style.Style) { s.Heading = style.HeadingSetext },
			want:   "Title\n=====\n\nSub\n---\n\n### Three",
		},
		{
			name:   "underscore emphasis",
			input:  `<p><em>a</em> and <strong>b</strong></p>`,
			mutate: func(s *style.Style) { s.Emphasis = style.EmphasisUnderscore },
			want:   "_a_ and __b__",
		},
		{
			name:  "emphasis keeps edge whitespace outside markers",
			input: `<p>x<b> y </b>z</p>`,
			want:  "x **y** z",
		},
		{
			name:  "empty emphasis emits nothing",
			input: `<p>a<i> </i>b</p>`,
			want:  "a b",
		},
		{
			name:  "lists",
			input: "<ul>\n<li>one</li>\n<li>two<ul><li>nested</li></ul></li>\n</ul><ol><li>a</li><li>b</li></ol>",
			want:  "- one\n- two\n  - nested\n\n1. a\n2. b",
		},
		{
			name:   "bullet marker",
			input:  `<ul><li>x</li></ul>`,
			mutate: func(s *style.Style) { s.Bullet = "*" },
			want:   "* x",
		},
		{
			name:  "list item paragraphs stay tight",
			input: `<ul><li><p>para</p></li><li></li></ul>`,
			want:  "- para\n-",
		},
		{
			name:  "link with title",
			input: `<p><a href="https://x.test/a b" title="T">site</a></p>`,
			want:  `[site](https://x.test/a%20b "T")`,
		},
		{
			name:  "link without href is bare text",
			input: `<a>x</a>`,
			want:  "x",
		},
		{
			name:  "link without text uses href",
			input: `<a href="/x_y"></a>`,
			want:  `[/x\_y](/x_y)`,
		},
		{
			name:  "image",
			input: `<img src="/a.png" alt="A [b]">`,
			want:  `![A \[b\]](/a.png)`,
		},
		{
			name:  "image without src keeps alt text",
			input: `<p>see <img alt="pic"> here</p>`,
			want:  "see pic here",
		},
		{
			name:  "fenced code keeps content verbatim",
			input: "<pre><code class=\"language-go\">func main() {\n\tx := a*b_c\n}</code></pre>",
			want:  "```go\nfunc main() {\n\tx := a*b_c\n}\n```",
		},
		{
			name:   "strict fences carry no info string",
			input:  "<pre class=\"lang-py\">x = 1\n</pre>",
			mutate: strict,
			want:   "```\nx = 1\n```",
		},
		{
			name:  "fence longer than inner backtick run",
			input: "<pre>a ``` b</pre>",
			want:  "````\na ``` b\n````",
		},
		{
			name:  "inline code with backtick",
			input: "<p>use <code>a`b</code> and <code>*x*</code></p>",
			want:  "use ``a`b`` and `*x*`",
		},
		{
			name:  "table",
			input: `<table><tr><th>A</th><th>B|C</th></tr><tr><td>1</td></tr></table>`,
			want:  "| A | B\\|C |\n| --- | --- |\n| 1 |  |",
		},
		{
			name:  "colspan pads the row",
			input: `<table><tr><th colspan="2">A</th></tr><tr><td>1</td><td>2</td></tr></table>`,
			want:  "| A |  |\n| --- | --- |\n| 1 | 2 |",
		},
		{
			name:  "zero and negative colspan are one cell",
			input: `<table><tr><th colspan="0">A</th><th colspan="-3">B</th></tr><tr><td>1</td><td>2</td></tr></table>`,
			want:  "| A | B |\n| --- | --- |\n| 1 | 2 |",
		},
		{
			name:   "strict flavor renders rows as blocks",
			input:  `<table><tr><th>A</th><th>B</th></tr><tr><td>1</td><td>2</td></tr></table>`,
			mutate: strict,
			want:   "A B\n\n1 2",
		},
		{
			name:  "hard break and rule",
			input: `<p>a<br>b<br></p><hr><p>c</p>`,
			want:  "a\\\nb\n\n---\n\nc",
		},
		{
			name:   "strict hard break",
			input:  `<p>a<br>b</p>`,
			mutate: strict,
			want:   "a  \nb",
		},
		{
			name:  "text escaping",
			input: `<p>2*3 [x] _y_ \ &lt;tag&gt;</p>`,
			want:  `2\*3 \[x\] \_y\_ \\ &lt;tag>`,
		},
		{
			name:  "literal character references stay literal",
			input: `<p>Use &amp;lt;div&amp;gt; and a &lt; b</p>`,
			want:  `Use \&lt;div\&gt; and a &lt; b`,
		},
		{
			name:  "numeric references and bare ampersands",
			input: `<p>AT&amp;T &amp; &amp;#60; &amp;#x3C; &amp;nbsp</p>`,
			want:  `AT&T & \&#60; \&#x3C; &nbsp`,
		},
		{
			name:  "line starts that would open blocks",
			input: `<p># not heading</p><p>1. not list</p><p>- nor this</p>`,
			want:  "\\# not heading\n\n1\\. not list\n\n\\- nor this",
		},
		{
			name:  "blockquote",
			input: `<blockquote><p>a</p><p>b</p></blockquote>`,
			want:  "> a\n>\n> b",
		},
		{
			name:  "script never emitted",
			input: `<div><script>x()</script>ok<style>p{}</style></div>`,
			want:  "ok",
		},
		{
			name:  "unknown elements are transparent",
			input: `<custom><p>a</p><p>b</p></custom><span>c</span>`,
			want:  "a\n\nb\n\nc",
		},
		{
			name:   "passthrough sanitizes attributes",
			input:  `<p>a <span class="x" onclick="y()">b</span></p>`,
			mutate: preserve,
			want:   `a <span class="x">b</span>`,
		},
		{
			name:   "strict disables passthrough",
			input:  `<p>a <span class="x">b</span></p>`,
			mutate: func(s *style.Style) { preserve(s); strict(s) },
			want:   "a b",
		},
		{
			name:   "comment passthrough",
			input:  `<p>a<!--c-->b</p>`,
			mutate: preserve,
			want:   "a<!--c-->b",
		},
		{
			name:  "comments dropped without passthrough",
			input: `<p>a<!--c-->b</p>`,
			want:  "ab",
		},
		{
			name:  "strikethrough",
			input: `<p><del>old</del> new</p>`,
			want:  "~~old~~ new",
		},
		{
			name:   "no strikethrough in commonmark",
			input:  `<p><del>old</del> new</p>`,
			mutate: commonmark,
			want:   "old new",
		},
		{
			name:  "definition list",
			input: `<dl><dt>Term</dt><dd>Def</dd></dl>`,
			want:  "**Term**\n: Def",
		},
		{
			name:  "empty heading",
			input: `<h2> </h2><p>x</p>`,
			want:  "x",
		},
		{
			name:  "empty document",
			input: ``,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := emitHTML(t, tt.input, tt.mutate); got != tt.want {
				t.Errorf("Emit() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestEmit_NestedOrderedList(t *testing.T) {
	got := emitHTML(t, `<ol><li>a<ol><li>x</li><li>y</li></ol></li><li>b</li></ol>`, nil)
	want := "1. a\n  1. x\n  2. y\n2. b"
	if got != want {
		t.Errorf("Emit() = %q, want %q", got, want)
	}
}

func TestEmit_QuoteInsideList(t *testing.T) {
	got := emitHTML(t, `<ul><li>intro<blockquote>q</blockquote></li></ul>`, nil)
	want := "- intro\n  > q"
	if got != want {
		t.Errorf("Emit() = %q, want %q", got, want)
	}
}

func TestEmit_CodeLanguageDetection(t *testing.T) {
	got := emitHTML(t, "<pre>package main\n\nfunc main() {}\n</pre>", func(s *style.Style) {
		s.DetectLanguage = true
	})
	if !strings.HasPrefix(got, "```go\n") {
		t.Errorf("Emit() = %q, want go fence", got)
	}
}

func TestEmit_Stream(t *testing.T) {
	doc, err := dom.ParseString(`<p>a</p><p>b</p>`, dom.ParseOptions{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	stream := Emit(doc, style.Default())

	var texts []string
	boundaries := 0
	for _, tok := range stream {
		switch tok.Kind {
		case TokenText:
			texts = append(texts, tok.Text)
		case TokenBoundary:
			boundaries++
		}
	}
	if strings.Join(texts, "|") != "a|b" {
		t.Errorf("texts = %v", texts)
	}
	if boundaries != 4 {
		t.Errorf("boundaries = %d, want 4", boundaries)
	}
	if stream.String() != "a\n\nb" {
		t.Errorf("String() = %q", stream.String())
	}
}

func TestCodeSpan(t *testing.T) {
	tests := map[string]string{
		"x":      "`x`",
		"a`b":    "``a`b``",
		"`tick":  "`` `tick ``",
		"a``b":   "```a``b```",
		"   ":    "",
		"l1\nl2": "`l1 l2`",
	}
	for in, want := range tests {
		if got := codeSpan(in); got != want {
			t.Errorf("codeSpan(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{"package foo\n", "go"},
		{`{"a": 1}`, "json"},
		{"<!DOCTYPE html><html></html>", "html"},
		{"#!/usr/bin/env python3\nprint(1)\n", "python"},
		{"", ""},
		{"one line", ""},
	}
	for _, tt := range tests {
		if got := detectLanguage(tt.content); got != tt.want {
			t.Errorf("detectLanguage(%q) = %q, want %q", tt.content, got, tt.want)
		}
	}
}
