package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/htmd/pkg/inspect"
	"github.com/jmylchreest/htmd/pkg/sanitize"
	"github.com/jmylchreest/htmd/pkg/style"
)

func convertString(t *testing.T, src string, cfg Config) string {
	t.Helper()
	res, err := Convert([]byte(src), "doc.html", cfg)
	require.NoError(t, err)
	return res.Markdown
}

func TestConvert_Scenarios(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"heading and strong", `<h1>Title</h1><p>Hello <b>world</b></p>`, "# Title\n\nHello **world**"},
		{"script removed", `<script>alert(1)</script><p>safe</p>`, "safe"},
		{"script in body removed", `<p>safe</p><script>alert(1)</script>`, "safe"},
		{"javascript href stripped", `<a href="javascript:alert(1)">x</a>`, "x"},
		{"unknown container unwrapped", `<section><article><p>kept</p></article></section>`, "kept"},
		{"comment stripped", `<p>a<!-- hidden --> b</p>`, "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, convertString(t, tt.in, DefaultConfig()))
		})
	}
}

func TestConvert_Result(t *testing.T) {
	src := `<html><head><title>Doc</title></head><body><h1>Title</h1><p>Hello <b>world</b></p><script>x()</script></body></html>`
	res, err := Convert([]byte(src), "in/doc.htm", DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, "Doc", res.Title)
	assert.Equal(t, "in/doc.htm", res.Source)
	assert.Equal(t, FormatHTML, res.Format)
	assert.Equal(t, len(res.Markdown), res.Bytes)
	assert.Equal(t, len(src), res.InputBytes)
	assert.Equal(t, 1, res.ElementsRemoved)
	require.NotNil(t, res.Stats)
	require.NotNil(t, res.Stats.Sanitize)
	assert.Equal(t, 1, res.Stats.Sanitize.ElementsRemoved["script"])
	assert.Contains(t, res.Stats.String(), "Removed by tag: script=1")
}

func TestConvert_LineWrapping(t *testing.T) {
	words := make([]string, 200)
	for i := range words {
		words[i] = "lorem"
	}
	words[57] = strings.Repeat("x", 95)

	cfg := DefaultConfig()
	cfg.Style.LineLength = 80
	md := convertString(t, "<p>"+strings.Join(words, " ")+"</p>", cfg)

	lines := strings.Split(md, "\n")
	assert.Greater(t, len(lines), 1)
	for _, line := range lines {
		if len(line) > 80 {
			assert.NotContains(t, line, " ", "only a single unbreakable word may exceed the limit")
		}
	}
	assert.Equal(t, strings.Join(words, " "), strings.Join(lines, " "))
}

func TestConvert_CodeSpanKeepsLaterTextWrapped(t *testing.T) {
	src := "<p><code>a``b</code> is code</p><p>" + strings.Repeat("word ", 40) + "</p>"
	md := convertString(t, src, DefaultConfig())

	lines := strings.Split(md, "\n")
	assert.Equal(t, "```a``b``` is code", lines[0])
	assert.Greater(t, len(lines), 3)
	for _, line := range lines {
		assert.LessOrEqual(t, len(line), 80, "line %q", line)
	}

	sum := inspect.Summarize([]byte(md))
	assert.Empty(t, sum.CodeBlocks)
}

func TestConvert_StrictHardBreak(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Style.Flavor = style.FlavorStrict
	assert.Equal(t, "line one  \nline two", convertString(t, "<p>line one<br>line two</p>", cfg))
}

func TestConvert_LiteralCharacterReferences(t *testing.T) {
	md := convertString(t, "<p>Use &amp;lt;div&amp;gt; and a &lt; b</p>", DefaultConfig())
	assert.Equal(t, `Use \&lt;div\&gt; and a &lt; b`, md)
}

func TestConvert_FencedCodeIsVerbatim(t *testing.T) {
	code := "func main() {\n\tx := 1   \n\n\n\n    long := \"" + strings.Repeat("word ", 40) + "\"\n# not a heading\n}"
	src := "<p>intro</p><pre><code>" + code + "</code></pre><p>outro</p>"

	for _, width := range []int{0, 10, 40, 80, 200} {
		cfg := DefaultConfig()
		cfg.Style.LineLength = width
		md := convertString(t, src, cfg)

		start := strings.Index(md, "```\n")
		require.GreaterOrEqual(t, start, 0, "width %d: no fence in %q", width, md)
		body := md[start+4:]
		end := strings.Index(body, "\n```")
		require.GreaterOrEqual(t, end, 0, "width %d: unterminated fence", width)
		assert.Equal(t, code, body[:end], "width %d", width)

		sum := inspect.Summarize([]byte(md))
		require.Len(t, sum.CodeBlocks, 1)
		assert.Equal(t, code+"\n", sum.CodeBlocks[0].Content, "width %d", width)
	}
}

func TestConvert_NoExternalLinks(t *testing.T) {
	cfg := DefaultConfig()
	p := *cfg.Policy
	p.AllowExternalLinks = false
	cfg.Policy = &p

	src := `<p>See <a href="https://evil.example">one</a>, <a href="HTTP://x.example/a">two</a>,
<a href="ftp://files.example">three</a>, <a href="//cdn.example/x">four</a> and <a href="/local">home</a>.</p>
<ul><li><a href="http://deep.example"><b>nested</b></a></li></ul>`
	md := convertString(t, src, cfg)

	sum := inspect.Summarize([]byte(md))
	assert.Empty(t, sum.ExternalLinks(), "markdown: %s", md)
	require.Len(t, sum.Links, 1)
	assert.Equal(t, "/local", sum.Links[0].Destination)
	for _, gone := range []string{"one", "two", "three", "four", "nested"} {
		assert.NotContains(t, md, gone)
	}
}

func TestConvert_Errors(t *testing.T) {
	noPolicy := DefaultConfig()
	noPolicy.Policy = nil

	small := DefaultConfig()
	small.MaxInputSize = 8

	tests := []struct {
		name     string
		raw      []byte
		path     string
		cfg      Config
		kind     Kind
		sentinel error
	}{
		{"parent segment", []byte("<p>x</p>"), "../etc/passwd.html", DefaultConfig(), KindUnsafePath, ErrUnsafePath},
		{"windows parent segment", []byte("<p>x</p>"), `docs\..\..\x.html`, DefaultConfig(), KindUnsafePath, ErrUnsafePath},
		{"nul byte", []byte("<p>x</p>"), "a\x00.html", DefaultConfig(), KindUnsafePath, ErrUnsafePath},
		{"too large", []byte("<p>0123456789</p>"), "big.html", small, KindInputTooLarge, ErrInputTooLarge},
		{"invalid utf8", []byte("<p>\xff\xfe</p>"), "bad.html", DefaultConfig(), KindInvalidEncoding, ErrInvalidEncoding},
		{"no policy", []byte("<p>x</p>"), "doc.html", noPolicy, KindSanitizationUnavailable, ErrSanitizationUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Convert(tt.raw, tt.path, tt.cfg)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.kind, KindOf(err))

			var ce *Error
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.path, ce.Path)
		})
	}
}

func TestConvert_ErrorOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxInputSize = 4
	cfg.Policy = nil

	// Every check fails here; the path is reported first.
	_, err := Convert([]byte("\xff\xff\xff\xff\xff"), "../x.html", cfg)
	assert.Equal(t, KindUnsafePath, KindOf(err))

	_, err = Convert([]byte("\xff\xff\xff\xff\xff"), "x.html", cfg)
	assert.Equal(t, KindInputTooLarge, KindOf(err))

	cfg.MaxInputSize = 0
	_, err = Convert([]byte("\xff\xff\xff\xff\xff"), "x.html", cfg)
	assert.Equal(t, KindInvalidEncoding, KindOf(err))
}

func TestConvert_SanitizeDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Policy = nil
	cfg.SanitizeHTML = false

	res, err := Convert([]byte(`<p>a <a href="https://x.example">b</a></p>`), "", cfg)
	require.NoError(t, err)
	assert.Equal(t, "a [b](https://x.example)", res.Markdown)
	assert.Nil(t, res.Stats.Sanitize)
	assert.Zero(t, res.ElementsRemoved)
}

func TestConvert_RemoveSelectors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RemoveSelectors = []string{"nav", ".ad"}

	res, err := Convert([]byte(`<nav><p>menu</p></nav><p>body</p><div class="ad">buy</div>`), "", cfg)
	require.NoError(t, err)
	assert.Equal(t, "body", res.Markdown)
	assert.Equal(t, map[string]int{"nav": 1, ".ad": 1}, res.Stats.Pruned)
}

func TestConvert_XHTML(t *testing.T) {
	src := `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml"><head><title>X</title></head>
<body><p>one<br/>two</p></body></html>`
	res, err := Convert([]byte(src), "page.xhtml", DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, FormatXHTML, res.Format)
	assert.Equal(t, "X", res.Title)
	assert.Equal(t, "one\\\ntwo", res.Markdown)
}

func TestConvert_Flavors(t *testing.T) {
	src := `<table><tr><th>a</th><th>b</th></tr><tr><td>1</td><td>2</td></tr></table><p><del>old</del></p>`

	// del is outside the stock allow-list and would be unwrapped.
	policy := sanitize.DefaultPolicy()
	policy.AllowedTags = append(policy.AllowedTags, "del")

	github := DefaultConfig()
	github.Policy = policy
	md := convertString(t, src, github)
	assert.Contains(t, md, "| a | b |")
	assert.Contains(t, md, "~~old~~")

	strict := DefaultConfig()
	strict.Policy = policy
	strict.Style.Flavor = style.FlavorStrict
	md = convertString(t, src, strict)
	assert.NotContains(t, md, "|")
	assert.NotContains(t, md, "~~")
	assert.Contains(t, md, "old")
}

func TestConvert_LibraryEngine(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Style.Engine = style.EngineLibrary

	md := convertString(t, `<h1>Title</h1><p>Hello <b>world</b></p><script>alert(1)</script>`, cfg)
	assert.Equal(t, "# Title\n\nHello **world**", md)

	md = convertString(t, `<a href="javascript:alert(1)">x</a>`, cfg)
	assert.Equal(t, "x", md)
}

func TestNew_Validates(t *testing.T) {
	bad := DefaultConfig()
	bad.Style.Flavor = "markdown-extra"
	_, err := New(bad)
	assert.Error(t, err)

	bad = DefaultConfig()
	bad.RemoveSelectors = []string{"div["}
	_, err = New(bad)
	assert.Error(t, err)

	p := sanitize.DefaultPolicy()
	p.AllowedSchemes = []string{"ht tp"}
	bad = DefaultConfig()
	bad.Policy = p
	_, err = New(bad)
	assert.Error(t, err)

	c, err := New(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxInputSize, c.Config().MaxInputSize)
}

func TestConverter_ConcurrentUse(t *testing.T) {
	c, err := New(DefaultConfig())
	require.NoError(t, err)

	done := make(chan string, 16)
	for range 16 {
		go func() {
			res, err := c.Convert([]byte(`<h2>x</h2><ul><li>a</li><li>b</li></ul>`), "")
			if err != nil {
				done <- err.Error()
				return
			}
			done <- res.Markdown
		}()
	}
	for range 16 {
		assert.Equal(t, "## x\n\n- a\n- b", <-done)
	}
}

func TestConverter_ConvertFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(path, []byte(`<h1>File</h1>`), 0o644))

	c, err := New(DefaultConfig())
	require.NoError(t, err)

	res, err := c.ConvertFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "# File", res.Markdown)

	_, err = c.ConvertFile(context.Background(), filepath.Join(dir, "missing.html"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = c.ConvertFile(context.Background(), dir+"/../x.html")
	assert.ErrorIs(t, err, ErrUnsafePath)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.ConvertFile(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConverter_ConvertFileChecksSizeBeforeReading(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxInputSize = 16
	c, err := New(cfg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "big.html")
	require.NoError(t, os.WriteFile(path, []byte("<p>"+strings.Repeat("a", 64)+"</p>"), 0o644))

	_, err = c.ConvertFile(context.Background(), path)
	assert.ErrorIs(t, err, ErrInputTooLarge)
}

func TestConverter_Sanitize(t *testing.T) {
	c, err := New(DefaultConfig())
	require.NoError(t, err)

	doc, stats, err := c.Sanitize([]byte(`<p onclick="x()">hi<script>bad()</script></p>`), "")
	require.NoError(t, err)
	require.Len(t, doc.Children, 1)
	assert.Equal(t, 1, stats.Sanitize.AttributesRemoved)
	assert.Equal(t, 1, stats.Sanitize.TotalElementsRemoved())
}

func TestCheckPath(t *testing.T) {
	for _, ok := range []string{"", "a.html", "dir/a.html", "/abs/a..b.html", "..foo/x.html", `c:\docs\a.html`} {
		assert.NoError(t, CheckPath(ok), ok)
	}
	for _, bad := range []string{"..", "../a", "a/../b", `a\..\b`, "a/..", "x\x00y"} {
		assert.ErrorIs(t, CheckPath(bad), ErrUnsafePath, bad)
	}
}

func TestFormats(t *testing.T) {
	f, ok := FormatForPath("A.HTM")
	assert.True(t, ok)
	assert.Equal(t, FormatHTML, f)

	f, ok = FormatForPath("x.xht")
	assert.True(t, ok)
	assert.Equal(t, FormatXHTML, f)

	_, ok = FormatForPath("x.md")
	assert.False(t, ok)
	assert.False(t, Supported("README"))

	assert.Equal(t, []string{".htm", ".html", ".xht", ".xhtml"}, SupportedExtensions())
	infos := Formats()
	require.Len(t, infos, 2)
	assert.Equal(t, FormatHTML, infos[0].Format)
	assert.Equal(t, "xhtml", infos[1].Format.String())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("other")))
	assert.Equal(t, KindEmissionFailure, KindOf(ErrEmissionFailure))
	assert.Equal(t, "InputTooLarge", KindInputTooLarge.String())

	err := newError(KindParseFailure, "x.html", "", errors.New("boom"))
	assert.Equal(t, "convert x.html: parse failure: boom", err.Error())
}
