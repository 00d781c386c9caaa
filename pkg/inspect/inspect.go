// Package inspect parses produced Markdown back with goldmark and reports
// its structure. It is used for conversion reports and to verify output.
package inspect

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/jmylchreest/htmd/pkg/sanitize"
)

// Heading is one heading in document order.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Link is an inline link or an autolink.
type Link struct {
	Destination string `json:"destination"`
	Title       string `json:"title,omitempty"`
	Text        string `json:"text"`
	External    bool   `json:"external"`
	Autolink    bool   `json:"autolink,omitempty"`
}

// Image is an inline image.
type Image struct {
	Destination string `json:"destination"`
	Alt         string `json:"alt"`
}

// CodeBlock is a fenced or indented code block.
type CodeBlock struct {
	Language string `json:"language,omitempty"`
	Fenced   bool   `json:"fenced"`
	Content  string `json:"-"`
	Lines    int    `json:"lines"`
}

// Summary describes the structure of a Markdown document.
type Summary struct {
	Headings       []Heading   `json:"headings,omitempty"`
	Links          []Link      `json:"links,omitempty"`
	Images         []Image     `json:"images,omitempty"`
	CodeBlocks     []CodeBlock `json:"code_blocks,omitempty"`
	Tables         int         `json:"tables"`
	Lists          int         `json:"lists"`
	Blockquotes    int         `json:"blockquotes"`
	Strikethroughs int         `json:"strikethroughs"`
	RawHTML        int         `json:"raw_html"`
	Words          int         `json:"words"`
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Summarize parses src as GitHub-flavored Markdown.
func Summarize(src []byte) *Summary {
	root := markdown.Parser().Parse(text.NewReader(src))
	s := &Summary{}

	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Heading:
			s.Headings = append(s.Headings, Heading{Level: n.Level, Text: nodeText(n, src)})
		case *ast.Link:
			dest := string(n.Destination)
			s.Links = append(s.Links, Link{
				Destination: dest,
				Title:       string(n.Title),
				Text:        nodeText(n, src),
				External:    sanitize.IsExternal(dest),
			})
		case *ast.AutoLink:
			dest := string(n.URL(src))
			s.Links = append(s.Links, Link{
				Destination: dest,
				Text:        string(n.Label(src)),
				External:    sanitize.IsExternal(dest),
				Autolink:    true,
			})
		case *ast.Image:
			s.Images = append(s.Images, Image{Destination: string(n.Destination), Alt: nodeText(n, src)})
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			cb := blockContent(n, src)
			cb.Fenced = true
			cb.Language = string(n.Language(src))
			s.CodeBlocks = append(s.CodeBlocks, cb)
		case *ast.CodeBlock:
			s.CodeBlocks = append(s.CodeBlocks, blockContent(n, src))
		case *east.Table:
			s.Tables++
		case *ast.List:
			s.Lists++
		case *ast.Blockquote:
			s.Blockquotes++
		case *east.Strikethrough:
			s.Strikethroughs++
		case *ast.HTMLBlock, *ast.RawHTML:
			s.RawHTML++
		case *ast.Text:
			s.Words += len(strings.Fields(string(n.Segment.Value(src))))
		}
		return ast.WalkContinue, nil
	})
	return s
}

// ExternalLinks returns the links that leave the document's origin.
func (s *Summary) ExternalLinks() []Link {
	var out []Link
	for _, l := range s.Links {
		if l.External {
			out = append(out, l)
		}
	}
	return out
}

func nodeText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *ast.Text:
			buf.Write(c.Segment.Value(src))
			if c.SoftLineBreak() || c.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(c.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}

func blockContent(n ast.Node, src []byte) CodeBlock {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return CodeBlock{Content: buf.String(), Lines: lines.Len()}
}
