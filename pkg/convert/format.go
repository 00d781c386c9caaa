package convert

import (
	"bytes"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jmylchreest/htmd/pkg/dom"
)

// Format is a supported source format.
type Format int

const (
	FormatHTML Format = iota
	FormatXHTML
)

func (f Format) String() string {
	switch f {
	case FormatXHTML:
		return "xhtml"
	default:
		return "html"
	}
}

// MarshalText renders the format name in reports.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// parseFunc builds a document from raw source bytes.
type parseFunc func(r io.Reader, opts dom.ParseOptions) (*dom.Document, error)

type formatHandler struct {
	description string
	extensions  []string
	parse       parseFunc
}

// handlers maps each format to its handler. Adding a format means adding
// a Format value and an entry here.
var handlers = map[Format]formatHandler{
	FormatHTML: {
		description: "HyperText Markup Language",
		extensions:  []string{".html", ".htm"},
		parse:       dom.Parse,
	},
	FormatXHTML: {
		description: "Extensible HyperText Markup Language",
		extensions:  []string{".xhtml", ".xht"},
		parse:       parseXHTML,
	},
}

var extensionFormats = func() map[string]Format {
	m := make(map[string]Format)
	for f, h := range handlers {
		for _, ext := range h.extensions {
			m[ext] = f
		}
	}
	return m
}()

// FormatForPath maps a file extension to its Format. Paths with no or an
// unknown extension report false.
func FormatForPath(path string) (Format, bool) {
	f, ok := extensionFormats[strings.ToLower(filepath.Ext(path))]
	return f, ok
}

// Supported reports whether path has a convertible extension.
func Supported(path string) bool {
	_, ok := FormatForPath(path)
	return ok
}

// FormatInfo describes a registered format.
type FormatInfo struct {
	Format      Format   `json:"format"`
	Description string   `json:"description"`
	Extensions  []string `json:"extensions"`
}

// Formats lists the registered formats in a stable order.
func Formats() []FormatInfo {
	out := make([]FormatInfo, 0, len(handlers))
	for f, h := range handlers {
		out = append(out, FormatInfo{Format: f, Description: h.description, Extensions: h.extensions})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Format < out[j].Format })
	return out
}

// SupportedExtensions lists every registered extension.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extensionFormats))
	for ext := range extensionFormats {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// parseXHTML drops the XML prolog, which the HTML parser would otherwise
// keep as a bogus comment, and parses the rest as HTML.
func parseXHTML(r io.Reader, opts dom.ParseOptions) (*dom.Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if bytes.HasPrefix(trimmed, []byte("<?xml")) {
		if end := bytes.Index(trimmed, []byte("?>")); end >= 0 {
			raw = trimmed[end+2:]
		}
	}
	return dom.Parse(bytes.NewReader(raw), opts)
}
