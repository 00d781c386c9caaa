// Package convert sequences input validation, parsing, sanitization,
// emission and normalization into one call.
package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/htmd/pkg/dom"
	"github.com/jmylchreest/htmd/pkg/emit"
	"github.com/jmylchreest/htmd/pkg/postprocess"
	"github.com/jmylchreest/htmd/pkg/sanitize"
	"github.com/jmylchreest/htmd/pkg/style"
)

// Converter runs conversions against a validated Config. It holds no
// mutable state and is safe for concurrent use.
type Converter struct {
	cfg    Config
	policy *sanitize.Policy
}

// New validates cfg once and returns a Converter for it.
func New(cfg Config) (*Converter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Converter{cfg: cfg, policy: cfg.effectivePolicy()}, nil
}

// Config returns the configuration the Converter was built with.
func (c *Converter) Config() Config {
	return c.cfg
}

// Convert converts raw with cfg. It is New followed by Converter.Convert,
// except that configuration problems surface at the stage they affect.
func Convert(raw []byte, pathHint string, cfg Config) (*Result, error) {
	c := &Converter{cfg: cfg, policy: cfg.effectivePolicy()}
	return c.Convert(raw, pathHint)
}

// Convert turns raw HTML into normalized Markdown. pathHint is only used
// for the path-safety check, format selection and error context; it is
// never opened.
func (c *Converter) Convert(raw []byte, pathHint string) (*Result, error) {
	doc, format, stats, err := c.prepare(raw, pathHint)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	text, err := c.emit(doc, pathHint)
	stats.Timings.Emit = time.Since(start)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	md := postprocess.Normalize(text, c.cfg.Style)
	stats.Timings.Normalize = time.Since(start)
	stats.OutputBytes = len(md)

	res := &Result{
		Markdown:   md,
		Bytes:      len(md),
		InputBytes: len(raw),
		Title:      doc.Title,
		Source:     pathHint,
		Format:     format,
		Stats:      stats,
	}
	if stats.Sanitize != nil {
		res.ElementsRemoved = stats.Sanitize.TotalElementsRemoved()
	}
	return res, nil
}

// Sanitize runs the stages up to and including sanitization and returns
// the resulting tree.
func (c *Converter) Sanitize(raw []byte, pathHint string) (*dom.Document, *Stats, error) {
	doc, _, stats, err := c.prepare(raw, pathHint)
	if err != nil {
		return nil, nil, err
	}
	return doc, stats, nil
}

// ConvertFile reads and converts the file at path. The path is checked
// before the file is touched and the size before it is read.
func (c *Converter) ConvertFile(ctx context.Context, path string) (*Result, error) {
	if err := CheckPath(path); err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if err := c.checkSize(info.Size(), path); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return c.Convert(raw, path)
}

// prepare runs path, size and encoding checks, then parse and sanitize.
func (c *Converter) prepare(raw []byte, pathHint string) (*dom.Document, Format, *Stats, error) {
	if err := CheckPath(pathHint); err != nil {
		return nil, 0, nil, err
	}
	if err := c.checkSize(int64(len(raw)), pathHint); err != nil {
		return nil, 0, nil, err
	}
	if !utf8.Valid(raw) {
		return nil, 0, nil, newError(KindInvalidEncoding, pathHint,
			fmt.Sprintf("invalid UTF-8 at byte %d", invalidOffset(raw)), nil)
	}

	stats := &Stats{InputBytes: len(raw)}
	format, ok := FormatForPath(pathHint)
	if !ok {
		format = FormatHTML
	}

	start := time.Now()
	doc, err := handlers[format].parse(bytes.NewReader(raw), dom.ParseOptions{RemoveSelectors: c.cfg.RemoveSelectors})
	stats.Timings.Parse = time.Since(start)
	if err != nil {
		return nil, 0, nil, newError(KindParseFailure, pathHint, "", err)
	}
	stats.Pruned = doc.Pruned

	if c.cfg.SanitizeHTML {
		if c.policy == nil {
			return nil, 0, nil, newError(KindSanitizationUnavailable, pathHint, "sanitize_html is set but no security policy is configured", nil)
		}
		start = time.Now()
		doc, stats.Sanitize = sanitize.Sanitize(doc, c.policy)
		stats.Timings.Sanitize = time.Since(start)
	}
	return doc, format, stats, nil
}

func (c *Converter) checkSize(size int64, pathHint string) error {
	if limit := c.cfg.MaxInputSize; limit > 0 && size > limit {
		return newError(KindInputTooLarge, pathHint,
			fmt.Sprintf("%s exceeds limit of %s", humanize.Bytes(uint64(size)), humanize.Bytes(uint64(limit))), nil)
	}
	return nil
}

// emit renders doc with the configured engine. The native emitter is
// total; a panic from either engine is reported as an emission failure.
func (c *Converter) emit(doc *dom.Document, pathHint string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newError(KindEmissionFailure, pathHint, fmt.Sprint(r), nil)
		}
	}()

	if c.cfg.Style.Engine == style.EngineLibrary {
		text, err = libraryMarkdown(doc, c.cfg.Style)
		if err != nil {
			return "", newError(KindEmissionFailure, pathHint, "library engine", err)
		}
		return text, nil
	}
	return emit.Markdown(doc, c.cfg.Style), nil
}

// CheckPath rejects paths that contain a ".." segment or a NUL byte.
// Both separators are treated as segment boundaries on every platform.
func CheckPath(path string) error {
	if strings.ContainsRune(path, 0) {
		return newError(KindUnsafePath, path, "path contains a NUL byte", nil)
	}
	for _, seg := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return newError(KindUnsafePath, path, "path contains a parent directory reference", nil)
		}
	}
	return nil
}

func invalidOffset(raw []byte) int {
	for i := 0; i < len(raw); {
		r, size := utf8.DecodeRune(raw[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(raw)
}
