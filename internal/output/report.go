// Package output writes conversion reports and Markdown files.
package output

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Format is a report serialization format.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// Formats lists the report formats.
func Formats() []Format {
	return []Format{FormatJSON, FormatJSONL, FormatYAML}
}

// ParseFormat accepts a format name, case-insensitively. "yml" and
// "ndjson" are accepted as aliases.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "jsonl", "ndjson":
		return FormatJSONL, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported report format: %q", name)
	}
}

// FormatFromPath picks the report format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("report path %q has no extension", path)
	}
	return ParseFormat(ext)
}

// ReportWriter serializes report records. Records may be buffered until
// Close.
type ReportWriter interface {
	Write(record any) error
	Close() error
}

// Option configures a report writer.
type Option func(*writerConfig)

type writerConfig struct {
	pretty bool
	indent string
}

// WithPretty toggles indented JSON.
func WithPretty(enabled bool) Option {
	return func(c *writerConfig) {
		c.pretty = enabled
	}
}

// WithIndent sets the JSON indentation string.
func WithIndent(indent string) Option {
	return func(c *writerConfig) {
		c.indent = indent
	}
}

// NewReportWriter returns a writer for format.
func NewReportWriter(w io.Writer, format Format, opts ...Option) (ReportWriter, error) {
	cfg := &writerConfig{pretty: true, indent: "  "}
	for _, opt := range opts {
		opt(cfg)
	}

	switch format {
	case FormatJSON:
		return &jsonWriter{w: w, pretty: cfg.pretty, indent: cfg.indent}, nil
	case FormatJSONL:
		return &jsonlWriter{w: w}, nil
	case FormatYAML:
		return &yamlWriter{w: w}, nil
	default:
		return nil, fmt.Errorf("unsupported report format: %q", format)
	}
}
