package output

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// FrontMatter is the metadata block placed above converted Markdown.
type FrontMatter struct {
	Title  string `yaml:"title,omitempty"`
	Source string `yaml:"source,omitempty"`
	Flavor string `yaml:"flavor,omitempty"`
}

// WithFrontMatter prefixes markdown with a YAML front matter block. An
// empty FrontMatter leaves markdown unchanged.
func WithFrontMatter(markdown string, fm FrontMatter) (string, error) {
	if fm == (FrontMatter{}) {
		return markdown, nil
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	buf.WriteString("---\n")
	if markdown != "" {
		buf.WriteString("\n")
		buf.WriteString(markdown)
	}
	return buf.String(), nil
}
