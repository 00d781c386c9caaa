// Package style defines the Markdown style configuration shared by the
// emitter and the post-processor.
package style

import (
	"fmt"
	"strings"
)

// Flavor names a Markdown dialect.
type Flavor string

const (
	FlavorGitHub     Flavor = "github"
	FlavorCommonMark Flavor = "commonmark"
	FlavorStrict     Flavor = "strict"
)

type capabilities struct {
	tables        bool
	rawHTML       bool
	strikethrough bool
	fenceInfo     bool
	hardBreak     string
}

var flavors = map[Flavor]capabilities{
	FlavorGitHub: {
		tables:        true,
		rawHTML:       true,
		strikethrough: true,
		fenceInfo:     true,
		hardBreak:     "\\\n",
	},
	FlavorCommonMark: {
		tables:    true,
		rawHTML:   true,
		fenceInfo: true,
		hardBreak: "\\\n",
	},
	FlavorStrict: {
		hardBreak: "  \n",
	},
}

// Flavors returns the known flavors in a stable order.
func Flavors() []Flavor {
	return []Flavor{FlavorGitHub, FlavorCommonMark, FlavorStrict}
}

func (f Flavor) caps() capabilities {
	if c, ok := flavors[f]; ok {
		return c
	}
	return flavors[FlavorGitHub]
}

// Tables reports whether pipe tables are emitted.
func (f Flavor) Tables() bool { return f.caps().tables }

// RawHTML reports whether literal HTML may pass through.
func (f Flavor) RawHTML() bool { return f.caps().rawHTML }

// Strikethrough reports whether ~~text~~ is emitted for del/s/strike.
func (f Flavor) Strikethrough() bool { return f.caps().strikethrough }

// FenceInfo reports whether fenced code blocks carry a language.
func (f Flavor) FenceInfo() bool { return f.caps().fenceInfo }

// HardBreak is the sequence emitted for <br>, newline included.
func (f Flavor) HardBreak() string { return f.caps().hardBreak }

// HeadingStyle selects the heading notation.
type HeadingStyle string

const (
	HeadingATX    HeadingStyle = "atx"
	HeadingSetext HeadingStyle = "setext"
)

// Emphasis selects the emphasis delimiter.
type Emphasis string

const (
	EmphasisAsterisk   Emphasis = "asterisk"
	EmphasisUnderscore Emphasis = "underscore"
)

// Engine selects the emitter implementation.
type Engine string

const (
	// EngineNative walks the tree with the built-in emission rules.
	EngineNative Engine = "native"
	// EngineLibrary delegates emission to html-to-markdown.
	EngineLibrary Engine = "html-to-markdown"
)

// Style is the Markdown style configuration. It is a value type and may
// be shared freely between concurrent conversions.
type Style struct {
	Flavor   Flavor       `json:"flavor"`
	Heading  HeadingStyle `json:"heading_style"`
	Emphasis Emphasis     `json:"emphasis_style"`
	Bullet   string       `json:"bullet"`

	// LineLength is the wrap width; 0 disables wrapping.
	LineLength int `json:"line_length"`

	PreserveHTML    bool `json:"preserve_html"`
	StripComments   bool `json:"strip_comments"`
	CleanWhitespace bool `json:"clean_whitespace"`

	// DetectLanguage guesses a fence info string for unlabelled code.
	DetectLanguage bool `json:"detect_language"`

	Engine Engine `json:"engine"`
}

// Default returns the stock style.
func Default() Style {
	return Style{
		Flavor:          FlavorGitHub,
		Heading:         HeadingATX,
		Emphasis:        EmphasisAsterisk,
		Bullet:          "-",
		LineLength:      80,
		StripComments:   true,
		CleanWhitespace: true,
		Engine:          EngineNative,
	}
}

// EmphasisMarker is the single emphasis delimiter.
func (s Style) EmphasisMarker() string {
	if s.Emphasis == EmphasisUnderscore {
		return "_"
	}
	return "*"
}

// StrongMarker is the doubled emphasis delimiter.
func (s Style) StrongMarker() string {
	m := s.EmphasisMarker()
	return m + m
}

// BulletMarker is the unordered list marker, defaulting to "-".
func (s Style) BulletMarker() string {
	switch s.Bullet {
	case "*", "+":
		return s.Bullet
	}
	return "-"
}

// PassthroughHTML reports whether unmapped elements are emitted as literal
// HTML.
func (s Style) PassthroughHTML() bool {
	return s.PreserveHTML && s.Flavor.RawHTML()
}

// Validate reports the first invalid field.
func (s Style) Validate() error {
	if _, ok := flavors[s.Flavor]; !ok {
		return fmt.Errorf("unknown markdown flavor %q (want one of %s)", s.Flavor, joinFlavors())
	}
	switch s.Heading {
	case HeadingATX, HeadingSetext:
	default:
		return fmt.Errorf("unknown heading style %q", s.Heading)
	}
	switch s.Emphasis {
	case EmphasisAsterisk, EmphasisUnderscore:
	default:
		return fmt.Errorf("unknown emphasis style %q", s.Emphasis)
	}
	switch s.Bullet {
	case "", "-", "*", "+":
	default:
		return fmt.Errorf("unknown bullet marker %q", s.Bullet)
	}
	switch s.Engine {
	case "", EngineNative, EngineLibrary:
	default:
		return fmt.Errorf("unknown engine %q", s.Engine)
	}
	if s.LineLength < 0 {
		return fmt.Errorf("line length must not be negative, got %d", s.LineLength)
	}
	return nil
}

func joinFlavors() string {
	names := make([]string, 0, len(flavors))
	for _, f := range Flavors() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}
