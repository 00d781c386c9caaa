// Package sanitize filters a document tree against an allow-list policy.
//
// Sanitize never mutates its input. It returns a new tree containing only
// allowed tags, allowed attributes and URLs with allowed schemes, together
// with Stats describing what was removed.
package sanitize

import (
	"fmt"
	"regexp"
	"strings"
)

// Removal is how a disallowed element leaves the tree.
type Removal int

const (
	// Unwrap removes the element and promotes its children in place.
	Unwrap Removal = iota
	// Drop removes the element together with its whole subtree.
	Drop
)

func (r Removal) String() string {
	if r == Drop {
		return "drop"
	}
	return "unwrap"
}

// Wildcard is the AllowedAttributes key whose entries apply to every tag.
const Wildcard = "*"

// Policy is the security policy for one conversion. Treat a Policy as
// read-only once it is handed to Sanitize; it may be shared between
// concurrent conversions.
type Policy struct {
	// AllowedTags is the tag vocabulary that survives sanitization.
	AllowedTags []string `json:"allowed_tags"`

	// AllowedAttributes maps a tag to its permitted attributes. Entries
	// under Wildcard apply to every allowed tag.
	AllowedAttributes map[string][]string `json:"allowed_attributes"`

	// AllowedSchemes lists URL schemes permitted in URL attributes.
	// Relative URLs are always permitted.
	AllowedSchemes []string `json:"allowed_schemes"`

	// AllowExternalLinks keeps anchors pointing at http, https or ftp
	// targets. When false those anchors are dropped with their content.
	AllowExternalLinks bool `json:"allow_external_links"`

	// StripComments removes every comment node.
	StripComments bool `json:"strip_comments"`

	// Removals overrides the removal mode of individual disallowed tags.
	// Tags absent here fall back to DefaultRemovals, then to Unwrap.
	Removals map[string]Removal `json:"removals,omitempty"`
}

// DefaultRemovals lists tags whose content has no textual value.
var DefaultRemovals = map[string]Removal{
	"script":   Drop,
	"style":    Drop,
	"noscript": Drop,
	"template": Drop,
	"iframe":   Drop,
	"frame":    Drop,
	"frameset": Drop,
	"object":   Drop,
	"embed":    Drop,
	"applet":   Drop,
	"svg":      Drop,
	"math":     Drop,
	"canvas":   Drop,
	"audio":    Drop,
	"video":    Drop,
	"head":     Drop,
	"title":    Drop,
	"meta":     Drop,
	"link":     Drop,
	"base":     Drop,
	"input":    Drop,
	"select":   Drop,
	"textarea": Drop,
}

// DefaultPolicy returns the stock allow-list.
func DefaultPolicy() *Policy {
	return &Policy{
		AllowedTags: []string{
			"p", "br", "strong", "em", "u", "i", "b",
			"h1", "h2", "h3", "h4", "h5", "h6",
			"ul", "ol", "li", "blockquote", "pre", "code",
			"a", "img",
			"table", "thead", "tbody", "tr", "th", "td",
			"div", "span", "hr",
		},
		AllowedAttributes: map[string][]string{
			"a":      {"href", "title"},
			"img":    {"src", "alt", "title", "width", "height"},
			"table":  {"border", "cellpadding", "cellspacing"},
			"th":     {"colspan", "rowspan", "scope"},
			"td":     {"colspan", "rowspan"},
			Wildcard: {"class", "id"},
		},
		AllowedSchemes:     []string{"http", "https", "ftp", "mailto"},
		AllowExternalLinks: true,
		StripComments:      true,
	}
}

// RemovalFor reports how a disallowed tag is removed.
func (p *Policy) RemovalFor(tag string) Removal {
	if r, ok := p.Removals[tag]; ok {
		return r
	}
	if r, ok := DefaultRemovals[tag]; ok {
		return r
	}
	return Unwrap
}

// Allows reports whether tag is in the allow-list.
func (p *Policy) Allows(tag string) bool {
	for _, t := range p.AllowedTags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

var schemePattern = regexp.MustCompile(`^[a-z][a-z0-9+.\-]*$`)

// Validate checks that the policy is usable.
func (p *Policy) Validate() error {
	for _, tag := range p.AllowedTags {
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("allowed tags: empty tag name")
		}
	}
	for _, s := range p.AllowedSchemes {
		if !schemePattern.MatchString(strings.ToLower(s)) {
			return fmt.Errorf("allowed schemes: invalid scheme %q", s)
		}
	}
	return nil
}

// compiled is the lookup form of a Policy used during one Sanitize call.
type compiled struct {
	policy   *Policy
	tags     map[string]bool
	attrs    map[string]map[string]bool
	wildcard map[string]bool
	schemes  map[string]bool
}

func compile(p *Policy) *compiled {
	c := &compiled{
		policy:   p,
		tags:     make(map[string]bool, len(p.AllowedTags)),
		attrs:    make(map[string]map[string]bool, len(p.AllowedAttributes)),
		wildcard: make(map[string]bool),
		schemes:  make(map[string]bool, len(p.AllowedSchemes)),
	}
	for _, t := range p.AllowedTags {
		c.tags[strings.ToLower(t)] = true
	}
	for tag, names := range p.AllowedAttributes {
		set := make(map[string]bool, len(names))
		for _, n := range names {
			set[strings.ToLower(n)] = true
		}
		if tag == Wildcard {
			c.wildcard = set
			continue
		}
		c.attrs[strings.ToLower(tag)] = set
	}
	for _, s := range p.AllowedSchemes {
		c.schemes[strings.ToLower(s)] = true
	}
	return c
}

func (c *compiled) attrAllowed(tag, key string) bool {
	return c.wildcard[key] || c.attrs[tag][key]
}
