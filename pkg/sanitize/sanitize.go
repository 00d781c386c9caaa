package sanitize

import (
	"github.com/jmylchreest/htmd/pkg/dom"
)

// Sanitize returns a copy of doc filtered through p. It never fails:
// input that cannot be kept degrades to a smaller tree.
func Sanitize(doc *dom.Document, p *Policy) (*dom.Document, *Stats) {
	s := &sanitizer{rules: compile(p), stats: NewStats()}
	out := &dom.Document{
		Title:    doc.Title,
		Children: s.nodes(doc.Children),
		Pruned:   doc.Pruned,
	}
	return out, s.stats
}

type sanitizer struct {
	rules *compiled
	stats *Stats
}

func (s *sanitizer) nodes(in []dom.Node) []dom.Node {
	out := make([]dom.Node, 0, len(in))
	for _, n := range in {
		switch n := n.(type) {
		case *dom.Text:
			out = append(out, &dom.Text{Content: n.Content})
		case *dom.Comment:
			if s.rules.policy.StripComments {
				s.stats.CommentsStripped++
				continue
			}
			out = append(out, &dom.Comment{Content: n.Content})
		case *dom.Element:
			out = append(out, s.element(n)...)
		}
	}
	return out
}

func (s *sanitizer) element(el *dom.Element) []dom.Node {
	if !s.rules.tags[el.Tag] {
		how := s.rules.policy.RemovalFor(el.Tag)
		s.stats.RecordRemoval(el.Tag, how)
		if how == Drop {
			return nil
		}
		return s.nodes(el.Children)
	}

	if el.Tag == "a" && !s.rules.policy.AllowExternalLinks {
		if href, ok := el.Attr("href"); ok && IsExternal(href) {
			s.stats.ExternalLinksDropped++
			s.stats.RecordRemoval(el.Tag, Drop)
			return nil
		}
	}

	s.stats.ElementsKept++
	return []dom.Node{&dom.Element{
		Tag:      el.Tag,
		Attrs:    s.attrs(el),
		Children: s.nodes(el.Children),
	}}
}

func (s *sanitizer) attrs(el *dom.Element) []dom.Attr {
	var out []dom.Attr
	seen := make(map[string]bool, len(el.Attrs))
	for _, a := range el.Attrs {
		if seen[a.Key] || !s.rules.attrAllowed(el.Tag, a.Key) {
			s.stats.AttributesRemoved++
			continue
		}
		if urlAttrs[a.Key] && !s.rules.urlAllowed(a.Val) {
			s.stats.URLsRejected++
			s.stats.AttributesRemoved++
			continue
		}
		seen[a.Key] = true
		out = append(out, a)
	}
	return out
}
