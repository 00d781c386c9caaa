package sanitize

import (
	"fmt"
	"sort"
	"strings"
)

// Stats captures what a Sanitize call removed.
type Stats struct {
	// ElementsRemoved counts removed elements by tag.
	ElementsRemoved map[string]int `json:"elements_removed"`
	ElementsKept    int            `json:"elements_kept"`

	Unwrapped int `json:"unwrapped"`
	Dropped   int `json:"dropped"`

	AttributesRemoved    int `json:"attributes_removed"`
	URLsRejected         int `json:"urls_rejected"`
	ExternalLinksDropped int `json:"external_links_dropped"`
	CommentsStripped     int `json:"comments_stripped"`
}

// NewStats creates a Stats with initialized maps.
func NewStats() *Stats {
	return &Stats{ElementsRemoved: make(map[string]int)}
}

// RecordRemoval records that an element left the tree.
func (s *Stats) RecordRemoval(tag string, how Removal) {
	s.ElementsRemoved[strings.ToLower(tag)]++
	if how == Drop {
		s.Dropped++
	} else {
		s.Unwrapped++
	}
}

// TotalElementsRemoved returns the sum of all removed elements.
func (s *Stats) TotalElementsRemoved() int {
	total := 0
	for _, count := range s.ElementsRemoved {
		total += count
	}
	return total
}

// String returns a human-readable summary.
func (s *Stats) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Elements: %d removed (%d unwrapped, %d dropped), %d kept\n",
		s.TotalElementsRemoved(), s.Unwrapped, s.Dropped, s.ElementsKept))

	if len(s.ElementsRemoved) > 0 {
		tags := make([]string, 0, len(s.ElementsRemoved))
		for tag := range s.ElementsRemoved {
			tags = append(tags, tag)
		}
		sort.Strings(tags)

		parts := make([]string, 0, len(tags))
		for _, tag := range tags {
			parts = append(parts, fmt.Sprintf("%s=%d", tag, s.ElementsRemoved[tag]))
		}
		sb.WriteString("Removed by tag: ")
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteString("\n")
	}

	if s.AttributesRemoved > 0 {
		sb.WriteString(fmt.Sprintf("Attributes removed: %d\n", s.AttributesRemoved))
	}
	if s.URLsRejected > 0 {
		sb.WriteString(fmt.Sprintf("URLs rejected: %d\n", s.URLsRejected))
	}
	if s.ExternalLinksDropped > 0 {
		sb.WriteString(fmt.Sprintf("External links dropped: %d\n", s.ExternalLinksDropped))
	}
	if s.CommentsStripped > 0 {
		sb.WriteString(fmt.Sprintf("Comments stripped: %d\n", s.CommentsStripped))
	}

	return sb.String()
}
