package convert

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/htmd/pkg/sanitize"
)

// Result is a successful conversion.
type Result struct {
	Markdown string `json:"-"`

	// Bytes is the length of Markdown.
	Bytes           int    `json:"bytes"`
	InputBytes      int    `json:"input_bytes"`
	ElementsRemoved int    `json:"elements_removed"`
	Title           string `json:"title,omitempty"`
	Source          string `json:"source,omitempty"`
	Format          Format `json:"format"`
	Stats           *Stats `json:"stats,omitempty"`
}

// Timings records how long each stage took.
type Timings struct {
	Parse     time.Duration `json:"parse"`
	Sanitize  time.Duration `json:"sanitize"`
	Emit      time.Duration `json:"emit"`
	Normalize time.Duration `json:"normalize"`
}

// Total is the sum of all stages.
func (t Timings) Total() time.Duration {
	return t.Parse + t.Sanitize + t.Emit + t.Normalize
}

// Stats describes what happened to one document on its way through.
type Stats struct {
	Timings  Timings         `json:"timings"`
	Sanitize *sanitize.Stats `json:"sanitize,omitempty"`

	// Pruned counts subtrees removed per selector.
	Pruned map[string]int `json:"pruned,omitempty"`

	InputBytes  int `json:"input_bytes"`
	OutputBytes int `json:"output_bytes"`
}

// String returns a human-readable summary.
func (s *Stats) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Size: %s -> %s\n", humanize.Bytes(uint64(s.InputBytes)), humanize.Bytes(uint64(s.OutputBytes)))
	fmt.Fprintf(&sb, "Time: %s (parse %s, sanitize %s, emit %s, normalize %s)\n",
		s.Timings.Total().Round(time.Microsecond),
		s.Timings.Parse.Round(time.Microsecond),
		s.Timings.Sanitize.Round(time.Microsecond),
		s.Timings.Emit.Round(time.Microsecond),
		s.Timings.Normalize.Round(time.Microsecond))
	if len(s.Pruned) > 0 {
		sels := make([]string, 0, len(s.Pruned))
		for sel := range s.Pruned {
			sels = append(sels, sel)
		}
		sort.Strings(sels)
		for i, sel := range sels {
			sels[i] = fmt.Sprintf("%s=%d", sel, s.Pruned[sel])
		}
		sb.WriteString("Pruned: " + strings.Join(sels, ", ") + "\n")
	}
	if s.Sanitize != nil {
		sb.WriteString(s.Sanitize.String())
	}
	return sb.String()
}
