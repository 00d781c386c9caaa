// Package batch converts many documents concurrently. Each document gets
// its own outcome; one failure never stops the others.
package batch

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sourcegraph/conc/pool"

	"github.com/jmylchreest/htmd/internal/logger"
	"github.com/jmylchreest/htmd/internal/output"
	"github.com/jmylchreest/htmd/pkg/convert"
)

// Status is the result of one document.
type Status string

const (
	StatusConverted Status = "converted"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Options configures a Runner.
type Options struct {
	OutputDir  string
	MaxWorkers int
	Files      output.FilePolicy
	// FrontMatter prefixes each file with title, source and flavor.
	FrontMatter bool
}

// Outcome is the report record for one document.
type Outcome struct {
	Index           int           `json:"-" yaml:"-"`
	Source          string        `json:"source" yaml:"source"`
	Output          string        `json:"output,omitempty" yaml:"output,omitempty"`
	Status          Status        `json:"status" yaml:"status"`
	Action          output.Action `json:"action,omitempty" yaml:"action,omitempty"`
	Kind            string        `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	Error           string        `json:"error,omitempty" yaml:"error,omitempty"`
	Title           string        `json:"title,omitempty" yaml:"title,omitempty"`
	InputBytes      int           `json:"input_bytes,omitempty" yaml:"input_bytes,omitempty"`
	OutputBytes     int           `json:"output_bytes,omitempty" yaml:"output_bytes,omitempty"`
	ElementsRemoved int           `json:"elements_removed,omitempty" yaml:"elements_removed,omitempty"`
	Duration        time.Duration `json:"duration_ns" yaml:"duration"`
}

// Summary aggregates a run.
type Summary struct {
	Outcomes  []Outcome
	Converted int
	Skipped   int
	Failed    int
	Duration  time.Duration
}

// OK reports whether no document failed.
func (s *Summary) OK() bool {
	return s.Failed == 0
}

func (s *Summary) String() string {
	return fmt.Sprintf("%d converted, %d skipped, %d failed in %s",
		s.Converted, s.Skipped, s.Failed, s.Duration.Round(time.Millisecond))
}

// Runner fans jobs out over a bounded worker pool.
type Runner struct {
	conv *convert.Converter
	opts Options
}

// NewRunner returns a Runner. MaxWorkers below one means one.
func NewRunner(conv *convert.Converter, opts Options) *Runner {
	if opts.MaxWorkers < 1 {
		opts.MaxWorkers = 1
	}
	return &Runner{conv: conv, opts: opts}
}

// Run converts every job and returns outcomes in job order. Cancelling
// ctx fails the jobs that have not started yet.
func (r *Runner) Run(ctx context.Context, jobs []Job) *Summary {
	start := time.Now()
	logger.Info("batch starting", "documents", len(jobs), "workers", r.opts.MaxWorkers, "output", r.opts.OutputDir)

	claimed := make(map[string]string, len(jobs))
	p := pool.NewWithResults[Outcome]().WithMaxGoroutines(r.opts.MaxWorkers)
	for _, job := range jobs {
		target := OutputPath(r.opts.OutputDir, job.Rel)
		if prev, ok := claimed[target]; ok {
			p.Go(func() Outcome {
				return failed(job, target, "", fmt.Errorf("output %s is already written by %s", target, prev))
			})
			continue
		}
		claimed[target] = job.Source
		p.Go(func() Outcome {
			return r.one(ctx, job, target)
		})
	}

	outcomes := p.Wait()
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Index < outcomes[j].Index })

	sum := &Summary{Outcomes: outcomes, Duration: time.Since(start)}
	for _, o := range outcomes {
		switch o.Status {
		case StatusConverted:
			sum.Converted++
		case StatusSkipped:
			sum.Skipped++
		default:
			sum.Failed++
		}
	}
	logger.Info("batch finished", "converted", sum.Converted, "skipped", sum.Skipped, "failed", sum.Failed,
		"duration", sum.Duration.Round(time.Millisecond))
	return sum
}

func (r *Runner) one(ctx context.Context, job Job, target string) Outcome {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return failed(job, target, "", err)
	}

	res, err := r.conv.ConvertFile(ctx, job.Source)
	if err != nil {
		kind := ""
		if k := convert.KindOf(err); k != convert.KindUnknown {
			kind = k.String()
		}
		logger.Warn("conversion failed", "path", job.Source, "kind", kind, "error", err)
		o := failed(job, target, kind, err)
		o.Duration = time.Since(start)
		return o
	}

	text := res.Markdown
	if r.opts.FrontMatter {
		text, err = output.WithFrontMatter(text, output.FrontMatter{
			Title:  res.Title,
			Source: job.Source,
			Flavor: string(r.conv.Config().Style.Flavor),
		})
		if err != nil {
			return failed(job, target, "", err)
		}
	}
	if text != "" {
		text += "\n"
	}

	action, err := output.WriteFile(target, []byte(text), r.opts.Files)
	if err != nil {
		logger.Warn("write failed", "path", target, "error", err)
		return failed(job, target, "", err)
	}

	o := Outcome{
		Index:           job.Index,
		Source:          job.Source,
		Output:          target,
		Status:          StatusConverted,
		Action:          action,
		Title:           res.Title,
		InputBytes:      res.InputBytes,
		OutputBytes:     len(text),
		ElementsRemoved: res.ElementsRemoved,
		Duration:        time.Since(start),
	}
	if action == output.ActionSkipped {
		o.Status = StatusSkipped
		logger.Info("output exists, skipped", "path", target)
		return o
	}
	logger.Debug("converted",
		"path", job.Source,
		"output", target,
		"in", humanize.Bytes(uint64(res.InputBytes)),
		"out", humanize.Bytes(uint64(len(text))),
		"removed", res.ElementsRemoved,
		"duration", o.Duration.Round(time.Microsecond))
	return o
}

func failed(job Job, target, kind string, err error) Outcome {
	return Outcome{
		Index:  job.Index,
		Source: job.Source,
		Output: target,
		Status: StatusFailed,
		Kind:   kind,
		Error:  err.Error(),
	}
}
