package batch

import (
	"path/filepath"
	"sync"
)

// Job is one document to convert.
type Job struct {
	Index int
	// Source is the input file.
	Source string
	// Rel is Source relative to its root; it decides the output path.
	Rel string
}

// jobQueue collects jobs, dropping sources that were already queued.
type jobQueue struct {
	mu   sync.Mutex
	jobs []Job
	seen map[string]bool
}

func newJobQueue() *jobQueue {
	return &jobQueue{seen: make(map[string]bool)}
}

// add queues source unless it resolves to a file already queued.
func (q *jobQueue) add(source, rel string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	key := normalizePath(source)
	if key == "" || q.seen[key] {
		return false
	}
	q.seen[key] = true
	q.jobs = append(q.jobs, Job{Index: len(q.jobs), Source: source, Rel: rel})
	return true
}

func (q *jobQueue) list() []Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Job(nil), q.jobs...)
}

func normalizePath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return ""
	}
	return filepath.Clean(abs)
}
