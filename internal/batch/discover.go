package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jmylchreest/htmd/internal/logger"
	"github.com/jmylchreest/htmd/pkg/convert"
)

// DiscoverOptions controls directory scanning.
type DiscoverOptions struct {
	Recursive bool
	// Pattern, when set, must match the slash-separated relative path.
	Pattern string
	// IncludeHidden also visits dot files and dot directories.
	IncludeHidden bool
}

// Discover lists the convertible files under root in lexical order.
func Discover(root string, opts DiscoverOptions) ([]Job, error) {
	var pattern *regexp.Regexp
	if opts.Pattern != "" {
		var err error
		if pattern, err = regexp.Compile(opts.Pattern); err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	q := newJobQueue()
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		hidden := strings.HasPrefix(d.Name(), ".")
		if d.IsDir() {
			if !opts.Recursive || (hidden && !opts.IncludeHidden) {
				return filepath.SkipDir
			}
			return nil
		}
		if (hidden && !opts.IncludeHidden) || !d.Type().IsRegular() || !convert.Supported(path) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if pattern != nil && !pattern.MatchString(filepath.ToSlash(rel)) {
			return nil
		}
		q.add(path, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	jobs := q.list()
	logger.Debug("discovered documents", "root", root, "count", len(jobs), "recursive", opts.Recursive)
	return jobs, nil
}

// FromFiles turns an explicit file list into jobs. Outputs are named after
// the file's base name; duplicates of the same file are dropped.
func FromFiles(paths []string) []Job {
	q := newJobQueue()
	for _, p := range paths {
		if !q.add(p, filepath.Base(p)) {
			logger.Debug("skipping duplicate input", "path", p)
		}
	}
	return q.list()
}

// OutputPath maps a relative source path to its Markdown path in dir.
func OutputPath(dir, rel string) string {
	return filepath.Join(dir, strings.TrimSuffix(rel, filepath.Ext(rel))+".md")
}
