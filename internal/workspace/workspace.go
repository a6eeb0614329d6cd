// Package workspace discovers PHP source files across a directory tree and
// watches them for external changes, treating "the workspace" as an
// external collaborator that supplies documents to the engine.
package workspace

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultIncludes are the file globs discover matches when the caller
// supplies none.
var DefaultIncludes = []string{"**/*.php", "**/*.phtml"}

// DefaultExcludes skips directories no workspace scan should descend into.
var DefaultExcludes = []string{"**/vendor/**", "**/.git/**", "**/node_modules/**"}

// Progress reports discovery progress between documents. done/total are
// file counts, not bytes, since a fair completion estimate needs the full
// file list up front (which Discover already has, having just walked the
// tree).
type Progress func(done, total int)

// Options configures Discover. A zero Options uses DefaultIncludes and
// DefaultExcludes with no file cap.
type Options struct {
	Includes []string
	Excludes []string
	MaxFiles int // 0 means unbounded (internal/config's PHPLS_MAX_WORKSPACE_FILES)
}

// Discover walks root and returns every file matching Includes and not
// matching Excludes, each path as filepath.WalkDir reports it (joined
// onto root, so absolute only when root is). Discovery
// is synchronous but calls progress after each file is classified so a
// host can report completion percentage on a large tree; progress may be
// nil.
func Discover(ctx context.Context, root string, opts Options, progress Progress) ([]string, error) {
	includes := opts.Includes
	if len(includes) == 0 {
		includes = DefaultIncludes
	}
	excludes := opts.Excludes
	if len(excludes) == 0 {
		excludes = DefaultExcludes
	}

	var candidates []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if matchesAny(excludes, rel) {
			return nil
		}
		if !matchesAny(includes, rel) {
			return nil
		}
		candidates = append(candidates, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(candidates)
	if opts.MaxFiles > 0 && len(candidates) > opts.MaxFiles {
		candidates = candidates[:opts.MaxFiles]
	}

	total := len(candidates)
	for i := range candidates {
		if ctx.Err() != nil {
			return candidates[:i], ctx.Err()
		}
		if progress != nil {
			progress(i+1, total)
		}
	}
	return candidates, nil
}

func matchesAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
