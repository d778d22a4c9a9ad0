/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/

// Package ignore decides which paths the Markdown collector skips: a fixed
// set of version-control and dependency directory names, optional doublestar
// exclude globs, and optional .gitignore rules read through go-git.
package ignore

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5/osfs"
	gitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// DefaultDirs are directory names that are never descended into.
var DefaultDirs = []string{".git", ".svn", ".hg", "node_modules"}

// Options configures a Matcher.
type Options struct {
	// Root is the directory relative paths are computed from. Globs and
	// gitignore rules only apply to paths inside Root.
	Root string
	// Exclude holds doublestar patterns matched against slash paths
	// relative to Root (e.g. "docs/archive/**").
	Exclude []string
	// Gitignore layers every .gitignore below Root and .git/info/exclude.
	Gitignore bool
}

// Matcher answers skip questions for the collector.
type Matcher struct {
	root    string
	dirs    map[string]struct{}
	exclude []string
	git     gitignore.Matcher
}

// NewMatcher builds a matcher. It fails on malformed exclude globs; a missing
// or unreadable .gitignore is not an error.
func NewMatcher(opts Options) (*Matcher, error) {
	root := opts.Root
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve ignore root %s: %w", root, err)
	}

	m := &Matcher{
		root: absRoot,
		dirs: make(map[string]struct{}, len(DefaultDirs)),
	}
	for _, d := range DefaultDirs {
		m.dirs[d] = struct{}{}
	}

	for _, pattern := range opts.Exclude {
		pattern = filepath.ToSlash(strings.TrimSpace(pattern))
		if pattern == "" {
			continue
		}
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
		m.exclude = append(m.exclude, pattern)
	}

	if opts.Gitignore {
		fs := osfs.New(absRoot)
		// ReadPatterns with nil reads every .gitignore below the root plus .git/info/exclude
		patterns, err := gitignore.ReadPatterns(fs, nil)
		if err != nil {
			return nil, fmt.Errorf("read gitignore patterns under %s: %w", absRoot, err)
		}
		m.git = gitignore.NewMatcher(patterns)
	}

	return m, nil
}

// Root returns the absolute root the matcher measures paths from.
func (m *Matcher) Root() string {
	return m.root
}

// SkipDir reports whether the traversal should not descend into path.
func (m *Matcher) SkipDir(path string) bool {
	if _, ok := m.dirs[filepath.Base(path)]; ok {
		return true
	}
	return m.matches(path, true)
}

// SkipFile reports whether a file found during traversal is excluded.
func (m *Matcher) SkipFile(path string) bool {
	return m.matches(path, false)
}

func (m *Matcher) matches(path string, isDir bool) bool {
	rel, ok := m.relative(path)
	if !ok {
		return false
	}

	for _, pattern := range m.exclude {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
	}

	if m.git != nil {
		return m.git.Match(splitPath(rel), isDir)
	}
	return false
}

// relative returns the slash path of p relative to the root, or false when p
// lies outside it.
func (m *Matcher) relative(p string) (string, bool) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(m.root, abs)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}

// splitPath converts a slash-separated path into components for go-git matching
func splitPath(path string) []string {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" && part != "." {
			result = append(result, part)
		}
	}
	return result
}
