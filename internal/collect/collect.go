/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/

// Package collect discovers the Markdown files a validation run scans.
package collect

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fulmenhq/mmdguard/pkg/ignore"
	"github.com/fulmenhq/mmdguard/pkg/logger"
)

// Extensions are the Markdown file extensions, compared case-insensitively.
var Extensions = []string{".md", ".markdown"}

// IsMarkdown reports whether path has a Markdown extension.
func IsMarkdown(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Collector resolves scan targets against an explicit root directory.
type Collector struct {
	root    string
	matcher *ignore.Matcher
}

// New returns a collector. A nil matcher skips only ignore.DefaultDirs.
func New(root string, matcher *ignore.Matcher) (*Collector, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", root, err)
	}
	if matcher == nil {
		matcher, err = ignore.NewMatcher(ignore.Options{Root: absRoot})
		if err != nil {
			return nil, err
		}
	}
	return &Collector{root: absRoot, matcher: matcher}, nil
}

// Resolve returns the absolute path of target, interpreted relative to the root.
func (c *Collector) Resolve(target string) string {
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Join(c.root, target)
}

// Collect returns the Markdown files under target in depth-first lexical
// order. A file target is returned as-is when it is Markdown and dropped
// otherwise. A missing or unreadable target is an error.
func (c *Collector) Collect(target string) ([]string, error) {
	resolved := c.Resolve(target)

	info, err := os.Stat(resolved)
	if err != nil {
		// *fs.PathError already names the operation and path.
		return nil, err
	}

	if !info.IsDir() {
		if IsMarkdown(resolved) {
			return []string{resolved}, nil
		}
		logger.Debug("target is not a Markdown file", logger.String("path", resolved))
		return []string{}, nil
	}

	files := []string{}
	err = filepath.WalkDir(resolved, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != resolved && c.matcher.SkipDir(path) {
				logger.Trace("skipping directory", logger.String("path", path))
				return filepath.SkipDir
			}
			return nil
		}
		if !IsMarkdown(d.Name()) {
			return nil
		}
		if c.matcher.SkipFile(path) {
			logger.Trace("skipping excluded file", logger.String("path", path))
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("collected markdown files", logger.String("target", resolved), logger.Int("count", len(files)))
	return files, nil
}
