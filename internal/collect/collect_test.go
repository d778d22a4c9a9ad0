/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package collect

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fulmenhq/mmdguard/pkg/ignore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, root string, rel ...string) {
	t.Helper()
	for _, r := range rel {
		p := filepath.Join(root, filepath.FromSlash(r))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte("# x\n"), 0o600))
	}
}

func rels(t *testing.T, root string, files []string) []string {
	t.Helper()
	out := make([]string, 0, len(files))
	for _, f := range files {
		r, err := filepath.Rel(root, f)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(r))
	}
	return out
}

func TestIsMarkdown(t *testing.T) {
	assert.True(t, IsMarkdown("a.md"))
	assert.True(t, IsMarkdown("A.MD"))
	assert.True(t, IsMarkdown("dir/b.Markdown"))
	assert.False(t, IsMarkdown("c.mdx"))
	assert.False(t, IsMarkdown("md"))
	assert.False(t, IsMarkdown("notes.txt"))
}

func TestCollect_Directory(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"docs/b.md",
		"docs/a.MD",
		"docs/guide/intro.markdown",
		"docs/guide/image.png",
		"docs/node_modules/pkg/readme.md",
		"docs/.git/info.md",
		"docs/.hg/x.md",
		"docs/.svn/y.md",
		"docs/z/last.md",
		"other/outside.md",
	)

	c, err := New(root, nil)
	require.NoError(t, err)

	files, err := c.Collect("docs")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"docs/a.MD",
		"docs/b.md",
		"docs/guide/intro.markdown",
		"docs/z/last.md",
	}, rels(t, root, files))
}

func TestCollect_Deterministic(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "d/1.md", "d/2/3.md", "d/2/4.md", "d/5.md")
	c, err := New(root, nil)
	require.NoError(t, err)

	first, err := c.Collect("d")
	require.NoError(t, err)
	second, err := c.Collect("d")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 4)
}

func TestCollect_SingleFile(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "README.md", "notes.txt")
	c, err := New(root, nil)
	require.NoError(t, err)

	files, err := c.Collect("README.md")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "README.md")}, files)

	files, err = c.Collect("notes.txt")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestCollect_AbsoluteTarget(t *testing.T) {
	root := t.TempDir()
	elsewhere := t.TempDir()
	touch(t, elsewhere, "x.md")
	c, err := New(root, nil)
	require.NoError(t, err)

	files, err := c.Collect(elsewhere)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(elsewhere, "x.md")}, files)
}

func TestCollect_IgnoredNameAsTarget(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "node_modules/pkg/readme.md")
	c, err := New(root, nil)
	require.NoError(t, err)

	// Only descendants are filtered; an explicit target is always walked.
	files, err := c.Collect("node_modules")
	require.NoError(t, err)
	assert.Equal(t, []string{"node_modules/pkg/readme.md"}, rels(t, root, files))
}

func TestCollect_MissingTarget(t *testing.T) {
	c, err := New(t.TempDir(), nil)
	require.NoError(t, err)

	_, err = c.Collect("does-not-exist")
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Equal(t, 1, strings.Count(err.Error(), "does-not-exist"), "path appears once: %v", err)
}

func TestCollect_ExcludeGlobs(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "docs/keep.md", "docs/archive/old.md", "docs/api/CHANGELOG.md")

	m, err := ignore.NewMatcher(ignore.Options{Root: root, Exclude: []string{"docs/archive/**", "**/CHANGELOG.md"}})
	require.NoError(t, err)
	c, err := New(root, m)
	require.NoError(t, err)

	files, err := c.Collect("docs")
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/keep.md"}, rels(t, root, files))
}
