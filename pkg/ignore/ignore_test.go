/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkipDir_DefaultDirs(t *testing.T) {
	root := t.TempDir()
	m, err := NewMatcher(Options{Root: root})
	require.NoError(t, err)

	for _, name := range DefaultDirs {
		assert.True(t, m.SkipDir(filepath.Join(root, "docs", name)), "expected %s to be skipped", name)
	}
	assert.False(t, m.SkipDir(filepath.Join(root, "docs", "guides")))
	// Names are matched exactly, not by prefix.
	assert.False(t, m.SkipDir(filepath.Join(root, ".github")))
	assert.False(t, m.SkipDir(filepath.Join(root, "node_modules_backup")))
}

func TestSkipDir_DefaultDirsOutsideRoot(t *testing.T) {
	root := t.TempDir()
	other := t.TempDir()
	m, err := NewMatcher(Options{Root: root, Exclude: []string{"**"}})
	require.NoError(t, err)

	assert.True(t, m.SkipDir(filepath.Join(other, ".git")))
	// Globs never apply outside the root.
	assert.False(t, m.SkipDir(filepath.Join(other, "docs")))
	assert.False(t, m.SkipFile(filepath.Join(other, "docs", "a.md")))
}

func TestExcludeGlobs(t *testing.T) {
	root := t.TempDir()
	m, err := NewMatcher(Options{Root: root, Exclude: []string{"docs/archive/**", "**/CHANGELOG.md", "  "}})
	require.NoError(t, err)

	assert.True(t, m.SkipFile(filepath.Join(root, "docs", "archive", "old.md")))
	assert.True(t, m.SkipFile(filepath.Join(root, "pkg", "x", "CHANGELOG.md")))
	assert.False(t, m.SkipFile(filepath.Join(root, "docs", "guide.md")))
	assert.True(t, m.SkipDir(filepath.Join(root, "docs", "archive", "2023")))
}

func TestInvalidExcludePattern(t *testing.T) {
	_, err := NewMatcher(Options{Root: t.TempDir(), Exclude: []string{"docs/[unclosed"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid exclude pattern")
}

func TestGitignoreLayer(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("# generated docs\ngenerated/\n*.draft.md\n"), 0o644))

	withGit, err := NewMatcher(Options{Root: root, Gitignore: true})
	require.NoError(t, err)
	assert.True(t, withGit.SkipDir(filepath.Join(root, "docs", "generated")))
	assert.True(t, withGit.SkipFile(filepath.Join(root, "docs", "intro.draft.md")))
	assert.False(t, withGit.SkipFile(filepath.Join(root, "docs", "intro.md")))

	withoutGit, err := NewMatcher(Options{Root: root})
	require.NoError(t, err)
	assert.False(t, withoutGit.SkipDir(filepath.Join(root, "docs", "generated")))
	assert.False(t, withoutGit.SkipFile(filepath.Join(root, "docs", "intro.draft.md")))
}

func TestRootDefaultsToWorkingDirectory(t *testing.T) {
	m, err := NewMatcher(Options{})
	require.NoError(t, err)
	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, wd, m.Root())
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"docs/a.md", []string{"docs", "a.md"}},
		{"/docs//a.md", []string{"docs", "a.md"}},
		{"./docs", []string{"docs"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, splitPath(tt.in), tt.in)
	}
}
