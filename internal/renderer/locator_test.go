/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package renderer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vendorMmdc(t *testing.T, root, goos string) string {
	t.Helper()
	p := LocalBinary(root, goos)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\nexit 0\n"), 0o750)) // #nosec G306 -- test fixture must be executable
	return p
}

func TestLocate(t *testing.T) {
	tests := []struct {
		name       string
		goos       string
		vendored   bool
		command    string
		args       []string
		wantSource Source
		wantCmd    func(root string) string
		wantPrefix []string
	}{
		{
			name:       "fallback to npx",
			goos:       "linux",
			wantSource: SourceFallback,
			wantCmd:    func(string) string { return "npx" },
			wantPrefix: []string{"-y", Package},
		},
		{
			name:       "fallback to npx.cmd on windows",
			goos:       "windows",
			wantSource: SourceFallback,
			wantCmd:    func(string) string { return "npx.cmd" },
			wantPrefix: []string{"-y", Package},
		},
		{
			name:       "vendored binary",
			goos:       "linux",
			vendored:   true,
			wantSource: SourceLocal,
			wantCmd:    func(root string) string { return filepath.Join(root, "node_modules", ".bin", "mmdc") },
			wantPrefix: []string{},
		},
		{
			name:       "vendored cmd shim on windows",
			goos:       "windows",
			vendored:   true,
			wantSource: SourceLocal,
			wantCmd:    func(root string) string { return filepath.Join(root, "node_modules", ".bin", "mmdc.cmd") },
			wantPrefix: []string{},
		},
		{
			name:       "override beats vendored binary",
			goos:       "linux",
			vendored:   true,
			command:    "/opt/mermaid/bin/mmdc",
			args:       []string{"--quiet"},
			wantSource: SourceOverride,
			wantCmd:    func(string) string { return "/opt/mermaid/bin/mmdc" },
			wantPrefix: []string{"--quiet"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			if tt.vendored {
				vendorMmdc(t, root, tt.goos)
			}
			inv := Locate(LocateOptions{Root: root, Command: tt.command, Args: tt.args, GOOS: tt.goos})
			assert.Equal(t, tt.wantSource, inv.Source)
			assert.Equal(t, tt.wantCmd(root), inv.Command)
			assert.Equal(t, tt.wantPrefix, inv.Prefix)
		})
	}
}

func TestLocate_OverrideArgsAreCopied(t *testing.T) {
	args := []string{"a"}
	inv := Locate(LocateOptions{Root: t.TempDir(), Command: "mmdc", Args: args})
	args[0] = "mutated"
	assert.Equal(t, []string{"a"}, inv.Prefix)
}

func TestInvocationArgs(t *testing.T) {
	inv := Invocation{Command: "npx", Prefix: []string{"-y", Package}}
	got := inv.Args([]string{"-p", "pptr.json"}, "/tmp/s/a.md-1.mmd", "/tmp/s/a.md-1.svg")
	assert.Equal(t, []string{"-y", Package, "-p", "pptr.json", "-i", "/tmp/s/a.md-1.mmd", "-o", "/tmp/s/a.md-1.svg"}, got)
	assert.Equal(t, "npx -y @mermaid-js/mermaid-cli", inv.String())

	local := Invocation{Command: "/r/node_modules/.bin/mmdc"}
	assert.Equal(t, []string{"-i", "in", "-o", "out"}, local.Args(nil, "in", "out"))
	assert.Equal(t, "/r/node_modules/.bin/mmdc", local.String())
}
