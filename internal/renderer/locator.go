/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/

// Package renderer locates and runs the Mermaid CLI (mmdc).
package renderer

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/fulmenhq/mmdguard/pkg/logger"
)

// Package is the npm package the fallback runner installs on demand.
const Package = "@mermaid-js/mermaid-cli"

// Source says how an Invocation was chosen.
type Source string

const (
	SourceOverride Source = "override"
	SourceLocal    Source = "local"
	SourceFallback Source = "npx"
)

// Invocation is the renderer command plus its fixed argument prefix.
// It is computed once per run and never re-checked.
type Invocation struct {
	Command string   `json:"command" yaml:"command"`
	Prefix  []string `json:"prefix" yaml:"prefix"`
	Source  Source   `json:"source" yaml:"source"`
}

// Args builds the full argument list for one diagram.
func (i Invocation) Args(extra []string, input, output string) []string {
	args := make([]string, 0, len(i.Prefix)+len(extra)+4)
	args = append(args, i.Prefix...)
	args = append(args, extra...)
	return append(args, "-i", input, "-o", output)
}

// String renders the invocation as a shell-like command line.
func (i Invocation) String() string {
	return strings.TrimSpace(i.Command + " " + strings.Join(i.Prefix, " "))
}

// LocateOptions configures renderer resolution.
type LocateOptions struct {
	// Root is the project directory probed for node_modules/.bin.
	Root string
	// Command overrides both probes when set; Args is its prefix.
	Command string
	Args    []string
	// GOOS selects executable names; defaults to runtime.GOOS.
	GOOS string
}

// LocalBinary is the vendored mmdc path under root for the given platform.
func LocalBinary(root, goos string) string {
	name := "mmdc"
	if goos == "windows" {
		name = "mmdc.cmd"
	}
	return filepath.Join(root, "node_modules", ".bin", name)
}

// FallbackRunner is the package runner executable for the given platform.
func FallbackRunner(goos string) string {
	if goos == "windows" {
		return "npx.cmd"
	}
	return "npx"
}

// Locate resolves the renderer following the order:
// 1. explicit override (config or MMDGUARD_RENDERER)
// 2. vendored binary at <root>/node_modules/.bin/mmdc
// 3. npx -y @mermaid-js/mermaid-cli
//
// It never fails; an unusable command surfaces as a launch error when run.
func Locate(opts LocateOptions) Invocation {
	goos := opts.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}

	if opts.Command != "" {
		logger.Debug("renderer resolved: override", logger.String("command", opts.Command))
		return Invocation{
			Command: opts.Command,
			Prefix:  append([]string{}, opts.Args...),
			Source:  SourceOverride,
		}
	}

	local := LocalBinary(opts.Root, goos)
	if _, err := os.Stat(local); err == nil {
		logger.Debug("renderer resolved: local binary", logger.String("path", local))
		return Invocation{Command: local, Prefix: []string{}, Source: SourceLocal}
	}
	logger.Debug("no local renderer binary", logger.String("path", local))

	runner := FallbackRunner(goos)
	logger.Debug("renderer resolved: package runner", logger.String("command", runner), logger.String("package", Package))
	return Invocation{
		Command: runner,
		Prefix:  []string{"-y", Package},
		Source:  SourceFallback,
	}
}
