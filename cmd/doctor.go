/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/fulmenhq/mmdguard/internal/renderer"
	"github.com/fulmenhq/mmdguard/pkg/ascii"
	"github.com/fulmenhq/mmdguard/pkg/logger"
	"github.com/spf13/cobra"
)

const doctorValueWidth = 72

func newDoctorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Show how the Mermaid renderer is resolved",
		Long: `Print each renderer probe (override, local node_modules binary, npx) and the
invocation a validation run would use. Nothing is validated.

With --check, the selected renderer is run once with --version.`,
		Args: cobra.NoArgs,
		RunE: runDoctor,
	}
	cmd.Flags().Bool("check", false, "Run the selected renderer with --version")
	return cmd
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determine working directory: %w", err)
	}
	cfg, err := loadConfig(cmd, root)
	if err != nil {
		return err
	}

	opts := renderer.LocateOptions{Root: root, Command: cfg.Renderer.Command, Args: cfg.Renderer.Args}
	inv := renderer.Locate(opts)

	configFile := cfg.File
	if configFile == "" {
		configFile = "(none)"
	}
	override := "(none)"
	if cfg.Renderer.Command != "" {
		override = strings.TrimSpace(cfg.Renderer.Command + " " + strings.Join(cfg.Renderer.Args, " "))
	}

	local := renderer.LocalBinary(root, runtime.GOOS)
	localStatus := "missing"
	if _, err := os.Stat(local); err == nil {
		localStatus = "found"
	}

	runner := renderer.FallbackRunner(runtime.GOOS)
	runnerStatus := "not on PATH"
	if p, err := exec.LookPath(runner); err == nil {
		runnerStatus = "found at " + p
	}

	rows := [][]string{
		{"config", configFile},
		{"override", override},
		{"local", local, localStatus},
		{"npx", runner + " -y " + renderer.Package, runnerStatus},
		{"selected", inv.String(), "[" + string(inv.Source) + "]"},
		{"timeout", cfg.Renderer.Timeout.String()},
	}
	for _, row := range rows {
		for i := range row {
			row[i] = ascii.Truncate(row[i], doctorValueWidth)
		}
	}

	lines := append([]string{"mmdguard renderer resolution", ""}, ascii.Columns(rows)...)
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprint(out, ascii.Box(lines))

	check, _ := cmd.Flags().GetBool("check")
	if !check {
		return nil
	}

	ctx := cmd.Context()
	if cfg.Renderer.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Renderer.Timeout)
		defer cancel()
	}

	args := append(append([]string{}, inv.Prefix...), "--version")
	logger.Info("checking renderer", logger.String("command", inv.Command), logger.Strings("args", args))
	res, err := renderer.NewExecExecutor(root).Run(ctx, inv.Command, args)
	if err != nil {
		return fmt.Errorf("renderer check failed: %w", err)
	}
	if res.ExitCode != 0 {
		detail := strings.TrimSpace(string(res.Stderr))
		if detail == "" {
			detail = strings.TrimSpace(string(res.Stdout))
		}
		return fmt.Errorf("renderer check exited %d: %s", res.ExitCode, detail)
	}
	_, err = fmt.Fprintf(out, "renderer version: %s\n", strings.TrimSpace(string(res.Stdout)))
	return err
}
