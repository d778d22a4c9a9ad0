/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fulmenhq/mmdguard/internal/extract"
	"github.com/fulmenhq/mmdguard/internal/guard"
	"github.com/fulmenhq/mmdguard/internal/renderer"
	"github.com/fulmenhq/mmdguard/internal/report"
	"github.com/fulmenhq/mmdguard/pkg/buildinfo"
	"github.com/fulmenhq/mmdguard/pkg/config"
	"github.com/fulmenhq/mmdguard/pkg/exitcode"
	"github.com/fulmenhq/mmdguard/pkg/ignore"
	"github.com/fulmenhq/mmdguard/pkg/logger"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// exitError carries a non-zero exit code for an outcome that has already
// been reported, so Execute exits without printing anything further.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d (%s)", e.code, exitcode.String(e.code))
}

// newRootCommand creates a fresh root command instance.
// This factory pattern allows tests to create isolated command trees without shared state.
func newRootCommand() *cobra.Command {
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "mmdguard [target]",
		Short: "Validate Mermaid diagrams embedded in Markdown",
		Long: `mmdguard finds every fenced mermaid block in the Markdown files under a
target (default: docs) and renders each one with the Mermaid CLI (mmdc).
Any diagram the renderer rejects is reported with its file and position,
and the command exits non-zero.

The renderer is resolved once per run: --renderer or MMDGUARD_RENDERER,
then node_modules/.bin/mmdc under the working directory, then
npx -y @mermaid-js/mermaid-cli.

Examples:
   mmdguard                       # Validate diagrams under ./docs
   mmdguard README.md             # Validate a single file
   mmdguard --format json docs    # Machine-readable report
   mmdguard doctor                # Show how the renderer is resolved`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initializeLogger(cmd)
		},
		RunE: runGuard,
	}

	// Global flags
	cmd.PersistentFlags().String("log-level", "warn", "Set log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json-logs", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	cmd.PersistentFlags().String("config", "", "Config file (default: .mmdguard.yaml in the working directory)")

	// Validation flags; names are mapped to config keys by config.FlagKeys.
	cmd.Flags().String("renderer", "", "Renderer command, skipping the node_modules and npx probes")
	cmd.Flags().Duration("timeout", defaults.Renderer.Timeout, "Per-diagram renderer timeout (0 disables)")
	cmd.Flags().Bool("fail-fast", false, "Stop at the first failing diagram")
	cmd.Flags().StringSlice("exclude", nil, "Glob of paths to skip, relative to the working directory (repeatable)")
	cmd.Flags().Bool("gitignore", false, "Also skip paths matched by .gitignore files")
	cmd.Flags().String("extractor", defaults.Extractor, "Block extractor (regex|commonmark)")
	cmd.Flags().String("format", defaults.Format, "Report format (text|json|yaml)")
	cmd.Flags().Bool("keep-scratch", false, "Keep the scratch directory for inspection")
	cmd.Flags().Bool("verify-output", false, "Require each render to produce a well-formed SVG")
	cmd.Flags().String("scratch-dir", "", "Parent directory for the scratch directory (default: system temp)")

	cmd.Version = buildinfo.BinaryVersion
	cmd.SetVersionTemplate("mmdguard {{.Version}}\n")

	registerSubcommands(cmd)
	return cmd
}

// registerSubcommands adds all subcommands to the root command.
func registerSubcommands(cmd *cobra.Command) {
	cmd.AddCommand(newVersionCommand())
	cmd.AddCommand(newDoctorCommand())
}

// Execute runs the CLI and exits with the resulting code.
// This is called by main.main().
func Execute() {
	cmd := newRootCommand()
	os.Exit(exitCodeFor(cmd, cmd.Execute()))
}

// exitCodeFor maps a command error to a process exit code, printing the
// error unless it was already reported.
func exitCodeFor(cmd *cobra.Command, err error) int {
	if err == nil {
		return exitcode.Success
	}

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}

	logger.Debug("Command execution failed", logger.Err(err))
	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	if errors.Is(err, config.ErrInvalid) {
		return exitcode.ConfigError
	}
	return exitcode.GeneralError
}

// initializeLogger sets up the logger based on command flags
func initializeLogger(cmd *cobra.Command) error {
	logLevelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json-logs")

	return logger.Initialize(logger.Config{
		Level:     logger.ParseLevel(logLevelStr, logger.WarnLevel),
		UseColor:  useColor(cmd, cmd.ErrOrStderr()),
		JSON:      jsonLogs,
		Component: "mmdguard",
		Output:    cmd.ErrOrStderr(),
	})
}

// useColor reports whether output written to w may carry ANSI colour:
// --no-color, NO_COLOR and TERM=dumb disable it, and w must be a terminal.
func useColor(cmd *cobra.Command, w io.Writer) bool {
	noColor, _ := cmd.Flags().GetBool("no-color")
	if noColor || os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// loadConfig resolves configuration for the working directory.
func loadConfig(cmd *cobra.Command, root string) (*config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(config.LoadOptions{Root: root, File: file, Flags: cmd.Flags()})
	if err != nil {
		return nil, err
	}
	if cfg.File != "" {
		logger.Debug("loaded config file", logger.String("path", cfg.File))
	}
	return cfg, nil
}

func runGuard(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determine working directory: %w", err)
	}

	cfg, err := loadConfig(cmd, root)
	if err != nil {
		return err
	}
	if len(args) == 1 {
		cfg.Target = args[0]
	}

	matcher, err := ignore.NewMatcher(ignore.Options{Root: root, Exclude: cfg.Exclude, Gitignore: cfg.Gitignore})
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}
	extractor, err := extract.New(cfg.Extractor)
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}

	runner, err := guard.New(guard.Options{
		Root:      root,
		Target:    cfg.Target,
		Extractor: extractor,
		Matcher:   matcher,
		Locate: renderer.LocateOptions{
			Root:    root,
			Command: cfg.Renderer.Command,
			Args:    cfg.Renderer.Args,
		},
		ExtraArgs:     cfg.Renderer.ExtraArgs,
		Timeout:       cfg.Renderer.Timeout,
		ScratchParent: cfg.ScratchDir,
		KeepScratch:   cfg.KeepScratch,
		FailFast:      cfg.FailFast,
		VerifyOutput:  cfg.VerifyOutput,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	w := &report.Writer{
		Stdout:   cmd.OutOrStdout(),
		Stderr:   cmd.ErrOrStderr(),
		Format:   cfg.Format,
		Color:    useColor(cmd, cmd.OutOrStdout()),
		ErrColor: useColor(cmd, cmd.ErrOrStderr()),
	}
	if err := w.Write(result); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if !result.Passed() {
		return &exitError{code: exitcode.ValidationError}
	}
	return nil
}
