/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/

// Package guard runs the end-to-end Mermaid validation: collect Markdown
// files, extract diagrams, stage each one in a scratch directory and render
// it with the Mermaid CLI, then aggregate failures into a Report.
package guard

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fulmenhq/mmdguard/internal/collect"
	"github.com/fulmenhq/mmdguard/internal/extract"
	"github.com/fulmenhq/mmdguard/internal/renderer"
	"github.com/fulmenhq/mmdguard/pkg/ignore"
	"github.com/fulmenhq/mmdguard/pkg/logger"
	"github.com/fulmenhq/mmdguard/pkg/safeio"
)

// Options configures a Runner.
type Options struct {
	// Root anchors relative targets, the node_modules probe and report paths.
	Root   string
	Target string

	Extractor extract.Extractor
	Matcher   *ignore.Matcher

	Locate    renderer.LocateOptions
	ExtraArgs []string
	Executor  renderer.Executor
	// Timeout bounds each renderer run; 0 disables it.
	Timeout time.Duration

	// ScratchParent is where the per-run scratch directory is created;
	// empty means os.TempDir().
	ScratchParent string
	KeepScratch   bool
	FailFast      bool
	VerifyOutput  bool
}

// Runner validates every diagram under a target, strictly sequentially.
type Runner struct {
	opts      Options
	collector *collect.Collector
}

// New validates options and fills defaults.
func New(opts Options) (*Runner, error) {
	if opts.Root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("determine working directory: %w", err)
		}
		opts.Root = wd
	}
	absRoot, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", opts.Root, err)
	}
	opts.Root = absRoot

	if opts.Extractor == nil {
		opts.Extractor = extract.RegexExtractor{}
	}
	if opts.Executor == nil {
		opts.Executor = renderer.NewExecExecutor(opts.Root)
	}
	if opts.Locate.Root == "" {
		opts.Locate.Root = opts.Root
	}
	if opts.Timeout < 0 {
		return nil, errors.New("timeout must not be negative")
	}

	c, err := collect.New(opts.Root, opts.Matcher)
	if err != nil {
		return nil, err
	}
	return &Runner{opts: opts, collector: c}, nil
}

// Discover collects Markdown files under the target and extracts their
// diagrams in file order, then document order. It returns the number of
// files scanned alongside the diagrams.
func (r *Runner) Discover() ([]Diagram, int, error) {
	files, err := r.collector.Collect(r.opts.Target)
	if err != nil {
		return nil, 0, err
	}
	base := r.collector.Resolve(r.opts.Target)

	var diagrams []Diagram
	for _, file := range files {
		src, err := safeio.ReadFileContained(base, file)
		if err != nil {
			return nil, 0, fmt.Errorf("read %s: %w", file, err)
		}
		blocks := r.opts.Extractor.Extract(src)
		for i, b := range blocks {
			diagrams = append(diagrams, Diagram{
				File:   file,
				Index:  i + 1,
				Line:   b.Line,
				Source: strings.TrimSpace(b.Body),
			})
		}
		if len(blocks) > 0 {
			logger.Debug("extracted diagrams", logger.String("file", file), logger.Int("count", len(blocks)))
		}
	}
	return diagrams, len(files), nil
}

// Run validates every diagram. Per-diagram failures are collected in the
// Report; the returned error is reserved for problems that stop the run
// (unreadable target, scratch directory or staging failures).
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		Target:   r.opts.Target,
		Root:     r.opts.Root,
		Failures: []Failure{},
	}

	diagrams, files, err := r.Discover()
	if err != nil {
		return nil, err
	}
	report.Files = files
	report.Diagrams = len(diagrams)
	if len(diagrams) == 0 {
		return report, nil
	}

	inv := renderer.Locate(r.opts.Locate)
	report.Renderer = &inv
	logger.Info("validating diagrams",
		logger.Int("diagrams", len(diagrams)),
		logger.Int("files", files),
		logger.String("renderer", inv.String()),
		logger.String("source", string(inv.Source)))

	scratch, err := os.MkdirTemp(r.opts.ScratchParent, "mmdguard-")
	if err != nil {
		return nil, fmt.Errorf("create scratch directory: %w", err)
	}
	report.ScratchDir = scratch
	defer func() {
		if r.opts.KeepScratch {
			logger.Info("keeping scratch directory", logger.String("path", scratch))
			return
		}
		if rmErr := os.RemoveAll(scratch); rmErr != nil {
			logger.Warn("failed to remove scratch directory", logger.String("path", scratch), logger.Err(rmErr))
		}
	}()

	for i, d := range diagrams {
		if ctx.Err() != nil {
			report.Interrupted = true
			logger.Warn("validation interrupted", logger.Int("checked", report.Checked), logger.Int("total", len(diagrams)))
			break
		}

		failure, err := r.validate(ctx, scratch, inv, d)
		if err != nil {
			return nil, err
		}
		report.Checked++
		if failure == nil {
			continue
		}
		report.Failures = append(report.Failures, *failure)

		if failure.Reason == ReasonCanceled {
			report.Interrupted = true
			break
		}
		if r.opts.FailFast && i < len(diagrams)-1 {
			report.Interrupted = true
			logger.Info("stopping after first failure", logger.Int("remaining", len(diagrams)-i-1))
			break
		}
	}

	return report, nil
}

// scratchBase names the staged files for a diagram, e.g. "my_guide.md-2".
func scratchBase(d Diagram) string {
	return safeio.SanitizeName(filepath.Base(d.File)) + "-" + strconv.Itoa(d.Index)
}

// validate renders one diagram. A nil Failure means it passed.
func (r *Runner) validate(ctx context.Context, scratch string, inv renderer.Invocation, d Diagram) (*Failure, error) {
	base := scratchBase(d)
	input := filepath.Join(scratch, base+".mmd")
	output := filepath.Join(scratch, base+".svg")

	if err := safeio.WriteFileContained(scratch, input, []byte(d.Source+"\n")); err != nil {
		return nil, fmt.Errorf("stage diagram %s #%d: %w", d.File, d.Index, err)
	}

	// Scratch names repeat across directories; a stale output must not verify.
	if err := os.Remove(output); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("clear output for %s #%d: %w", d.File, d.Index, err)
	}

	runCtx := ctx
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	res, err := r.opts.Executor.Run(runCtx, inv.Command, inv.Args(r.opts.ExtraArgs, input, output))
	if err != nil {
		f := &Failure{Diagram: d, ExitCode: -1, Message: err.Error()}
		if res != nil {
			f.Stderr = trimOutput(res.Stderr)
			f.Stdout = trimOutput(res.Stdout)
		}
		switch {
		case ctx.Err() != nil:
			f.Reason = ReasonCanceled
		case errors.Is(err, context.DeadlineExceeded):
			f.Reason = ReasonTimeout
			f.Message = fmt.Sprintf("renderer timed out after %s", r.opts.Timeout)
		default:
			f.Reason = ReasonLaunch
		}
		logger.Debug("diagram failed", logger.String("file", d.File), logger.Int("index", d.Index), logger.String("reason", string(f.Reason)))
		return f, nil
	}

	logger.Debug("diagram rendered",
		logger.String("file", d.File),
		logger.Int("index", d.Index),
		logger.Int("exit_code", res.ExitCode),
		logger.Duration("took", res.Duration))

	if res.ExitCode != 0 {
		return &Failure{
			Diagram:  d,
			Reason:   ReasonExit,
			ExitCode: res.ExitCode,
			Stderr:   trimOutput(res.Stderr),
			Stdout:   trimOutput(res.Stdout),
		}, nil
	}

	if r.opts.VerifyOutput {
		if err := verifySVG(output); err != nil {
			return &Failure{Diagram: d, Reason: ReasonOutput, Message: err.Error()}, nil
		}
	}
	return nil, nil
}
