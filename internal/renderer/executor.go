/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package renderer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// Result captures one finished renderer process.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
}

// Executor runs a renderer command to completion.
type Executor interface {
	// Run returns a Result for any process that started and exited, including
	// non-zero exits. The error is reserved for launch failures and context
	// cancellation; in the latter case the partial Result is returned too.
	Run(ctx context.Context, command string, args []string) (*Result, error)
}

// ExecExecutor runs commands with os/exec.
type ExecExecutor struct {
	// Dir is the working directory (defaults to the current directory).
	Dir string
	// Env contains additional environment variables
	Env map[string]string
	// WaitDelay bounds how long output pipes are drained after a kill.
	// npx can leave a headless browser holding them open.
	WaitDelay time.Duration
}

// NewExecExecutor returns an executor rooted at dir.
func NewExecExecutor(dir string) *ExecExecutor {
	return &ExecExecutor{Dir: dir, WaitDelay: 5 * time.Second}
}

// Run implements Executor.
func (e *ExecExecutor) Run(ctx context.Context, command string, args []string) (*Result, error) {
	// #nosec G204 -- command comes from the locator or explicit user configuration
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = e.Dir
	cmd.WaitDelay = e.WaitDelay

	if len(e.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range e.Env {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
		}
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()

	result := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		result.ExitCode = -1
		return result, fmt.Errorf("%s interrupted after %s: %w", command, result.Duration.Round(time.Millisecond), ctxErr)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Non-zero exit is a validation outcome, not an execution error.
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return nil, fmt.Errorf("failed to execute %s: %w", command, err)
	}

	return result, nil
}
