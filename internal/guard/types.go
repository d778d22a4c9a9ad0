/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package guard

import (
	"path/filepath"
	"strings"

	"github.com/fulmenhq/mmdguard/internal/renderer"
)

// UnknownError is reported for a failed render that printed nothing.
const UnknownError = "Unknown Mermaid parser error."

// Diagram is one extracted diagram awaiting validation.
type Diagram struct {
	File string `json:"file" yaml:"file"`
	// Index is 1-based within File, in document order.
	Index int `json:"index" yaml:"index"`
	// Line is the 1-based line of the opening fence.
	Line   int    `json:"line" yaml:"line"`
	Source string `json:"-" yaml:"-"`
}

// Reason classifies a failure.
type Reason string

const (
	ReasonExit     Reason = "exit"
	ReasonTimeout  Reason = "timeout"
	ReasonCanceled Reason = "canceled"
	ReasonLaunch   Reason = "launch"
	ReasonOutput   Reason = "output"
)

// Failure is a diagram the renderer rejected, with its captured output.
type Failure struct {
	Diagram  `yaml:",inline"`
	Reason   Reason `json:"reason" yaml:"reason"`
	ExitCode int    `json:"exit_code" yaml:"exit_code"`
	Stderr   string `json:"stderr,omitempty" yaml:"stderr,omitempty"`
	Stdout   string `json:"stdout,omitempty" yaml:"stdout,omitempty"`
	Message  string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Detail is the text shown under a failure: stderr, else stdout, else
// UnknownError. Failures the runner diagnosed itself (timeouts, launch and
// output errors) lead with the runner's message.
func (f Failure) Detail() string {
	output := f.Stderr
	if output == "" {
		output = f.Stdout
	}

	if f.Message != "" && f.Reason != ReasonExit {
		if output == "" {
			return f.Message
		}
		return f.Message + "\n" + output
	}

	if output == "" {
		return UnknownError
	}
	return output
}

// Report is the outcome of a run.
type Report struct {
	// Target is the scan target as given by the user.
	Target string `json:"target" yaml:"target"`
	// Root is the directory relative paths are reported against.
	Root     string               `json:"root" yaml:"root"`
	Files    int                  `json:"files" yaml:"files"`
	Diagrams int                  `json:"diagrams" yaml:"diagrams"`
	Checked  int                  `json:"checked" yaml:"checked"`
	Failures []Failure            `json:"failures" yaml:"failures"`
	Renderer *renderer.Invocation `json:"renderer,omitempty" yaml:"renderer,omitempty"`
	// Interrupted is set when cancellation or fail-fast stopped the loop early.
	Interrupted bool `json:"interrupted,omitempty" yaml:"interrupted,omitempty"`

	ScratchDir string `json:"-" yaml:"-"`
}

// Passed reports whether every checked diagram rendered.
func (r *Report) Passed() bool {
	return len(r.Failures) == 0 && !r.Interrupted
}

// RelPath renders file relative to the root when possible.
func (r *Report) RelPath(file string) string {
	if r.Root == "" {
		return file
	}
	rel, err := filepath.Rel(r.Root, file)
	if err != nil || rel == "" {
		return file
	}
	return rel
}

func trimOutput(b []byte) string {
	return strings.TrimSpace(string(b))
}
