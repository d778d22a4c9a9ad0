/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/

// Package report renders a guard.Report for humans (text) or tools (JSON, YAML).
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/fulmenhq/mmdguard/internal/guard"
	"github.com/fulmenhq/mmdguard/internal/renderer"
	"gopkg.in/yaml.v3"
)

// Formats.
const (
	Text = "text"
	JSON = "json"
	YAML = "yaml"
)

// Writer sends summary lines to Stdout and the failure section to Stderr.
// Colour is decided per stream.
type Writer struct {
	Stdout   io.Writer
	Stderr   io.Writer
	Format   string
	Color    bool
	ErrColor bool
}

// Write renders r in the writer's format.
func (w *Writer) Write(r *guard.Report) error {
	switch w.Format {
	case "", Text:
		return w.writeText(r)
	case JSON:
		enc := json.NewEncoder(w.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(newDocument(r))
	case YAML:
		enc := yaml.NewEncoder(w.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(newDocument(r)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown report format %q", w.Format)
	}
}

type palette struct {
	fail  *color.Color
	pass  *color.Color
	entry *color.Color
	warn  *color.Color
}

func (w *Writer) palette() palette {
	p := palette{
		fail:  color.New(color.FgRed, color.Bold),
		pass:  color.New(color.FgGreen),
		entry: color.New(color.FgYellow),
		warn:  color.New(color.FgYellow, color.Bold),
	}
	setColor(p.pass, w.Color)
	for _, c := range []*color.Color{p.fail, p.entry, p.warn} {
		setColor(c, w.ErrColor)
	}
	return p
}

func setColor(c *color.Color, enabled bool) {
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
}

func (w *Writer) writeText(r *guard.Report) error {
	p := w.palette()

	if r.Diagrams == 0 {
		_, err := fmt.Fprintf(w.Stdout, "No Mermaid blocks found under: %s\n", r.Target)
		return err
	}

	if len(r.Failures) > 0 {
		if _, err := fmt.Fprintln(w.Stderr, p.fail.Sprintf("Mermaid validation failed for %d diagram(s):", len(r.Failures))); err != nil {
			return err
		}
		for _, f := range r.Failures {
			heading := fmt.Sprintf("- %s (diagram #%d)", r.RelPath(f.File), f.Index)
			if _, err := fmt.Fprintf(w.Stderr, "\n%s\n%s\n", p.entry.Sprint(heading), f.Detail()); err != nil {
				return err
			}
		}
	}

	if r.Interrupted {
		_, err := fmt.Fprintln(w.Stderr, p.warn.Sprintf("Mermaid validation stopped early: %d of %d diagram(s) checked under %s", r.Checked, r.Diagrams, r.Target))
		return err
	}
	if len(r.Failures) > 0 {
		return nil
	}

	_, err := fmt.Fprintln(w.Stdout, p.pass.Sprintf("Mermaid validation passed: %d diagram(s) checked under %s", r.Diagrams, r.Target))
	return err
}

type document struct {
	Passed      bool                 `json:"passed" yaml:"passed"`
	Target      string               `json:"target" yaml:"target"`
	Files       int                  `json:"files" yaml:"files"`
	Diagrams    int                  `json:"diagrams" yaml:"diagrams"`
	Checked     int                  `json:"checked" yaml:"checked"`
	Interrupted bool                 `json:"interrupted" yaml:"interrupted"`
	Renderer    *renderer.Invocation `json:"renderer,omitempty" yaml:"renderer,omitempty"`
	Failures    []failure            `json:"failures" yaml:"failures"`
}

type failure struct {
	File     string       `json:"file" yaml:"file"`
	Index    int          `json:"index" yaml:"index"`
	Line     int          `json:"line" yaml:"line"`
	Reason   guard.Reason `json:"reason" yaml:"reason"`
	ExitCode int          `json:"exit_code" yaml:"exit_code"`
	Detail   string       `json:"detail" yaml:"detail"`
}

func newDocument(r *guard.Report) document {
	doc := document{
		Passed:      r.Passed(),
		Target:      r.Target,
		Files:       r.Files,
		Diagrams:    r.Diagrams,
		Checked:     r.Checked,
		Interrupted: r.Interrupted,
		Renderer:    r.Renderer,
		Failures:    make([]failure, 0, len(r.Failures)),
	}
	for _, f := range r.Failures {
		doc.Failures = append(doc.Failures, failure{
			File:     r.RelPath(f.File),
			Index:    f.Index,
			Line:     f.Line,
			Reason:   f.Reason,
			ExitCode: f.ExitCode,
			Detail:   f.Detail(),
		})
	}
	return doc
}
