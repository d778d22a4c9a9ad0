/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/

// Package extract finds Mermaid diagram sources in Markdown text.
package extract

import (
	"bytes"
	"fmt"
	"regexp"
)

// Language is the fence info string that marks a diagram block. It is
// matched case-sensitively.
const Language = "mermaid"

// Block is one diagram body exactly as it appears in the document. Bodies
// are not trimmed here; callers trim at the point of use.
type Block struct {
	Body string
	// Line is the 1-based line of the opening fence.
	Line int
}

// Extractor returns the diagram blocks of a document in document order.
type Extractor interface {
	Extract(src []byte) []Block
	Name() string
}

// New returns the extractor registered under mode ("regex" or "commonmark").
func New(mode string) (Extractor, error) {
	switch mode {
	case "", "regex":
		return RegexExtractor{}, nil
	case "commonmark":
		return NewCommonMarkExtractor(), nil
	default:
		return nil, fmt.Errorf("unknown extractor %q", mode)
	}
}

// blockPattern matches an opening ```mermaid fence, optional whitespace and a
// newline, then everything up to the nearest closing ```. An opening fence
// with no closing fence after it never matches.
var blockPattern = regexp.MustCompile("(?s)```" + Language + anyWhitespace + `*\n(.*?)` + "```")

// anyWhitespace is Unicode whitespace: RE2's \s is ASCII only and omits \v.
const anyWhitespace = `[\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}]`

// RegexExtractor is a flat scanner: no nesting, no indentation rules, and
// the closing fence may appear anywhere (even mid-line).
type RegexExtractor struct{}

// Name implements Extractor.
func (RegexExtractor) Name() string { return "regex" }

// Extract implements Extractor.
func (RegexExtractor) Extract(src []byte) []Block {
	matches := blockPattern.FindAllSubmatchIndex(src, -1)
	if len(matches) == 0 {
		return nil
	}

	blocks := make([]Block, 0, len(matches))
	line, offset := 1, 0
	for _, m := range matches {
		line += bytes.Count(src[offset:m[0]], []byte{'\n'})
		offset = m[0]
		blocks = append(blocks, Block{
			Body: string(src[m[2]:m[3]]),
			Line: line,
		})
	}
	return blocks
}
