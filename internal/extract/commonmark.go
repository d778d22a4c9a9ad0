/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package extract

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// CommonMarkExtractor walks a goldmark AST and returns fenced code blocks
// whose language is Language. Unlike RegexExtractor it honours CommonMark
// fence rules: closing fences must be on their own line, fences nest inside
// lists and block quotes, and an unterminated fence runs to end of document.
type CommonMarkExtractor struct {
	parser parser.Parser
}

// NewCommonMarkExtractor builds an extractor with GFM parsing enabled.
func NewCommonMarkExtractor() *CommonMarkExtractor {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	return &CommonMarkExtractor{parser: md.Parser()}
}

// Name implements Extractor.
func (e *CommonMarkExtractor) Name() string { return "commonmark" }

// Extract implements Extractor.
func (e *CommonMarkExtractor) Extract(src []byte) []Block {
	doc := e.parser.Parse(text.NewReader(src))

	var blocks []Block
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fenced, ok := n.(*ast.FencedCodeBlock)
		if !ok || fenced.Info == nil {
			return ast.WalkContinue, nil
		}
		if string(fenced.Language(src)) != Language {
			return ast.WalkSkipChildren, nil
		}

		var body strings.Builder
		lines := fenced.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			body.Write(seg.Value(src))
		}
		blocks = append(blocks, Block{
			Body: body.String(),
			Line: lineOf(src, fenced.Info.Segment.Start),
		})
		return ast.WalkSkipChildren, nil
	})
	return blocks
}

func lineOf(src []byte, offset int) int {
	if offset > len(src) {
		offset = len(src)
	}
	return bytes.Count(src[:offset], []byte{'\n'}) + 1
}
