// Package markdown formats Nix code embedded in Markdown fenced code blocks.
//
// Blocks are located with goldmark. Only the code between the fences is
// replaced; fences, info strings and the surrounding prose are untouched.
// Fences nested in containers that prefix every line (block quotes, list
// items) are skipped, since their code is not a contiguous byte range.
package markdown

import (
	"bytes"
	"context"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/yaklabco/gonixfmt/internal/logging"
	"github.com/yaklabco/gonixfmt/pkg/fix"
	"github.com/yaklabco/gonixfmt/pkg/langdetect"
)

// editReason is recorded on every block replacement.
const editReason = "markdown-block"

// Block is a fenced code block holding Nix.
type Block struct {
	// Info is the fence info string, empty for untagged blocks.
	Info string

	// Line is the 1-based line of the first code line.
	Line int

	// StartOffset and EndOffset delimit the code in the document.
	StartOffset int
	EndOffset   int
}

// Options controls which blocks are formatted.
type Options struct {
	// DetectUntagged formats untagged blocks that langdetect classifies as Nix.
	DetectUntagged bool
}

// FormatFunc formats the code of one block.
type FormatFunc func(ctx context.Context, code []byte) ([]byte, error)

// BlockError records a block that could not be formatted.
type BlockError struct {
	Line int
	Err  error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("code block at line %d: %v", e.Line, e.Err)
}

func (e *BlockError) Unwrap() error {
	return e.Err
}

// Result is the outcome of formatting a document.
type Result struct {
	Content []byte

	// Blocks is the number of Nix blocks found.
	Blocks int

	// Changed is the number of blocks whose code changed.
	Changed int

	// Errors lists blocks left as they were because formatting failed.
	Errors []*BlockError
}

// FindBlocks returns the Nix blocks of a document in source order.
func FindBlocks(content []byte, opts Options) ([]Block, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(text.NewReader(content))

	var blocks []Block
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fenced, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		block, ok := contiguous(fenced, content)
		if !ok {
			return ast.WalkSkipChildren, nil
		}
		code := content[block.StartOffset:block.EndOffset]
		if isNixBlock(block.Info, code, opts) {
			blocks = append(blocks, block)
		}
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk markdown: %w", err)
	}
	return blocks, nil
}

// contiguous maps a fenced block to its code range, or reports false when
// the code lines do not start their source lines or are not adjacent.
func contiguous(n *ast.FencedCodeBlock, content []byte) (Block, bool) {
	lines := n.Lines()
	if lines.Len() == 0 {
		return Block{}, false
	}

	for i := range lines.Len() {
		seg := lines.At(i)
		if seg.Padding != 0 || (seg.Start > 0 && content[seg.Start-1] != '\n') {
			return Block{}, false
		}
		if i > 0 && seg.Start != lines.At(i-1).Stop {
			return Block{}, false
		}
	}

	start := lines.At(0).Start
	info := ""
	if n.Info != nil {
		info = string(n.Info.Segment.Value(content))
	}
	return Block{
		Info:        info,
		Line:        bytes.Count(content[:start], []byte("\n")) + 1,
		StartOffset: start,
		EndOffset:   lines.At(lines.Len() - 1).Stop,
	}, true
}

func isNixBlock(info string, code []byte, opts Options) bool {
	if info != "" {
		return langdetect.IsNixTag(info)
	}
	return opts.DetectUntagged && langdetect.IsNix(code)
}

// Format runs fn over every Nix block and splices the results back. A block
// that fails to format is recorded in Result.Errors and left unchanged.
func Format(ctx context.Context, content []byte, fn FormatFunc, opts Options) (*Result, error) {
	logger := logging.FromContext(ctx)

	blocks, err := FindBlocks(content, opts)
	if err != nil {
		return nil, err
	}
	result := &Result{Content: content, Blocks: len(blocks)}

	builder := fix.NewEditBuilder()
	for _, b := range blocks {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("format cancelled: %w", err)
		}

		code := content[b.StartOffset:b.EndOffset]
		formatted, err := fn(ctx, code)
		if err != nil {
			logger.Debug("skipping code block", logging.FieldLine, b.Line, logging.FieldError, err)
			result.Errors = append(result.Errors, &BlockError{Line: b.Line, Err: err})
			continue
		}
		if bytes.Equal(code, formatted) {
			continue
		}
		builder.ReplaceRange(b.StartOffset, b.EndOffset, string(formatted), editReason)
		result.Changed++
	}

	if len(builder.Edits) == 0 {
		return result, nil
	}
	out, err := fix.Apply(content, builder.Edits)
	if err != nil {
		return nil, fmt.Errorf("splice code blocks: %w", err)
	}
	result.Content = out
	return result, nil
}
