package engine

import (
	"fmt"
	"strings"

	"github.com/yaklabco/gonixfmt/pkg/fix"
	"github.com/yaklabco/gonixfmt/pkg/syntax"
)

// BlockPosition selects the whitespace on one side of an element.
type BlockPosition uint8

const (
	// BlockBefore is the whitespace preceding an element.
	BlockBefore BlockPosition = iota
	// BlockAfter is the whitespace following an element.
	BlockAfter
)

// Model is the mutable whitespace overlay for one formatting run. The tree it
// wraps is never modified; every change is recorded in a SpaceBlock or as a
// raw edit and flattened by IntoDiff.
type Model struct {
	tree   *syntax.Tree
	opts   Options
	eol    string
	blocks map[syntax.Range]*SpaceBlock
	raw    []fix.TextEdit

	// shifts maps the index of a string content token to the column delta
	// applied to its continuation lines.
	shifts map[int]int
}

// NewModel creates an overlay for tree.
func NewModel(tree *syntax.Tree, opts Options) *Model {
	return &Model{
		tree:   tree,
		opts:   opts.withDefaults(),
		eol:    detectEOL(tree.Content),
		blocks: make(map[syntax.Range]*SpaceBlock),
		shifts: make(map[int]int),
	}
}

// Tree returns the underlying tree.
func (m *Model) Tree() *syntax.Tree {
	return m.tree
}

// Options returns the effective options.
func (m *Model) Options() Options {
	return m.opts
}

// BlockFor returns the whitespace block on the given side of e, creating it
// on first use. Adjacent elements share the block between them.
func (m *Model) BlockFor(e syntax.Element, pos BlockPosition) *SpaceBlock {
	tokens := m.tree.Tokens
	r := e.Range()

	if pos == BlockBefore {
		if idx := e.FirstToken() - 1; idx >= 0 && idx < len(tokens) && tokens[idx].Kind == syntax.TokWhitespace {
			return m.block(tokens[idx].Range())
		}
		return m.block(syntax.Range{StartOffset: r.StartOffset, EndOffset: r.StartOffset})
	}

	if idx := e.LastToken() + 1; idx > 0 && idx < len(tokens) && tokens[idx].Kind == syntax.TokWhitespace {
		return m.block(tokens[idx].Range())
	}
	return m.block(syntax.Range{StartOffset: r.EndOffset, EndOffset: r.EndOffset})
}

func (m *Model) block(r syntax.Range) *SpaceBlock {
	if b, ok := m.blocks[r]; ok {
		return b
	}

	original := m.tree.Text(r)
	b := &SpaceBlock{
		rng:         r,
		original:    original,
		text:        original,
		eol:         m.eol,
		maxNewlines: m.opts.MaxBlankLines + 1,
		atFileStart: r.StartOffset == 0,
		atFileEnd:   r.EndOffset == len(m.tree.Content),
	}
	if strings.Contains(original, "\r\n") {
		b.eol = "\r\n"
	}
	if r.StartOffset > 0 {
		if idx := m.tree.TokenAt(r.StartOffset - 1); idx >= 0 {
			tok := m.tree.Tokens[idx]
			b.afterLineComment = tok.Kind == syntax.TokComment && strings.HasPrefix(tok.Text(), "#")
		}
	}
	m.blocks[r] = b
	return b
}

// existing returns the block with range r if it has been created.
func (m *Model) existing(r syntax.Range) (*SpaceBlock, bool) {
	b, ok := m.blocks[r]
	return b, ok
}

// RawEdit records a substitution over an arbitrary range of the original
// content. Raw edits must not overlap each other or any changed block.
func (m *Model) RawEdit(r syntax.Range, text, reason string) {
	m.raw = append(m.raw, fix.TextEdit{
		StartOffset: r.StartOffset,
		EndOffset:   r.EndOffset,
		NewText:     text,
		Reason:      reason,
	})
}

// LineIndent returns the indentation column of the line e starts on, as it
// reads after the changes recorded so far.
func (m *Model) LineIndent(e syntax.Element) int {
	tokens := m.tree.Tokens
	i := e.FirstToken()
	if i < 0 || i >= len(tokens) {
		return 0
	}

	// Walk backwards gap by gap until a line break is found.
	for {
		var gap string
		prev := i - 1
		if prev >= 0 && tokens[prev].Kind == syntax.TokWhitespace {
			gap = m.block(tokens[prev].Range()).Text()
			prev--
		} else if b, ok := m.existing(syntax.Range{StartOffset: tokens[i].StartOffset, EndOffset: tokens[i].StartOffset}); ok {
			gap = b.Text()
		}
		if nl := strings.LastIndexByte(gap, '\n'); nl >= 0 {
			return len(gap) - nl - 1
		}
		if prev < 0 {
			return leadingWidth(gap)
		}

		text := tokens[prev].Text()
		if nl := strings.LastIndexByte(text, '\n'); nl >= 0 {
			line := text[nl+1:]
			return shiftedWidth(line, m.shifts[prev])
		}
		i = prev
	}
}

// StartsLine reports whether e is the first thing on its line: the
// whitespace before it holds a line break, or nothing but whitespace
// precedes it in the file.
func (m *Model) StartsLine(e syntax.Element) bool {
	if m.BlockFor(e, BlockBefore).HasNewline() {
		return true
	}
	for i := e.FirstToken() - 1; i >= 0; i-- {
		if m.tree.Tokens[i].Kind != syntax.TokWhitespace {
			return false
		}
	}
	return true
}

// IntoDiff flattens the overlay into an ordered, range-disjoint edit list.
// The model must not be used afterwards.
func (m *Model) IntoDiff() (*Diff, error) {
	edits := make([]fix.TextEdit, 0, len(m.blocks)+len(m.raw))
	for _, b := range m.blocks {
		if !b.Changed() {
			continue
		}
		edits = append(edits, fix.TextEdit{
			StartOffset: b.rng.StartOffset,
			EndOffset:   b.rng.EndOffset,
			NewText:     b.text,
			Reason:      b.reason,
		})
	}
	edits = append(edits, m.raw...)

	prepared, err := fix.PrepareEdits(edits, len(m.tree.Content))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEdits, err)
	}
	if err := checkInsertions(prepared); err != nil {
		return nil, err
	}
	return &Diff{Edits: prepared}, nil
}

// checkInsertions rejects two insertions at the same offset, which
// PrepareEdits accepts but which have no defined order.
func checkInsertions(edits []fix.TextEdit) error {
	for i := 1; i < len(edits); i++ {
		prev, curr := edits[i-1], edits[i]
		if prev.Len() == 0 && curr.Len() == 0 && prev.StartOffset == curr.StartOffset {
			return fmt.Errorf("%w: two insertions at offset %d (%s, %s)",
				ErrInvalidEdits, curr.StartOffset, prev.Reason, curr.Reason)
		}
	}
	return nil
}

// SpaceBlock is a run of whitespace between two adjacent significant
// elements, possibly empty.
type SpaceBlock struct {
	rng      syntax.Range
	original string
	text     string
	reason   string
	eol      string

	maxNewlines      int
	atFileStart      bool
	atFileEnd        bool
	afterLineComment bool
}

// Range returns the original byte range of the block.
func (b *SpaceBlock) Range() syntax.Range { return b.rng }

// Text returns the current text.
func (b *SpaceBlock) Text() string { return b.text }

// Original returns the text in the source.
func (b *SpaceBlock) Original() string { return b.original }

// Reason returns the name of the rule that last changed the block.
func (b *SpaceBlock) Reason() string { return b.reason }

// Changed reports whether the current text differs from the source.
func (b *SpaceBlock) Changed() bool { return b.text != b.original }

// HasNewline reports whether the current text contains a line break.
func (b *SpaceBlock) HasNewline() bool {
	return strings.IndexByte(b.text, '\n') >= 0
}

// NewlineCount returns the number of line breaks in the current text.
func (b *SpaceBlock) NewlineCount() int {
	return strings.Count(b.text, "\n")
}

// SetText replaces the block. A block that follows a line comment keeps a
// line break, since joining would pull code into the comment.
func (b *SpaceBlock) SetText(text, reason string) {
	if b.afterLineComment && !b.atFileEnd && strings.IndexByte(text, '\n') < 0 {
		b.SetLineBreakPreservingExistingNewlines(reason)
		return
	}
	b.set(text, reason)
}

// SetLineBreakPreservingExistingNewlines ensures the block holds at least one
// line break. Blocks that already break the line are left alone.
func (b *SpaceBlock) SetLineBreakPreservingExistingNewlines(reason string) {
	if b.HasNewline() {
		return
	}
	b.set(b.eol, reason)
}

// SetIndent makes the block end a line and indents the next one to col.
// Existing blank lines are kept up to the configured maximum. At the start
// of the file only the indentation is written.
func (b *SpaceBlock) SetIndent(col int, reason string) {
	indent := strings.Repeat(" ", max(col, 0))
	if b.atFileStart {
		b.set(indent, reason)
		return
	}
	n := min(max(b.NewlineCount(), 1), max(b.maxNewlines, 1))
	b.set(strings.Repeat(b.eol, n)+indent, reason)
}

func (b *SpaceBlock) set(text, reason string) {
	if text == b.text {
		return
	}
	b.text = text
	b.reason = reason
}

func detectEOL(content []byte) string {
	for i, c := range content {
		if c == '\n' {
			if i > 0 && content[i-1] == '\r' {
				return "\r\n"
			}
			return "\n"
		}
	}
	return "\n"
}

// shiftedWidth is the indentation of line after a string fix-up moved it
// by delta columns.
func shiftedWidth(line string, delta int) int {
	w := leadingWidth(line)
	if delta < 0 {
		return w - min(-delta, leadingSpaces(line))
	}
	return w + delta
}

func leadingWidth(s string) int {
	n := 0
	for n < len(s) && (s[n] == ' ' || s[n] == '\t') {
		n++
	}
	return n
}
