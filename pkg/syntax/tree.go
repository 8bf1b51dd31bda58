// Package syntax provides the immutable, lossless syntax tree consumed by the
// formatting engine. It defines:
//   - Tree: the file content, line index, token stream and root node
//   - Token stream: every byte classified, whitespace included
//   - Nodes: structural elements referencing contiguous token spans
//
// A Tree is never mutated after its Builder finishes; formatting passes hold
// references into it and record their changes elsewhere.
package syntax

import "sort"

// Tree is an immutable, lossless view of one parsed source file.
type Tree struct {
	// Path is the file path (may be empty for in-memory content).
	Path string

	// Content is the full file bytes.
	Content []byte

	// Lines contains metadata for each line in the file.
	Lines []LineInfo

	// Tokens is the full token stream covering every byte.
	Tokens []*Token

	// Root is the root node spanning the whole file.
	Root *Node
}

// LineInfo holds metadata for a single line in a file.
type LineInfo struct {
	// StartOffset is the byte index of the line start.
	StartOffset int

	// NewlineStart is the byte index where newline characters begin.
	// For lines without a trailing newline (e.g., last line), this equals EndOffset.
	NewlineStart int

	// EndOffset is the byte index just after the newline (or end of file).
	EndOffset int
}

// Range represents a half-open byte range in the source content.
type Range struct {
	// StartOffset is the byte index where the range begins (inclusive).
	StartOffset int

	// EndOffset is the byte index where the range ends (exclusive).
	EndOffset int
}

// Len returns the length of the range in bytes.
func (r Range) Len() int {
	return r.EndOffset - r.StartOffset
}

// IsEmpty returns true if the range has zero length.
func (r Range) IsEmpty() bool {
	return r.StartOffset == r.EndOffset
}

// Contains returns true if the given offset is within this range.
func (r Range) Contains(offset int) bool {
	return offset >= r.StartOffset && offset < r.EndOffset
}

// ContainsRange returns true if other lies entirely within r.
func (r Range) ContainsRange(other Range) bool {
	return other.StartOffset >= r.StartOffset && other.EndOffset <= r.EndOffset
}

// BuildLines constructs line metadata from file content.
// It handles both LF (\n) and CRLF (\r\n) line endings.
func BuildLines(content []byte) []LineInfo {
	if len(content) == 0 {
		return []LineInfo{}
	}

	var lines []LineInfo
	lineStart := 0

	for idx, char := range content {
		if char != '\n' {
			continue
		}
		newlineStart := idx
		if idx > 0 && content[idx-1] == '\r' {
			newlineStart = idx - 1
		}
		lines = append(lines, LineInfo{
			StartOffset:  lineStart,
			NewlineStart: newlineStart,
			EndOffset:    idx + 1,
		})
		lineStart = idx + 1
	}

	// The last line may not have a trailing newline.
	lines = append(lines, LineInfo{
		StartOffset:  lineStart,
		NewlineStart: len(content),
		EndOffset:    len(content),
	})

	return lines
}

// LineCount returns the number of lines in the file.
func (t *Tree) LineCount() int {
	return len(t.Lines)
}

// LineAt converts a byte offset to 1-based line and column numbers.
// Column counts bytes, not runes.
// Returns (0, 0) if the offset is out of range.
func (t *Tree) LineAt(offset int) (int, int) {
	if offset < 0 || len(t.Lines) == 0 {
		return 0, 0
	}

	if offset >= len(t.Content) {
		lastLine := t.Lines[len(t.Lines)-1]
		return len(t.Lines), offset - lastLine.StartOffset + 1
	}

	lineIdx := sort.Search(len(t.Lines), func(i int) bool {
		return t.Lines[i].EndOffset > offset
	})
	if lineIdx >= len(t.Lines) {
		lineIdx = len(t.Lines) - 1
	}

	lineInfo := t.Lines[lineIdx]
	if offset < lineInfo.StartOffset {
		return 0, 0
	}

	return lineIdx + 1, offset - lineInfo.StartOffset + 1
}

// Offset converts 1-based line and column numbers to a byte offset.
// Returns (offset, true) on success, or (0, false) if out of range.
func (t *Tree) Offset(line, col int) (int, bool) {
	if line < 1 || line > len(t.Lines) || col < 1 {
		return 0, false
	}

	lineInfo := t.Lines[line-1]
	offset := lineInfo.StartOffset + col - 1
	if offset > lineInfo.EndOffset {
		return 0, false
	}

	return offset, true
}

// LineContent returns the content of a 1-based line number, excluding the newline.
// Returns nil if the line number is out of range.
func (t *Tree) LineContent(line int) []byte {
	if line < 1 || line > len(t.Lines) {
		return nil
	}

	lineInfo := t.Lines[line-1]
	return t.Content[lineInfo.StartOffset:lineInfo.NewlineStart]
}

// OriginalIndent returns the number of leading spaces and tabs on the line
// containing offset, as found in the original content.
func (t *Tree) OriginalIndent(offset int) int {
	line, _ := t.LineAt(offset)
	content := t.LineContent(line)
	width := 0
	for _, c := range content {
		if c != ' ' && c != '\t' {
			break
		}
		width++
	}
	return width
}

// TokenAt returns the index of the token covering offset, or -1.
func (t *Tree) TokenAt(offset int) int {
	idx := sort.Search(len(t.Tokens), func(i int) bool {
		return t.Tokens[i].EndOffset > offset
	})
	if idx >= len(t.Tokens) || t.Tokens[idx].StartOffset > offset {
		return -1
	}
	return idx
}

// Text returns the source text of a range.
func (t *Tree) Text(r Range) string {
	if r.StartOffset < 0 || r.EndOffset > len(t.Content) || r.StartOffset > r.EndOffset {
		return ""
	}
	return string(t.Content[r.StartOffset:r.EndOffset])
}
