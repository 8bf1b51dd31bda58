package fix

import (
	"fmt"
	"strings"
)

// Diff is a unified, line-based diff between a file and its formatted form.
type Diff struct {
	// Path is used in the ---/+++ headers.
	Path string

	Original []byte
	Modified []byte

	Hunks []DiffHunk

	// Additions and Deletions count changed lines over all hunks.
	Additions int
	Deletions int
}

// DiffHunk is one @@ section of a unified diff.
type DiffHunk struct {
	// OriginalStart and ModifiedStart are 1-based line numbers.
	OriginalStart int
	OriginalCount int
	ModifiedStart int
	ModifiedCount int

	Lines []DiffLine
}

// DiffLine is a single line of a hunk.
type DiffLine struct {
	Kind DiffLineKind

	// Content is the line without its prefix or line break.
	Content string

	// NoEOL marks the last line of a file that does not end in a newline.
	NoEOL bool
}

// DiffLineKind tells context, added and removed lines apart.
type DiffLineKind int

// Line kinds.
const (
	DiffLineContext DiffLineKind = iota
	DiffLineAdd
	DiffLineRemove
)

// contextLines is the number of unchanged lines shown around a change.
const contextLines = 3

// noNewlineMarker follows a line that is not terminated in the file.
const noNewlineMarker = `\ No newline at end of file`

// line is one line of input as compared by the diff.
type line struct {
	text  string
	noEOL bool
}

// GenerateDiff returns the unified diff from original to modified, or nil
// if they are identical. A change limited to the final line break, which is
// common for a formatter, produces a hunk.
func GenerateDiff(path string, original, modified []byte) *Diff {
	if string(original) == string(modified) {
		return nil
	}

	ops := diffLines(splitLines(original), splitLines(modified))
	hunks := groupHunks(ops)
	if len(hunks) == 0 {
		return nil
	}

	d := &Diff{
		Path:     path,
		Original: original,
		Modified: modified,
		Hunks:    hunks,
	}
	for _, h := range hunks {
		for _, l := range h.Lines {
			switch l.Kind {
			case DiffLineAdd:
				d.Additions++
			case DiffLineRemove:
				d.Deletions++
			}
		}
	}
	return d
}

// GitHeader returns the "diff --git" header line.
func (d *Diff) GitHeader() string {
	if d == nil {
		return ""
	}
	path := strings.TrimPrefix(d.Path, "/")
	return fmt.Sprintf("diff --git a/%s b/%s", path, path)
}

// String renders the diff without the git header.
func (d *Diff) String() string {
	if !d.HasChanges() {
		return ""
	}

	path := strings.TrimPrefix(d.Path, "/")

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- a/%s\n", path)
	fmt.Fprintf(&sb, "+++ b/%s\n", path)

	for _, h := range d.Hunks {
		fmt.Fprintf(&sb, "@@ -%d,%d +%d,%d @@\n",
			h.OriginalStart, h.OriginalCount, h.ModifiedStart, h.ModifiedCount)
		for _, l := range h.Lines {
			switch l.Kind {
			case DiffLineAdd:
				sb.WriteByte('+')
			case DiffLineRemove:
				sb.WriteByte('-')
			default:
				sb.WriteByte(' ')
			}
			sb.WriteString(l.Content)
			sb.WriteByte('\n')
			if l.NoEOL {
				sb.WriteString(noNewlineMarker)
				sb.WriteByte('\n')
			}
		}
	}
	return sb.String()
}

// FullString renders the diff including the git header.
func (d *Diff) FullString() string {
	if !d.HasChanges() {
		return ""
	}
	return d.GitHeader() + "\n" + d.String()
}

// HasChanges reports whether the diff has at least one hunk.
func (d *Diff) HasChanges() bool {
	return d != nil && len(d.Hunks) > 0
}

// splitLines splits content on "\n". A carriage return stays part of the line.
func splitLines(content []byte) []line {
	if len(content) == 0 {
		return nil
	}
	parts := strings.Split(string(content), "\n")
	lines := make([]line, 0, len(parts))
	for _, p := range parts {
		lines = append(lines, line{text: p})
	}
	if last := len(lines) - 1; lines[last].text == "" {
		lines = lines[:last]
	} else {
		lines[last].noEOL = true
	}
	return lines
}

// op is one step of an edit script: a kept, removed or added line.
type op struct {
	kind DiffLineKind
	line line
}

// diffLines computes an edit script from a longest common subsequence
// table. Removals are emitted before additions within a change.
func diffLines(orig, mod []line) []op {
	n, m := len(orig), len(mod)

	// lcs[i][j] is the LCS length of orig[i:] and mod[j:].
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if orig[i] == mod[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	ops := make([]op, 0, n+m)
	i, j := 0, 0
	for i < n || j < m {
		switch {
		case i < n && j < m && orig[i] == mod[j]:
			ops = append(ops, op{kind: DiffLineContext, line: orig[i]})
			i++
			j++
		case j >= m || (i < n && lcs[i+1][j] >= lcs[i][j+1]):
			ops = append(ops, op{kind: DiffLineRemove, line: orig[i]})
			i++
		default:
			ops = append(ops, op{kind: DiffLineAdd, line: mod[j]})
			j++
		}
	}
	return ops
}

// groupHunks cuts the edit script into hunks with contextLines of context,
// merging changes whose context would overlap.
func groupHunks(ops []op) []DiffHunk {
	var hunks []DiffHunk

	origLine, modLine := 1, 1
	// Line numbers before each op, for hunk headers.
	origAt := make([]int, len(ops))
	modAt := make([]int, len(ops))
	for k, o := range ops {
		origAt[k], modAt[k] = origLine, modLine
		if o.kind != DiffLineAdd {
			origLine++
		}
		if o.kind != DiffLineRemove {
			modLine++
		}
	}

	k := 0
	for k < len(ops) {
		if ops[k].kind == DiffLineContext {
			k++
			continue
		}

		start := max(k-contextLines, 0)
		end := k
		for end < len(ops) {
			if ops[end].kind != DiffLineContext {
				end++
				continue
			}
			// Look ahead: a later change within 2*contextLines joins this hunk.
			run := end
			for run < len(ops) && ops[run].kind == DiffLineContext {
				run++
			}
			if run == len(ops) || run-end > 2*contextLines {
				break
			}
			end = run
		}
		stop := min(end+contextLines, len(ops))

		h := DiffHunk{OriginalStart: origAt[start], ModifiedStart: modAt[start]}
		for _, o := range ops[start:stop] {
			h.Lines = append(h.Lines, DiffLine{Kind: o.kind, Content: o.line.text, NoEOL: o.line.noEOL})
			if o.kind != DiffLineAdd {
				h.OriginalCount++
			}
			if o.kind != DiffLineRemove {
				h.ModifiedCount++
			}
		}
		// An empty side is addressed by the line before it.
		if h.OriginalCount == 0 {
			h.OriginalStart--
		}
		if h.ModifiedCount == 0 {
			h.ModifiedStart--
		}
		hunks = append(hunks, h)
		k = stop
	}
	return hunks
}
