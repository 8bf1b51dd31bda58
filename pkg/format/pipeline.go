package format

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yaklabco/gonixfmt/internal/logging"
	"github.com/yaklabco/gonixfmt/pkg/config"
	"github.com/yaklabco/gonixfmt/pkg/fix"
	"github.com/yaklabco/gonixfmt/pkg/fsutil"
	"github.com/yaklabco/gonixfmt/pkg/markdown"
)

// StdinPath names content read from standard input.
const StdinPath = "<stdin>"

// Kind is the type of document a file holds.
type Kind string

const (
	KindNix      Kind = "nix"
	KindMarkdown Kind = "markdown"
)

// KindOf classifies a path by extension.
func KindOf(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return KindMarkdown
	default:
		return KindNix
	}
}

// Result is the outcome of running the pipeline on one file.
type Result struct {
	Path string
	Kind Kind

	// Snapshot is the file state before processing. Nil for in-memory content.
	Snapshot *fsutil.Snapshot

	// Original and Formatted hold the content before and after formatting.
	Original  []byte
	Formatted []byte

	// Changed is true when formatting altered the content.
	Changed bool

	// Edits is the number of edits applied, Reasons counts them per rule.
	Edits   int
	Reasons map[string]int

	// Blocks is the number of Nix code blocks found in a Markdown file.
	Blocks int

	// BlockErrors lists Markdown blocks that could not be formatted.
	BlockErrors []*markdown.BlockError

	// Diff is the unified diff, set when Options.Diff is on.
	Diff *fix.Diff

	// Skipped is true if the file was not written because it changed on
	// disk while being processed.
	Skipped    bool
	SkipReason string

	BackupCreated bool
	Written       bool
}

// Summary returns a short human-readable status.
func (r *Result) Summary() string {
	switch {
	case r.Skipped:
		return "skipped: " + r.SkipReason
	case r.Written && r.BackupCreated:
		return "formatted (backup created)"
	case r.Written:
		return "formatted"
	case r.Changed:
		return "needs formatting"
	default:
		return "ok"
	}
}

// Options controls pipeline behavior.
type Options struct {
	// Check reports files that need formatting without writing them.
	Check bool

	// Diff generates unified diffs without writing files.
	Diff bool

	// Backup configures backups taken before a file is rewritten.
	Backup fsutil.BackupConfig

	// StrictRaceDetection compares content hashes before writing. When false
	// only modification time and size are checked.
	StrictRaceDetection bool

	// Markdown controls formatting of code blocks in Markdown files.
	Markdown markdown.Options
}

// Writes reports whether the options allow rewriting files.
func (o Options) Writes() bool {
	return !o.Check && !o.Diff
}

// DefaultOptions returns options that rewrite files without backups.
func DefaultOptions() Options {
	return Options{
		Backup:              fsutil.BackupConfig{Mode: fsutil.BackupModeSidecar},
		StrictRaceDetection: true,
	}
}

// OptionsFromConfig derives pipeline options from a configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return DefaultOptions()
	}
	return Options{
		Check: cfg.Check,
		Diff:  cfg.Diff,
		Backup: fsutil.BackupConfig{
			Enabled: cfg.BackupsEnabled(),
			Mode:    fsutil.BackupMode(cfg.Backups.Mode),
		},
		StrictRaceDetection: true,
		Markdown:            markdown.Options{DetectUntagged: cfg.DetectUntagged()},
	}
}

// Pipeline orchestrates the safe processing of a single file.
type Pipeline struct {
	Formatter *Formatter
}

// NewPipeline creates a pipeline around a formatter.
func NewPipeline(formatter *Formatter) *Pipeline {
	return &Pipeline{Formatter: formatter}
}

// ProcessFile runs the full pipeline for a single file:
//  1. Read and hash the file.
//  2. Format it, as Nix or as Markdown with embedded Nix.
//  3. Stop with a diff in check or diff mode.
//  4. Skip the file if it changed on disk meanwhile.
//  5. Create a backup when enabled.
//  6. Write the result atomically.
func (p *Pipeline) ProcessFile(ctx context.Context, path string, opts Options) (*Result, error) {
	content, snap, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return nil, categorizeError(err)
	}

	result, err := p.ProcessContent(ctx, path, content, opts)
	if err != nil {
		return nil, err
	}
	result.Snapshot = snap

	if !result.Changed || !opts.Writes() {
		return result, nil
	}

	changed, err := snap.Changed(ctx, opts.StrictRaceDetection)
	if err != nil {
		return nil, fmt.Errorf("check modified: %w", err)
	}
	if changed {
		result.Skipped = true
		result.SkipReason = "file modified during processing"
		logging.FromContext(ctx).Warn("file changed while formatting", logging.FieldPath, path)
		return result, nil
	}

	if opts.Backup.Enabled {
		created, err := fsutil.CreateBackup(ctx, path, opts.Backup)
		if err != nil {
			return nil, fmt.Errorf("%w: create backup: %w", ErrWriteFailure, err)
		}
		result.BackupCreated = created
	}

	if err := fsutil.WriteAtomic(ctx, path, result.Formatted, snap.Mode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	result.Written = true
	return result, nil
}

// ProcessContent formats in-memory content without any file I/O. path picks
// the document kind and labels errors and diffs.
func (p *Pipeline) ProcessContent(ctx context.Context, path string, content []byte, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("processing cancelled: %w", err)
	}
	ctx = logging.WithFields(ctx, logging.FieldPath, path)

	result := &Result{
		Path:     path,
		Kind:     KindOf(path),
		Original: content,
	}

	switch result.Kind {
	case KindMarkdown:
		md, err := markdown.Format(ctx, content, p.Formatter.Code, opts.Markdown)
		if err != nil {
			return nil, err
		}
		result.Formatted = md.Content
		result.Blocks = md.Blocks
		result.Edits = md.Changed
		result.BlockErrors = md.Errors
		if md.Changed > 0 {
			result.Reasons = map[string]int{"markdown-block": md.Changed}
		}
		logging.FromContext(ctx).Debug("markdown formatted",
			logging.FieldBlocks, md.Blocks,
			logging.FieldEdits, md.Changed)
	default:
		out, err := p.Formatter.Format(ctx, path, content)
		if err != nil {
			return nil, err
		}
		result.Formatted = out.Content
		result.Edits = out.Edits
		result.Reasons = out.Reasons
	}

	result.Changed = result.Edits > 0
	if opts.Diff && result.Changed {
		result.Diff = fix.GenerateDiff(path, content, result.Formatted)
	}
	return result, nil
}
