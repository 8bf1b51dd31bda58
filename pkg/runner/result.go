package runner

import "github.com/yaklabco/gonixfmt/pkg/format"

// FileOutcome is the result of processing one discovered file.
type FileOutcome struct {
	Path string

	// Result is nil when Error is set.
	Result *format.Result

	Error error
}

// Stats aggregates a run.
type Stats struct {
	FilesDiscovered int
	FilesProcessed  int

	// FilesChanged counts files whose formatting differs, written or not.
	FilesChanged int

	FilesWritten int
	FilesSkipped int
	FilesErrored int

	// Edits is the total number of edits across all files.
	Edits int

	// BlockErrors counts Markdown code blocks that failed to format.
	BlockErrors int
}

// Result is the overall outcome of a run. Files are in discovery order.
type Result struct {
	Files []FileOutcome
	Stats Stats
}

// NeedsFormatting reports whether any file is not formatted.
func (r *Result) NeedsFormatting() bool {
	return r != nil && r.Stats.FilesChanged > 0
}

// HasErrors reports whether any file failed.
func (r *Result) HasErrors() bool {
	return r != nil && (r.Stats.FilesErrored > 0 || r.Stats.BlockErrors > 0)
}

// Errors returns per-file errors in file order.
func (r *Result) Errors() []error {
	if r == nil {
		return nil
	}
	var errs []error
	for _, f := range r.Files {
		if f.Error != nil {
			errs = append(errs, f.Error)
		}
	}
	return errs
}

func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	if outcome.Error != nil {
		r.Stats.FilesErrored++
		return
	}
	res := outcome.Result
	if res == nil {
		return
	}

	r.Stats.FilesProcessed++
	r.Stats.Edits += res.Edits
	r.Stats.BlockErrors += len(res.BlockErrors)
	if res.Changed {
		r.Stats.FilesChanged++
	}
	if res.Written {
		r.Stats.FilesWritten++
	}
	if res.Skipped {
		r.Stats.FilesSkipped++
	}
}
