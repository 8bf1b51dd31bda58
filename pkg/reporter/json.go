package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/yaklabco/gonixfmt/pkg/runner"
)

// jsonVersion is the schema version of JSON output.
const jsonVersion = "1.0.0"

// JSONOutput is the top-level JSON structure.
type JSONOutput struct {
	Version string           `json:"version"`
	Files   []JSONFileResult `json:"files"`
	Summary JSONSummary      `json:"summary"`
}

// JSONFileResult represents a single file's results.
type JSONFileResult struct {
	Path        string           `json:"path"`
	Kind        string           `json:"kind,omitempty"`
	Changed     bool             `json:"changed"`
	Written     bool             `json:"written,omitempty"`
	Skipped     string           `json:"skipped,omitempty"`
	Edits       int              `json:"edits"`
	Rules       map[string]int   `json:"rules,omitempty"`
	Blocks      int              `json:"blocks,omitempty"`
	BlockErrors []JSONBlockError `json:"blockErrors,omitempty"`
	Diff        string           `json:"diff,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// JSONBlockError is a Markdown code block that could not be formatted.
type JSONBlockError struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

// JSONSummary contains aggregate statistics.
type JSONSummary struct {
	FilesChecked int `json:"filesChecked"`
	FilesChanged int `json:"filesChanged"`
	FilesWritten int `json:"filesWritten"`
	FilesSkipped int `json:"filesSkipped"`
	FilesErrored int `json:"filesErrored"`
	Edits        int `json:"edits"`
}

// JSONReporter formats results as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	output := r.buildOutput(result)

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(output); err != nil {
		return 0, fmt.Errorf("encode JSON: %w", err)
	}
	return unformatted(result), nil
}

func (r *JSONReporter) buildOutput(result *runner.Result) *JSONOutput {
	output := &JSONOutput{
		Version: jsonVersion,
		Files:   make([]JSONFileResult, 0),
	}
	if result == nil {
		return output
	}

	output.Files = make([]JSONFileResult, 0, len(result.Files))
	for _, file := range result.Files {
		fr := JSONFileResult{Path: r.opts.displayPath(file.Path)}

		if file.Error != nil {
			fr.Error = file.Error.Error()
		}
		if res := file.Result; res != nil {
			fr.Kind = string(res.Kind)
			fr.Changed = res.Changed
			fr.Written = res.Written
			fr.Skipped = res.SkipReason
			fr.Edits = res.Edits
			fr.Blocks = res.Blocks
			if len(res.Reasons) > 0 {
				fr.Rules = res.Reasons
			}
			for _, be := range res.BlockErrors {
				fr.BlockErrors = append(fr.BlockErrors, JSONBlockError{Line: be.Line, Error: be.Err.Error()})
			}
			if res.Diff != nil {
				fr.Diff = res.Diff.String()
			}
		}
		output.Files = append(output.Files, fr)
	}

	stats := result.Stats
	output.Summary = JSONSummary{
		FilesChecked: stats.FilesDiscovered,
		FilesChanged: stats.FilesChanged,
		FilesWritten: stats.FilesWritten,
		FilesSkipped: stats.FilesSkipped,
		FilesErrored: stats.FilesErrored,
		Edits:        stats.Edits,
	}
	return output
}
