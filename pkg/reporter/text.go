package reporter

import (
	"bufio"
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/yaklabco/gonixfmt/internal/ui/pretty"
	"github.com/yaklabco/gonixfmt/pkg/runner"
)

// TextReporter lists files that changed or failed.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil || len(result.Files) == 0 {
		if r.opts.ShowSummary {
			fmt.Fprintln(r.bw, r.styles.Success.Render("No files to format."))
		}
		return 0, nil
	}

	for _, file := range result.Files {
		path := r.opts.displayPath(file.Path)
		if file.Error != nil {
			fmt.Fprint(r.bw, r.styles.FormatFileError(path, file.Error))
			continue
		}
		res := file.Result
		if res == nil {
			continue
		}

		if res.Changed || res.Skipped || r.opts.Verbose {
			fmt.Fprint(r.bw, r.styles.FormatFileStatus(path, res.Summary(), res.Edits))
		}
		if r.opts.Verbose && len(res.Reasons) > 0 {
			order := slices.Sorted(maps.Keys(res.Reasons))
			fmt.Fprintln(r.bw, "    "+r.styles.FormatRules(res.Reasons, order))
		}
		for _, be := range res.BlockErrors {
			fmt.Fprint(r.bw, r.styles.FormatBlockError(path, be.Line, be.Err))
		}
	}

	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats))
	}
	return unformatted(result), nil
}
