// Package reporter writes the results of a formatting run.
package reporter

import (
	"context"
	"fmt"

	"github.com/yaklabco/gonixfmt/pkg/runner"
)

// Reporter writes run results.
type Reporter interface {
	// Report writes output for result and returns the number of files that
	// are not formatted.
	Report(ctx context.Context, result *runner.Result) (int, error)
}

// New creates a Reporter for the specified options.
func New(opts Options) (Reporter, error) {
	if opts.Writer == nil {
		opts.Writer = DefaultOptions().Writer
	}

	format := opts.Format
	if format == "" {
		format = FormatText
	}

	switch format {
	case FormatJSON:
		return NewJSONReporter(opts), nil
	case FormatDiff:
		return NewDiffReporter(opts), nil
	case FormatSummary:
		return NewSummaryReporter(opts), nil
	case FormatText:
		return NewTextReporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// unformatted counts files that changed but were not written.
func unformatted(result *runner.Result) int {
	if result == nil {
		return 0
	}
	var n int
	for _, f := range result.Files {
		if f.Result != nil && f.Result.Changed && !f.Result.Written {
			n++
		}
	}
	return n
}
