package reporter

import (
	"bufio"
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/yaklabco/gonixfmt/internal/ui/pretty"
	"github.com/yaklabco/gonixfmt/pkg/runner"
)

// Table layout for summary output.
const (
	tableWidth        = 90
	ruleColWidth      = 30
	fileColWidth      = 60
	numColWidth       = 7
	statusColWidth    = 20
	maxRuleNameLength = 28
	maxFilePathLength = 58
)

// padRight pads s to width. Pad before styling so ANSI codes do not count.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

type ruleRow struct {
	name  string
	edits int
	files int
}

type fileRow struct {
	path   string
	edits  int
	status string
}

// SummaryReporter writes edit counts per rule and per file.
type SummaryReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewSummaryReporter creates a new summary reporter.
func NewSummaryReporter(opts Options) *SummaryReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &SummaryReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *SummaryReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil {
		result = &runner.Result{}
	}

	rules, files := r.aggregate(result)
	if len(files) == 0 {
		fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats))
		return 0, nil
	}

	r.renderRuleTable(rules)
	if len(rules) > 0 {
		fmt.Fprintln(r.bw)
	}
	r.renderFileTable(files)
	fmt.Fprint(r.bw, r.styles.FormatSummary(result.Stats))

	return unformatted(result), nil
}

// aggregate collects rule rows sorted by edit count and rows for files that
// changed or failed.
func (r *SummaryReporter) aggregate(result *runner.Result) ([]ruleRow, []fileRow) {
	byRule := make(map[string]*ruleRow)
	var files []fileRow

	for _, file := range result.Files {
		path := r.opts.displayPath(file.Path)
		if file.Error != nil {
			files = append(files, fileRow{path: path, status: "error"})
			continue
		}
		res := file.Result
		if res == nil || (!res.Changed && !res.Skipped) {
			continue
		}
		files = append(files, fileRow{path: path, edits: res.Edits, status: res.Summary()})
		for name, n := range res.Reasons {
			row, ok := byRule[name]
			if !ok {
				row = &ruleRow{name: name}
				byRule[name] = row
			}
			row.edits += n
			row.files++
		}
	}

	rules := make([]ruleRow, 0, len(byRule))
	for _, row := range byRule {
		rules = append(rules, *row)
	}
	slices.SortFunc(rules, func(a, b ruleRow) int {
		if c := cmp.Compare(b.edits, a.edits); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})
	return rules, files
}

func (r *SummaryReporter) separator() {
	fmt.Fprintln(r.bw, r.styles.TableSeparator.Render(strings.Repeat("─", tableWidth)))
}

func (r *SummaryReporter) renderRuleTable(rules []ruleRow) {
	if len(rules) == 0 {
		return
	}

	fmt.Fprintln(r.bw, r.styles.Bold.Render("Rules"))
	r.separator()
	fmt.Fprintf(r.bw, "%s %s %s\n",
		r.styles.TableHeader.Render(padRight("Rule", ruleColWidth)),
		r.styles.TableHeader.Render(padLeft("Edits", numColWidth)),
		r.styles.TableHeader.Render(padLeft("Files", numColWidth)),
	)
	r.separator()

	for _, rule := range rules {
		name := rule.name
		if len(name) > maxRuleNameLength {
			name = name[:maxRuleNameLength] + "…"
		}
		fmt.Fprintf(r.bw, "%s %s %s\n",
			r.styles.Rule.Render(padRight(name, ruleColWidth)),
			padLeft(strconv.Itoa(rule.edits), numColWidth),
			padLeft(strconv.Itoa(rule.files), numColWidth),
		)
	}
}

func (r *SummaryReporter) renderFileTable(files []fileRow) {
	fmt.Fprintln(r.bw, r.styles.Bold.Render("Files"))
	r.separator()
	fmt.Fprintf(r.bw, "%s %s %s\n",
		r.styles.TableHeader.Render(padRight("File", fileColWidth)),
		r.styles.TableHeader.Render(padLeft("Edits", numColWidth)),
		r.styles.TableHeader.Render(padRight("Status", statusColWidth)),
	)
	r.separator()

	for _, file := range files {
		path := file.path
		if len(path) > maxFilePathLength {
			path = "…" + path[len(path)-(maxFilePathLength-1):]
		}
		status := file.status
		switch status {
		case "error":
			status = r.styles.Error.Render(status)
		case "needs formatting":
			status = r.styles.Warning.Render(status)
		}
		fmt.Fprintf(r.bw, "%s %s %s\n",
			padRight(path, fileColWidth),
			padLeft(strconv.Itoa(file.edits), numColWidth),
			status,
		)
	}
}
