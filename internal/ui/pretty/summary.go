package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/gonixfmt/pkg/runner"
)

const summaryDividerWidth = 40

// FormatSummaryOneLine formats run statistics as a single line, for example
// "3 files checked, 1 needs formatting, 1 failed".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats) string {
	files := fmt.Sprintf("%d %s checked", stats.FilesDiscovered, plural(stats.FilesDiscovered, "file", "files"))

	var parts []string
	switch {
	case stats.FilesWritten > 0:
		parts = append(parts, s.Success.Render(fmt.Sprintf("%d formatted", stats.FilesWritten)))
	case stats.FilesChanged > 0:
		parts = append(parts, s.Warning.Render(fmt.Sprintf("%d %s formatting",
			stats.FilesChanged, plural(stats.FilesChanged, "needs", "need"))))
	}
	if stats.FilesSkipped > 0 {
		parts = append(parts, s.Warning.Render(fmt.Sprintf("%d skipped", stats.FilesSkipped)))
	}
	if stats.FilesErrored > 0 {
		parts = append(parts, s.Error.Render(fmt.Sprintf("%d failed", stats.FilesErrored)))
	}
	if stats.BlockErrors > 0 {
		parts = append(parts, s.Warning.Render(fmt.Sprintf("%d code %s skipped",
			stats.BlockErrors, plural(stats.BlockErrors, "block", "blocks"))))
	}

	if len(parts) == 0 {
		return s.Success.Render("All files formatted") + s.Dim.Render(" ("+files+")") + "\n"
	}
	return files + ", " + strings.Join(parts, ", ") + "\n"
}

// FormatSummary formats run statistics as a block.
func (s *Styles) FormatSummary(stats runner.Stats) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(s.SummaryTitle.Render("Summary"))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("-", summaryDividerWidth))
	b.WriteString("\n")

	row := func(label string, value int, style func(...string) string) {
		fmt.Fprintf(&b, "  %-19s%s\n", label+":", style(strconv.Itoa(value)))
	}
	row("Files checked", stats.FilesDiscovered, s.SummaryValue.Render)
	if stats.FilesChanged > 0 {
		row("Files changed", stats.FilesChanged, s.Warning.Render)
	}
	if stats.FilesWritten > 0 {
		row("Files written", stats.FilesWritten, s.Success.Render)
	}
	if stats.FilesSkipped > 0 {
		row("Files skipped", stats.FilesSkipped, s.Warning.Render)
	}
	if stats.FilesErrored > 0 {
		row("Files failed", stats.FilesErrored, s.Failure.Render)
	}
	row("Edits", stats.Edits, s.SummaryValue.Render)
	b.WriteString("\n")

	switch {
	case stats.FilesErrored > 0:
		b.WriteString(s.Failure.Render("Formatting failed"))
	case stats.FilesChanged > stats.FilesWritten:
		b.WriteString(s.Warning.Render("Some files need formatting"))
	default:
		b.WriteString(s.Success.Render("All files formatted"))
	}
	b.WriteString("\n")

	return b.String()
}
