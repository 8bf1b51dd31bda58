// Package pretty renders styled terminal output with lipgloss.
package pretty

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// ANSI palette indices.
const (
	red    = lipgloss.Color("9")
	green  = lipgloss.Color("10")
	yellow = lipgloss.Color("11")
	cyan   = lipgloss.Color("14")
	grey   = lipgloss.Color("8")
	silver = lipgloss.Color("7")
)

// Styles holds the renderers used for CLI output.
type Styles struct {
	Error   lipgloss.Style
	Warning lipgloss.Style

	FilePath lipgloss.Style
	Location lipgloss.Style
	Rule     lipgloss.Style

	DiffHeader  lipgloss.Style
	DiffHunk    lipgloss.Style
	DiffAdd     lipgloss.Style
	DiffRemove  lipgloss.Style
	DiffContext lipgloss.Style

	SummaryTitle lipgloss.Style
	SummaryValue lipgloss.Style
	Success      lipgloss.Style
	Failure      lipgloss.Style

	TableHeader    lipgloss.Style
	TableSeparator lipgloss.Style

	Dim  lipgloss.Style
	Bold lipgloss.Style
}

// NewStyles creates Styles. Every style renders text unchanged when
// colorEnabled is false.
func NewStyles(colorEnabled bool) *Styles {
	plain := lipgloss.NewStyle()
	if !colorEnabled {
		return &Styles{
			Error: plain, Warning: plain,
			FilePath: plain, Location: plain, Rule: plain,
			DiffHeader: plain, DiffHunk: plain, DiffAdd: plain, DiffRemove: plain, DiffContext: plain,
			SummaryTitle: plain, SummaryValue: plain, Success: plain, Failure: plain,
			TableHeader: plain, TableSeparator: plain,
			Dim: plain, Bold: plain,
		}
	}

	bold := plain.Bold(true)
	fg := func(c lipgloss.Color) lipgloss.Style { return plain.Foreground(c) }

	return &Styles{
		Error:   fg(red).Bold(true),
		Warning: fg(yellow).Bold(true),

		FilePath: bold,
		Location: fg(grey),
		Rule:     fg(cyan),

		DiffHeader:  bold,
		DiffHunk:    fg(cyan),
		DiffAdd:     fg(green),
		DiffRemove:  fg(red),
		DiffContext: fg(grey),

		SummaryTitle: bold,
		SummaryValue: plain,
		Success:      fg(green).Bold(true),
		Failure:      fg(red).Bold(true),

		TableHeader:    fg(silver).Bold(true),
		TableSeparator: fg(grey),

		Dim:  fg(grey),
		Bold: bold,
	}
}

// IsColorEnabled decides whether to color output for mode "auto", "always"
// or "never". Auto colors terminals unless NO_COLOR is set; unknown modes
// behave like auto.
func IsColorEnabled(mode string, writer io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}

	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := writer.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
