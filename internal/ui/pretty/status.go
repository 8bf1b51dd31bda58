package pretty

import (
	"fmt"
	"strings"
)

// FormatFileStatus formats one line naming a file and what happened to it.
func (s *Styles) FormatFileStatus(path, status string, edits int) string {
	line := s.FilePath.Render(path) + ": "
	switch status {
	case "ok":
		line += s.Success.Render(status)
	case "needs formatting":
		line += s.Warning.Render(status)
	default:
		line += status
	}
	if edits > 0 {
		line += s.Dim.Render(fmt.Sprintf(" (%d %s)", edits, plural(edits, "edit", "edits")))
	}
	return line + "\n"
}

// FormatFileError formats a file that could not be processed.
func (s *Styles) FormatFileError(path string, err error) string {
	return s.FilePath.Render(path) + ": " + s.Error.Render("error: "+err.Error()) + "\n"
}

// FormatBlockError formats a Markdown code block that could not be formatted.
func (s *Styles) FormatBlockError(path string, line int, err error) string {
	location := s.Location.Render(fmt.Sprintf(":%d", line))
	return "  " + s.FilePath.Render(path) + location + ": " +
		s.Warning.Render("code block skipped: ") + err.Error() + "\n"
}

// FormatRules formats per-rule edit counts as "name×n" pairs.
func (s *Styles) FormatRules(counts map[string]int, order []string) string {
	parts := make([]string, 0, len(order))
	for _, name := range order {
		parts = append(parts, s.Rule.Render(fmt.Sprintf("%s×%d", name, counts[name])))
	}
	return strings.Join(parts, " ")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
