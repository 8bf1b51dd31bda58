// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

import (
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

//nolint:gochecknoglobals // Process-wide logger used by the CLI and library debug output.
var (
	std     *log.Logger
	stdOnce sync.Once
)

// New returns a stderr logger at the named level: debug, info, warn or
// error. Unknown names fall back to info.
func New(level string) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Level: ParseLevel(level),
	})
}

// NewInteractive returns an info logger on stdout for output read by a
// person, such as the rules listing and version banner.
func NewInteractive() *log.Logger {
	return log.NewWithOptions(os.Stdout, log.Options{
		Level: log.InfoLevel,
	})
}

// ParseLevel maps a level name to a log.Level, case-insensitively.
func ParseLevel(name string) log.Level {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "warning" {
		return log.WarnLevel
	}

	switch lvl, err := log.ParseLevel(name); {
	case err != nil, lvl == log.FatalLevel:
		return log.InfoLevel
	default:
		return lvl
	}
}

// Default returns the process-wide logger, creating it at info on first use.
func Default() *log.Logger {
	stdOnce.Do(func() {
		if std == nil {
			std = New("info")
		}
	})
	return std
}

// SetDefault replaces the process-wide logger.
func SetDefault(logger *log.Logger) {
	stdOnce.Do(func() {})
	std = logger
}

// SetLevel changes the level of the process-wide logger.
func SetLevel(level string) {
	Default().SetLevel(ParseLevel(level))
}
