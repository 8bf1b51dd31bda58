package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/yaklabco/gonixfmt/internal/configloader"
	"github.com/yaklabco/gonixfmt/pkg/engine"
	"github.com/yaklabco/gonixfmt/pkg/format"
	"github.com/yaklabco/gonixfmt/pkg/fsutil"
	"github.com/yaklabco/gonixfmt/pkg/rules"
	"github.com/yaklabco/gonixfmt/pkg/runner"
)

// Exit codes for gonixfmt, following sysexits(3) above 1.
const (
	// ExitSuccess indicates every file is formatted.
	ExitSuccess = 0

	// ExitNeedsFormatting indicates at least one file is not formatted.
	ExitNeedsFormatting = 1

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitDataError indicates configuration or input that cannot be used,
	// including Nix files that do not parse.
	ExitDataError = 65

	// ExitInternalError indicates a defect, such as non-idempotent output.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

// ExitConfigError is the code for configuration errors.
const ExitConfigError = ExitDataError

// ErrNeedsFormatting is returned in check mode when files are not formatted.
// It only carries the exit code; main does not log it.
var ErrNeedsFormatting = errors.New("files need formatting")

// ErrInvalidUsage marks command-line misuse.
var ErrInvalidUsage = errors.New("invalid usage")

// ExitError pairs an error with the process exit code it maps to.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: code, Err: err}
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	switch {
	case errors.Is(err, ErrNeedsFormatting):
		return ExitNeedsFormatting
	case errors.Is(err, ErrInvalidUsage):
		return ExitInvalidUsage
	case configloader.IsConfigError(err), errors.Is(err, rules.ErrUnknownRule),
		errors.Is(err, format.ErrParseFailure), errors.Is(err, runner.ErrInvalidGlob),
		errors.Is(err, engine.ErrConfiguration):
		return ExitDataError
	case format.IsIOError(err), errors.Is(err, fsutil.ErrNotFound),
		errors.Is(err, fsutil.ErrPermissionDenied), errors.Is(err, fsutil.ErrIsDirectory),
		errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return ExitIOError
	default:
		return ExitInternalError
	}
}

// ExitCodeFromResult determines the exit code of a completed run. File
// errors outrank unformatted files; among errors the most severe wins.
func ExitCodeFromResult(result *runner.Result, check bool) int {
	if result == nil {
		return ExitSuccess
	}

	code := ExitSuccess
	for _, err := range result.Errors() {
		code = worse(code, ExitCode(err))
	}
	if code != ExitSuccess {
		return code
	}

	if check && result.NeedsFormatting() {
		return ExitNeedsFormatting
	}
	return ExitSuccess
}

//nolint:gochecknoglobals // Read-only lookup table.
var severity = map[int]int{
	ExitSuccess:         0,
	ExitNeedsFormatting: 1,
	ExitDataError:       2,
	ExitIOError:         3,
	ExitInvalidUsage:    4,
	ExitInternalError:   5,
}

func worse(a, b int) int {
	if severity[b] > severity[a] {
		return b
	}
	return a
}

// runError wraps a failed run so that ExitCode sees the file errors' code.
func runError(result *runner.Result, check bool) error {
	code := ExitCodeFromResult(result, check)
	switch code {
	case ExitSuccess:
		return nil
	case ExitNeedsFormatting:
		return ErrNeedsFormatting
	default:
		return withCode(code, fmt.Errorf("%d of %d files failed", result.Stats.FilesErrored, result.Stats.FilesDiscovered))
	}
}
