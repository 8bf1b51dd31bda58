package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks a defect in the rule set rather than the input.
	ErrConfiguration = errors.New("invalid rule configuration")

	// ErrInvalidEdits is returned when the accumulated edits overlap or fall
	// outside the content. It indicates a bug in the engine.
	ErrInvalidEdits = errors.New("invalid edit list")
)

// IndentConflictError reports an element matched by more than one
// indentation rule.
type IndentConflictError struct {
	Path   string
	Line   int
	Column int
	Kind   string
	Rules  []string
}

func (e *IndentConflictError) Error() string {
	where := fmt.Sprintf("%d:%d", e.Line, e.Column)
	if e.Path != "" {
		where = e.Path + ":" + where
	}
	return fmt.Sprintf("%s: %s matched by %d indentation rules (%s)",
		where, e.Kind, len(e.Rules), strings.Join(e.Rules, ", "))
}

// Unwrap lets errors.Is match ErrConfiguration.
func (e *IndentConflictError) Unwrap() error {
	return ErrConfiguration
}
