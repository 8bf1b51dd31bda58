package rules

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/yaklabco/gonixfmt/pkg/dsl"
	"github.com/yaklabco/gonixfmt/pkg/engine"
)

// Pass names a formatting pass a rule takes part in.
type Pass string

// Passes.
const (
	PassSpacing     Pass = "spacing"
	PassIndentation Pass = "indentation"
	PassFix         Pass = "fix"
)

// ErrUnknownRule is returned when a configuration names a rule that does not exist.
var ErrUnknownRule = errors.New("unknown rule")

// Info describes one named rule.
type Info struct {
	Name        string
	Description string
	Passes      []Pass
}

// Registry holds the spacing and indentation rule sets plus the fix-ups, and
// resolves enable/disable configuration against them.
type Registry struct {
	mu      sync.RWMutex
	spacing *dsl.SpacingDsl
	indent  *dsl.IndentDsl
	infos   map[string]*Info
}

//nolint:gochecknoglobals // Read-only lookup table.
var descriptions = map[string]string{
	FileStart:              "no whitespace before the first token of a file",
	FileEnd:                "exactly one line break at the end of a file",
	TopLevel:               "top-level expressions start in column 0",
	LambdaColon:            "no space before a lambda colon, one after",
	LambdaBody:             "bodies of curried lambdas align with the lambda",
	PatternBraces:          "spacing inside lambda pattern braces",
	PatternCommas:          "commas in lambda patterns hug the previous entry",
	PatternDefaults:        "single spaces around '?' in pattern defaults",
	PatternBind:            "no spaces around '@' in pattern bindings",
	SetBraces:              "attribute set braces break lines when the set is multi-line",
	SetEntries:             "one binding per line in multi-line attribute sets",
	Assignment:             "single space around '=' in bindings",
	Semicolon:              "no space before ';'",
	AttrpathDots:           "no spaces around '.' in attribute paths",
	SelectDefault:          "single spaces around 'or' in selections",
	InheritSpacing:         "spacing inside inherit statements",
	LetIn:                  "layout of let ... in",
	WithAssert:             "layout of with and assert",
	IfThenElse:             "layout of if ... then ... else",
	ListBrackets:           "list brackets break lines when the list is multi-line",
	ListItems:              "single space between list items",
	Parens:                 "no space inside parentheses",
	BinaryOperators:        "single space around binary operators",
	UnaryOperators:         "no space after unary operators",
	Application:            "single space between function and argument",
	Interpolation:          "no space inside interpolation braces",
	ClosingDelimiter:       "closing delimiters align with their opening line",
	engine.FixStringIndent: "re-indent multi-line indented strings with their opening line",
	engine.FixURIQuote:     "rewrite bare URIs as quoted strings",
}

// NewRegistry creates a registry over the given rule sets. Nil sets are empty.
func NewRegistry(spacing *dsl.SpacingDsl, indent *dsl.IndentDsl) *Registry {
	if spacing == nil {
		spacing = dsl.NewSpacing()
	}
	if indent == nil {
		indent = dsl.NewIndent()
	}
	r := &Registry{
		spacing: spacing,
		indent:  indent,
		infos:   make(map[string]*Info),
	}
	for _, rule := range spacing.Rules() {
		r.note(rule.Name, PassSpacing)
	}
	for _, rule := range indent.Rules() {
		r.note(rule.Name, PassIndentation)
	}
	r.note(engine.FixStringIndent, PassFix)
	r.note(engine.FixURIQuote, PassFix)
	return r
}

// Default returns a registry over the built-in Nix rules.
func Default() *Registry {
	return NewRegistry(Spacing(), Indent())
}

func (r *Registry) note(name string, pass Pass) {
	info, ok := r.infos[name]
	if !ok {
		info = &Info{Name: name, Description: descriptions[name]}
		r.infos[name] = info
	}
	if !slices.Contains(info.Passes, pass) {
		info.Passes = append(info.Passes, pass)
	}
}

// Get returns the rule with the given name.
func (r *Registry) Get(name string) (Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.infos[name]
	if !ok {
		return Info{}, false
	}
	return *info, true
}

// Names returns all rule names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.infos))
	for name := range r.infos {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Infos returns every rule sorted by name.
func (r *Registry) Infos() []Info {
	names := r.Names()

	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Info, 0, len(names))
	for _, name := range names {
		result = append(result, *r.infos[name])
	}
	return result
}

// Resolved is the outcome of applying a disable list to a registry.
type Resolved struct {
	Spacing       *dsl.SpacingDsl
	Indent        *dsl.IndentDsl
	DisabledFixes []string
}

// Resolve drops the named rules. Naming a rule that does not exist is an
// error wrapping ErrUnknownRule.
func (r *Registry) Resolve(disabled []string) (*Resolved, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	off := make(map[string]bool, len(disabled))
	for _, name := range disabled {
		if _, ok := r.infos[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRule, name)
		}
		off[name] = true
	}
	keep := func(name string) bool { return !off[name] }

	res := &Resolved{
		Spacing: r.spacing.Filter(keep),
		Indent:  r.indent.Filter(keep),
	}
	for _, fix := range []string{engine.FixStringIndent, engine.FixURIQuote} {
		if off[fix] {
			res.DisabledFixes = append(res.DisabledFixes, fix)
		}
	}
	return res, nil
}
