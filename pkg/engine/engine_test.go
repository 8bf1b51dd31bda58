package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gonixfmt/pkg/dsl"
	"github.com/yaklabco/gonixfmt/pkg/engine"
	"github.com/yaklabco/gonixfmt/pkg/parser/nix"
	"github.com/yaklabco/gonixfmt/pkg/pattern"
	"github.com/yaklabco/gonixfmt/pkg/syntax"
)

func parse(t *testing.T, src string) *syntax.Tree {
	t.Helper()

	tree, err := nix.New().Parse(context.Background(), "test.nix", []byte(src))
	require.NoError(t, err)
	return tree
}

// format runs the engine and returns the formatted text.
func format(t *testing.T, src string, s *dsl.SpacingDsl, in *dsl.IndentDsl, opts engine.Options) (string, *engine.Diff) {
	t.Helper()

	tree := parse(t, src)
	diff, err := engine.Format(context.Background(), tree, s, in, opts)
	require.NoError(t, err)
	return string(diff.Apply(tree.Content)), diff
}

// closers aligns closing brackets with the line their construct starts on.
func closers() *dsl.IndentDsl {
	in := dsl.NewIndent()
	in.Rule("close").Inside(syntax.NodeAttrSet).Matching(syntax.TokCurlyR).Align()
	in.Rule("close").Inside(syntax.NodeList).Matching(syntax.TokBracketR).Align()
	return in
}

func TestFormatNilTree(t *testing.T) {
	t.Parallel()

	diff, err := engine.Format(context.Background(), nil, nil, nil, engine.DefaultOptions())
	require.NoError(t, err)
	assert.True(t, diff.IsEmpty())
	assert.Equal(t, 0, diff.Len())
}

func TestFormatNoRules(t *testing.T) {
	t.Parallel()

	got, diff := format(t, "{ a = 1;   b=2; }", nil, nil, engine.DefaultOptions())
	assert.Equal(t, "{ a = 1;   b=2; }", got)
	assert.True(t, diff.IsEmpty())
}

func TestSpacingValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		src   string
		value dsl.SpacingValue
		want  string
	}{
		{name: "single", src: "{ a   =1; }", value: dsl.Single, want: "{ a = 1; }"},
		{name: "single joins lines", src: "{ a\n=\n1; }", value: dsl.Single, want: "{ a = 1; }"},
		{name: "none", src: "{ a = 1; }", value: dsl.None, want: "{ a=1; }"},
		{
			name: "single optional newline keeps break", src: "{ a\n  =  1; }",
			value: dsl.SingleOptionalNewline, want: "{ a\n  = 1; }",
		},
		{
			name: "none optional newline keeps break", src: "{ a =\n 1; }",
			value: dsl.NoneOptionalNewline, want: "{ a=\n  1; }",
		},
		{
			name: "single or newline in one-line parent", src: "{ a  =  1; }",
			value: dsl.SingleOrNewline, want: "{ a = 1; }",
		},
		{
			name: "single or newline in multi-line parent", src: "{ a = 1\n; }",
			value: dsl.SingleOrNewline, want: "{ a\n  =\n  1\n  ; }",
		},
		{
			name: "none or newline in one-line parent", src: "{ a = 1; }",
			value: dsl.NoneOrNewline, want: "{ a=1; }",
		},
		{name: "newline", src: "{ a = 1; }", value: dsl.Newline, want: "{ a\n  =\n  1; }"},
		{name: "newline keeps blank line", src: "{ a\n\n= 1; }", value: dsl.Newline, want: "{ a\n\n  =\n  1; }"},
		{name: "exact newline", src: "{ a\n\n=   1; }", value: dsl.ExactNewline, want: "{ a\n  =\n  1; }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := dsl.NewSpacing().Add(&dsl.SpacingRule{
				Name:     "assign",
				When:     pattern.And(pattern.Kind(syntax.TokAssign), pattern.Inside(syntax.NodeKeyValue)),
				Location: dsl.Around,
				Value:    tt.value,
			})
			got, _ := format(t, tt.src, s, nil, engine.DefaultOptions())
			assert.Equal(t, tt.want, got)
		})
	}
}

// A rule demanding a line break before each binding moves same-line
// bindings down, and the indentation pass then gives them one level more
// than the set.
func TestSpacingForcesNewline(t *testing.T) {
	t.Parallel()

	s := dsl.NewSpacing()
	s.Rule("entries").Inside(syntax.NodeAttrSet).Before(syntax.NodeKeyValue).Newline()
	s.Rule("close").Inside(syntax.NodeAttrSet).Before(syntax.TokCurlyR).Newline()

	got, diff := format(t, "{ a = 1; b = 2; }", s, closers(), engine.DefaultOptions())
	assert.Equal(t, "{\n  a = 1;\n  b = 2;\n}", got)
	assert.Equal(t, map[string]int{"default-indent": 2, "close": 1}, diff.Reasons())
}

func TestIndentConflict(t *testing.T) {
	t.Parallel()

	in := dsl.NewIndent()
	in.Rule("first").Inside(syntax.NodeAttrSet).Matching(syntax.NodeKeyValue).Indent()
	in.Rule("second").Inside(syntax.NodeAttrSet).Indent()

	tree := parse(t, "{\n  a = 1;\n}")
	diff, err := engine.Format(context.Background(), tree, nil, in, engine.DefaultOptions())
	require.Error(t, err)
	assert.Nil(t, diff)
	assert.ErrorIs(t, err, engine.ErrConfiguration)

	var conflict *engine.IndentConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "test.nix", conflict.Path)
	assert.Equal(t, 2, conflict.Line)
	assert.Equal(t, 3, conflict.Column)
	assert.Equal(t, "NODE_KEY_VALUE", conflict.Kind)
	assert.Equal(t, []string{"first", "second"}, conflict.Rules)
	assert.Equal(t,
		"test.nix:2:3: NODE_KEY_VALUE matched by 2 indentation rules (first, second)",
		err.Error())
}

func TestIndentConflictNeedsLineStart(t *testing.T) {
	t.Parallel()

	in := dsl.NewIndent()
	in.Rule("first").Inside(syntax.NodeAttrSet).Indent()
	in.Rule("second").Inside(syntax.NodeAttrSet).Align()

	got, diff := format(t, "{ a = 1; }", nil, in, engine.DefaultOptions())
	assert.Equal(t, "{ a = 1; }", got)
	assert.True(t, diff.IsEmpty())
}

// List > AttrSet > KeyValue. The set starts in the middle of an indented
// line; with the set as an anchor its bindings indent relative to that line.
func TestAnchorResolution(t *testing.T) {
	t.Parallel()

	// An anchored ancestor contributes the indentation of the line it starts
	// on, not its own column: the set opens at column 4 on a line indented
	// by 2, so its bindings go to column 2+2, not 4+2.
	const src = "[\n  1 { a = 1;\n  b = 2; }\n]"

	tests := []struct {
		name   string
		anchor bool
		want   string
	}{
		{name: "anchor", anchor: true, want: "[\n  1 { a = 1;\n    b = 2; }\n]"},
		{name: "nearest line start", anchor: false, want: src},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := closers()
			if tt.anchor {
				in.Anchor("set", pattern.Kind(syntax.NodeAttrSet))
			}
			got, _ := format(t, src, nil, in, engine.DefaultOptions())
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFirstChildExemption(t *testing.T) {
	t.Parallel()

	t.Run("lambda body on its own line", func(t *testing.T) {
		t.Parallel()

		in := dsl.NewIndent()
		in.Rule("body").Inside(syntax.NodeLambda).When(pattern.LastChild()).Indent()

		got, diff := format(t, "x:\n      body", nil, in, engine.DefaultOptions())
		assert.Equal(t, "x:\n  body", got)
		require.Equal(t, 1, diff.Len())
		assert.Equal(t, "body", diff.Edits[0].Reason)
		assert.Equal(t, 2, diff.Edits[0].StartOffset)
	})

	t.Run("head of a construct is placed with it", func(t *testing.T) {
		t.Parallel()

		// Both the operation and its left operand start the second line.
		// Only the operation is indented.
		in := dsl.NewIndent()
		in.Rule("close").Inside(syntax.NodeParen).Matching(syntax.TokParenR).Align()
		in.Rule("operand").Inside(syntax.NodeBinOp).Column(10)

		got, _ := format(t, "(\n1 + 2\n)", nil, in, engine.DefaultOptions())
		assert.Equal(t, "(\n  1 + 2\n)", got)
	})
}

func TestIndentValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rule func(*dsl.IndentBuilder) *dsl.IndentDsl
		want string
	}{
		{name: "indent", rule: (*dsl.IndentBuilder).Indent, want: "{\n  a = 1;\n}"},
		{name: "align", rule: (*dsl.IndentBuilder).Align, want: "{\na = 1;\n}"},
		{
			name: "column",
			rule: func(b *dsl.IndentBuilder) *dsl.IndentDsl { return b.Column(6) },
			want: "{\n      a = 1;\n}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := closers()
			tt.rule(in.Rule("binding").Inside(syntax.NodeAttrSet).Matching(syntax.NodeKeyValue))
			got, _ := format(t, "{\n   a = 1;\n}", nil, in, engine.DefaultOptions())
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIndentOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		opts engine.Options
		want string
	}{
		{
			name: "width four",
			src:  "{\na = 1;\n}",
			opts: engine.Options{IndentWidth: 4, MaxBlankLines: 1},
			want: "{\n    a = 1;\n}",
		},
		{
			name: "blank lines clamped",
			src:  "{\n\n\n\n  a = 1;\n}",
			opts: engine.DefaultOptions(),
			want: "{\n\n  a = 1;\n}",
		},
		{
			name: "no blank lines",
			src:  "{\n\n  a = 1;\n}",
			opts: engine.Options{IndentWidth: 2, MaxBlankLines: 0},
			want: "{\n  a = 1;\n}",
		},
		{
			name: "zero values fall back to defaults",
			src:  "{\na = 1;\n}",
			opts: engine.Options{IndentWidth: 0, MaxBlankLines: -1},
			want: "{\n  a = 1;\n}",
		},
		{
			name: "crlf",
			src:  "{\r\n    a = 1;\r\n}",
			opts: engine.DefaultOptions(),
			want: "{\r\n  a = 1;\r\n}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, _ := format(t, tt.src, nil, closers(), tt.opts)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLineCommentKeepsBreak(t *testing.T) {
	t.Parallel()

	s := dsl.NewSpacing()
	s.Rule("tight").Inside(syntax.NodeList).Before(syntax.NodeLiteral).None()

	got, _ := format(t, "[ # one\n 1 ]", s, nil, engine.DefaultOptions())
	assert.Equal(t, "[ # one\n  1 ]", got)
}

func TestStringIndentFix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		src      string
		disabled []string
		want     string
	}{
		{
			name: "shifted right",
			src:  "{\na = ''\n  one\n    two\n'';\n}",
			want: "{\n  a = ''\n    one\n      two\n  '';\n}",
		},
		{
			name: "shifted left",
			src:  "{\n      a = ''\n        x\n      '';\n}",
			want: "{\n  a = ''\n    x\n  '';\n}",
		},
		{
			name: "blank lines untouched",
			src:  "{\na = ''\n  one\n\n  two\n'';\n}",
			want: "{\n  a = ''\n    one\n\n    two\n  '';\n}",
		},
		{
			name:     "disabled",
			src:      "{\na = ''\n  one\n'';\n}",
			disabled: []string{engine.FixStringIndent},
			want:     "{\n  a = ''\n  one\n'';\n}",
		},
		{
			name: "string opening on a line moved by another string",
			src:  "{\na = ''\n  x\n'' + ''\n  y\n'';\n}",
			want: "{\n  a = ''\n    x\n  '' + ''\n    y\n  '';\n}",
		},
		{
			name: "string opening on a line moved left by another string",
			src:  "{\n      a = ''\n        x\n      '' + ''\n        y\n      '';\n}",
			want: "{\n  a = ''\n    x\n  '' + ''\n    y\n  '';\n}",
		},
		{
			name: "single line string",
			src:  "{\na = ''one'';\n}",
			want: "{\n  a = ''one'';\n}",
		},
		{
			name: "double quoted strings are left alone",
			src:  "{\na = \"one\n  two\";\n}",
			want: "{\n  a = \"one\n  two\";\n}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := engine.DefaultOptions()
			opts.DisabledFixes = tt.disabled
			got, _ := format(t, tt.src, nil, closers(), opts)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestURIFix(t *testing.T) {
	t.Parallel()

	got, diff := format(t, "https://example.org/a?b=c", nil, nil, engine.DefaultOptions())
	assert.Equal(t, `"https://example.org/a?b=c"`, got)
	assert.Equal(t, map[string]int{engine.FixURIQuote: 1}, diff.Reasons())

	opts := engine.DefaultOptions()
	opts.DisabledFixes = []string{engine.FixURIQuote}
	got, diff = format(t, "https://example.org", nil, nil, opts)
	assert.Equal(t, "https://example.org", got)
	assert.True(t, diff.IsEmpty())
}

func TestFormatCancelled(t *testing.T) {
	t.Parallel()

	tree := parse(t, "{ a = 1; }")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	diff, err := engine.Format(ctx, tree, nil, nil, engine.DefaultOptions())
	require.Error(t, err)
	assert.Nil(t, diff)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestDiffIsDisjointAndIdempotent(t *testing.T) {
	t.Parallel()

	s := dsl.NewSpacing()
	s.Rule("entries").Inside(syntax.NodeAttrSet).Before(syntax.NodeKeyValue).Newline()
	s.Rule("close").Inside(syntax.NodeAttrSet).Before(syntax.TokCurlyR).Newline()
	s.Rule("assign").Inside(syntax.NodeKeyValue).Around(syntax.TokAssign).Single()
	s.Rule("semi").Inside(syntax.NodeKeyValue).Before(syntax.TokSemicolon).None()

	srcs := []string{
		"{a=1;b={c=2;d=''\n  x\n'';};}",
		"{   a   =   [ 1 2 ]  ;\n\n\n\n b = https://x.org ; }",
		"{\r\na=1;}",
	}
	for _, src := range srcs {
		tree := parse(t, src)
		diff, err := engine.Format(context.Background(), tree, s, closers(), engine.DefaultOptions())
		require.NoError(t, err)

		for i := 1; i < len(diff.Edits); i++ {
			assert.LessOrEqual(t, diff.Edits[i-1].EndOffset, diff.Edits[i].StartOffset, "edits %d and %d overlap", i-1, i)
		}

		once := diff.Apply(tree.Content)
		again, err := engine.Format(context.Background(), parse(t, string(once)), s, closers(), engine.DefaultOptions())
		require.NoError(t, err)
		assert.True(t, again.IsEmpty(), "second run changed %q: %v", once, again.Edits)
	}
}
