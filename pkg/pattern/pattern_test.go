package pattern_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gonixfmt/pkg/parser/nix"
	"github.com/yaklabco/gonixfmt/pkg/pattern"
	"github.com/yaklabco/gonixfmt/pkg/syntax"
)

func elements(t *testing.T, src string, kind syntax.Kind) []syntax.Element {
	t.Helper()

	tree, err := nix.New().Parse(context.Background(), "", []byte(src))
	require.NoError(t, err)
	found := syntax.FindByKind(tree.Root, kind)
	require.NotEmpty(t, found, "no %s in %q", kind, src)
	return found
}

func TestPatterns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern *pattern.Pattern
		src     string
		kind    syntax.Kind
		want    []bool
	}{
		{
			name:    "kind",
			pattern: pattern.Kind(syntax.TokAssign),
			src:     "{ a = 1; }",
			kind:    syntax.TokAssign,
			want:    []bool{true},
		},
		{
			name:    "inside",
			pattern: pattern.Inside(syntax.NodeAttrpath),
			src:     "{ a = b; }",
			kind:    syntax.NodeIdent,
			want:    []bool{true, false},
		},
		{
			name:    "within",
			pattern: pattern.Within(syntax.NodeKeyValue),
			src:     "{ a = b; }",
			kind:    syntax.NodeIdent,
			want:    []bool{true, true},
		},
		{
			name:    "text",
			pattern: pattern.Text("b"),
			src:     "[ a b ]",
			kind:    syntax.TokIdent,
			want:    []bool{false, true},
		},
		{
			name:    "first child",
			pattern: pattern.FirstChild(),
			src:     "x: y",
			kind:    syntax.NodeIdent,
			want:    []bool{true, false},
		},
		{
			name:    "last child",
			pattern: pattern.LastChild(),
			src:     "x: y",
			kind:    syntax.NodeIdent,
			want:    []bool{false, true},
		},
		{
			name:    "after",
			pattern: pattern.After(syntax.NodeIdent),
			src:     "[ a b 1 ]",
			kind:    syntax.NodeIdent,
			want:    []bool{false, true},
		},
		{
			name:    "before",
			pattern: pattern.Before(syntax.TokSemicolon),
			src:     "{ a = b; }",
			kind:    syntax.NodeIdent,
			want:    []bool{false, true},
		},
		{
			name:    "and",
			pattern: pattern.And(pattern.Kind(syntax.NodeIdent), pattern.Inside(syntax.NodeKeyValue)),
			src:     "{ a = b; }",
			kind:    syntax.NodeIdent,
			want:    []bool{false, true},
		},
		{
			name:    "contradictory kinds",
			pattern: pattern.And(pattern.Kind(syntax.NodeIdent), pattern.Kind(syntax.NodeList)),
			src:     "a",
			kind:    syntax.NodeIdent,
			want:    []bool{false},
		},
		{
			name:    "or",
			pattern: pattern.Or(pattern.Text("a"), pattern.Text("c")),
			src:     "[ a b c ]",
			kind:    syntax.TokIdent,
			want:    []bool{true, false, true},
		},
		{
			name:    "not",
			pattern: pattern.Not(pattern.Text("a")),
			src:     "[ a b ]",
			kind:    syntax.TokIdent,
			want:    []bool{false, true},
		},
		{
			name:    "nil matches everything",
			pattern: nil,
			src:     "a",
			kind:    syntax.TokIdent,
			want:    []bool{true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			els := elements(t, tt.src, tt.kind)
			require.Len(t, els, len(tt.want))
			for i, e := range els {
				assert.Equal(t, tt.want[i], tt.pattern.Matches(e), "element %d %q", i, e.Text())
			}
		})
	}
}

func TestIsMultiline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want bool
	}{
		{name: "one line", src: "[ 1 2 ]", want: false},
		{name: "line break", src: "[ 1\n2 ]", want: true},
		{name: "line comment inside", src: "[ 1 # c\n]", want: true},
		{name: "block comment", src: "[ 1 /* c */ 2 ]", want: false},
		{name: "break inside a string", src: "[ \"a\nb\" ]", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			list := elements(t, tt.src, syntax.NodeList)[0]
			assert.Equal(t, tt.want, pattern.IsMultiline(list))
			assert.Equal(t, tt.want, pattern.Multiline().Matches(list))
		})
	}
}

func TestString(t *testing.T) {
	t.Parallel()

	var nilPattern *pattern.Pattern
	assert.Equal(t, "*", nilPattern.String())
	assert.Equal(t, "*", pattern.Any().String())
	assert.Equal(t, "TOKEN_ASSIGN|TOKEN_COLON", pattern.Kind(syntax.TokAssign, syntax.TokColon).String())
	assert.Equal(t, "inside(NODE_ROOT)", pattern.Inside(syntax.NodeRoot).String())
	assert.Equal(t,
		"TOKEN_IDENT & !text(a)",
		pattern.And(pattern.Kind(syntax.TokIdent), pattern.Not(pattern.Text("a"))).String())
}

type rule struct {
	name string
	when *pattern.Pattern
}

func (r rule) Pattern() *pattern.Pattern { return r.when }

func TestSet(t *testing.T) {
	t.Parallel()

	set := pattern.NewSet(
		rule{name: "ident", when: pattern.Kind(syntax.NodeIdent)},
		rule{name: "in-kv", when: pattern.Inside(syntax.NodeKeyValue)},
		rule{name: "assign", when: pattern.Kind(syntax.TokAssign)},
		rule{name: "ident-or-literal", when: pattern.Or(pattern.Kind(syntax.NodeIdent), pattern.Kind(syntax.NodeLiteral))},
	)
	assert.Equal(t, 4, set.Len())
	assert.Len(t, set.All(), 4)

	names := func(rs []rule) []string {
		var out []string
		for _, r := range rs {
			out = append(out, r.name)
		}
		return out
	}

	value := elements(t, "{ a = b; }", syntax.NodeIdent)[1]
	assert.Equal(t, []string{"ident", "in-kv", "ident-or-literal"}, names(set.Matching(value)))
	assert.True(t, set.Any(value))

	assign := elements(t, "{ a = b; }", syntax.TokAssign)[0]
	assert.Equal(t, []string{"in-kv", "assign"}, names(set.Matching(assign)))

	brace := elements(t, "{ a = b; }", syntax.TokCurlyL)[0]
	assert.Empty(t, set.Matching(brace))
	assert.False(t, set.Any(brace))

	var empty *pattern.Set[rule]
	assert.Zero(t, empty.Len())
	assert.Nil(t, empty.Matching(brace))
}
