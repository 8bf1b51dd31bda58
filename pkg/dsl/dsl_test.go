package dsl_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gonixfmt/pkg/dsl"
	"github.com/yaklabco/gonixfmt/pkg/parser/nix"
	"github.com/yaklabco/gonixfmt/pkg/pattern"
	"github.com/yaklabco/gonixfmt/pkg/syntax"
)

func firstOfKind(t *testing.T, src string, kind syntax.Kind) syntax.Element {
	t.Helper()

	tree, err := nix.New().Parse(context.Background(), "", []byte(src))
	require.NoError(t, err)

	found := syntax.FindByKind(tree.Root, kind)
	require.NotEmpty(t, found, "no %s in %q", kind, src)
	return found[0]
}

func TestSpacingBuilder(t *testing.T) {
	t.Parallel()

	s := dsl.NewSpacing()
	s.Rule("assign").Inside(syntax.NodeKeyValue).Around(syntax.TokAssign).Single()
	s.Rule("semicolon").Inside(syntax.NodeKeyValue).Before(syntax.TokSemicolon).None()
	s.Rule("lambda-colon").Inside(syntax.NodeLambda).After(syntax.TokColon).SingleOrNewline()

	rules := s.Rules()
	require.Len(t, rules, 3)
	assert.Equal(t, "assign", rules[0].Name)
	assert.Equal(t, dsl.Around, rules[0].Location)
	assert.Equal(t, dsl.Single, rules[0].Value)
	assert.Equal(t, dsl.Before, rules[1].Location)
	assert.Equal(t, dsl.After, rules[2].Location)
	assert.Equal(t, dsl.SingleOrNewline, rules[2].Value)

	assign := firstOfKind(t, "{ a = 1; }", syntax.TokAssign)
	matched := s.Set().Matching(assign)
	require.Len(t, matched, 1)
	assert.Equal(t, "assign", matched[0].Name)

	colon := firstOfKind(t, "x: x", syntax.TokColon)
	matched = s.Set().Matching(colon)
	require.Len(t, matched, 1)
	assert.Equal(t, "lambda-colon", matched[0].Name)
}

func TestSpacingBetween(t *testing.T) {
	t.Parallel()

	s := dsl.NewSpacing()
	s.Rule("apply").Inside(syntax.NodeApply).
		Between([]syntax.Kind{syntax.NodeIdent}, []syntax.Kind{syntax.NodeIdent}).
		Single()

	rule := s.Rules()[0]
	tree, err := nix.New().Parse(context.Background(), "", []byte("f x"))
	require.NoError(t, err)

	idents := syntax.FindByKind(tree.Root, syntax.NodeIdent)
	require.Len(t, idents, 2)
	assert.False(t, rule.When.Matches(idents[0]))
	assert.True(t, rule.When.Matches(idents[1]))
	assert.Equal(t, dsl.Before, rule.Location)
}

func TestIndentBuilder(t *testing.T) {
	t.Parallel()

	in := dsl.NewIndent()
	in.Anchor("binding", pattern.Kind(syntax.NodeKeyValue))
	in.Rule("attr-set-entries").Inside(syntax.NodeAttrSet).
		NotMatching(syntax.TokCurlyL, syntax.TokCurlyR).Indent()
	in.Rule("attr-set-close").Inside(syntax.NodeAttrSet).Matching(syntax.TokCurlyR).Align()
	in.Rule("top-level").Inside(syntax.NodeRoot).Column(0)

	assert.Equal(t, 3, in.Len())
	require.Len(t, in.Anchors(), 1)

	rules := in.Rules()
	assert.Equal(t, dsl.Indent, rules[0].Value)
	assert.Equal(t, dsl.Align, rules[1].Value)
	assert.Equal(t, dsl.Column, rules[2].Value)
	assert.Equal(t, 0, rules[2].Col)
	assert.Equal(t, "top-level: column 0 inside(NODE_ROOT)", rules[2].String())

	kv := firstOfKind(t, "{ a = 1; }", syntax.NodeKeyValue)
	matched := in.Set().Matching(kv)
	require.Len(t, matched, 1)
	assert.Equal(t, "attr-set-entries", matched[0].Name)
	assert.True(t, in.AnchorSet().Any(kv))

	closing := firstOfKind(t, "{ a = 1; }", syntax.TokCurlyR)
	matched = in.Set().Matching(closing)
	require.Len(t, matched, 1)
	assert.Equal(t, "attr-set-close", matched[0].Name)
}

func TestFilter(t *testing.T) {
	t.Parallel()

	s := dsl.NewSpacing()
	s.Rule("a").Around(syntax.TokAssign).Single()
	s.Rule("b").Before(syntax.TokSemicolon).None()

	filtered := s.Filter(func(name string) bool { return name != "a" })
	require.Equal(t, 1, filtered.Len())
	assert.Equal(t, "b", filtered.Rules()[0].Name)
	assert.Equal(t, 2, s.Len())

	in := dsl.NewIndent()
	in.Anchor("x", pattern.Kind(syntax.NodeLetIn))
	in.Rule("c").Inside(syntax.NodeRoot).Column(0)

	none := in.Filter(func(string) bool { return false })
	assert.Equal(t, 0, none.Len())
	assert.Len(t, none.Anchors(), 1)
}
