package syntax_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gonixfmt/pkg/syntax"
)

// buildTestTree builds the tree for "{ a = 1; }" by hand:
//
//	NODE_ROOT
//	  NODE_ATTR_SET
//	    { ws NODE_KEY_VALUE ws }
//	      NODE_ATTRPATH(NODE_IDENT(a)) ws = ws NODE_LITERAL(1) ;
func buildTestTree(t *testing.T) *syntax.Tree {
	t.Helper()

	content := []byte("{ a = 1; }")
	b := syntax.NewBuilder("test.nix", content)

	b.StartNode(syntax.NodeRoot)
	b.StartNode(syntax.NodeAttrSet)
	b.Token(syntax.TokCurlyL, 0, 1)
	b.Token(syntax.TokWhitespace, 1, 2)
	b.StartNode(syntax.NodeKeyValue)
	b.StartNode(syntax.NodeAttrpath)
	b.StartNode(syntax.NodeIdent)
	b.Token(syntax.TokIdent, 2, 3)
	b.FinishNode()
	b.FinishNode()
	b.Token(syntax.TokWhitespace, 3, 4)
	b.Token(syntax.TokAssign, 4, 5)
	b.Token(syntax.TokWhitespace, 5, 6)
	b.StartNode(syntax.NodeLiteral)
	b.Token(syntax.TokInteger, 6, 7)
	b.FinishNode()
	b.Token(syntax.TokSemicolon, 7, 8)
	b.FinishNode()
	b.Token(syntax.TokWhitespace, 8, 9)
	b.Token(syntax.TokCurlyR, 9, 10)
	b.FinishNode()
	b.FinishNode()

	tree, err := b.Finish()
	require.NoError(t, err)
	return tree
}

func TestBuilderRanges(t *testing.T) {
	t.Parallel()

	tree := buildTestTree(t)

	assert.Equal(t, syntax.Range{StartOffset: 0, EndOffset: 10}, tree.Root.Range())

	set := tree.Root.ChildNodes()[0]
	assert.Equal(t, syntax.NodeAttrSet, set.Kind)
	assert.Equal(t, "{ a = 1; }", set.Text())

	kv := set.ChildNodes()[0]
	assert.Equal(t, syntax.NodeKeyValue, kv.Kind)
	assert.Equal(t, "a = 1;", kv.Text())
	assert.Same(t, set, kv.Parent)
}

func TestWalkNonWhitespace(t *testing.T) {
	t.Parallel()

	tree := buildTestTree(t)

	var kinds []syntax.Kind
	for e := range syntax.WalkNonWhitespace(tree.Root) {
		kinds = append(kinds, e.Kind())
	}

	assert.Equal(t, []syntax.Kind{
		syntax.NodeRoot,
		syntax.NodeAttrSet,
		syntax.TokCurlyL,
		syntax.NodeKeyValue,
		syntax.NodeAttrpath,
		syntax.NodeIdent,
		syntax.TokIdent,
		syntax.TokAssign,
		syntax.NodeLiteral,
		syntax.TokInteger,
		syntax.TokSemicolon,
		syntax.TokCurlyR,
	}, kinds)
}

func TestWalkNonWhitespaceOffsetsNeverDecrease(t *testing.T) {
	t.Parallel()

	tree := buildTestTree(t)

	last := -1
	for e := range syntax.WalkNonWhitespace(tree.Root) {
		start := e.Range().StartOffset
		assert.GreaterOrEqual(t, start, last, "element %s", e.Kind())
		last = start
	}
}

func TestWalkStopsOnError(t *testing.T) {
	t.Parallel()

	tree := buildTestTree(t)
	stop := assert.AnError

	visited := 0
	err := syntax.Walk(tree.Root, func(e syntax.Element) error {
		visited++
		if e.Kind() == syntax.NodeKeyValue {
			return stop
		}
		return nil
	})

	require.ErrorIs(t, err, stop)
	assert.Equal(t, 5, visited)
}

func TestSiblingsAndAncestors(t *testing.T) {
	t.Parallel()

	tree := buildTestTree(t)

	assign, ok := syntax.FindFirst(tree.Root, func(e syntax.Element) bool {
		return e.Kind() == syntax.TokAssign
	})
	require.True(t, ok)

	prev, ok := assign.PrevNonTrivia()
	require.True(t, ok)
	assert.Equal(t, syntax.NodeAttrpath, prev.Kind())

	next, ok := assign.NextNonTrivia()
	require.True(t, ok)
	assert.Equal(t, syntax.NodeLiteral, next.Kind())

	raw, ok := assign.PrevSibling()
	require.True(t, ok)
	assert.Equal(t, syntax.TokWhitespace, raw.Kind())

	var ancestors []syntax.Kind
	for n := range assign.Ancestors() {
		ancestors = append(ancestors, n.Kind)
	}
	assert.Equal(t, []syntax.Kind{syntax.NodeKeyValue, syntax.NodeAttrSet, syntax.NodeRoot}, ancestors)
}

func TestStartNodeAtWrapsChildren(t *testing.T) {
	t.Parallel()

	content := []byte("f x")
	b := syntax.NewBuilder("", content)
	b.StartNode(syntax.NodeRoot)
	cp := b.Checkpoint()
	b.StartNode(syntax.NodeIdent)
	b.Token(syntax.TokIdent, 0, 1)
	b.FinishNode()
	b.StartNodeAt(cp, syntax.NodeApply)
	b.Token(syntax.TokWhitespace, 1, 2)
	b.StartNode(syntax.NodeIdent)
	b.Token(syntax.TokIdent, 2, 3)
	b.FinishNode()
	b.FinishNode()
	b.FinishNode()

	tree, err := b.Finish()
	require.NoError(t, err)

	want := "NODE_ROOT 0..3\n" +
		"  NODE_APPLY 0..3\n" +
		"    NODE_IDENT 0..1\n" +
		"      TOKEN_IDENT 0..1 \"f\"\n" +
		"    TOKEN_WHITESPACE 1..2 \" \"\n" +
		"    NODE_IDENT 2..3\n" +
		"      TOKEN_IDENT 2..3 \"x\"\n"
	assert.Equal(t, want, syntax.Dump(tree.Root))

	apply := tree.Root.ChildNodes()[0]
	fn := apply.ChildNodes()[0]
	assert.Same(t, apply, fn.Parent)
}

func TestFinishRejectsGaps(t *testing.T) {
	t.Parallel()

	b := syntax.NewBuilder("", []byte("ab"))
	b.StartNode(syntax.NodeRoot)
	b.Token(syntax.TokIdent, 0, 1)
	b.FinishNode()

	_, err := b.Finish()
	require.Error(t, err)
}

func TestFinishRejectsOpenNodes(t *testing.T) {
	t.Parallel()

	b := syntax.NewBuilder("", []byte("a"))
	b.StartNode(syntax.NodeRoot)
	b.Token(syntax.TokIdent, 0, 1)

	_, err := b.Finish()
	require.ErrorIs(t, err, syntax.ErrUnbalanced)
}

func TestLineAt(t *testing.T) {
	t.Parallel()

	tree := &syntax.Tree{Content: []byte("ab\n  cd\r\nef")}
	tree.Lines = syntax.BuildLines(tree.Content)

	tests := []struct {
		offset   int
		wantLine int
		wantCol  int
	}{
		{0, 1, 1},
		{2, 1, 3},
		{3, 2, 1},
		{5, 2, 3},
		{9, 3, 1},
		{11, 3, 3},
	}
	for _, tc := range tests {
		line, col := tree.LineAt(tc.offset)
		assert.Equal(t, tc.wantLine, line, "line of offset %d", tc.offset)
		assert.Equal(t, tc.wantCol, col, "column of offset %d", tc.offset)
	}

	assert.Equal(t, "  cd", string(tree.LineContent(2)))
	assert.Equal(t, 2, tree.OriginalIndent(6))

	off, ok := tree.Offset(2, 3)
	require.True(t, ok)
	assert.Equal(t, 5, off)
}

func TestKindClassification(t *testing.T) {
	t.Parallel()

	assert.True(t, syntax.TokComment.IsTrivia())
	assert.True(t, syntax.TokWhitespace.IsTrivia())
	assert.False(t, syntax.TokIdent.IsTrivia())
	assert.True(t, syntax.TokIdent.IsToken())
	assert.False(t, syntax.NodeRoot.IsToken())
	assert.True(t, syntax.NodeRoot.IsNode())
	assert.True(t, syntax.TokLet.IsKeyword())
	assert.True(t, syntax.TokUpdate.IsBinaryOperator())
	assert.False(t, syntax.TokInvert.IsBinaryOperator())
	assert.Equal(t, "NODE_ATTR_SET", syntax.NodeAttrSet.String())

	kind, ok := syntax.KindByName("TOKEN_SEMICOLON")
	require.True(t, ok)
	assert.Equal(t, syntax.TokSemicolon, kind)
}
